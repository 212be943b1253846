package event

import (
	"sync"

	"github.com/Alextheon3/apexmatch-sub001/pkg/logger"
)

type Handler func(Event)

type handlerEntry struct {
	id uint64
	fn Handler
}

// Dispatcher 按事件类型注册的处理器表。订阅可跨连接周期存活，
// 重连时不会清空。
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Type][]handlerEntry
	nextID   uint64
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type][]handlerEntry)}
}

// Subscribe 注册事件处理器，返回取消函数。取消函数可重复调用（幂等）。
func (d *Dispatcher) Subscribe(t Type, fn Handler) (cancel func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[t] = append(d.handlers[t], handlerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		entries := d.handlers[t]
		if len(entries) > 0 {
			filtered := entries[:0]
			for _, e := range entries {
				if e.id != id {
					filtered = append(filtered, e)
				}
			}
			if len(filtered) == 0 {
				delete(d.handlers, t)
			} else {
				d.handlers[t] = append([]handlerEntry(nil), filtered...)
			}
		}
		d.mu.Unlock()
	}
}

// Publish 同步分发事件给所有 handler，按注册顺序调用。
// 单个 handler panic 不影响其余 handler。
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	entries, ok := d.handlers[e.EventType()]
	// 拷贝切片以避免分发期间的并发修改
	var copied []handlerEntry
	if ok && len(entries) > 0 {
		copied = append(copied, entries...)
	}
	d.mu.RUnlock()

	for _, entry := range copied {
		invoke(entry.fn, e)
	}
}

func invoke(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Sugar().Warnw("event_handler_panic", "event", e.EventType(), "panic", r)
		}
	}()
	fn(e)
}
