package realtime

import (
	"sync"
	"time"

	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
)

type pendingDelivery struct {
	envelope   *protocol.Envelope
	enqueuedAt time.Time
	timer      Timer
}

// deliveryTracker 跟踪需要送达确认的出站消息。每个 id 只会触发一次
// 确认或一次超时，二者互斥。自带锁：超时回调在时钟的 goroutine 上触发。
type deliveryTracker struct {
	mu      sync.Mutex
	clock   Clock
	timeout time.Duration
	pending map[string]*pendingDelivery
}

func newDeliveryTracker(clock Clock, timeout time.Duration) *deliveryTracker {
	return &deliveryTracker{
		clock:   clock,
		timeout: timeout,
		pending: make(map[string]*pendingDelivery),
	}
}

// track registers an envelope awaiting a delivery receipt. onTimeout runs at
// most once, and only if the envelope was never resolved.
func (t *deliveryTracker) track(env *protocol.Envelope, onTimeout func(*protocol.Envelope)) {
	t.mu.Lock()
	entry := &pendingDelivery{envelope: env, enqueuedAt: t.clock.Now()}
	t.pending[env.ID] = entry
	entry.timer = t.clock.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		cur, ok := t.pending[env.ID]
		if !ok || cur != entry {
			t.mu.Unlock()
			return
		}
		delete(t.pending, env.ID)
		t.mu.Unlock()
		onTimeout(env)
	})
	t.mu.Unlock()
}

// resolve clears a pending entry and cancels its timer. Returns the original
// envelope, or nil when the id is unknown or already timed out.
func (t *deliveryTracker) resolve(id string) *protocol.Envelope {
	t.mu.Lock()
	entry, ok := t.pending[id]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	delete(t.pending, id)
	t.mu.Unlock()
	entry.timer.Stop()
	return entry.envelope
}

func (t *deliveryTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// reset cancels every pending timer without firing timeout callbacks.
func (t *deliveryTracker) reset() {
	t.mu.Lock()
	for id, entry := range t.pending {
		entry.timer.Stop()
		delete(t.pending, id)
	}
	t.mu.Unlock()
}
