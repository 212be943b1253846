package realtime

import (
	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
)

// outboundQueue 按入队顺序保存待发送的消息，容量固定。
// 并发保护由 Manager.mu 负责。
type outboundQueue struct {
	capacity int
	items    []*protocol.Envelope
}

func newOutboundQueue(capacity int) *outboundQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &outboundQueue{capacity: capacity}
}

// enqueue appends an envelope. When the queue is full the oldest entry is
// evicted and returned so the caller can surface the data loss.
func (q *outboundQueue) enqueue(env *protocol.Envelope) (evicted *protocol.Envelope) {
	if len(q.items) >= q.capacity {
		evicted = q.items[0]
		q.items = append(q.items[:0], q.items[1:]...)
	}
	q.items = append(q.items, env)
	return evicted
}

// drainInto transmits queued envelopes strictly in FIFO order. On the first
// transmit error the failing envelope and everything behind it stay queued.
func (q *outboundQueue) drainInto(transmit func(*protocol.Envelope) error) {
	for len(q.items) > 0 {
		if err := transmit(q.items[0]); err != nil {
			return
		}
		q.items[0] = nil
		q.items = q.items[1:]
	}
}

func (q *outboundQueue) len() int { return len(q.items) }
