package event

import (
	"time"

	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
)

// Type 事件类型标识
type Type string

// Lifecycle event types.
const (
	StateChanged    Type = "state.changed"
	ConnTimeout     Type = "conn.timeout"
	AuthFailed      Type = "conn.auth_failed"
	Disconnected    Type = "conn.disconnected"
	ConnFailed      Type = "conn.failed"
	ParseError      Type = "conn.parse_error"
	QueueDropped    Type = "queue.dropped"
	DeliveryAcked   Type = "delivery.acked"
	DeliveryExpired Type = "delivery.timeout"
)

// Message returns the event type under which inbound frames of the given
// wire type are published.
func Message(t protocol.MessageType) Type { return Type("msg." + string(t)) }

type Event interface {
	EventType() Type
	Time() time.Time
}

// StateChange 连接状态迁移事件
type StateChange struct {
	When time.Time
	From string
	To   string
}

func (e *StateChange) EventType() Type { return StateChanged }
func (e *StateChange) Time() time.Time { return e.When }

// Timeout 连接建立超时事件
type Timeout struct {
	When time.Time
}

func (e *Timeout) EventType() Type { return ConnTimeout }
func (e *Timeout) Time() time.Time { return e.When }

// AuthFailure 认证失败事件，不会自动重连
type AuthFailure struct {
	When   time.Time
	Reason string
}

func (e *AuthFailure) EventType() Type { return AuthFailed }
func (e *AuthFailure) Time() time.Time { return e.When }

// Disconnect 连接关闭事件
type Disconnect struct {
	When   time.Time
	Code   int
	Normal bool
}

func (e *Disconnect) EventType() Type { return Disconnected }
func (e *Disconnect) Time() time.Time { return e.When }

// Failed 重连次数耗尽事件，需要显式 Connect 恢复
type Failed struct {
	When     time.Time
	Attempts int
}

func (e *Failed) EventType() Type { return ConnFailed }
func (e *Failed) Time() time.Time { return e.When }

// ParseFailure 单帧解码失败事件，连接保持打开
type ParseFailure struct {
	When time.Time
	Err  error
}

func (e *ParseFailure) EventType() Type { return ParseError }
func (e *ParseFailure) Time() time.Time { return e.When }

// Dropped 队列溢出丢弃事件，携带被逐出的消息
type Dropped struct {
	When     time.Time
	Envelope *protocol.Envelope
}

func (e *Dropped) EventType() Type { return QueueDropped }
func (e *Dropped) Time() time.Time { return e.When }

// Acked 送达确认事件
type Acked struct {
	When     time.Time
	Envelope *protocol.Envelope
}

func (e *Acked) EventType() Type { return DeliveryAcked }
func (e *Acked) Time() time.Time { return e.When }

// Expired 送达确认超时事件，携带原始消息
type Expired struct {
	When     time.Time
	Envelope *protocol.Envelope
}

func (e *Expired) EventType() Type { return DeliveryExpired }
func (e *Expired) Time() time.Time { return e.When }

// InboundMessage 应用层入站消息事件，按 msg.<wire type> 发布
type InboundMessage struct {
	When     time.Time
	Envelope *protocol.Envelope
}

func (e *InboundMessage) EventType() Type { return Message(e.Envelope.Type) }
func (e *InboundMessage) Time() time.Time { return e.When }
