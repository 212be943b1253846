package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType 表示连接上交换的业务消息类型
type MessageType string

// Inbound message types.
const (
	MsgAuthSuccess     MessageType = "auth_success"
	MsgAuthFailure     MessageType = "auth_failure"
	MsgChat            MessageType = "chat_message"
	MsgDeliveryReceipt MessageType = "delivery_receipt"
	MsgReadReceipt     MessageType = "read_receipt"
	MsgTypingStart     MessageType = "typing_start"
	MsgTypingStop      MessageType = "typing_stop"
	MsgNewMatch        MessageType = "new_match"
	MsgMutualMatch     MessageType = "mutual_match"
	MsgRevealRequest   MessageType = "reveal_request"
	MsgRevealAccept    MessageType = "reveal_accept"
	MsgRevealDecline   MessageType = "reveal_decline"
	MsgRevealMutual    MessageType = "reveal_mutual"
	MsgPresenceOnline  MessageType = "presence_online"
	MsgPresenceOffline MessageType = "presence_offline"
	MsgNotification    MessageType = "notification"
	MsgTrustScore      MessageType = "trust_score_update"
	MsgBehaviorProfile MessageType = "behavioral_profile_update"
	MsgHeartbeat       MessageType = "heartbeat"
	MsgServerError     MessageType = "server_error"
	MsgRateLimit       MessageType = "rate_limit"
)

// Outbound-only message types.
const (
	MsgMatchAction    MessageType = "match_action"
	MsgRevealResponse MessageType = "reveal_response"
)

// Envelope 是连接上交换的单条消息，构造后不可变
type Envelope struct {
	ID      string          `json:"id"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ts      int64           `json:"timestamp"` // 毫秒时间戳
	Sender  string          `json:"userId,omitempty"`
}

// New builds an outbound envelope with a fresh id and the current timestamp.
// Ids are uuid v4: practically unique per connection lifetime, no collision
// check.
func New(t MessageType, payload any, sender string) (*Envelope, error) {
	if t == "" {
		return nil, fmt.Errorf("protocol: empty message type")
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: marshal payload: %w", err)
		}
		raw = b
	}
	return &Envelope{
		ID:      uuid.New().String(),
		Type:    t,
		Payload: raw,
		Ts:      time.Now().UnixMilli(),
		Sender:  sender,
	}, nil
}
