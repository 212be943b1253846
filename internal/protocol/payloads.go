package protocol

import "encoding/json"

// AuthResultPayload 认证结果消息负载
type AuthResultPayload struct {
	UserID string `json:"user_id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ChatPayload 聊天消息负载
type ChatPayload struct {
	MatchID string `json:"match_id"`
	Text    string `json:"text"`
}

// DeliveryReceiptPayload 送达回执负载，MessageID 对应原始消息 id
type DeliveryReceiptPayload struct {
	MessageID string `json:"message_id"`
}

// ReadReceiptPayload 已读回执负载
type ReadReceiptPayload struct {
	MatchID   string `json:"match_id"`
	MessageID string `json:"message_id"`
}

// TypingPayload 输入状态负载，start/stop 共用
type TypingPayload struct {
	MatchID string `json:"match_id"`
}

// MatchActionPayload 匹配操作负载（like/pass）
type MatchActionPayload struct {
	TargetUserID string `json:"target_user_id"`
	Action       string `json:"action"`
}

// NewMatchPayload 新匹配通知负载
type NewMatchPayload struct {
	MatchID string `json:"match_id"`
	UserID  string `json:"user_id"`
}

// MutualMatchPayload 双向匹配通知负载
type MutualMatchPayload struct {
	MatchID string   `json:"match_id"`
	UserIDs []string `json:"user_ids"`
}

// RevealRequestPayload 揭面请求负载
type RevealRequestPayload struct {
	MatchID string `json:"match_id"`
}

// RevealResponsePayload 揭面应答负载
type RevealResponsePayload struct {
	MatchID string `json:"match_id"`
	Accept  bool   `json:"accept"`
}

// PresencePayload 在线状态负载
type PresencePayload struct {
	UserID string `json:"user_id"`
}

// NotificationPayload 通用通知负载
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TrustScorePayload 信任分更新负载
type TrustScorePayload struct {
	Score float64 `json:"score"`
}

// BehaviorProfilePayload 行为画像更新负载
type BehaviorProfilePayload struct {
	Traits map[string]float64 `json:"traits"`
}

// HeartbeatPayload 心跳负载
type HeartbeatPayload struct {
	Seq       int64 `json:"seq"`
	Timestamp int64 `json:"timestamp"`
}

// ServerErrorPayload 服务端错误负载
type ServerErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RateLimitPayload 限流通知负载
type RateLimitPayload struct {
	RetryAfterMs int64 `json:"retry_after_ms"`
}

// UnknownPayload carries the raw payload of a message type this client does
// not know. Unknown types are surfaced explicitly instead of being dropped.
type UnknownPayload struct {
	Type MessageType
	Raw  json.RawMessage
}

// DecodePayload unmarshals the payload of an envelope into its typed variant.
// Unknown message types return *UnknownPayload, not an error.
func DecodePayload(env *Envelope) (any, error) {
	decode := func(v any) (any, error) {
		if len(env.Payload) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return nil, &DecodeError{Reason: "bad payload for " + string(env.Type), Err: err}
		}
		return v, nil
	}

	switch env.Type {
	case MsgAuthSuccess, MsgAuthFailure:
		return decode(&AuthResultPayload{})
	case MsgChat:
		return decode(&ChatPayload{})
	case MsgDeliveryReceipt:
		return decode(&DeliveryReceiptPayload{})
	case MsgReadReceipt:
		return decode(&ReadReceiptPayload{})
	case MsgTypingStart, MsgTypingStop:
		return decode(&TypingPayload{})
	case MsgMatchAction:
		return decode(&MatchActionPayload{})
	case MsgNewMatch:
		return decode(&NewMatchPayload{})
	case MsgMutualMatch:
		return decode(&MutualMatchPayload{})
	case MsgRevealRequest, MsgRevealAccept, MsgRevealDecline, MsgRevealMutual:
		return decode(&RevealRequestPayload{})
	case MsgRevealResponse:
		return decode(&RevealResponsePayload{})
	case MsgPresenceOnline, MsgPresenceOffline:
		return decode(&PresencePayload{})
	case MsgNotification:
		return decode(&NotificationPayload{})
	case MsgTrustScore:
		return decode(&TrustScorePayload{})
	case MsgBehaviorProfile:
		return decode(&BehaviorProfilePayload{})
	case MsgHeartbeat:
		return decode(&HeartbeatPayload{})
	case MsgServerError:
		return decode(&ServerErrorPayload{})
	case MsgRateLimit:
		return decode(&RateLimitPayload{})
	default:
		return &UnknownPayload{Type: env.Type, Raw: env.Payload}, nil
	}
}
