package realtime

import (
	"github.com/Alextheon3/apexmatch-sub001/internal/event"
	"github.com/Alextheon3/apexmatch-sub001/internal/observe"
	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
	"github.com/Alextheon3/apexmatch-sub001/pkg/logger"
)

// SendOptions 单次发送的选项
type SendOptions struct {
	// RequireDelivery tracks the envelope until a delivery receipt arrives
	// or the delivery timeout fires.
	RequireDelivery bool
}

// Send builds an envelope and either transmits it immediately (connected and
// authenticated) or queues it. The envelope id is always returned; errors only
// report programmer mistakes (empty type, unmarshalable payload).
func (m *Manager) Send(t protocol.MessageType, payload any, opts SendOptions) (string, error) {
	m.mu.Lock()
	env, err := protocol.New(t, payload, m.userID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	if opts.RequireDelivery {
		m.tracker.track(env, m.onDeliveryTimeout)
	}

	var evs []event.Event
	if m.state == StateConnected && m.authenticated && m.conn != nil {
		data, encErr := protocol.EncodeBytes(m.cfg.Codec, env)
		if encErr != nil {
			m.mu.Unlock()
			return "", encErr
		}
		if werr := m.conn.WriteMessage(data); werr != nil {
			// 传输失败转入队列，等待下一次认证完成后重发
			logger.L().Sugar().Warnw("send_write_error", "id", env.ID, "err", werr)
			evs = m.enqueueLocked(env)
		} else {
			observe.IncMessage("sent")
		}
	} else {
		evs = m.enqueueLocked(env)
	}
	m.mu.Unlock()
	m.publishAll(evs)
	return env.ID, nil
}

func (m *Manager) enqueueLocked(env *protocol.Envelope) []event.Event {
	evicted := m.queue.enqueue(env)
	observe.IncMessage("queued")
	observe.SetQueueDepth(float64(m.queue.len()))
	if evicted == nil {
		return nil
	}
	observe.IncDropped()
	logger.L().Sugar().Warnw("queue_dropped_oldest", "id", evicted.ID, "type", evicted.Type)
	return []event.Event{&event.Dropped{When: m.cfg.Clock.Now(), Envelope: evicted}}
}

func (m *Manager) onDeliveryTimeout(env *protocol.Envelope) {
	observe.IncDeliveryTimeout()
	logger.L().Sugar().Warnw("delivery_timeout", "id", env.ID, "type", env.Type)
	m.bus.Publish(&event.Expired{When: m.cfg.Clock.Now(), Envelope: env})
}

// SendChatMessage 发送聊天消息，默认要求送达确认
func (m *Manager) SendChatMessage(matchID, text string) (string, error) {
	return m.Send(protocol.MsgChat, &protocol.ChatPayload{MatchID: matchID, Text: text}, SendOptions{RequireDelivery: true})
}

// SendTypingStart 通知对端开始输入
func (m *Manager) SendTypingStart(matchID string) (string, error) {
	return m.Send(protocol.MsgTypingStart, &protocol.TypingPayload{MatchID: matchID}, SendOptions{})
}

// SendTypingStop 通知对端停止输入
func (m *Manager) SendTypingStop(matchID string) (string, error) {
	return m.Send(protocol.MsgTypingStop, &protocol.TypingPayload{MatchID: matchID}, SendOptions{})
}

// MarkMessageRead 发送已读回执
func (m *Manager) MarkMessageRead(matchID, messageID string) (string, error) {
	return m.Send(protocol.MsgReadReceipt, &protocol.ReadReceiptPayload{MatchID: matchID, MessageID: messageID}, SendOptions{})
}

// SendMatchAction 发送匹配操作（like/pass）
func (m *Manager) SendMatchAction(targetUserID, action string) (string, error) {
	return m.Send(protocol.MsgMatchAction, &protocol.MatchActionPayload{TargetUserID: targetUserID, Action: action}, SendOptions{})
}

// SendRevealRequest 发起揭面请求
func (m *Manager) SendRevealRequest(matchID string) (string, error) {
	return m.Send(protocol.MsgRevealRequest, &protocol.RevealRequestPayload{MatchID: matchID}, SendOptions{})
}

// SendRevealResponse 应答揭面请求
func (m *Manager) SendRevealResponse(matchID string, accept bool) (string, error) {
	return m.Send(protocol.MsgRevealResponse, &protocol.RevealResponsePayload{MatchID: matchID, Accept: accept}, SendOptions{})
}
