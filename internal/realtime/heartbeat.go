package realtime

import (
	"github.com/Alextheon3/apexmatch-sub001/internal/observe"
	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
	"github.com/Alextheon3/apexmatch-sub001/internal/transport"
	"github.com/Alextheon3/apexmatch-sub001/pkg/logger"
)

func (m *Manager) scheduleHeartbeatLocked(epoch uint64) {
	m.heartbeatTimer = m.cfg.Clock.AfterFunc(m.cfg.HeartbeatInterval, func() { m.onHeartbeatTick(epoch) })
}

// onHeartbeatTick emits a liveness envelope and re-arms the timer. With
// LivenessTimeout set, a stalled server heartbeat force-closes the transport
// so the ordinary reconnect path runs; otherwise missed heartbeats are left
// to the transport's own close signal.
func (m *Manager) onHeartbeatTick(epoch uint64) {
	m.mu.Lock()
	if epoch != m.epoch || m.state != StateConnected || m.conn == nil {
		m.mu.Unlock()
		return
	}

	if m.cfg.LivenessTimeout > 0 && m.cfg.Clock.Now().Sub(m.lastHeartbeat) > m.cfg.LivenessTimeout {
		logger.L().Sugar().Warnw("heartbeat_stalled", "last", m.lastHeartbeat)
		conn := m.conn
		m.mu.Unlock()
		// 读循环收到关闭错误后走重连路径
		_ = conn.Close(transport.CloseAbnormal)
		return
	}

	m.heartbeatSeq++
	env, err := protocol.New(protocol.MsgHeartbeat, &protocol.HeartbeatPayload{
		Seq:       m.heartbeatSeq,
		Timestamp: m.cfg.Clock.Now().UnixMilli(),
	}, m.userID)
	if err == nil {
		if data, encErr := protocol.EncodeBytes(m.cfg.Codec, env); encErr == nil {
			if werr := m.conn.WriteMessage(data); werr != nil {
				logger.L().Sugar().Warnw("heartbeat_write_error", "err", werr)
			} else {
				observe.IncHeartbeat("sent")
			}
		}
	}
	m.scheduleHeartbeatLocked(epoch)
	m.mu.Unlock()
}
