package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Alextheon3/apexmatch-sub001/internal/event"
	"github.com/Alextheon3/apexmatch-sub001/internal/observe"
	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
	"github.com/Alextheon3/apexmatch-sub001/internal/transport"
	"github.com/Alextheon3/apexmatch-sub001/pkg/logger"
)

var (
	ErrNilDialer    = errors.New("realtime: nil dialer")
	ErrNoEndpoint   = errors.New("realtime: empty endpoint url")
	ErrNoCredential = errors.New("realtime: no credential and no provider configured")
)

// Manager 维护到消息后端的唯一长连接：认证握手、心跳、自动重连、
// 送达确认跟踪、断线期间的出站排队以及事件分发。
//
// 所有状态迁移、队列变更都在 mu 下串行执行；定时器与读循环回调携带
// 连接纪元（epoch），断开后过期回调自动失效。事件在迁移完成、锁释放
// 之后发布，handler 可以安全地重入 Manager。
type Manager struct {
	cfg Config
	bus *event.Dispatcher

	mu                 sync.Mutex
	state              State
	authenticated      bool
	sessionEstablished bool
	userID             string
	credential         string
	conn               transport.Conn
	epoch              uint64
	attempts           int
	queue              *outboundQueue
	tracker            *deliveryTracker
	connectTimer       Timer
	backoffTimer       Timer
	heartbeatTimer     Timer
	heartbeatSeq       int64
	lastHeartbeat      time.Time
}

// ConnectionInfo 诊断用连接快照
type ConnectionInfo struct {
	State             State
	Authenticated     bool
	ReconnectAttempts int
	QueuedCount       int
	PendingCount      int
	LastHeartbeat     time.Time
	UserID            string
}

func New(cfg Config) (*Manager, error) {
	if cfg.Dialer == nil {
		return nil, ErrNilDialer
	}
	if cfg.URL == "" {
		return nil, ErrNoEndpoint
	}
	cfg.withDefaults()
	m := &Manager{
		cfg:   cfg,
		bus:   event.NewDispatcher(),
		queue: newOutboundQueue(cfg.QueueCapacity),
	}
	m.tracker = newDeliveryTracker(cfg.Clock, cfg.DeliveryTimeout)
	return m, nil
}

// Subscribe 注册应用层事件处理器，返回幂等的取消函数。
// 订阅跨连接周期存活。
func (m *Manager) Subscribe(t event.Type, fn event.Handler) (cancel func()) {
	return m.bus.Subscribe(t, fn)
}

// Connect opens the connection. Calling while connecting or connected is a
// no-op; calling while reconnecting cancels the backoff timer and dials
// immediately; calling from failed starts a fresh episode.
func (m *Manager) Connect(credential, userID string) error {
	m.mu.Lock()
	switch m.state {
	case StateConnecting, StateConnected:
		m.mu.Unlock()
		return nil
	case StateReconnecting:
		stopTimer(&m.backoffTimer)
		m.attempts = 0
	case StateFailed, StateDisconnected:
		m.attempts = 0
	}
	if credential != "" {
		m.credential = credential
	}
	if userID != "" {
		m.userID = userID
	}
	if m.credential == "" && m.cfg.Credentials == nil {
		m.mu.Unlock()
		return ErrNoCredential
	}
	evs := m.beginConnectLocked()
	m.mu.Unlock()
	m.publishAll(evs)
	return nil
}

// Disconnect closes the connection with the normal close code. All pending
// timers (connect timeout, backoff, heartbeat, delivery timeouts) are
// cancelled before the transport goes down; queued envelopes are kept for
// the next authenticated session.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	stopTimer(&m.connectTimer)
	stopTimer(&m.backoffTimer)
	stopTimer(&m.heartbeatTimer)
	m.tracker.reset()
	m.attempts = 0
	m.authenticated = false
	m.sessionEstablished = false
	conn := m.conn
	m.conn = nil
	var evs []event.Event
	if m.state != StateDisconnected {
		evs = m.setStateLocked(StateDisconnected)
		evs = append(evs, &event.Disconnect{When: m.cfg.Clock.Now(), Code: transport.CloseNormal, Normal: true})
	}
	m.mu.Unlock()
	if conn != nil {
		_ = conn.Close(transport.CloseNormal)
	}
	m.publishAll(evs)
}

// Info 返回诊断快照
func (m *Manager) Info() ConnectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ConnectionInfo{
		State:             m.state,
		Authenticated:     m.authenticated,
		ReconnectAttempts: m.attempts,
		QueuedCount:       m.queue.len(),
		PendingCount:      m.tracker.count(),
		LastHeartbeat:     m.lastHeartbeat,
		UserID:            m.userID,
	}
}

// beginConnectLocked moves to connecting, arms the connect timeout and
// spawns the dial goroutine.
func (m *Manager) beginConnectLocked() []event.Event {
	evs := m.setStateLocked(StateConnecting)
	m.epoch++
	epoch := m.epoch
	m.connectTimer = m.cfg.Clock.AfterFunc(m.cfg.ConnectTimeout, func() { m.onConnectTimeout(epoch) })
	go m.dial(epoch, m.credential)
	return evs
}

func (m *Manager) dial(epoch uint64, credential string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ConnectTimeout)
	defer cancel()

	if m.cfg.Credentials != nil {
		fresh, err := m.cfg.Credentials(ctx)
		switch {
		case err != nil:
			logger.L().Sugar().Warnw("credential_refresh_failed", "err", err)
		case fresh != "":
			credential = fresh
		}
	}

	conn, err := m.cfg.Dialer.Dial(ctx, m.cfg.URL, credential)
	if err != nil {
		m.onDialError(epoch, err)
		return
	}
	m.onTransportOpened(epoch, conn, credential)
}

func (m *Manager) onTransportOpened(epoch uint64, conn transport.Conn, credential string) {
	m.mu.Lock()
	if epoch != m.epoch || m.state != StateConnecting {
		m.mu.Unlock()
		_ = conn.Close(transport.CloseNormal)
		return
	}
	stopTimer(&m.connectTimer)
	m.conn = conn
	m.credential = credential
	m.authenticated = false
	m.sessionEstablished = true
	m.lastHeartbeat = m.cfg.Clock.Now()
	evs := m.setStateLocked(StateConnected)
	m.scheduleHeartbeatLocked(epoch)
	go m.readLoop(epoch, conn)
	m.mu.Unlock()

	logger.L().Sugar().Infow("transport_opened", "url", m.cfg.URL)
	m.publishAll(evs)
}

func (m *Manager) onDialError(epoch uint64, err error) {
	m.mu.Lock()
	if epoch != m.epoch || m.state != StateConnecting {
		m.mu.Unlock()
		return
	}
	logger.L().Sugar().Warnw("dial_error", "url", m.cfg.URL, "err", err)
	evs := m.handleClosureLocked(transport.CloseCode(err), false)
	m.mu.Unlock()
	m.publishAll(evs)
}

func (m *Manager) onConnectTimeout(epoch uint64) {
	m.mu.Lock()
	if epoch != m.epoch || m.state != StateConnecting {
		m.mu.Unlock()
		return
	}
	logger.L().Sugar().Warnw("connect_timeout", "url", m.cfg.URL)
	evs := []event.Event{&event.Timeout{When: m.cfg.Clock.Now()}}
	evs = append(evs, m.handleClosureLocked(transport.CloseAbnormal, false)...)
	m.mu.Unlock()
	m.publishAll(evs)
}

func (m *Manager) readLoop(epoch uint64, conn transport.Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.onTransportClosed(epoch, err)
			return
		}
		m.onFrame(epoch, data)
	}
}

func (m *Manager) onTransportClosed(epoch uint64, err error) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	code := transport.CloseCode(err)
	normal := transport.IsNormalClose(err)
	logger.L().Sugar().Infow("transport_closed", "code", code, "normal", normal)
	evs := m.handleClosureLocked(code, normal)
	m.mu.Unlock()
	m.publishAll(evs)
}

// handleClosureLocked tears the current connection down and runs the
// reconnection policy: reconnect only after an abnormal closure of a
// connection that had been established, and only while the attempt ceiling
// holds.
func (m *Manager) handleClosureLocked(code int, normal bool) []event.Event {
	stopTimer(&m.connectTimer)
	stopTimer(&m.heartbeatTimer)
	if m.conn != nil {
		_ = m.conn.Close(code)
		m.conn = nil
	}
	m.authenticated = false
	m.epoch++

	evs := []event.Event{&event.Disconnect{When: m.cfg.Clock.Now(), Code: code, Normal: normal}}
	if normal || !m.sessionEstablished {
		return append(evs, m.setStateLocked(StateDisconnected)...)
	}
	return append(evs, m.scheduleReconnectLocked()...)
}

func (m *Manager) scheduleReconnectLocked() []event.Event {
	m.attempts++
	if m.attempts > m.cfg.MaxReconnectAttempts {
		logger.L().Sugar().Warnw("reconnect_exhausted", "attempts", m.attempts-1)
		evs := m.setStateLocked(StateFailed)
		return append(evs, &event.Failed{When: m.cfg.Clock.Now(), Attempts: m.attempts - 1})
	}
	observe.IncReconnect()
	delay := backoffDelay(m.cfg.BackoffBase, m.cfg.BackoffCap, m.attempts)
	logger.L().Sugar().Infow("reconnect_scheduled", "attempt", m.attempts, "delay", delay)
	evs := m.setStateLocked(StateReconnecting)
	epoch := m.epoch
	m.backoffTimer = m.cfg.Clock.AfterFunc(delay, func() { m.onBackoffElapsed(epoch) })
	return evs
}

func (m *Manager) onBackoffElapsed(epoch uint64) {
	m.mu.Lock()
	if epoch != m.epoch || m.state != StateReconnecting {
		m.mu.Unlock()
		return
	}
	evs := m.beginConnectLocked()
	m.mu.Unlock()
	m.publishAll(evs)
}

func (m *Manager) onFrame(epoch uint64, data []byte) {
	env, err := protocol.DecodeBytes(m.cfg.Codec, data, m.cfg.MaxFrameSize)
	if err != nil {
		// 单帧解码失败不关闭连接
		observe.IncParseError()
		logger.L().Sugar().Warnw("frame_decode_error", "err", err)
		m.bus.Publish(&event.ParseFailure{When: m.cfg.Clock.Now(), Err: err})
		return
	}
	observe.IncMessage("received")

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	var evs []event.Event
	switch env.Type {
	case protocol.MsgAuthSuccess:
		evs = m.onAuthSuccessLocked(env)
	case protocol.MsgAuthFailure:
		evs = m.onAuthFailureLocked(env)
	case protocol.MsgHeartbeat:
		m.lastHeartbeat = m.cfg.Clock.Now()
		observe.IncHeartbeat("received")
	case protocol.MsgDeliveryReceipt:
		evs = m.onDeliveryReceiptLocked(env)
	case protocol.MsgServerError, protocol.MsgRateLimit:
		logger.L().Sugar().Warnw("server_notice", "type", env.Type, "payload", string(env.Payload))
		evs = append(evs, &event.InboundMessage{When: m.cfg.Clock.Now(), Envelope: env})
	default:
		evs = append(evs, &event.InboundMessage{When: m.cfg.Clock.Now(), Envelope: env})
	}
	m.mu.Unlock()
	m.publishAll(evs)
}

func (m *Manager) onAuthSuccessLocked(env *protocol.Envelope) []event.Event {
	if m.state != StateConnected {
		return nil
	}
	m.authenticated = true
	m.attempts = 0
	logger.L().Sugar().Infow("authenticated", "user", m.userID)
	// 认证完成后立刻按 FIFO 清空积压，持有锁保证与后续 Send 的顺序
	m.flushQueueLocked()
	return []event.Event{&event.InboundMessage{When: m.cfg.Clock.Now(), Envelope: env}}
}

func (m *Manager) onAuthFailureLocked(env *protocol.Envelope) []event.Event {
	reason := ""
	if p, err := protocol.DecodePayload(env); err == nil {
		if ar, ok := p.(*protocol.AuthResultPayload); ok {
			reason = ar.Reason
		}
	}
	logger.L().Sugar().Warnw("authentication_failed", "reason", reason)

	stopTimer(&m.heartbeatTimer)
	m.epoch++
	if m.conn != nil {
		_ = m.conn.Close(transport.CloseNormal)
		m.conn = nil
	}
	m.authenticated = false
	m.sessionEstablished = false
	// 认证失败不自动重连，由应用显式恢复
	evs := m.setStateLocked(StateDisconnected)
	return append(evs, &event.AuthFailure{When: m.cfg.Clock.Now(), Reason: reason})
}

func (m *Manager) onDeliveryReceiptLocked(env *protocol.Envelope) []event.Event {
	evs := []event.Event{&event.InboundMessage{When: m.cfg.Clock.Now(), Envelope: env}}
	p, err := protocol.DecodePayload(env)
	if err != nil {
		return evs
	}
	receipt, ok := p.(*protocol.DeliveryReceiptPayload)
	if !ok || receipt.MessageID == "" {
		return evs
	}
	if orig := m.tracker.resolve(receipt.MessageID); orig != nil {
		evs = append(evs, &event.Acked{When: m.cfg.Clock.Now(), Envelope: orig})
	}
	return evs
}

func (m *Manager) flushQueueLocked() {
	if m.conn == nil {
		return
	}
	conn := m.conn
	m.queue.drainInto(func(env *protocol.Envelope) error {
		data, err := protocol.EncodeBytes(m.cfg.Codec, env)
		if err != nil {
			logger.L().Sugar().Warnw("flush_encode_error", "id", env.ID, "err", err)
			return nil // 已入队的消息编码失败无法重试，丢弃并继续
		}
		if err := conn.WriteMessage(data); err != nil {
			logger.L().Sugar().Warnw("flush_write_error", "id", env.ID, "err", err)
			return err
		}
		observe.IncMessage("sent")
		return nil
	})
	observe.SetQueueDepth(float64(m.queue.len()))
}

func (m *Manager) setStateLocked(s State) []event.Event {
	if m.state == s {
		return nil
	}
	from := m.state
	m.state = s
	observe.SetState(float64(s))
	logger.L().Sugar().Infow("state_changed", "from", from.String(), "to", s.String())
	return []event.Event{&event.StateChange{When: m.cfg.Clock.Now(), From: from.String(), To: s.String()}}
}

func (m *Manager) publishAll(evs []event.Event) {
	for _, e := range evs {
		m.bus.Publish(e)
	}
}
