package realtime

import (
	"time"

	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
	"github.com/Alextheon3/apexmatch-sub001/internal/token"
	"github.com/Alextheon3/apexmatch-sub001/internal/transport"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultDeliveryTimeout   = 10 * time.Second
	defaultBackoffBase       = 1 * time.Second
	defaultBackoffCap        = 30 * time.Second
	defaultMaxAttempts       = 5
	defaultQueueCapacity     = 100
	defaultMaxFrameSize      = 1 << 20
)

// Config 连接管理器的运行时配置
type Config struct {
	// URL is the backend endpoint. Required.
	URL string
	// Dialer opens transport connections. Required.
	Dialer transport.Dialer
	// Credentials, when set, is consulted once per connect/reconnect cycle
	// for a fresh bearer token. Optional; the credential passed to Connect
	// is reused otherwise.
	Credentials token.Provider
	// Codec serializes envelopes. Optional; default JSONCodec.
	Codec protocol.MessageCodec
	// Clock drives all timers. Optional; default wall clock.
	Clock Clock

	// ConnectTimeout bounds a single transport open. Optional; default 10s.
	ConnectTimeout time.Duration
	// HeartbeatInterval is the liveness ping period while connected.
	// Optional; default 30s.
	HeartbeatInterval time.Duration
	// DeliveryTimeout bounds the wait for a delivery receipt. Optional;
	// default 10s.
	DeliveryTimeout time.Duration
	// BackoffBase and BackoffCap shape the reconnect delay
	// base*2^(attempt-1), capped. Optional; defaults 1s and 30s.
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// MaxReconnectAttempts caps one failure episode. Optional; default 5.
	MaxReconnectAttempts int
	// QueueCapacity bounds the outbound queue. Optional; default 100.
	QueueCapacity int
	// MaxFrameSize guards inbound frame decoding. Optional; default 1MiB.
	MaxFrameSize int
	// LivenessTimeout, when >0, force-closes the transport if no server
	// heartbeat arrived for that long, so the reconnect path runs. Left at
	// zero, stalled connections are detected by the transport's own close
	// signal. Optional; default 0 (disabled).
	LivenessTimeout time.Duration
}

func (c *Config) withDefaults() {
	if c.Codec == nil {
		c.Codec = protocol.JSONCodec{}
	}
	if c.Clock == nil {
		c.Clock = realClock{}
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = defaultDeliveryTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	if c.BackoffCap < c.BackoffBase {
		c.BackoffCap = defaultBackoffCap
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = defaultMaxAttempts
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = defaultMaxFrameSize
	}
}
