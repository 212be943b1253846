package transport

import (
	"context"
	"errors"
	"fmt"
)

// Close codes mirrored from RFC 6455. CloseNormal is the only code treated
// as a user-initiated shutdown by the connection manager.
const (
	CloseNormal    = 1000
	CloseGoingAway = 1001
	CloseAbnormal  = 1006
)

// Conn 是一条消息帧化的双向连接，由连接管理器独占持有
type Conn interface {
	// ReadMessage blocks until the next text frame arrives. A connection
	// that ended returns a *CloseError when the peer sent a close frame,
	// or the underlying transport error otherwise.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one text frame. Safe for concurrent use.
	WriteMessage(data []byte) error
	// Close tears the connection down with the given close code.
	// Idempotent.
	Close(code int) error
}

// Dialer opens connections to the messaging backend carrying a bearer
// credential.
type Dialer interface {
	Dial(ctx context.Context, url, credential string) (Conn, error)
}

// CloseError 表示对端以指定状态码关闭了连接
type CloseError struct {
	Code int
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("transport: connection closed with code %d", e.Code)
}

// CloseCode extracts the close code from a read error. Errors that carry no
// code (network resets, timeouts) count as abnormal.
func CloseCode(err error) int {
	var ce *CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CloseAbnormal
}

// IsNormalClose reports whether err represents a normal, user-initiated
// closure.
func IsNormalClose(err error) bool {
	code := CloseCode(err)
	return code == CloseNormal || code == CloseGoingAway
}
