package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SubProtocol 与后端协商的子协议标识
const SubProtocol = "apexmatch.v1"

const (
	defaultHandshakeTimeout = 10 * time.Second
	closeWriteWait          = 5 * time.Second
)

// WSDialer dials the backend over WebSocket. The bearer credential rides in
// the Authorization header of the upgrade request.
type WSDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

func (d *WSDialer) Dial(ctx context.Context, url, credential string) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		Subprotocols:     []string{SubProtocol},
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+credential)

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn, writeTimeout: d.WriteTimeout}, nil
}

// wsConn implements Conn over a gorilla websocket connection.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	writeMu      sync.Mutex
	closeOnce    sync.Once
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return nil, &CloseError{Code: ce.Code}
			}
			return nil, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (w *wsConn) WriteMessage(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close(code int) error {
	var err error
	w.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, "")
		_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		err = w.conn.Close()
	})
	return err
}
