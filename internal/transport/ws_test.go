package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	Subprotocols:    []string{SubProtocol},
	CheckOrigin:     func(*http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSDialerHandshake(t *testing.T) {
	gotAuth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		// 回显收到的第一帧
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(mt, data)
		// 等客户端关闭
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	d := &WSDialer{HandshakeTimeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), wsURL(srv), "tok-123")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if auth := <-gotAuth; auth != "Bearer tok-123" {
		t.Fatalf("expected bearer credential in upgrade request, got %q", auth)
	}
	wc := conn.(*wsConn)
	if got := wc.conn.Subprotocol(); got != SubProtocol {
		t.Fatalf("expected negotiated subprotocol %s, got %q", SubProtocol, got)
	}

	payload := []byte(`{"id":"1","type":"heartbeat","payload":{},"timestamp":1}`)
	if err := conn.WriteMessage(payload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	echo, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(echo) != string(payload) {
		t.Fatalf("echo mismatch: %s", echo)
	}

	if err := conn.Close(CloseNormal); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := conn.Close(CloseNormal); err != nil {
		t.Fatalf("second Close must be a no-op: %v", err)
	}
}

func TestWSReadSurfacesCloseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}))
	defer srv.Close()

	d := &WSDialer{HandshakeTimeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), wsURL(srv), "tok")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(CloseNormal)

	_, err = conn.ReadMessage()
	var ce *CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CloseError, got %v", err)
	}
	if ce.Code != CloseGoingAway {
		t.Fatalf("expected close code %d, got %d", CloseGoingAway, ce.Code)
	}
	if !IsNormalClose(err) {
		t.Fatalf("going away counts as an orderly shutdown")
	}
}

func TestWSReadSkipsBinaryFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	d := &WSDialer{HandshakeTimeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), wsURL(srv), "tok")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(CloseNormal)

	data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected the text frame, got %q", data)
	}
}

func TestCloseCodeClassification(t *testing.T) {
	if CloseCode(&CloseError{Code: 4000}) != 4000 {
		t.Fatalf("CloseCode must unwrap CloseError")
	}
	if CloseCode(errors.New("plain")) != CloseAbnormal {
		t.Fatalf("unknown errors default to abnormal")
	}
	if !IsNormalClose(&CloseError{Code: CloseNormal}) {
		t.Fatalf("1000 is normal")
	}
	if !IsNormalClose(&CloseError{Code: CloseGoingAway}) {
		t.Fatalf("1001 is normal")
	}
	if IsNormalClose(&CloseError{Code: CloseAbnormal}) {
		t.Fatalf("1006 is abnormal")
	}
	if IsNormalClose(errors.New("plain")) {
		t.Fatalf("non-close errors are abnormal")
	}
}
