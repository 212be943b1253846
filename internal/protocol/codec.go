package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeError 表示单帧解码失败。单帧解码失败不关闭连接。
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: decode: %s: %v", e.Reason, e.Err)
	}
	return "protocol: decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MessageCodec 消息体数据编码解码器
type MessageCodec interface {
	Name() string
	Encode(w io.Writer, m *Envelope) error
	Decode(r io.Reader, m *Envelope, maxSize int) error
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(w io.Writer, m *Envelope) error {
	enc := json.NewEncoder(w)
	return enc.Encode(m)
}

func (JSONCodec) Decode(r io.Reader, m *Envelope, maxSize int) error {
	rr := r
	if maxSize > 0 {
		rr = io.LimitReader(r, int64(maxSize))
	}
	dec := json.NewDecoder(rr)
	if err := dec.Decode(m); err != nil {
		return &DecodeError{Reason: "malformed frame", Err: err}
	}
	if m.Type == "" {
		return &DecodeError{Reason: "missing field: type"}
	}
	if m.ID == "" {
		return &DecodeError{Reason: "missing field: id"}
	}
	return nil
}

// EncodeBytes serializes an envelope to a single wire frame.
func EncodeBytes(c MessageCodec, m *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes parses a single wire frame into an envelope.
func DecodeBytes(c MessageCodec, data []byte, maxSize int) (*Envelope, error) {
	var m Envelope
	if err := c.Decode(bytes.NewReader(data), &m, maxSize); err != nil {
		return nil, err
	}
	return &m, nil
}
