package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	env, err := New(MsgChat, &ChatPayload{MatchID: "m1", Text: "hi"}, "u1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if env.ID == "" {
		t.Fatalf("expected generated id")
	}

	data, err := EncodeBytes(JSONCodec{}, env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeBytes(JSONCodec{}, data, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != env.ID || got.Type != MsgChat || got.Sender != "u1" || got.Ts != env.Ts {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, env)
	}

	p, err := DecodePayload(got)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	chat, ok := p.(*ChatPayload)
	if !ok {
		t.Fatalf("expected *ChatPayload, got %T", p)
	}
	if chat.MatchID != "m1" || chat.Text != "hi" {
		t.Fatalf("payload mismatch: %+v", chat)
	}
}

func TestJSONCodecMalformedFrame(t *testing.T) {
	_, err := DecodeBytes(JSONCodec{}, []byte("{not json"), 0)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
}

func TestJSONCodecMissingFields(t *testing.T) {
	if _, err := DecodeBytes(JSONCodec{}, []byte(`{"id":"x","timestamp":1}`), 0); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := DecodeBytes(JSONCodec{}, []byte(`{"type":"chat_message","timestamp":1}`), 0); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestJSONCodecMaxSizeGuard(t *testing.T) {
	env, _ := New(MsgChat, &ChatPayload{MatchID: "m1", Text: strings.Repeat("x", 4096)}, "u1")
	data, _ := EncodeBytes(JSONCodec{}, env)

	if _, err := DecodeBytes(JSONCodec{}, data, 64); err == nil {
		t.Fatalf("expected error for oversized frame")
	}
	if _, err := DecodeBytes(JSONCodec{}, data, len(data)+1); err != nil {
		t.Fatalf("frame within limit should decode: %v", err)
	}
}

func TestDecodePayloadUnknownType(t *testing.T) {
	env := &Envelope{ID: "1", Type: MessageType("future_feature"), Payload: []byte(`{"a":1}`), Ts: 1}
	p, err := DecodePayload(env)
	if err != nil {
		t.Fatalf("unknown type must not error: %v", err)
	}
	u, ok := p.(*UnknownPayload)
	if !ok {
		t.Fatalf("expected *UnknownPayload, got %T", p)
	}
	if u.Type != "future_feature" || !bytes.Equal(u.Raw, []byte(`{"a":1}`)) {
		t.Fatalf("unexpected unknown payload: %+v", u)
	}
}

func TestDecodePayloadBadShape(t *testing.T) {
	env := &Envelope{ID: "1", Type: MsgTrustScore, Payload: []byte(`{"score":"high"}`), Ts: 1}
	if _, err := DecodePayload(env); err == nil {
		t.Fatalf("expected payload shape error")
	}
}

func TestNewRejectsEmptyType(t *testing.T) {
	if _, err := New("", nil, "u1"); err == nil {
		t.Fatalf("expected error for empty type")
	}
}
