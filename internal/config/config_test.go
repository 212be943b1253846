package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.URL != "ws://127.0.0.1:8080/ws" {
		t.Fatalf("unexpected default url %s", cfg.URL)
	}
	if cfg.QueueCapacity != 100 {
		t.Fatalf("unexpected default queue capacity %d", cfg.QueueCapacity)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Fatalf("unexpected default heartbeat interval %s", cfg.HeartbeatInterval)
	}
	if cfg.RedisKey != "apexmatch:token" {
		t.Fatalf("unexpected default redis key %s", cfg.RedisKey)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APEXMATCH_WS_URL", "wss://rt.example.com/ws")
	t.Setenv("APEXMATCH_TOKEN", "tok")
	t.Setenv("APEXMATCH_QUEUE_CAP", "250")
	t.Setenv("APEXMATCH_HEARTBEAT_SEC", "15")
	t.Setenv("APEXMATCH_DELIVERY_TIMEOUT_SEC", "bogus")

	cfg := Load()
	if cfg.URL != "wss://rt.example.com/ws" {
		t.Fatalf("url not taken from env: %s", cfg.URL)
	}
	if cfg.Token != "tok" {
		t.Fatalf("token not taken from env")
	}
	if cfg.QueueCapacity != 250 {
		t.Fatalf("queue capacity not taken from env: %d", cfg.QueueCapacity)
	}
	if cfg.HeartbeatInterval != 15*time.Second {
		t.Fatalf("heartbeat interval not taken from env: %s", cfg.HeartbeatInterval)
	}
	// 非法数值回退默认
	if cfg.DeliveryTimeout != 10*time.Second {
		t.Fatalf("bad env value must fall back to default: %s", cfg.DeliveryTimeout)
	}
}
