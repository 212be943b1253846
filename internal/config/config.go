package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	URL         string
	Token       string
	UserID      string
	RedisAddr   string
	RedisDB     int
	RedisKey    string
	MetricsAddr string

	QueueCapacity     int
	HeartbeatInterval time.Duration
	DeliveryTimeout   time.Duration
	ConnectTimeout    time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func Load() *Config {
	return &Config{
		URL:         getEnv("APEXMATCH_WS_URL", "ws://127.0.0.1:8080/ws"),
		Token:       getEnv("APEXMATCH_TOKEN", ""),
		UserID:      getEnv("APEXMATCH_USER_ID", ""),
		RedisAddr:   getEnv("APEXMATCH_REDIS_ADDR", ""),
		RedisDB:     getInt("APEXMATCH_REDIS_DB", 0),
		RedisKey:    getEnv("APEXMATCH_REDIS_KEY", "apexmatch:token"),
		MetricsAddr: getEnv("APEXMATCH_METRICS_ADDR", ""),

		QueueCapacity:     getInt("APEXMATCH_QUEUE_CAP", 100),
		HeartbeatInterval: time.Duration(getInt("APEXMATCH_HEARTBEAT_SEC", 30)) * time.Second,
		DeliveryTimeout:   time.Duration(getInt("APEXMATCH_DELIVERY_TIMEOUT_SEC", 10)) * time.Second,
		ConnectTimeout:    time.Duration(getInt("APEXMATCH_CONNECT_TIMEOUT_SEC", 10)) * time.Second,
	}
}
