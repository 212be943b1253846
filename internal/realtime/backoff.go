package realtime

import "time"

// backoffDelay returns the delay before the given reconnection attempt
// (1-based): base * 2^(attempt-1), capped at max. No jitter.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// 位移溢出时直接取上限
	if attempt > 32 {
		return max
	}
	d := base << uint(attempt-1)
	if d <= 0 || d > max {
		return max
	}
	return d
}
