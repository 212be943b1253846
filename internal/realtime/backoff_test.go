package realtime

import (
	"testing"
	"time"
)

func TestBackoffDelayDoubling(t *testing.T) {
	base := time.Second
	max := 30 * time.Second
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}
	for i, w := range want {
		if got := backoffDelay(base, max, i+1); got != w {
			t.Fatalf("attempt %d: want %v, got %v", i+1, w, got)
		}
	}
}

func TestBackoffNonDecreasing(t *testing.T) {
	base := 500 * time.Millisecond
	max := 30 * time.Second
	prev := time.Duration(0)
	for attempt := 1; attempt <= 64; attempt++ {
		d := backoffDelay(base, max, attempt)
		if d < prev {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		if d > max {
			t.Fatalf("delay exceeds ceiling at attempt %d: %v", attempt, d)
		}
		prev = d
	}
}
