package realtime

import (
	"testing"
	"time"

	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
)

func TestTrackerResolveCancelsTimeout(t *testing.T) {
	clk := newFakeClock()
	tr := newDeliveryTracker(clk, 10*time.Second)

	fired := 0
	env := makeEnv(1)
	tr.track(env, func(*protocol.Envelope) { fired++ })

	if got := tr.resolve(env.ID); got == nil || got.ID != env.ID {
		t.Fatalf("resolve should return the tracked envelope, got %v", got)
	}
	clk.Advance(time.Minute)
	if fired != 0 {
		t.Fatalf("timeout must not fire after resolution")
	}
	if tr.count() != 0 {
		t.Fatalf("tracker should be empty")
	}
}

func TestTrackerTimeoutFiresOnce(t *testing.T) {
	clk := newFakeClock()
	tr := newDeliveryTracker(clk, 10*time.Second)

	var timedOut []string
	env := makeEnv(1)
	tr.track(env, func(e *protocol.Envelope) { timedOut = append(timedOut, e.ID) })

	clk.Advance(9 * time.Second)
	if len(timedOut) != 0 {
		t.Fatalf("timeout fired early")
	}
	clk.Advance(2 * time.Second)
	if len(timedOut) != 1 || timedOut[0] != env.ID {
		t.Fatalf("expected exactly one timeout for %s, got %v", env.ID, timedOut)
	}

	// resolve after timeout is a no-op
	if got := tr.resolve(env.ID); got != nil {
		t.Fatalf("resolve after timeout should be nil, got %v", got)
	}
	clk.Advance(time.Minute)
	if len(timedOut) != 1 {
		t.Fatalf("timeout fired twice: %v", timedOut)
	}
}

func TestTrackerResetCancelsAll(t *testing.T) {
	clk := newFakeClock()
	tr := newDeliveryTracker(clk, 10*time.Second)

	fired := 0
	for i := 0; i < 3; i++ {
		tr.track(makeEnv(i), func(*protocol.Envelope) { fired++ })
	}
	if tr.count() != 3 {
		t.Fatalf("expected 3 pending, got %d", tr.count())
	}

	tr.reset()
	clk.Advance(time.Minute)
	if fired != 0 {
		t.Fatalf("reset must cancel timers without firing, fired=%d", fired)
	}
	if tr.count() != 0 {
		t.Fatalf("expected empty tracker after reset")
	}
}
