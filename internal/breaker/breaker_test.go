package breaker

import (
	"testing"
	"time"
)

// fakeClock lets tests control the breaker's view of time.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 29, 12, 0, 0, 0, time.UTC)}
	b := New(threshold, reset)
	b.now = clock.now
	return b, clock
}

func TestOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(5, 30*time.Second)

	for i := 0; i < 4; i++ {
		b.OnFailure()
		if !b.CanRequest() {
			t.Fatalf("breaker denied request after %d failures, threshold is 5", i+1)
		}
	}
	b.OnFailure()
	if b.CanRequest() {
		t.Fatal("breaker still admits requests after reaching the failure threshold")
	}
	if b.State() != Open {
		t.Fatalf("state = %v, want open", b.State())
	}
}

func TestResetTimeoutAdmitsProbe(t *testing.T) {
	b, clock := newTestBreaker(2, 30*time.Second)
	b.OnFailure()
	b.OnFailure()

	clock.advance(29 * time.Second)
	if b.CanRequest() {
		t.Fatal("breaker admitted a request before the reset timeout elapsed")
	}

	clock.advance(2 * time.Second)
	if !b.CanRequest() {
		t.Fatal("breaker denied the probe after the reset timeout elapsed")
	}
	if b.State() != HalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
}

func TestHalfOpenAdmitsSingleProbe(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second)
	b.OnFailure()
	clock.advance(31 * time.Second)

	if !b.CanRequest() {
		t.Fatal("first half-open caller was denied")
	}
	if b.CanRequest() {
		t.Fatal("second caller was admitted while a probe is in flight")
	}

	b.OnSuccess()
	if !b.CanRequest() {
		t.Fatal("breaker stayed shut after a successful probe")
	}
	if b.State() != Closed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestFailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(3, 30*time.Second)
	for i := 0; i < 3; i++ {
		b.OnFailure()
	}
	clock.advance(31 * time.Second)
	if !b.CanRequest() {
		t.Fatal("probe denied after reset timeout")
	}

	b.OnFailure()
	if b.State() != Open {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}
	if b.CanRequest() {
		t.Fatal("breaker admitted a request right after a failed probe")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)
	b.OnFailure()
	b.OnFailure()
	b.OnSuccess()

	// Two more failures stay below the threshold again.
	b.OnFailure()
	b.OnFailure()
	if !b.CanRequest() {
		t.Fatal("failure count was not reset by OnSuccess")
	}
}

func TestRetryAfter(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second)
	if b.RetryAfter() != 0 {
		t.Fatalf("RetryAfter() = %v on a closed breaker, want 0", b.RetryAfter())
	}
	b.OnFailure()
	clock.advance(10 * time.Second)
	if got := b.RetryAfter(); got != 20*time.Second {
		t.Fatalf("RetryAfter() = %v, want 20s", got)
	}
}
