package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)
	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker should allow: %v", err)
	}

	b.RecordFailure()
	b.RecordFailure()

	if err := b.Allow(); err == nil {
		t.Fatal("expected breaker to reject after threshold failures")
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open state, got=%s", state)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Millisecond, 1)
	base := time.Now()
	b.now = func() time.Time { return base }

	b.RecordFailure()
	if err := b.Allow(); err == nil {
		t.Fatal("expected rejection while open")
	}

	b.now = func() time.Time { return base.Add(20 * time.Millisecond) }
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to be allowed: %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after half-open success, got=%s", state)
	}
}

func TestSingleFlight_SharesResult(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	calls := 0
	out, err, _ := g.Do("key", func() (any, error) {
		calls++
		return "value", nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if out != "value" || calls != 1 {
		t.Fatalf("unexpected result out=%v calls=%d", out, calls)
	}
}
