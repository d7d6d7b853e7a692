package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

// testLimiter returns a limiter with a steppable clock.
func testLimiter() (*Limiter, *time.Time) {
	l := NewLimiter(1000, time.Hour)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.cache.now = l.now
	return l, &now
}

func TestCheckAllowsUpToBudget(t *testing.T) {
	l, _ := testLimiter()
	policy := PolicyFor(TierAuth)

	for i := 1; i <= policy.MaxRequests; i++ {
		res := l.Check("ip:10.0.0.1", TierAuth)
		if !res.Allowed {
			t.Fatalf("request %d denied, want allowed", i)
		}
		if want := policy.MaxRequests - i; res.Remaining != want {
			t.Errorf("request %d Remaining = %d, want %d", i, res.Remaining, want)
		}
	}

	res := l.Check("ip:10.0.0.1", TierAuth)
	if res.Allowed {
		t.Error("request over budget allowed, want denied")
	}
	if res.Remaining != 0 {
		t.Errorf("denied Remaining = %d, want 0", res.Remaining)
	}
}

func TestCheckWindowReset(t *testing.T) {
	l, now := testLimiter()
	policy := PolicyFor(TierAuth)

	start := *now
	for i := 0; i < policy.MaxRequests; i++ {
		l.Check("ip:10.0.0.1", TierAuth)
	}
	if res := l.Check("ip:10.0.0.1", TierAuth); res.Allowed {
		t.Fatal("expected exhausted budget")
	}

	// One instant before the boundary the window still holds.
	*now = start.Add(policy.Window - time.Nanosecond)
	if res := l.Check("ip:10.0.0.1", TierAuth); res.Allowed {
		t.Error("allowed just before window end, want denied")
	}

	// At the boundary a fresh window opens with a full budget.
	*now = start.Add(policy.Window)
	res := l.Check("ip:10.0.0.1", TierAuth)
	if !res.Allowed {
		t.Fatal("denied at window boundary, want allowed")
	}
	if want := policy.MaxRequests - 1; res.Remaining != want {
		t.Errorf("Remaining after reset = %d, want %d", res.Remaining, want)
	}
	if want := start.Add(policy.Window + policy.Window); !res.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", res.ResetTime, want)
	}
}

func TestCheckCreateTierScenario(t *testing.T) {
	l, now := testLimiter()
	start := *now

	// Ten creations in a minute succeed, the eleventh is rejected, and a
	// minute later the identifier is fresh again.
	for i := 0; i < 10; i++ {
		res := l.Check("ip:203.0.113.9", TierCreate)
		if !res.Allowed {
			t.Fatalf("create %d denied", i+1)
		}
		if want := 9 - i; res.Remaining != want {
			t.Errorf("create %d Remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}
	if res := l.Check("ip:203.0.113.9", TierCreate); res.Allowed {
		t.Error("eleventh create allowed, want denied")
	}

	*now = start.Add(time.Minute + time.Millisecond)
	res := l.Check("ip:203.0.113.9", TierCreate)
	if !res.Allowed || res.Remaining != 9 {
		t.Errorf("after window: Allowed=%v Remaining=%d, want true 9", res.Allowed, res.Remaining)
	}
}

func TestCheckIsolatesIdentifiersAndTiers(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < PolicyFor(TierAuth).MaxRequests; i++ {
		l.Check("ip:10.0.0.1", TierAuth)
	}

	// A different identifier on the same tier is untouched.
	if res := l.Check("ip:10.0.0.2", TierAuth); !res.Allowed {
		t.Error("second identifier denied, want allowed")
	}
	// The same identifier on a different tier is untouched.
	if res := l.Check("ip:10.0.0.1", TierAPI); !res.Allowed {
		t.Error("other tier denied, want allowed")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l, _ := testLimiter()
	policy := PolicyFor(TierAPI)

	// Peek on an unseen identifier reports the full budget.
	res := l.Peek("ip:10.0.0.1", TierAPI)
	if !res.Allowed || res.Remaining != policy.MaxRequests {
		t.Fatalf("fresh Peek: Allowed=%v Remaining=%d, want true %d",
			res.Allowed, res.Remaining, policy.MaxRequests)
	}

	l.Check("ip:10.0.0.1", TierAPI)
	for i := 0; i < 5; i++ {
		res = l.Peek("ip:10.0.0.1", TierAPI)
	}
	if want := policy.MaxRequests - 1; res.Remaining != want {
		t.Errorf("Remaining after repeated Peek = %d, want %d", res.Remaining, want)
	}
}

func TestResetClearsIdentifier(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < PolicyFor(TierAuth).MaxRequests; i++ {
		l.Check("ip:10.0.0.1", TierAuth)
	}
	l.Check("ip:10.0.0.1", TierAPI)

	l.Reset("ip:10.0.0.1", "")

	if res := l.Check("ip:10.0.0.1", TierAuth); !res.Allowed {
		t.Error("auth tier still limited after Reset")
	}
	if res := l.Peek("ip:10.0.0.1", TierAPI); res.Remaining != PolicyFor(TierAPI).MaxRequests {
		t.Errorf("api tier Remaining after Reset = %d, want full budget", res.Remaining)
	}
}

func TestResetSingleTier(t *testing.T) {
	l, _ := testLimiter()

	l.Check("ip:10.0.0.1", TierAuth)
	l.Check("ip:10.0.0.1", TierAPI)

	l.Reset("ip:10.0.0.1", TierAuth)

	if res := l.Peek("ip:10.0.0.1", TierAuth); res.Remaining != PolicyFor(TierAuth).MaxRequests {
		t.Error("auth counter survived a targeted Reset")
	}
	if res := l.Peek("ip:10.0.0.1", TierAPI); res.Remaining != PolicyFor(TierAPI).MaxRequests-1 {
		t.Error("api counter was dropped by a Reset scoped to auth")
	}
}

func TestLimiterEvictionReopensBudget(t *testing.T) {
	// A limiter sized for 3 counters forgets the oldest identifier when a
	// fourth arrives, so the evicted identifier gets a fresh budget.
	l := NewLimiter(3, time.Hour)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.cache.now = l.now

	budget := PolicyFor(TierAuth).MaxRequests
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("ip:10.0.0.%d", i)
		for j := 0; j < budget; j++ {
			l.Check(id, TierAuth)
		}
	}

	if res := l.Check("ip:10.0.0.0", TierAuth); !res.Allowed {
		t.Error("evicted identifier still limited, want fresh budget")
	}
	if res := l.Check("ip:10.0.0.3", TierAuth); res.Allowed {
		t.Error("retained identifier allowed over budget")
	}
}

func TestClearAndStats(t *testing.T) {
	l, _ := testLimiter()

	l.Check("ip:10.0.0.1", TierAPI)
	l.Check("ip:10.0.0.2", TierAPI)

	stats := l.Stats()
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.Capacity != 1000 {
		t.Errorf("Capacity = %d, want 1000", stats.Capacity)
	}

	l.Clear()
	if got := l.Stats().Entries; got != 0 {
		t.Errorf("Entries after Clear = %d, want 0", got)
	}
}

func TestPolicyForUnknownTierFallsBack(t *testing.T) {
	got := PolicyFor(Tier("bogus"))
	want := PolicyFor(TierAPI)
	if got != want {
		t.Errorf("PolicyFor(bogus) = %+v, want api policy %+v", got, want)
	}
}
