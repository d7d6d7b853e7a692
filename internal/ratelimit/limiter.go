package ratelimit

import (
	"sync"
	"time"
)

// Result is one admission decision. The limiter always produces a Result;
// it never errors. Any internal failure mode degrades to allowed=true
// because rate limiting protects capacity, it does not guard correctness.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit is the tier's per-window budget.
	Limit int

	// Remaining is the quota left in the current window, never negative.
	Remaining int

	// ResetTime is the absolute end of the current window. A request
	// arriving exactly at ResetTime starts a fresh window.
	ResetTime time.Time
}

// record tracks one identifier's current window within a tier.
// Once the window has elapsed the record is logically absent and is
// replaced, never reused.
type record struct {
	count     int
	resetTime time.Time
}

// Limiter makes fixed-window admission decisions keyed by identifier and
// tier. Counters live in a bounded TTL cache, so an identifier silent for
// the cache TTL (or crowded out by capacity eviction) simply re-enters as
// never-seen -- an acceptable bias toward allowing.
//
// The read-modify-write on a counter is guarded by a mutex, so concurrent
// requests for the same identifier cannot overshoot the budget.
type Limiter struct {
	mu    sync.Mutex
	cache *Cache[*record]

	// now is swapped out by tests to step through windows.
	now func() time.Time
}

// NewLimiter creates a limiter tracking at most cacheSize identifier+tier
// pairs, each retained at most cacheTTL.
func NewLimiter(cacheSize int, cacheTTL time.Duration) *Limiter {
	return &Limiter{
		cache: NewCache[*record](cacheSize, cacheTTL),
		now:   time.Now,
	}
}

// key scopes a counter to a tier so tiers never share windows.
func key(identifier string, tier Tier) string {
	return string(tier) + ":" + identifier
}

// Check admits or rejects one request for identifier under tier and
// consumes a slot when admitted. Fixed-window algorithm: the first request
// in a window sets count=1 and resetTime=now+window; later requests in the
// same window increment until the budget is spent.
func (l *Limiter) Check(identifier string, tier Tier) Result {
	policy := PolicyFor(tier)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(identifier, tier)

	rec, ok := l.cache.Get(k)
	if !ok || !now.Before(rec.resetTime) {
		// First request ever, or the previous window elapsed: start fresh.
		rec = &record{count: 1, resetTime: now.Add(policy.Window)}
		l.cache.Set(k, rec)
		return Result{
			Allowed:   true,
			Limit:     policy.MaxRequests,
			Remaining: policy.MaxRequests - 1,
			ResetTime: rec.resetTime,
		}
	}

	allowed := rec.count < policy.MaxRequests
	if allowed {
		// In-place increment. The cache Get above already refreshed LRU
		// recency; the TTL deliberately keeps running from insertion.
		rec.count++
	}

	return Result{
		Allowed:   allowed,
		Limit:     policy.MaxRequests,
		Remaining: max(0, policy.MaxRequests-rec.count),
		ResetTime: rec.resetTime,
	}
}

// Peek reports the current quota state without consuming a slot. Used to
// build response headers. This is a true non-mutating read: it neither
// increments the counter nor touches LRU recency.
//
// For an identifier with no live window, Peek reports the full budget and
// the reset a fresh window would have if one started now.
func (l *Limiter) Peek(identifier string, tier Tier) Result {
	policy := PolicyFor(tier)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	rec, ok := l.cache.Peek(key(identifier, tier))
	if !ok || !now.Before(rec.resetTime) {
		return Result{
			Allowed:   true,
			Limit:     policy.MaxRequests,
			Remaining: policy.MaxRequests,
			ResetTime: now.Add(policy.Window),
		}
	}

	return Result{
		Allowed:   rec.count < policy.MaxRequests,
		Limit:     policy.MaxRequests,
		Remaining: max(0, policy.MaxRequests-rec.count),
		ResetTime: rec.resetTime,
	}
}

// Reset drops the counters for an identifier. With an empty tier the
// identifier is cleared across every configured tier; otherwise only the
// named tier. Used by admin tooling and tests.
func (l *Limiter) Reset(identifier string, tier Tier) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tier != "" {
		l.cache.Delete(key(identifier, tier))
		return
	}
	for _, t := range Tiers() {
		l.cache.Delete(key(identifier, t))
	}
}

// Clear drops every counter. Called at shutdown and from the admin API.
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Clear()
}

// Stats describes the limiter's cache occupancy.
type Stats struct {
	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
}

// Stats reports current cache occupancy for the admin surface.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Entries:  l.cache.Len(),
		Capacity: l.cache.Capacity(),
	}
}
