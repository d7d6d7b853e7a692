package ratelimit

import "time"

// Tier names a rate-limit configuration. Routes pick the tier matching the
// cost of the operation they expose.
type Tier string

const (
	// TierAPI is the baseline for authenticated reads.
	TierAPI Tier = "api"

	// TierAuth covers login/register attempts. Deliberately tight: failed
	// credential guessing must be expensive.
	TierAuth Tier = "auth"

	// TierCreate covers record-creating writes.
	TierCreate Tier = "create"

	// TierSearch covers search endpoints, which clients call per keystroke.
	TierSearch Tier = "search"

	// TierAdmin covers the super-admin surface.
	TierAdmin Tier = "admin"

	// TierUpload covers uploads and outbound sync triggers.
	TierUpload Tier = "upload"
)

// Policy is one tier's immutable configuration.
type Policy struct {
	// Window is the fixed-window duration.
	Window time.Duration

	// MaxRequests is the number of requests admitted per window.
	MaxRequests int
}

// policies maps each tier to its window and budget. Defined once at
// process start; adding a tier is adding a row here.
var policies = map[Tier]Policy{
	TierAPI:    {Window: time.Minute, MaxRequests: 60},
	TierAuth:   {Window: 15 * time.Minute, MaxRequests: 5},
	TierCreate: {Window: time.Minute, MaxRequests: 10},
	TierSearch: {Window: time.Minute, MaxRequests: 100},
	TierAdmin:  {Window: time.Minute, MaxRequests: 30},
	TierUpload: {Window: time.Minute, MaxRequests: 5},
}

// PolicyFor returns the policy for a tier, falling back to the api
// baseline for unknown tiers.
func PolicyFor(tier Tier) Policy {
	if p, ok := policies[tier]; ok {
		return p
	}
	return policies[TierAPI]
}

// Tiers returns the names of all configured tiers.
func Tiers() []Tier {
	names := make([]Tier, 0, len(policies))
	for t := range policies {
		names = append(names, t)
	}
	return names
}
