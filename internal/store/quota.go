package store

import "github.com/wnt/pollhub/internal/models"

// FreePollLimit is the number of polls a wallet may create without a
// creator pass under the default policy.
const FreePollLimit = 1

// QuotaPolicy decides whether a wallet may create another poll. A nil
// return allows the creation; a *QuotaError denies it with the reason
// shown to the user. Policies must not mutate anything: the store calls
// them before any state change.
type QuotaPolicy interface {
	CanCreate(profile models.Profile, authoredCount int) error
}

// FreeLimitPolicy grants every wallet a fixed number of free polls and
// lets creator-pass holders create without limit. This is the
// authoritative default policy.
type FreeLimitPolicy struct {
	Limit int
}

// CanCreate denies once the free allowance is used up, unless the profile
// holds a creator pass.
func (p FreeLimitPolicy) CanCreate(profile models.Profile, authoredCount int) error {
	limit := p.Limit
	if limit <= 0 {
		limit = FreePollLimit
	}
	if authoredCount >= limit && !profile.HasCreatorPass {
		return &QuotaError{Reason: "Poll limit reached. Mint Creator Pass NFT to create more."}
	}
	return nil
}

// BadgeTierPolicy mirrors the on-chain allowance model: a base allowance
// plus extra polls granted by owned creator badges. ExtraAllowance
// resolves the badge-derived bonus for a wallet; a nil func means no
// bonus. It exists as the alternate policy behind the same conceptual
// operation and is not wired as the default.
type BadgeTierPolicy struct {
	Base           int
	ExtraAllowance func(address string) int
}

// CanCreate denies once the wallet's combined allowance is exhausted.
func (p BadgeTierPolicy) CanCreate(profile models.Profile, authoredCount int) error {
	allowed := p.Base
	if p.ExtraAllowance != nil {
		allowed += p.ExtraAllowance(profile.Address)
	}
	if authoredCount >= allowed {
		return &QuotaError{Reason: "Poll allowance exhausted. Earn a higher-tier creator badge to create more."}
	}
	return nil
}
