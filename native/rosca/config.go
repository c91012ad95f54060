package rosca

import (
	"roscachain/crypto"
)

// Config is the singleton on-chain record bounding the parameters every
// group must satisfy at creation time. It is distinct from the
// process-level config read by cmd/roscacored at startup.
type Config struct {
	Admin             crypto.Address
	MinContribution   *Amount
	MaxContribution   *Amount
	MinMembers        uint32
	MaxMembers        uint32
	MinCycleDuration  uint64
	MaxCycleDuration  uint64
}

// DefaultConfig returns conservative bounds suitable for a freshly
// initialized deployment.
func DefaultConfig(admin crypto.Address) *Config {
	return &Config{
		Admin:            admin,
		MinContribution:  NewAmount(1),
		MaxContribution:  AmountFromBigInt(int128Max),
		MinMembers:       2,
		MaxMembers:       256,
		MinCycleDuration: 1,
		MaxCycleDuration: 365 * 24 * 60 * 60,
	}
}

// ValidateGroupParams checks a prospective group's creation parameters
// against the bounds this Config declares, returning InvalidAmount or
// InvalidState on violation.
func (c *Config) ValidateGroupParams(contributionAmount *Amount, cycleDuration uint64, maxMembers, minMembers uint32) error {
	if contributionAmount.Cmp(c.MinContribution) < 0 {
		return newErr(CodeInvalidAmount, "", "contribution_amount below config minimum")
	}
	if contributionAmount.Cmp(c.MaxContribution) > 0 {
		return newErr(CodeInvalidAmount, "", "contribution_amount above config maximum")
	}
	if minMembers == 0 {
		minMembers = DefaultMinMembers
	}
	if minMembers < c.MinMembers {
		return newErr(CodeInvalidState, "", "min_members below config minimum")
	}
	if maxMembers > c.MaxMembers {
		return newErr(CodeInvalidState, "", "max_members above config maximum")
	}
	if cycleDuration < c.MinCycleDuration {
		return newErr(CodeInvalidState, "", "cycle_duration below config minimum")
	}
	if cycleDuration > c.MaxCycleDuration {
		return newErr(CodeInvalidState, "", "cycle_duration above config maximum")
	}
	return nil
}

// UpdateConfig mutates c with admin-controlled bounds, authorization is
// checked by the facade before this is called.
func (c *Config) UpdateConfig(minContribution, maxContribution *Amount, minMembers, maxMembers uint32, minCycleDuration, maxCycleDuration uint64) error {
	if minContribution.Cmp(maxContribution) > 0 {
		return newErr(CodeInvalidAmount, "", "min_contribution exceeds max_contribution")
	}
	if minMembers > maxMembers {
		return newErr(CodeInvalidState, "", "min_members exceeds max_members")
	}
	if minCycleDuration > maxCycleDuration {
		return newErr(CodeInvalidState, "", "min_cycle_duration exceeds max_cycle_duration")
	}
	c.MinContribution = minContribution
	c.MaxContribution = maxContribution
	c.MinMembers = minMembers
	c.MaxMembers = maxMembers
	c.MinCycleDuration = minCycleDuration
	c.MaxCycleDuration = maxCycleDuration
	return nil
}
