package rosca

import (
	"roscachain/crypto"
)

// ContributionRecord is the write-once entry recorded the first (and only)
// time a member contributes in a given cycle.
type ContributionRecord struct {
	GroupID uint64
	Cycle   uint32
	Member  crypto.Address
	Amount  *Amount
	PaidAt  uint64
}

// CycleAggregates tracks the running totals for a single (group, cycle)
// pair, updated incrementally as contributions land so the pool calculator
// never has to re-scan every member's record.
type CycleAggregates struct {
	Total             *Amount
	ContributorCount  uint32
}

// newCycleAggregates returns the zero aggregate for a cycle that has not
// received any contributions yet.
func newCycleAggregates() *CycleAggregates {
	return &CycleAggregates{Total: ZeroAmount(), ContributorCount: 0}
}

// Add folds one contribution into the running aggregate, returning
// CodeOverflow if the new total would exceed the 128-bit signed range.
func (c *CycleAggregates) Add(amount *Amount) error {
	sum, err := CheckedAdd(c.Total, amount)
	if err != nil {
		return err
	}
	c.Total = sum
	c.ContributorCount++
	return nil
}
