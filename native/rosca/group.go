package rosca

import (
	"roscachain/crypto"
)

// DefaultMinMembers is used when a creator does not supply an explicit
// min_members override.
const DefaultMinMembers = 2

// Group is the on-chain record backing a single ROSCA. ContributionAmount
// is an Amount so it fits the 128-bit signed monetary range and routes
// through checked arithmetic wherever it participates in a computation.
type Group struct {
	ID                 uint64
	Creator            crypto.Address
	ContributionAmount *Amount
	CycleDuration      uint64
	MaxMembers         uint32
	MinMembers         uint32
	MemberCount        uint32
	CurrentCycle       uint32
	Status             GroupStatus
	CreatedAt          uint64
	StartedAt          uint64
	Started            bool
}

// IsActive reports whether the group's status is Active.
func (g *Group) IsActive() bool { return g.Status == StatusActive }

// New constructs a Pending group, validating its field invariants at
// construction time.
func New(id uint64, creator crypto.Address, contributionAmount *Amount, cycleDuration uint64, maxMembers uint32, minMembers uint32, now uint64) (*Group, error) {
	if minMembers == 0 {
		minMembers = DefaultMinMembers
	}
	g := &Group{
		ID:                 id,
		Creator:            creator,
		ContributionAmount: AmountFromBigInt(contributionAmount.BigInt()),
		CycleDuration:      cycleDuration,
		MaxMembers:         maxMembers,
		MinMembers:         minMembers,
		MemberCount:        0,
		CurrentCycle:       0,
		Status:             StatusPending,
		CreatedAt:          now,
		Started:            false,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the group's field invariants against its current values.
// New runs it at construction and UpdateGroup re-runs it after changing
// parameters; activation and membership changes do not call it.
func (g *Group) Validate() error {
	if g.ContributionAmount.Sign() <= 0 {
		return newErr(CodeInvalidAmount, "", "contribution_amount must be positive")
	}
	if g.CycleDuration == 0 {
		return newErr(CodeInvalidState, "", "cycle_duration must be positive")
	}
	if g.MinMembers < 2 {
		return newErr(CodeInvalidState, "", "min_members must be at least 2")
	}
	if g.MinMembers > g.MaxMembers {
		return newErr(CodeInvalidState, "", "min_members must not exceed max_members")
	}
	if g.MemberCount > g.MaxMembers {
		return newErr(CodeInvalidState, "", "member_count must not exceed max_members")
	}
	if g.CurrentCycle > g.MaxMembers {
		return newErr(CodeInvalidState, "", "current_cycle must not exceed max_members")
	}
	return nil
}

// Activate transitions Pending -> Active once enough members have joined.
func (g *Group) Activate(now uint64) error {
	if err := CheckTransition(g.Status, StatusActive); err != nil {
		return err
	}
	if g.MemberCount < g.MinMembers {
		return newErr(CodeInvalidState, "", "member_count below min_members")
	}
	g.Status = StatusActive
	g.Started = true
	g.StartedAt = now
	return nil
}

// AdvanceCycle is called only after a successful payout. It increments
// current_cycle and transitions to Completed once every member has been
// paid out exactly once.
func (g *Group) AdvanceCycle() error {
	next := g.CurrentCycle + 1
	if next < g.CurrentCycle {
		return newErr(CodeOverflow, "", "current_cycle overflow")
	}
	g.CurrentCycle = next
	if g.CurrentCycle >= g.MaxMembers {
		return g.Complete()
	}
	return nil
}

// Complete forces the terminal Completed transition.
func (g *Group) Complete() error {
	if err := CheckTransition(g.Status, StatusCompleted); err != nil {
		return err
	}
	g.Status = StatusCompleted
	return nil
}

// Cancel forces the terminal Cancelled transition.
func (g *Group) Cancel() error {
	if err := CheckTransition(g.Status, StatusCancelled); err != nil {
		return err
	}
	g.Status = StatusCancelled
	return nil
}

// Pause moves an Active group into Paused.
func (g *Group) Pause() error {
	if err := CheckTransition(g.Status, StatusPaused); err != nil {
		return err
	}
	g.Status = StatusPaused
	return nil
}

// Resume moves a Paused group back to Active.
func (g *Group) Resume() error {
	if err := CheckTransition(g.Status, StatusActive); err != nil {
		return err
	}
	g.Status = StatusActive
	return nil
}

// IsComplete reports whether the group has finished its full rotation:
// current_cycle >= max_members OR status == Completed.
func (g *Group) IsComplete() bool {
	return g.CurrentCycle >= g.MaxMembers || g.Status == StatusCompleted
}
