package rosca

import (
	"roscachain/crypto"
)

// Query is a read-only view over the same Store the Engine writes through.
// None of its methods authenticate a caller or mutate state.
type Query struct {
	store *Store
}

// NewQuery wraps a Store for read-only access.
func NewQuery(s *Store) *Query { return &Query{store: s} }

// MaxPageSize bounds every paginated read this package exposes, so a single
// query cannot be made to scan an unbounded amount of state.
const MaxPageSize = 50

// GetGroup returns the Group record for groupID.
func (q *Query) GetGroup(groupID uint64) (*Group, error) {
	return q.store.GetGroup(groupID)
}

// ListGroups returns up to limit Group records with id > cursor, in
// ascending id order, optionally restricted to statusFilter. limit is
// clamped to MaxPageSize (0 or above-max both fall back to MaxPageSize).
// At most limit ids are examined per call, so a filtered page can hold
// fewer than limit groups while later ids still match. The returned cursor
// is the id of the last group considered; pass it back as the next call's
// cursor to continue the scan. Ids with no stored group are skipped; any
// other load error aborts the listing.
func (q *Query) ListGroups(cursor uint64, limit uint32, statusFilter *GroupStatus) ([]*Group, uint64, error) {
	if limit == 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	total, err := q.GetTotalGroups()
	if err != nil {
		return nil, 0, err
	}
	groups := make([]*Group, 0, limit)
	id := cursor + 1
	for ; id <= total && id-cursor <= uint64(limit); id++ {
		g, err := q.store.GetGroup(id)
		if err != nil {
			if code, ok := CodeOf(err); ok && code == CodeGroupNotFound {
				continue
			}
			return nil, 0, err
		}
		if statusFilter != nil && g.Status != *statusFilter {
			continue
		}
		groups = append(groups, g)
	}
	return groups, id - 1, nil
}

// GetTotalGroups returns the number of groups ever created, derived from
// the GlobalCounter's last reserved id.
func (q *Query) GetTotalGroups() (uint64, error) {
	data, ok, err := q.store.kv.Get(NextGroupIDKey())
	if err != nil {
		return 0, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, newErr(CodeDataCorruption, "", "stored counter malformed")
	}
	return bigEndianUint64(data), nil
}

// GetContributionDeadline returns the timestamp by which groupID's given
// cycle must be fully contributed, computed (checked) from the group's
// activation time and fixed cycle_duration.
func (q *Query) GetContributionDeadline(groupID uint64, cycle uint32) (uint64, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return 0, err
	}
	if !g.Started {
		return 0, newErr(CodeInvalidState, "", "group has not activated")
	}
	elapsed, err := checkedMulU64(uint64(cycle)+1, g.CycleDuration)
	if err != nil {
		return 0, err
	}
	return checkedAddU64(g.StartedAt, elapsed)
}

// GetMemberCount returns the number of members who have joined groupID.
func (q *Query) GetMemberCount(groupID uint64) (uint32, error) {
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return 0, err
	}
	return members.Count(), nil
}

// GetPayoutPosition returns the 0-based join-order position of member in
// groupID, or NotMember if they never joined.
func (q *Query) GetPayoutPosition(groupID uint64, member crypto.Address) (uint32, error) {
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return 0, err
	}
	idx := members.IndexOf(member)
	if idx < 0 {
		return 0, newErr(CodeNotMember, "", "")
	}
	return uint32(idx), nil
}

// HasReceivedPayout reports whether member's scheduled cycle has already
// paid out.
func (q *Query) HasReceivedPayout(groupID uint64, member crypto.Address) (bool, error) {
	pos, err := q.GetPayoutPosition(groupID, member)
	if err != nil {
		return false, err
	}
	return q.store.HasPaidOut(groupID, pos)
}

// GetCycleContributions returns the running total and contributor count for
// groupID's given cycle.
func (q *Query) GetCycleContributions(groupID uint64, cycle uint32) (*CycleAggregates, error) {
	return q.store.GetCycleAggregates(groupID, cycle)
}

// IsCycleComplete reports whether every member has contributed in the
// group's current cycle.
func (q *Query) IsCycleComplete(groupID uint64) (bool, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return false, err
	}
	agg, err := q.store.GetCycleAggregates(groupID, g.CurrentCycle)
	if err != nil {
		return false, err
	}
	return CycleComplete(agg.ContributorCount, g.MemberCount), nil
}

// GetMissedContributions returns the members of groupID who have not yet
// contributed in the group's current cycle.
func (q *Query) GetMissedContributions(groupID uint64) ([]crypto.Address, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	var missed []crypto.Address
	for _, m := range members.Members {
		ok, err := q.store.HasContributed(groupID, g.CurrentCycle, m.Member)
		if err != nil {
			return nil, err
		}
		if !ok {
			missed = append(missed, m.Member)
		}
	}
	return missed, nil
}

// GetPayoutQueue returns the members of groupID who have not yet received a
// payout, in join order.
func (q *Query) GetPayoutQueue(groupID uint64) ([]crypto.Address, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	var queue []crypto.Address
	for i := int(g.CurrentCycle); i < len(members.Members); i++ {
		queue = append(queue, members.Members[i].Member)
	}
	return queue, nil
}

// PayoutScheduleEntry pairs a cycle with the member scheduled to receive
// its payout.
type PayoutScheduleEntry struct {
	Cycle     uint32
	Recipient crypto.Address
	Paid      bool
}

// GetPayoutSchedule returns the full cycle -> recipient schedule for
// groupID, marking which cycles have already paid out.
func (q *Query) GetPayoutSchedule(groupID uint64) ([]PayoutScheduleEntry, error) {
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	schedule := make([]PayoutScheduleEntry, 0, len(members.Members))
	for i, m := range members.Members {
		cycle := uint32(i)
		paid, err := q.store.HasPaidOut(groupID, cycle)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, PayoutScheduleEntry{Cycle: cycle, Recipient: m.Member, Paid: paid})
	}
	return schedule, nil
}

// ValidatePayoutRecipient reports whether candidate is the scheduled
// recipient for groupID's given cycle.
func (q *Query) ValidatePayoutRecipient(groupID uint64, cycle uint32, candidate crypto.Address) error {
	members, err := q.store.GetMembers(groupID)
	if err != nil {
		return err
	}
	return ValidateRecipient(members, cycle, candidate)
}

// IsComplete reports whether groupID has finished its full payout rotation.
func (q *Query) IsComplete(groupID uint64) (bool, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return false, err
	}
	return g.IsComplete(), nil
}

// GetMemberTotalContributions sums every contribution member has made
// across groupID's cycles up to and including the current one.
func (q *Query) GetMemberTotalContributions(groupID uint64, member crypto.Address) (*Amount, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	total := ZeroAmount()
	for cycle := uint32(0); cycle <= g.CurrentCycle; cycle++ {
		ok, err := q.store.HasContributed(groupID, cycle, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rec, err := q.store.GetContribution(groupID, cycle, member)
		if err != nil {
			return nil, err
		}
		total, err = CheckedAdd(total, rec.Amount)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}

// GetMemberContributionHistory returns up to limit recorded contributions
// member has made in groupID starting at startCycle, in cycle order. limit
// is clamped to MaxPageSize (0 or above-max both fall back to MaxPageSize).
func (q *Query) GetMemberContributionHistory(groupID uint64, member crypto.Address, startCycle uint32, limit uint32) ([]*ContributionRecord, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if limit == 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	var history []*ContributionRecord
	for cycle := startCycle; cycle <= g.CurrentCycle && uint32(len(history)) < limit; cycle++ {
		ok, err := q.store.HasContributed(groupID, cycle, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rec, err := q.store.GetContribution(groupID, cycle, member)
		if err != nil {
			return nil, err
		}
		history = append(history, rec)
	}
	return history, nil
}

// GetTotalPaidOut sums every payout groupID has executed so far.
func (q *Query) GetTotalPaidOut(groupID uint64) (*Amount, error) {
	g, err := q.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	total := ZeroAmount()
	for cycle := uint32(0); cycle < g.CurrentCycle; cycle++ {
		rec, err := q.store.GetPayout(groupID, cycle)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		total, err = CheckedAdd(total, rec.Amount)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}
