package rosca

// ExpectedPool returns contribution_amount * member_count, the pool size a
// cycle must reach before payout is eligible.
func ExpectedPool(contributionAmount *Amount, memberCount uint32) (*Amount, error) {
	return CheckedMulUint64(contributionAmount, uint64(memberCount))
}

// CycleComplete reports whether every joined member has contributed in the
// given cycle.
func CycleComplete(contributorCount, memberCount uint32) bool {
	return contributorCount >= memberCount
}

// ReadyForPayout reports whether a cycle's current pool has reached the
// expected pool and every member has contributed. Both conditions are
// checked independently because a short-circuit on pool size alone would
// accept a cycle where one member over-contributed for another's shortfall.
func ReadyForPayout(currentPool, expectedPool *Amount, contributorCount, memberCount uint32) bool {
	if !CycleComplete(contributorCount, memberCount) {
		return false
	}
	return currentPool.Cmp(expectedPool) >= 0
}
