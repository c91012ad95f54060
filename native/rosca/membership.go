package rosca

import (
	"roscachain/crypto"
)

// Membership records one member's slot in the join-order list. Payout
// position equals join order: the i-th member to join receives the payout
// on cycle i.
type Membership struct {
	Member  crypto.Address
	JoinedAt uint64
}

// MembershipList is the ordered Membership Registry for a single group.
// Index in Members is the payout position (0-based).
type MembershipList struct {
	Members []Membership
}

// IndexOf returns the payout position of member, or -1 if not a member.
func (m *MembershipList) IndexOf(member crypto.Address) int {
	for i, entry := range m.Members {
		if entry.Member.Equal(member) {
			return i
		}
	}
	return -1
}

// Contains reports whether member already holds a slot.
func (m *MembershipList) Contains(member crypto.Address) bool {
	return m.IndexOf(member) >= 0
}

// Join appends member to the registry, failing with AlreadyMember if the
// address already holds a slot or GroupFull if the group has no open slots.
func (m *MembershipList) Join(member crypto.Address, maxMembers uint32, now uint64) error {
	if m.Contains(member) {
		return newErr(CodeAlreadyMember, "", "address already joined this group")
	}
	if uint32(len(m.Members)) >= maxMembers {
		return newErr(CodeGroupFull, "", "group has reached max_members")
	}
	m.Members = append(m.Members, Membership{Member: member, JoinedAt: now})
	return nil
}

// PayoutRecipient returns the member scheduled to receive the payout for
// cycle (0-based), and whether that position has been assigned a member
// yet.
func (m *MembershipList) PayoutRecipient(cycle uint32) (crypto.Address, bool) {
	if int(cycle) >= len(m.Members) {
		return crypto.Address{}, false
	}
	return m.Members[cycle].Member, true
}

// Count returns the number of joined members.
func (m *MembershipList) Count() uint32 { return uint32(len(m.Members)) }
