package rosca

import (
	"roscachain/crypto"
)

// PayoutRecord is the write-once entry recorded when a cycle's payout is
// executed.
type PayoutRecord struct {
	GroupID   uint64
	Cycle     uint32
	Recipient crypto.Address
	Amount    *Amount
	PaidAt    uint64
}

// ValidateRecipient checks the payout recipient guard: the payout recipient
// for a cycle must be the member at that cycle's join-order position. It
// does not check whether that cycle has already paid out.
func ValidateRecipient(members *MembershipList, cycle uint32, candidate crypto.Address) error {
	recipient, ok := members.PayoutRecipient(cycle)
	if !ok {
		return newErr(CodeInvalidRecipient, "", "no member assigned to this cycle's payout position")
	}
	if !recipient.Equal(candidate) {
		return newErr(CodeInvalidRecipient, "", "candidate is not the scheduled recipient for this cycle")
	}
	return nil
}
