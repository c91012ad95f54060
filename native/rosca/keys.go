package rosca

import (
	"encoding/binary"

	"roscachain/crypto"
)

// Storage namespaces. Each is a distinct prefix so that keys built from
// different logical records never collide even when their discriminants
// numerically agree.
var (
	nsGroup           = []byte("rosca/group/")
	nsMembers         = []byte("rosca/members/")
	nsStatus          = []byte("rosca/status/")
	nsContribRecord   = []byte("rosca/contrib/rec/")
	nsContribFlag     = []byte("rosca/contrib/flag/")
	nsContribTotal    = []byte("rosca/contrib/total/")
	nsContribCount    = []byte("rosca/contrib/count/")
	nsPayoutRecord    = []byte("rosca/payout/rec/")
	nsPayoutFlag      = []byte("rosca/payout/flag/")
	nsCounterNextID   = []byte("rosca/counter/next-group-id")
	nsConfig          = []byte("rosca/config/global")
)

func u64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func u32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// GroupKey addresses the Group record for groupID.
func GroupKey(groupID uint64) []byte {
	return append(append([]byte(nil), nsGroup...), u64Bytes(groupID)...)
}

// MembersKey addresses the ordered MembershipList for groupID.
func MembersKey(groupID uint64) []byte {
	return append(append([]byte(nil), nsMembers...), u64Bytes(groupID)...)
}

// StatusKey addresses the cached GroupStatus for groupID, kept alongside the
// Group record for O(1) status reads without deserializing the full record.
func StatusKey(groupID uint64) []byte {
	return append(append([]byte(nil), nsStatus...), u64Bytes(groupID)...)
}

func cycleMemberKey(prefix []byte, groupID uint64, cycle uint32, member crypto.Address) []byte {
	key := append([]byte(nil), prefix...)
	key = append(key, u64Bytes(groupID)...)
	key = append(key, u32Bytes(cycle)...)
	key = append(key, member.Bytes()...)
	return key
}

func cycleKey(prefix []byte, groupID uint64, cycle uint32) []byte {
	key := append([]byte(nil), prefix...)
	key = append(key, u64Bytes(groupID)...)
	key = append(key, u32Bytes(cycle)...)
	return key
}

// ContributionRecordKey addresses the write-once ContributionRecord for
// (groupID, cycle, member).
func ContributionRecordKey(groupID uint64, cycle uint32, member crypto.Address) []byte {
	return cycleMemberKey(nsContribRecord, groupID, cycle, member)
}

// ContributionFlagKey addresses the PerMemberContributedFlag for
// (groupID, cycle, member).
func ContributionFlagKey(groupID uint64, cycle uint32, member crypto.Address) []byte {
	return cycleMemberKey(nsContribFlag, groupID, cycle, member)
}

// CycleTotalKey addresses CycleAggregates.Total for (groupID, cycle).
func CycleTotalKey(groupID uint64, cycle uint32) []byte {
	return cycleKey(nsContribTotal, groupID, cycle)
}

// CycleCountKey addresses CycleAggregates.ContributorCount for
// (groupID, cycle).
func CycleCountKey(groupID uint64, cycle uint32) []byte {
	return cycleKey(nsContribCount, groupID, cycle)
}

// PayoutRecordKey addresses the write-once PayoutRecord for (groupID, cycle).
func PayoutRecordKey(groupID uint64, cycle uint32) []byte {
	return cycleKey(nsPayoutRecord, groupID, cycle)
}

// PayoutFlagKey addresses the PayoutStatusFlag for (groupID, cycle).
func PayoutFlagKey(groupID uint64, cycle uint32) []byte {
	return cycleKey(nsPayoutFlag, groupID, cycle)
}

// NextGroupIDKey addresses the GlobalCounter.
func NextGroupIDKey() []byte {
	return append([]byte(nil), nsCounterNextID...)
}

// ConfigKey addresses the singleton Config record.
func ConfigKey() []byte {
	return append([]byte(nil), nsConfig...)
}
