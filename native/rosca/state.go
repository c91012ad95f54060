package rosca

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"roscachain/crypto"
	"roscachain/hostport"
)

// Store provides typed (de)serialization on top of the host's KVStore,
// decoding every persisted record into its domain struct: records are
// encoded with RLP before hitting the key/value layer since crypto.Address
// carries unexported fields RLP cannot reach directly.
type Store struct {
	kv hostport.KVStore
}

// NewStore wraps a host-provided KVStore.
func NewStore(kv hostport.KVStore) *Store {
	return &Store{kv: kv}
}

type groupWire struct {
	ID                 uint64
	Creator            []byte
	ContributionAmount *big.Int
	CycleDuration      uint64
	MaxMembers         uint32
	MinMembers         uint32
	MemberCount        uint32
	CurrentCycle       uint32
	Status             uint8
	CreatedAt          uint64
	StartedAt          uint64
	Started            bool
}

func toGroupWire(g *Group) *groupWire {
	return &groupWire{
		ID:                 g.ID,
		Creator:            g.Creator.Bytes(),
		ContributionAmount: g.ContributionAmount.BigInt(),
		CycleDuration:      g.CycleDuration,
		MaxMembers:         g.MaxMembers,
		MinMembers:         g.MinMembers,
		MemberCount:        g.MemberCount,
		CurrentCycle:       g.CurrentCycle,
		Status:             uint8(g.Status),
		CreatedAt:          g.CreatedAt,
		StartedAt:          g.StartedAt,
		Started:            g.Started,
	}
}

func fromGroupWire(w *groupWire) (*Group, error) {
	creator, err := crypto.NewAddress(crypto.RoscaPrefix, w.Creator)
	if err != nil {
		return nil, newErr(CodeDataCorruption, "", "stored group creator address malformed")
	}
	return &Group{
		ID:                 w.ID,
		Creator:            creator,
		ContributionAmount: AmountFromBigInt(w.ContributionAmount),
		CycleDuration:      w.CycleDuration,
		MaxMembers:         w.MaxMembers,
		MinMembers:         w.MinMembers,
		MemberCount:        w.MemberCount,
		CurrentCycle:       w.CurrentCycle,
		Status:             GroupStatus(w.Status),
		CreatedAt:          w.CreatedAt,
		StartedAt:          w.StartedAt,
		Started:            w.Started,
	}, nil
}

// PutGroup persists a Group record.
func (s *Store) PutGroup(g *Group) error {
	encoded, err := rlp.EncodeToBytes(toGroupWire(g))
	if err != nil {
		return newErr(CodeInternalError, "", "encode group: "+err.Error())
	}
	if err := s.kv.Set(GroupKey(g.ID), encoded); err != nil {
		return err
	}
	return s.kv.Set(StatusKey(g.ID), []byte{uint8(g.Status)})
}

// GetGroup loads a Group record, returning GroupNotFound if absent.
func (s *Store) GetGroup(groupID uint64) (*Group, error) {
	data, ok, err := s.kv.Get(GroupKey(groupID))
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return nil, newErr(CodeGroupNotFound, "", "")
	}
	var w groupWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode group: "+err.Error())
	}
	return fromGroupWire(&w)
}

type membershipWire struct {
	Members []membershipEntryWire
}

type membershipEntryWire struct {
	Member   []byte
	JoinedAt uint64
}

// PutMembers persists the ordered Membership Registry for a group.
func (s *Store) PutMembers(groupID uint64, list *MembershipList) error {
	w := membershipWire{Members: make([]membershipEntryWire, 0, len(list.Members))}
	for _, m := range list.Members {
		w.Members = append(w.Members, membershipEntryWire{Member: m.Member.Bytes(), JoinedAt: m.JoinedAt})
	}
	encoded, err := rlp.EncodeToBytes(&w)
	if err != nil {
		return newErr(CodeInternalError, "", "encode members: "+err.Error())
	}
	return s.kv.Set(MembersKey(groupID), encoded)
}

// GetMembers loads the Membership Registry for a group, returning an empty
// list if the group has no members yet.
func (s *Store) GetMembers(groupID uint64) (*MembershipList, error) {
	data, ok, err := s.kv.Get(MembersKey(groupID))
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return &MembershipList{}, nil
	}
	var w membershipWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode members: "+err.Error())
	}
	list := &MembershipList{Members: make([]Membership, 0, len(w.Members))}
	for _, e := range w.Members {
		addr, err := crypto.NewAddress(crypto.RoscaPrefix, e.Member)
		if err != nil {
			return nil, newErr(CodeDataCorruption, "", "stored member address malformed")
		}
		list.Members = append(list.Members, Membership{Member: addr, JoinedAt: e.JoinedAt})
	}
	return list, nil
}

type contributionRecordWire struct {
	GroupID uint64
	Cycle   uint32
	Member  []byte
	Amount  *big.Int
	PaidAt  uint64
}

// HasContributed reports whether member already has a write-once recorded
// contribution for (groupID, cycle).
func (s *Store) HasContributed(groupID uint64, cycle uint32, member crypto.Address) (bool, error) {
	_, ok, err := s.kv.Get(ContributionFlagKey(groupID, cycle, member))
	if err != nil {
		return false, newErr(CodeInternalError, "", err.Error())
	}
	return ok, nil
}

// PutContribution persists the write-once ContributionRecord and flag for
// (groupID, cycle, member).
func (s *Store) PutContribution(rec *ContributionRecord) error {
	w := contributionRecordWire{
		GroupID: rec.GroupID,
		Cycle:   rec.Cycle,
		Member:  rec.Member.Bytes(),
		Amount:  rec.Amount.BigInt(),
		PaidAt:  rec.PaidAt,
	}
	encoded, err := rlp.EncodeToBytes(&w)
	if err != nil {
		return newErr(CodeInternalError, "", "encode contribution: "+err.Error())
	}
	if err := s.kv.Set(ContributionRecordKey(rec.GroupID, rec.Cycle, rec.Member), encoded); err != nil {
		return newErr(CodeInternalError, "", err.Error())
	}
	return s.kv.Set(ContributionFlagKey(rec.GroupID, rec.Cycle, rec.Member), []byte{1})
}

// GetContribution loads a member's contribution record for a cycle,
// returning ContributionNotFound if absent.
func (s *Store) GetContribution(groupID uint64, cycle uint32, member crypto.Address) (*ContributionRecord, error) {
	data, ok, err := s.kv.Get(ContributionRecordKey(groupID, cycle, member))
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return nil, newErr(CodeContributionNotFound, "", "")
	}
	var w contributionRecordWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode contribution: "+err.Error())
	}
	addr, err := crypto.NewAddress(crypto.RoscaPrefix, w.Member)
	if err != nil {
		return nil, newErr(CodeDataCorruption, "", "stored contributor address malformed")
	}
	return &ContributionRecord{GroupID: w.GroupID, Cycle: w.Cycle, Member: addr, Amount: AmountFromBigInt(w.Amount), PaidAt: w.PaidAt}, nil
}

type cycleAggregatesWire struct {
	Total            *big.Int
	ContributorCount uint32
}

// GetCycleAggregates loads the running totals for (groupID, cycle),
// returning the zero aggregate if the cycle has no contributions yet.
func (s *Store) GetCycleAggregates(groupID uint64, cycle uint32) (*CycleAggregates, error) {
	data, ok, err := s.kv.Get(CycleTotalKey(groupID, cycle))
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return newCycleAggregates(), nil
	}
	var w cycleAggregatesWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode cycle aggregates: "+err.Error())
	}
	return &CycleAggregates{Total: AmountFromBigInt(w.Total), ContributorCount: w.ContributorCount}, nil
}

// PutCycleAggregates persists the running totals for (groupID, cycle).
func (s *Store) PutCycleAggregates(groupID uint64, cycle uint32, agg *CycleAggregates) error {
	w := cycleAggregatesWire{Total: agg.Total.BigInt(), ContributorCount: agg.ContributorCount}
	encoded, err := rlp.EncodeToBytes(&w)
	if err != nil {
		return newErr(CodeInternalError, "", "encode cycle aggregates: "+err.Error())
	}
	if err := s.kv.Set(CycleTotalKey(groupID, cycle), encoded); err != nil {
		return newErr(CodeInternalError, "", err.Error())
	}
	return s.kv.Set(CycleCountKey(groupID, cycle), u32Bytes(agg.ContributorCount))
}

type payoutRecordWire struct {
	GroupID   uint64
	Cycle     uint32
	Recipient []byte
	Amount    *big.Int
	PaidAt    uint64
}

// HasPaidOut reports whether a cycle's payout has already been executed,
// guarding against double payout via a write-once flag.
func (s *Store) HasPaidOut(groupID uint64, cycle uint32) (bool, error) {
	_, ok, err := s.kv.Get(PayoutFlagKey(groupID, cycle))
	if err != nil {
		return false, newErr(CodeInternalError, "", err.Error())
	}
	return ok, nil
}

// PutPayout persists the write-once PayoutRecord and flag for
// (groupID, cycle).
func (s *Store) PutPayout(rec *PayoutRecord) error {
	w := payoutRecordWire{
		GroupID:   rec.GroupID,
		Cycle:     rec.Cycle,
		Recipient: rec.Recipient.Bytes(),
		Amount:    rec.Amount.BigInt(),
		PaidAt:    rec.PaidAt,
	}
	encoded, err := rlp.EncodeToBytes(&w)
	if err != nil {
		return newErr(CodeInternalError, "", "encode payout: "+err.Error())
	}
	if err := s.kv.Set(PayoutRecordKey(rec.GroupID, rec.Cycle), encoded); err != nil {
		return newErr(CodeInternalError, "", err.Error())
	}
	return s.kv.Set(PayoutFlagKey(rec.GroupID, rec.Cycle), []byte{1})
}

// GetPayout loads the payout record for a cycle. A missing payout is an
// ordinary unpaid state, not an error, so it returns (nil, nil) when no
// record exists.
func (s *Store) GetPayout(groupID uint64, cycle uint32) (*PayoutRecord, error) {
	data, ok, err := s.kv.Get(PayoutRecordKey(groupID, cycle))
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return nil, nil
	}
	var w payoutRecordWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode payout: "+err.Error())
	}
	addr, err := crypto.NewAddress(crypto.RoscaPrefix, w.Recipient)
	if err != nil {
		return nil, newErr(CodeDataCorruption, "", "stored recipient address malformed")
	}
	return &PayoutRecord{GroupID: w.GroupID, Cycle: w.Cycle, Recipient: addr, Amount: AmountFromBigInt(w.Amount), PaidAt: w.PaidAt}, nil
}

type configWire struct {
	Admin            []byte
	MinContribution  *big.Int
	MaxContribution  *big.Int
	MinMembers       uint32
	MaxMembers       uint32
	MinCycleDuration uint64
	MaxCycleDuration uint64
}

// PutConfig persists the singleton Config record.
func (s *Store) PutConfig(c *Config) error {
	w := configWire{
		Admin:            c.Admin.Bytes(),
		MinContribution:  c.MinContribution.BigInt(),
		MaxContribution:  c.MaxContribution.BigInt(),
		MinMembers:       c.MinMembers,
		MaxMembers:       c.MaxMembers,
		MinCycleDuration: c.MinCycleDuration,
		MaxCycleDuration: c.MaxCycleDuration,
	}
	encoded, err := rlp.EncodeToBytes(&w)
	if err != nil {
		return newErr(CodeInternalError, "", "encode config: "+err.Error())
	}
	return s.kv.Set(ConfigKey(), encoded)
}

// GetConfig loads the singleton Config record, returning DataCorruption if
// the store has never been initialized (the facade is responsible for
// seeding a default at genesis).
func (s *Store) GetConfig() (*Config, error) {
	data, ok, err := s.kv.Get(ConfigKey())
	if err != nil {
		return nil, newErr(CodeInternalError, "", err.Error())
	}
	if !ok {
		return nil, newErr(CodeDataCorruption, "", "config not initialized")
	}
	var w configWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, newErr(CodeDataCorruption, "", "decode config: "+err.Error())
	}
	admin, err := crypto.NewAddress(crypto.RoscaPrefix, w.Admin)
	if err != nil {
		return nil, newErr(CodeDataCorruption, "", "stored admin address malformed")
	}
	return &Config{
		Admin:            admin,
		MinContribution:  AmountFromBigInt(w.MinContribution),
		MaxContribution:  AmountFromBigInt(w.MaxContribution),
		MinMembers:       w.MinMembers,
		MaxMembers:       w.MaxMembers,
		MinCycleDuration: w.MinCycleDuration,
		MaxCycleDuration: w.MaxCycleDuration,
	}, nil
}

// NextGroupID atomically reserves and returns the next GroupID, starting
// from 1. IDs are never reused or wrapped: once the counter has reserved
// math.MaxUint64, every further call fails with Overflow instead of
// silently wrapping back to a previously issued id.
func (s *Store) NextGroupID() (uint64, error) {
	data, ok, err := s.kv.Get(NextGroupIDKey())
	if err != nil {
		return 0, newErr(CodeInternalError, "", err.Error())
	}
	var next uint64 = 1
	if ok {
		if len(data) != 8 {
			return 0, newErr(CodeDataCorruption, "", "stored counter malformed")
		}
		stored := bigEndianUint64(data)
		if stored == math.MaxUint64 {
			return 0, newErr(CodeOverflow, "", "next_group_id overflow")
		}
		next = stored + 1
	}
	if err := s.kv.Set(NextGroupIDKey(), u64Bytes(next)); err != nil {
		return 0, newErr(CodeInternalError, "", err.Error())
	}
	return next, nil
}

func bigEndianUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
