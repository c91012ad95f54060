package rosca

import (
	"roscachain/crypto"
	"roscachain/hostport"
)

// Engine is the entry-point facade every external caller goes through. Each
// exported method follows the same sequence: authenticate the caller,
// validate the request against current state, load affected records,
// mutate in memory, persist, emit an event, and return — mirroring the
// load/mutate/persist discipline of the lending engine's Supply/Borrow/
// Liquidate methods.
type Engine struct {
	store   *Store
	auth    hostport.Auth
	clock   hostport.Clock
	events  hostport.EventSink
	assets  hostport.AssetTransfer
}

// NewEngine wires an Engine to its host ports.
func NewEngine(kv hostport.KVStore, auth hostport.Auth, clock hostport.Clock, events hostport.EventSink, assets hostport.AssetTransfer) *Engine {
	return &Engine{store: NewStore(kv), auth: auth, clock: clock, events: events, assets: assets}
}

// Bootstrap seeds the singleton Config record. It must be called exactly
// once before any other entry point, analogous to a genesis step.
func (e *Engine) Bootstrap(admin crypto.Address) error {
	return e.store.PutConfig(DefaultConfig(admin))
}

func (e *Engine) emit(evt hostport.Event) {
	if e.events != nil {
		e.events.Emit(evt)
	}
}

// CreateGroup creates a new Pending group owned by creator.
func (e *Engine) CreateGroup(creator crypto.Address, contributionAmount *Amount, cycleDuration uint64, maxMembers, minMembers uint32) (*Group, error) {
	if err := e.auth.RequireAuth(creator); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	cfg, err := e.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateGroupParams(contributionAmount, cycleDuration, maxMembers, minMembers); err != nil {
		return nil, err
	}
	id, err := e.store.NextGroupID()
	if err != nil {
		return nil, err
	}
	g, err := New(id, creator, contributionAmount, cycleDuration, maxMembers, minMembers, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	if err := e.store.PutMembers(g.ID, &MembershipList{}); err != nil {
		return nil, err
	}
	e.emit(NewGroupCreatedEvent(g))
	return g, nil
}

// UpdateGroup lets the creator adjust a Pending group's parameters. Members
// may already have joined, as long as the new max_members is not below the
// current member_count.
func (e *Engine) UpdateGroup(caller crypto.Address, groupID uint64, contributionAmount *Amount, cycleDuration uint64, maxMembers, minMembers uint32) (*Group, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if !g.Creator.Equal(caller) {
		return nil, newErr(CodeUnauthorized, "", "only the creator may update this group")
	}
	if g.Status != StatusPending {
		return nil, newErr(CodeInvalidState, "", "group parameters are immutable once active")
	}
	cfg, err := e.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateGroupParams(contributionAmount, cycleDuration, maxMembers, minMembers); err != nil {
		return nil, err
	}
	if minMembers == 0 {
		minMembers = DefaultMinMembers
	}
	if maxMembers < g.MemberCount {
		return nil, newErr(CodeInvalidState, "", "max_members below current member_count")
	}
	g.ContributionAmount = AmountFromBigInt(contributionAmount.BigInt())
	g.CycleDuration = cycleDuration
	g.MaxMembers = maxMembers
	g.MinMembers = minMembers
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	e.emit(NewGroupStatusChangedEvent(g, g.Status))
	return g, nil
}

// DeleteGroup cancels a group that has not yet activated.
func (e *Engine) DeleteGroup(caller crypto.Address, groupID uint64) error {
	if err := e.auth.RequireAuth(caller); err != nil {
		return newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return err
	}
	if !g.Creator.Equal(caller) {
		return newErr(CodeUnauthorized, "", "only the creator may delete this group")
	}
	if g.Status != StatusPending {
		return newErr(CodeInvalidState, "", "only a Pending group can be deleted")
	}
	from := g.Status
	if err := g.Cancel(); err != nil {
		return err
	}
	if err := e.store.PutGroup(g); err != nil {
		return err
	}
	e.emit(NewGroupStatusChangedEvent(g, from))
	return nil
}

// JoinGroup adds member to a Pending group's Membership Registry, assigning
// the next open payout position in join order.
func (e *Engine) JoinGroup(member crypto.Address, groupID uint64) error {
	if err := e.auth.RequireAuth(member); err != nil {
		return newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return err
	}
	if g.Status != StatusPending {
		return newErr(CodeInvalidState, "", "group is not accepting new members")
	}
	members, err := e.store.GetMembers(groupID)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	if err := members.Join(member, g.MaxMembers, now); err != nil {
		return err
	}
	g.MemberCount = members.Count()
	if err := e.store.PutMembers(groupID, members); err != nil {
		return err
	}
	if err := e.store.PutGroup(g); err != nil {
		return err
	}
	e.emit(NewMemberJoinedEvent(groupID, member, uint32(members.IndexOf(member))))
	return nil
}

// ActivateGroup transitions a Pending group to Active once enough members
// have joined. Any member or the creator may trigger activation once the
// threshold is met.
func (e *Engine) ActivateGroup(caller crypto.Address, groupID uint64) (*Group, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	members, err := e.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	if !members.Contains(caller) && !g.Creator.Equal(caller) {
		return nil, newErr(CodeUnauthorized, "", "only a member or the creator may activate this group")
	}
	if err := g.Activate(e.clock.Now()); err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	e.emit(NewGroupActivatedEvent(g))
	return g, nil
}

// PauseGroup suspends contributions and payouts on an Active group.
func (e *Engine) PauseGroup(caller crypto.Address, groupID uint64) (*Group, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if !g.Creator.Equal(caller) {
		return nil, newErr(CodeUnauthorized, "", "only the creator may pause this group")
	}
	from := g.Status
	if err := g.Pause(); err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	e.emit(NewGroupStatusChangedEvent(g, from))
	return g, nil
}

// ResumeGroup lifts a Paused group back to Active.
func (e *Engine) ResumeGroup(caller crypto.Address, groupID uint64) (*Group, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if !g.Creator.Equal(caller) {
		return nil, newErr(CodeUnauthorized, "", "only the creator may resume this group")
	}
	from := g.Status
	if err := g.Resume(); err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	e.emit(NewGroupStatusChangedEvent(g, from))
	return g, nil
}

// Contribute records member's contribution for the group's current cycle,
// transferring the contribution amount from member to the group's pool via
// the host's asset transfer primitive. If this contribution completes the
// cycle's full roster, the payout for the cycle is executed in the same
// operation before returning.
func (e *Engine) Contribute(member crypto.Address, groupID uint64, amount *Amount) (*ContributionRecord, error) {
	if err := e.auth.RequireAuth(member); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusActive {
		return nil, newErr(CodeInvalidState, "", "group is not active")
	}
	members, err := e.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	if !members.Contains(member) {
		return nil, newErr(CodeNotMember, "", "")
	}
	if amount.Cmp(g.ContributionAmount) != 0 {
		return nil, newErr(CodeInvalidAmount, "", "contribution must equal the group's fixed contribution_amount")
	}
	cycle := g.CurrentCycle
	already, err := e.store.HasContributed(groupID, cycle, member)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, newErr(CodeAlreadyContributed, "", "")
	}
	agg, err := e.store.GetCycleAggregates(groupID, cycle)
	if err != nil {
		return nil, err
	}
	if err := agg.Add(amount); err != nil {
		return nil, err
	}
	now := e.clock.Now()
	rec := &ContributionRecord{GroupID: groupID, Cycle: cycle, Member: member, Amount: amount, PaidAt: now}
	pool := poolAddress(groupID)
	if err := e.assets.Transfer(member, pool, amount.BigInt()); err != nil {
		return nil, newErr(CodePayoutFailed, "", "asset transfer failed: "+err.Error())
	}
	if err := e.store.PutContribution(rec); err != nil {
		return nil, err
	}
	if err := e.store.PutCycleAggregates(groupID, cycle, agg); err != nil {
		return nil, err
	}
	e.emit(NewContributionMadeEvent(rec))
	if agg.ContributorCount == g.MemberCount {
		if _, err := e.payout(g); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ExecutePayout disburses the current cycle's pool to its scheduled
// recipient once every member has contributed, then advances the group to
// the next cycle. Exposed as a standalone entry point for a caller to nudge
// a cycle that completed without the final contribution triggering it
// in-line (e.g. a cycle closed by other means); the common path reaches the
// same logic through Contribute's in-transaction delegation.
func (e *Engine) ExecutePayout(caller crypto.Address, groupID uint64) (*PayoutRecord, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	g, err := e.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusActive {
		return nil, newErr(CodeInvalidState, "", "group is not active")
	}
	return e.payout(g)
}

// payout executes the payout for g's current cycle. It is the shared tail
// of ExecutePayout (external, authenticated trigger) and Contribute's
// in-transaction delegation once a cycle's roster is fully contributed.
func (e *Engine) payout(g *Group) (*PayoutRecord, error) {
	groupID := g.ID
	cycle := g.CurrentCycle
	paid, err := e.store.HasPaidOut(groupID, cycle)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, newErr(CodePayoutAlreadyProcessed, "", "")
	}
	members, err := e.store.GetMembers(groupID)
	if err != nil {
		return nil, err
	}
	recipient, ok := members.PayoutRecipient(cycle)
	if !ok {
		return nil, newErr(CodeInvalidRecipient, "", "no member assigned to this cycle's payout position")
	}
	agg, err := e.store.GetCycleAggregates(groupID, cycle)
	if err != nil {
		return nil, err
	}
	expected, err := ExpectedPool(g.ContributionAmount, g.MemberCount)
	if err != nil {
		return nil, err
	}
	if !ReadyForPayout(agg.Total, expected, agg.ContributorCount, g.MemberCount) {
		return nil, newErr(CodeCycleNotComplete, "", "")
	}
	now := e.clock.Now()
	pool := poolAddress(groupID)
	if err := e.assets.Transfer(pool, recipient, agg.Total.BigInt()); err != nil {
		return nil, newErr(CodePayoutFailed, "", "asset transfer failed: "+err.Error())
	}
	rec := &PayoutRecord{GroupID: groupID, Cycle: cycle, Recipient: recipient, Amount: agg.Total, PaidAt: now}
	if err := e.store.PutPayout(rec); err != nil {
		return nil, err
	}
	if err := g.AdvanceCycle(); err != nil {
		return nil, err
	}
	if err := e.store.PutGroup(g); err != nil {
		return nil, err
	}
	e.emit(NewPayoutExecutedEvent(rec))
	if g.Status == StatusCompleted {
		e.emit(NewGroupCompletedEvent(g))
	}
	return rec, nil
}

// UpdateConfig lets the configured admin adjust the global Config bounds.
func (e *Engine) UpdateConfig(caller crypto.Address, minContribution, maxContribution *Amount, minMembers, maxMembers uint32, minCycleDuration, maxCycleDuration uint64) (*Config, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, newErr(CodeUnauthorized, "", err.Error())
	}
	cfg, err := e.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Admin.Equal(caller) {
		return nil, newErr(CodeUnauthorized, "", "only the admin may update config")
	}
	if err := cfg.UpdateConfig(minContribution, maxContribution, minMembers, maxMembers, minCycleDuration, maxCycleDuration); err != nil {
		return nil, err
	}
	if err := e.store.PutConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// poolAddress derives a deterministic per-group pool address from the
// group's id. It exists only so the reference AssetTransfer adapter has a
// concrete sender/recipient to move funds through; the core treats it as an
// opaque address like any other.
func poolAddress(groupID uint64) crypto.Address {
	b := make([]byte, 20)
	b[0] = 'p'
	b[1] = 'o'
	b[2] = 'o'
	b[3] = 'l'
	for i := 0; i < 8; i++ {
		b[4+i] = byte(groupID >> (56 - 8*i))
	}
	return crypto.MustNewAddress(crypto.RoscaPrefix, b)
}
