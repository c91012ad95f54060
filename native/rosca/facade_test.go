package rosca

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"roscachain/crypto"
	"roscachain/hostport"
	"roscachain/storage"
)

// testAuth authorizes whatever address the test sets as the current caller,
// standing in for the host's require_auth primitive.
type testAuth struct {
	current crypto.Address
}

func (a *testAuth) as(addr crypto.Address) { a.current = addr }

func (a *testAuth) RequireAuth(addr crypto.Address) error {
	if !a.current.Equal(addr) {
		return errors.New("unauthorized")
	}
	return nil
}

type testClock struct{ now uint64 }

func (c *testClock) Now() uint64 { return c.now }

type testEventSink struct{ events []hostport.Event }

func (s *testEventSink) Emit(evt hostport.Event) { s.events = append(s.events, evt) }

type testAssetTransfer struct {
	balances map[string]*big.Int
	fail     bool
}

func newTestAssetTransfer() *testAssetTransfer {
	return &testAssetTransfer{balances: make(map[string]*big.Int)}
}

func (a *testAssetTransfer) fund(addr crypto.Address, amount int64) {
	a.balances[string(addr.Bytes())] = big.NewInt(amount)
}

func (a *testAssetTransfer) Transfer(from, to crypto.Address, amount *big.Int) error {
	if a.fail {
		return errors.New("simulated transfer failure")
	}
	fromBal, ok := a.balances[string(from.Bytes())]
	if !ok {
		fromBal = big.NewInt(0)
	}
	if fromBal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	a.balances[string(from.Bytes())] = new(big.Int).Sub(fromBal, amount)
	toBal, ok := a.balances[string(to.Bytes())]
	if !ok {
		toBal = big.NewInt(0)
	}
	a.balances[string(to.Bytes())] = new(big.Int).Add(toBal, amount)
	return nil
}

func newTestEngine(admin crypto.Address) (*Engine, *testAuth, *testClock, *testAssetTransfer) {
	auth := &testAuth{}
	clock := &testClock{now: 1000}
	assets := newTestAssetTransfer()
	sink := &testEventSink{}
	engine := NewEngine(storage.NewMemDB(), auth, clock, sink, assets)
	auth.as(admin)
	if err := engine.Bootstrap(admin); err != nil {
		panic(err)
	}
	return engine, auth, clock, assets
}

// TestFullRotation runs the happy-path scenario end to end: create, join,
// activate, contribute, payout, advance, repeat until completion.
func TestFullRotation(t *testing.T) {
	admin := testAddr(1)
	engine, auth, clock, assets := newTestEngine(admin)

	creator := testAddr(1)
	members := []crypto.Address{testAddr(2), testAddr(3), testAddr(4)}
	contribution := NewAmount(100)
	for _, m := range members {
		assets.fund(m, 10_000)
	}

	auth.as(creator)
	g, err := engine.CreateGroup(creator, contribution, 100, 3, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	for _, m := range members {
		auth.as(m)
		if err := engine.JoinGroup(m, g.ID); err != nil {
			t.Fatalf("join group: %v", err)
		}
	}

	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate group: %v", err)
	}

	for cycle := 0; cycle < len(members); cycle++ {
		for _, m := range members {
			auth.as(m)
			if _, err := engine.Contribute(m, g.ID, contribution); err != nil {
				t.Fatalf("cycle %d contribute: %v", cycle, err)
			}
		}
		// The final contribution above completes the cycle's roster, so the
		// payout for this cycle is already executed in-line; there is no
		// separate ExecutePayout call to make.
		rec, err := engine.store.GetPayout(g.ID, uint32(cycle))
		if err != nil {
			t.Fatalf("cycle %d get payout: %v", cycle, err)
		}
		if rec == nil {
			t.Fatalf("cycle %d expected implicit payout, found none", cycle)
		}
		wantRecipient := members[cycle]
		if !rec.Recipient.Equal(wantRecipient) {
			t.Fatalf("cycle %d expected recipient %s, got %s", cycle, wantRecipient, rec.Recipient)
		}
		clock.now += 100
	}

	final, err := engine.store.GetGroup(g.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected group completed, got %s", final.Status)
	}
}

func TestCreateGroupRejectsAtCounterOverflow(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, _ := newTestEngine(admin)

	if err := engine.store.kv.Set(NextGroupIDKey(), u64Bytes(math.MaxUint64)); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	auth.as(admin)
	_, err := engine.CreateGroup(admin, NewAmount(10), 100, 2, 2)
	if !errors.Is(err, CodeErr(CodeOverflow)) {
		t.Fatalf("expected CodeOverflow, got %v", err)
	}

	_, getErr := engine.store.GetGroup(math.MaxUint64)
	if !errors.Is(getErr, CodeErr(CodeGroupNotFound)) {
		t.Fatalf("expected no group persisted at the overflowed id, got %v", getErr)
	}
}

func TestContributeRejectsNonMember(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, _ := newTestEngine(admin)

	creator := testAddr(1)
	auth.as(creator)
	g, err := engine.CreateGroup(creator, NewAmount(10), 100, 3, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	auth.as(testAddr(2))
	if err := engine.JoinGroup(testAddr(2), g.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	auth.as(testAddr(3))
	if err := engine.JoinGroup(testAddr(3), g.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	stranger := testAddr(9)
	auth.as(stranger)
	_, err = engine.Contribute(stranger, g.ID, NewAmount(10))
	if !errors.Is(err, CodeErr(CodeNotMember)) {
		t.Fatalf("expected CodeNotMember, got %v", err)
	}
}

func TestContributeRejectsDoubleContribution(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, assets := newTestEngine(admin)

	creator := testAddr(1)
	contribution := NewAmount(10)
	auth.as(creator)
	g, err := engine.CreateGroup(creator, contribution, 100, 2, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	m1, m2 := testAddr(2), testAddr(3)
	assets.fund(m1, 100)
	assets.fund(m2, 100)
	for _, m := range []crypto.Address{m1, m2} {
		auth.as(m)
		if err := engine.JoinGroup(m, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	auth.as(m1)
	if _, err := engine.Contribute(m1, g.ID, contribution); err != nil {
		t.Fatalf("first contribute: %v", err)
	}
	_, err = engine.Contribute(m1, g.ID, contribution)
	if !errors.Is(err, CodeErr(CodeAlreadyContributed)) {
		t.Fatalf("expected CodeAlreadyContributed, got %v", err)
	}
}

func TestExecutePayoutRejectsIncompleteCycle(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, assets := newTestEngine(admin)

	creator := testAddr(1)
	contribution := NewAmount(10)
	auth.as(creator)
	g, err := engine.CreateGroup(creator, contribution, 100, 2, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	m1, m2 := testAddr(2), testAddr(3)
	assets.fund(m1, 100)
	for _, m := range []crypto.Address{m1, m2} {
		auth.as(m)
		if err := engine.JoinGroup(m, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	auth.as(m1)
	if _, err := engine.Contribute(m1, g.ID, contribution); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	auth.as(creator)
	_, err = engine.ExecutePayout(creator, g.ID)
	if !errors.Is(err, CodeErr(CodeCycleNotComplete)) {
		t.Fatalf("expected CodeCycleNotComplete, got %v", err)
	}
}

func TestPauseAndResumeGroup(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, _ := newTestEngine(admin)

	creator := testAddr(1)
	auth.as(creator)
	g, err := engine.CreateGroup(creator, NewAmount(10), 100, 2, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, m := range []crypto.Address{testAddr(2), testAddr(3)} {
		auth.as(m)
		if err := engine.JoinGroup(m, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	paused, err := engine.PauseGroup(creator, g.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != StatusPaused {
		t.Fatalf("expected Paused, got %s", paused.Status)
	}
	resumed, err := engine.ResumeGroup(creator, g.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != StatusActive {
		t.Fatalf("expected Active, got %s", resumed.Status)
	}
}

func TestPayoutFailsWhenTransferRejected(t *testing.T) {
	admin := testAddr(1)
	engine, auth, _, assets := newTestEngine(admin)

	creator := testAddr(1)
	contribution := NewAmount(10)
	auth.as(creator)
	g, err := engine.CreateGroup(creator, contribution, 100, 2, 2)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	m1, m2 := testAddr(2), testAddr(3)
	assets.fund(m1, 100)
	assets.fund(m2, 100)
	for _, m := range []crypto.Address{m1, m2} {
		auth.as(m)
		if err := engine.JoinGroup(m, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	auth.as(creator)
	if _, err := engine.ActivateGroup(creator, g.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	auth.as(m1)
	if _, err := engine.Contribute(m1, g.ID, contribution); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	// m2's contribution would complete the cycle's roster; with every
	// transfer failing, m2's own transfer into the pool is rejected, so
	// Contribute returns PayoutFailed before the cycle's payout can run.
	assets.fail = true
	auth.as(m2)
	_, err = engine.Contribute(m2, g.ID, contribution)
	if !errors.Is(err, CodeErr(CodePayoutFailed)) {
		t.Fatalf("expected CodePayoutFailed, got %v", err)
	}

	paid, hasErr := engine.store.HasPaidOut(g.ID, 0)
	if hasErr != nil {
		t.Fatalf("has paid out: %v", hasErr)
	}
	if paid {
		t.Fatal("payout flag should not be set after a failed transfer")
	}
}
