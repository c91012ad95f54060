package main

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"roscachain/crypto"
	"roscachain/hostport"
)

// staticAuth models the host's require_auth(address) primitive for a
// single in-flight call: the harness sets the authenticated caller before
// invoking an Engine method, and staticAuth simply checks the requested
// address matches it. A real ledger runtime authenticates via the
// transaction's signature; this harness has no transaction envelope to
// check against.
type staticAuth struct {
	mu      sync.Mutex
	current crypto.Address
}

func newStaticAuth() *staticAuth { return &staticAuth{} }

func (a *staticAuth) setCaller(addr crypto.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = addr
}

func (a *staticAuth) RequireAuth(addr crypto.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.current.Equal(addr) {
		return fmt.Errorf("caller %s is not authorized to act as %s", a.current, addr)
	}
	return nil
}

// systemClock backs hostport.Clock with wall-clock time, acceptable here
// because the demo harness is not the deterministic core itself.
type systemClock struct{}

func (systemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// logEventSink forwards every emitted event to structured logging, standing
// in for the host's event bus.
type logEventSink struct {
	log *slog.Logger
}

func (s *logEventSink) Emit(evt hostport.Event) {
	args := make([]any, 0, len(evt.Attributes)*2+2)
	args = append(args, "type", evt.Type)
	for k, v := range evt.Attributes {
		args = append(args, k, v)
	}
	s.log.Info("event", args...)
}

// ledgerAssetTransfer is a minimal in-memory balance ledger standing in for
// the host's asset transfer primitive. It is intentionally separate from
// native/rosca's own storage keyspace: the core never inspects balances
// directly, it only calls Transfer and reacts to whether it errors.
type ledgerAssetTransfer struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func newLedgerAssetTransfer() *ledgerAssetTransfer {
	return &ledgerAssetTransfer{balances: make(map[string]*big.Int)}
}

// Fund credits addr with amount, used by the demo harness to seed members
// with starting balances before they contribute.
func (l *ledgerAssetTransfer) Fund(addr crypto.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balanceOf(addr)
	l.balances[string(addr.Bytes())] = new(big.Int).Add(bal, amount)
}

func (l *ledgerAssetTransfer) balanceOf(addr crypto.Address) *big.Int {
	if bal, ok := l.balances[string(addr.Bytes())]; ok {
		return bal
	}
	return big.NewInt(0)
}

func (l *ledgerAssetTransfer) Transfer(from, to crypto.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBal := l.balanceOf(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance: have %s, need %s", fromBal, amount)
	}
	l.balances[string(from.Bytes())] = new(big.Int).Sub(fromBal, amount)
	toBal := l.balanceOf(to)
	l.balances[string(to.Bytes())] = new(big.Int).Add(toBal, amount)
	return nil
}
