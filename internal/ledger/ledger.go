// Package ledger owns all per-account state and is its sole mutator.
// Every trading operation is applied through Update, which runs the
// whole mutation against a private copy of the account under that
// account's lock and swaps the copy in only when it succeeds. A failed
// operation therefore leaves no trace, and readers only ever observe
// committed state.
package ledger

import (
	"sync"
	"time"

	"defidojo/backend/internal/model"
	"defidojo/backend/internal/util"
)

// Caller is the capability passed into every mutating ledger call.
// It replaces the original "only owner or trading functions may update"
// access rules with an explicit check at the ledger boundary.
type Caller uint8

const (
	// CallerSystem covers registration and scenario funding
	CallerSystem Caller = iota + 1
	// CallerTrading is held by the trading engine
	CallerTrading
	// CallerAchievements is held by the achievement controller
	CallerAchievements
)

func (c Caller) valid() bool {
	switch c {
	case CallerSystem, CallerTrading, CallerAchievements:
		return true
	}
	return false
}

type entry struct {
	mu    sync.RWMutex
	state *model.Account
}

// Ledger holds every account, each guarded by its own lock so that two
// operations on the same account cannot interleave.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*entry
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]*entry),
	}
}

// entryFor returns the entry for an address, creating the account on
// first reference (all maps empty, unregistered).
func (l *Ledger) entryFor(address string) *entry {
	l.mu.RLock()
	e, ok := l.accounts[address]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.accounts[address]; ok {
		return e
	}
	e = &entry{state: model.NewAccount(address)}
	l.accounts[address] = e
	return e
}

// Register marks an account as registered. Fails if the flag is
// already set; the flag is never unset.
func (l *Ledger) Register(caller Caller, address string) (*model.Account, error) {
	if caller != CallerSystem {
		return nil, ErrUnknownCaller
	}
	e := l.entryFor(address)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Registered {
		return nil, ErrAlreadyRegistered
	}
	next := e.state.Clone()
	next.Registered = true
	next.UpdatedAt = time.Now()
	e.state = next
	return next.Clone(), nil
}

// Update applies fn to a copy of the account and commits the copy only
// if fn returns nil. The account must be registered: unregistered
// accounts cannot perform any balance-affecting operation.
func (l *Ledger) Update(caller Caller, address string, fn func(tx *Tx) error) (*model.Account, error) {
	if !caller.valid() {
		return nil, ErrUnknownCaller
	}
	e := l.entryFor(address)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Registered {
		return nil, ErrNotRegistered
	}

	work := e.state.Clone()
	if err := fn(&Tx{acct: work}); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	e.state = work
	return work.Clone(), nil
}

// Snapshot returns a copy of the committed account state. The account
// is created on first reference, so Snapshot never fails.
func (l *Ledger) Snapshot(address string) *model.Account {
	e := l.entryFor(address)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// IsRegistered reports whether the account has been registered
func (l *Ledger) IsRegistered(address string) bool {
	e := l.entryFor(address)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Registered
}

// Balance returns the committed spendable balance for one token
func (l *Ledger) Balance(address string, token model.Token) float64 {
	e := l.entryFor(address)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Balances[token]
}

// Tx is a mutation in progress against a private copy of one account.
// Its primitives enforce the non-negative guards; arithmetic results
// are normalized to the ledger precision so fee math cannot leave
// floating point dust behind.
type Tx struct {
	acct *model.Account
}

// Balance returns the in-progress spendable balance for a token
func (tx *Tx) Balance(token model.Token) float64 {
	return tx.acct.Balances[token]
}

// Collateral returns the in-progress locked collateral for a token
func (tx *Tx) Collateral(token model.Token) float64 {
	return tx.acct.Collateral[token]
}

// Debt returns the in-progress outstanding debt for a token
func (tx *Tx) Debt(token model.Token) float64 {
	return tx.acct.Debt[token]
}

// Staked returns the in-progress staked amount for a token
func (tx *Tx) Staked(token model.Token) float64 {
	return tx.acct.Staked[token]
}

// Debit subtracts from the spendable balance
func (tx *Tx) Debit(token model.Token, amount float64) error {
	return debitMap(tx.acct.Balances, token, amount, ErrInsufficientFunds)
}

// Credit adds to the spendable balance. Zero is a no-op, not an error.
func (tx *Tx) Credit(token model.Token, amount float64) error {
	return creditMap(tx.acct.Balances, token, amount)
}

// LockCollateral adds to the locked collateral map
func (tx *Tx) LockCollateral(token model.Token, amount float64) error {
	return creditMap(tx.acct.Collateral, token, amount)
}

// UnlockCollateral releases locked collateral
func (tx *Tx) UnlockCollateral(token model.Token, amount float64) error {
	return debitMap(tx.acct.Collateral, token, amount, ErrCollateralShort)
}

// IncreaseDebt adds to the outstanding debt map
func (tx *Tx) IncreaseDebt(token model.Token, amount float64) error {
	return creditMap(tx.acct.Debt, token, amount)
}

// DecreaseDebt pays down outstanding debt
func (tx *Tx) DecreaseDebt(token model.Token, amount float64) error {
	return debitMap(tx.acct.Debt, token, amount, ErrInsufficientDebt)
}

// Stake adds to the staked map
func (tx *Tx) Stake(token model.Token, amount float64) error {
	return creditMap(tx.acct.Staked, token, amount)
}

// Unstake releases staked tokens
func (tx *Tx) Unstake(token model.Token, amount float64) error {
	return debitMap(tx.acct.Staked, token, amount, ErrInsufficientStaked)
}

// RecordTrade increments the trade counters. They only ever increase.
func (tx *Tx) RecordTrade(scenarioTag string, volume float64) error {
	if volume <= 0 {
		return ErrInvalidAmount
	}
	tx.acct.TradesCompleted++
	tx.acct.TotalVolume = util.RoundAmount(tx.acct.TotalVolume + volume)
	tx.acct.TradeHistory[scenarioTag]++
	return nil
}

// HasAchievement reports whether the achievement has been unlocked
func (tx *Tx) HasAchievement(id string) bool {
	return tx.acct.Achievements[id]
}

// GrantAchievement marks an achievement as unlocked
func (tx *Tx) GrantAchievement(id string) {
	tx.acct.Achievements[id] = true
}

func debitMap(m map[model.Token]float64, token model.Token, amount float64, short error) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	current := m[token]
	if current < amount {
		return short
	}
	m[token] = util.RoundAmount(current - amount)
	return nil
}

func creditMap(m map[model.Token]float64, token model.Token, amount float64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}
	m[token] = util.RoundAmount(m[token] + amount)
	return nil
}
