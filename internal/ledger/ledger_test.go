package ledger

import (
	"sync"
	"testing"

	"defidojo/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "0xplayer-1"

func registered(t *testing.T) *Ledger {
	t.Helper()
	l := New()
	_, err := l.Register(CallerSystem, testAddr)
	require.NoError(t, err)
	return l
}

func fund(t *testing.T, l *Ledger, token model.Token, amount float64) {
	t.Helper()
	_, err := l.Update(CallerSystem, testAddr, func(tx *Tx) error {
		return tx.Credit(token, amount)
	})
	require.NoError(t, err)
}

func TestAccountCreatedOnFirstReference(t *testing.T) {
	l := New()

	snap := l.Snapshot("0xnever-seen")
	assert.False(t, snap.Registered)
	assert.Empty(t, snap.Balances)
	assert.Empty(t, snap.Collateral)
	assert.Empty(t, snap.Debt)
	assert.Empty(t, snap.Staked)
	assert.Zero(t, snap.TradesCompleted)
}

func TestRegister(t *testing.T) {
	l := New()

	snap, err := l.Register(CallerSystem, testAddr)
	require.NoError(t, err)
	assert.True(t, snap.Registered)
	assert.True(t, l.IsRegistered(testAddr))

	_, err = l.Register(CallerSystem, testAddr)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterRequiresSystemCaller(t *testing.T) {
	l := New()

	_, err := l.Register(CallerTrading, testAddr)
	assert.ErrorIs(t, err, ErrUnknownCaller)
	assert.False(t, l.IsRegistered(testAddr))
}

func TestUpdateRequiresRegistration(t *testing.T) {
	l := New()

	_, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Credit(model.TokenUSDC, 100)
	})
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Zero(t, l.Balance(testAddr, model.TokenUSDC))
}

func TestUpdateRejectsUnknownCaller(t *testing.T) {
	l := registered(t)

	_, err := l.Update(Caller(0), testAddr, func(tx *Tx) error {
		return tx.Credit(model.TokenUSDC, 100)
	})
	assert.ErrorIs(t, err, ErrUnknownCaller)
}

func TestUpdateIsAtomic(t *testing.T) {
	l := registered(t)
	fund(t, l, model.TokenUSDC, 1000)

	// Debit succeeds inside the closure, then the closure fails: the
	// whole mutation must be discarded.
	_, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		require.NoError(t, tx.Debit(model.TokenUSDC, 400))
		require.NoError(t, tx.Stake(model.TokenUSDC, 400))
		return assert.AnError
	})
	assert.Error(t, err)

	snap := l.Snapshot(testAddr)
	assert.InDelta(t, 1000.0, snap.Balances[model.TokenUSDC], 1e-9)
	assert.Zero(t, snap.Staked[model.TokenUSDC])
}

func TestDebitCredit(t *testing.T) {
	l := registered(t)
	fund(t, l, model.TokenETH, 3)

	snap, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Debit(model.TokenETH, 1.25)
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, snap.Balances[model.TokenETH], 1e-9)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Debit(model.TokenETH, 2)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.InDelta(t, 1.75, l.Balance(testAddr, model.TokenETH), 1e-9)
}

func TestPrimitiveAmountGuards(t *testing.T) {
	l := registered(t)
	fund(t, l, model.TokenUSDC, 100)

	_, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Debit(model.TokenUSDC, 0)
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Debit(model.TokenUSDC, -5)
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Credit(model.TokenUSDC, -5)
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Zero credit is a no-op, not an error
	snap, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Credit(model.TokenUSDC, 0)
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, snap.Balances[model.TokenUSDC], 1e-9)
}

func TestStakeUnstake(t *testing.T) {
	l := registered(t)
	fund(t, l, model.TokenETH, 2)

	snap, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		if err := tx.Debit(model.TokenETH, 1.5); err != nil {
			return err
		}
		return tx.Stake(model.TokenETH, 1.5)
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, snap.Balances[model.TokenETH], 1e-9)
	assert.InDelta(t, 1.5, snap.Staked[model.TokenETH], 1e-9)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.Unstake(model.TokenETH, 2)
	})
	assert.ErrorIs(t, err, ErrInsufficientStaked)
}

func TestCollateralAndDebt(t *testing.T) {
	l := registered(t)

	snap, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		if err := tx.LockCollateral(model.TokenETH, 1); err != nil {
			return err
		}
		return tx.IncreaseDebt(model.TokenUSDC, 100)
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, snap.Collateral[model.TokenETH], 1e-9)
	assert.InDelta(t, 100.0, snap.Debt[model.TokenUSDC], 1e-9)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.UnlockCollateral(model.TokenETH, 2)
	})
	assert.ErrorIs(t, err, ErrCollateralShort)

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.DecreaseDebt(model.TokenUSDC, 101)
	})
	assert.ErrorIs(t, err, ErrInsufficientDebt)

	snap, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		if err := tx.DecreaseDebt(model.TokenUSDC, 100); err != nil {
			return err
		}
		return tx.UnlockCollateral(model.TokenETH, 1)
	})
	require.NoError(t, err)
	assert.Zero(t, snap.Debt[model.TokenUSDC])
	assert.Zero(t, snap.Collateral[model.TokenETH])
}

func TestRecordTrade(t *testing.T) {
	l := registered(t)

	snap, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.RecordTrade("intro-trading", 250)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.TradesCompleted)
	assert.InDelta(t, 250.0, snap.TotalVolume, 1e-9)
	assert.Equal(t, uint64(1), snap.TradeHistory["intro-trading"])

	_, err = l.Update(CallerTrading, testAddr, func(tx *Tx) error {
		return tx.RecordTrade("intro-trading", 0)
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSnapshotIsIsolated(t *testing.T) {
	l := registered(t)
	fund(t, l, model.TokenUSDC, 100)

	snap := l.Snapshot(testAddr)
	snap.Balances[model.TokenUSDC] = 1e9
	snap.Registered = false

	assert.InDelta(t, 100.0, l.Balance(testAddr, model.TokenUSDC), 1e-9)
	assert.True(t, l.IsRegistered(testAddr))
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	l := registered(t)

	const workers = 16
	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_, err := l.Update(CallerTrading, testAddr, func(tx *Tx) error {
					return tx.Credit(model.TokenDAI, 1)
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.InDelta(t, float64(workers*iterations), l.Balance(testAddr, model.TokenDAI), 1e-9)
}
