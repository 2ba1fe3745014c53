package engine

import (
	"context"
	"testing"

	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "0xplayer-1"

type stubProposalStore struct {
	proposals map[string]bool
	votes     map[string]bool // "proposal/address" -> support
}

func newStubProposalStore(ids ...string) *stubProposalStore {
	s := &stubProposalStore{
		proposals: make(map[string]bool),
		votes:     make(map[string]bool),
	}
	for _, id := range ids {
		s.proposals[id] = true
	}
	return s
}

func (s *stubProposalStore) Exists(_ context.Context, proposalID string) (bool, error) {
	return s.proposals[proposalID], nil
}

func (s *stubProposalStore) RecordVote(_ context.Context, proposalID, address string, support bool) error {
	s.votes[proposalID+"/"+address] = support
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	_, err := l.Register(ledger.CallerSystem, testAddr)
	require.NoError(t, err)
	return New(l, oracle.New(), newStubProposalStore("DIP-1"), DefaultParams()), l
}

func fund(t *testing.T, l *ledger.Ledger, token model.Token, amount float64) {
	t.Helper()
	_, err := l.Update(ledger.CallerSystem, testAddr, func(tx *ledger.Tx) error {
		return tx.Credit(token, amount)
	})
	require.NoError(t, err)
}

func TestBuy(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 10000)

	outcome, err := e.Buy(testAddr, model.TokenETH, 1)
	require.NoError(t, err)

	// cost = 1000 * 1.003 = 1003
	assert.InDelta(t, 1003.0, outcome.Cost, 1e-9)
	assert.InDelta(t, 8997.0, outcome.Account.Balances[model.TokenUSDC], 1e-9)
	assert.InDelta(t, 1.0, outcome.Account.Balances[model.TokenETH], 1e-9)
}

func TestBuyInsufficientFunds(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 1000)

	_, err := e.Buy(testAddr, model.TokenETH, 1)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.InDelta(t, 1000.0, l.Balance(testAddr, model.TokenUSDC), 1e-9)
	assert.Zero(t, l.Balance(testAddr, model.TokenETH))
}

func TestBuySellRoundTripLosesFeesOnly(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 10000)

	_, err := e.Buy(testAddr, model.TokenETH, 1)
	require.NoError(t, err)

	outcome, err := e.Sell(testAddr, model.TokenETH, 1)
	require.NoError(t, err)

	// proceeds = 1000 * 0.997 = 997; the round trip loses the two fees, 6
	assert.InDelta(t, 997.0, outcome.Proceeds, 1e-9)
	assert.InDelta(t, 9994.0, outcome.Account.Balances[model.TokenUSDC], 1e-9)
	assert.Zero(t, outcome.Account.Balances[model.TokenETH])
}

func TestSellInsufficientTokens(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Sell(testAddr, model.TokenETH, 1)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
}

func TestSwap(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenETH, 1)

	outcome, err := e.Swap(testAddr, model.TokenETH, model.TokenUSDC, 1)
	require.NoError(t, err)

	// 1000 * 0.997 / 1 = 997 vUSDC
	assert.InDelta(t, 997.0, outcome.AmountOut, 1e-9)
	assert.Zero(t, outcome.Account.Balances[model.TokenETH])
	assert.InDelta(t, 997.0, outcome.Account.Balances[model.TokenUSDC], 1e-9)
}

func TestSwapIntoExpensiveToken(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 2000)

	outcome, err := e.Swap(testAddr, model.TokenUSDC, model.TokenETH, 2000)
	require.NoError(t, err)

	// 2000 * 0.997 / 1000 = 1.994 vETH
	assert.InDelta(t, 1.994, outcome.AmountOut, 1e-9)
	assert.Zero(t, outcome.Account.Balances[model.TokenUSDC])
}

func TestSwapSameToken(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenDAI, 100)

	_, err := e.Swap(testAddr, model.TokenDAI, model.TokenDAI, 10)
	assert.ErrorIs(t, err, ErrSameToken)
	assert.InDelta(t, 100.0, l.Balance(testAddr, model.TokenDAI), 1e-9)
}

func TestStakeUnstake(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenETH, 5)

	account, err := e.Stake(testAddr, model.TokenETH, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, account.Balances[model.TokenETH], 1e-9)
	assert.InDelta(t, 3.0, account.Staked[model.TokenETH], 1e-9)

	account, err = e.Unstake(testAddr, model.TokenETH, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, account.Balances[model.TokenETH], 1e-9)
	assert.InDelta(t, 2.0, account.Staked[model.TokenETH], 1e-9)

	_, err = e.Stake(testAddr, model.TokenETH, 100)
	assert.ErrorIs(t, err, ErrInsufficientTokens)

	_, err = e.Unstake(testAddr, model.TokenETH, 100)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStaked)
}

func TestLend(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenDAI, 500)

	account, err := e.Lend(testAddr, model.TokenDAI, 200)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, account.Balances[model.TokenDAI], 1e-9)

	_, err = e.Lend(testAddr, model.TokenDAI, 1000)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
}

func TestBorrow(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenETH, 1)

	// collateral value 1000 against borrow value 100: ratio 1000%
	outcome, err := e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenETH, 1)
	require.NoError(t, err)

	account := outcome.Account
	assert.Zero(t, account.Balances[model.TokenETH])
	assert.InDelta(t, 1.0, account.Collateral[model.TokenETH], 1e-9)
	assert.InDelta(t, 100.0, account.Debt[model.TokenUSDC], 1e-9)
	assert.InDelta(t, 100.0, account.Balances[model.TokenUSDC], 1e-9)
}

func TestBorrowUnderCollateralized(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenDAI, 100)

	before := l.Snapshot(testAddr)

	// collateral value 100 < 1.5 * borrow value 100
	_, err := e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenDAI, 100)
	assert.ErrorIs(t, err, ErrInsufficientCollateralization)

	after := l.Snapshot(testAddr)
	assert.Equal(t, before.Balances, after.Balances)
	assert.Equal(t, before.Collateral, after.Collateral)
	assert.Equal(t, before.Debt, after.Debt)
	assert.Equal(t, before.Staked, after.Staked)
}

func TestBorrowInsufficientCollateralBalance(t *testing.T) {
	e, _ := newTestEngine(t)

	// Ratio is fine but the account does not hold the collateral
	_, err := e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenETH, 1)
	assert.ErrorIs(t, err, ErrInsufficientCollateral)
}

func TestRepayCapsAtOutstandingDebt(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenETH, 1)

	_, err := e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenETH, 1)
	require.NoError(t, err)
	fund(t, l, model.TokenUSDC, 400)

	// Offer 500 against a 100 debt: only 100 leaves the balance
	outcome, err := e.Repay(testAddr, model.TokenUSDC, 500)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, outcome.Repaid, 1e-9)
	assert.Zero(t, outcome.RemainingDebt)
	assert.InDelta(t, 400.0, outcome.Account.Balances[model.TokenUSDC], 1e-9)

	// Collateral stays locked after full repayment
	assert.InDelta(t, 1.0, outcome.Account.Collateral[model.TokenETH], 1e-9)
}

func TestRepayNoDebt(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 100)

	_, err := e.Repay(testAddr, model.TokenUSDC, 50)
	assert.ErrorIs(t, err, ErrNoDebt)
}

func TestRepayInsufficientFunds(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenETH, 1)

	_, err := e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenETH, 1)
	require.NoError(t, err)

	// Burn the borrowed funds so repayment cannot be covered
	_, err = e.YieldFarm(testAddr, model.TokenUSDC, 60)
	require.NoError(t, err)

	_, err = e.Repay(testAddr, model.TokenUSDC, 100)
	assert.ErrorIs(t, err, ErrInsufficientFundsToRepay)
	assert.InDelta(t, 100.0, l.Snapshot(testAddr).Debt[model.TokenUSDC], 1e-9)
}

func TestFlashLoan(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 10000)

	outcome, err := e.FlashLoan(testAddr, model.TokenUSDC, 5000)
	require.NoError(t, err)

	// fee = 5000 * 0.001 = 5; the only net effect
	assert.InDelta(t, 5.0, outcome.Fee, 1e-9)
	assert.InDelta(t, 9995.0, outcome.Account.Balances[model.TokenUSDC], 1e-9)
}

func TestFlashLoanInsufficientFunds(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 5000)

	// Needs 5000 + 5 to settle
	_, err := e.FlashLoan(testAddr, model.TokenUSDC, 5000)
	assert.ErrorIs(t, err, ErrInsufficientFundsForFlashLoan)
	assert.InDelta(t, 5000.0, l.Balance(testAddr, model.TokenUSDC), 1e-9)
}

func TestYieldFarm(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenDAI, 100)

	account, err := e.YieldFarm(testAddr, model.TokenDAI, 40)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, account.Balances[model.TokenDAI], 1e-9)

	_, err = e.YieldFarm(testAddr, model.TokenDAI, 100)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
}

func TestVote(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Vote(context.Background(), testAddr, "DIP-1", true)
	require.NoError(t, err)

	err = e.Vote(context.Background(), testAddr, "DIP-99", true)
	assert.ErrorIs(t, err, ErrInvalidProposal)
}

func TestVoteRequiresRegistration(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Vote(context.Background(), "0xstranger", "DIP-1", true)
	assert.ErrorIs(t, err, ledger.ErrNotRegistered)
}

func TestRecordTrade(t *testing.T) {
	e, _ := newTestEngine(t)

	account, err := e.RecordTrade(testAddr, model.ScenarioIntroTrading, 1003)
	require.NoError(t, err)
	account, err = e.RecordTrade(testAddr, model.ScenarioIntroTrading, 997)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), account.TradesCompleted)
	assert.InDelta(t, 2000.0, account.TotalVolume, 1e-9)
	assert.Equal(t, uint64(2), account.TradeHistory[string(model.ScenarioIntroTrading)])
}

func TestInvalidAmounts(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 1000)

	_, err := e.Buy(testAddr, model.TokenETH, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = e.Sell(testAddr, model.TokenETH, -1)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = e.Borrow(testAddr, model.TokenUSDC, 100, model.TokenETH, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = e.FlashLoan(testAddr, model.TokenUSDC, -10)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestUnsupportedToken(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 1000)

	// The achievement token has no price, so it cannot be traded
	_, err := e.Buy(testAddr, model.TokenACH, 1)
	assert.ErrorIs(t, err, oracle.ErrUnsupportedToken)

	_, err = e.Swap(testAddr, model.TokenUSDC, model.TokenACH, 10)
	assert.ErrorIs(t, err, oracle.ErrUnsupportedToken)
}

func TestUnregisteredAccountCannotTrade(t *testing.T) {
	e, l := newTestEngine(t)
	const stranger = "0xstranger"

	_, err := e.Buy(stranger, model.TokenETH, 1)
	assert.ErrorIs(t, err, ledger.ErrNotRegistered)

	_, err = e.Stake(stranger, model.TokenETH, 1)
	assert.ErrorIs(t, err, ledger.ErrNotRegistered)

	_, err = e.RecordTrade(stranger, model.ScenarioIntroTrading, 10)
	assert.ErrorIs(t, err, ledger.ErrNotRegistered)

	snap := l.Snapshot(stranger)
	assert.Empty(t, snap.Balances)
	assert.Zero(t, snap.TradesCompleted)
}

func TestBalancesNeverNegative(t *testing.T) {
	e, l := newTestEngine(t)
	fund(t, l, model.TokenUSDC, 2000)
	fund(t, l, model.TokenETH, 1)

	// A mix of succeeding and failing operations
	e.Buy(testAddr, model.TokenETH, 1)
	e.Sell(testAddr, model.TokenETH, 5)
	e.Swap(testAddr, model.TokenUSDC, model.TokenDAI, 500)
	e.Stake(testAddr, model.TokenETH, 10)
	e.Borrow(testAddr, model.TokenUSDC, 5000, model.TokenETH, 1)
	e.FlashLoan(testAddr, model.TokenUSDC, 1e9)
	e.Repay(testAddr, model.TokenUSDC, 100)

	snap := l.Snapshot(testAddr)
	for _, m := range []map[model.Token]float64{snap.Balances, snap.Collateral, snap.Debt, snap.Staked} {
		for token, amount := range m {
			assert.GreaterOrEqual(t, amount, 0.0, "negative amount for %s", token)
		}
	}
}
