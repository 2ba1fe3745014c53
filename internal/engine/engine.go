// Package engine implements the trading operations of the game: buy,
// sell, swap, stake, unstake, lend, borrow, repay, flash loans, yield
// farming, governance votes and trade recording. Every operation
// validates all of its preconditions before issuing any ledger write,
// so a failed call leaves the account exactly as it found it.
package engine

import (
	"context"
	"math"

	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/oracle"
	"defidojo/backend/internal/util"
	"defidojo/backend/pkg/logger"
)

// Params holds the economic rules of the venue
type Params struct {
	TradeFeeRate       float64 // fee on buy/sell/swap, 0.003 = 30 bps
	FlashLoanFeeRate   float64 // fee on flash loans, 0.001 = 10 bps
	MinCollateralRatio float64 // collateral value / borrow value floor
}

// DefaultParams returns the standard game economics
func DefaultParams() Params {
	return Params{
		TradeFeeRate:       0.003,
		FlashLoanFeeRate:   0.001,
		MinCollateralRatio: 1.5,
	}
}

// ProposalStore validates governance proposal ids and records votes.
// Implemented by the Redis-backed governance repository.
type ProposalStore interface {
	Exists(ctx context.Context, proposalID string) (bool, error)
	RecordVote(ctx context.Context, proposalID, address string, support bool) error
}

// Engine composes ledger primitives and oracle lookups into the
// trading operations
type Engine struct {
	ledger    *ledger.Ledger
	oracle    *oracle.Oracle
	proposals ProposalStore
	params    Params
	log       *logger.Logger
}

// New creates a trading engine
func New(l *ledger.Ledger, o *oracle.Oracle, proposals ProposalStore, params Params) *Engine {
	return &Engine{
		ledger:    l,
		oracle:    o,
		proposals: proposals,
		params:    params,
		log:       logger.GetLogger(),
	}
}

// Params returns the engine's economic parameters
func (e *Engine) Params() Params {
	return e.params
}

// TradeOutcome is the result of a committed buy or sell
type TradeOutcome struct {
	Account  *model.Account
	Token    model.Token
	Amount   float64
	Cost     float64 // vUSDC spent, buy only
	Proceeds float64 // vUSDC received, sell only
}

// SwapOutcome is the result of a committed swap
type SwapOutcome struct {
	Account   *model.Account
	FromToken model.Token
	ToToken   model.Token
	AmountIn  float64
	AmountOut float64
}

// BorrowOutcome is the result of a committed borrow
type BorrowOutcome struct {
	Account          *model.Account
	BorrowToken      model.Token
	BorrowAmount     float64
	CollateralToken  model.Token
	CollateralAmount float64
}

// RepayOutcome is the result of a committed repay
type RepayOutcome struct {
	Account       *model.Account
	Token         model.Token
	Repaid        float64
	RemainingDebt float64
}

// FlashLoanOutcome is the result of a committed flash loan
type FlashLoanOutcome struct {
	Account *model.Account
	Token   model.Token
	Amount  float64
	Fee     float64
}

// Buy purchases amount of token, paying value*(1+fee) in vUSDC
func (e *Engine) Buy(address string, token model.Token, amount float64) (*TradeOutcome, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	value, err := e.oracle.ValueOf(token, amount)
	if err != nil {
		return nil, err
	}
	cost := util.RoundAmount(value * (1 + e.params.TradeFeeRate))

	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(model.QuoteToken) < cost {
			return ledger.ErrInsufficientFunds
		}
		if err := tx.Debit(model.QuoteToken, cost); err != nil {
			return err
		}
		return tx.Credit(token, amount)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address": address,
		"token":   token,
		"amount":  amount,
		"cost":    cost,
	}).Info("Buy executed")

	return &TradeOutcome{Account: snap, Token: token, Amount: amount, Cost: cost}, nil
}

// Sell disposes amount of token, receiving value*(1-fee) in vUSDC
func (e *Engine) Sell(address string, token model.Token, amount float64) (*TradeOutcome, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	value, err := e.oracle.ValueOf(token, amount)
	if err != nil {
		return nil, err
	}
	proceeds := util.RoundAmount(value * (1 - e.params.TradeFeeRate))

	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(token) < amount {
			return ErrInsufficientTokens
		}
		if err := tx.Debit(token, amount); err != nil {
			return err
		}
		return tx.Credit(model.QuoteToken, proceeds)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address":  address,
		"token":    token,
		"amount":   amount,
		"proceeds": proceeds,
	}).Info("Sell executed")

	return &TradeOutcome{Account: snap, Token: token, Amount: amount, Proceeds: proceeds}, nil
}

// Swap converts amount of fromToken into toToken at oracle prices,
// charging the trade fee on the way through
func (e *Engine) Swap(address string, fromToken, toToken model.Token, amount float64) (*SwapOutcome, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if fromToken == toToken {
		return nil, ErrSameToken
	}
	value, err := e.oracle.ValueOf(fromToken, amount)
	if err != nil {
		return nil, err
	}
	toPrice, err := e.oracle.PriceOf(toToken)
	if err != nil {
		return nil, err
	}
	amountOut := util.RoundAmount(value * (1 - e.params.TradeFeeRate) / toPrice)

	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(fromToken) < amount {
			return ErrInsufficientTokens
		}
		if err := tx.Debit(fromToken, amount); err != nil {
			return err
		}
		return tx.Credit(toToken, amountOut)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address":    address,
		"from_token": fromToken,
		"to_token":   toToken,
		"amount_in":  amount,
		"amount_out": amountOut,
	}).Info("Swap executed")

	return &SwapOutcome{
		Account:   snap,
		FromToken: fromToken,
		ToToken:   toToken,
		AmountIn:  amount,
		AmountOut: amountOut,
	}, nil
}

// Stake moves amount from the spendable balance into the staked map
func (e *Engine) Stake(address string, token model.Token, amount float64) (*model.Account, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	return e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(token) < amount {
			return ErrInsufficientTokens
		}
		if err := tx.Debit(token, amount); err != nil {
			return err
		}
		return tx.Stake(token, amount)
	})
}

// Unstake moves amount from the staked map back into the spendable balance
func (e *Engine) Unstake(address string, token model.Token, amount float64) (*model.Account, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	return e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Staked(token) < amount {
			return ledger.ErrInsufficientStaked
		}
		if err := tx.Unstake(token, amount); err != nil {
			return err
		}
		return tx.Credit(token, amount)
	})
}

// Lend removes amount from the spendable balance. Pool-side
// bookkeeping lives with the external pool collaborator.
func (e *Engine) Lend(address string, token model.Token, amount float64) (*model.Account, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	return e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(token) < amount {
			return ErrInsufficientTokens
		}
		return tx.Debit(token, amount)
	})
}

// Borrow opens a debt position: collateral moves from the spendable
// balance into the collateral map, and the borrowed amount is credited
// alongside the matching debt. The collateral value must cover the
// borrow value at the minimum ratio.
func (e *Engine) Borrow(address string, borrowToken model.Token, borrowAmount float64, collateralToken model.Token, collateralAmount float64) (*BorrowOutcome, error) {
	if borrowAmount <= 0 || collateralAmount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	borrowValue, err := e.oracle.ValueOf(borrowToken, borrowAmount)
	if err != nil {
		return nil, err
	}
	collateralValue, err := e.oracle.ValueOf(collateralToken, collateralAmount)
	if err != nil {
		return nil, err
	}
	if collateralValue < e.params.MinCollateralRatio*borrowValue {
		return nil, ErrInsufficientCollateralization
	}

	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(collateralToken) < collateralAmount {
			return ErrInsufficientCollateral
		}
		if err := tx.Debit(collateralToken, collateralAmount); err != nil {
			return err
		}
		if err := tx.LockCollateral(collateralToken, collateralAmount); err != nil {
			return err
		}
		if err := tx.IncreaseDebt(borrowToken, borrowAmount); err != nil {
			return err
		}
		return tx.Credit(borrowToken, borrowAmount)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address":           address,
		"borrow_token":      borrowToken,
		"borrow_amount":     borrowAmount,
		"collateral_token":  collateralToken,
		"collateral_amount": collateralAmount,
	}).Info("Borrow executed")

	return &BorrowOutcome{
		Account:          snap,
		BorrowToken:      borrowToken,
		BorrowAmount:     borrowAmount,
		CollateralToken:  collateralToken,
		CollateralAmount: collateralAmount,
	}, nil
}

// Repay pays down outstanding debt, capped at the open amount.
// Collateral stays locked; releasing it is a separate concern.
func (e *Engine) Repay(address string, token model.Token, amount float64) (*RepayOutcome, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var repaid, remaining float64
	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		debt := tx.Debt(token)
		if debt <= 0 {
			return ErrNoDebt
		}
		repaid = math.Min(amount, debt)
		if tx.Balance(token) < repaid {
			return ErrInsufficientFundsToRepay
		}
		if err := tx.Debit(token, repaid); err != nil {
			return err
		}
		if err := tx.DecreaseDebt(token, repaid); err != nil {
			return err
		}
		remaining = tx.Debt(token)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address":        address,
		"token":          token,
		"repaid":         repaid,
		"remaining_debt": remaining,
	}).Info("Repay executed")

	return &RepayOutcome{Account: snap, Token: token, Repaid: repaid, RemainingDebt: remaining}, nil
}

// FlashLoan borrows and repays amount within one atomic step. The
// account must cover principal plus fee up front; the net effect is
// the fee leaving the balance.
func (e *Engine) FlashLoan(address string, token model.Token, amount float64) (*FlashLoanOutcome, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	fee := util.RoundAmount(amount * e.params.FlashLoanFeeRate)

	snap, err := e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(token) < amount+fee {
			return ErrInsufficientFundsForFlashLoan
		}
		// Principal drawn and settled in the same unit of work.
		if err := tx.Credit(token, amount); err != nil {
			return err
		}
		return tx.Debit(token, amount+fee)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"address": address,
		"token":   token,
		"amount":  amount,
		"fee":     fee,
	}).Info("Flash loan settled")

	return &FlashLoanOutcome{Account: snap, Token: token, Amount: amount, Fee: fee}, nil
}

// YieldFarm locks amount of token into a farm. Reward accrual is the
// external farm collaborator's concern; only the balance debit is ours.
func (e *Engine) YieldFarm(address string, token model.Token, amount float64) (*model.Account, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	return e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		if tx.Balance(token) < amount {
			return ErrInsufficientTokens
		}
		return tx.Debit(token, amount)
	})
}

// Vote records a governance vote. No balance effect; the proposal must
// exist and the voter must be registered.
func (e *Engine) Vote(ctx context.Context, address, proposalID string, support bool) error {
	if !e.ledger.IsRegistered(address) {
		return ledger.ErrNotRegistered
	}
	exists, err := e.proposals.Exists(ctx, proposalID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvalidProposal
	}
	return e.proposals.RecordVote(ctx, proposalID, address, support)
}

// RecordTrade books one completed trade against a scenario. Each call
// is a new trade event; deduplication is the caller's responsibility.
func (e *Engine) RecordTrade(address string, tag model.ScenarioTag, volume float64) (*model.Account, error) {
	return e.ledger.Update(ledger.CallerTrading, address, func(tx *ledger.Tx) error {
		return tx.RecordTrade(string(tag), volume)
	})
}
