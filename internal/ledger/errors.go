package ledger

import "errors"

// Sentinel errors for ledger primitives. The service layer translates
// these into API error codes; the ledger itself never retries.
var (
	ErrNotRegistered      = errors.New("ledger: account not registered")
	ErrAlreadyRegistered  = errors.New("ledger: account already registered")
	ErrInvalidAmount      = errors.New("ledger: amount must be positive")
	ErrInsufficientFunds  = errors.New("ledger: insufficient funds")
	ErrInsufficientStaked = errors.New("ledger: insufficient staked amount")
	ErrInsufficientDebt   = errors.New("ledger: debt reduction exceeds outstanding debt")
	ErrCollateralShort    = errors.New("ledger: unlock exceeds locked collateral")
	ErrUnknownCaller      = errors.New("ledger: caller not authorized to mutate accounts")
)
