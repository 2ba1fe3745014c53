package engine

import "errors"

// Operation-level sentinel errors. Together with the ledger and oracle
// sentinels these cover the full failure taxonomy the API surfaces.
var (
	ErrInsufficientTokens             = errors.New("engine: insufficient token balance")
	ErrInsufficientCollateral         = errors.New("engine: insufficient balance to post collateral")
	ErrInsufficientCollateralization  = errors.New("engine: collateral value below minimum ratio")
	ErrNoDebt                         = errors.New("engine: no outstanding debt to repay")
	ErrInsufficientFundsToRepay       = errors.New("engine: insufficient funds to repay debt")
	ErrInsufficientFundsForFlashLoan  = errors.New("engine: insufficient funds to settle flash loan")
	ErrSameToken                      = errors.New("engine: swap requires two different tokens")
	ErrAlreadyUnlocked                = errors.New("engine: achievement already unlocked")
	ErrInvalidProposal                = errors.New("engine: unknown governance proposal")
)
