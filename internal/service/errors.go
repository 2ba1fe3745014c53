package service

import (
	"errors"
	"net/http"

	"defidojo/backend/internal/engine"
	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/oracle"
	"defidojo/backend/internal/util"
)

// toAppError translates core sentinel errors into the API error codes.
// Anything unrecognized becomes an internal error.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	if util.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, ledger.ErrNotRegistered):
		return util.WrapError(http.StatusForbidden, util.ErrCodeNotRegistered,
			"Account is not registered", err)
	case errors.Is(err, ledger.ErrAlreadyRegistered):
		return util.WrapError(http.StatusConflict, util.ErrCodeAlreadyRegistered,
			"Account is already registered", err)
	case errors.Is(err, ledger.ErrInvalidAmount):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInvalidAmount,
			"Amount must be positive", err)
	case errors.Is(err, oracle.ErrUnsupportedToken):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeUnsupportedToken,
			"Token is not supported for this operation", err)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientFunds,
			"Insufficient funds", err)
	case errors.Is(err, engine.ErrInsufficientTokens):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientTokens,
			"Insufficient token balance", err)
	case errors.Is(err, ledger.ErrInsufficientStaked):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientStaked,
			"Insufficient staked amount", err)
	case errors.Is(err, engine.ErrInsufficientCollateral):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientCollateral,
			"Insufficient balance to post collateral", err)
	case errors.Is(err, engine.ErrInsufficientCollateralization):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientCollateralization,
			"Collateral value is below the minimum collateralization ratio", err)
	case errors.Is(err, engine.ErrNoDebt):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeNoDebt,
			"No outstanding debt to repay", err)
	case errors.Is(err, engine.ErrInsufficientFundsToRepay):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientFundsToRepay,
			"Insufficient funds to repay debt", err)
	case errors.Is(err, engine.ErrInsufficientFundsForFlashLoan):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeInsufficientFundsFlashLoan,
			"Insufficient funds to settle flash loan principal plus fee", err)
	case errors.Is(err, engine.ErrSameToken):
		return util.WrapError(http.StatusBadRequest, util.ErrCodeSameToken,
			"Swap requires two different tokens", err)
	case errors.Is(err, engine.ErrAlreadyUnlocked):
		return util.WrapError(http.StatusConflict, util.ErrCodeAlreadyUnlocked,
			"Achievement already unlocked", err)
	case errors.Is(err, engine.ErrInvalidProposal):
		return util.WrapError(http.StatusNotFound, util.ErrCodeInvalidProposal,
			"Unknown governance proposal", err)
	}

	return util.WrapError(http.StatusInternalServerError, util.ErrCodeInternal,
		"Internal server error", err)
}
