package util

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is checks
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeRateLimit    = "RATE_LIMIT_EXCEEDED"
)

// Ledger and trading error codes, mirroring the core taxonomy
const (
	ErrCodeNotRegistered                 = "NOT_REGISTERED"
	ErrCodeAlreadyRegistered             = "ALREADY_REGISTERED"
	ErrCodeInvalidAmount                 = "INVALID_AMOUNT"
	ErrCodeUnsupportedToken              = "UNSUPPORTED_TOKEN"
	ErrCodeInsufficientFunds             = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientTokens            = "INSUFFICIENT_TOKENS"
	ErrCodeInsufficientStaked            = "INSUFFICIENT_STAKED"
	ErrCodeInsufficientCollateral        = "INSUFFICIENT_COLLATERAL"
	ErrCodeInsufficientCollateralization = "INSUFFICIENT_COLLATERALIZATION"
	ErrCodeNoDebt                        = "NO_DEBT"
	ErrCodeInsufficientFundsToRepay      = "INSUFFICIENT_FUNDS_TO_REPAY"
	ErrCodeInsufficientFundsFlashLoan    = "INSUFFICIENT_FUNDS_FOR_FLASH_LOAN"
	ErrCodeSameToken                     = "SAME_TOKEN"
	ErrCodeAlreadyUnlocked               = "ALREADY_UNLOCKED"
	ErrCodeInvalidProposal               = "INVALID_PROPOSAL"
)

// NewAppError creates a new application error
func NewAppError(statusCode int, code, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// WrapError wraps an existing error
func WrapError(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// Common error constructors

func ErrBadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeBadRequest, message)
}

func ErrUnauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func ErrForbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, ErrCodeForbidden, message)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeNotFound, message)
}

func ErrConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, ErrCodeConflict, message)
}

func ErrValidation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeValidation, message)
}

func ErrInternalServer(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, ErrCodeInternal, message)
}

func ErrRateLimit(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, ErrCodeRateLimit, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
