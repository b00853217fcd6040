package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrAmountExceedsPending  = errors.New("amount exceeds invoice pending balance")
	ErrNoPaymentAccount      = errors.New("payment account required when cash portion is positive")
	ErrNothingToAllocate     = errors.New("total payment must be greater than zero")
	ErrNegativeAdvance       = errors.New("advance amount cannot be negative")
	ErrUnbalancedTransaction = errors.New("transaction debits and credits do not balance")
	ErrInvalidFeeRule        = errors.New("invalid fee rule")
	ErrStalePending          = errors.New("invoice pending balance changed since it was read")
	ErrInvalidEntityRole     = errors.New("entity role must be customer or supplier")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)
