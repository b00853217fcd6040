package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount          = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrAmountExceedsPending   = &AppError{http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_PENDING", "Amount exceeds invoice pending balance"}
	ErrNoPaymentAccount       = &AppError{http.StatusBadRequest, "PAYMENT_ACCOUNT_REQUIRED", "Payment account required when cash portion is positive"}
	ErrNothingToAllocate      = &AppError{http.StatusBadRequest, "NOTHING_TO_ALLOCATE", "Total payment must be greater than zero"}
	ErrNegativeAdvance        = &AppError{http.StatusBadRequest, "NEGATIVE_ADVANCE", "Advance amount cannot be negative"}
	ErrStalePending           = &AppError{http.StatusConflict, "STALE_PENDING", "Invoice pending balance changed, refresh and retry"}
	ErrUnbalancedTransaction  = &AppError{http.StatusUnprocessableEntity, "UNBALANCED_TRANSACTION", "Transaction debits and credits do not balance"}
	ErrInvalidFeeRule         = &AppError{http.StatusBadRequest, "INVALID_FEE_RULE", "Fee rule is invalid"}
	ErrInvalidEntityRole      = &AppError{http.StatusBadRequest, "INVALID_ENTITY_ROLE", "Entity role must be customer or supplier"}
	ErrMissingIdempotencyKey  = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict    = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
