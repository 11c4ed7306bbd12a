package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDocument  ErrorCode = "INVALID_DOCUMENT"
	ErrCodeInvalidPayoutKey ErrorCode = "INVALID_PAYOUT_KEY"

	ErrCodeProductNotFound    ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSellerNotFound     ErrorCode = "SELLER_NOT_FOUND"
	ErrCodeWithdrawalNotFound ErrorCode = "WITHDRAWAL_NOT_FOUND"

	ErrCodeGatewayError     ErrorCode = "GATEWAY_ERROR"
	ErrCodeGatewayTransient ErrorCode = "GATEWAY_TRANSIENT"
	ErrCodeWalletReset      ErrorCode = "WALLET_RESET"
	ErrCodeAccountCollision ErrorCode = "ACCOUNT_COLLISION"

	ErrCodeSignatureInvalid ErrorCode = "SIGNATURE_INVALID"

	ErrCodeInsufficientBalance    ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeMissingPayoutKey       ErrorCode = "MISSING_PAYOUT_KEY"
	ErrCodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewGatewayError wraps a payment provider failure. The raw provider
// response stays in Cause for operator logs; Message is safe for end users.
func NewGatewayError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeGatewayError,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrProductNotFound    = NewNotFoundError("Product not found", ErrCodeProductNotFound)
	ErrSessionNotFound    = NewNotFoundError("Checkout session not found", ErrCodeSessionNotFound)
	ErrSellerNotFound     = NewNotFoundError("Seller not found", ErrCodeSellerNotFound)
	ErrWithdrawalNotFound = NewNotFoundError("Withdrawal not found", ErrCodeWithdrawalNotFound)

	ErrInsufficientBalance    = NewValidationError("Insufficient balance for this withdrawal", ErrCodeInsufficientBalance)
	ErrMissingPayoutKey       = NewValidationError("A payout key must be configured before requesting a withdrawal", ErrCodeMissingPayoutKey)
	ErrInvalidStateTransition = NewValidationError("Withdrawal cannot be cancelled in its current status", ErrCodeInvalidStateTransition)

	ErrInvalidSignature = NewUnauthorizedError("Webhook signature verification failed", ErrCodeSignatureInvalid)

	// ErrWalletReset means a self-heal cleared the seller's gateway wallet;
	// the next checkout attempt re-provisions it.
	ErrWalletReset = NewConflictError("The seller wallet was reset, please try again", ErrCodeWalletReset)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
