package apperror

import (
	"fmt"
	"net/http"
)

// Error codes grouped by concern. VAL/SES/NET originate in the client,
// ACC in the account service.
const (
	CodeInvalidAccount    = "VAL_001"
	CodeInvalidAmount     = "VAL_002"
	CodeNoSession         = "SES_001"
	CodeTxPending         = "SES_002"
	CodeTransport         = "NET_001"
	CodeAccountNotFound   = "ACC_001"
	CodeNonPositiveAmount = "ACC_002"
	CodeInsufficientFunds = "ACC_003"
	CodeRateLimited       = "SRV_001"
)

// AppError is a structured error shared by the client and the server.
// HTTPStatus is the response status when serving, or the upstream status
// when the error was produced from an HTTP response (0 if the request
// never reached the server).
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to callers' users)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Client-side validation (VAL) ----

func ErrEmptyAccountNumber() *AppError {
	return New(CodeInvalidAccount, "Account number must not be empty", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be a positive number", http.StatusBadRequest)
}

// ---- Client-side session guards (SES) ----

func ErrNoSession() *AppError {
	return New(CodeNoSession, "No active session", http.StatusUnauthorized)
}

func ErrTransactionPending() *AppError {
	return New(CodeTxPending, "Another transaction is already in progress", http.StatusConflict)
}

// ---- Transport (NET) ----

// ErrTransport carries an HTTP-level rejection. detail is the structured
// reason from the response body, empty when the server supplied none.
func ErrTransport(status int, detail string) *AppError {
	return New(CodeTransport, detail, status)
}

// ErrNetwork wraps a failure that produced no HTTP response at all.
func ErrNetwork(err error) *AppError {
	return Wrap(CodeTransport, "", 0, err)
}

// ---- User-facing fallbacks for transport failures without detail ----

func ErrWithdrawalRejected() *AppError {
	return New(CodeTransport, "Withdrawal failed. Insufficient funds or account error.", http.StatusBadRequest)
}

func ErrTransactionFailed() *AppError {
	return New(CodeTransport, "Transaction failed. Please try again.", http.StatusBadGateway)
}

func ErrBalanceUnavailable() *AppError {
	return New(CodeTransport, "Failed to load account data. Please try again.", http.StatusBadGateway)
}

// ---- Account service business rules (ACC) ----

func ErrAccountNotFound() *AppError {
	return New(CodeAccountNotFound, "Account not found", http.StatusNotFound)
}

// ErrNonPositiveAmount rejects a zero or negative amount. verb is the
// operation name used in the message ("Deposit" or "Withdrawal").
func ErrNonPositiveAmount(verb string) *AppError {
	return New(CodeNonPositiveAmount, fmt.Sprintf("%s amount must be positive", verb), http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient funds", http.StatusBadRequest)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
}

// InternalError wraps an unexpected server-side failure.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-shape validation error for the server.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}
