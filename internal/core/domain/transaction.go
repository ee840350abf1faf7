package domain

import "github.com/shopspring/decimal"

// TransactionKind is the kind of money movement requested by the user.
type TransactionKind string

const (
	TransactionDeposit  TransactionKind = "DEPOSIT"
	TransactionWithdraw TransactionKind = "WITHDRAW"
)

// Verb returns the user-facing operation name.
func (k TransactionKind) Verb() string {
	if k == TransactionWithdraw {
		return "Withdrawal"
	}
	return "Deposit"
}

// DefaultSuccessMessage is the confirmation shown when the server omits one.
func (k TransactionKind) DefaultSuccessMessage() string {
	if k == TransactionWithdraw {
		return "Withdrawal successful"
	}
	return "Deposit successful"
}

// TransactionRequest is a single user action. It is created per request
// and discarded after resolution; it is never persisted.
type TransactionRequest struct {
	Kind   TransactionKind
	Amount decimal.Decimal
}

// TransactionOutcome is the server's authoritative resolution of a
// deposit or withdrawal. Balance replaces the snapshot balance; the
// client never computes it locally.
type TransactionOutcome struct {
	AccountNumber string
	Balance       decimal.Decimal
	Message       string
}
