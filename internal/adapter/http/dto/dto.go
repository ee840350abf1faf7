package dto

import (
	"encoding/json"

	"atm-system/internal/core/domain"

	"github.com/shopspring/decimal"
)

// AmountRequest is the request body for deposits and withdrawals.
// Amount is decoded as json.Number so decimal values never pass
// through a binary float.
type AmountRequest struct {
	Amount json.Number `json:"amount" binding:"required"`
}

// Decimal parses the amount into an exact decimal value.
func (r AmountRequest) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Amount.String())
}

// BalanceResponse is the response body for balance queries.
type BalanceResponse struct {
	AccountNumber string      `json:"account_number"`
	Balance       json.Number `json:"balance"`
}

// TransactionResponse is the response body for deposit and withdrawal
// results. Balance reflects the post-transaction server state.
type TransactionResponse struct {
	AccountNumber string      `json:"account_number"`
	Balance       json.Number `json:"balance"`
	Message       string      `json:"message"`
}

// NewBalanceResponse builds a BalanceResponse from an account row.
func NewBalanceResponse(a *domain.Account) BalanceResponse {
	return BalanceResponse{
		AccountNumber: a.AccountNumber,
		Balance:       json.Number(a.Balance.StringFixed(2)),
	}
}

// NewTransactionResponse builds a TransactionResponse from an account
// row and a confirmation message.
func NewTransactionResponse(a *domain.Account, message string) TransactionResponse {
	return TransactionResponse{
		AccountNumber: a.AccountNumber,
		Balance:       json.Number(a.Balance.StringFixed(2)),
		Message:       message,
	}
}
