package ports

import (
	"context"

	"atm-system/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

// AccountGateway is the transport boundary to the remote account service.
// Each call is a single attempt; retry policy, if any, belongs to the
// caller. Failures are normalized to *apperror.AppError with code NET_001,
// carrying the upstream status and the structured detail when present.
type AccountGateway interface {
	// FetchBalance probes an account. The service creates unknown
	// accounts on first probe, so this doubles as the login check.
	FetchBalance(ctx context.Context, accountNumber string) (*domain.AccountBalance, error)
	SubmitDeposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.TransactionOutcome, error)
	SubmitWithdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.TransactionOutcome, error)
}
