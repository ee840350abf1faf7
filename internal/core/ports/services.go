package ports

import (
	"context"

	"atm-system/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// AccountService is the account business logic behind the HTTP handlers.
// Deposit and Withdraw return the updated account plus a confirmation
// message; the server is the sole authority on insufficient funds.
type AccountService interface {
	// GetOrCreate returns the account, creating it with a zero balance
	// if it does not exist yet.
	GetOrCreate(ctx context.Context, number string) (*domain.Account, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, string, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, string, error)
}
