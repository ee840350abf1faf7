package postgres

import (
	"context"
	"errors"
	"fmt"

	"atm-system/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepo implements ports.AccountRepository.
//
// Balances live in a NUMERIC column and cross the driver boundary as
// text, so values never pass through a binary float.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (account_number, balance, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())`

	_, err := r.pool.Exec(ctx, query, a.AccountNumber, a.Balance.StringFixed(2))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByNumber fetches an account by its number (without locking).
func (r *AccountRepo) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT account_number, balance::text, created_at, updated_at
		FROM accounts WHERE account_number = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, number), "get account by number")
}

// GetByNumberForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Account, error) {
	query := `SELECT account_number, balance::text, created_at, updated_at
		FROM accounts WHERE account_number = $1 FOR UPDATE`

	return scanAccount(tx.QueryRow(ctx, query, number), "get account for update")
}

// UpdateBalance updates an account's balance within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, number string, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE account_number = $2`

	tag, err := tx.Exec(ctx, query, balance.StringFixed(2), number)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", number)
	}
	return nil
}

func scanAccount(row pgx.Row, op string) (*domain.Account, error) {
	a := &domain.Account{}
	var balance string
	err := row.Scan(&a.AccountNumber, &balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing balance %q: %w", op, balance, err)
	}
	return a, nil
}
