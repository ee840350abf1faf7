package service

import (
	"context"
	"fmt"
	"time"

	"atm-system/internal/core/domain"
	"atm-system/internal/core/ports"
	"atm-system/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	repo       ports.AccountRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(repo ports.AccountRepository, transactor ports.DBTransactor, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		repo:       repo,
		transactor: transactor,
		log:        log,
	}
}

// GetOrCreate returns the account for number, creating it with a zero
// balance on first sight. The balance probe doubles as account signup.
func (s *AccountServiceImpl) GetOrCreate(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account != nil {
		return account, nil
	}

	now := time.Now().UTC()
	account = &domain.Account{
		AccountNumber: number,
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account", number).Msg("account auto-created on first balance probe")
	return account, nil
}

// Deposit adds amount to the account balance with pessimistic locking.
func (s *AccountServiceImpl) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, string, error) {
	if !amount.IsPositive() {
		return nil, "", apperror.ErrNonPositiveAmount("Deposit")
	}

	account, err := s.apply(ctx, number, func(balance decimal.Decimal) (decimal.Decimal, error) {
		return balance.Add(amount), nil
	})
	if err != nil {
		return nil, "", err
	}

	s.log.Info().
		Str("account", number).
		Str("amount", amount.String()).
		Str("balance", account.Balance.String()).
		Msg("deposit processed")
	return account, fmt.Sprintf("Successfully deposited $%s", amount.StringFixed(2)), nil
}

// Withdraw subtracts amount from the account balance. The balance check
// happens under the row lock, so concurrent withdrawals cannot overdraw.
func (s *AccountServiceImpl) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, string, error) {
	if !amount.IsPositive() {
		return nil, "", apperror.ErrNonPositiveAmount("Withdrawal")
	}

	account, err := s.apply(ctx, number, func(balance decimal.Decimal) (decimal.Decimal, error) {
		if balance.LessThan(amount) {
			return decimal.Decimal{}, apperror.ErrInsufficientFunds()
		}
		return balance.Sub(amount), nil
	})
	if err != nil {
		return nil, "", err
	}

	s.log.Info().
		Str("account", number).
		Str("amount", amount.String()).
		Str("balance", account.Balance.String()).
		Msg("withdrawal processed")
	return account, fmt.Sprintf("Successfully withdrew $%s", amount.StringFixed(2)), nil
}

// apply runs a balance mutation inside a database transaction holding
// the account's row lock.
func (s *AccountServiceImpl) apply(ctx context.Context, number string, mutate func(decimal.Decimal) (decimal.Decimal, error)) (*domain.Account, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.repo.GetByNumberForUpdate(ctx, dbTx, number)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	newBalance, err := mutate(account.Balance)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBalance(ctx, dbTx, number, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	account.Balance = newBalance
	account.UpdatedAt = time.Now().UTC()
	return account, nil
}
