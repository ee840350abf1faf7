package client

import (
	"context"
	"errors"
	"strings"

	"atm-system/internal/core/domain"
	"atm-system/internal/core/ports"
	"atm-system/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Orchestrator drives deposit and withdrawal requests through the account
// gateway and reconciles the authoritative response with the snapshot
// store. It is either idle or has exactly one transaction in flight;
// every resolution, success or failure, returns it to idle.
type Orchestrator struct {
	st      *state
	store   *SnapshotStore
	gateway ports.AccountGateway
	log     zerolog.Logger
}

// RequestTransaction validates rawAmount, submits the transaction and
// applies the server's resulting balance to the snapshot store. The
// amount is validated first; invalid input never reaches the gateway.
// The client does not pre-check withdrawals against the local balance,
// which may be stale; the server is the sole authority on insufficient
// funds.
func (o *Orchestrator) RequestTransaction(ctx context.Context, kind domain.TransactionKind, rawAmount string) (*domain.TransactionOutcome, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	account, err := o.begin(kind)
	if err != nil {
		return nil, err
	}
	defer o.resolve()

	req := domain.TransactionRequest{Kind: kind, Amount: amount}

	var outcome *domain.TransactionOutcome
	switch req.Kind {
	case domain.TransactionWithdraw:
		outcome, err = o.gateway.SubmitWithdraw(ctx, account, req.Amount)
	default:
		outcome, err = o.gateway.SubmitDeposit(ctx, account, req.Amount)
	}
	if err != nil {
		classified := classify(kind, err)
		o.log.Warn().
			Str("account", account).
			Str("kind", string(kind)).
			Str("amount", amount.String()).
			Err(err).
			Msg("transaction rejected")
		return nil, classified
	}

	if outcome.Message == "" {
		outcome.Message = kind.DefaultSuccessMessage()
	}

	// The store re-checks the active session on arrival; a resolution
	// that outlived its session is discarded here, not surfaced as an
	// error.
	if _, ok := o.store.Replace(account, outcome.Balance); !ok {
		o.log.Debug().Str("account", account).Msg("discarding resolution for ended session")
	}

	o.log.Info().
		Str("account", account).
		Str("kind", string(kind)).
		Str("balance", outcome.Balance.String()).
		Msg("transaction applied")
	return outcome, nil
}

// RefreshBalance fetches the authoritative balance for the active
// session and installs it in the snapshot store. It is read-only and
// permitted even while a transaction is in flight.
func (o *Orchestrator) RefreshBalance(ctx context.Context) (domain.AccountSnapshot, error) {
	o.st.mu.Lock()
	sess := o.st.session
	o.st.mu.Unlock()

	if sess == nil {
		return domain.AccountSnapshot{}, apperror.ErrNoSession()
	}
	account := sess.AccountNumber

	bal, err := o.gateway.FetchBalance(ctx, account)
	if err != nil {
		return domain.AccountSnapshot{}, classifyFetch(err)
	}

	snap, ok := o.store.Replace(account, bal.Balance)
	if !ok {
		// The session changed while the fetch was in flight; report the
		// payload without installing it.
		return domain.AccountSnapshot{AccountNumber: account, Balance: bal.Balance}, nil
	}
	return snap, nil
}

// begin moves the machine from idle to pending and returns the account
// the transaction is bound to.
func (o *Orchestrator) begin(kind domain.TransactionKind) (string, error) {
	o.st.mu.Lock()
	defer o.st.mu.Unlock()

	if o.st.session == nil {
		return "", apperror.ErrNoSession()
	}
	if o.st.pending {
		return "", apperror.ErrTransactionPending()
	}
	o.st.pending = true
	o.st.pendingKind = kind
	return o.st.session.AccountNumber, nil
}

// resolve returns the machine to idle. It runs on every resolution, even
// when the session that started the transaction is already gone.
func (o *Orchestrator) resolve() {
	o.st.mu.Lock()
	o.st.pending = false
	o.st.mu.Unlock()
}

// parseAmount parses user input into a strictly positive decimal.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, apperror.ErrInvalidAmount()
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, apperror.ErrInvalidAmount()
	}
	return amount, nil
}

// classify maps a gateway failure to the message surfaced to the caller.
// A server-supplied detail always wins. Without one, withdrawals fall
// back to the insufficient-funds message since business-rule rejection is
// the dominant cause, and deposits to a generic retry prompt.
func classify(kind domain.TransactionKind, err error) *apperror.AppError {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.ErrNetwork(err)
	}
	if appErr.Code != apperror.CodeTransport || appErr.Message != "" {
		return appErr
	}
	if kind == domain.TransactionWithdraw {
		return apperror.ErrWithdrawalRejected()
	}
	return apperror.ErrTransactionFailed()
}

// classifyFetch is the balance-fetch variant of classify.
func classifyFetch(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.ErrNetwork(err)
	}
	if appErr.Code == apperror.CodeTransport && appErr.Message == "" {
		return apperror.ErrBalanceUnavailable()
	}
	return appErr
}
