// Package gateway is the HTTP transport to the remote account service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"atm-system/internal/core/domain"
	"atm-system/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxResponseBody caps how much of a response is read (1 MB).
const maxResponseBody = 1 << 20

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gateway implements ports.AccountGateway over the account service HTTP
// API. Every call is a single attempt: the POST endpoints are not
// idempotent, so nothing here retries. All failures are normalized to
// *apperror.AppError with the transport code.
type Gateway struct {
	baseURL string
	http    HTTPClient
	log     zerolog.Logger
}

// New creates a Gateway for the given base endpoint.
func New(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// accountPayload covers both balance and transaction responses; message
// is only present on transactions.
type accountPayload struct {
	AccountNumber string      `json:"account_number"`
	Balance       json.Number `json:"balance"`
	Message       string      `json:"message"`
}

type amountPayload struct {
	Amount json.Number `json:"amount"`
}

type errorPayload struct {
	Detail string `json:"detail"`
}

// FetchBalance retrieves the current balance. The service auto-creates
// unknown accounts, so this is also the login probe.
func (g *Gateway) FetchBalance(ctx context.Context, accountNumber string) (*domain.AccountBalance, error) {
	payload, err := g.do(ctx, http.MethodGet, g.endpoint(accountNumber, "balance"), nil)
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(payload.Balance.String())
	if err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("malformed balance %q: %w", payload.Balance, err))
	}
	return &domain.AccountBalance{
		AccountNumber: payload.AccountNumber,
		Balance:       balance,
	}, nil
}

// SubmitDeposit posts a deposit and returns the authoritative outcome.
func (g *Gateway) SubmitDeposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.TransactionOutcome, error) {
	return g.submit(ctx, accountNumber, "deposit", amount)
}

// SubmitWithdraw posts a withdrawal. Insufficient-funds rejection comes
// back as a transport error carrying the server's detail.
func (g *Gateway) SubmitWithdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.TransactionOutcome, error) {
	return g.submit(ctx, accountNumber, "withdraw", amount)
}

func (g *Gateway) submit(ctx context.Context, accountNumber, op string, amount decimal.Decimal) (*domain.TransactionOutcome, error) {
	body := amountPayload{Amount: json.Number(amount.String())}
	payload, err := g.do(ctx, http.MethodPost, g.endpoint(accountNumber, op), &body)
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(payload.Balance.String())
	if err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("malformed balance %q: %w", payload.Balance, err))
	}
	return &domain.TransactionOutcome{
		AccountNumber: payload.AccountNumber,
		Balance:       balance,
		Message:       payload.Message,
	}, nil
}

func (g *Gateway) endpoint(accountNumber, op string) string {
	return fmt.Sprintf("%s/accounts/%s/%s", g.baseURL, url.PathEscape(accountNumber), op)
}

func (g *Gateway) do(ctx context.Context, method, endpoint string, body *amountPayload) (*accountPayload, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, apperror.ErrNetwork(fmt.Errorf("encoding request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, apperror.ErrNetwork(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// A missing or non-JSON body simply means no structured detail.
		var ep errorPayload
		_ = json.Unmarshal(raw, &ep)
		g.log.Debug().
			Str("method", method).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("detail", ep.Detail).
			Msg("account service rejected request")
		return nil, apperror.ErrTransport(resp.StatusCode, ep.Detail)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload accountPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("decoding response: %w", err))
	}
	return &payload, nil
}
