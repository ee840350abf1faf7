package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"atm-system/internal/core/domain"
	"atm-system/internal/core/ports"
	"atm-system/internal/core/ports/mocks"
	"atm-system/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// decEq matches a decimal.Decimal argument by numeric value.
type decEq struct{ want decimal.Decimal }

func (m decEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decEq) String() string {
	return fmt.Sprintf("decimal equal to %s", m.want)
}

func amountEq(t *testing.T, s string) gomock.Matcher {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return decEq{want: d}
}

func setupRouterTest(t *testing.T) (*mocks.MockAccountService, http.Handler) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAccountService(ctrl)
	router := SetupRouter(RouterDeps{
		AccountSvc: svc,
		Logger:     zerolog.Nop(),
	})
	return svc, router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testAccount(number, balance string) *domain.Account {
	return &domain.Account{
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
	}
}

func TestGetBalance(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().GetOrCreate(gomock.Any(), "12345").
		Return(testAccount("12345", "100.00"), nil)

	w := doRequest(router, http.MethodGet, "/accounts/12345/balance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"account_number":"12345","balance":100.00}`, w.Body.String())
}

func TestGetBalance_ServiceError(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().GetOrCreate(gomock.Any(), "12345").
		Return(nil, apperror.InternalError(errors.New("db down")))

	w := doRequest(router, http.MethodGet, "/accounts/12345/balance", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
}

func TestDeposit(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().Deposit(gomock.Any(), "12345", amountEq(t, "50")).
		Return(testAccount("12345", "150.00"), "Successfully deposited $50.00", nil)

	w := doRequest(router, http.MethodPost, "/accounts/12345/deposit", `{"amount": 50}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"account_number":"12345","balance":150.00,"message":"Successfully deposited $50.00"}`,
		w.Body.String())
}

func TestDeposit_MissingAmount(t *testing.T) {
	_, router := setupRouterTest(t)

	w := doRequest(router, http.MethodPost, "/accounts/12345/deposit", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestDeposit_MalformedBody(t *testing.T) {
	_, router := setupRouterTest(t)

	w := doRequest(router, http.MethodPost, "/accounts/12345/deposit", `{"amount": "fifty"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeposit_NonPositiveAmount(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().Deposit(gomock.Any(), "12345", amountEq(t, "-5")).
		Return(nil, "", apperror.ErrNonPositiveAmount("Deposit"))

	w := doRequest(router, http.MethodPost, "/accounts/12345/deposit", `{"amount": -5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Deposit amount must be positive"}`, w.Body.String())
}

func TestWithdraw(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().Withdraw(gomock.Any(), "12345", amountEq(t, "30.50")).
		Return(testAccount("12345", "69.50"), "Successfully withdrew $30.50", nil)

	w := doRequest(router, http.MethodPost, "/accounts/12345/withdraw", `{"amount": 30.50}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"account_number":"12345","balance":69.50,"message":"Successfully withdrew $30.50"}`,
		w.Body.String())
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	svc, router := setupRouterTest(t)

	svc.EXPECT().Withdraw(gomock.Any(), "12345", amountEq(t, "1000")).
		Return(nil, "", apperror.ErrInsufficientFunds())

	w := doRequest(router, http.MethodPost, "/accounts/12345/withdraw", `{"amount": 1000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Insufficient funds"}`, w.Body.String())
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	router := SetupRouter(RouterDeps{
		HealthCheckers: []ports.HealthChecker{
			stubChecker{name: "postgresql"},
			stubChecker{name: "redis"},
		},
		Logger: zerolog.Nop(),
	})

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	router := SetupRouter(RouterDeps{
		HealthCheckers: []ports.HealthChecker{
			stubChecker{name: "postgresql"},
			stubChecker{name: "redis", err: errors.New("connection refused")},
		},
		Logger: zerolog.Nop(),
	})

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
