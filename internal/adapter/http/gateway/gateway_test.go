package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atm-system/internal/adapter/http/gateway"
	"atm-system/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.Handler) (*gateway.Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := gateway.New(srv.URL, &http.Client{Timeout: 5 * time.Second}, zerolog.Nop())
	return g, srv
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestGateway_FetchBalance(t *testing.T) {
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts/12345/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"account_number":"12345","balance":100.0}`))
	}))

	bal, err := g.FetchBalance(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", bal.AccountNumber)
	assert.True(t, bal.Balance.Equal(mustDecimal(t, "100")))
}

func TestGateway_FetchBalance_PreservesDecimalText(t *testing.T) {
	// 0.1 survives the wire exactly; a float64 round-trip would not
	// guarantee that.
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account_number":"12345","balance":1234.56}`))
	}))

	bal, err := g.FetchBalance(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", bal.Balance.String())
}

func TestGateway_SubmitDeposit(t *testing.T) {
	var gotBody []byte
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/12345/deposit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"account_number":"12345","balance":150.0,"message":"Successfully deposited $50.00"}`))
	}))

	outcome, err := g.SubmitDeposit(context.Background(), "12345", mustDecimal(t, "50"))
	require.NoError(t, err)
	assert.True(t, outcome.Balance.Equal(mustDecimal(t, "150")))
	assert.Equal(t, "Successfully deposited $50.00", outcome.Message)

	var body map[string]json.Number
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, json.Number("50"), body["amount"])
}

func TestGateway_SubmitWithdraw_RejectionWithDetail(t *testing.T) {
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/12345/withdraw", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Insufficient funds"}`))
	}))

	_, err := g.SubmitWithdraw(context.Background(), "12345", mustDecimal(t, "1000"))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeTransport, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "Insufficient funds", appErr.Message)
}

func TestGateway_RejectionWithoutDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"non-JSON body", "<html>Bad Gateway</html>"},
		{"JSON without detail", `{"error":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := g.SubmitWithdraw(context.Background(), "12345", mustDecimal(t, "10"))
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.CodeTransport, appErr.Code)
			assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
			assert.Empty(t, appErr.Message, "no structured detail means an empty message")
		})
	}
}

func TestGateway_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse all connections

	g := gateway.New(srv.URL, &http.Client{Timeout: time.Second}, zerolog.Nop())
	_, err := g.FetchBalance(context.Background(), "12345")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeTransport, appErr.Code)
	assert.Equal(t, 0, appErr.HTTPStatus, "no HTTP response was received")
}

func TestGateway_MalformedSuccessBody(t *testing.T) {
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account_number":"12345"`))
	}))

	_, err := g.FetchBalance(context.Background(), "12345")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeTransport, appErr.Code)
}

func TestGateway_EscapesAccountNumber(t *testing.T) {
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/ab%2Fcd/balance", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"account_number":"ab/cd","balance":0}`))
	}))

	_, err := g.FetchBalance(context.Background(), "ab/cd")
	require.NoError(t, err)
}

func TestGateway_ContextCancellation(t *testing.T) {
	g, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.FetchBalance(ctx, "12345")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeTransport, appErr.Code)
}
