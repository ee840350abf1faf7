package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atm-system/internal/adapter/http/gateway"
	httpHandler "atm-system/internal/adapter/http/handler"
	redisStorage "atm-system/internal/adapter/storage/redis"
	"atm-system/internal/client"
	"atm-system/internal/core/domain"
	"atm-system/internal/service"
	"atm-system/pkg/apperror"
	"atm-system/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp runs the full server stack on in-memory storage plus the real
// client core talking to it over HTTP. Everything between the terminal
// and the database is real: router, middleware, handlers, service,
// gateway, session manager, snapshot store, orchestrator.

type testApp struct {
	server       *httptest.Server
	sessions     *client.SessionManager
	store        *client.SnapshotStore
	orchestrator *client.Orchestrator
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logger.New("debug", false)

	accountRepo := newInMemoryAccountRepo()
	transactor := newInMemoryTransactor()
	accountSvc := service.NewAccountService(accountRepo, transactor, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc: accountSvc,
		Logger:     log,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	gw := gateway.New(server.URL, &http.Client{Timeout: 5 * time.Second}, log)
	sessions, store, orchestrator := client.NewCore(gw, log)

	return &testApp{
		server:       server,
		sessions:     sessions,
		store:        store,
		orchestrator: orchestrator,
	}
}

// terminal is an extra client core pointed at the same server, used to
// model a second ATM.
type terminal struct {
	sessions     *client.SessionManager
	store        *client.SnapshotStore
	orchestrator *client.Orchestrator
}

func newTerminal(t *testing.T, app *testApp) *terminal {
	t.Helper()
	log := logger.New("debug", false)
	gw := gateway.New(app.server.URL, &http.Client{Timeout: 5 * time.Second}, log)
	sessions, store, orchestrator := client.NewCore(gw, log)
	return &terminal{sessions: sessions, store: store, orchestrator: orchestrator}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_SessionFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.Begin("12345")
	require.NoError(t, err)

	// First probe auto-creates the account with a zero balance.
	snap, err := app.orchestrator.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Balance.IsZero())

	outcome, err := app.orchestrator.RequestTransaction(ctx, domain.TransactionDeposit, "100")
	require.NoError(t, err)
	assert.Equal(t, "Successfully deposited $100.00", outcome.Message)
	assert.True(t, outcome.Balance.Equal(dec(t, "100.00")))

	outcome, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionDeposit, "50")
	require.NoError(t, err)
	assert.True(t, outcome.Balance.Equal(dec(t, "150.00")))

	outcome, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionWithdraw, "30.50")
	require.NoError(t, err)
	assert.Equal(t, "Successfully withdrew $30.50", outcome.Message)
	assert.True(t, outcome.Balance.Equal(dec(t, "119.50")))

	// Overdraft is rejected by the server; its reason reaches the user
	// and the snapshot keeps the last accepted balance.
	_, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionWithdraw, "1000")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Insufficient funds", appErr.Message)

	snap, ok := app.store.Current()
	require.True(t, ok)
	assert.True(t, snap.Balance.Equal(dec(t, "119.50")))

	app.sessions.End()
	_, ok = app.sessions.Current()
	assert.False(t, ok)
	_, ok = app.store.Current()
	assert.False(t, ok)
}

func TestIntegration_BalancePersistsAcrossSessions(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.Begin("777")
	require.NoError(t, err)
	_, err = app.orchestrator.RefreshBalance(ctx)
	require.NoError(t, err)
	_, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionDeposit, "42.42")
	require.NoError(t, err)
	app.sessions.End()

	_, err = app.sessions.Begin("777")
	require.NoError(t, err)
	snap, err := app.orchestrator.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(dec(t, "42.42")))
}

func TestIntegration_InvalidAmountNeverReachesServer(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.Begin("555")
	require.NoError(t, err)

	for _, raw := range []string{"abc", "", "-5", "0"} {
		_, err := app.orchestrator.RequestTransaction(ctx, domain.TransactionDeposit, raw)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr, "amount %q", raw)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code, "amount %q", raw)
	}

	// Server never saw the account, so the first refresh starts at zero.
	snap, err := app.orchestrator.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Balance.IsZero())
}

func TestIntegration_ServerUnreachable(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.Begin("888")
	require.NoError(t, err)
	_, err = app.orchestrator.RefreshBalance(ctx)
	require.NoError(t, err)

	app.server.Close()

	_, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionWithdraw, "10")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Withdrawal failed. Insufficient funds or account error.", appErr.Message)

	// Snapshot still holds the last accepted balance.
	snap, ok := app.store.Current()
	require.True(t, ok)
	assert.True(t, snap.Balance.IsZero())

	// Another attempt is allowed; the pending guard was released.
	_, err = app.orchestrator.RequestTransaction(ctx, domain.TransactionDeposit, "10")
	require.ErrorAs(t, err, &appErr)
	assert.NotEqual(t, apperror.CodeTxPending, appErr.Code)
}

func TestIntegration_RateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.New("debug", false)
	accountRepo := newInMemoryAccountRepo()
	accountSvc := service.NewAccountService(accountRepo, newInMemoryTransactor(), log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:     accountSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Logger:         log,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Withdrawals are limited to 30 per minute per client.
	var lastStatus int
	for i := 0; i < 31; i++ {
		resp, err := http.Post(server.URL+"/accounts/1/withdraw", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		lastStatus = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}

func TestIntegration_UnknownRouteIs404(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/accounts/12345/statement")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
