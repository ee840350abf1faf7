// Package client implements the session and transaction state machine of
// the ATM client: session lifecycle, the authoritative balance snapshot,
// and the orchestration of deposit/withdraw requests against the remote
// account service.
package client

import (
	"sync"

	"atm-system/internal/core/domain"
	"atm-system/internal/core/ports"

	"github.com/rs/zerolog"
)

// state is the session, snapshot and in-flight flag shared by the session
// manager, the snapshot store and the orchestrator. One mutex guards the
// whole trio: the snapshot must always belong to the active session, and
// at most one transaction may be in flight at a time. The mutex is never
// held across network calls.
type state struct {
	mu          sync.Mutex
	session     *domain.Session
	snapshot    *domain.AccountSnapshot
	version     uint64
	pending     bool
	pendingKind domain.TransactionKind
}

// NewCore wires a session manager, snapshot store and transaction
// orchestrator around one shared state.
func NewCore(gateway ports.AccountGateway, log zerolog.Logger) (*SessionManager, *SnapshotStore, *Orchestrator) {
	st := &state{}
	store := &SnapshotStore{st: st}
	sessions := &SessionManager{st: st, log: log}
	orch := &Orchestrator{st: st, store: store, gateway: gateway, log: log}
	return sessions, store, orch
}
