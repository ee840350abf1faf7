package client

import (
	"time"

	"atm-system/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SnapshotStore owns the authoritative balance snapshot for the active
// session. Writes are checked against the session active at the moment
// the write arrives, not the session that issued the request, so a slow
// response from a previous session can never resurrect stale data.
type SnapshotStore struct {
	st *state
}

// Replace installs a new snapshot for accountNumber and reports whether
// the write was accepted. A write with no active session, or for an
// account other than the active session's, is discarded.
func (s *SnapshotStore) Replace(accountNumber string, balance decimal.Decimal) (domain.AccountSnapshot, bool) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if s.st.session == nil || s.st.session.AccountNumber != accountNumber {
		return domain.AccountSnapshot{}, false
	}

	s.st.version++
	snap := domain.AccountSnapshot{
		AccountNumber: accountNumber,
		Balance:       balance,
		Version:       s.st.version,
		FetchedAt:     time.Now(),
	}
	s.st.snapshot = &snap
	return snap, true
}

// Current returns the snapshot for the active session, if one exists.
func (s *SnapshotStore) Current() (domain.AccountSnapshot, bool) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if s.st.snapshot == nil {
		return domain.AccountSnapshot{}, false
	}
	return *s.st.snapshot, true
}

// Clear drops the snapshot without touching the session.
func (s *SnapshotStore) Clear() {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.snapshot = nil
}
