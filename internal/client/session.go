package client

import (
	"strings"
	"time"

	"atm-system/internal/core/domain"
	"atm-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionManager owns the active session. It holds pure local state and
// performs no network calls.
type SessionManager struct {
	st  *state
	log zerolog.Logger
}

// Begin starts a session for accountNumber, unconditionally replacing any
// prior session and dropping its snapshot. Empty or whitespace-only
// account numbers are rejected before any state changes.
func (m *SessionManager) Begin(accountNumber string) (domain.Session, error) {
	trimmed := strings.TrimSpace(accountNumber)
	if trimmed == "" {
		return domain.Session{}, apperror.ErrEmptyAccountNumber()
	}

	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if prior := m.st.session; prior != nil {
		m.log.Debug().Str("account", prior.AccountNumber).Msg("ending prior session")
	}
	m.st.session = &domain.Session{ID: uuid.New(), AccountNumber: trimmed, StartedAt: time.Now()}
	m.st.snapshot = nil

	m.log.Info().Str("session_id", m.st.session.ID.String()).Str("account", trimmed).Msg("session started")
	return *m.st.session, nil
}

// End closes the active session and clears its snapshot. Idempotent: a
// call with no active session is a no-op.
func (m *SessionManager) End() {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if m.st.session == nil {
		return
	}
	m.log.Info().Str("account", m.st.session.AccountNumber).Msg("session ended")
	m.st.session = nil
	m.st.snapshot = nil
}

// Current returns the active session, if any.
func (m *SessionManager) Current() (domain.Session, bool) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if m.st.session == nil {
		return domain.Session{}, false
	}
	return *m.st.session, true
}
