package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies the authenticated account for the lifetime of a login.
// At most one session exists at a time; it is owned exclusively by the
// session manager and passed around by value. ID ties log lines of one
// login together across repeat logins on the same account.
type Session struct {
	ID            uuid.UUID
	AccountNumber string
	StartedAt     time.Time
}
