package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the server-side ledger row. Balances are decimal; they are
// never held or compared as binary floats.
type Account struct {
	AccountNumber string
	Balance       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccountBalance is the wire-level balance statement returned by the
// account service.
type AccountBalance struct {
	AccountNumber string
	Balance       decimal.Decimal
}

// AccountSnapshot is the last authoritative balance known to the client
// for the active session. Version increases with every accepted server
// response; it is assigned by the snapshot store, never by callers.
type AccountSnapshot struct {
	AccountNumber string
	Balance       decimal.Decimal
	Version       uint64
	FetchedAt     time.Time
}
