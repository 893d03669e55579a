/*
store.go - Persistence interface for customers and their ledger entries

PURPOSE:
  Defines the boundary between the analysis layer and storage. Entries
  are APPEND-ONLY: the ledger is a historical record from the source
  accounting system, never edited here. Implementations must return
  entries ordered by date and, within a date, by insertion order — the
  source-file order is the tie-break the FIFO settlement engine depends
  on.

IMPLEMENTATIONS:
  - portfolio/store (Memory): in-memory, for tests and ephemeral runs
  - store/sqlite:             production single-file store
*/
package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
)

// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer is one accounts-receivable party.
type Customer struct {
	ID             string
	Name           string
	OpeningBalance decimal.Decimal
}

// Store handles persistence of customers and their ledger entries.
type Store interface {
	// SaveCustomer creates or replaces a customer record.
	SaveCustomer(ctx context.Context, c Customer) error

	// Customer returns a customer by ID, or ErrCustomerNotFound.
	Customer(ctx context.Context, id string) (Customer, error)

	// ListCustomers returns all customers, ordered by ID.
	ListCustomers(ctx context.Context) ([]Customer, error)

	// AppendEntries appends ledger entries for a customer. Append-only;
	// entries must already be in non-decreasing date order relative to
	// what is stored.
	AppendEntries(ctx context.Context, customerID string, entries []ledger.Entry) error

	// Entries returns a customer's entries ordered by date, then by
	// insertion sequence (source-file order).
	Entries(ctx context.Context, customerID string) ([]ledger.Entry, error)
}

// RunRecorder is an optional store capability: recording scheduled
// report recomputations. The sqlite store implements it; callers
// type-assert and skip recording when absent.
type RunRecorder interface {
	SaveReportRun(ctx context.Context, run ReportRun) error
	ListReportRuns(ctx context.Context, limit int) ([]ReportRun, error)
}

// ReportRun records one scheduled recomputation of company metrics.
type ReportRun struct {
	ID            string
	Status        string // "completed" or "failed"
	Error         string
	Customers     int
	TotalInterest decimal.Decimal
	StartedAt     time.Time
	CompletedAt   time.Time
}
