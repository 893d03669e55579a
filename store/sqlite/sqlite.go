/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements portfolio.Store and portfolio.RunRecorder on a single
  SQLite file. The dataset is one accounting year of ledger exports for
  a few hundred customers; a single file with WAL is comfortably
  enough, and the same patterns apply to PostgreSQL with only minor
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  Ledger entries mirror the source accounting system and are never
  edited here:
  - No UPDATE statements on the entries table
  - No DELETE statements on the entries table
  The seq column preserves source-file order within a day, which is
  the same-date tie-break the settlement engine depends on.

KEY TABLES:
  customers:   Customer records with opening balances
  entries:     Immutable per-customer ledger entries
  report_runs: Scheduled company-report recomputations

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/receivables.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - portfolio/store.go:        Interface definitions
  - portfolio/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// Store implements portfolio.Store and portfolio.RunRecorder using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Customers
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		opening_balance TEXT NOT NULL
	);

	-- Ledger entries (append-only). seq preserves source-file order.
	CREATE TABLE IF NOT EXISTS entries (
		customer_id TEXT NOT NULL REFERENCES customers(id),
		seq INTEGER NOT NULL,
		entry_date TEXT NOT NULL,
		debit TEXT NOT NULL,
		credit TEXT NOT NULL,
		balance TEXT NOT NULL,
		PRIMARY KEY (customer_id, seq)
	);

	-- Hot path: per-customer date-ordered scans
	CREATE INDEX IF NOT EXISTS idx_entries_customer_date
		ON entries(customer_id, entry_date, seq);

	-- Report runs (scheduled company-report recomputations)
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		error TEXT,
		customers INTEGER NOT NULL,
		total_interest TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_report_runs_started
		ON report_runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

// SaveCustomer inserts or updates a customer record.
func (s *Store) SaveCustomer(ctx context.Context, c portfolio.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO customers (id, name, opening_balance)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			opening_balance = excluded.opening_balance
	`

	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.OpeningBalance.String())
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// Customer retrieves a customer by ID.
func (s *Store) Customer(ctx context.Context, id string) (portfolio.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, opening_balance FROM customers WHERE id = ?", id)
	return scanCustomer(row)
}

// ListCustomers returns all customers ordered by ID.
func (s *Store) ListCustomers(ctx context.Context) ([]portfolio.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, opening_balance FROM customers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []portfolio.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCustomer(row scannable) (portfolio.Customer, error) {
	var c portfolio.Customer
	var opening string

	if err := row.Scan(&c.ID, &c.Name, &opening); err != nil {
		if err == sql.ErrNoRows {
			return portfolio.Customer{}, portfolio.ErrCustomerNotFound
		}
		return portfolio.Customer{}, fmt.Errorf("failed to scan customer: %w", err)
	}

	balance, err := decimal.NewFromString(opening)
	if err != nil {
		return portfolio.Customer{}, fmt.Errorf("corrupt opening balance for %s: %w", c.ID, err)
	}
	c.OpeningBalance = balance
	return c, nil
}

// =============================================================================
// ENTRY STORE (append-only)
// =============================================================================

// AppendEntries appends ledger entries for a customer atomically.
// Entries keep their slice order via the seq column.
func (s *Store) AppendEntries(ctx context.Context, customerID string, entries []ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := customerExists(ctx, tx, customerID); err != nil {
		return err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), -1) + 1 FROM entries WHERE customer_id = ?",
		customerID).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute next seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (customer_id, seq, entry_date, debit, credit, balance)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			customerID, next+i, e.Date.String(),
			e.Debit.String(), e.Credit.String(), e.Balance.String(),
		); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}

	return tx.Commit()
}

// Entries returns a customer's entries ordered by date, then source order.
func (s *Store) Entries(ctx context.Context, customerID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := customerExists(ctx, s.db, customerID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_date, debit, credit, balance
		FROM entries
		WHERE customer_id = ?
		ORDER BY entry_date ASC, seq ASC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var dateStr, debit, credit, balance string
		if err := rows.Scan(&dateStr, &debit, &credit, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e, err := parseEntry(dateStr, debit, credit, balance)
		if err != nil {
			return nil, fmt.Errorf("corrupt entry for %s: %w", customerID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func customerExists(ctx context.Context, db querier, customerID string) error {
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customers WHERE id = ?", customerID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return portfolio.ErrCustomerNotFound
	}
	return nil
}

func parseEntry(dateStr, debit, credit, balance string) (ledger.Entry, error) {
	date, err := ledger.ParseDate(dateStr)
	if err != nil {
		return ledger.Entry{}, err
	}
	d, err := decimal.NewFromString(debit)
	if err != nil {
		return ledger.Entry{}, err
	}
	c, err := decimal.NewFromString(credit)
	if err != nil {
		return ledger.Entry{}, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return ledger.Entry{}, err
	}
	return ledger.Entry{Date: date, Debit: d, Credit: c, Balance: b}, nil
}

// =============================================================================
// REPORT RUN STORE (portfolio.RunRecorder interface)
// =============================================================================

// SaveReportRun inserts or updates a report run record.
func (s *Store) SaveReportRun(ctx context.Context, run portfolio.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO report_runs (id, status, error, customers, total_interest, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			customers = excluded.customers,
			total_interest = excluded.total_interest,
			completed_at = excluded.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Status, nullString(run.Error), run.Customers,
		run.TotalInterest.String(),
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save report run: %w", err)
	}
	return nil
}

// ListReportRuns returns the most recent report runs, newest first.
func (s *Store) ListReportRuns(ctx context.Context, limit int) ([]portfolio.ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, COALESCE(error, ''), customers, total_interest, started_at, completed_at
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var runs []portfolio.ReportRun
	for rows.Next() {
		var run portfolio.ReportRun
		var total, started, completed string
		if err := rows.Scan(&run.ID, &run.Status, &run.Error, &run.Customers,
			&total, &started, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		if run.TotalInterest, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt report run %s: %w", run.ID, err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		run.CompletedAt, _ = time.Parse(time.RFC3339, completed)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
