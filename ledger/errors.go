/*
errors.go - Centralized error types for the receivables engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should match with errors.Is(); structured errors carry the
  offending position so ingestion bugs are easy to locate.

ERROR CATEGORIES:
  1. Precondition violations - out-of-order or negative input
  2. Configuration errors    - invalid rate

The engine fails fast on precondition violations rather than silently
producing wrong numbers: an unsorted transaction list corrupts both the
daily aggregation and the FIFO matching.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOrderingViolation is returned when transactions are not in
	// non-decreasing date order.
	ErrOrderingViolation = errors.New("ordering violation")

	// ErrNegativeAmount is returned when a debit or credit is negative.
	ErrNegativeAmount = errors.New("negative debit or credit amount")

	// ErrNegativeRate is returned when the annual interest rate is negative.
	ErrNegativeRate = errors.New("negative annual interest rate")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OrderingViolationError reports the first entry that breaks date order.
type OrderingViolationError struct {
	Index    int
	Previous Date
	Current  Date
}

func (e *OrderingViolationError) Error() string {
	return fmt.Sprintf("ordering violation: entry %d dated %s precedes %s",
		e.Index, e.Current, e.Previous)
}

func (e *OrderingViolationError) Unwrap() error { return ErrOrderingViolation }

// NegativeAmountError reports an entry with a negative debit or credit.
type NegativeAmountError struct {
	Index  int
	Field  string // "debit" or "credit"
	Amount decimal.Decimal
}

func (e *NegativeAmountError) Error() string {
	return fmt.Sprintf("negative amount: entry %d has %s %s", e.Index, e.Field, e.Amount)
}

func (e *NegativeAmountError) Unwrap() error { return ErrNegativeAmount }

// validateEntries checks the core preconditions shared by the daily
// builder and the settlement engine.
func validateEntries(entries []Entry) error {
	for i, e := range entries {
		if e.Debit.IsNegative() {
			return &NegativeAmountError{Index: i, Field: "debit", Amount: e.Debit}
		}
		if e.Credit.IsNegative() {
			return &NegativeAmountError{Index: i, Field: "credit", Amount: e.Credit}
		}
		if i > 0 && e.Date.Before(entries[i-1].Date) {
			return &OrderingViolationError{Index: i, Previous: entries[i-1].Date, Current: e.Date}
		}
	}
	return nil
}
