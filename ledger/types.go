/*
Package ledger provides the core receivables interest engine.

PURPOSE:
  This package contains the pure algorithms for analyzing a customer's
  accounts-receivable ledger: building a gap-free daily view of the raw
  transactions, simulating daily compound interest on the outstanding
  balance, and matching payments against individual debts in FIFO order.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry:    A raw ledger transaction (debit = new debt, credit = payment)
  - DailyRow: One calendar day of aggregated activity, gap-free
  - DayState: The simulated balance and interest state for one day
  - Debt:     A single tracked debt with its payment history

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clocks, no globals. Same input, same output.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Isolation: Every simulation owns its own running state; nothing is
     shared between customers.

USAGE:
  rows, err := ledger.BuildDailyLedger(entries)
  states, err := ledger.Simulate(rows, decimal.NewFromInt(12), ledger.SimulationOptions{})
  debts, err := ledger.SettleFIFO(entries, opening, ledger.SettlementOptions{})

SEE ALSO:
  - daily.go:      Daily ledger builder
  - interest.go:   Compound interest simulator
  - settlement.go: FIFO debt settlement
  - analytics.go:  Series metrics and company rollups
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY - Raw ledger transaction (input)
// =============================================================================

// Entry is a single transaction as reported by the source ledger.
// Debit is new debt taken by the customer, Credit is a payment received.
// Balance is the signed running balance the source ledger reported on
// this line; it is a snapshot, not something this package recomputes.
//
// Multiple entries may share a date. Entries must be supplied in
// non-decreasing date order; same-date order follows the source file.
type Entry struct {
	Date    Date
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// =============================================================================
// DAILY ROW - One calendar day, gap-free (derived)
// =============================================================================

// DailyRow aggregates all activity for one calendar day.
// BalanceSnapshot is the LAST reported balance that day (late value wins);
// it is zero on days with no entries.
type DailyRow struct {
	Date            Date
	DebitSum        decimal.Decimal
	CreditSum       decimal.Decimal
	BalanceSnapshot decimal.Decimal
	NetAmount       decimal.Decimal // DebitSum - CreditSum
}

// =============================================================================
// DAY STATE - Simulated balance and interest for one day (derived)
// =============================================================================

// DayState is the output of the interest simulator for one daily row.
//
// INVARIANTS (under ExcessDrop, the default policy):
//   - OutstandingBalance is never negative
//   - CumulativeInterest is monotonically non-decreasing
type DayState struct {
	Date               Date
	OutstandingBalance decimal.Decimal
	PaymentsApplied    decimal.Decimal
	NewDebtAdded       decimal.Decimal
	DailyInterest      decimal.Decimal
	CumulativeInterest decimal.Decimal
}

// =============================================================================
// DEBT - Individual debt tracked by the FIFO settlement engine
// =============================================================================

// Debt tracks one debt from creation through (possibly partial) repayment.
//
// INVARIANT: AmountPaid + AmountRemaining == OriginalAmount at all times.
//
// Lifecycle: Open -> Partially Paid -> Fully Paid (terminal, DaysToPay set).
// A debt never fully paid within the observation window keeps DaysToPay nil.
type Debt struct {
	ID              string
	OriginalAmount  decimal.Decimal
	DateCreated     Date
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal
	PaymentDates    []Date
	DaysToPay       *int
}

// Settled reports whether the debt has been fully paid.
func (d Debt) Settled() bool {
	return d.AmountRemaining.IsZero()
}

// =============================================================================
// EXCESS PAYMENT POLICY
// =============================================================================

// ExcessPolicy controls what happens when a payment exceeds the amount owed.
//
// The source system silently drops the excess (no negative balance, no
// credit carried forward). Whether excess should instead become a credit
// balance is unresolved product-side, so both behaviors are available;
// ExcessDrop matches the observed system and is the default.
type ExcessPolicy string

const (
	// ExcessDrop discards any payment amount beyond the outstanding balance.
	ExcessDrop ExcessPolicy = "drop"

	// ExcessCarryAsCredit keeps the excess as a credit in the customer's
	// favor: the simulator lets the balance go negative, and the settlement
	// engine applies the leftover against the next debt created.
	ExcessCarryAsCredit ExcessPolicy = "carry_as_credit"
)

// SimulationOptions configures the interest simulator.
type SimulationOptions struct {
	ExcessPayments ExcessPolicy // zero value means ExcessDrop
}

// SettlementOptions configures the FIFO settlement engine.
type SettlementOptions struct {
	ExcessPayments ExcessPolicy // zero value means ExcessDrop
}

func (p ExcessPolicy) carries() bool { return p == ExcessCarryAsCredit }
