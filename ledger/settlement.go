/*
settlement.go - FIFO debt settlement

PURPOSE:
  Tracks individual debt identity: which debts were paid by which
  payments, and how long each took. The oldest outstanding debt is
  always paid first. Interest plays no part here; this is the companion
  view to the aggregate simulator in interest.go, and downstream
  payback-time analytics consume it.

QUEUE MECHANICS:
  - A positive opening balance is seeded as a synthetic first debt dated
    at the first transaction's date, before any entry is processed.
  - Each debit pushes a new debt onto the back of the queue.
  - Each credit drains the front of the queue until the payment is
    exhausted or the queue empties.
  - A debt leaving the queue gets DaysToPay = days from creation to the
    clearing payment. Debts still open at the end keep DaysToPay nil.

CONSERVATION (ExcessDrop):
  sum(AmountPaid) + sum(AmountRemaining) == opening balance + sum(debits)
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SettleFIFO matches payments against debts in strict creation order.
//
// Entries must be date-ordered with non-negative amounts; same-date
// entries are processed in source-file order, which is significant here
// (unlike the daily aggregation, which sums the day).
//
// The result lists fully paid debts in the order they were settled,
// followed by still-open debts in creation order.
//
// Under ExcessDrop a payment that outlives the queue is discarded.
// Under ExcessCarryAsCredit the leftover is held and applied the moment
// the next debt is created.
func SettleFIFO(entries []Entry, openingBalance decimal.Decimal, opts SettlementOptions) ([]Debt, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	carry := opts.ExcessPayments.carries()

	var (
		queue     []*Debt
		settled   []*Debt
		credit    = decimal.Zero // leftover payment, ExcessCarryAsCredit only
		nextID    = 1
		firstDate = entries[0].Date
	)

	newDebt := func(amount decimal.Decimal, created Date) *Debt {
		d := &Debt{
			ID:              fmt.Sprintf("debt-%d", nextID),
			OriginalAmount:  amount,
			DateCreated:     created,
			AmountPaid:      decimal.Zero,
			AmountRemaining: amount,
		}
		nextID++
		return d
	}

	// pay applies up to 'amount' against the queue front-first on 'date',
	// returning whatever could not be absorbed.
	pay := func(amount decimal.Decimal, date Date) decimal.Decimal {
		for amount.IsPositive() && len(queue) > 0 {
			front := queue[0]
			portion := decimal.Min(amount, front.AmountRemaining)
			front.AmountRemaining = front.AmountRemaining.Sub(portion)
			front.AmountPaid = front.AmountPaid.Add(portion)
			front.PaymentDates = append(front.PaymentDates, date)
			amount = amount.Sub(portion)

			if front.AmountRemaining.IsZero() {
				days := DaysBetween(front.DateCreated, date)
				front.DaysToPay = &days
				settled = append(settled, front)
				queue = queue[1:]
			}
		}
		return amount
	}

	if openingBalance.IsPositive() {
		queue = append(queue, newDebt(openingBalance, firstDate))
	}

	for _, e := range entries {
		if e.Debit.IsPositive() {
			d := newDebt(e.Debit, e.Date)
			queue = append(queue, d)
			if carry && credit.IsPositive() {
				credit = pay(credit, e.Date)
			}
		}
		if e.Credit.IsPositive() {
			leftover := pay(e.Credit, e.Date)
			if carry {
				credit = credit.Add(leftover)
			}
			// ExcessDrop: leftover is discarded, matching the source system.
		}
	}

	result := make([]Debt, 0, len(settled)+len(queue))
	for _, d := range settled {
		result = append(result, *d)
	}
	for _, d := range queue {
		result = append(result, *d)
	}
	return result, nil
}
