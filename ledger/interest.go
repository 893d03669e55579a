/*
interest.go - Daily compounding interest simulator

PURPOSE:
  Walks the gap-free daily ledger in date order, maintaining a single
  running balance and a single cumulative interest accumulator, and
  emits one DayState per day.

THE ORDER OF OPERATIONS IS THE CONTRACT. Each day, in this order:
  1. Payments reduce the balance (before any interest accrues)
  2. Interest compounds on whatever balance remains
  3. New debt is added (so debt accrues no interest on its creation day)

Reversing any of these steps changes the numbers. An earlier flat
estimate of this figure (see FlatInterestEstimate) got this wrong and is
kept only for comparison reporting.

DAY-COUNT CONVENTION:
  daily rate = annual rate percent / 365 / 100. Deliberately not
  actual/365.25 and no business-day calendar; downstream consumers
  depend on this exact convention.
*/
package ledger

import "github.com/shopspring/decimal"

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
)

// DailyRate derives the per-day interest rate from an annual percentage.
func DailyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(daysPerYear).Div(hundred)
}

// Simulate runs the daily compounding simulation over a gap-free daily
// ledger, producing one DayState per input row.
//
// The running balance starts at the first row's balance snapshot (the
// opening balance), not at zero. A zero-rate simulation is valid and
// accrues nothing, forever.
//
// Under the default ExcessDrop policy any payment beyond the outstanding
// balance is discarded and the balance never goes negative. Under
// ExcessCarryAsCredit payments always apply in full and a negative
// balance (credit in the customer's favor) accrues no interest.
func Simulate(rows []DailyRow, annualRatePercent decimal.Decimal, opts SimulationOptions) ([]DayState, error) {
	if annualRatePercent.IsNegative() {
		return nil, ErrNegativeRate
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rate := DailyRate(annualRatePercent)
	carry := opts.ExcessPayments.carries()

	balance := rows[0].BalanceSnapshot
	cumulative := decimal.Zero

	states := make([]DayState, 0, len(rows))
	for _, row := range rows {
		// Step 1: apply payments before anything accrues today.
		applied := decimal.Zero
		if row.CreditSum.IsPositive() {
			if carry {
				applied = row.CreditSum
				balance = balance.Sub(applied)
			} else if balance.IsPositive() {
				applied = decimal.Min(row.CreditSum, balance)
				balance = balance.Sub(applied)
			}
		}

		// Step 2: compound interest on the remaining balance.
		interest := decimal.Zero
		if balance.IsPositive() {
			interest = balance.Mul(rate)
			balance = balance.Add(interest)
			cumulative = cumulative.Add(interest)
		}

		// Step 3: new debt lands after accrual, so it earns nothing today.
		balance = balance.Add(row.DebitSum)

		states = append(states, DayState{
			Date:               row.Date,
			OutstandingBalance: balance,
			PaymentsApplied:    applied,
			NewDebtAdded:       row.DebitSum,
			DailyInterest:      interest,
			CumulativeInterest: cumulative,
		})
	}
	return states, nil
}

// SimpleInterest is the plain P*R*T/365/100 figure for a balance held
// over a number of days. Non-positive balances earn nothing.
func SimpleInterest(balance decimal.Decimal, days int, annualRatePercent decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return balance.Mul(annualRatePercent).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear).Div(hundred)
}

// FlatInterestEstimate is the superseded estimate the reporting layer
// still shows alongside the compounded figure: the sum of reported
// balance snapshots on transaction days, times the daily rate, times
// the number of transaction days. It ignores payments-before-interest
// and compounding entirely. Do not use it for anything but comparison.
//
// Fails fast on unsorted or negative input like the other entry points.
func FlatInterestEstimate(entries []Entry, annualRatePercent decimal.Decimal) (decimal.Decimal, error) {
	if err := validateEntries(entries); err != nil {
		return decimal.Decimal{}, err
	}
	grouped := groupByDay(entries)
	if len(grouped) == 0 {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	for _, row := range grouped {
		total = total.Add(row.BalanceSnapshot)
	}
	days := decimal.NewFromInt(int64(len(grouped)))
	return total.Mul(DailyRate(annualRatePercent)).Mul(days), nil
}
