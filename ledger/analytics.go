/*
analytics.go - Aggregates over computed series

PURPOSE:
  Reduces the simulator's output series (and the settlement engine's
  debt list) into the figures the reporting layer displays: average and
  peak outstanding balance, total interest, payback latency, and a
  date-aligned company-wide rollup across customers.

  Everything here is a fold over already-computed series; no new
  simulation state is introduced.
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// PER-CUSTOMER METRICS
// =============================================================================

// Metrics summarizes one customer's daily series.
type Metrics struct {
	Days               int
	TotalDebits        decimal.Decimal
	TotalCredits       decimal.Decimal
	TotalInterest      decimal.Decimal
	AverageOutstanding decimal.Decimal
	PeakOutstanding    decimal.Decimal
	FinalOutstanding   decimal.Decimal
}

// SeriesMetrics folds a daily ledger and its simulated states into Metrics.
// Rows and states are expected to be the matched outputs of
// BuildDailyLedger and Simulate; both empty yields zero metrics.
func SeriesMetrics(rows []DailyRow, states []DayState) Metrics {
	m := Metrics{
		Days:               len(states),
		TotalDebits:        decimal.Zero,
		TotalCredits:       decimal.Zero,
		TotalInterest:      decimal.Zero,
		AverageOutstanding: decimal.Zero,
		PeakOutstanding:    decimal.Zero,
		FinalOutstanding:   decimal.Zero,
	}
	for _, r := range rows {
		m.TotalDebits = m.TotalDebits.Add(r.DebitSum)
		m.TotalCredits = m.TotalCredits.Add(r.CreditSum)
	}
	if len(states) == 0 {
		return m
	}

	sum := decimal.Zero
	for _, s := range states {
		sum = sum.Add(s.OutstandingBalance)
		if s.OutstandingBalance.GreaterThan(m.PeakOutstanding) {
			m.PeakOutstanding = s.OutstandingBalance
		}
	}
	last := states[len(states)-1]
	m.TotalInterest = last.CumulativeInterest
	m.FinalOutstanding = last.OutstandingBalance
	m.AverageOutstanding = sum.Div(decimal.NewFromInt(int64(len(states))))
	return m
}

// AveragePaybackDays is the mean DaysToPay over fully settled debts.
// Open debts are excluded; no settled debts yields zero.
func AveragePaybackDays(debts []Debt) decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, d := range debts {
		if d.DaysToPay == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(*d.DaysToPay)))
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// =============================================================================
// COMPANY ROLLUP - Date-aligned sum across customers
// =============================================================================

// CompanyDay is one day of the company-wide view: the sum of every
// customer's outstanding balance and interest on that date.
type CompanyDay struct {
	Date               Date
	OutstandingBalance decimal.Decimal
	DailyInterest      decimal.Decimal
	CumulativeInterest decimal.Decimal
}

// CombineDaily aligns per-customer day-state series on the union of
// their date ranges and sums them.
//
// Before a series begins it contributes nothing. After it ends, its
// final outstanding balance and cumulative interest carry forward: the
// customer still owes that money even on days the ledger stops
// reporting.
func CombineDaily(series ...[]DayState) []CompanyDay {
	var start, end Date
	found := false
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		if !found || s[0].Date.Before(start) {
			start = s[0].Date
		}
		if !found || s[len(s)-1].Date.After(end) {
			end = s[len(s)-1].Date
		}
		found = true
	}
	if !found {
		return nil
	}

	days := make([]CompanyDay, 0, DaysBetween(start, end)+1)
	cursors := make([]int, len(series))
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		day := CompanyDay{
			Date:               d,
			OutstandingBalance: decimal.Zero,
			DailyInterest:      decimal.Zero,
			CumulativeInterest: decimal.Zero,
		}
		for i, s := range series {
			if len(s) == 0 || s[0].Date.After(d) {
				continue
			}
			for cursors[i]+1 < len(s) && s[cursors[i]+1].Date.BeforeOrEqual(d) {
				cursors[i]++
			}
			state := s[cursors[i]]
			day.OutstandingBalance = day.OutstandingBalance.Add(state.OutstandingBalance)
			day.CumulativeInterest = day.CumulativeInterest.Add(state.CumulativeInterest)
			if state.Date.Equal(d) {
				day.DailyInterest = day.DailyInterest.Add(state.DailyInterest)
			}
		}
		days = append(days, day)
	}
	return days
}
