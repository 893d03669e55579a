/*
daily.go - Daily ledger builder

PURPOSE:
  Converts a sparse, possibly multi-entry-per-day transaction list into
  exactly one row per calendar day over the full observed range, with no
  gaps. This is the frame the interest simulator walks.

AGGREGATION RULES:
  - Debits and credits on the same day are SUMMED.
  - The balance snapshot is the LAST reported value that day (late value
    wins; balances are snapshots, not deltas, so summing would be wrong).
  - Days with no entries get zero-filled rows.

GUARANTEE:
  Output length is exactly (max date - min date) in days + 1, sorted
  ascending with no duplicate dates.
*/
package ledger

import "github.com/shopspring/decimal"

// BuildDailyLedger aggregates entries per day and fills every calendar
// day between the first and last transaction date.
//
// Entries must be in non-decreasing date order with non-negative debit
// and credit amounts; violations fail fast with ErrOrderingViolation or
// ErrNegativeAmount. An empty input yields an empty output.
func BuildDailyLedger(entries []Entry) ([]DailyRow, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	grouped := groupByDay(entries)

	first := grouped[0].Date
	last := grouped[len(grouped)-1].Date

	rows := make([]DailyRow, 0, DaysBetween(first, last)+1)
	gi := 0
	for d := first; d.BeforeOrEqual(last); d = d.AddDays(1) {
		if gi < len(grouped) && grouped[gi].Date.Equal(d) {
			rows = append(rows, grouped[gi])
			gi++
			continue
		}
		rows = append(rows, DailyRow{
			Date:            d,
			DebitSum:        decimal.Zero,
			CreditSum:       decimal.Zero,
			BalanceSnapshot: decimal.Zero,
			NetAmount:       decimal.Zero,
		})
	}
	return rows, nil
}

// groupByDay collapses same-day entries into one row per transaction day.
// The input is already date-sorted, so a single pass suffices and the
// result stays deterministic without any map iteration.
func groupByDay(entries []Entry) []DailyRow {
	var grouped []DailyRow
	for _, e := range entries {
		if n := len(grouped); n > 0 && grouped[n-1].Date.Equal(e.Date) {
			row := &grouped[n-1]
			row.DebitSum = row.DebitSum.Add(e.Debit)
			row.CreditSum = row.CreditSum.Add(e.Credit)
			row.BalanceSnapshot = e.Balance // last entry of the day wins
			row.NetAmount = row.DebitSum.Sub(row.CreditSum)
			continue
		}
		grouped = append(grouped, DailyRow{
			Date:            e.Date,
			DebitSum:        e.Debit,
			CreditSum:       e.Credit,
			BalanceSnapshot: e.Balance,
			NetAmount:       e.Debit.Sub(e.Credit),
		})
	}
	return grouped
}
