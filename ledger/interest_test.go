package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
)

func row(d ledger.Date, debit, credit, balance string) ledger.DailyRow {
	return ledger.DailyRow{
		Date:            d,
		DebitSum:        dec(debit),
		CreditSum:       dec(credit),
		BalanceSnapshot: dec(balance),
		NetAmount:       dec(debit).Sub(dec(credit)),
	}
}

// fillTo pads rows with zero days up to and including 'end', mirroring
// what BuildDailyLedger produces for gap days.
func fillTo(rows []ledger.DailyRow, end ledger.Date) []ledger.DailyRow {
	out := append([]ledger.DailyRow{}, rows[0])
	for d := rows[0].Date.AddDays(1); d.BeforeOrEqual(end); d = d.AddDays(1) {
		next := ledger.DailyRow{
			Date:            d,
			DebitSum:        decimal.Zero,
			CreditSum:       decimal.Zero,
			BalanceSnapshot: decimal.Zero,
			NetAmount:       decimal.Zero,
		}
		for _, r := range rows[1:] {
			if r.Date.Equal(d) {
				next = r
			}
		}
		out = append(out, next)
	}
	return out
}

// =============================================================================
// ORDER OF OPERATIONS
// =============================================================================

func TestSimulate_OrderOfOperations(t *testing.T) {
	// GIVEN: opening balance 0, debit 1000 on day 1, payment 300 on day 3,
	//        36% annual rate
	// THEN:  day 1 balance is exactly 1000 (debt is added AFTER accrual, so
	//        it earns nothing on its creation day); day 2 compounds; day 3
	//        applies the payment BEFORE accruing.
	start := date(2024, time.March, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "1000", "0", "0"),
		row(start.AddDays(2), "0", "300", "0"),
	}, start.AddDays(2))

	rate := dec("36")
	states, err := ledger.Simulate(rows, rate, ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	daily := ledger.DailyRate(rate)

	if !states[0].OutstandingBalance.Equal(dec("1000")) {
		t.Errorf("day 1: expected exactly 1000, got %s", states[0].OutstandingBalance)
	}
	if !states[0].DailyInterest.IsZero() {
		t.Errorf("day 1: no interest may accrue on creation day, got %s", states[0].DailyInterest)
	}

	day2 := dec("1000").Add(dec("1000").Mul(daily))
	if !states[1].OutstandingBalance.Equal(day2) {
		t.Errorf("day 2: expected %s, got %s", day2, states[1].OutstandingBalance)
	}

	afterPayment := day2.Sub(dec("300"))
	day3 := afterPayment.Add(afterPayment.Mul(daily))
	if !states[2].OutstandingBalance.Equal(day3) {
		t.Errorf("day 3: expected payment-then-interest %s, got %s", day3, states[2].OutstandingBalance)
	}
	if !states[2].PaymentsApplied.Equal(dec("300")) {
		t.Errorf("day 3: expected 300 applied, got %s", states[2].PaymentsApplied)
	}
}

// =============================================================================
// WORKED FIVE-DAY SCENARIO AT 12%
// =============================================================================

func TestSimulate_FiveDayScenario(t *testing.T) {
	// Opening balance 500 (already owed before day 1), day 1 debit 1000,
	// day 3 payment 300, day 4 debit 500, day 5 quiet. 12% annual.
	start := date(2024, time.April, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "1000", "0", "500"), // snapshot carries the opening balance
		row(start.AddDays(2), "0", "300", "0"),
		row(start.AddDays(3), "500", "0", "0"),
	}, start.AddDays(4))

	rate := dec("12")
	daily := ledger.DailyRate(rate)

	states, err := ledger.Simulate(rows, rate, ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 5 {
		t.Fatalf("expected 5 states, got %d", len(states))
	}

	// Hand trace with the same decimal operations the engine performs.
	cum := decimal.Zero

	// Day 1: the opening 500 accrues, then the 1000 debit lands.
	i1 := dec("500").Mul(daily)
	bal := dec("500").Add(i1).Add(dec("1000"))
	cum = cum.Add(i1)
	if !states[0].OutstandingBalance.Equal(bal) {
		t.Errorf("day 1: expected %s, got %s", bal, states[0].OutstandingBalance)
	}
	if !states[0].DailyInterest.Equal(i1) {
		t.Errorf("day 1: expected interest %s, got %s", i1, states[0].DailyInterest)
	}

	// Day 2: pure compounding.
	i2 := bal.Mul(daily)
	bal = bal.Add(i2)
	cum = cum.Add(i2)

	// Day 3: payment of 300 applies first, then interest.
	bal = bal.Sub(dec("300"))
	i3 := bal.Mul(daily)
	bal = bal.Add(i3)
	cum = cum.Add(i3)
	if !states[2].PaymentsApplied.Equal(dec("300")) {
		t.Errorf("day 3: expected payment 300 applied, got %s", states[2].PaymentsApplied)
	}
	if !states[2].OutstandingBalance.Equal(bal) {
		t.Errorf("day 3: expected %s, got %s", bal, states[2].OutstandingBalance)
	}

	// Day 4: interest on the settled-down balance, then 500 new debt.
	i4 := bal.Mul(daily)
	bal = bal.Add(i4).Add(dec("500"))
	cum = cum.Add(i4)
	if !states[3].OutstandingBalance.Equal(bal) {
		t.Errorf("day 4: expected %s, got %s", bal, states[3].OutstandingBalance)
	}

	// Day 5: interest on the combined balance.
	i5 := bal.Mul(daily)
	bal = bal.Add(i5)
	cum = cum.Add(i5)
	if !states[4].OutstandingBalance.Equal(bal) {
		t.Errorf("day 5: expected %s, got %s", bal, states[4].OutstandingBalance)
	}
	if !states[4].CumulativeInterest.Equal(cum) {
		t.Errorf("day 5: expected cumulative interest %s, got %s", cum, states[4].CumulativeInterest)
	}
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestSimulate_NonNegativityAndMonotonicInterest(t *testing.T) {
	start := date(2024, time.January, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "1000", "0", "1000"),
		row(start.AddDays(5), "0", "5000", "0"), // grossly overpays
		row(start.AddDays(10), "200", "0", "200"),
		row(start.AddDays(20), "0", "150", "50"),
	}, start.AddDays(25))

	states, err := ledger.Simulate(rows, dec("18"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prev := decimal.Zero
	for i, s := range states {
		if s.OutstandingBalance.IsNegative() {
			t.Errorf("day %d: outstanding balance went negative: %s", i, s.OutstandingBalance)
		}
		if s.CumulativeInterest.LessThan(prev) {
			t.Errorf("day %d: cumulative interest decreased: %s < %s", i, s.CumulativeInterest, prev)
		}
		prev = s.CumulativeInterest
	}
}

func TestSimulate_ZeroBalanceSilence(t *testing.T) {
	// GIVEN: the balance is fully settled on day 2
	// THEN: later quiet days accrue nothing and cumulative interest is flat
	start := date(2024, time.February, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "1000", "0", "0"),
		row(start.AddDays(1), "0", "1000", "0"),
	}, start.AddDays(6))

	states, err := ledger.Simulate(rows, dec("24"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Day 2: payment clears everything before accrual, so nothing accrues
	// then or on any later day.
	for i := 1; i < len(states); i++ {
		if !states[i].DailyInterest.IsZero() {
			t.Errorf("day %d: expected zero interest on settled balance, got %s", i+1, states[i].DailyInterest)
		}
		if !states[i].CumulativeInterest.Equal(states[0].CumulativeInterest) {
			t.Errorf("day %d: cumulative interest moved on a settled balance", i+1)
		}
		if !states[i].OutstandingBalance.IsZero() {
			t.Errorf("day %d: expected zero balance, got %s", i+1, states[i].OutstandingBalance)
		}
	}
}

func TestSimulate_ExcessPaymentDroppedByDefault(t *testing.T) {
	start := date(2024, time.March, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "100", "0", "0"),
		row(start.AddDays(1), "0", "500", "0"), // pays 5x the debt
		row(start.AddDays(2), "100", "0", "0"), // new debt afterwards
	}, start.AddDays(2))

	states, err := ledger.Simulate(rows, dec("12"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !states[1].PaymentsApplied.Equal(dec("100")) {
		t.Errorf("expected only 100 applied, got %s", states[1].PaymentsApplied)
	}
	if !states[1].OutstandingBalance.IsZero() {
		t.Errorf("expected zero balance after overpayment, got %s", states[1].OutstandingBalance)
	}
	// The excess does NOT reduce future debt.
	if !states[2].OutstandingBalance.Equal(dec("100")) {
		t.Errorf("excess must not carry forward: expected 100, got %s", states[2].OutstandingBalance)
	}
}

func TestSimulate_ExcessPaymentCarriedAsCredit(t *testing.T) {
	start := date(2024, time.March, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "100", "0", "0"),
		row(start.AddDays(1), "0", "500", "0"),
		row(start.AddDays(2), "100", "0", "0"),
	}, start.AddDays(2))

	states, err := ledger.Simulate(rows, dec("12"), ledger.SimulationOptions{
		ExcessPayments: ledger.ExcessCarryAsCredit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !states[1].PaymentsApplied.Equal(dec("500")) {
		t.Errorf("expected full 500 applied, got %s", states[1].PaymentsApplied)
	}
	if !states[1].OutstandingBalance.Equal(dec("-400")) {
		t.Errorf("expected credit balance -400, got %s", states[1].OutstandingBalance)
	}
	if !states[1].DailyInterest.IsZero() {
		t.Errorf("credit balances must not accrue interest, got %s", states[1].DailyInterest)
	}
	// New debt nets against the credit.
	if !states[2].OutstandingBalance.Equal(dec("-300")) {
		t.Errorf("expected -300 after netting new debt, got %s", states[2].OutstandingBalance)
	}
}

func TestSimulate_ZeroRateAccruesNothing(t *testing.T) {
	start := date(2024, time.May, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "1000", "0", "0"),
	}, start.AddDays(30))

	states, err := ledger.Simulate(rows, decimal.Zero, ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := states[len(states)-1]
	if !last.CumulativeInterest.IsZero() {
		t.Errorf("zero rate must accrue nothing, got %s", last.CumulativeInterest)
	}
	if !last.OutstandingBalance.Equal(dec("1000")) {
		t.Errorf("expected flat balance 1000, got %s", last.OutstandingBalance)
	}
}

func TestSimulate_NegativeRateRejected(t *testing.T) {
	rows := []ledger.DailyRow{row(date(2024, time.May, 1), "100", "0", "100")}
	_, err := ledger.Simulate(rows, dec("-1"), ledger.SimulationOptions{})
	if !errors.Is(err, ledger.ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}

func TestSimulate_EmptyInput(t *testing.T) {
	states, err := ledger.Simulate(nil, dec("12"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("expected empty output, got %d states", len(states))
	}
}

func TestSimulate_Idempotent(t *testing.T) {
	// Re-running over the same input must be bit-for-bit identical: the
	// simulator owns no hidden state.
	start := date(2024, time.June, 1)
	rows := fillTo([]ledger.DailyRow{
		row(start, "750", "0", "750"),
		row(start.AddDays(3), "0", "250", "500"),
		row(start.AddDays(9), "125", "0", "625"),
	}, start.AddDays(14))

	first, err := ledger.Simulate(rows, dec("15"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ledger.Simulate(rows, dec("15"), ledger.SimulationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if !first[i].OutstandingBalance.Equal(second[i].OutstandingBalance) ||
			!first[i].CumulativeInterest.Equal(second[i].CumulativeInterest) ||
			!first[i].DailyInterest.Equal(second[i].DailyInterest) {
			t.Fatalf("day %d: runs diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// =============================================================================
// HELPERS AND ESTIMATES
// =============================================================================

func TestDailyRate(t *testing.T) {
	want := dec("36").Div(dec("365")).Div(dec("100"))
	if !ledger.DailyRate(dec("36")).Equal(want) {
		t.Errorf("expected %s, got %s", want, ledger.DailyRate(dec("36")))
	}
}

func TestSimpleInterest(t *testing.T) {
	// 10000 at 12% for 365 days is exactly 1200.
	got := ledger.SimpleInterest(dec("10000"), 365, dec("12"))
	if !got.Equal(dec("1200")) {
		t.Errorf("expected 1200, got %s", got)
	}
	if !ledger.SimpleInterest(decimal.Zero, 30, dec("12")).IsZero() {
		t.Error("zero balance must earn zero interest")
	}
}

func TestFlatInterestEstimate(t *testing.T) {
	// Two transaction days with snapshots 1000 and 500:
	// (1000+500) * dailyRate * 2 days.
	entries := []ledger.Entry{
		entry(date(2024, time.April, 1), "1000", "0", "1000"),
		entry(date(2024, time.April, 20), "0", "500", "500"),
	}
	want := dec("1500").Mul(ledger.DailyRate(dec("12"))).Mul(dec("2"))
	got, err := ledger.FlatInterestEstimate(entries, dec("12"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestFlatInterestEstimate_OrderingViolation(t *testing.T) {
	// GIVEN: entries out of date order
	entries := []ledger.Entry{
		entry(date(2024, time.April, 20), "0", "500", "500"),
		entry(date(2024, time.April, 1), "1000", "0", "1000"),
	}

	// WHEN: estimating
	_, err := ledger.FlatInterestEstimate(entries, dec("12"))

	// THEN: it fails fast like the other entry points
	if !errors.Is(err, ledger.ErrOrderingViolation) {
		t.Fatalf("expected ErrOrderingViolation, got %v", err)
	}
}
