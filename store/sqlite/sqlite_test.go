package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testEntry(d ledger.Date, debit, credit, balance string) ledger.Entry {
	return ledger.Entry{
		Date:    d,
		Debit:   decimal.RequireFromString(debit),
		Credit:  decimal.RequireFromString(credit),
		Balance: decimal.RequireFromString(balance),
	}
}

func TestSaveAndGetCustomer(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := portfolio.Customer{
		ID:             "10023",
		Name:           "Highway Fuels",
		OpeningBalance: decimal.RequireFromString("5000.50"),
	}
	if err := st.SaveCustomer(ctx, c); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}

	got, err := st.Customer(ctx, "10023")
	if err != nil {
		t.Fatalf("failed to get customer: %v", err)
	}
	if got.Name != "Highway Fuels" {
		t.Errorf("expected name Highway Fuels, got %s", got.Name)
	}
	if !got.OpeningBalance.Equal(c.OpeningBalance) {
		t.Errorf("expected opening %s, got %s", c.OpeningBalance, got.OpeningBalance)
	}

	// Save is an upsert
	c.Name = "Highway Fuels Ltd"
	if err := st.SaveCustomer(ctx, c); err != nil {
		t.Fatalf("failed to update customer: %v", err)
	}
	got, err = st.Customer(ctx, "10023")
	if err != nil {
		t.Fatalf("failed to get customer after update: %v", err)
	}
	if got.Name != "Highway Fuels Ltd" {
		t.Errorf("expected updated name, got %s", got.Name)
	}
}

func TestCustomerNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Customer(context.Background(), "nope")
	if !errors.Is(err, portfolio.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	err = st.AppendEntries(context.Background(), "nope", nil)
	if !errors.Is(err, portfolio.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound on append, got %v", err)
	}

	_, err = st.Entries(context.Background(), "nope")
	if !errors.Is(err, portfolio.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound on read, got %v", err)
	}
}

func TestListCustomers_OrderedByID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b-cust", "a-cust", "c-cust"} {
		if err := st.SaveCustomer(ctx, portfolio.Customer{
			ID: id, Name: id, OpeningBalance: decimal.Zero,
		}); err != nil {
			t.Fatalf("failed to save %s: %v", id, err)
		}
	}

	customers, err := st.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("failed to list customers: %v", err)
	}
	if len(customers) != 3 {
		t.Fatalf("expected 3 customers, got %d", len(customers))
	}
	for i, want := range []string{"a-cust", "b-cust", "c-cust"} {
		if customers[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, customers[i].ID)
		}
	}
}

func TestEntries_SameDayKeepsSourceOrder(t *testing.T) {
	// GIVEN: two same-day entries appended in source order
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveCustomer(ctx, portfolio.Customer{
		ID: "cust-1", Name: "Test", OpeningBalance: decimal.Zero,
	}); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}

	day := ledger.NewDate(2024, time.April, 1)
	first := testEntry(day, "1000", "0", "1000")
	second := testEntry(day, "0", "400", "600")
	if err := st.AppendEntries(ctx, "cust-1", []ledger.Entry{first, second}); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	// WHEN: reading back
	entries, err := st.Entries(ctx, "cust-1")
	if err != nil {
		t.Fatalf("failed to read entries: %v", err)
	}

	// THEN: the debit comes back before the same-day credit
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].Debit.Equal(first.Debit) || !entries[1].Credit.Equal(second.Credit) {
		t.Errorf("same-day entries reordered: %+v", entries)
	}
}

func TestAppendEntries_AcrossCalls(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveCustomer(ctx, portfolio.Customer{
		ID: "cust-1", Name: "Test", OpeningBalance: decimal.Zero,
	}); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}

	day := ledger.NewDate(2024, time.April, 1)
	if err := st.AppendEntries(ctx, "cust-1", []ledger.Entry{
		testEntry(day, "100", "0", "100"),
	}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := st.AppendEntries(ctx, "cust-1", []ledger.Entry{
		testEntry(day.AddDays(1), "0", "100", "0"),
	}); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	entries, err := st.Entries(ctx, "cust-1")
	if err != nil {
		t.Fatalf("failed to read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[1].Date.Equal(day.AddDays(1)) {
		t.Errorf("expected second entry on %s, got %s", day.AddDays(1), entries[1].Date)
	}
}

func TestReportRuns_Roundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)
	runs := []portfolio.ReportRun{
		{
			ID: "run-1", Status: "completed", Customers: 3,
			TotalInterest: decimal.RequireFromString("123.45"),
			StartedAt:     started, CompletedAt: started.Add(time.Second),
		},
		{
			ID: "run-2", Status: "failed", Error: "boom",
			TotalInterest: decimal.Zero,
			StartedAt:     started.Add(time.Hour), CompletedAt: started.Add(time.Hour + time.Second),
		},
	}
	for _, run := range runs {
		if err := st.SaveReportRun(ctx, run); err != nil {
			t.Fatalf("failed to save run %s: %v", run.ID, err)
		}
	}

	got, err := st.ListReportRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	// Newest first
	if got[0].ID != "run-2" || got[1].ID != "run-1" {
		t.Errorf("expected newest-first order, got %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Error != "boom" {
		t.Errorf("expected error text preserved, got %q", got[0].Error)
	}
	if !got[1].TotalInterest.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("expected interest 123.45, got %s", got[1].TotalInterest)
	}
	if !got[1].StartedAt.Equal(started) {
		t.Errorf("expected started %v, got %v", started, got[1].StartedAt)
	}
}
