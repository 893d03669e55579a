/*
analyzer.go - Per-customer analysis and company rollup

PURPOSE:
  Runs the full core pipeline (daily ledger -> interest simulation ->
  FIFO settlement -> metrics) for one customer or for every customer at
  once. Each customer's simulation owns its own running state, so the
  all-customers path fans out one goroutine per customer.

ISOLATION:
  A Report is built entirely from one customer's entries. Nothing is
  shared between concurrent analyses except the read-only store.
*/
package portfolio

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/petroledger/receivables-engine/ledger"
)

// Report is the complete computed view of one customer.
type Report struct {
	Customer        Customer
	Rows            []ledger.DailyRow
	States          []ledger.DayState
	Debts           []ledger.Debt
	Metrics         ledger.Metrics
	AvgPaybackDays  decimal.Decimal
	AnnualRate      decimal.Decimal
	FlatEstimate    decimal.Decimal // superseded figure, shown for comparison
	CompoundFigured decimal.Decimal // same as Metrics.TotalInterest
}

// Rollup is the company-wide aggregate across customer reports.
type Rollup struct {
	Customers        int
	Days             []ledger.CompanyDay
	TotalInterest    decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// Analyzer computes reports from stored ledgers.
type Analyzer struct {
	Store Store

	// ExcessPayments applies to both the simulator and the settlement
	// engine. Zero value is ExcessDrop, matching the source system.
	ExcessPayments ledger.ExcessPolicy
}

// Analyze computes the full report for one customer at the given annual
// rate percent.
func (a *Analyzer) Analyze(ctx context.Context, customerID string, annualRatePercent decimal.Decimal) (Report, error) {
	customer, err := a.Store.Customer(ctx, customerID)
	if err != nil {
		return Report{}, err
	}
	entries, err := a.Store.Entries(ctx, customerID)
	if err != nil {
		return Report{}, err
	}

	rows, err := ledger.BuildDailyLedger(entries)
	if err != nil {
		return Report{}, fmt.Errorf("customer %s: %w", customerID, err)
	}
	states, err := ledger.Simulate(rows, annualRatePercent, ledger.SimulationOptions{
		ExcessPayments: a.ExcessPayments,
	})
	if err != nil {
		return Report{}, fmt.Errorf("customer %s: %w", customerID, err)
	}
	debts, err := ledger.SettleFIFO(entries, customer.OpeningBalance, ledger.SettlementOptions{
		ExcessPayments: a.ExcessPayments,
	})
	if err != nil {
		return Report{}, fmt.Errorf("customer %s: %w", customerID, err)
	}

	flat, err := ledger.FlatInterestEstimate(entries, annualRatePercent)
	if err != nil {
		return Report{}, fmt.Errorf("customer %s: %w", customerID, err)
	}

	metrics := ledger.SeriesMetrics(rows, states)
	return Report{
		Customer:        customer,
		Rows:            rows,
		States:          states,
		Debts:           debts,
		Metrics:         metrics,
		AvgPaybackDays:  ledger.AveragePaybackDays(debts),
		AnnualRate:      annualRatePercent,
		FlatEstimate:    flat,
		CompoundFigured: metrics.TotalInterest,
	}, nil
}

// AnalyzeAll computes a report for every customer, one goroutine per
// customer. rateFor supplies the annual rate per customer (a rate book
// or a flat rate). Results are sorted by customer ID for determinism.
func (a *Analyzer) AnalyzeAll(ctx context.Context, rateFor func(customerID string) decimal.Decimal) ([]Report, error) {
	customers, err := a.Store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range customers {
		i, c := i, c
		g.Go(func() error {
			r, err := a.Analyze(gctx, c.ID, rateFor(c.ID))
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Customer.ID < reports[j].Customer.ID
	})
	return reports, nil
}

// CompanyRollup combines customer reports into one company-wide series.
func CompanyRollup(reports []Report) Rollup {
	series := make([][]ledger.DayState, 0, len(reports))
	totalInterest := decimal.Zero
	totalOutstanding := decimal.Zero
	for _, r := range reports {
		series = append(series, r.States)
		totalInterest = totalInterest.Add(r.Metrics.TotalInterest)
		totalOutstanding = totalOutstanding.Add(r.Metrics.FinalOutstanding)
	}
	return Rollup{
		Customers:        len(reports),
		Days:             ledger.CombineDaily(series...),
		TotalInterest:    totalInterest,
		TotalOutstanding: totalOutstanding,
	}
}
