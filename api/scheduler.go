/*
scheduler.go - Scheduled company-report recomputation

PURPOSE:
  Periodically recomputes the company-wide rollup and records the run,
  so operators can watch total interest and outstanding balances drift
  without hitting the API. Runs are persisted through the store's
  RunRecorder capability when it has one (sqlite does, memory does not).

DESIGN:
  - cron-driven; the schedule is a standard cron expression
  - One run at a time: a skipped tick is logged, not queued
  - A run that fails is recorded as "failed" with the error text

USAGE:
  sched := NewReportScheduler(store, rates, log)
  sched.Start("0 * * * *") // hourly
  // ... later
  sched.Stop()

SEE ALSO:
  - portfolio/store.go: RunRecorder interface
  - handlers.go: ListReportRuns endpoint
*/
package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/petroledger/receivables-engine/factory"
	"github.com/petroledger/receivables-engine/portfolio"
)

// ReportScheduler recomputes the company rollup on a cron schedule.
type ReportScheduler struct {
	Store portfolio.Store
	Rates *factory.RateBook
	Log   zerolog.Logger

	cron    *cron.Cron
	running chan struct{}
}

// NewReportScheduler creates a scheduler over the given store.
func NewReportScheduler(store portfolio.Store, rates *factory.RateBook, log zerolog.Logger) *ReportScheduler {
	if rates == nil {
		rates = factory.DefaultRateBook()
	}
	return &ReportScheduler{
		Store:   store,
		Rates:   rates,
		Log:     log.With().Str("component", "scheduler").Logger(),
		cron:    cron.New(),
		running: make(chan struct{}, 1),
	}
}

// Start registers the schedule and begins ticking.
func (rs *ReportScheduler) Start(spec string) error {
	_, err := rs.cron.AddFunc(spec, rs.tick)
	if err != nil {
		return err
	}
	rs.cron.Start()
	rs.Log.Info().Str("schedule", spec).Msg("report scheduler started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (rs *ReportScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
	rs.running <- struct{}{} // wait for any in-flight run
	<-rs.running
	rs.Log.Info().Msg("report scheduler stopped")
}

// RunNow triggers an immediate recomputation (for admin/testing).
func (rs *ReportScheduler) RunNow() {
	rs.tick()
}

func (rs *ReportScheduler) tick() {
	select {
	case rs.running <- struct{}{}:
		defer func() { <-rs.running }()
	default:
		rs.Log.Warn().Msg("previous run still in flight, skipping tick")
		return
	}

	ctx := context.Background()
	started := time.Now().UTC()
	run := portfolio.ReportRun{
		ID:        uuid.NewString(),
		Status:    "completed",
		StartedAt: started,
	}

	analyzer := &portfolio.Analyzer{Store: rs.Store}
	reports, err := analyzer.AnalyzeAll(ctx, rs.Rates.RateFor)
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		rs.Log.Error().Err(err).Msg("scheduled recomputation failed")
	} else {
		rollup := portfolio.CompanyRollup(reports)
		run.Customers = rollup.Customers
		run.TotalInterest = rollup.TotalInterest
		rs.Log.Info().
			Int("customers", rollup.Customers).
			Str("total_interest", rollup.TotalInterest.String()).
			Str("total_outstanding", rollup.TotalOutstanding.String()).
			Msg("company report recomputed")
	}
	run.CompletedAt = time.Now().UTC()

	recorder, ok := rs.Store.(portfolio.RunRecorder)
	if !ok {
		return
	}
	if err := recorder.SaveReportRun(ctx, run); err != nil {
		rs.Log.Error().Err(err).Str("run_id", run.ID).Msg("failed to record report run")
	}
}
