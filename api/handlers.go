/*
handlers.go - HTTP API handlers for the receivables engine

PURPOSE:
  Exposes the analysis engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Customers:
    GET    /api/customers               List all customers
    POST   /api/customers               Create customer
    GET    /api/customers/{id}          Get customer details
    POST   /api/customers/{id}/entries  Append ledger entries

  Analysis:
    GET    /api/customers/{id}/daily    Day-by-day simulation
    GET    /api/customers/{id}/debts    FIFO settlement breakdown
    GET    /api/customers/{id}/metrics  Summary metrics

  Company:
    GET    /api/company/daily           Combined daily series
    GET    /api/company/metrics         Portfolio rollup

  Reports:
    GET    /api/reports/runs            Scheduled recomputation history

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    GET    /api/scenarios/current       Currently loaded scenario
    POST   /api/scenarios/load          Load a demo scenario

QUERY PARAMETERS:
  rate:   annual rate percent override (default: rate book)
  from:   window start, YYYY-MM-DD (view filter, not a re-simulation)
  to:     window end, YYYY-MM-DD
  policy: excess payment policy, "drop" (default) or "carry_as_credit"

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, ordering violations
  - 404: Customer not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - portfolio/analyzer.go: The computation these handlers expose
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/factory"
	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store portfolio.Store
	Rates *factory.RateBook
	Log   zerolog.Logger

	// Track currently loaded scenario. Handlers run concurrently.
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and rate book.
func NewHandler(store portfolio.Store, rates *factory.RateBook, log zerolog.Logger) *Handler {
	if rates == nil {
		rates = factory.DefaultRateBook()
	}
	return &Handler{Store: store, Rates: rates, Log: log}
}

// analyzer builds an analyzer for one request's excess-payment policy.
func (h *Handler) analyzer(policy ledger.ExcessPolicy) *portfolio.Analyzer {
	return &portfolio.Analyzer{Store: h.Store, ExcessPayments: policy}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.Store.Customer(r.Context(), id)
	if errors.Is(err, portfolio.ErrCustomerNotFound) {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get customer", err)
		return
	}

	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// CreateCustomer creates a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.OpeningBalance.IsNegative() {
		writeError(w, http.StatusBadRequest, "Opening balance must be non-negative", nil)
		return
	}

	c := portfolio.Customer{ID: req.ID, Name: req.Name, OpeningBalance: req.OpeningBalance}
	if err := h.Store.SaveCustomer(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

// AppendEntries appends ledger entries to a customer.
func (h *Handler) AppendEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AppendEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]ledger.Entry, 0, len(req.Entries))
	var prev ledger.Date
	for i, e := range req.Entries {
		date, err := ledger.ParseDate(e.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid entry date (use YYYY-MM-DD)", err)
			return
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			writeError(w, http.StatusBadRequest, "Entry amounts must be non-negative", ledger.ErrNegativeAmount)
			return
		}
		if i > 0 && date.Before(prev) {
			writeError(w, http.StatusBadRequest, "Entries must be in date order", ledger.ErrOrderingViolation)
			return
		}
		prev = date
		entries = append(entries, ledger.Entry{
			Date: date, Debit: e.Debit, Credit: e.Credit, Balance: e.Balance,
		})
	}

	err := h.Store.AppendEntries(r.Context(), id, entries)
	if errors.Is(err, portfolio.ErrCustomerNotFound) {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to append entries", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// GetDaily returns the day-by-day simulation for a customer.
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rate, ok := h.rateParam(w, r, id)
	if !ok {
		return
	}
	policy, ok := policyParam(w, r)
	if !ok {
		return
	}

	report, err := h.analyzer(policy).Analyze(r.Context(), id, rate)
	if !h.writeAnalysisError(w, err) {
		return
	}

	rows, states := report.Rows, report.States
	if period, ok, valid := periodParam(w, r, rows); !valid {
		return
	} else if ok {
		rows = ledger.ClampRows(rows, period)
		states = ledger.ClampStates(states, period)
	}

	writeJSON(w, http.StatusOK, toDayStateDTOs(rows, states))
}

// GetDebts returns the FIFO settlement breakdown for a customer.
func (h *Handler) GetDebts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	policy, ok := policyParam(w, r)
	if !ok {
		return
	}

	report, err := h.analyzer(policy).Analyze(r.Context(), id, h.Rates.RateFor(id))
	if !h.writeAnalysisError(w, err) {
		return
	}

	writeJSON(w, http.StatusOK, toDebtDTOs(report.Debts))
}

// GetMetrics returns summary metrics for a customer.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rate, ok := h.rateParam(w, r, id)
	if !ok {
		return
	}
	policy, ok := policyParam(w, r)
	if !ok {
		return
	}

	report, err := h.analyzer(policy).Analyze(r.Context(), id, rate)
	if !h.writeAnalysisError(w, err) {
		return
	}

	writeJSON(w, http.StatusOK, toMetricsDTO(report))
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// CompanyDaily returns the combined daily series across all customers.
func (h *Handler) CompanyDaily(w http.ResponseWriter, r *http.Request) {
	rollup, ok := h.companyRollup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDayDTOs(rollup.Days))
}

// CompanyMetrics returns the portfolio-wide rollup.
func (h *Handler) CompanyMetrics(w http.ResponseWriter, r *http.Request) {
	rollup, ok := h.companyRollup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, RollupDTO{
		Customers:        rollup.Customers,
		TotalInterest:    rollup.TotalInterest,
		TotalOutstanding: rollup.TotalOutstanding,
	})
}

func (h *Handler) companyRollup(w http.ResponseWriter, r *http.Request) (portfolio.Rollup, bool) {
	policy, ok := policyParam(w, r)
	if !ok {
		return portfolio.Rollup{}, false
	}

	rateFor := h.Rates.RateFor
	if raw := r.URL.Query().Get("rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "Invalid rate", err)
			return portfolio.Rollup{}, false
		}
		rateFor = func(string) decimal.Decimal { return rate }
	}

	reports, err := h.analyzer(policy).AnalyzeAll(r.Context(), rateFor)
	if err != nil {
		h.writeAnalysisError(w, err)
		return portfolio.Rollup{}, false
	}
	return portfolio.CompanyRollup(reports), true
}

// =============================================================================
// REPORT RUN HANDLERS
// =============================================================================

// ListReportRuns returns the scheduled recomputation history.
func (h *Handler) ListReportRuns(w http.ResponseWriter, r *http.Request) {
	recorder, ok := h.Store.(portfolio.RunRecorder)
	if !ok {
		// Memory-backed deployments have no run history.
		writeJSON(w, http.StatusOK, []ReportRunDTO{})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := recorder.ListReportRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list report runs", err)
		return
	}

	dtos := make([]ReportRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = ReportRunDTO{
			ID:            run.ID,
			Status:        run.Status,
			Error:         run.Error,
			Customers:     run.Customers,
			TotalInterest: run.TotalInterest,
			StartedAt:     run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			CompletedAt:   run.CompletedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PARAMETER PARSING
// =============================================================================

// rateParam resolves the annual rate for a request: explicit ?rate=
// override, otherwise the rate book.
func (h *Handler) rateParam(w http.ResponseWriter, r *http.Request, customerID string) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get("rate")
	if raw == "" {
		return h.Rates.RateFor(customerID), true
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid rate", err)
		return decimal.Decimal{}, false
	}
	return rate, true
}

// policyParam parses ?policy=. Empty means drop (the default).
func policyParam(w http.ResponseWriter, r *http.Request) (ledger.ExcessPolicy, bool) {
	switch raw := r.URL.Query().Get("policy"); raw {
	case "":
		return ledger.ExcessDrop, true
	case string(ledger.ExcessDrop):
		return ledger.ExcessDrop, true
	case string(ledger.ExcessCarryAsCredit):
		return ledger.ExcessCarryAsCredit, true
	default:
		writeError(w, http.StatusBadRequest, "Invalid policy (use drop or carry_as_credit)", nil)
		return "", false
	}
}

// periodParam parses the optional from/to window. Returns the period,
// whether one was given, and whether parsing succeeded.
func periodParam(w http.ResponseWriter, r *http.Request, rows []ledger.DailyRow) (ledger.Period, bool, bool) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return ledger.Period{}, false, true
	}
	if len(rows) == 0 {
		return ledger.Period{}, false, true
	}

	period := ledger.Period{Start: rows[0].Date, End: rows[len(rows)-1].Date}
	if fromRaw != "" {
		from, err := ledger.ParseDate(fromRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return ledger.Period{}, false, false
		}
		period.Start = from
	}
	if toRaw != "" {
		to, err := ledger.ParseDate(toRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return ledger.Period{}, false, false
		}
		period.End = to
	}
	if period.End.Before(period.Start) {
		writeError(w, http.StatusBadRequest, "Window end is before start", nil)
		return ledger.Period{}, false, false
	}
	return period, true, true
}

// writeAnalysisError maps analysis errors to HTTP statuses. Returns
// true when there was no error and the caller should continue.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, portfolio.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "Customer not found", nil)
	case errors.Is(err, ledger.ErrOrderingViolation),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrNegativeRate):
		writeError(w, http.StatusBadRequest, "Ledger data rejected", err)
	default:
		h.Log.Error().Err(err).Msg("analysis failed")
		writeError(w, http.StatusInternalServerError, "Analysis failed", err)
	}
	return false
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
