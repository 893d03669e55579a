/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:
  Provides pre-built customer ledgers that populate the store with
  realistic data for demos. Each scenario creates customers with
  opening balances and a transaction history exercising a specific
  behavior of the engine.

AVAILABLE SCENARIOS:
  prompt-payer:     Debits cleared within days, minimal interest
  slow-payer:       Long outstanding stretches, compounding visible
  partial-payments: One debt drained by several payments
  overpayment:      A payment exceeding outstanding debt

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "slow-payer"}

NOTE:
  Scenarios append to the store; use a fresh database for clean demos.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
  - ingest/loader.go: Production data loading
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "prompt-payer",
		Name:        "Prompt Payer",
		Description: "Debits cleared within a few days; negligible interest",
	},
	{
		ID:          "slow-payer",
		Name:        "Slow Payer",
		Description: "Balances outstanding for weeks; compounding clearly visible",
	},
	{
		ID:          "partial-payments",
		Name:        "Partial Payments",
		Description: "A single debt drained by several smaller payments",
	},
	{
		ID:          "overpayment",
		Name:        "Overpayment",
		Description: "A payment exceeding outstanding debt (excess dropped by default)",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
}

// LoadScenario loads a predefined scenario into the store.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var loader func(context.Context, *Handler) error
	switch req.ScenarioID {
	case "prompt-payer":
		loader = loadPromptPayerScenario
	case "slow-payer":
		loader = loadSlowPayerScenario
	case "partial-payments":
		loader = loadPartialPaymentsScenario
	case "overpayment":
		loader = loadOverpaymentScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := loader(r.Context(), h); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.scenarioMu.Lock()
	h.currentScenario = req.ScenarioID
	h.scenarioMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func seed(ctx context.Context, st portfolio.Store, c portfolio.Customer, entries []ledger.Entry) error {
	if err := st.SaveCustomer(ctx, c); err != nil {
		return err
	}
	return st.AppendEntries(ctx, c.ID, entries)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// The first entry's balance snapshot carries the opening balance only.
// The simulator seeds its running balance from that snapshot and applies
// the first day's debit itself.

func loadPromptPayerScenario(ctx context.Context, h *Handler) error {
	start := ledger.NewDate(2024, time.April, 1)
	return seed(ctx, h.Store,
		portfolio.Customer{ID: "demo-prompt", Name: "Prompt Fuels Ltd", OpeningBalance: decimal.Zero},
		[]ledger.Entry{
			{Date: start, Debit: amt("12000"), Credit: decimal.Zero, Balance: amt("0")},
			{Date: start.AddDays(2), Debit: decimal.Zero, Credit: amt("12000"), Balance: amt("0")},
			{Date: start.AddDays(10), Debit: amt("8500"), Credit: decimal.Zero, Balance: amt("8500")},
			{Date: start.AddDays(13), Debit: decimal.Zero, Credit: amt("8500"), Balance: amt("0")},
		})
}

func loadSlowPayerScenario(ctx context.Context, h *Handler) error {
	start := ledger.NewDate(2024, time.April, 1)
	return seed(ctx, h.Store,
		portfolio.Customer{ID: "demo-slow", Name: "Roadside Haulage", OpeningBalance: amt("15000")},
		[]ledger.Entry{
			{Date: start, Debit: amt("20000"), Credit: decimal.Zero, Balance: amt("15000")},
			{Date: start.AddDays(45), Debit: decimal.Zero, Credit: amt("10000"), Balance: amt("25000")},
			{Date: start.AddDays(90), Debit: decimal.Zero, Credit: amt("15000"), Balance: amt("10000")},
		})
}

func loadPartialPaymentsScenario(ctx context.Context, h *Handler) error {
	start := ledger.NewDate(2024, time.April, 1)
	return seed(ctx, h.Store,
		portfolio.Customer{ID: "demo-partial", Name: "Valley Transport", OpeningBalance: decimal.Zero},
		[]ledger.Entry{
			{Date: start, Debit: amt("9000"), Credit: decimal.Zero, Balance: amt("0")},
			{Date: start.AddDays(7), Debit: decimal.Zero, Credit: amt("3000"), Balance: amt("6000")},
			{Date: start.AddDays(14), Debit: decimal.Zero, Credit: amt("3000"), Balance: amt("3000")},
			{Date: start.AddDays(21), Debit: decimal.Zero, Credit: amt("3000"), Balance: amt("0")},
		})
}

func loadOverpaymentScenario(ctx context.Context, h *Handler) error {
	start := ledger.NewDate(2024, time.April, 1)
	return seed(ctx, h.Store,
		portfolio.Customer{ID: "demo-over", Name: "Eastside Motors", OpeningBalance: decimal.Zero},
		[]ledger.Entry{
			{Date: start, Debit: amt("4000"), Credit: decimal.Zero, Balance: amt("0")},
			{Date: start.AddDays(5), Debit: decimal.Zero, Credit: amt("6000"), Balance: amt("-2000")},
			{Date: start.AddDays(12), Debit: amt("2500"), Credit: decimal.Zero, Balance: amt("500")},
		})
}
