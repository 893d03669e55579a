/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS ON THE WIRE:
  All monetary fields are decimal.Decimal, which marshals as a quoted
  decimal string. Clients never see binary-float rounding.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain types these mirror
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// =============================================================================
// CUSTOMER TYPES
// =============================================================================

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CreateCustomerRequest is the request to create a customer.
type CreateCustomerRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// EntryDTO represents one ledger entry.
type EntryDTO struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// AppendEntriesRequest is the request to append ledger entries.
type AppendEntriesRequest struct {
	Entries []EntryDTO `json:"entries"`
}

// =============================================================================
// ANALYSIS TYPES
// =============================================================================

// DayStateDTO is one simulated day for a customer.
type DayStateDTO struct {
	Date               string          `json:"date"`
	DebitSum           decimal.Decimal `json:"debit_sum"`
	CreditSum          decimal.Decimal `json:"credit_sum"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	PaymentsApplied    decimal.Decimal `json:"payments_applied"`
	NewDebtAdded       decimal.Decimal `json:"new_debt_added"`
	DailyInterest      decimal.Decimal `json:"daily_interest"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
}

// DebtDTO is one tracked debt from the settlement engine.
type DebtDTO struct {
	ID              string          `json:"id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	DateCreated     string          `json:"date_created"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	PaymentDates    []string        `json:"payment_dates"`
	DaysToPay       *int            `json:"days_to_pay"` // null while open
	Settled         bool            `json:"settled"`
}

// MetricsDTO summarizes one customer's computed series.
type MetricsDTO struct {
	Days               int             `json:"days"`
	TotalDebits        decimal.Decimal `json:"total_debits"`
	TotalCredits       decimal.Decimal `json:"total_credits"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	AverageOutstanding decimal.Decimal `json:"average_outstanding"`
	PeakOutstanding    decimal.Decimal `json:"peak_outstanding"`
	FinalOutstanding   decimal.Decimal `json:"final_outstanding"`
	AvgPaybackDays     decimal.Decimal `json:"avg_payback_days"`
	AnnualRatePercent  decimal.Decimal `json:"annual_rate_percent"`
	FlatEstimate       decimal.Decimal `json:"flat_estimate"` // superseded figure, for comparison
	CompoundInterest   decimal.Decimal `json:"compound_interest"`
}

// CompanyDayDTO is one day of the company-wide rollup.
type CompanyDayDTO struct {
	Date               string          `json:"date"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	DailyInterest      decimal.Decimal `json:"daily_interest"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
}

// RollupDTO is the company-wide aggregate.
type RollupDTO struct {
	Customers        int             `json:"customers"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Days             []CompanyDayDTO `json:"days,omitempty"`
}

// ReportRunDTO records one scheduled recomputation.
type ReportRunDTO struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	Customers     int             `json:"customers"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	StartedAt     string          `json:"started_at"`
	CompletedAt   string          `json:"completed_at"`
}

// ScenarioDTO describes a loadable demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCustomerDTO(c portfolio.Customer) CustomerDTO {
	return CustomerDTO{ID: c.ID, Name: c.Name, OpeningBalance: c.OpeningBalance}
}

func toDayStateDTOs(rows []ledger.DailyRow, states []ledger.DayState) []DayStateDTO {
	dtos := make([]DayStateDTO, len(states))
	for i, s := range states {
		dto := DayStateDTO{
			Date:               s.Date.String(),
			OutstandingBalance: s.OutstandingBalance,
			PaymentsApplied:    s.PaymentsApplied,
			NewDebtAdded:       s.NewDebtAdded,
			DailyInterest:      s.DailyInterest,
			CumulativeInterest: s.CumulativeInterest,
		}
		if i < len(rows) {
			dto.DebitSum = rows[i].DebitSum
			dto.CreditSum = rows[i].CreditSum
		}
		dtos[i] = dto
	}
	return dtos
}

func toDebtDTOs(debts []ledger.Debt) []DebtDTO {
	dtos := make([]DebtDTO, len(debts))
	for i, d := range debts {
		dates := make([]string, len(d.PaymentDates))
		for j, pd := range d.PaymentDates {
			dates[j] = pd.String()
		}
		dtos[i] = DebtDTO{
			ID:              d.ID,
			OriginalAmount:  d.OriginalAmount,
			DateCreated:     d.DateCreated.String(),
			AmountPaid:      d.AmountPaid,
			AmountRemaining: d.AmountRemaining,
			PaymentDates:    dates,
			DaysToPay:       d.DaysToPay,
			Settled:         d.Settled(),
		}
	}
	return dtos
}

func toMetricsDTO(r portfolio.Report) MetricsDTO {
	return MetricsDTO{
		Days:               r.Metrics.Days,
		TotalDebits:        r.Metrics.TotalDebits,
		TotalCredits:       r.Metrics.TotalCredits,
		TotalInterest:      r.Metrics.TotalInterest,
		AverageOutstanding: r.Metrics.AverageOutstanding,
		PeakOutstanding:    r.Metrics.PeakOutstanding,
		FinalOutstanding:   r.Metrics.FinalOutstanding,
		AvgPaybackDays:     r.AvgPaybackDays,
		AnnualRatePercent:  r.AnnualRate,
		FlatEstimate:       r.FlatEstimate,
		CompoundInterest:   r.CompoundFigured,
	}
}

func toCompanyDayDTOs(days []ledger.CompanyDay) []CompanyDayDTO {
	dtos := make([]CompanyDayDTO, len(days))
	for i, d := range days {
		dtos[i] = CompanyDayDTO{
			Date:               d.Date.String(),
			OutstandingBalance: d.OutstandingBalance,
			DailyInterest:      d.DailyInterest,
			CumulativeInterest: d.CumulativeInterest,
		}
	}
	return dtos
}
