/*
Package factory builds runtime configuration from JSON definitions.

PURPOSE:
  The interest rate is not hard-coded: operators tune it per deployment
  and, when a customer has negotiated terms, per customer. A RateBook is
  parsed once from JSON at startup (or over the API) and consulted on
  every analysis.

EXAMPLE:
  {
    "default_annual_rate_percent": 12,
    "customer_rates": {
      "10023": 15,
      "10407": 9.5
    }
  }

SEE ALSO:
  - api/handlers.go: per-request rate override via query parameter
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a configured rate is negative.
var ErrInvalidRate = errors.New("invalid rate: must be non-negative")

// RateBookJSON is the wire format for rate configuration.
type RateBookJSON struct {
	DefaultAnnualRatePercent decimal.Decimal            `json:"default_annual_rate_percent"`
	CustomerRates            map[string]decimal.Decimal `json:"customer_rates,omitempty"`
}

// RateBook resolves the annual interest rate for a customer.
type RateBook struct {
	defaultRate decimal.Decimal
	overrides   map[string]decimal.Decimal
}

// DefaultRateBook is the rate book used when no configuration is
// supplied: 12% per annum for everyone.
func DefaultRateBook() *RateBook {
	return &RateBook{
		defaultRate: decimal.NewFromInt(12),
		overrides:   map[string]decimal.Decimal{},
	}
}

// ParseRateBook parses and validates a JSON rate book.
func ParseRateBook(data []byte) (*RateBook, error) {
	var cfg RateBookJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rate book: %w", err)
	}
	if cfg.DefaultAnnualRatePercent.IsNegative() {
		return nil, fmt.Errorf("default rate %s: %w", cfg.DefaultAnnualRatePercent, ErrInvalidRate)
	}
	for id, rate := range cfg.CustomerRates {
		if rate.IsNegative() {
			return nil, fmt.Errorf("customer %s rate %s: %w", id, rate, ErrInvalidRate)
		}
	}

	overrides := make(map[string]decimal.Decimal, len(cfg.CustomerRates))
	for id, rate := range cfg.CustomerRates {
		overrides[id] = rate
	}
	return &RateBook{defaultRate: cfg.DefaultAnnualRatePercent, overrides: overrides}, nil
}

// RateFor returns the annual rate percent for a customer, falling back
// to the default rate.
func (rb *RateBook) RateFor(customerID string) decimal.Decimal {
	if rate, ok := rb.overrides[customerID]; ok {
		return rate
	}
	return rb.defaultRate
}

// DefaultRate returns the book-wide default annual rate percent.
func (rb *RateBook) DefaultRate() decimal.Decimal {
	return rb.defaultRate
}
