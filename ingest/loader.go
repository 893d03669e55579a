/*
Package ingest loads already-parsed customer ledgers into a store.

PURPOSE:
  The core engine assumes well-formed, validated input; this package is
  the gate. It reads the JSON produced by the upstream export pipeline
  (one object per customer with its parsed transactions), validates
  dates, amounts and ordering, and writes customers and entries to a
  portfolio.Store.

  Spreadsheet/TSV parsing and cleanup happen upstream and stay out of
  this repository; only the parsed-record handoff lives here.

BALANCE SIGNS:
  The upstream export reports balances as a magnitude plus a Dr/Cr
  marker. Dr means the customer owes; Cr means the company owes the
  customer. Entries keep a signed balance (Cr becomes negative), and a
  Cr opening balance is treated as zero debt for settlement purposes.
*/
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// =============================================================================
// WIRE FORMAT (matches the upstream export)
// =============================================================================

type customerJSON struct {
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	OpeningBalance struct {
		Amount decimal.Decimal `json:"amount"`
		Type   string          `json:"type"` // "Dr", "Cr" or empty
	} `json:"opening_balance"`
	Transactions []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	BalanceType string          `json:"balance_type"` // "Dr", "Cr" or empty
}

// =============================================================================
// LOADER
// =============================================================================

// LoadFile reads a customer-ledger JSON file into the store.
// Returns the number of customers loaded.
func LoadFile(ctx context.Context, path string, st portfolio.Store) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open ledger data: %w", err)
	}
	defer f.Close()
	return Load(ctx, f, st)
}

// Load reads customer-ledger JSON from r into the store.
func Load(ctx context.Context, r io.Reader, st portfolio.Store) (int, error) {
	var customers []customerJSON
	if err := json.NewDecoder(r).Decode(&customers); err != nil {
		return 0, fmt.Errorf("failed to decode ledger data: %w", err)
	}

	for _, c := range customers {
		if c.CustomerID == "" {
			return 0, fmt.Errorf("customer %q: missing customer_id", c.CustomerName)
		}

		entries, err := convertEntries(c)
		if err != nil {
			return 0, err
		}

		opening := c.OpeningBalance.Amount
		if c.OpeningBalance.Type == "Cr" {
			// A credit opening balance is money owed TO the customer;
			// there is no debt to seed.
			opening = decimal.Zero
		}

		if err := st.SaveCustomer(ctx, portfolio.Customer{
			ID:             c.CustomerID,
			Name:           c.CustomerName,
			OpeningBalance: opening,
		}); err != nil {
			return 0, fmt.Errorf("customer %s: %w", c.CustomerID, err)
		}
		if len(entries) > 0 {
			if err := st.AppendEntries(ctx, c.CustomerID, entries); err != nil {
				return 0, fmt.Errorf("customer %s: %w", c.CustomerID, err)
			}
		}
	}
	return len(customers), nil
}

func convertEntries(c customerJSON) ([]ledger.Entry, error) {
	entries := make([]ledger.Entry, 0, len(c.Transactions))
	var prev ledger.Date
	for i, tx := range c.Transactions {
		date, err := ledger.ParseDate(tx.Date)
		if err != nil {
			return nil, fmt.Errorf("customer %s: transaction %d: bad date %q: %w",
				c.CustomerID, i, tx.Date, err)
		}
		if tx.Debit.IsNegative() || tx.Credit.IsNegative() {
			return nil, fmt.Errorf("customer %s: transaction %d: negative amount: %w",
				c.CustomerID, i, ledger.ErrNegativeAmount)
		}
		if i > 0 && date.Before(prev) {
			return nil, fmt.Errorf("customer %s: transaction %d: %w",
				c.CustomerID, i, ledger.ErrOrderingViolation)
		}
		prev = date

		balance := tx.Balance
		if tx.BalanceType == "Cr" {
			balance = balance.Neg()
		}
		entries = append(entries, ledger.Entry{
			Date:    date,
			Debit:   tx.Debit,
			Credit:  tx.Credit,
			Balance: balance,
		})
	}
	return entries, nil
}
