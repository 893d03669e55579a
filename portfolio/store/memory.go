// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/petroledger/receivables-engine/ledger"
	"github.com/petroledger/receivables-engine/portfolio"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers map[string]portfolio.Customer
	entries   map[string][]ledger.Entry
	runs      []portfolio.ReportRun
}

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[string]portfolio.Customer),
		entries:   make(map[string][]ledger.Entry),
	}
}

func (m *Memory) SaveCustomer(_ context.Context, c portfolio.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return nil
}

func (m *Memory) Customer(_ context.Context, id string) (portfolio.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return portfolio.Customer{}, portfolio.ErrCustomerNotFound
	}
	return c, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]portfolio.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]portfolio.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AppendEntries(_ context.Context, customerID string, entries []ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customerID]; !ok {
		return portfolio.ErrCustomerNotFound
	}
	// Append preserves insertion order, which doubles as the same-date
	// tie-break for FIFO settlement.
	m.entries[customerID] = append(m.entries[customerID], entries...)
	return nil
}

func (m *Memory) Entries(_ context.Context, customerID string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.customers[customerID]; !ok {
		return nil, portfolio.ErrCustomerNotFound
	}
	out := make([]ledger.Entry, len(m.entries[customerID]))
	copy(out, m.entries[customerID])
	// Date order with insertion order as the same-date tie-break, the
	// same contract the sqlite store serves.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// REPORT RUN RECORDING (optional capability)
// =============================================================================

func (m *Memory) SaveReportRun(_ context.Context, run portfolio.ReportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) ListReportRuns(_ context.Context, limit int) ([]portfolio.ReportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]portfolio.ReportRun, len(m.runs))
	copy(runs, m.runs)
	// Most recent first.
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
