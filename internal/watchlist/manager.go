package watchlist

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"StockPercentile/internal/collector"
	"StockPercentile/internal/model"
)

var (
	ErrDuplicate = errors.New("symbol already on watchlist")
	ErrNotFound  = errors.New("symbol not on watchlist")
)

// Manager owns the watchlist and persists every change.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager loads the watchlist from filePath, seeding it with symbols when
// no file exists yet. An empty filePath keeps the watchlist in memory only.
func NewManager(filePath string, symbols []string) (*Manager, error) {
	var state *State
	if filePath != "" {
		var err error
		if state, err = LoadState(filePath); err != nil {
			return nil, err
		}
	}
	if state == nil {
		state = &State{Last: make(map[string]Entry)}
		for _, s := range symbols {
			s = collector.NormalizeSymbol(s)
			if s != "" && !slices.Contains(state.Symbols, s) {
				state.Symbols = append(state.Symbols, s)
			}
		}
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Symbols returns a copy of the watchlist in insertion order.
func (m *Manager) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Symbols)
}

// Add appends symbol to the watchlist.
func (m *Manager) Add(symbol string) (string, error) {
	symbol = collector.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", collector.ErrEmptySymbol
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.state.Symbols, symbol) {
		return symbol, ErrDuplicate
	}
	m.state.Symbols = append(m.state.Symbols, symbol)
	return symbol, m.save()
}

// Remove drops symbol and its last result.
func (m *Manager) Remove(symbol string) (string, error) {
	symbol = collector.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", collector.ErrEmptySymbol
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.state.Symbols, symbol)
	if i < 0 {
		return symbol, ErrNotFound
	}
	m.state.Symbols = slices.Delete(m.state.Symbols, i, i+1)
	delete(m.state.Last, symbol)
	return symbol, m.save()
}

// RecordBand stores the latest band for a refreshed report and returns the
// band from the previous refresh ("" when there was none).
func (m *Manager) RecordBand(r *model.Report) (model.Band, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.state.Last[r.Symbol].Band
	entry := Entry{Band: r.Interpretation.Band, RefreshedAt: r.GeneratedAt}
	if res := r.Percentiles[model.Window1Y]; res != nil {
		p := res.Percentile
		entry.Percentile1Y = &p
	}
	m.state.Last[r.Symbol] = entry
	return prev, m.save()
}

// Last returns the stored result for symbol.
func (m *Manager) Last(symbol string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.state.Last[collector.NormalizeSymbol(symbol)]
	return e, ok
}

// UpdatedAt reports when the watchlist last changed.
func (m *Manager) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdatedAt
}

// save must be called with m.mu held.
func (m *Manager) save() error {
	if m.filePath == "" {
		m.state.UpdatedAt = time.Now().UTC()
		return nil
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Printf("[ERROR] save watchlist: %v", err)
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}
