package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// MockStore is an in-memory stand-in for the Notion client. It keeps the
// same duplicate rules as the real store.
//
// Example usage:
//
//	store := testutil.NewMockStore().WithHoldings(testutil.NewHolding().Build())
//	store.ListError = apperrors.ErrTransient
type MockStore struct {
	mu       sync.Mutex
	holdings []model.Holding
	scraps   []model.ScrapRecord

	ListError  error
	WriteError error
	Connection model.ConnectionStatus

	Writes int
}

// NewMockStore creates an empty, fully configured store.
func NewMockStore() *MockStore {
	return &MockStore{Connection: model.ConnectionStatus{APIKey: true, PortfolioDB: true, ScrapDB: true, FullyReady: true}}
}

// WithHoldings seeds holdings.
func (m *MockStore) WithHoldings(hs ...model.Holding) *MockStore {
	m.holdings = append(m.holdings, hs...)
	return m
}

// WithScraps seeds scraps.
func (m *MockStore) WithScraps(ss ...model.ScrapRecord) *MockStore {
	m.scraps = append(m.scraps, ss...)
	return m
}

func (m *MockStore) Status() model.ConnectionStatus { return m.Connection }

func (m *MockStore) ListHoldings(_ context.Context) ([]model.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	return append([]model.Holding{}, m.holdings...), nil
}

func (m *MockStore) AddHolding(_ context.Context, h model.Holding) (model.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return model.Holding{}, m.ListError
	}
	for _, e := range m.holdings {
		if strings.EqualFold(e.Ticker, h.Ticker) {
			return model.Holding{}, fmt.Errorf("%s: %w", h.Ticker, apperrors.ErrDuplicateTicker)
		}
	}
	if m.WriteError != nil {
		return model.Holding{}, m.WriteError
	}
	h.RecordID = MakeID()
	m.holdings = append(m.holdings, h)
	m.Writes++
	return h, nil
}

func (m *MockStore) UpdateHolding(_ context.Context, recordID string, quantity, averageCost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	for i := range m.holdings {
		if m.holdings[i].RecordID == recordID {
			m.holdings[i].Quantity = quantity
			m.holdings[i].AverageCost = averageCost
			m.Writes++
			return nil
		}
	}
	return fmt.Errorf("%s: %w", recordID, apperrors.ErrNotFound)
}

func (m *MockStore) RemoveHolding(_ context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	for i := range m.holdings {
		if m.holdings[i].RecordID == recordID {
			m.holdings = append(m.holdings[:i], m.holdings[i+1:]...)
			m.Writes++
			return nil
		}
	}
	return fmt.Errorf("%s: %w", recordID, apperrors.ErrNotFound)
}

func (m *MockStore) ListScraps(_ context.Context, limit int) ([]model.ScrapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := append([]model.ScrapRecord{}, m.scraps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScrapedAt.After(out[j].ScrapedAt) })
	limit = min(max(limit, 1), 100)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStore) AddScrap(_ context.Context, s model.ScrapRecord) (model.ScrapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Link != "" {
		for _, e := range m.scraps {
			if e.Link == s.Link {
				return model.ScrapRecord{}, fmt.Errorf("%s: %w", s.Link, apperrors.ErrDuplicateLink)
			}
		}
	}
	if m.WriteError != nil {
		return model.ScrapRecord{}, m.WriteError
	}
	s.RecordID = MakeID()
	m.scraps = append(m.scraps, s)
	m.Writes++
	return s, nil
}

func (m *MockStore) RemoveScrap(_ context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	for i := range m.scraps {
		if m.scraps[i].RecordID == recordID {
			m.scraps = append(m.scraps[:i], m.scraps[i+1:]...)
			m.Writes++
			return nil
		}
	}
	return fmt.Errorf("%s: %w", recordID, apperrors.ErrNotFound)
}
