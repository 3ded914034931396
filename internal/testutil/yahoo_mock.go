package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined responses per symbol instead of making actual API calls.
// Symbols without a configured response return an error.
type MockYahooClient struct {
	mu        sync.Mutex
	responses map[string]yahoo.Response
	profiles  map[string]yahoo.Profile
	errors    map[string]error
	// QueryCount tracks how many chart queries were made per symbol
	QueryCount map[string]int
	// ProfileCount tracks how many profile lookups were made per symbol
	ProfileCount map[string]int
	// ProfileError is returned from every profile lookup when set
	ProfileError error
}

// Compile-time check to ensure MockYahooClient implements yahoo.Client
var _ yahoo.Client = (*MockYahooClient)(nil)

// NewMockYahooClient creates an empty mock Yahoo client.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		responses:    make(map[string]yahoo.Response),
		profiles:     make(map[string]yahoo.Profile),
		errors:       make(map[string]error),
		QueryCount:   make(map[string]int),
		ProfileCount: make(map[string]int),
	}
}

// QueryChart returns the configured response for the symbol.
func (m *MockYahooClient) QueryChart(_ context.Context, symbol, _ string) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount[symbol]++
	if err, ok := m.errors[symbol]; ok {
		return yahoo.Response{}, err
	}
	resp, ok := m.responses[symbol]
	if !ok {
		return yahoo.Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return resp, nil
}

// QueryProfile returns the configured profile for the symbol, or an empty profile.
func (m *MockYahooClient) QueryProfile(_ context.Context, symbol string) (yahoo.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileCount[symbol]++
	if m.ProfileError != nil {
		return yahoo.Profile{}, m.ProfileError
	}
	return m.profiles[symbol], nil
}

// Calls returns how many chart queries were made for symbol.
func (m *MockYahooClient) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount[symbol]
}

// ProfileCalls returns how many profile lookups were made for symbol.
func (m *MockYahooClient) ProfileCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ProfileCount[symbol]
}

// WithError configures the mock to fail the symbol with err.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.errors[symbol] = err
	return m
}

// ClearError removes a configured failure so the symbol answers again.
func (m *MockYahooClient) ClearError(symbol string) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errors, symbol)
	return m
}

// WithResponse configures the mock to return resp for the symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.responses[symbol] = resp
	return m
}

// WithCloses configures a response with the given consecutive daily closes.
func (m *MockYahooClient) WithCloses(symbol, currency string, closes ...float64) *MockYahooClient {
	return m.WithResponse(symbol, CreateMockYahooResponse(symbol, currency, closes...))
}

// WithProfile configures the profile returned for the symbol.
func (m *MockYahooClient) WithProfile(symbol string, p yahoo.Profile) *MockYahooClient {
	m.profiles[symbol] = p
	return m
}

// WithEmptyResponse configures the mock to return a response with no data for the symbol.
func (m *MockYahooClient) WithEmptyResponse(symbol string) *MockYahooClient {
	m.responses[symbol] = yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{{Meta: yahoo.Meta{Symbol: symbol}}},
		},
	}
	return m
}

// CreateMockYahooResponse creates a mock Yahoo Finance API response with one bar
// per close, ending yesterday.
func CreateMockYahooResponse(symbol, currency string, closes ...float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	days := len(closes)

	timestamps := make([]int64, days)
	opens := make([]*float64, days)
	highs := make([]*float64, days)
	lows := make([]*float64, days)
	closePtrs := make([]*float64, days)
	volumes := make([]*int64, days)

	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		closePrice := closes[i]
		high := closePrice * 1.01
		low := closePrice * 0.99
		volume := int64(1000000 + i*10000)

		opens[i] = &closePrice
		highs[i] = &high
		lows[i] = &low
		closePtrs[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:   symbol,
						Currency: currency,
						LongName: symbol + " Inc.",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closePtrs,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}
