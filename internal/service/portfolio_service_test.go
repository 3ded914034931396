package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/testutil"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Enabled() bool { return true }
func (p *recordingPublisher) Close() error  { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// TestPortfolioService_GetDashboard tests valuation and snapshot recording.
//
// WHY: The dashboard is the main read path. Unpriceable holdings must be
// left out of the totals, and every successful valuation must leave a
// snapshot behind for the history chart.
func TestPortfolioService_GetDashboard(t *testing.T) {
	t.Run("values holdings and records a snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := testutil.NewMockStore().WithHoldings(
			testutil.NewHolding().WithTicker("AAPL").WithPosition(10, 150).Build(),
			testutil.NewHolding().WithTicker("NOPE").WithPosition(1, 1).Build(),
		)
		m := testutil.NewMockMarket().WithQuote("AAPL", "USD", 165, 1.2)
		svcs := testutil.NewTestServices(t, db, store, m, nil)

		dashboard, err := svcs.Portfolio.GetDashboard(context.Background())
		if err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}

		if len(dashboard.Rows) != 1 {
			t.Fatalf("Expected 1 row, got %d", len(dashboard.Rows))
		}
		if dashboard.Summary.TotalValue != 2227500 {
			t.Errorf("Expected total value 2227500, got %v", dashboard.Summary.TotalValue)
		}
		if dashboard.USDKRW.Rate != 1350 {
			t.Errorf("Expected USDKRW 1350, got %v", dashboard.USDKRW.Rate)
		}

		history, err := svcs.Portfolio.GetHistory(time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("GetHistory() returned unexpected error: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("Expected 1 snapshot, got %d", len(history))
		}
		if history[0].HoldingCount != 1 {
			t.Errorf("Expected holding count 1, got %d", history[0].HoldingCount)
		}
	})

	t.Run("no snapshot when nothing is valued", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, testutil.NewMockStore(), testutil.NewMockMarket(), nil)

		dashboard, err := svcs.Portfolio.GetDashboard(context.Background())
		if err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}
		if len(dashboard.Rows) != 0 || dashboard.Summary.TotalValue != 0 {
			t.Errorf("Expected empty dashboard, got %+v", dashboard.Summary)
		}

		history, _ := svcs.Portfolio.GetHistory(time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
		if len(history) != 0 {
			t.Errorf("Expected no snapshots, got %d", len(history))
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := testutil.NewMockStore()
		store.ListError = apperrors.ErrTransient
		svcs := testutil.NewTestServices(t, db, store, testutil.NewMockMarket(), nil)

		_, err := svcs.Portfolio.GetDashboard(context.Background())
		if !errors.Is(err, apperrors.ErrTransient) {
			t.Errorf("Expected ErrTransient, got %v", err)
		}
	})
}

// TestPortfolioService_HoldingWrites tests holding writes.
//
// WHY: Writes must never leave a stale holdings list in the cache, and each
// accepted write must emit exactly one change event. A duplicate must not
// reach the store at all.
func TestPortfolioService_HoldingWrites(t *testing.T) {
	t.Run("add normalizes, invalidates and publishes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := testutil.NewMockStore()
		pub := &recordingPublisher{}
		svcs := testutil.NewTestServices(t, db, store, testutil.NewMockMarket(), pub)
		ctx := context.Background()

		// prime the cache with an empty list
		if hs, _ := svcs.Portfolio.GetHoldings(ctx); len(hs) != 0 {
			t.Fatalf("Expected no holdings, got %d", len(hs))
		}

		created, err := svcs.Portfolio.AddHolding(ctx, model.Holding{Ticker: " btc ", Quantity: 1, AverageCost: 50000})
		if err != nil {
			t.Fatalf("AddHolding() returned unexpected error: %v", err)
		}
		if created.Ticker != "BTC-USD" || created.AssetClass != model.AssetCrypto {
			t.Errorf("Expected BTC-USD crypto, got %s %s", created.Ticker, created.AssetClass)
		}

		hs, err := svcs.Portfolio.GetHoldings(ctx)
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(hs) != 1 {
			t.Errorf("Expected cache to be invalidated and 1 holding listed, got %d", len(hs))
		}

		if got := pub.types(); len(got) != 1 || got[0] != events.HoldingAdded {
			t.Errorf("Expected one HOLDING_ADDED event, got %v", got)
		}
	})

	t.Run("duplicate ticker is rejected without a write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := testutil.NewMockStore().WithHoldings(testutil.NewHolding().WithTicker("TSLA").Build())
		pub := &recordingPublisher{}
		svcs := testutil.NewTestServices(t, db, store, testutil.NewMockMarket(), pub)

		_, err := svcs.Portfolio.AddHolding(context.Background(), model.Holding{Ticker: "tsla", Quantity: 1, AverageCost: 1})
		if !errors.Is(err, apperrors.ErrDuplicateTicker) {
			t.Errorf("Expected ErrDuplicateTicker, got %v", err)
		}
		if store.Writes != 0 {
			t.Errorf("Expected no writes, got %d", store.Writes)
		}
		if len(pub.types()) != 0 {
			t.Errorf("Expected no events, got %v", pub.types())
		}
	})

	t.Run("update and remove publish events", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		h := testutil.NewHolding().WithTicker("MSFT").Build()
		store := testutil.NewMockStore().WithHoldings(h)
		pub := &recordingPublisher{}
		svcs := testutil.NewTestServices(t, db, store, testutil.NewMockMarket(), pub)
		ctx := context.Background()

		if err := svcs.Portfolio.UpdateHolding(ctx, h.RecordID, 5, 300); err != nil {
			t.Fatalf("UpdateHolding() returned unexpected error: %v", err)
		}
		if err := svcs.Portfolio.RemoveHolding(ctx, h.RecordID); err != nil {
			t.Fatalf("RemoveHolding() returned unexpected error: %v", err)
		}

		got := pub.types()
		if len(got) != 2 || got[0] != events.HoldingUpdated || got[1] != events.HoldingRemoved {
			t.Errorf("Expected update then remove events, got %v", got)
		}

		hs, _ := svcs.Portfolio.GetHoldings(ctx)
		if len(hs) != 0 {
			t.Errorf("Expected no holdings after remove, got %d", len(hs))
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, testutil.NewMockStore(), testutil.NewMockMarket(), nil)

		err := svcs.Portfolio.RemoveHolding(context.Background(), testutil.MakeID())
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_CaptureSnapshot tests the scheduled snapshot.
func TestPortfolioService_CaptureSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := testutil.NewMockStore().WithHoldings(testutil.NewHolding().Build())
	m := testutil.NewMockMarket().WithQuote("AAPL", "USD", 165, 0)
	svcs := testutil.NewTestServices(t, db, store, m, nil)

	if err := svcs.Portfolio.CaptureSnapshot(context.Background()); err != nil {
		t.Fatalf("CaptureSnapshot() returned unexpected error: %v", err)
	}
	// a second run on the same day overwrites
	if err := svcs.Portfolio.CaptureSnapshot(context.Background()); err != nil {
		t.Fatalf("CaptureSnapshot() returned unexpected error: %v", err)
	}

	history, err := svcs.Portfolio.GetHistory(time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetHistory() returned unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 snapshot, got %d", len(history))
	}
}
