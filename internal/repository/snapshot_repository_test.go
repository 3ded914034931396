package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/testutil"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSnapshotRepository_UpsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	snaps := []model.PortfolioSnapshot{
		testutil.NewSnapshot().WithDate(day("2026-03-01")).WithTotals(1000, 900).Build(),
		testutil.NewSnapshot().WithDate(day("2026-03-02")).WithTotals(1100, 900).Build(),
		testutil.NewSnapshot().WithDate(day("2026-03-03")).WithTotals(1050, 900).Build(),
	}
	for _, s := range snaps {
		if err := repo.UpsertSnapshot(s); err != nil {
			t.Fatalf("UpsertSnapshot() error = %v", err)
		}
	}

	t.Run("range is inclusive and ordered", func(t *testing.T) {
		var got []model.PortfolioSnapshot
		err := repo.GetSnapshots(day("2026-03-02"), day("2026-03-03"), func(s model.PortfolioSnapshot) error {
			got = append(got, s)
			return nil
		})
		if err != nil {
			t.Fatalf("GetSnapshots() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 snapshots, got %d", len(got))
		}
		if !got[0].Date.Equal(day("2026-03-02")) || got[1].TotalValue != 1050 {
			t.Errorf("Unexpected snapshots %+v", got)
		}
	})

	t.Run("same day replaces", func(t *testing.T) {
		s := testutil.NewSnapshot().WithDate(day("2026-03-03")).WithTotals(1200, 900).Build()
		if err := repo.UpsertSnapshot(s); err != nil {
			t.Fatalf("UpsertSnapshot() error = %v", err)
		}

		latest, err := repo.GetLatestSnapshot()
		if err != nil {
			t.Fatalf("GetLatestSnapshot() error = %v", err)
		}
		if latest.TotalValue != 1200 {
			t.Errorf("Expected 1200, got %v", latest.TotalValue)
		}

		count := 0
		_ = repo.GetSnapshots(day("2026-01-01"), day("2026-12-31"), func(model.PortfolioSnapshot) error {
			count++
			return nil
		})
		if count != 3 {
			t.Errorf("Expected 3 snapshots after upsert, got %d", count)
		}
	})

	t.Run("callback error stops iteration", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := repo.GetSnapshots(day("2026-01-01"), day("2026-12-31"), func(model.PortfolioSnapshot) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("Expected stop after 1 call, got %v after %d", err, calls)
		}
	})
}

func TestSnapshotRepository_LatestEmpty(t *testing.T) {
	repo := repository.NewSnapshotRepository(testutil.SetupTestDB(t))

	_, err := repo.GetLatestSnapshot()
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReportLogRepository(t *testing.T) {
	repo := repository.NewReportLogRepository(testutil.SetupTestDB(t))
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, outcome := range []model.ReportOutcome{model.ReportQuotaExhausted, model.ReportOK, model.ReportOK} {
		_, err := repo.InsertReportLog(model.Report{Model: "m", Outcome: outcome, GeneratedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("InsertReportLog() error = %v", err)
		}
	}

	entries, err := repo.GetRecentReportLogs(2)
	if err != nil {
		t.Fatalf("GetRecentReportLogs() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if !entries[0].GeneratedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Expected newest first, got %v", entries[0].GeneratedAt)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("Expected distinct generated ids")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-03-02", false},
		{"2026-03-02T10:00:00Z", false},
		{"2026-03-02 10:00:00", false},
		{"02/03/2026", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := repository.ParseTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
