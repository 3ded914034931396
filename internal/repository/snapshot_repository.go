package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the portfolio_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertSnapshot stores the snapshot for its date, replacing any earlier
// snapshot taken the same day.
func (r *SnapshotRepository) UpsertSnapshot(s model.PortfolioSnapshot) error {
	query := `
		INSERT INTO portfolio_snapshot
			(date, total_value, total_cost, total_profit_loss, total_profit_loss_pct, holding_count, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_value = excluded.total_value,
			total_cost = excluded.total_cost,
			total_profit_loss = excluded.total_profit_loss,
			total_profit_loss_pct = excluded.total_profit_loss_pct,
			holding_count = excluded.holding_count,
			calculated_at = excluded.calculated_at
	`

	_, err := r.db.Exec(query,
		s.Date.UTC().Format("2006-01-02"),
		s.TotalValue,
		s.TotalCost,
		s.TotalProfitLoss,
		s.TotalProfitLossPct,
		s.HoldingCount,
		s.CalculatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio_snapshot: %w", err)
	}
	return nil
}

// GetSnapshots streams snapshots between startDate and endDate (inclusive),
// oldest first, to callback.
func (r *SnapshotRepository) GetSnapshots(
	startDate, endDate time.Time,
	callback func(model.PortfolioSnapshot) error,
) error {
	query := `
		SELECT date, total_value, total_cost, total_profit_loss, total_profit_loss_pct, holding_count, calculated_at
		FROM portfolio_snapshot
		WHERE date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to query portfolio_snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return err
		}
		if err := callback(s); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the most recent snapshot or apperrors.ErrNotFound.
func (r *SnapshotRepository) GetLatestSnapshot() (model.PortfolioSnapshot, error) {
	query := `
		SELECT date, total_value, total_cost, total_profit_loss, total_profit_loss_pct, holding_count, calculated_at
		FROM portfolio_snapshot
		ORDER BY date DESC
		LIMIT 1
	`

	s, err := scanSnapshot(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PortfolioSnapshot{}, fmt.Errorf("no snapshots: %w", apperrors.ErrNotFound)
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (model.PortfolioSnapshot, error) {
	var s model.PortfolioSnapshot
	var dateStr, calculatedAtStr string

	err := row.Scan(
		&dateStr,
		&s.TotalValue,
		&s.TotalCost,
		&s.TotalProfitLoss,
		&s.TotalProfitLossPct,
		&s.HoldingCount,
		&calculatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	if err != nil {
		return s, fmt.Errorf("failed to scan row: %w", err)
	}

	if s.Date, err = ParseTime(dateStr); err != nil {
		return s, fmt.Errorf("failed to parse date: %w", err)
	}
	if s.CalculatedAt, err = ParseTime(calculatedAtStr); err != nil {
		return s, fmt.Errorf("failed to parse calculated_at: %w", err)
	}
	return s, nil
}
