package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// ReportLogEntry records one report generation attempt.
type ReportLogEntry struct {
	ID          string              `json:"id"`
	Model       string              `json:"model"`
	Outcome     model.ReportOutcome `json:"outcome"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// ReportLogRepository provides data access methods for the report_log table.
type ReportLogRepository struct {
	db *sql.DB
}

// NewReportLogRepository creates a new repository instance.
func NewReportLogRepository(db *sql.DB) *ReportLogRepository {
	return &ReportLogRepository{db: db}
}

// InsertReportLog stores the outcome of a report and returns the new entry.
func (r *ReportLogRepository) InsertReportLog(report model.Report) (ReportLogEntry, error) {
	entry := ReportLogEntry{
		ID:          uuid.New().String(),
		Model:       report.Model,
		Outcome:     report.Outcome,
		GeneratedAt: report.GeneratedAt.UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO report_log (id, model, outcome, generated_at) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.Model, string(entry.Outcome), entry.GeneratedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ReportLogEntry{}, fmt.Errorf("failed to insert report_log: %w", err)
	}
	return entry, nil
}

// GetRecentReportLogs returns up to limit entries, newest first.
func (r *ReportLogRepository) GetRecentReportLogs(limit int) ([]ReportLogEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, model, outcome, generated_at FROM report_log ORDER BY generated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query report_log: %w", err)
	}
	defer rows.Close()

	entries := []ReportLogEntry{}
	for rows.Next() {
		var e ReportLogEntry
		var outcome, generatedAt string
		if err := rows.Scan(&e.ID, &e.Model, &outcome, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Outcome = model.ReportOutcome(outcome)
		if e.GeneratedAt, err = ParseTime(generatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse generated_at: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}
