package store

import (
	"encoding/json"
	"fmt"

	"github.com/mkaline/recall/internal/model"
)

// SaveRun records a completed maintenance cycle.
func (db *DB) SaveRun(report *model.MaintenanceReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO maintenance_runs (started_at, finished_at, state, report)
		VALUES (?, ?, ?, ?)
	`, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(), string(report.State), string(blob))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recently started maintenance reports.
func (db *DB) RecentRuns(limit int) ([]*model.MaintenanceReport, error) {
	rows, err := db.Query(`
		SELECT report FROM maintenance_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.MaintenanceReport
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var r model.MaintenanceReport
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
