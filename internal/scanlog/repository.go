// Package scanlog is the append-only audit trail of QR scan attempts.
// Rows are written for every attempt, valid or not, and never updated.
package scanlog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

// Repository handles qr_scan_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a scan log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts one audit row for a scan attempt.
func (r *Repository) Append(ctx context.Context, e *models.ScanLogEntry) error {
	const q = `INSERT INTO qr_scan_logs (registration_id, event_id, scanned_by, result, scanner_info)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, e.RegistrationID, e.EventID, e.ScannedBy, e.Result, e.ScannerInfo).
		Scan(&e.ID, &e.Timestamp)
}

// ListByEvent returns the scan history for an event, newest first, for
// forensic replay.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]models.ScanLogEntry, error) {
	const q = `SELECT id, registration_id, event_id, scanned_by, result, scanner_info, created_at
		FROM qr_scan_logs WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ScanLogEntry
	for rows.Next() {
		var e models.ScanLogEntry
		if err := rows.Scan(&e.ID, &e.RegistrationID, &e.EventID, &e.ScannedBy, &e.Result, &e.ScannerInfo, &e.Timestamp); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
