package attendance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

// Repository is the pgx-backed attendance store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MarkAttendedIfAbsent performs the atomic scan-path transition. The
// conditional upsert is a single statement keyed on registration_id, so two
// concurrent scans cannot both observe absent: exactly one gets a row
// affected and reports true.
func (r *Repository) MarkAttendedIfAbsent(ctx context.Context, registrationID, eventID, markedBy string) (bool, error) {
	const q = `INSERT INTO attendance_status (registration_id, event_id, status, marked_at, marked_by)
		VALUES ($1, $2, 'attended', NOW(), $3)
		ON CONFLICT (registration_id) DO UPDATE
			SET status = 'attended', marked_at = NOW(), marked_by = $3
			WHERE attendance_status.status <> 'attended'`
	tag, err := r.pool.Exec(ctx, q, registrationID, eventID, markedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Upsert sets attendance state unconditionally (admin override path).
func (r *Repository) Upsert(ctx context.Context, registrationID, eventID string, status models.AttendanceStatus, markedBy string) error {
	const q = `INSERT INTO attendance_status (registration_id, event_id, status, marked_at, marked_by)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (registration_id) DO UPDATE
			SET status = $3, marked_at = NOW(), marked_by = $4`
	_, err := r.pool.Exec(ctx, q, registrationID, eventID, status, markedBy)
	return err
}

// SummaryByEvent returns registration and attended counts for an event.
func (r *Repository) SummaryByEvent(ctx context.Context, eventID string) (registered, attended int, err error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM registrations WHERE event_id = $1),
		(SELECT COUNT(*) FROM attendance_status WHERE event_id = $1 AND status = 'attended')`
	err = r.pool.QueryRow(ctx, q, eventID).Scan(&registered, &attended)
	return registered, attended, err
}

// GetByRegistration returns the attendance record for a registration, or nil
// when it has never been marked (implicit absent).
func (r *Repository) GetByRegistration(ctx context.Context, registrationID string) (*models.AttendanceRecord, error) {
	const q = `SELECT registration_id, event_id, status, marked_at, marked_by
		FROM attendance_status WHERE registration_id = $1`
	var rec models.AttendanceRecord
	err := r.pool.QueryRow(ctx, q, registrationID).Scan(&rec.RegistrationID, &rec.EventID, &rec.Status, &rec.MarkedAt, &rec.MarkedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
