// Package events reads event policy state and maintains the advisory
// participant counter. Event CRUD itself belongs to the admin surface.
package events

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

// Repository handles event lookups and counter updates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns an event, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const q = `SELECT id, title, outsider_allowed, outsider_max_participants, total_participants, created_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.Title, &e.OutsiderAllowed, &e.OutsiderMaxParticipants, &e.TotalParticipants, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AddParticipants adjusts the advisory total_participants counter. The value
// is informational only; quota enforcement recounts from registrations.
func (r *Repository) AddParticipants(ctx context.Context, id string, delta int) error {
	const q = `UPDATE events SET total_participants = GREATEST(0, total_participants + $2) WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, delta)
	return err
}

// CountOutsiderParticipants returns the authoritative outsider participant
// count for an event, summing team sizes rather than counting rows.
func (r *Repository) CountOutsiderParticipants(ctx context.Context, eventID string) (int, error) {
	const q = `SELECT COALESCE(SUM(jsonb_array_length(members)), 0)
		FROM registrations WHERE event_id = $1 AND organization_class = 'outsider'`
	var n int
	err := r.pool.QueryRow(ctx, q, eventID).Scan(&n)
	return n, err
}
