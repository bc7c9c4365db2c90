package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

const uniqueViolation = "23505"

// Repository is the pgx-backed registration store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registration repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a registration. A unique-constraint collision on
// (event_id, primary_email) becomes ErrDuplicateRegistration so retried
// requests cannot silently double-register.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	members, err := json.Marshal(reg.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	const q = `INSERT INTO registrations
		(id, event_id, kind, team_name, primary_name, primary_email, primary_register_number,
		 members, organization_class, qr_token, custom_field_responses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`
	err = r.pool.QueryRow(ctx, q,
		reg.ID, reg.EventID, reg.Kind, nullable(reg.TeamName),
		reg.PrimaryContact.Name, reg.PrimaryContact.Email, reg.PrimaryContact.RegisterNumber,
		members, reg.OrganizationClass, reg.QRToken, reg.CustomFieldResponses,
	).Scan(&reg.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateRegistration
	}
	return err
}

// GetByID returns a registration, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	const q = `SELECT id, event_id, kind, COALESCE(team_name, ''), primary_name, primary_email,
		primary_register_number, members, organization_class, qr_token, custom_field_responses, created_at
		FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ListByEvent returns all registrations for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	const q = `SELECT id, event_id, kind, COALESCE(team_name, ''), primary_name, primary_email,
		primary_register_number, members, organization_class, qr_token, custom_field_responses, created_at
		FROM registrations WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}

// Delete removes a registration; the attendance record goes with it via
// ON DELETE CASCADE. Returns false when no row existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var membersRaw []byte
	err := row.Scan(&reg.ID, &reg.EventID, &reg.Kind, &reg.TeamName,
		&reg.PrimaryContact.Name, &reg.PrimaryContact.Email, &reg.PrimaryContact.RegisterNumber,
		&membersRaw, &reg.OrganizationClass, &reg.QRToken, &reg.CustomFieldResponses, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(membersRaw, &reg.Members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	return &reg, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
