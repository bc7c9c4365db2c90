package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordSent inserts a successful send.
func (r *Repository) RecordSent(ctx context.Context, eventID, registrationID, emailType, recipient, subject string) error {
	const q = `INSERT INTO email_logs (event_id, registration_id, email_type, recipient_email, subject, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, 'sent', NOW())`
	_, err := r.pool.Exec(ctx, q, eventID, registrationID, emailType, recipient, subject)
	return err
}

// RecordFailed inserts a failed send with its error message.
func (r *Repository) RecordFailed(ctx context.Context, eventID, registrationID, emailType, recipient, subject, errMsg string) error {
	const q = `INSERT INTO email_logs (event_id, registration_id, email_type, recipient_email, subject, status, error_message)
		VALUES ($1, $2, $3, $4, $5, 'failed', $6)`
	_, err := r.pool.Exec(ctx, q, eventID, registrationID, emailType, recipient, subject, errMsg)
	return err
}

// ListByEvent returns email logs for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]models.EmailLog, error) {
	const q = `SELECT id, event_id, registration_id, email_type, recipient_email,
		COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at
		FROM email_logs WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		var sentAt *time.Time
		if err := rows.Scan(&el.ID, &el.EventID, &el.RegistrationID, &el.EmailType, &el.RecipientEmail,
			&el.Subject, &el.Status, &sentAt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		el.SentAt = sentAt
		list = append(list, el)
	}
	return list, rows.Err()
}
