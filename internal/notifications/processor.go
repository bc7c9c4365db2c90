package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/queue"
)

// Processor drains the email queue: sends each confirmation email and records
// the outcome in email_logs. Send failures are retried by the queue; logging
// failures are not fatal.
type Processor struct {
	mailer *Mailer
	repo   *Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewProcessor creates an email job processor. mailer may be nil (no SMTP
// configured), in which case jobs are recorded as failed without a send.
func NewProcessor(mailer *Mailer, repo *Repository, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{mailer: mailer, repo: repo, queue: q, logger: logger}
}

// Run blocks dequeuing jobs until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopped")
			return
		default:
		}
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("email job failed", zap.Error(err), zap.String("job_id", job.ID))
			if err := p.queue.Retry(ctx, job); err != nil {
				p.logger.Error("retry enqueue failed", zap.Error(err), zap.String("job_id", job.ID))
			}
		}
	}
}

// Process executes one email job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if p.mailer == nil {
		p.logger.Warn("smtp not configured, dropping email",
			zap.String("recipient", payload.RecipientEmail),
			zap.String("registration_id", payload.RegistrationID))
		return p.repo.RecordFailed(ctx, payload.EventID, payload.RegistrationID, payload.EmailType,
			payload.RecipientEmail, payload.Subject, "smtp not configured")
	}

	if err := p.mailer.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if logErr := p.repo.RecordFailed(ctx, payload.EventID, payload.RegistrationID, payload.EmailType,
			payload.RecipientEmail, payload.Subject, err.Error()); logErr != nil {
			p.logger.Error("email log write failed", zap.Error(logErr))
		}
		return err
	}

	if err := p.repo.RecordSent(ctx, payload.EventID, payload.RegistrationID, payload.EmailType,
		payload.RecipientEmail, payload.Subject); err != nil {
		p.logger.Error("email log write failed", zap.Error(err), zap.String("job_id", job.ID))
	}
	p.logger.Info("confirmation email sent",
		zap.String("recipient", payload.RecipientEmail),
		zap.String("registration_id", payload.RegistrationID))
	return nil
}
