// Package notifications handles the fire-and-forget confirmation email
// pipeline: the request path only enqueues; the worker sends and records.
package notifications

import (
	"context"
	"fmt"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/queue"
)

// Notifier enqueues confirmation emails onto the Redis job queue.
type Notifier struct {
	queue *queue.Queue
}

// NewNotifier creates a notifier over the job queue.
func NewNotifier(q *queue.Queue) *Notifier {
	return &Notifier{queue: q}
}

// EnqueueConfirmation queues the registration confirmation email. The QR
// image itself is fetched by the participant from the registration endpoint;
// the email links to it.
func (n *Notifier) EnqueueConfirmation(ctx context.Context, reg *models.Registration, eventTitle string) error {
	subject := fmt.Sprintf("Registration confirmed: %s", eventTitle)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your registration for <b>%s</b> is confirmed.</p>"+
			"<p>Registration ID: %s</p>"+
			"<p>Present your QR code at the venue: /registrations/%s/qr</p>",
		reg.PrimaryContact.Name, eventTitle, reg.ID, reg.ID)
	return n.queue.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      "registration_confirmation",
		EventID:        reg.EventID,
		RegistrationID: reg.ID,
		RecipientEmail: reg.PrimaryContact.Email,
		RecipientName:  reg.PrimaryContact.Name,
		EventTitle:     eventTitle,
		Subject:        subject,
		BodyHTML:       body,
	})
}
