package models

import (
	"time"
)

// EmailLog records one outbound confirmation email attempt, written by the
// worker after the send completes or fails.
type EmailLog struct {
	ID             int64      `json:"id"`
	EventID        string     `json:"eventId"`
	RegistrationID string     `json:"registrationId"`
	EmailType      string     `json:"emailType"`
	RecipientEmail string     `json:"recipientEmail"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"` // sent | failed
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
