package models

import "time"

// User is the slice of the user directory this core reads: the outsider
// marker used as a classification fallback when a registration payload
// carries no identifier. Account management lives with the auth provider.
type User struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsOutsider bool      `json:"isOutsider"`
	VisitorID  string    `json:"visitorId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
