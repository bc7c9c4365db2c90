package models

import "time"

// Event is the slice of event state this core consults. Events themselves are
// managed by the admin CRUD surface; this core reads policy fields and mutates
// only the advisory total_participants counter.
type Event struct {
	ID                      string    `json:"eventId"`
	Title                   string    `json:"title"`
	OutsiderAllowed         bool      `json:"outsiderAllowed"`
	OutsiderMaxParticipants *int      `json:"outsiderMaxParticipants,omitempty"`
	TotalParticipants       int       `json:"totalParticipants"`
	CreatedAt               time.Time `json:"createdAt"`
}
