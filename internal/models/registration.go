package models

import (
	"encoding/json"
	"time"
)

// RegistrationKind distinguishes individual sign-ups from team sign-ups.
type RegistrationKind string

const (
	KindIndividual RegistrationKind = "individual"
	KindTeam       RegistrationKind = "team"
)

// OrganizationClass is derived once at registration time and frozen.
type OrganizationClass string

const (
	ClassMember   OrganizationClass = "member"
	ClassOutsider OrganizationClass = "outsider"
)

// Member is one participant inside a registration. RegisterNumber carries
// either a university register number or a visitor id.
type Member struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegisterNumber string `json:"registerNumber"`
}

// Registration is a participant (or team) sign-up for an event. Immutable
// after creation except for deletion.
type Registration struct {
	ID                   string            `json:"registrationId"`
	EventID              string            `json:"eventId"`
	Kind                 RegistrationKind  `json:"kind"`
	TeamName             string            `json:"teamName,omitempty"`
	PrimaryContact       Member            `json:"primaryContact"`
	Members              []Member          `json:"members"`
	OrganizationClass    OrganizationClass `json:"organizationClass"`
	QRToken              string            `json:"qrToken"`
	CustomFieldResponses json.RawMessage   `json:"customFieldResponses,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// ParticipantCount returns the number of participants this registration
// contributes to event totals and quota checks.
func (r *Registration) ParticipantCount() int {
	return len(r.Members)
}
