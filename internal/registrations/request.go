package registrations

import (
	"errors"
	"strings"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

var (
	// ErrMissingEventID maps to a plain 400; the event id is the one field
	// no payload shape may omit.
	ErrMissingEventID = errors.New("eventId is required")
	// ErrInvalidPayload covers every other malformed registration body.
	ErrInvalidPayload = errors.New("invalid registration payload")
)

// TeammateInput is one member entry in a new-style registration body.
type TeammateInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegisterNumber string `json:"registerNumber"`
}

// RegisterRequest is the body for POST /register. Two shapes are accepted:
// the new-style teammates array and the legacy discrete individual /
// team-leader fields. Normalize folds both into the canonical Input before
// anything downstream sees them.
type RegisterRequest struct {
	EventID              string            `json:"eventId"`
	TeamName             string            `json:"teamName"`
	Teammates            []TeammateInput   `json:"teammates"`
	CustomFieldResponses map[string]string `json:"custom_field_responses"`

	// legacy shape
	LegacyEventID            string `json:"event_id"`
	RegistrationType         string `json:"registration_type"`
	IndividualName           string `json:"individual_name"`
	IndividualEmail          string `json:"individual_email"`
	IndividualRegisterNumber string `json:"individual_register_number"`
	LegacyTeamName           string `json:"team_name"`
	TeamLeaderName           string `json:"team_leader_name"`
	TeamLeaderEmail          string `json:"team_leader_email"`
	TeamLeaderRegisterNumber string `json:"team_leader_register_number"`
}

// Input is the canonical internal registration shape.
type Input struct {
	EventID              string
	Kind                 models.RegistrationKind
	TeamName             string
	PrimaryContact       models.Member
	Members              []models.Member
	CustomFieldResponses map[string]string
}

// Normalize validates the request and folds either payload shape into Input.
// The first member is the primary contact (team leader for teams).
func (r *RegisterRequest) Normalize() (*Input, error) {
	eventID := r.EventID
	if eventID == "" {
		eventID = r.LegacyEventID
	}
	if eventID == "" {
		return nil, ErrMissingEventID
	}

	if len(r.Teammates) > 0 {
		return r.normalizeNewStyle(eventID)
	}
	return r.normalizeLegacy(eventID)
}

func (r *RegisterRequest) normalizeNewStyle(eventID string) (*Input, error) {
	members := make([]models.Member, 0, len(r.Teammates))
	for _, t := range r.Teammates {
		m := models.Member{
			Name:           strings.TrimSpace(t.Name),
			Email:          strings.TrimSpace(t.Email),
			RegisterNumber: strings.TrimSpace(t.RegisterNumber),
		}
		if m.Name == "" || m.Email == "" {
			return nil, ErrInvalidPayload
		}
		members = append(members, m)
	}

	kind := models.KindIndividual
	if r.TeamName != "" || len(members) > 1 {
		kind = models.KindTeam
	}
	return &Input{
		EventID:              eventID,
		Kind:                 kind,
		TeamName:             r.TeamName,
		PrimaryContact:       members[0],
		Members:              members,
		CustomFieldResponses: r.CustomFieldResponses,
	}, nil
}

func (r *RegisterRequest) normalizeLegacy(eventID string) (*Input, error) {
	switch r.RegistrationType {
	case "individual":
		m := models.Member{
			Name:           strings.TrimSpace(r.IndividualName),
			Email:          strings.TrimSpace(r.IndividualEmail),
			RegisterNumber: strings.TrimSpace(r.IndividualRegisterNumber),
		}
		if m.Name == "" || m.Email == "" {
			return nil, ErrInvalidPayload
		}
		return &Input{
			EventID:              eventID,
			Kind:                 models.KindIndividual,
			PrimaryContact:       m,
			Members:              []models.Member{m},
			CustomFieldResponses: r.CustomFieldResponses,
		}, nil
	case "team":
		leader := models.Member{
			Name:           strings.TrimSpace(r.TeamLeaderName),
			Email:          strings.TrimSpace(r.TeamLeaderEmail),
			RegisterNumber: strings.TrimSpace(r.TeamLeaderRegisterNumber),
		}
		if leader.Name == "" || leader.Email == "" {
			return nil, ErrInvalidPayload
		}
		return &Input{
			EventID:              eventID,
			Kind:                 models.KindTeam,
			TeamName:             r.LegacyTeamName,
			PrimaryContact:       leader,
			Members:              []models.Member{leader},
			CustomFieldResponses: r.CustomFieldResponses,
		}, nil
	default:
		return nil, ErrInvalidPayload
	}
}
