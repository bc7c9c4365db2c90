// Package eligibility classifies participants as university members or
// outsiders and gates registrations against per-event outsider policy.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
)

var (
	// ErrOutsiderNotAllowed is returned for events closed to outsiders.
	ErrOutsiderNotAllowed = errors.New("outsiders are not allowed for this event")
	// ErrQuotaExceeded is returned when admitting the incoming participants
	// would exceed the event's outsider participant cap.
	ErrQuotaExceeded = errors.New("outsider participant quota exceeded")
)

// Visitor ids are issued with a reserved prefix; anything matching it is an
// outsider regardless of stored user state.
var visitorIDPattern = regexp.MustCompile(`(?i)^visitor[-_]?`)

// UserLookup resolves an email to a user record, nil when unknown.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Classify determines the organization class for a participant.
//
// The cascade is: a visitor-prefixed identifier wins outright; any other
// non-empty identifier means member; only when the payload carries no
// identifier at all is the user directory consulted for an outsider marker.
// The identifier wins over the directory because it is what the registration
// payload actually asserts; a stored record can be stale.
func Classify(ctx context.Context, identifier, email string, users UserLookup) (models.OrganizationClass, error) {
	if identifier != "" {
		if visitorIDPattern.MatchString(identifier) {
			return models.ClassOutsider, nil
		}
		return models.ClassMember, nil
	}
	if users != nil && email != "" {
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("lookup user %q: %w", email, err)
		}
		if u != nil && u.IsOutsider {
			return models.ClassOutsider, nil
		}
	}
	return models.ClassMember, nil
}

// Authorize gates a registration against event policy. currentOutsiderCount
// and incomingParticipants count participants, not registrations: a team of
// three outsiders consumes three quota slots.
func Authorize(event *models.Event, class models.OrganizationClass, currentOutsiderCount, incomingParticipants int) error {
	if class != models.ClassOutsider {
		return nil
	}
	if !event.OutsiderAllowed {
		return ErrOutsiderNotAllowed
	}
	if event.OutsiderMaxParticipants != nil &&
		currentOutsiderCount+incomingParticipants > *event.OutsiderMaxParticipants {
		return ErrQuotaExceeded
	}
	return nil
}
