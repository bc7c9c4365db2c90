package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/eligibility"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("registration already exists for this event and email")
)

// EventStore is the slice of event persistence the service needs.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	AddParticipants(ctx context.Context, id string, delta int) error
	CountOutsiderParticipants(ctx context.Context, eventID string) (int, error)
}

// Store persists registrations.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Notifier enqueues the confirmation email. Failures are logged, never
// surfaced to the caller.
type Notifier interface {
	EnqueueConfirmation(ctx context.Context, reg *models.Registration, eventTitle string) error
}

// Service orchestrates registration creation: eligibility gate, token mint,
// atomic insert, advisory counter update, confirmation email.
type Service struct {
	events   EventStore
	users    eligibility.UserLookup
	store    Store
	codec    *qrtoken.Codec
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a registration service. notifier may be nil.
func NewService(events EventStore, users eligibility.UserLookup, store Store, codec *qrtoken.Codec, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{events: events, users: users, store: store, codec: codec, notifier: notifier, logger: logger}
}

// Register creates a registration from normalized input. Eligibility runs
// before any write; a rejected registration leaves no partial state.
func (s *Service) Register(ctx context.Context, in *Input) (*models.Registration, error) {
	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	class, err := eligibility.Classify(ctx, in.PrimaryContact.RegisterNumber, in.PrimaryContact.Email, s.users)
	if err != nil {
		return nil, fmt.Errorf("classify participant: %w", err)
	}
	if class == models.ClassOutsider {
		// Quota is enforced against a live recount of outsider participants,
		// never the advisory event counter.
		current, err := s.events.CountOutsiderParticipants(ctx, in.EventID)
		if err != nil {
			return nil, fmt.Errorf("count outsider participants: %w", err)
		}
		if err := eligibility.Authorize(event, class, current, len(in.Members)); err != nil {
			return nil, err
		}
	}

	registrationID := uuid.New().String()
	token := s.codec.Mint(registrationID, in.EventID, in.PrimaryContact.Email)
	rawToken, err := token.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode qr token: %w", err)
	}

	var custom json.RawMessage
	if len(in.CustomFieldResponses) > 0 {
		custom, err = json.Marshal(in.CustomFieldResponses)
		if err != nil {
			return nil, fmt.Errorf("marshal custom fields: %w", err)
		}
	}

	reg := &models.Registration{
		ID:                   registrationID,
		EventID:              in.EventID,
		Kind:                 in.Kind,
		TeamName:             in.TeamName,
		PrimaryContact:       in.PrimaryContact,
		Members:              in.Members,
		OrganizationClass:    class,
		QRToken:              rawToken,
		CustomFieldResponses: custom,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, err
	}

	// The counter is advisory: the registration stands even if the increment
	// fails. Log and continue.
	if err := s.events.AddParticipants(ctx, in.EventID, len(in.Members)); err != nil {
		s.logger.Error("participant counter increment failed",
			zap.Error(err),
			zap.String("event_id", in.EventID),
			zap.String("registration_id", registrationID))
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueConfirmation(ctx, reg, event.Title); err != nil {
			s.logger.Warn("confirmation email enqueue failed",
				zap.Error(err),
				zap.String("registration_id", registrationID))
		}
	}
	return reg, nil
}

// Get returns a registration by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

// ListByEvent returns the event roster.
func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	return s.store.ListByEvent(ctx, eventID)
}

// Delete removes a registration, its attendance record (cascade) and its
// contribution to the advisory counter.
func (s *Service) Delete(ctx context.Context, id string) error {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrRegistrationNotFound
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRegistrationNotFound
	}
	if err := s.events.AddParticipants(ctx, reg.EventID, -reg.ParticipantCount()); err != nil {
		s.logger.Error("participant counter decrement failed",
			zap.Error(err),
			zap.String("event_id", reg.EventID),
			zap.String("registration_id", id))
	}
	return nil
}
