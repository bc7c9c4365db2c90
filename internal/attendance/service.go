// Package attendance implements the scan state machine: a registration moves
// from absent to attended exactly once through scans, with every attempt
// recorded in the append-only audit log.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
)

var (
	ErrEventMismatch        = errors.New("qr token was issued for a different event")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// DefaultScanner is recorded when a scan request carries no scanner identity.
const DefaultScanner = "scanner"

// ScanStatus is the outcome of a successful scan request.
type ScanStatus string

const (
	MarkedPresent  ScanStatus = "marked_present"
	AlreadyPresent ScanStatus = "already_present"
)

// Participant is display info for the scanner UI.
type Participant struct {
	RegistrationID string                 `json:"registrationId"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Kind           models.RegistrationKind `json:"kind"`
	TeamName       string                 `json:"teamName,omitempty"`
}

// ScanOutcome is returned for both first and duplicate scans; a duplicate is
// an expected outcome, not an error.
type ScanOutcome struct {
	Status      ScanStatus  `json:"status"`
	Participant Participant `json:"participant"`
}

// RegistrationStore is the slice of registration persistence scans need.
type RegistrationStore interface {
	GetByID(ctx context.Context, id string) (*models.Registration, error)
}

// Store persists attendance state. MarkAttendedIfAbsent must be atomic at
// the storage layer: under concurrent scans of one registration at most one
// caller may see true.
type Store interface {
	MarkAttendedIfAbsent(ctx context.Context, registrationID, eventID, markedBy string) (bool, error)
	Upsert(ctx context.Context, registrationID, eventID string, status models.AttendanceStatus, markedBy string) error
	SummaryByEvent(ctx context.Context, eventID string) (registered, attended int, err error)
}

// AuditLog appends scan attempts.
type AuditLog interface {
	Append(ctx context.Context, e *models.ScanLogEntry) error
}

// Service coordinates token verification, attendance marking and auditing.
type Service struct {
	codec         *qrtoken.Codec
	registrations RegistrationStore
	store         Store
	audit         AuditLog
	logger        *zap.Logger
}

// NewService creates an attendance service.
func NewService(codec *qrtoken.Codec, registrations RegistrationStore, store Store, audit AuditLog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{codec: codec, registrations: registrations, store: store, audit: audit, logger: logger}
}

// Scan verifies a raw QR payload against an event and marks attendance.
// Every attempt, valid or not, writes one audit entry before returning.
func (s *Service) Scan(ctx context.Context, eventID, rawPayload, scannedBy string, scannerInfo json.RawMessage) (*ScanOutcome, error) {
	if scannedBy == "" {
		scannedBy = DefaultScanner
	}

	token, err := qrtoken.Decode(rawPayload)
	if err != nil {
		s.logScan(ctx, nil, eventID, scannedBy, models.ScanInvalid, scannerInfo)
		return nil, qrtoken.ErrMalformed
	}
	if err := s.codec.Verify(token); err != nil {
		s.logScan(ctx, optionalID(token.RegistrationID), eventID, scannedBy, models.ScanInvalid, scannerInfo)
		return nil, err
	}
	if token.EventID != eventID {
		s.logScan(ctx, optionalID(token.RegistrationID), eventID, scannedBy, models.ScanInvalid, scannerInfo)
		return nil, ErrEventMismatch
	}

	reg, err := s.registrations.GetByID(ctx, token.RegistrationID)
	if err != nil {
		return nil, fmt.Errorf("lookup registration: %w", err)
	}
	if reg == nil {
		s.logScan(ctx, optionalID(token.RegistrationID), eventID, scannedBy, models.ScanInvalid, scannerInfo)
		return nil, ErrRegistrationNotFound
	}

	marked, err := s.store.MarkAttendedIfAbsent(ctx, reg.ID, eventID, scannedBy)
	if err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	outcome := &ScanOutcome{
		Status: MarkedPresent,
		Participant: Participant{
			RegistrationID: reg.ID,
			Name:           reg.PrimaryContact.Name,
			Email:          reg.PrimaryContact.Email,
			Kind:           reg.Kind,
			TeamName:       reg.TeamName,
		},
	}
	result := models.ScanSuccess
	if !marked {
		outcome.Status = AlreadyPresent
		result = models.ScanDuplicate
	}
	s.logScan(ctx, &reg.ID, eventID, scannedBy, result, scannerInfo)
	return outcome, nil
}

// MarkBulk is the admin override: upserts the given status for each
// registration regardless of current state, so it can revert attended to
// absent. Individual failures are logged and skipped. Returns the number of
// registrations updated.
func (s *Service) MarkBulk(ctx context.Context, eventID string, registrationIDs []string, status models.AttendanceStatus, markedBy string) int {
	if markedBy == "" {
		markedBy = "admin"
	}
	updated := 0
	for _, id := range registrationIDs {
		reg, err := s.registrations.GetByID(ctx, id)
		if err != nil || reg == nil || reg.EventID != eventID {
			s.logger.Warn("bulk mark skipped",
				zap.Error(err),
				zap.String("registration_id", id),
				zap.String("event_id", eventID))
			continue
		}
		if err := s.store.Upsert(ctx, id, eventID, status, markedBy); err != nil {
			s.logger.Warn("bulk mark upsert failed",
				zap.Error(err),
				zap.String("registration_id", id))
			continue
		}
		updated++
	}
	return updated
}

// Summary returns registered and attended counts for an event.
func (s *Service) Summary(ctx context.Context, eventID string) (registered, attended int, err error) {
	return s.store.SummaryByEvent(ctx, eventID)
}

func (s *Service) logScan(ctx context.Context, registrationID *string, eventID, scannedBy string, result models.ScanResult, scannerInfo json.RawMessage) {
	entry := &models.ScanLogEntry{
		RegistrationID: registrationID,
		EventID:        eventID,
		ScannedBy:      scannedBy,
		Result:         result,
		ScannerInfo:    scannerInfo,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("scan audit write failed",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("result", string(result)))
	}
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
