package attendance

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

// ScanRequest is the body for POST /events/:eventId/scan-qr.
type ScanRequest struct {
	QRCodeData  string          `json:"qrCodeData" binding:"required"`
	ScannedBy   string          `json:"scannedBy"`
	ScannerInfo json.RawMessage `json:"scannerInfo"`
}

// BulkMarkRequest is the body for POST /events/:eventId/attendance.
type BulkMarkRequest struct {
	ParticipantIDs []string `json:"participantIds" binding:"required"`
	Status         string   `json:"status" binding:"required"`
	MarkedBy       string   `json:"markedBy"`
}

// Handler handles attendance HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Scan handles POST /events/:eventId/scan-qr. Duplicate scans are a 200 with
// status already_present; only genuinely bad payloads are errors.
func (h *Handler) Scan(c *gin.Context) {
	eventID := c.Param("eventId")
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "qrCodeData is required")
		return
	}

	outcome, err := h.service.Scan(c.Request.Context(), eventID, req.QRCodeData, req.ScannedBy, req.ScannerInfo)
	switch {
	case err == nil:
		response.OK(c, outcome)
	case errors.Is(err, qrtoken.ErrMalformed):
		response.BadRequest(c, "malformed qr code")
	case errors.Is(err, qrtoken.ErrExpired):
		response.BadRequest(c, "qr code has expired")
	case errors.Is(err, qrtoken.ErrSignatureMismatch):
		response.BadRequest(c, "qr code signature is invalid")
	case errors.Is(err, ErrEventMismatch):
		response.BadRequest(c, "qr code belongs to a different event")
	case errors.Is(err, ErrRegistrationNotFound):
		response.NotFound(c, "registration not found")
	default:
		h.logger.Error("scan failed", zap.Error(err), zap.String("event_id", eventID))
		response.Internal(c, "failed to process scan")
	}
}

// MarkBulk handles POST /events/:eventId/attendance (admin override).
func (h *Handler) MarkBulk(c *gin.Context) {
	eventID := c.Param("eventId")
	var req BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "participantIds and status are required")
		return
	}
	status := models.AttendanceStatus(req.Status)
	if status != models.StatusAttended && status != models.StatusAbsent {
		response.BadRequest(c, "status must be attended or absent")
		return
	}
	updated := h.service.MarkBulk(c.Request.Context(), eventID, req.ParticipantIDs, status, req.MarkedBy)
	response.OK(c, gin.H{"updated": updated})
}

// Summary handles GET /events/:eventId/attendance.
func (h *Handler) Summary(c *gin.Context) {
	eventID := c.Param("eventId")
	registered, attended, err := h.service.Summary(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("attendance summary failed", zap.Error(err), zap.String("event_id", eventID))
		response.Internal(c, "failed to load attendance summary")
		return
	}
	response.OK(c, gin.H{"registered": registered, "attended": attended})
}
