package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/eligibility"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

// Handler handles registration HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /register. Accepts both the teammates-array and the
// legacy discrete-field body shapes.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input, err := req.Normalize()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reg, err := h.service.Register(c.Request.Context(), input)
	switch {
	case err == nil:
		response.Created(c, reg)
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(c, "event not found")
	case errors.Is(err, eligibility.ErrOutsiderNotAllowed):
		response.Forbidden(c, "this event does not accept outsider registrations")
	case errors.Is(err, eligibility.ErrQuotaExceeded):
		response.Forbidden(c, "outsider participant limit reached for this event")
	case errors.Is(err, ErrDuplicateRegistration):
		response.Conflict(c, "a registration already exists for this event and email")
	default:
		h.logger.Error("register failed", zap.Error(err), zap.String("event_id", input.EventID))
		response.Internal(c, "failed to register")
	}
}

// GetQRImage handles GET /registrations/:id/qr. Returns the stored token
// rendered as a PNG for the UI to display.
func (h *Handler) GetQRImage(c *gin.Context) {
	reg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("get registration failed", zap.Error(err), zap.String("registration_id", c.Param("id")))
		response.Internal(c, "failed to load registration")
		return
	}
	png, err := qrtoken.RenderPNG(reg.QRToken, qrtoken.DefaultImageSize)
	if err != nil {
		h.logger.Error("render qr failed", zap.Error(err), zap.String("registration_id", reg.ID))
		response.Internal(c, "failed to render qr code")
		return
	}
	c.Data(200, "image/png", png)
}

// ListByEvent handles GET /events/:eventId/registrations (admin roster).
func (h *Handler) ListByEvent(c *gin.Context) {
	list, err := h.service.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err), zap.String("event_id", c.Param("eventId")))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, gin.H{"registrations": list, "count": len(list)})
}

// Delete handles DELETE /registrations/:id (admin). Removes the registration,
// its attendance record and its advisory counter contribution.
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		response.NoContent(c)
	case errors.Is(err, ErrRegistrationNotFound):
		response.NotFound(c, "registration not found")
	default:
		h.logger.Error("delete registration failed", zap.Error(err), zap.String("registration_id", c.Param("id")))
		response.Internal(c, "failed to delete registration")
	}
}
