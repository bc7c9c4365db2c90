package scanlog

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

// Handler exposes the scan audit trail to admins.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a scan log handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListByEvent handles GET /events/:eventId/scan-logs.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID := c.Param("eventId")
	entries, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("list scan logs failed", zap.Error(err), zap.String("event_id", eventID))
		response.Internal(c, "failed to list scan logs")
		return
	}
	response.OK(c, gin.H{"scanLogs": entries, "count": len(entries)})
}
