package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fendylo/study-snap/internal/analytics"
)

// AnalyticsHandler serves the per-topic performance report.
type AnalyticsHandler struct {
	logger    *slog.Logger
	analytics *analytics.Service
}

func NewAnalyticsHandler(logger *slog.Logger, service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:    logger.With("handler", "AnalyticsHandler"),
		analytics: service,
	}
}

// GET /api/analytics?noteId=
func (handler *AnalyticsHandler) Report(c *gin.Context) {
	identity := identityFromContext(c)
	report, err := handler.analytics.Report(c.Request.Context(), identity.UserID, c.Query("noteId"))
	if err != nil {
		handler.logger.Error("failed to build analytics report", "userID", identity.UserID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
