package forecasts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the forecast service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches forecast routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analyses/:id/forecast", h.getForecast)
	rg.DELETE("/analyses/:id/forecast", h.evictForecast)
}

func (h *Handler) getForecast(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no analysis selected", nil)
		return
	}

	forecast, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		switch {
		case errors.Is(err, analyses.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, analyses.ErrNotCompleted):
			respond.Error(c, http.StatusConflict, "not_completed", "analysis is not completed", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "forecast_failed", "unable to generate predictions, please try again", nil)
		}
		return
	}
	respond.OK(c, forecast)
}

func (h *Handler) evictForecast(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no analysis selected", nil)
		return
	}

	if err := h.Svc.Evict(c.Request.Context(), userID, analysisID); err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear forecast", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
