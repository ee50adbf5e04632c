package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// Handler serves the report endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a reports handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the report routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/overview", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	overview, err := h.Svc.Overview(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
		return
	}
	c.JSON(http.StatusOK, overview)
}
