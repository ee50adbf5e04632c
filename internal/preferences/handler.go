package preferences

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// Handler serves the preference endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a preferences handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the preference routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me/preferences", h.get)
	r.PUT("/me/preferences", h.put)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	prefs, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) put(c *gin.Context) {
	var prefs Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be JSON", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	saved, err := h.Svc.Save(c.Request.Context(), userID, prefs)
	if err != nil {
		if errors.Is(err, ErrInvalidDigestDay) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not save preferences", nil)
		return
	}
	c.JSON(http.StatusOK, saved)
}
