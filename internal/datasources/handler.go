package datasources

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// Handler serves the data source registry endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a data source handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the registry routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/datasources", h.list)
	r.POST("/datasources", h.create)
	r.DELETE("/datasources/:id", h.remove)
	r.POST("/datasources/:id/sync", h.sync)
}

type createRequest struct {
	Name          string `json:"name"`
	SourceType    string `json:"sourceType"`
	ConnectionURL string `json:"connectionUrl"`
	SyncFrequency string `json:"syncFrequency"`
	AutoAnalyze   bool   `json:"autoAnalyze"`
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sources, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataSources": sources})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be JSON", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	source, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		Name:          req.Name,
		SourceType:    req.SourceType,
		ConnectionURL: req.ConnectionURL,
		SyncFrequency: req.SyncFrequency,
		AutoAnalyze:   req.AutoAnalyze,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, source)
}

func (h *Handler) sync(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	source, err := h.Svc.Sync(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, source)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validationErr ValidationError
	switch {
	case errors.As(err, &validationErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", validationErr.Field+" "+validationErr.Issue,
			[]map[string]string{{"field": validationErr.Field, "issue": validationErr.Issue}})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "data source not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
