package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// Handler serves the per-analysis chat endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a chat handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the chat routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/analyses/:id/chat", h.transcript)
	r.POST("/analyses/:id/chat", h.send)
}

func (h *Handler) transcript(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messages, err := h.Svc.Transcript(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendRequest struct {
	Message string `json:"message"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be JSON with a message field", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	messages, err := h.Svc.Send(c.Request.Context(), userID, c.Param("id"), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		respond.Error(c, http.StatusBadRequest, "validation_error", "message must not be empty", nil)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "reply_pending", "a reply is already being generated for this conversation", nil)
	case errors.Is(err, analyses.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, analyses.ErrNotCompleted):
		respond.Error(c, http.StatusConflict, "not_completed", "analysis is not completed yet", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
