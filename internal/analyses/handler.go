package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// maxUploadBytes caps the total multipart memory per submission.
const maxUploadBytes = 32 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc     *Service
	limiter *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		Svc:     svc,
		limiter: newPollLimiter(pollLimitWindow, nil),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.submitAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/wait", h.waitAnalysis)
	rg.GET("/analyses/:id/view", h.viewAnalysis)
}

func (h *Handler) submitAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}
	title := formValue(form.Value, "title")
	dataType := formValue(form.Value, "dataType")
	if dataType == "" {
		dataType = formValue(form.Value, "data_type")
	}
	fileHeaders := form.File["files"]
	if title == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		return
	}
	if len(fileHeaders) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}

	var total int64
	files := make([]UploadFile, 0, len(fileHeaders))
	closers := make([]interface{ Close() error }, 0, len(fileHeaders))
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()
	for _, header := range fileHeaders {
		total += header.Size
		if total > maxUploadBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "upload too large", nil)
			return
		}
		opened, err := header.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
			return
		}
		closers = append(closers, opened)
		files = append(files, UploadFile{Name: header.Filename, Reader: opened})
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Submit(ctx, SubmitInput{
		UserID:   userID,
		Title:    title,
		DataType: dataType,
		Files:    files,
	})
	if err != nil {
		if classifyFailure(err) == ErrorCodeValidation {
			respond.Error(c, http.StatusBadRequest, "validation_error", sanitizeError(err), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process your data, please try again", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId":   analysis.ID,
		"status":       analysis.Status,
		"dashboardUrl": "/Dashboard?id=" + analysis.ID,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no analysis selected", nil)
		return
	}

	if !h.limiter.Allow(userID, analysisID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "poll interval exceeded", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	respond.OK(c, analysisResponse(analysis))
}

func (h *Handler) waitAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no analysis selected", nil)
		return
	}

	analysis, err := h.Svc.Await(c.Request.Context(), userID, analysisID)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	respond.OK(c, analysisResponse(analysis))
}

func (h *Handler) viewAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no analysis selected", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	view, err := BuildView(analysis)
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			respond.Error(c, http.StatusConflict, "not_completed", "analysis is not completed", []map[string]string{
				{"field": "status", "issue": analysis.Status},
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build analysis view", nil)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	analyses, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	items := make([]gin.H, 0, len(analyses))
	for _, analysis := range analyses {
		items = append(items, analysisResponse(analysis))
	}
	respond.OK(c, gin.H{"analyses": items})
}

func (h *Handler) respondAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
	}
}

func analysisResponse(analysis Analysis) gin.H {
	resp := gin.H{
		"id":        analysis.ID,
		"title":     analysis.Title,
		"dataType":  analysis.DataType,
		"status":    analysis.Status,
		"fileNames": analysis.FileNames,
		"createdAt": analysis.CreatedAt,
	}
	if analysis.Status == StatusCompleted && analysis.Result != nil {
		resp["result"] = analysis.Result
	}
	if analysis.Status == StatusFailed {
		resp["errorCode"] = analysis.ErrorCode
		resp["errorMessage"] = analysis.ErrorMessage
	}
	return resp
}

func formValue(values map[string][]string, key string) string {
	if list, ok := values[key]; ok && len(list) > 0 {
		return list[0]
	}
	return ""
}
