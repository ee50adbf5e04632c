// Package server assembles the HTTP surface.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/analyses"
	googleauth "insightgen-backend/internal/auth"
	"insightgen-backend/internal/chat"
	"insightgen-backend/internal/datasources"
	"insightgen-backend/internal/forecasts"
	"insightgen-backend/internal/preferences"
	"insightgen-backend/internal/reports"
	"insightgen-backend/internal/shared/config"
	"insightgen-backend/internal/shared/metrics"
	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/server/respond"
)

// llmRouteGroup buckets the endpoints that end in a model call.
const llmRouteGroup = "llm"

// RouterDeps carries the handlers wired by bootstrap.
type RouterDeps struct {
	Config             config.Config
	AnalysesHandler    *analyses.Handler
	ForecastsHandler   *forecasts.Handler
	ChatHandler        *chat.Handler
	DataSourcesHandler *datasources.Handler
	PreferencesHandler *preferences.Handler
	ReportsHandler     *reports.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(metrics.Render()))
	})

	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				llmRouteGroup: {Rate: 0.5, Burst: 5},
			},
			GroupFor: llmGroupFor,
		}),
	)

	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.AnalysesHandler != nil {
		deps.AnalysesHandler.RegisterRoutes(api)
	}
	if deps.ForecastsHandler != nil {
		deps.ForecastsHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}
	if deps.DataSourcesHandler != nil {
		deps.DataSourcesHandler.RegisterRoutes(api)
	}
	if deps.PreferencesHandler != nil {
		deps.PreferencesHandler.RegisterRoutes(api)
	}
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterRoutes(api)
	}

	return r
}

// llmGroupFor rate limits submissions, forecast generation, and chat sends.
func llmGroupFor(c *gin.Context) string {
	path := c.Request.URL.Path
	switch c.Request.Method {
	case http.MethodPost:
		if path == "/api/v1/analyses" || strings.HasSuffix(path, "/chat") {
			return llmRouteGroup
		}
	case http.MethodGet:
		if strings.HasSuffix(path, "/forecast") {
			return llmRouteGroup
		}
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
