// Package bootstrap wires configuration into the running application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/analyses"
	googleauth "insightgen-backend/internal/auth"
	"insightgen-backend/internal/chat"
	"insightgen-backend/internal/datasources"
	"insightgen-backend/internal/forecasts"
	"insightgen-backend/internal/llm"
	anthropicllm "insightgen-backend/internal/llm/anthropic"
	"insightgen-backend/internal/preferences"
	"insightgen-backend/internal/queue"
	"insightgen-backend/internal/reports"
	"insightgen-backend/internal/shared/config"
	"insightgen-backend/internal/shared/server"
	"insightgen-backend/internal/shared/storage/db"
	"insightgen-backend/internal/shared/storage/object"
	localstore "insightgen-backend/internal/shared/storage/object/local"
	s3store "insightgen-backend/internal/shared/storage/object/s3"
	"insightgen-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	AnalysesRepo    analyses.Repo
	DataSourcesRepo datasources.Repo
	PreferencesRepo preferences.Repo
	UsersRepo       users.Repo

	AnalysesService    *analyses.Service
	ForecastsService   *forecasts.Service
	ChatService        *chat.Service
	DataSourcesService *datasources.Service
	PreferencesService *preferences.Service
	ReportsService     *reports.Service
	UsersService       *users.Service

	AnalysesHandler    *analyses.Handler
	ForecastsHandler   *forecasts.Handler
	ChatHandler        *chat.Handler
	DataSourcesHandler *datasources.Handler
	PreferencesHandler *preferences.Handler
	ReportsHandler     *reports.Handler
	GoogleAuth         *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		AnalysesHandler:    app.AnalysesHandler,
		ForecastsHandler:   app.ForecastsHandler,
		ChatHandler:        app.ChatHandler,
		DataSourcesHandler: app.DataSourcesHandler,
		PreferencesHandler: app.PreferencesHandler,
		ReportsHandler:     app.ReportsHandler,
		GoogleAuth:         app.GoogleAuth,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("IG_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.DataSourcesRepo = &datasources.PGRepo{DB: app.DB}
		app.PreferencesRepo = &preferences.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.DataSourcesRepo = datasources.NewMemoryRepo()
		app.PreferencesRepo = preferences.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "anthropic" {
		if apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); apiKey != "" {
			client, err := anthropicllm.NewClient(apiKey, app.Config.LLMModel)
			if err != nil {
				return err
			}
			llmClient = client
		} else {
			log.Printf("bootstrap: ANTHROPIC_API_KEY empty; analyses will fail until it is set")
		}
	}

	app.AnalysesService = &analyses.Service{
		Repo:  app.AnalysesRepo,
		Store: app.Store,
		LLM:   llmClient,
		Queue: app.Queue,
	}
	app.ForecastsService = forecasts.NewService(app.AnalysesService, llmClient)
	app.ChatService = chat.NewService(app.AnalysesService, llmClient)
	app.DataSourcesService = &datasources.Service{Repo: app.DataSourcesRepo, Queue: app.Queue}
	app.PreferencesService = &preferences.Service{Repo: app.PreferencesRepo}
	app.ReportsService = &reports.Service{Analyses: app.AnalysesService}
	app.UsersService = &users.Service{Repo: app.UsersRepo}

	app.AnalysesHandler = analyses.NewHandler(app.AnalysesService)
	app.ForecastsHandler = forecasts.NewHandler(app.ForecastsService)
	app.ChatHandler = chat.NewHandler(app.ChatService)
	app.DataSourcesHandler = datasources.NewHandler(app.DataSourcesService)
	app.PreferencesHandler = preferences.NewHandler(app.PreferencesService)
	app.ReportsHandler = reports.NewHandler(app.ReportsService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
