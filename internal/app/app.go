package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/probuddy/api/internal/config"
	"github.com/probuddy/api/internal/db"
	"github.com/probuddy/api/internal/generator"
	"github.com/probuddy/api/internal/llm"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/service"
	"github.com/probuddy/api/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	AuthService    *service.AuthService
	GoalService    *service.GoalService
	JourneyService *service.JourneyService
	// DevUser is the caller for unauthenticated requests in development, nil
	// otherwise.
	DevUser *model.User
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	journeyRepository := repository.NewJourneyRepository(database)

	// Journey archive
	archive, err := storage.New(ctx, cfg)
	if err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		db.Close(database)
		return nil, err
	}

	var notifier service.Notifier
	if cfg.NotifyMilestones {
		notifier = service.NewEmailService(
			cfg.ResendAPIKey,
			cfg.EmailFrom,
			cfg.AppURL,
			cfg.AppName,
			cfg.IsDevelopment(),
		)
	}

	// Services
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	goalService := service.NewGoalService(goalRepository)
	journeyService := service.NewJourneyService(
		journeyRepository,
		goalRepository,
		generator.New(provider),
		archive,
		notifier,
	)

	var devUser *model.User
	if cfg.IsDevelopment() && cfg.DevUserID != "" {
		devUser = &model.User{ID: cfg.DevUserID, Name: "Developer"}
	}

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		GoalService:    goalService,
		JourneyService: journeyService,
		DevUser:        devUser,
	}, nil
}

// newProvider returns the configured model provider, or nil without an API
// key. The generator then serves the fallback plan.
func newProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	key, name := cfg.ModelKey()
	if key == "" {
		slog.Warn(name+" not set, journeys use the fallback plan", "provider", cfg.LLMProvider)
		return nil, nil
	}

	return llm.NewProvider(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   key,
		Model:    cfg.ModelName(),
		BaseURL:  cfg.OpenAIBaseURL,
	})
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
