package routes

import (
	"net/http"

	"github.com/probuddy/api/internal/app"
	"github.com/probuddy/api/internal/handler"
	"github.com/probuddy/api/internal/middleware"
)

// Version is reported by the health endpoint. Set at build time.
var Version = "dev"

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB, Version)
	goal := handler.NewGoalHandler(app.GoalService)
	journey := handler.NewJourneyHandler(app.JourneyService, app.Cfg.GenerateTimeout)

	// ============================================================================
	// API ROUTES (/api/v1/*, bearer auth)
	// ============================================================================

	api := http.NewServeMux()

	// Goals
	api.HandleFunc("GET /api/v1/goals", goal.List)
	api.HandleFunc("POST /api/v1/goals", goal.Create)
	api.HandleFunc("GET /api/v1/goals/{id}", goal.Get)
	api.HandleFunc("PUT /api/v1/goals/{id}", goal.Update)
	api.HandleFunc("DELETE /api/v1/goals/{id}", goal.Delete)

	// Journeys - generation calls the model (rate limited)
	rateLimiter := middleware.RateLimit(middleware.NewRateLimiter(app.Cfg.RateLimit, app.Cfg.RateWindow))

	api.HandleFunc("POST /api/v1/journeys/generate", rateLimiter(journey.Generate))
	api.HandleFunc("POST /api/v1/journeys/adjust", rateLimiter(journey.Adjust))
	api.HandleFunc("GET /api/v1/journeys", journey.Current)
	api.HandleFunc("GET /api/v1/journeys/{id}", journey.Get)
	api.HandleFunc("DELETE /api/v1/journeys/{id}", journey.Delete)
	api.HandleFunc("GET /api/v1/journeys/{id}/eta", journey.ETA)
	api.HandleFunc("POST /api/v1/journeys/{id}/recalculate", journey.Recalculate)

	// Steps
	api.HandleFunc("PUT /api/v1/journeys/steps/{id}/status", journey.UpdateStepStatus)
	api.HandleFunc("PUT /api/v1/journeys/steps/{id}/title", journey.RenameStep)
	api.HandleFunc("POST /api/v1/journeys/steps/{id}/notes", journey.AddNote)
	api.HandleFunc("POST /api/v1/journeys/steps/{id}/choose-path", journey.ChoosePath)

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("/api/", middleware.AuthMiddleware(app.AuthService, app.DevUser)(api))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
	)

	return handler
}
