package routes

import (
	"database/sql"
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/app"
	"github.com/EcoFlowJS/ecoflow-authentication/handlers"
	authmw "github.com/EcoFlowJS/ecoflow-authentication/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(deps.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", handlers.HaltedAtHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	var db *sql.DB
	if deps.DB != nil {
		db = deps.DB.DB
	}
	health := handlers.NewHealthHandler(db, len(deps.Pipelines), deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	r.Get("/manifest", handlers.ManifestHandler(deps.Manifest))

	// Configured pipelines
	pipelines := handlers.NewPipelineHandler(deps.Runner, deps.Logger)
	for _, def := range deps.Pipelines {
		r.Method(def.Method, def.Path, pipelines.Handle(def))
		deps.Logger.Info("pipeline route registered",
			zap.String("pipeline", def.Name),
			zap.String("method", def.Method),
			zap.String("path", def.Path))
	}

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
