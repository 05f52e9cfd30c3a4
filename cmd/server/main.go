package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/polity/internal/auth"
	"github.com/efreeman/polity/internal/config"
	"github.com/efreeman/polity/internal/handler"
	"github.com/efreeman/polity/internal/logger"
	"github.com/efreeman/polity/internal/middleware"
	"github.com/efreeman/polity/internal/repository/postgres"
	redisrepo "github.com/efreeman/polity/internal/repository/redis"
	"github.com/efreeman/polity/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	scenarioRepo := postgres.NewScenarioRepo(db)
	runRepo := postgres.NewRunRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	forecastSvc := service.NewForecastService(scenarioRepo, runRepo, redisClient, wsHub)

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr)
	scenarioHandler := handler.NewScenarioHandler(forecastSvc)
	runHandler := handler.NewRunHandler(forecastSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("POST /scenarios", scenarioHandler.CreateScenario)
	api.HandleFunc("POST /scenarios/import", scenarioHandler.ImportScenario)
	api.HandleFunc("GET /scenarios", scenarioHandler.ListScenarios)
	api.HandleFunc("GET /scenarios/{id}", scenarioHandler.GetScenario)
	api.HandleFunc("DELETE /scenarios/{id}", scenarioHandler.DeleteScenario)
	api.HandleFunc("POST /scenarios/{id}/runs", runHandler.StartRun)
	api.HandleFunc("GET /scenarios/{id}/runs", runHandler.ListRuns)
	api.HandleFunc("GET /scenarios/{id}/latest", runHandler.LatestResult)
	api.HandleFunc("GET /runs/{id}", runHandler.GetRun)
	api.HandleFunc("GET /runs/{id}/rounds", runHandler.RunRounds)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
