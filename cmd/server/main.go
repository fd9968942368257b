package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/config"
	"github.com/dkovac/orbit/internal/database"
	"github.com/dkovac/orbit/internal/idp"
	"github.com/dkovac/orbit/internal/imagehost"
	"github.com/dkovac/orbit/internal/metrics"
	postgresrepo "github.com/dkovac/orbit/internal/repository/postgres"
	"github.com/dkovac/orbit/internal/security"
	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/handlers"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}

	// Database
	if err := database.Migrate(cfg.DatabaseURL()); err != nil {
		logger.Fatal().Err(err).Msg("running migrations")
	}
	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)
	commentRepo := postgresrepo.NewCommentRepo(pool)
	notificationRepo := postgresrepo.NewNotificationRepo(pool)

	// External collaborators behind an SSRF-guarded client
	safeClient := security.NewSafeClient(30 * time.Second)
	verifier := idp.NewGoogleVerifier(safeClient, cfg.GoogleTokenInfoURL)
	host := imagehost.NewClient(safeClient, cfg.ImageHostURL, cfg.ImageHostKey)

	// Services
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(userRepo, verifier, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, postRepo)
	postService := service.NewPostService(postRepo, commentRepo, notificationService, logger)
	graphService := service.NewGraphService(userRepo, postRepo, notificationService, logger)
	imageService := service.NewImageService(host, cfg.MaxImageSize, logger)

	// Handlers
	deps := handlers.RouterDeps{
		Auth:          handlers.NewAuthHandler(authService, logger),
		Users:         handlers.NewUserHandler(userService, imageService, logger),
		Posts:         handlers.NewPostHandler(postService, imageService, logger),
		Graph:         handlers.NewGraphHandler(graphService, logger),
		Notifications: handlers.NewNotificationHandler(notificationService, logger),
		Admin:         handlers.NewAdminHandler(userService, postService, logger),
	}

	// Gates
	auth := middleware.Auth(cfg.JWTSecret, userRepo)
	mux := handlers.NewRouter(deps, auth, middleware.RequireAdmin)

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	mux.Handle("GET /metrics", metrics.Handler(registry))

	// Outermost first: recovery, then rate limit, logging and CORS.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger, collector)(handler)
	handler = limiter.Middleware(handler)
	handler = middleware.Recovery(logger)(handler)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
