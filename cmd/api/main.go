package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/config"
	"github.com/c8r-platform/c8r-api/internal/domain/auth"
	"github.com/c8r-platform/c8r-api/internal/domain/avatar"
	"github.com/c8r-platform/c8r-api/internal/domain/plugin"
	"github.com/c8r-platform/c8r-api/internal/domain/user"
	"github.com/c8r-platform/c8r-api/internal/domain/wallet"
	"github.com/c8r-platform/c8r-api/internal/middleware"
	"github.com/c8r-platform/c8r-api/internal/pkg/database"
	"github.com/c8r-platform/c8r-api/internal/pkg/imaging"
	"github.com/c8r-platform/c8r-api/internal/pkg/jwt"
	pkgresponse "github.com/c8r-platform/c8r-api/internal/pkg/response"
	"github.com/c8r-platform/c8r-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting C8R API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	r2Storage, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage")
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	pluginRepo := plugin.NewRepository(db)
	avatarRepo := avatar.NewRepository(db)

	// Seed the built-in plugin catalog; existing entries are left alone
	startupCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	inserted, err := pluginRepo.Seed(startupCtx)
	cancelSeed()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed plugin catalog")
	}
	if inserted > 0 {
		log.Info().Int("inserted", inserted).Msg("Seeded plugin catalog")
	}

	// ---------- Ledger caches ----------
	txLog := wallet.NewTransactionLog(redisClient)
	ownedPlugins := wallet.NewPluginSet(redisClient)
	stakeRegistry := wallet.NewStakeRegistry(redisClient)

	// ---------- Live activity feed ----------
	feed := wallet.NewFeed(redisClient)
	go feed.Run()
	defer feed.Shutdown()

	// ---------- Services ----------
	walletService := wallet.NewService(userRepo, pluginRepo, txLog, ownedPlugins, stakeRegistry, feed, wallet.Config{
		APYBasisPoints: cfg.StakingAPYBasisPoints,
		MinLockDays:    cfg.StakeLockDays,
	})
	authService := auth.NewService(userRepo, jwtService, redisClient, walletService, cfg.SignupBonusC8R)
	avatarService := avatar.NewService(avatarRepo, walletService, r2Storage,
		imaging.NewProcessor(imaging.DefaultConfig()), cfg.MintCostC8R)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	walletHandler := wallet.NewHandler(walletService, feed)
	pluginHandler := plugin.NewHandler(pluginRepo)
	avatarHandler := avatar.NewHandler(avatarService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/plugins", pluginHandler.Routes())
		r.Mount("/avatars", avatarHandler.Routes(authMiddleware))

		// WebSocket clients pass the token as a query param
		r.Get("/wallet/feed", func(w http.ResponseWriter, r *http.Request) {
			token := r.URL.Query().Get("token")
			if token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
			authMiddleware(http.HandlerFunc(walletHandler.Feed)).ServeHTTP(w, r)
		})
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
