package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/mindful-harmony/internal/config"
	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/handlers"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/middleware"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/benvon/mindful-harmony/internal/services/auth"
	"github.com/benvon/mindful-harmony/internal/services/music"
	"github.com/benvon/mindful-harmony/internal/services/profile"
	"github.com/benvon/mindful-harmony/internal/services/recommend"
	"github.com/benvon/mindful-harmony/internal/services/speech"
	"github.com/benvon/mindful-harmony/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const (
	// aiRatelimitRate is the default budget for routes that call a text
	// generator or the speech API.
	aiRatelimitRate = "20-M"
	reloadInterval  = time.Minute
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for AI provider logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.Environment, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("environment", cfg.Environment),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	shutdownTracer, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTELEnabled,
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.Environment,
	}, zapLogger)
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if err := db.Migrate(ctx, zapLogger); err != nil {
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}

	userRepo := database.NewUserRepository(db)
	activityLogRepo := database.NewActivityLogRepository(db)
	journalRepo := database.NewJournalRepository(db)
	moodRepo := database.NewMoodRepository(db)
	musicRepo := database.NewMusicRepository(db)
	biometricRepo := database.NewBiometricRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)

	redisClient := connectRedis(ctx, cfg.RedisURL, zapLogger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
	}

	jobQueue := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
	var publisher queue.Publisher
	var queueCheck func(context.Context) error
	if jobQueue != nil {
		publisher = jobQueue
		queueCheck = jobQueue.HealthCheck
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	}

	if cfg.JWTSecretEphemeral {
		zapLogger.Warn("jwt_secret_not_set_using_ephemeral_secret",
			zap.String("environment", cfg.Environment),
		)
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		zapLogger.Fatal("failed_to_create_token_service", zap.Error(err))
	}
	authenticator := middleware.NewAuthenticator(tokens, userRepo, zapLogger)

	guard := ai.NewGuardFromConfig(ctx, ai.NewDefaultRegistry(), cfg, zapLogger, debugMode)

	catalog := recommend.LoadCatalogOrEmpty(cfg.CatalogPath, zapLogger)
	scorer := recommend.NewScorer(activityLogRepo, zapLogger)

	musicService := newMusicService(ctx, cfg, redisClient, zapLogger)

	var transcriber speech.Transcriber
	if cfg.SpeechCredentialsFile != "" {
		gcp, err := speech.NewGCPTranscriber(ctx, cfg.SpeechCredentialsFile, cfg.SpeechLanguage, zapLogger)
		if err != nil {
			zapLogger.Warn("speech_transcription_disabled", zap.Error(err))
		} else {
			transcriber = gcp
			defer func() {
				if err := gcp.Close(); err != nil {
					zapLogger.Warn("failed_to_close_speech_client", zap.Error(err))
				}
			}()
		}
	}

	defaultStore, err := middleware.NewLimiterStore(redisClient, models.DefaultConfigKey)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	aiStore, err := middleware.NewLimiterStore(redisClient, models.AIConfigKey)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	defaultLimiter := middleware.NewRateLimitReloader(defaultStore, ratelimitConfigRepo, models.DefaultConfigKey, middleware.DefaultRatelimitRate, zapLogger, reloadInterval)
	aiLimiter := middleware.NewRateLimitReloader(aiStore, ratelimitConfigRepo, models.AIConfigKey, aiRatelimitRate, zapLogger, reloadInterval)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, reloadInterval)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order: the first Use is
	// the outermost wrapper.
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(cfg.OTELServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger,
		middleware.SizeLimit{Prefix: "/api/voice/", MaxBytes: middleware.MaxUploadSize + 1<<20},
	))
	r.Use(middleware.ContentType(zapLogger, "/api/voice/"))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Health and API description are not rate limited.
	handlers.NewHealthChecker(db, queueCheck, zapLogger).RegisterRoutes(r)
	handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml")).RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(defaultLimiter.Middleware())

	handlers.NewAuthHandler(userRepo, tokens, zapLogger).
		RegisterRoutes(apiRouter.PathPrefix("/auth").Subrouter(), authenticator)
	handlers.NewActivityHandler(catalog, scorer, activityLogRepo, zapLogger).
		RegisterRoutes(apiRouter.PathPrefix("/activities").Subrouter(), authenticator)
	handlers.NewMoodHandler(moodRepo, zapLogger).
		RegisterRoutes(apiRouter.PathPrefix("/mood").Subrouter(), authenticator)
	handlers.NewMusicHandler(musicService, musicRepo, zapLogger).
		RegisterRoutes(apiRouter.PathPrefix("/music").Subrouter(), authenticator)
	profileService := profile.NewService(profile.Sources{
		Moods:      moodRepo,
		Journal:    journalRepo,
		Activities: activityLogRepo,
		Playlists:  musicRepo,
		Biometrics: biometricRepo,
	}, catalog, zapLogger)
	handlers.NewProfileHandler(userRepo, biometricRepo, profileService, zapLogger).
		RegisterRoutes(apiRouter.PathPrefix("/profile").Subrouter(), authenticator)

	aiMW := aiLimiter.Middleware()
	journalRouter := apiRouter.PathPrefix("/journal").Subrouter()
	journalRouter.Use(aiMW)
	handlers.NewJournalHandler(journalRepo, guard, publisher, zapLogger).RegisterRoutes(journalRouter, authenticator)

	voiceRouter := apiRouter.PathPrefix("/voice").Subrouter()
	voiceRouter.Use(aiMW)
	handlers.NewVoiceHandler(transcriber, zapLogger).RegisterRoutes(voiceRouter, authenticator)

	// Preflight requests for any path; CORS has already written the headers.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(ctx)
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go defaultLimiter.Start(reloadCtx)
	go aiLimiter.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
			zap.Int("catalog_size", catalog.Len()),
			zap.Bool("spotify_configured", cfg.SpotifyConfigured()),
			zap.Bool("speech_configured", transcriber != nil),
			zap.Bool("queue_configured", publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRedis returns nil when Redis is unset or unreachable; callers then
// use in-memory limiter stores and skip the genre cache.
func connectRedis(ctx context.Context, redisURL string, zapLogger *zap.Logger) *redis.Client {
	if redisURL == "" {
		zapLogger.Info("redis_not_configured_using_memory_stores")
		return nil
	}
	client, err := middleware.NewRedisClient(ctx, redisURL)
	if err != nil {
		zapLogger.Warn("redis_unavailable_using_memory_stores", zap.Error(err))
		return nil
	}
	zapLogger.Info("connected_to_redis")
	return client
}

// connectRabbitMQ retries with exponential backoff to ride out broker
// startup. The server runs without a publisher when the URL is unset or
// every attempt fails; fallback analyses are then picked up by the
// worker's sweep instead.
func connectRabbitMQ(amqpURL string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	if amqpURL == "" {
		zapLogger.Info("rabbitmq_not_configured_reanalysis_disabled")
		return nil
	}

	const maxRetries = 5
	const initialDelay = 2 * time.Second
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(amqpURL, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	zapLogger.Error("rabbitmq_unavailable_reanalysis_disabled",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}

func newMusicService(ctx context.Context, cfg *config.Config, redisClient *redis.Client, zapLogger *zap.Logger) *music.Service {
	var api music.SpotifyAPI
	if cfg.SpotifyConfigured() {
		api = music.NewSpotifyClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL, cfg.SpotifyAPIURL)
	} else {
		zapLogger.Info("spotify_not_configured_using_fallback_playlists")
	}
	var cache music.GenreCache
	if redisClient != nil {
		cache = music.NewRedisGenreCache(redisClient)
	}
	return music.NewService(api, cache, zapLogger)
}
