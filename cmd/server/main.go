package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	scoringapp "github.com/resumescore/backend/internal/application/scoring"
	"github.com/resumescore/backend/internal/infrastructure/cache"
	"github.com/resumescore/backend/internal/infrastructure/config"
	"github.com/resumescore/backend/internal/infrastructure/extraction"
	"github.com/resumescore/backend/internal/infrastructure/llm"
	"github.com/resumescore/backend/internal/infrastructure/logger"
	"github.com/resumescore/backend/internal/infrastructure/persistence"
	"github.com/resumescore/backend/internal/infrastructure/report"
	"github.com/resumescore/backend/internal/infrastructure/storage"
	"github.com/resumescore/backend/internal/infrastructure/telemetry"
	"github.com/resumescore/backend/internal/interfaces/http/handler"
	"github.com/resumescore/backend/internal/interfaces/http/middleware"
	"github.com/resumescore/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Resume Scorer",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection with SQL logging through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled: true,
			DBName:  cfg.Database.DBName,
		}, log); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	analysisRepo := persistence.NewGormAnalysisRepository(db.DB)

	// Model client
	geminiClient, err := llm.NewGeminiClient(&llm.GeminiConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		log.Fatal("Failed to initialize model client", zap.Error(err))
	}

	// PDF text extraction
	extractor := extraction.NewExtractor(extraction.Config{
		OCREnabled:      cfg.Extraction.OCREnabled,
		OCRLanguage:     cfg.Extraction.OCRLanguage,
		OCRDPI:          cfg.Extraction.OCRDPI,
		PdftoppmPath:    cfg.Extraction.PdftoppmPath,
		MinCharsPerPage: cfg.Extraction.MinCharsPerPage,
		MaxPages:        cfg.Extraction.MaxPages,
		Timeout:         cfg.Extraction.ExtractTimeout,
	}, log)

	// Assemble scorer options
	scorerOpts := []scoringapp.ScorerOption{
		scoringapp.WithMaxAttempts(cfg.LLM.MaxAttempts),
	}

	// Score cache (optional)
	if cfg.Redis.Enabled {
		scoreCache, err := cache.NewRedisScoreCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.CacheTTL,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := scoreCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		scorerOpts = append(scorerOpts, scoringapp.WithCache(scoreCache))
		log.Info("Score cache enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// Upload archival (optional)
	var archiver *storage.S3ResumeArchive
	if cfg.Storage.Enabled {
		archiver, err = storage.NewS3ResumeArchive(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to initialize storage", zap.Error(err))
		}
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			log.Warn("Could not ensure storage bucket", zap.Error(err))
		}
		scorerOpts = append(scorerOpts,
			scoringapp.WithArchiver(archiver),
			scoringapp.WithArchiveCleaner(archiver),
		)
		log.Info("Resume archival enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	scorerService := scoringapp.NewScorerService(geminiClient, analysisRepo, extractor, log, scorerOpts...)

	// PDF report rendering (optional)
	scoreHandlerOpts := []handler.ScoreHandlerOption{
		handler.WithMaxUploadSize(cfg.HTTP.MaxBodySize),
	}
	if archiver != nil {
		scoreHandlerOpts = append(scoreHandlerOpts, handler.WithArchiveDownloader(archiver))
	}
	if cfg.Report.Enabled {
		renderer, err := report.NewChromedpRenderer(&report.ChromedpConfig{
			DefaultTimeout: cfg.Report.Timeout,
			RemoteURL:      cfg.Report.RemoteURL,
			NoSandbox:      cfg.Report.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize report renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing report renderer", zap.Error(err))
			}
		}()
		reportBuilder, err := report.NewScoreReportBuilder(renderer)
		if err != nil {
			log.Fatal("Failed to initialize report builder", zap.Error(err))
		}
		scoreHandlerOpts = append(scoreHandlerOpts, handler.WithReportBuilder(reportBuilder))
		log.Info("PDF report rendering enabled")
	}

	// Initialize HTTP handlers
	scoreHandler := handler.NewScoreHandler(scorerService, scoreHandlerOpts...)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing - Trace requests (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Original flat scoring endpoints
	scoreHandler.RegisterLegacyRoutes(engine)

	// Versioned API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(scoreHandler).
		Register(systemHandler)
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
