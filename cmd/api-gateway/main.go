package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/se-evidence-api/api/swagger"
	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/handler"
	"github.com/noah-isme/se-evidence-api/internal/middleware"
	"github.com/noah-isme/se-evidence-api/internal/repository"
	"github.com/noah-isme/se-evidence-api/internal/service"
	"github.com/noah-isme/se-evidence-api/pkg/cache"
	"github.com/noah-isme/se-evidence-api/pkg/config"
	"github.com/noah-isme/se-evidence-api/pkg/database"
	"github.com/noah-isme/se-evidence-api/pkg/export"
	"github.com/noah-isme/se-evidence-api/pkg/jobs"
	"github.com/noah-isme/se-evidence-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/se-evidence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/se-evidence-api/pkg/middleware/requestid"
)

// @title SE Evidence API
// @version 1.0.0
// @description Catalog of software-engineering research articles and the evidence extracted from them.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	db, err := database.NewPostgres(startCtx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var cacheRepo service.CacheRepository
	if cfg.Search.CacheEnabled {
		client, err := cache.NewRedis(startCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, search cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Search.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()
	if err := dto.RegisterValidations(validate, nil); err != nil {
		logr.Fatal("failed to register validations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)

	auditWriter := service.NewAsyncAuditWriter(userRepo, jobs.QueueConfig{
		Workers:    2,
		MaxRetries: 3,
		Logger:     logr,
	})
	auditWriter.Start(context.Background())
	defer auditWriter.Stop()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	articleSvc := service.NewArticleService(articleRepo, userRepo, auditWriter, validate, logr,
		service.WithArticleCache(cacheSvc),
		service.WithArticleMetrics(metricsSvc),
	)
	evidenceSvc := service.NewEvidenceService(evidenceRepo, articleRepo, userRepo, auditWriter, validate, logr,
		service.WithEvidenceCache(cacheSvc),
		service.WithEvidenceMetrics(metricsSvc),
	)
	searchSvc := service.NewSearchService(articleRepo, evidenceRepo, userRepo, cacheSvc, metricsSvc, logr, cfg.Search.FreeTextLimit)

	searchHandler := handler.NewSearchHandler(searchSvc, nil)
	if cfg.Exports.Enabled {
		exportSvc := service.NewExportService(searchSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
		searchHandler = handler.NewSearchHandler(searchSvc, exportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	routes{
		auth:     handler.NewAuthHandler(authSvc),
		articles: handler.NewArticleHandler(articleSvc),
		evidence: handler.NewEvidenceHandler(evidenceSvc),
		search:   searchHandler,
		users:    handler.NewUserHandler(userSvc),
		metrics:  handler.NewMetricsHandler(metricsSvc, checks),
		tokens:   authSvc,
		audit:    auditWriter,
	}.register(r, cfg.APIPrefix, cfg.Metrics.Enabled)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
