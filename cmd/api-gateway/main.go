package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studyflow/studyflow-api/api/swagger"
	"github.com/studyflow/studyflow-api/internal/handler"
	"github.com/studyflow/studyflow-api/internal/middleware"
	"github.com/studyflow/studyflow-api/internal/repository"
	"github.com/studyflow/studyflow-api/internal/service"
	"github.com/studyflow/studyflow-api/pkg/cache"
	"github.com/studyflow/studyflow-api/pkg/config"
	"github.com/studyflow/studyflow-api/pkg/database"
	"github.com/studyflow/studyflow-api/pkg/logger"
	corsmiddleware "github.com/studyflow/studyflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studyflow/studyflow-api/pkg/middleware/requestid"
)

// @title StudyFlow API
// @version 1.0.0
// @description Personal study planner with deterministic schedule generation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "studyflow-api",
	})
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, cacheSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, cacheSvc, validate, logr)
	plannerSvc := service.NewPlannerService(subjectRepo, availabilityRepo, sessionRepo, cacheSvc, metricsSvc, validate, logr, cfg.Planner.MaxSubjects)
	dashboardSvc := service.NewDashboardService(sessionRepo, subjectRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(sessionRepo, subjectRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/subjects", subjectHandler.List)
	protected.POST("/subjects", subjectHandler.Create)
	protected.GET("/subjects/:id", subjectHandler.Get)
	protected.PUT("/subjects/:id", subjectHandler.Update)
	protected.DELETE("/subjects/:id", subjectHandler.Delete)

	protected.GET("/availability", availabilityHandler.List)
	protected.PUT("/availability", availabilityHandler.Upsert)
	protected.PUT("/availability/bulk", availabilityHandler.UpsertBulk)

	if cfg.Planner.Enabled {
		protected.POST("/schedule/generate", plannerHandler.Generate)
	}

	protected.GET("/sessions", sessionHandler.List)
	protected.GET("/sessions/:id", sessionHandler.Get)
	protected.PUT("/sessions/:id", sessionHandler.Update)
	protected.PATCH("/sessions/:id/complete", sessionHandler.Complete)
	protected.DELETE("/sessions/:id", sessionHandler.Delete)

	if cfg.Dashboard.Enabled {
		protected.GET("/dashboard/summary", dashboardHandler.Summary)
	}
	if cfg.Export.Enabled {
		protected.GET("/schedule/export", exportHandler.Schedule)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
