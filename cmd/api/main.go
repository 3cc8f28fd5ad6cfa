package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/quilldesk/brokerage-api/api/swagger"
	"github.com/quilldesk/brokerage-api/internal/handler"
	"github.com/quilldesk/brokerage-api/internal/middleware"
	"github.com/quilldesk/brokerage-api/internal/repository"
	"github.com/quilldesk/brokerage-api/internal/service"
	"github.com/quilldesk/brokerage-api/pkg/cache"
	"github.com/quilldesk/brokerage-api/pkg/config"
	"github.com/quilldesk/brokerage-api/pkg/database"
	"github.com/quilldesk/brokerage-api/pkg/logger"
	corsmiddleware "github.com/quilldesk/brokerage-api/pkg/middleware/cors"
	reqidmiddleware "github.com/quilldesk/brokerage-api/pkg/middleware/requestid"
)

// @title QuillDesk Brokerage API
// @version 1.0.0
// @description Assignment settlement and identity ledger for the writing brokerage
// @BasePath /
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	assignmentRepo := repository.NewAssignmentRepository(db)
	writerRepo := repository.NewWriterRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(cfg.Auth, validate, logr)
	ledgerSvc := service.NewLedgerService(assignmentRepo, studentRepo, writerRepo, achievementRepo, nil, validate, logr).
		WithMetrics(metricsSvc)
	writerSvc := service.NewWriterService(writerRepo, achievementRepo, cfg.Allocator.MaxRetries, validate, logr).
		WithMetrics(metricsSvc)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	registrySvc := service.NewRegistryService(universityRepo, studentRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(assignmentRepo, studentRepo, writerRepo, universityRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(assignmentRepo, logr)
	dataioSvc := service.NewDataIOService(db, studentRepo, writerRepo, assignmentRepo, achievementRepo, universityRepo, logr)

	if cfg.Registry.BackfillOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		result, err := registrySvc.Backfill(ctx)
		cancel()
		if err != nil {
			logr.Warn("university backfill failed", zap.Error(err))
		} else {
			logr.Info("university backfill finished",
				zap.Int("studentsLinked", result.StudentsLinked),
				zap.Int("universitiesCreated", result.UniversitiesCreated))
		}
	}

	authHandler := handler.NewAuthHandler(authSvc)
	assignmentHandler := handler.NewAssignmentHandler(ledgerSvc, dashboardSvc)
	writerHandler := handler.NewWriterHandler(writerSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	universityHandler := handler.NewUniversityHandler(registrySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	dataioHandler := handler.NewDataIOHandler(dataioSvc, dashboardSvc)
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
		if err := db.PingContext(c.Request.Context()); err != nil {
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
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc), middleware.RequireAdmin())

	assignments := protected.Group("/assignments")
	{
		assignments.GET("", assignmentHandler.List)
		assignments.POST("", assignmentHandler.Create)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.PUT("/:id", assignmentHandler.Update)
		assignments.DELETE("/:id", assignmentHandler.Delete)
		assignments.POST("/:id/reassign", assignmentHandler.Reassign)
		assignments.POST("/:id/payments", assignmentHandler.RecordPayment)
		assignments.PATCH("/:id/status", assignmentHandler.ChangeStatus)
		assignments.POST("/:id/archive", assignmentHandler.Archive)
		assignments.POST("/:id/unarchive", assignmentHandler.Unarchive)
		assignments.POST("/:id/duplicate", assignmentHandler.Duplicate)
		assignments.POST("/:id/activity", assignmentHandler.RecordActivity)
	}

	writers := protected.Group("/writers")
	{
		writers.GET("", writerHandler.List)
		writers.POST("", writerHandler.Create)
		writers.GET("/:id", writerHandler.Get)
		writers.PUT("/:id", writerHandler.Update)
		writers.DELETE("/:id", writerHandler.Delete)
		writers.GET("/:id/achievements", writerHandler.Achievements)
	}

	students := protected.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.POST("", studentHandler.Create)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", studentHandler.Update)
		students.DELETE("/:id", studentHandler.Delete)
	}

	universities := protected.Group("/universities")
	{
		universities.GET("", universityHandler.List)
		universities.POST("", universityHandler.Create)
		universities.PUT("/:id", universityHandler.Update)
		universities.DELETE("/:id", universityHandler.Delete)
		universities.POST("/backfill", universityHandler.Backfill)
	}

	if cfg.Dashboard.Enabled {
		protected.GET("/dashboard", dashboardHandler.Summary)
	}
	if cfg.Exports.Enabled {
		protected.GET("/exports/assignments", exportHandler.Assignments)
	}

	protected.POST("/data/import", dataioHandler.Import)
	protected.POST("/data/clear", dataioHandler.ClearAll)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
