package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-timetable-api/api/swagger"
	"github.com/noah-isme/campus-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-timetable-api/internal/middleware"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/repository"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	"github.com/noah-isme/campus-timetable-api/pkg/cache"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	"github.com/noah-isme/campus-timetable-api/pkg/database"
	"github.com/noah-isme/campus-timetable-api/pkg/jobs"
	"github.com/noah-isme/campus-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/requestid"
)

// @title Campus Timetable API
// @version 1.0.0
// @description Semester timetable creation, conflict detection and weekly occupancy grids.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, occupancy cache disabled", zap.Error(err))
		redisClient = nil
	}

	location, err := time.LoadLocation(cfg.Timetable.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timetable.Timezone, err)
	}
	catalogs, err := models.BuildCatalogRegistry(cfg.Timetable.DefaultCatalog, cfg.Timetable.Catalogs, cfg.Timetable.SchedulableDays)
	if err != nil {
		return fmt.Errorf("build time grid catalogs: %w", err)
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, "timetable", logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Occupancy.CacheTTL, logr, cfg.Occupancy.CacheEnabled && redisClient != nil)

	mux := jobs.NewMux()
	queue := jobs.NewQueue("timetable", mux.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
		OnResult:   func(job jobs.Job, err error) { metrics.RecordJob(job.Type, err) },
	})
	invalidator := service.NewOccupancyCacheInvalidator(queue, cacheSvc, logr)
	mux.Handle(service.JobInvalidateOccupancy, invalidator.Handle)
	queue.Start(ctx)
	defer queue.Stop()

	validate := validator.New()
	sessionRepo := repository.NewSessionRepository(db, cfg.Scheduler.LockTimeout)
	referenceRepo := repository.NewReferenceRepository(db)

	scheduleSvc := service.NewSemesterScheduleService(sessionRepo, referenceRepo, catalogs, invalidator, metrics, validate, logr, service.SchedulingConfig{
		RequireSlotAlignment: cfg.Timetable.RequireSlotAlignment,
		MaxDatesPerBatch:     cfg.Scheduler.MaxDatesPerBatch,
		OverlapRetries:       cfg.Scheduler.OverlapRetries,
	})
	sessionSvc := service.NewSessionService(sessionRepo, scheduleSvc, invalidator, metrics, validate, logr)
	occupancySvc := service.NewOccupancyService(sessionRepo, referenceRepo, catalogs, cacheSvc, metrics, validate, logr, service.OccupancyConfig{Location: location})
	exportSvc := service.NewExportService(occupancySvc, nil, nil, validate, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	var cachePing handler.Pinger
	if redisClient != nil {
		cachePing = cacheRepo
	}
	router := newRouter(cfg, logr, routerDeps{
		db:        db,
		cache:     cachePing,
		metrics:   metrics,
		tokens:    tokenSvc,
		schedule:  handler.NewSemesterScheduleHandler(scheduleSvc, logr),
		sessions:  handler.NewSessionHandler(sessionSvc, logr),
		occupancy: handler.NewOccupancyHandler(occupancySvc, exportSvc),
		timeGrid:  handler.NewTimeGridHandler(catalogs),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routerDeps struct {
	db        *sqlx.DB
	cache     handler.Pinger
	metrics   *service.MetricsService
	tokens    *service.TokenService
	schedule  *handler.SemesterScheduleHandler
	sessions  *handler.SessionHandler
	occupancy *handler.OccupancyHandler
	timeGrid  *handler.TimeGridHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.metrics))

	checks := map[string]handler.Pinger{"postgres": handler.PingFunc(deps.db.PingContext)}
	if deps.cache != nil {
		checks["redis"] = deps.cache
	}
	system := handler.NewSystemHandler(deps.metrics, checks)
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	r.GET("/metrics", system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, internalmiddleware.WithResponseMeta(), internalmiddleware.JWT(deps.tokens))
	scheduling := internalmiddleware.RBAC(internalmiddleware.SchedulingRoles...)

	api.POST("/semester-schedules", scheduling, deps.schedule.Create)
	api.POST("/semester-schedules/preview", scheduling, deps.schedule.Preview)

	api.GET("/sessions", deps.sessions.List)
	api.POST("/sessions/makeup", scheduling, deps.sessions.CreateMakeup)
	api.GET("/sessions/:id", deps.sessions.Get)
	api.POST("/sessions/:id/cancel", scheduling, deps.sessions.Cancel)
	api.POST("/sessions/:id/complete", scheduling, deps.sessions.Complete)
	api.GET("/recurrence-groups/:id/sessions", deps.sessions.ListRecurrenceGroup)
	api.POST("/recurrence-groups/:id/cancel", scheduling, deps.sessions.CancelRecurrenceGroup)

	api.GET("/occupancy", deps.occupancy.Get)
	api.GET("/occupancy/export", deps.occupancy.Export)
	api.GET("/time-grid", deps.timeGrid.List)

	return r
}
