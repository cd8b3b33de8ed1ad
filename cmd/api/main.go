package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driftwatch/internal/config"
	"driftwatch/internal/database"
	"driftwatch/internal/database/migration"
	handlers "driftwatch/internal/http/handler"
	"driftwatch/internal/http/middleware"
	"driftwatch/internal/metrics"
	"driftwatch/internal/otel"
	"driftwatch/internal/repository/postgres"
	"driftwatch/internal/schedule"
	"driftwatch/internal/service"
	"driftwatch/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Per-stage deployment parameters
	stageConfigs, err := config.LoadStageConfigs(cfg.DeploymentConfigDir, cfg.Stages)
	if err != nil {
		log.Fatalf("failed to load stage configs: %v", err)
	}

	// Prometheus registry for drift gauges and HTTP metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder, err := metrics.NewDriftRecorder(reg)
	if err != nil {
		log.Fatalf("failed to register drift metrics: %v", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	// Cron scheduler for retraining rules and monitoring schedules
	scheduler := schedule.New()

	// Repositories and services
	registryRepo := postgres.NewRegistryPostgres(db)
	pipelineRepo := postgres.NewPipelinePostgres(db)
	triggerRepo := postgres.NewTriggerPostgres(db)
	alarmRepo := postgres.NewAlarmPostgres(db)
	deploymentRepo := postgres.NewDeploymentPostgres(db)

	registrySvc := service.NewRegistryService(objStore, registryRepo, cfg.Project)
	pipelineSvc := service.NewPipelineService(objStore, pipelineRepo)
	triggerSvc := service.NewTriggerService(triggerRepo, pipelineRepo, pipelineSvc, scheduler)
	alarmSvc := service.NewAlarmService(alarmRepo, recorder, triggerSvc)
	monitoringSvc := service.NewMonitoringService(objStore, recorder, alarmSvc)
	deploymentSvc := service.NewDeploymentService(
		deploymentRepo, registrySvc, alarmSvc, monitoringSvc,
		scheduler, cfg.Project, cfg.Stages, stageConfigs,
	)

	// Restore schedule-kind trigger rules from the database
	if err := triggerSvc.SyncSchedules(ctx); err != nil {
		log.Fatalf("failed to sync schedules: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, handlers.Services{
		Registry:    registrySvc,
		Pipelines:   pipelineSvc,
		Triggers:    triggerSvc,
		Alarms:      alarmSvc,
		Monitoring:  monitoringSvc,
		Deployments: deploymentSvc,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Shut down cleanly on SIGINT/SIGTERM so in-flight requests and cron jobs finish
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
