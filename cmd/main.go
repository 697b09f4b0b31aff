package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "garageflow/docs"
	"garageflow/internal/billing"
	"garageflow/internal/caching"
	"garageflow/internal/common"
	"garageflow/internal/config"
	"garageflow/internal/handlers"
	"garageflow/internal/jobs"
	"garageflow/internal/jobs/background"
	"garageflow/internal/middleware"
	"garageflow/internal/repositories"
	"garageflow/internal/services"
	"garageflow/internal/workflow"
	"garageflow/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	policy, err := config.LoadBillingPolicy(cfg.BillingPolicyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load billing policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.ClosePool(pool)

	jwtSecret := cfg.JWTSecret
	var jwtKeyFunc jwt.Keyfunc
	if cfg.JWKSURL != "" {
		jwtKeyFunc, err = middleware.NewJWKSKeyfunc(ctx, cfg.JWKSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load identity provider keys")
		}
	} else if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	// Redis backs the billing lock, the calculation cache and the notification queue
	redisAddr := caching.ParseRedisAddr(cfg.RedisAddr)
	cacheSvc, redisClient := caching.NewRedisCacheService(redisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{cfg.NotificationQueue: 1},
	})
	statusChanged := jobs.NewStatusChangedHandler(jobs.LogSender{})
	if err := asynqServer.Start(jobs.NewServeMux(statusChanged)); err != nil {
		log.Fatal().Err(err).Msg("failed to start notification worker")
	}
	defer asynqServer.Shutdown()

	archiveSvc, err := services.NewMinioArchiveService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.InvoiceArchiveBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize invoice archive")
	}
	if err := archiveSvc.EnsureBucketExists(ctx); err != nil {
		log.Warn().Err(err).Msg("invoice archive bucket unavailable, finalized invoices will not be archived")
	}

	// Repositories
	jobCardRepo := repositories.NewJobCardRepo(pool)
	timelineRepo := repositories.NewTimelineRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	contractRepo := repositories.NewMGContractRepo(pool)
	vehicleLogRepo := repositories.NewVehicleLogRepo(pool)
	billingRepo := repositories.NewBillingRepo(pool)

	// Services
	dispatcher := services.NewNotificationDispatcher(asynqClient, cfg.NotificationQueue)
	jobCardSvc := services.NewJobCardService(jobCardRepo, timelineRepo, workflow.NewStateMachine(workflow.NewStatusGraph()), dispatcher)
	builder := billing.NewInvoiceBuilder(policy.Invoice.Prefix, billing.HSNDefaults{Labor: policy.HSN.Labor, Part: policy.HSN.Part})
	invoiceSvc := services.NewInvoiceService(invoiceRepo, jobCardRepo, builder, archiveSvc, policy.Invoice.MaxNumberAttempts)
	mgSvc := services.NewMGBillingService(contractRepo, vehicleLogRepo, billingRepo, cacheSvc, billing.NewMGBillingEngine(), cfg.BillingLockTTL, cfg.BillingCacheTTL)

	var scheduler *background.JobScheduler
	if cfg.EnableBillingCron {
		scheduler, err = background.NewJobScheduler(mgSvc, policy.MGFleet)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job scheduler")
		}
		scheduler.Start()
	}

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, version)
	jobCardHandlers := handlers.NewJobCardHandlers(jobCardSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, policy.DefaultGSTRate())
	mgHandlers := handlers.NewMGFleetHandlers(mgSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = common.NewRequestValidator()

	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret, jwtKeyFunc)))
	protected.Use(middleware.RequireWorkshop())

	// Job cards
	protected.POST("/job-cards", jobCardHandlers.CreateJobCard)
	protected.GET("/job-cards/:id", jobCardHandlers.GetJobCard)
	protected.PUT("/job-cards/:id", jobCardHandlers.UpdateJobCard)
	protected.POST("/job-cards/:id/transition", jobCardHandlers.Transition)
	protected.POST("/job-cards/:id/notes", jobCardHandlers.AddNote)
	protected.POST("/job-cards/:id/approval", jobCardHandlers.RecordApproval)
	protected.GET("/job-cards/:id/timeline", jobCardHandlers.Timeline)
	protected.GET("/job-cards/:id/invoices", invoiceHandlers.ListJobCardInvoices)

	// Invoices
	protected.POST("/invoices/generate", invoiceHandlers.GenerateInvoice)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	protected.POST("/invoices/:id/finalize", invoiceHandlers.FinalizeInvoice, middleware.RequireRole(middleware.RoleManager, middleware.RoleAccountant))
	protected.POST("/invoices/:id/mark-paid", invoiceHandlers.MarkInvoicePaid, middleware.RequireRole(middleware.RoleAccountant))

	// MG fleet
	fleet := protected.Group("/mg-fleet")
	fleet.POST("/contracts", mgHandlers.CreateContract, middleware.RequireRole(middleware.RoleManager))
	fleet.GET("/contracts", mgHandlers.ListContracts)
	fleet.GET("/contracts/:id", mgHandlers.GetContract)
	fleet.POST("/contracts/:id/end", mgHandlers.EndContract, middleware.RequireRole(middleware.RoleManager))
	fleet.POST("/contracts/:id/generate-bill", mgHandlers.GenerateBill, middleware.RequireRole(middleware.RoleManager, middleware.RoleAccountant))
	fleet.GET("/contracts/:id/bills", mgHandlers.ListBills)
	fleet.GET("/contracts/:id/vehicles/:vehicle_id/logs", mgHandlers.ListVehicleLogs)
	fleet.POST("/vehicle-logs", mgHandlers.RecordVehicleLog)
	fleet.POST("/vehicle-logs/:id/correct", mgHandlers.CorrectVehicleLog, middleware.RequireRole(middleware.RoleManager))
	fleet.GET("/stats", mgHandlers.FleetStats)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
