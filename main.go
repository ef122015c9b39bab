package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/di"
	"github.com/Buffden/Event-Management-System-sub005/internal/metrics"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/pkg/config"
	"github.com/Buffden/Event-Management-System-sub005/pkg/database"
	"github.com/Buffden/Event-Management-System-sub005/pkg/logger"
	"github.com/Buffden/Event-Management-System-sub005/pkg/middleware"
	"github.com/Buffden/Event-Management-System-sub005/pkg/redis"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Event Engine...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &cfg.Database, &database.Options{
		EnableTracing: cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", cfg.Database.MinConns, cfg.Database.MaxConns))

	// Initialize Redis connection (optional - cache and idempotency replay
	// are disabled if the connection fails)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed (caching disabled): %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info(fmt.Sprintf("Redis connected (%s)", cfg.Redis.Addr()))
		}
	}

	// Initialize the lifecycle fact publisher (optional)
	var publisher service.FactPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaFactPublisher(ctx, &service.FactPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed (facts disabled): %v", err))
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
			appLog.Info(fmt.Sprintf("Kafka producer connected (topic: %s)", cfg.Kafka.Topic))
		}
	}
	if publisher == nil {
		publisher = service.NewNoOpFactPublisher()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Ticket:    &cfg.Ticket,
	})

	// Start the expiry and completion sweeper
	if err := container.LifecycleWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start lifecycle worker: %v", err))
	}
	defer container.LifecycleWorker.Stop()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// JWT middleware configuration
	jwtConfig := &middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}
	authed := middleware.JWTMiddleware(jwtConfig)

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Venues - public read, admin write
		venues := v1.Group("/venues")
		{
			venues.GET("", container.VenueHandler.List)
			venues.GET("/:id", container.VenueHandler.GetByID)

			adminVenues := venues.Group("")
			adminVenues.Use(authed)
			adminVenues.Use(middleware.RequireRole("admin"))
			{
				adminVenues.POST("", container.VenueHandler.Create)
				adminVenues.PUT("/:id", container.VenueHandler.Update)
				adminVenues.DELETE("/:id", container.VenueHandler.Delete)
			}
		}

		// Events - public read, speaker lifecycle, admin review
		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.List)
			events.GET("/:id", container.EventHandler.GetByID)

			speakerEvents := events.Group("")
			speakerEvents.Use(authed)
			speakerEvents.Use(middleware.RequireRole("admin", "speaker"))
			{
				speakerEvents.POST("", container.EventHandler.Create)
				speakerEvents.PUT("/:id", container.EventHandler.Update)
				speakerEvents.DELETE("/:id", container.EventHandler.Delete)
				speakerEvents.POST("/:id/submit", container.EventHandler.Submit)
			}

			adminEvents := events.Group("")
			adminEvents.Use(authed)
			adminEvents.Use(middleware.RequireRole("admin"))
			{
				adminEvents.POST("/:id/approve", container.EventHandler.Approve)
				adminEvents.POST("/:id/reject", container.EventHandler.Reject)
				adminEvents.POST("/:id/cancel", container.EventHandler.Cancel)
			}

			staffTickets := events.Group("")
			staffTickets.Use(authed)
			staffTickets.Use(middleware.RequireRole("admin", "speaker", "staff"))
			{
				staffTickets.GET("/:id/tickets", container.TicketHandler.ListByEvent)
				staffTickets.GET("/:id/tickets/stats", container.TicketHandler.Stats)
			}
		}

		// Tickets - authenticated
		tickets := v1.Group("/tickets")
		tickets.Use(authed)
		{
			issue := tickets.Group("")
			if redisClient != nil {
				issue.Use(middleware.IdempotencyMiddleware(middleware.DefaultIdempotencyConfig(redisClient.Client())))
			}
			issue.POST("", container.TicketHandler.Issue)

			tickets.GET("/:id", container.TicketHandler.GetByID)
			tickets.GET("/:id/attendance", container.TicketHandler.Attendance)

			staff := tickets.Group("")
			staff.Use(middleware.RequireRole("admin", "staff"))
			{
				staff.POST("/scan", container.TicketHandler.Scan)
			}

			admin := tickets.Group("")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.POST("/:id/revoke", container.TicketHandler.Revoke)
			}
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Event Engine listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
