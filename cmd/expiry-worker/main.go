package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Buffden/Event-Management-System-sub005/internal/metrics"
	"github.com/Buffden/Event-Management-System-sub005/internal/repository"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/internal/worker"
	"github.com/Buffden/Event-Management-System-sub005/pkg/config"
	"github.com/Buffden/Event-Management-System-sub005/pkg/database"
	"github.com/Buffden/Event-Management-System-sub005/pkg/logger"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

// Standalone sweeper binary. Runs the same expiry and completion sweeps as
// the API server, for deployments that want the sweeps isolated from the
// request path.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       logLevel,
		ServiceName: "expiry-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting expiry worker...")

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "expiry-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	db, err := database.NewPostgres(ctx, &cfg.Database, &database.Options{
		EnableTracing: cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	var publisher service.FactPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaFactPublisher(ctx, &service.FactPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: "expiry-worker",
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed (facts disabled): %v", err))
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}
	if publisher == nil {
		publisher = service.NewNoOpFactPublisher()
	}

	eventRepo := repository.NewPostgresEventRepository(db.Pool())
	venueRepo := repository.NewPostgresVenueRepository(db.Pool())
	ticketRepo := repository.NewPostgresTicketRepository(db.Pool())

	signer := service.NewQRSigner(cfg.Ticket.QRSecret, "event-engine")
	eventService := service.NewEventService(eventRepo, venueRepo, publisher, &service.EventServiceConfig{
		RejectReasonMinLen: cfg.Ticket.RejectReasonMinLen,
	})
	ticketService := service.NewTicketService(ticketRepo, eventRepo, signer, publisher, &service.TicketServiceConfig{
		ExpiryGrace: cfg.Ticket.ExpiryGrace,
	})

	workerCfg := worker.DefaultLifecycleWorkerConfig()
	if cfg.Ticket.SweepInterval > 0 {
		workerCfg.ExpiryInterval = cfg.Ticket.SweepInterval
		workerCfg.CompletionInterval = cfg.Ticket.SweepInterval
	}
	if cfg.Ticket.SweepBatchSize > 0 {
		workerCfg.BatchSize = cfg.Ticket.SweepBatchSize
	}

	sweeper := worker.NewLifecycleWorker(ticketService, eventService, workerCfg)
	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start lifecycle worker: %v", err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down expiry worker...")
	sweeper.Stop()
	appLog.Info("Expiry worker stopped")
}
