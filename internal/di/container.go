package di

import (
	"github.com/Buffden/Event-Management-System-sub005/internal/handler"
	"github.com/Buffden/Event-Management-System-sub005/internal/repository"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/internal/worker"
	"github.com/Buffden/Event-Management-System-sub005/pkg/config"
	"github.com/Buffden/Event-Management-System-sub005/pkg/database"
	"github.com/Buffden/Event-Management-System-sub005/pkg/redis"
)

// Container holds all dependencies for the event engine
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.FactPublisher

	// Repositories
	VenueRepo  repository.VenueRepository
	EventRepo  repository.EventRepository
	TicketRepo repository.TicketRepository

	// Services
	VenueService  service.VenueService
	EventService  service.EventService
	TicketService service.TicketService

	// Handlers
	HealthHandler *handler.HealthHandler
	VenueHandler  *handler.VenueHandler
	EventHandler  *handler.EventHandler
	TicketHandler *handler.TicketHandler

	// Workers
	LifecycleWorker *worker.LifecycleWorker
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.FactPublisher
	Ticket    *config.TicketConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
	}

	// Repositories
	pgEventRepo := repository.NewPostgresEventRepository(c.DB.Pool())
	if c.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(pgEventRepo, c.Redis)
	} else {
		c.EventRepo = pgEventRepo
	}
	c.VenueRepo = repository.NewPostgresVenueRepository(c.DB.Pool())
	c.TicketRepo = repository.NewPostgresTicketRepository(c.DB.Pool())

	// Services
	signer := service.NewQRSigner(cfg.Ticket.QRSecret, "event-engine")
	c.VenueService = service.NewVenueService(c.VenueRepo)
	c.EventService = service.NewEventService(c.EventRepo, c.VenueRepo, c.Publisher, &service.EventServiceConfig{
		RejectReasonMinLen: cfg.Ticket.RejectReasonMinLen,
	})
	c.TicketService = service.NewTicketService(c.TicketRepo, c.EventRepo, signer, c.Publisher, &service.TicketServiceConfig{
		ExpiryGrace: cfg.Ticket.ExpiryGrace,
	})

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.VenueHandler = handler.NewVenueHandler(c.VenueService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)

	// Workers
	workerCfg := worker.DefaultLifecycleWorkerConfig()
	if cfg.Ticket.SweepInterval > 0 {
		workerCfg.ExpiryInterval = cfg.Ticket.SweepInterval
		workerCfg.CompletionInterval = cfg.Ticket.SweepInterval
	}
	if cfg.Ticket.SweepBatchSize > 0 {
		workerCfg.BatchSize = cfg.Ticket.SweepBatchSize
	}
	c.LifecycleWorker = worker.NewLifecycleWorker(c.TicketService, c.EventService, workerCfg)

	return c
}
