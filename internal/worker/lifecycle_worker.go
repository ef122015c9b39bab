package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/pkg/logger"
)

// LifecycleWorkerConfig contains configuration for the lifecycle worker
type LifecycleWorkerConfig struct {
	// ExpiryInterval is the interval between ticket expiry sweeps
	ExpiryInterval time.Duration
	// CompletionInterval is the interval between event completion sweeps
	CompletionInterval time.Duration
	// BatchSize is the maximum number of rows swept per pass
	BatchSize int
}

// DefaultLifecycleWorkerConfig returns default configuration
func DefaultLifecycleWorkerConfig() *LifecycleWorkerConfig {
	return &LifecycleWorkerConfig{
		ExpiryInterval:     30 * time.Second,
		CompletionInterval: 1 * time.Minute,
		BatchSize:          500,
	}
}

// LifecycleWorker sweeps overdue tickets to EXPIRED and past published
// events to COMPLETED. Read paths already treat overdue rows as expired,
// so the sweeps only persist what readers would compute anyway.
type LifecycleWorker struct {
	ticketService service.TicketService
	eventService  service.EventService
	config        *LifecycleWorkerConfig
	log           *logger.Logger
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewLifecycleWorker creates a new lifecycle worker
func NewLifecycleWorker(
	ticketService service.TicketService,
	eventService service.EventService,
	config *LifecycleWorkerConfig,
) *LifecycleWorker {
	if config == nil {
		config = DefaultLifecycleWorkerConfig()
	}

	return &LifecycleWorker{
		ticketService: ticketService,
		eventService:  eventService,
		config:        config,
		log:           logger.Get(),
		stopCh:        make(chan struct{}),
	}
}

// Start starts the lifecycle worker
func (w *LifecycleWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("lifecycle worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting lifecycle worker")

	w.wg.Add(1)
	go w.sweepExpiredTickets(ctx)

	w.wg.Add(1)
	go w.sweepCompletedEvents(ctx)

	return nil
}

// Stop stops the lifecycle worker
func (w *LifecycleWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping lifecycle worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Lifecycle worker stopped")
}

// sweepExpiredTickets periodically expires overdue issued tickets
func (w *LifecycleWorker) sweepExpiredTickets(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runExpirySweep(ctx)
		}
	}
}

// runExpirySweep expires one batch of overdue tickets
func (w *LifecycleWorker) runExpirySweep(ctx context.Context) {
	expired, err := w.ticketService.ExpireOverdueTickets(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Ticket expiry sweep failed: %v", err))
		return
	}
	if expired > 0 {
		w.log.Info(fmt.Sprintf("Expired %d overdue tickets", expired))
	}
}

// sweepCompletedEvents periodically completes past published events
func (w *LifecycleWorker) sweepCompletedEvents(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CompletionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runCompletionSweep(ctx)
		}
	}
}

// runCompletionSweep completes one batch of past events
func (w *LifecycleWorker) runCompletionSweep(ctx context.Context) {
	completed, err := w.eventService.CompletePastEvents(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Event completion sweep failed: %v", err))
		return
	}
	if completed > 0 {
		w.log.Info(fmt.Sprintf("Completed %d past events", completed))
	}
}

// Stats returns worker statistics
func (w *LifecycleWorker) Stats() *LifecycleWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &LifecycleWorkerStats{IsRunning: w.running}
}

// LifecycleWorkerStats contains worker statistics
type LifecycleWorkerStats struct {
	IsRunning bool `json:"is_running"`
}
