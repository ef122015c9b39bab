package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/internal/metrics"
	"github.com/Buffden/Event-Management-System-sub005/internal/repository"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

const cancelledTicketReason = "event cancelled"

// EventService defines the interface for event lifecycle business logic
type EventService interface {
	// CreateEvent creates a new event in DRAFT
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*domain.Event, error)

	// ListEvents lists events with filters and pagination
	ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error)

	// UpdateEvent updates a DRAFT or REJECTED event's descriptive fields
	UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)

	// DeleteEvent deletes a DRAFT event
	DeleteEvent(ctx context.Context, id string) error

	// SubmitEvent moves a DRAFT or REJECTED event to PENDING_APPROVAL
	SubmitEvent(ctx context.Context, id string) (*domain.Event, error)

	// ApproveEvent moves a PENDING_APPROVAL event to PUBLISHED
	ApproveEvent(ctx context.Context, id string) (*domain.Event, error)

	// RejectEvent moves a PENDING_APPROVAL event to REJECTED with a reason
	RejectEvent(ctx context.Context, id, reason string) (*domain.Event, error)

	// CancelEvent cancels a PUBLISHED event and revokes its issued tickets
	CancelEvent(ctx context.Context, id string) (*domain.Event, int, error)

	// CompletePastEvents moves published events past their booking end to
	// COMPLETED, returning how many were moved
	CompletePastEvents(ctx context.Context, limit int) (int, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo          repository.EventRepository
	venueRepo          repository.VenueRepository
	publisher          FactPublisher
	rejectReasonMinLen int
}

// EventServiceConfig contains configuration for the event service
type EventServiceConfig struct {
	RejectReasonMinLen int
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	venueRepo repository.VenueRepository,
	publisher FactPublisher,
	cfg *EventServiceConfig,
) EventService {
	minLen := 10
	if cfg != nil && cfg.RejectReasonMinLen > 0 {
		minLen = cfg.RejectReasonMinLen
	}
	if publisher == nil {
		publisher = NewNoOpFactPublisher()
	}
	return &eventService{
		eventRepo:          eventRepo,
		venueRepo:          venueRepo,
		publisher:          publisher,
		rejectReasonMinLen: minLen,
	}
}

// CreateEvent creates a new event in DRAFT
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	event := req.ToEvent()
	event.ID = uuid.New().String()
	event.CreatedBy = req.CreatedBy
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.validateAgainstVenue(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("venue_id", event.VenueID),
	)
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents lists events with filters and pagination
func (s *eventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	if valid, msg := filter.Validate(); !valid {
		return nil, 0, domain.NewValidationError("%s", msg)
	}
	filter.SetDefaults()

	repoFilter := &repository.EventFilter{
		Status:    filter.Status,
		VenueID:   filter.VenueID,
		SpeakerID: filter.SpeakerID,
	}
	return s.eventRepo.List(ctx, repoFilter, filter.Limit, filter.Offset)
}

// UpdateEvent updates a DRAFT or REJECTED event's descriptive fields
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !event.IsEditable() {
		span.SetStatus(codes.Error, "not editable")
		return nil, domain.ErrInvalidTransition
	}

	req.Apply(event)
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.validateAgainstVenue(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// DeleteEvent deletes a DRAFT event
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SubmitEvent moves a DRAFT or REJECTED event to PENDING_APPROVAL. A
// resubmission clears the previous rejection reason.
func (s *eventService) SubmitEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.EventStatusPendingApproval, "", domain.FactEventSubmitted)
}

// ApproveEvent moves a PENDING_APPROVAL event to PUBLISHED
func (s *eventService) ApproveEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.EventStatusPublished, "", domain.FactEventPublished)
}

// RejectEvent moves a PENDING_APPROVAL event to REJECTED, recording the
// reviewer's reason
func (s *eventService) RejectEvent(ctx context.Context, id, reason string) (*domain.Event, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.rejectReasonMinLen {
		return nil, domain.NewValidationError("rejection reason must be at least %d characters", s.rejectReasonMinLen)
	}
	return s.transition(ctx, id, domain.EventStatusRejected, reason, domain.FactEventRejected)
}

// CancelEvent cancels a PUBLISHED event. All of the event's outstanding
// ISSUED tickets are revoked in the same transaction.
func (s *eventService) CancelEvent(ctx context.Context, id string) (*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	revoked, err := s.eventRepo.CancelWithRevoke(ctx, id, cancelledTicketReason)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	metrics.RecordTransition(ctx, string(domain.EventStatusPublished), string(domain.EventStatusCancelled))
	metrics.RecordRevocations(ctx, id, int64(revoked))
	if err := s.publisher.PublishEventFact(ctx, domain.FactEventCancelled, id, cancelledTicketReason); err != nil {
		telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
	}

	span.SetAttributes(attribute.Int("revoked_tickets", revoked))
	span.SetStatus(codes.Ok, "")
	return event, revoked, nil
}

// CompletePastEvents moves published events past their booking end to
// COMPLETED, returning how many were moved
func (s *eventService) CompletePastEvents(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.complete_past")
	defer span.End()

	ids, err := s.eventRepo.CompletePastEvents(ctx, time.Now(), limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	for _, id := range ids {
		metrics.RecordTransition(ctx, string(domain.EventStatusPublished), string(domain.EventStatusCompleted))
		if err := s.publisher.PublishEventFact(ctx, domain.FactEventCompleted, id, ""); err != nil {
			telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
		}
	}

	span.SetAttributes(attribute.Int("count", len(ids)))
	span.SetStatus(codes.Ok, "")
	return len(ids), nil
}

// transition applies a status transition after checking it against the
// lifecycle table, then records metrics and publishes the fact
func (s *eventService) transition(ctx context.Context, id string, to domain.EventStatus, reason string, fact domain.LifecycleFactType) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.transition")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("to", string(to)),
	)

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	from := event.Status
	if !domain.CanTransition(from, to) {
		span.SetAttributes(attribute.String("from", string(from)))
		span.SetStatus(codes.Error, "illegal transition")
		return nil, domain.ErrInvalidTransition
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, from, to, reason); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event.Status = to
	event.RejectionReason = reason
	event.UpdatedAt = time.Now()

	metrics.RecordTransition(ctx, string(from), string(to))
	if err := s.publisher.PublishEventFact(ctx, fact, id, reason); err != nil {
		telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// validateAgainstVenue checks the referenced venue exists and that the
// booking window's wall-clock times fall inside its operating hours
func (s *eventService) validateAgainstVenue(ctx context.Context, event *domain.Event) error {
	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	if err != nil {
		return err
	}

	start := clockOf(event.BookingStartTime)
	end := clockOf(event.BookingEndTime)
	if start < venue.OpeningTime || end > venue.ClosingTime {
		return domain.NewValidationError(
			"event window %s-%s is outside venue hours %s-%s",
			start, end, venue.OpeningTime, venue.ClosingTime,
		)
	}
	return nil
}

// clockOf extracts the wall-clock time of day from a timestamp
func clockOf(t time.Time) domain.TimeOfDay {
	return domain.TimeOfDay(t.Hour()*60 + t.Minute())
}
