package service

import (
	"context"
	"errors"
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

// TicketService defines the interface for ticket issuance, admission
// control and attendance tracking
type TicketService interface {
	// IssueTicket issues a ticket for a published event, enforcing the
	// venue capacity and the one-live-ticket-per-user rule
	IssueTicket(ctx context.Context, req *dto.IssueTicketRequest, idempotencyKey string) (*domain.Ticket, error)

	// GetTicket retrieves a ticket by ID
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)

	// ListEventTickets lists tickets for an event with filters
	ListEventTickets(ctx context.Context, eventID string, filter *dto.TicketListFilter) ([]*domain.Ticket, int, error)

	// RevokeTicket revokes an issued ticket, freeing its capacity slot
	RevokeTicket(ctx context.Context, id, reason string) (*domain.Ticket, error)

	// ScanTicket verifies a QR payload and checks the holder in. Scanning
	// an already scanned ticket is accepted and recorded as a re-entry.
	ScanTicket(ctx context.Context, req *dto.ScanTicketRequest) (*dto.ScanResultResponse, error)

	// GetAttendance lists the attendance records of a ticket
	GetAttendance(ctx context.Context, ticketID string) ([]*domain.AttendanceRecord, error)

	// GetEventStats recomputes per-event ticket statistics
	GetEventStats(ctx context.Context, eventID string) (*domain.TicketStats, error)

	// ExpireOverdueTickets expires overdue issued tickets in batches
	ExpireOverdueTickets(ctx context.Context, limit int) (int, error)
}

// ticketService implements TicketService
type ticketService struct {
	ticketRepo  repository.TicketRepository
	eventRepo   repository.EventRepository
	signer      *QRSigner
	publisher   FactPublisher
	expiryGrace time.Duration
}

// TicketServiceConfig contains configuration for the ticket service
type TicketServiceConfig struct {
	// ExpiryGrace extends ticket validity past the event's booking end
	ExpiryGrace time.Duration
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	signer *QRSigner,
	publisher FactPublisher,
	cfg *TicketServiceConfig,
) TicketService {
	grace := time.Duration(0)
	if cfg != nil && cfg.ExpiryGrace > 0 {
		grace = cfg.ExpiryGrace
	}
	if publisher == nil {
		publisher = NewNoOpFactPublisher()
	}
	return &ticketService{
		ticketRepo:  ticketRepo,
		eventRepo:   eventRepo,
		signer:      signer,
		publisher:   publisher,
		expiryGrace: grace,
	}
}

// IssueTicket issues a ticket for a published event. Retrying with the
// same idempotency key returns the originally issued ticket.
func (s *ticketService) IssueTicket(ctx context.Context, req *dto.IssueTicketRequest, idempotencyKey string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.issue")
	defer span.End()

	start := time.Now()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("user_id", req.UserID),
	)

	if idempotencyKey != "" {
		existing, err := s.ticketRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if existing != nil {
			span.SetAttributes(attribute.String("ticket_id", existing.ID))
			telemetry.AddSpanEvent(ctx, "idempotent replay")
			span.SetStatus(codes.Ok, "")
			return existing, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.IsBookingOpen(start) {
		metrics.RecordIssueRejection(ctx, req.EventID, "event_not_open")
		span.SetStatus(codes.Error, "event not open")
		return nil, domain.ErrEventNotPublished
	}

	ticket := &domain.Ticket{
		ID:             uuid.New().String(),
		EventID:        req.EventID,
		UserID:         req.UserID,
		Status:         domain.TicketStatusIssued,
		IssuedAt:       start,
		ExpiresAt:      event.BookingEndTime.Add(s.expiryGrace),
		IdempotencyKey: idempotencyKey,
	}

	payload, err := s.signer.Sign(ticket.ID, ticket.EventID, ticket.IssuedAt)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ticket.QRPayload = payload

	if err := s.ticketRepo.Issue(ctx, ticket); err != nil {
		metrics.RecordIssueRejection(ctx, req.EventID, rejectionReason(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordIssue(ctx, req.EventID, time.Since(start).Seconds())
	if err := s.publisher.PublishTicketFact(ctx, domain.FactTicketIssued, ticket); err != nil {
		telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
	}

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetTicket retrieves a ticket by ID. An ISSUED ticket found past its
// expiry is persisted as EXPIRED before being returned.
func (s *ticketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.lazyExpire(ctx, ticket), nil
}

// ListEventTickets lists tickets for an event with filters. ISSUED rows
// past their expiry are reported and persisted as EXPIRED.
func (s *ticketService) ListEventTickets(ctx context.Context, eventID string, filter *dto.TicketListFilter) ([]*domain.Ticket, int, error) {
	if valid, msg := filter.Validate(); !valid {
		return nil, 0, domain.NewValidationError("%s", msg)
	}
	filter.SetDefaults()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, 0, err
	}

	repoFilter := &repository.TicketFilter{
		Status: filter.Status,
		UserID: filter.UserID,
		From:   filter.From,
		To:     filter.To,
	}
	tickets, total, err := s.ticketRepo.ListByEvent(ctx, eventID, repoFilter, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}

	for i, t := range tickets {
		tickets[i] = s.lazyExpire(ctx, t)
	}
	return tickets, total, nil
}

// RevokeTicket revokes an issued ticket
func (s *ticketService) RevokeTicket(ctx context.Context, id, reason string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.revoke")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	if reason == "" {
		span.SetStatus(codes.Error, "reason required")
		return nil, domain.NewValidationError("revocation reason is required")
	}

	if err := s.ticketRepo.Revoke(ctx, id, reason); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordRevocation(ctx, ticket.EventID)
	if err := s.publisher.PublishTicketFact(ctx, domain.FactTicketRevoked, ticket); err != nil {
		telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// ScanTicket verifies a QR payload and checks the holder in
func (s *ticketService) ScanTicket(ctx context.Context, req *dto.ScanTicketRequest) (*dto.ScanResultResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.scan")
	defer span.End()

	start := time.Now()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	claims, err := s.signer.Verify(req.QRPayload)
	if err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("ticket_id", claims.TicketID),
		attribute.String("event_id", claims.EventID),
	)

	record := &domain.AttendanceRecord{
		ID:        uuid.New().String(),
		TicketID:  claims.TicketID,
		ScannedAt: start,
		Location:  req.Location,
		ScannedBy: req.ScannedBy,
		Method:    domain.ScanMethod(req.Method),
	}

	ticket, reentry, err := s.ticketRepo.RecordScan(ctx, claims.TicketID, record)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordScan(ctx, ticket.EventID, reentry, time.Since(start).Seconds())
	if err := s.publisher.PublishTicketFact(ctx, domain.FactTicketScanned, ticket); err != nil {
		telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
	}

	span.SetAttributes(
		attribute.Bool("reentry", reentry),
		attribute.Int("scan_count", ticket.ScanCount),
	)
	span.SetStatus(codes.Ok, "")

	result := &dto.ScanResultResponse{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		AttendeeID: ticket.UserID,
		Status:     string(ticket.Status),
		ScanCount:  ticket.ScanCount,
		ScannedAt:  record.ScannedAt.UTC().Format(time.RFC3339),
		Reentry:    reentry,
	}
	return result, nil
}

// GetAttendance lists the attendance records of a ticket
func (s *ticketService) GetAttendance(ctx context.Context, ticketID string) ([]*domain.AttendanceRecord, error) {
	if _, err := s.ticketRepo.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListAttendance(ctx, ticketID)
}

// GetEventStats recomputes per-event ticket statistics from the store
func (s *ticketService) GetEventStats(ctx context.Context, eventID string) (*domain.TicketStats, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetStats(ctx, eventID)
}

// ExpireOverdueTickets expires overdue issued tickets in batches
func (s *ticketService) ExpireOverdueTickets(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.expire_overdue")
	defer span.End()

	count, err := s.ticketRepo.ExpireOverdue(ctx, time.Now(), limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	if count > 0 {
		metrics.RecordExpirations(ctx, int64(count))
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// lazyExpire persists the EXPIRED state of an ISSUED ticket found past its
// expiry. The returned ticket always reflects the wall clock even when the
// persistence is lost to a concurrent writer.
func (s *ticketService) lazyExpire(ctx context.Context, ticket *domain.Ticket) *domain.Ticket {
	if ticket.Status != domain.TicketStatusIssued || !ticket.IsExpired(time.Now()) {
		return ticket
	}

	if err := s.ticketRepo.MarkExpired(ctx, ticket.ID); err == nil {
		metrics.RecordExpirations(ctx, 1)
		if err := s.publisher.PublishTicketFact(ctx, domain.FactTicketExpired, ticket); err != nil {
			telemetry.AddSpanEvent(ctx, "fact publish failed", attribute.String("error", err.Error()))
		}
	}
	ticket.Status = domain.TicketStatusExpired
	return ticket
}

// rejectionReason maps an issuance error to a metric label
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateTicket):
		return "duplicate"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity"
	case domain.IsStateError(err):
		return "event_not_open"
	case domain.IsNotFoundError(err):
		return "event_not_found"
	default:
		return "error"
	}
}
