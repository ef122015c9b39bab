package repository

import (
	"context"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// VenueRepository defines the interface for venue data access
type VenueRepository interface {
	// Create creates a new venue
	Create(ctx context.Context, venue *domain.Venue) error
	// GetByID retrieves a venue by ID
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	// List retrieves all venues ordered by name
	List(ctx context.Context) ([]*domain.Venue, error)
	// Update updates a venue, refusing capacity reductions below the
	// highest live ticket count of any active event at the venue
	Update(ctx context.Context, venue *domain.Venue) error
	// Delete deletes a venue that has no pending or published events
	Delete(ctx context.Context, id string) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create creates a new event
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// List lists events with filters and pagination
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)
	// Update updates an event's descriptive fields
	Update(ctx context.Context, event *domain.Event) error
	// Delete deletes an event by ID
	Delete(ctx context.Context, id string) error
	// UpdateStatus transitions an event from one status to another,
	// failing if the event is not currently in the expected status
	UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus, reason string) error
	// CancelWithRevoke cancels a published event and revokes its
	// outstanding issued tickets in a single transaction
	CancelWithRevoke(ctx context.Context, id, revokeReason string) (int, error)
	// CompletePastEvents moves published events whose booking window has
	// closed to completed, returning the IDs of the events it moved
	CompletePastEvents(ctx context.Context, now time.Time, limit int) ([]string, error)
	// CountActiveByVenue counts pending and published events at a venue
	CountActiveByVenue(ctx context.Context, venueID string) (int, error)
}

// EventFilter contains filter options for listing events
type EventFilter struct {
	Status    string
	VenueID   string
	SpeakerID string
}

// TicketRepository defines the interface for ticket and attendance data access
type TicketRepository interface {
	// Issue atomically issues a ticket against the venue capacity of the
	// given published event
	Issue(ctx context.Context, ticket *domain.Ticket) error
	// GetByID retrieves a ticket by ID
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIdempotencyKey retrieves a ticket by its issuance idempotency
	// key, returning nil without error when no ticket matches
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error)
	// ListByEvent lists tickets for an event with filters and pagination
	ListByEvent(ctx context.Context, eventID string, filter *TicketFilter, limit, offset int) ([]*domain.Ticket, int, error)
	// Revoke revokes an issued ticket, freeing its capacity slot
	Revoke(ctx context.Context, id, reason string) error
	// MarkExpired moves an issued ticket past its expiry to expired
	MarkExpired(ctx context.Context, id string) error
	// RecordScan applies a gate scan to a ticket: first scans move the
	// ticket to scanned, later scans of a scanned ticket are recorded as
	// re-entries. Both append an attendance record.
	RecordScan(ctx context.Context, ticketID string, record *domain.AttendanceRecord) (*domain.Ticket, bool, error)
	// ListAttendance lists attendance records for a ticket, oldest first
	ListAttendance(ctx context.Context, ticketID string) ([]*domain.AttendanceRecord, error)
	// GetStats recomputes the per-status ticket counts for an event
	GetStats(ctx context.Context, eventID string) (*domain.TicketStats, error)
	// ExpireOverdue expires issued tickets past their expiry in batches,
	// returning the number of tickets moved
	ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error)
}

// TicketFilter contains filter options for listing tickets
type TicketFilter struct {
	Status string
	UserID string
	From   *time.Time
	To     *time.Time
}
