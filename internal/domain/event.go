package domain

import (
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft           EventStatus = "DRAFT"
	EventStatusPendingApproval EventStatus = "PENDING_APPROVAL"
	EventStatusPublished       EventStatus = "PUBLISHED"
	EventStatusRejected        EventStatus = "REJECTED"
	EventStatusCancelled       EventStatus = "CANCELLED"
	EventStatusCompleted       EventStatus = "COMPLETED"
)

// eventTransitions enumerates every legal status transition
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:           {EventStatusPendingApproval},
	EventStatusPendingApproval: {EventStatusPublished, EventStatusRejected},
	EventStatusRejected:        {EventStatusPendingApproval},
	EventStatusPublished:       {EventStatusCancelled, EventStatusCompleted},
	EventStatusCancelled:       {},
	EventStatusCompleted:       {},
}

// CanTransition reports whether from → to is a legal transition
func CanTransition(from, to EventStatus) bool {
	for _, next := range eventTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidEventStatus reports whether s names a known status
func IsValidEventStatus(s string) bool {
	switch EventStatus(s) {
	case EventStatusDraft, EventStatusPendingApproval, EventStatusPublished,
		EventStatusRejected, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// Event represents an event owned by a speaker and hosted at a venue
type Event struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Category         string      `json:"category"`
	VenueID          string      `json:"venue_id"`
	BookingStartTime time.Time   `json:"booking_start_time"`
	BookingEndTime   time.Time   `json:"booking_end_time"`
	Status           EventStatus `json:"status"`
	RejectionReason  string      `json:"rejection_reason,omitempty"`
	CreatedBy        string      `json:"created_by"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// IsEditable reports whether descriptive fields may be modified
func (e *Event) IsEditable() bool {
	return e.Status == EventStatusDraft || e.Status == EventStatusRejected
}

// IsBookingOpen reports whether tickets may be issued at the given time
func (e *Event) IsBookingOpen(now time.Time) bool {
	return e.Status == EventStatusPublished && now.Before(e.BookingEndTime)
}

// Validate validates the event's descriptive fields
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return NewValidationError("event name is required")
	}
	if e.VenueID == "" {
		return NewValidationError("event venue is required")
	}
	if !e.BookingStartTime.Before(e.BookingEndTime) {
		return NewValidationError("booking start time must be before booking end time")
	}
	return nil
}
