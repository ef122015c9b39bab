package dto

import (
	"strings"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// CreateEventRequest represents the request to create a new event (DRAFT)
type CreateEventRequest struct {
	Name             string    `json:"name" binding:"required,min=1,max=255"`
	Description      string    `json:"description"`
	Category         string    `json:"category" binding:"max=100"`
	VenueID          string    `json:"venueId" binding:"required"`
	BookingStartDate time.Time `json:"bookingStartDate" binding:"required"`
	BookingEndDate   time.Time `json:"bookingEndDate" binding:"required"`
	CreatedBy        string    `json:"-"` // Set from context
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Event name is required"
	}
	if r.VenueID == "" {
		return false, "Event venue is required"
	}
	if !r.BookingStartDate.Before(r.BookingEndDate) {
		return false, "Booking start time must be before booking end time"
	}
	return true, ""
}

// ToEvent converts the request to a domain event in DRAFT state
func (r *CreateEventRequest) ToEvent() *domain.Event {
	return &domain.Event{
		Name:             strings.TrimSpace(r.Name),
		Description:      r.Description,
		Category:         r.Category,
		VenueID:          r.VenueID,
		BookingStartTime: r.BookingStartDate,
		BookingEndTime:   r.BookingEndDate,
		Status:           domain.EventStatusDraft,
		CreatedBy:        r.CreatedBy,
	}
}

// UpdateEventRequest represents the request to update a DRAFT or
// REJECTED event's descriptive fields
type UpdateEventRequest struct {
	Name             *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Description      *string    `json:"description"`
	Category         *string    `json:"category" binding:"omitempty,max=100"`
	VenueID          *string    `json:"venueId"`
	BookingStartDate *time.Time `json:"bookingStartDate"`
	BookingEndDate   *time.Time `json:"bookingEndDate"`
}

// Validate validates the UpdateEventRequest
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return false, "Event name cannot be blank"
	}
	if r.VenueID != nil && *r.VenueID == "" {
		return false, "Event venue cannot be blank"
	}
	if r.BookingStartDate != nil && r.BookingEndDate != nil &&
		!r.BookingStartDate.Before(*r.BookingEndDate) {
		return false, "Booking start time must be before booking end time"
	}
	return true, ""
}

// Apply copies the set fields onto the event. Window ordering against
// unchanged fields is re-validated by the domain after patching.
func (r *UpdateEventRequest) Apply(e *domain.Event) {
	if r.Name != nil {
		e.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.VenueID != nil {
		e.VenueID = *r.VenueID
	}
	if r.BookingStartDate != nil {
		e.BookingStartTime = *r.BookingStartDate
	}
	if r.BookingEndDate != nil {
		e.BookingEndTime = *r.BookingEndDate
	}
}

// RejectEventRequest carries the mandatory rejection reason
type RejectEventRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EventResponse represents an event on the wire
type EventResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Category         string `json:"category,omitempty"`
	VenueID          string `json:"venueId"`
	BookingStartDate string `json:"bookingStartDate"`
	BookingEndDate   string `json:"bookingEndDate"`
	Status           string `json:"status"`
	RejectionReason  string `json:"rejectionReason,omitempty"`
	CreatedBy        string `json:"createdBy"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// NewEventResponse converts a domain event to its wire shape
func NewEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Category:         e.Category,
		VenueID:          e.VenueID,
		BookingStartDate: e.BookingStartTime.UTC().Format(time.RFC3339),
		BookingEndDate:   e.BookingEndTime.UTC().Format(time.RFC3339),
		Status:           string(e.Status),
		RejectionReason:  e.RejectionReason,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// EventListResponse represents a list of events
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Status    string `form:"status"`
	VenueID   string `form:"venueId"`
	SpeakerID string `form:"speakerId"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// Validate validates the filter values
func (f *EventListFilter) Validate() (bool, string) {
	if f.Status != "" && !domain.IsValidEventStatus(f.Status) {
		return false, "Unknown event status filter"
	}
	return true, ""
}

// SetDefaults sets default values for pagination
func (f *EventListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
