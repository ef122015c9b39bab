package dto

import (
	"strings"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// CreateVenueRequest represents the request to register a venue
type CreateVenueRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Address     string `json:"address"`
	Capacity    int    `json:"capacity" binding:"required"`
	OpeningTime string `json:"openingTime" binding:"required"`
	ClosingTime string `json:"closingTime" binding:"required"`
}

// Validate validates the CreateVenueRequest
func (r *CreateVenueRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Venue name is required"
	}
	if r.Capacity <= 0 {
		return false, "Venue capacity must be a positive integer"
	}

	open, err := domain.ParseTimeOfDay(r.OpeningTime)
	if err != nil {
		return false, "Opening time must be a 24-hour HH:mm string"
	}
	closing, err := domain.ParseTimeOfDay(r.ClosingTime)
	if err != nil {
		return false, "Closing time must be a 24-hour HH:mm string"
	}
	if open >= closing {
		return false, "Opening time must be before closing time"
	}

	return true, ""
}

// ToVenue converts the request to a domain venue
func (r *CreateVenueRequest) ToVenue() *domain.Venue {
	open, _ := domain.ParseTimeOfDay(r.OpeningTime)
	closing, _ := domain.ParseTimeOfDay(r.ClosingTime)
	return &domain.Venue{
		Name:        strings.TrimSpace(r.Name),
		Address:     r.Address,
		Capacity:    r.Capacity,
		OpeningTime: open,
		ClosingTime: closing,
	}
}

// UpdateVenueRequest represents the request to update a venue
type UpdateVenueRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address     *string `json:"address"`
	Capacity    *int    `json:"capacity"`
	OpeningTime *string `json:"openingTime"`
	ClosingTime *string `json:"closingTime"`
}

// Validate validates the UpdateVenueRequest
func (r *UpdateVenueRequest) Validate() (bool, string) {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return false, "Venue name cannot be blank"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Venue capacity must be a positive integer"
	}
	if r.OpeningTime != nil {
		if _, err := domain.ParseTimeOfDay(*r.OpeningTime); err != nil {
			return false, "Opening time must be a 24-hour HH:mm string"
		}
	}
	if r.ClosingTime != nil {
		if _, err := domain.ParseTimeOfDay(*r.ClosingTime); err != nil {
			return false, "Closing time must be a 24-hour HH:mm string"
		}
	}
	return true, ""
}

// Apply copies the set fields onto the venue. The open < close ordering
// is re-validated by the domain after patching.
func (r *UpdateVenueRequest) Apply(v *domain.Venue) {
	if r.Name != nil {
		v.Name = strings.TrimSpace(*r.Name)
	}
	if r.Address != nil {
		v.Address = *r.Address
	}
	if r.Capacity != nil {
		v.Capacity = *r.Capacity
	}
	if r.OpeningTime != nil {
		open, _ := domain.ParseTimeOfDay(*r.OpeningTime)
		v.OpeningTime = open
	}
	if r.ClosingTime != nil {
		closing, _ := domain.ParseTimeOfDay(*r.ClosingTime)
		v.ClosingTime = closing
	}
}

// VenueResponse represents a venue on the wire
type VenueResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Capacity    int    `json:"capacity"`
	OpeningTime string `json:"openingTime"`
	ClosingTime string `json:"closingTime"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// NewVenueResponse converts a domain venue to its wire shape
func NewVenueResponse(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:          v.ID,
		Name:        v.Name,
		Address:     v.Address,
		Capacity:    v.Capacity,
		OpeningTime: v.OpeningTime.String(),
		ClosingTime: v.ClosingTime.String(),
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// VenueListResponse represents a list of venues
type VenueListResponse struct {
	Venues []*VenueResponse `json:"venues"`
	Total  int              `json:"total"`
}
