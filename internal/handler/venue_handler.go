package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/pkg/response"
)

// VenueHandler handles venue-related HTTP requests
type VenueHandler struct {
	venueService service.VenueService
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(venueService service.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

// Create handles POST /venues - registers a new venue (admin only)
func (h *VenueHandler) Create(c *gin.Context) {
	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	venue, err := h.venueService.CreateVenue(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.NewVenueResponse(venue))
}

// List handles GET /venues - lists all venues
func (h *VenueHandler) List(c *gin.Context) {
	venues, err := h.venueService.ListVenues(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	venueResponses := make([]*dto.VenueResponse, len(venues))
	for i, venue := range venues {
		venueResponses[i] = dto.NewVenueResponse(venue)
	}

	response.Success(c, &dto.VenueListResponse{
		Venues: venueResponses,
		Total:  len(venueResponses),
	})
}

// GetByID handles GET /venues/:id - retrieves a venue by ID
func (h *VenueHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Venue id is required")
		return
	}

	venue, err := h.venueService.GetVenue(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewVenueResponse(venue))
}

// Update handles PUT /venues/:id - updates a venue (admin only)
func (h *VenueHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Venue id is required")
		return
	}

	var req dto.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	venue, err := h.venueService.UpdateVenue(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewVenueResponse(venue))
}

// Delete handles DELETE /venues/:id - deletes a venue with no active
// events (admin only)
func (h *VenueHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Venue id is required")
		return
	}

	if err := h.venueService.DeleteVenue(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}
