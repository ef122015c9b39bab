package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/pkg/middleware"
	"github.com/Buffden/Event-Management-System-sub005/pkg/response"
)

// EventHandler handles event lifecycle HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles POST /events - creates a new DRAFT event (speaker only)
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		response.Unauthorized(c, "User identity not found in token")
		return
	}
	req.CreatedBy = userID

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.NewEventResponse(event))
}

// List handles GET /events - lists events with pagination and filters
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	events, total, err := h.eventService.ListEvents(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	eventResponses := make([]*dto.EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = dto.NewEventResponse(event)
	}

	response.Success(c, &dto.EventListResponse{
		Events: eventResponses,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetByID handles GET /events/:id - retrieves an event by ID
func (h *EventHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewEventResponse(event))
}

// Update handles PUT /events/:id - updates a DRAFT or REJECTED event
func (h *EventHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewEventResponse(event))
}

// Delete handles DELETE /events/:id - deletes a DRAFT event
func (h *EventHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// Submit handles POST /events/:id/submit - submits a draft for review
func (h *EventHandler) Submit(c *gin.Context) {
	h.transition(c, h.eventService.SubmitEvent)
}

// Approve handles POST /events/:id/approve - publishes a pending event
// (admin only)
func (h *EventHandler) Approve(c *gin.Context) {
	h.transition(c, h.eventService.ApproveEvent)
}

// Reject handles POST /events/:id/reject - rejects a pending event with
// a reason (admin only)
func (h *EventHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	var req dto.RejectEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Rejection reason is required")
		return
	}

	event, err := h.eventService.RejectEvent(c.Request.Context(), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewEventResponse(event))
}

// Cancel handles POST /events/:id/cancel - cancels a published event and
// revokes its outstanding tickets (admin only)
func (h *EventHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	event, revoked, err := h.eventService.CancelEvent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"event":          dto.NewEventResponse(event),
		"revokedTickets": revoked,
	})
}

// transition runs an id-only lifecycle operation and writes the result
func (h *EventHandler) transition(c *gin.Context, op func(ctx context.Context, id string) (*domain.Event, error)) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	event, err := op(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewEventResponse(event))
}
