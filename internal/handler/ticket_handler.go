package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/internal/service"
	"github.com/Buffden/Event-Management-System-sub005/pkg/middleware"
	"github.com/Buffden/Event-Management-System-sub005/pkg/response"
)

// TicketHandler handles ticket issuance, scanning and attendance requests
type TicketHandler struct {
	ticketService service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Issue handles POST /tickets - issues a ticket for a published event.
// Retrying with the same X-Idempotency-Key returns the original ticket.
func (h *TicketHandler) Issue(c *gin.Context) {
	var req dto.IssueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		response.Unauthorized(c, "User identity not found in token")
		return
	}
	if req.UserID == "" {
		req.UserID = userID
	}

	idempotencyKey, _ := middleware.GetIdempotencyKey(c)

	ticket, err := h.ticketService.IssueTicket(c.Request.Context(), &req, idempotencyKey)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.NewTicketResponse(ticket))
}

// GetByID handles GET /tickets/:id - retrieves a ticket by ID
func (h *TicketHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Ticket id is required")
		return
	}

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewTicketResponse(ticket))
}

// ListByEvent handles GET /events/:id/tickets - lists an event's tickets
// with status, holder and issuance window filters
func (h *TicketHandler) ListByEvent(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	var filter dto.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	tickets, total, err := h.ticketService.ListEventTickets(c.Request.Context(), eventID, &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	ticketResponses := make([]*dto.TicketResponse, len(tickets))
	for i, ticket := range tickets {
		ticketResponses[i] = dto.NewTicketResponse(ticket)
	}

	response.Success(c, &dto.TicketListResponse{
		Tickets: ticketResponses,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// Revoke handles POST /tickets/:id/revoke - revokes an issued ticket,
// freeing its capacity slot (admin only)
func (h *TicketHandler) Revoke(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Ticket id is required")
		return
	}

	var req dto.RevokeTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Revocation reason is required")
		return
	}

	ticket, err := h.ticketService.RevokeTicket(c.Request.Context(), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewTicketResponse(ticket))
}

// Scan handles POST /tickets/scan - verifies a QR payload and checks the
// holder in (staff only)
func (h *TicketHandler) Scan(c *gin.Context) {
	var req dto.ScanTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	scannedBy, _ := middleware.GetUserID(c)
	req.ScannedBy = scannedBy

	result, err := h.ticketService.ScanTicket(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}

// Attendance handles GET /tickets/:id/attendance - lists a ticket's
// scan history
func (h *TicketHandler) Attendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Ticket id is required")
		return
	}

	records, err := h.ticketService.GetAttendance(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	recordResponses := make([]*dto.AttendanceRecordResponse, len(records))
	for i, record := range records {
		recordResponses[i] = dto.NewAttendanceRecordResponse(record)
	}

	response.Success(c, recordResponses)
}

// Stats handles GET /events/:id/tickets/stats - recomputes per-event
// ticket statistics
func (h *TicketHandler) Stats(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		response.BadRequest(c, "Event id is required")
		return
	}

	stats, err := h.ticketService.GetEventStats(c.Request.Context(), eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewTicketStatsResponse(stats))
}
