package dto

import (
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// IssueTicketRequest represents the request to issue a ticket.
// UserID is optional; when absent the ticket is issued to the caller.
type IssueTicketRequest struct {
	EventID string `json:"eventId" binding:"required"`
	UserID  string `json:"userId"`
}

// Validate validates the IssueTicketRequest
func (r *IssueTicketRequest) Validate() (bool, string) {
	if r.EventID == "" {
		return false, "Event id is required"
	}
	return true, ""
}

// ScanTicketRequest represents a gate scan of a QR payload
type ScanTicketRequest struct {
	QRPayload string `json:"qrPayload" binding:"required"`
	Location  string `json:"location"`
	Method    string `json:"method" binding:"required"`
	ScannedBy string `json:"-"` // Set from context
}

// Validate validates the ScanTicketRequest
func (r *ScanTicketRequest) Validate() (bool, string) {
	if r.QRPayload == "" {
		return false, "QR payload is required"
	}
	if !domain.IsValidScanMethod(r.Method) {
		return false, "Scan method must be camera or manual"
	}
	return true, ""
}

// RevokeTicketRequest carries the revocation reason
type RevokeTicketRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Validate validates the RevokeTicketRequest
func (r *RevokeTicketRequest) Validate() (bool, string) {
	if r.Reason == "" {
		return false, "Revocation reason is required"
	}
	return true, ""
}

// TicketResponse represents a ticket on the wire
type TicketResponse struct {
	ID           string  `json:"id"`
	EventID      string  `json:"eventId"`
	UserID       string  `json:"userId"`
	Status       string  `json:"status"`
	QRPayload    string  `json:"qrPayload,omitempty"`
	ScanCount    int     `json:"scanCount"`
	IssuedAt     string  `json:"issuedAt"`
	ExpiresAt    string  `json:"expiresAt"`
	ScannedAt    *string `json:"scannedAt,omitempty"`
	RevokeReason string  `json:"revokeReason,omitempty"`
}

// NewTicketResponse converts a domain ticket to its wire shape
func NewTicketResponse(t *domain.Ticket) *TicketResponse {
	resp := &TicketResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		UserID:       t.UserID,
		Status:       string(t.Status),
		QRPayload:    t.QRPayload,
		ScanCount:    t.ScanCount,
		IssuedAt:     t.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:    t.ExpiresAt.UTC().Format(time.RFC3339),
		RevokeReason: t.RevokeReason,
	}
	if t.ScannedAt != nil {
		scannedAt := t.ScannedAt.UTC().Format(time.RFC3339)
		resp.ScannedAt = &scannedAt
	}
	return resp
}

// ScanResultResponse is returned to the gate operator after a scan
type ScanResultResponse struct {
	TicketID   string `json:"ticketId"`
	EventID    string `json:"eventId"`
	AttendeeID string `json:"attendeeId"`
	Status     string `json:"status"`
	ScanCount  int    `json:"scanCount"`
	ScannedAt  string `json:"scannedAt"`
	// Reentry is true when the ticket had already been scanned before
	Reentry bool `json:"reentry"`
}

// AttendanceRecordResponse represents one gate scan on the wire
type AttendanceRecordResponse struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticketId"`
	ScannedAt string `json:"scannedAt"`
	Location  string `json:"location,omitempty"`
	ScannedBy string `json:"scannedBy,omitempty"`
	Method    string `json:"method"`
}

// NewAttendanceRecordResponse converts a domain record to its wire shape
func NewAttendanceRecordResponse(r *domain.AttendanceRecord) *AttendanceRecordResponse {
	return &AttendanceRecordResponse{
		ID:        r.ID,
		TicketID:  r.TicketID,
		ScannedAt: r.ScannedAt.UTC().Format(time.RFC3339),
		Location:  r.Location,
		ScannedBy: r.ScannedBy,
		Method:    string(r.Method),
	}
}

// TicketListResponse represents a list of tickets
type TicketListResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// TicketListFilter represents filters for listing an event's tickets
type TicketListFilter struct {
	Status string     `form:"status"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	UserID string     `form:"userId"` // substring match
	Limit  int        `form:"limit"`
	Offset int        `form:"offset"`
}

// Validate validates the filter values
func (f *TicketListFilter) Validate() (bool, string) {
	if f.Status != "" && !domain.IsValidTicketStatus(f.Status) {
		return false, "Unknown ticket status filter"
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return false, "Filter range end must not be before its start"
	}
	return true, ""
}

// SetDefaults sets default values for pagination
func (f *TicketListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// TicketStatsResponse represents per-event ticket statistics
type TicketStatsResponse struct {
	EventID        string  `json:"eventId"`
	Total          int64   `json:"total"`
	Issued         int64   `json:"issued"`
	Scanned        int64   `json:"scanned"`
	Expired        int64   `json:"expired"`
	Revoked        int64   `json:"revoked"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// NewTicketStatsResponse converts domain stats to the wire shape
func NewTicketStatsResponse(s *domain.TicketStats) *TicketStatsResponse {
	return &TicketStatsResponse{
		EventID:        s.EventID,
		Total:          s.Total,
		Issued:         s.Issued,
		Scanned:        s.Scanned,
		Expired:        s.Expired,
		Revoked:        s.Revoked,
		AttendanceRate: s.AttendanceRate(),
	}
}
