package domain

import "time"

// TicketStatus is the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusIssued  TicketStatus = "ISSUED"
	TicketStatusScanned TicketStatus = "SCANNED"
	TicketStatusExpired TicketStatus = "EXPIRED"
	TicketStatusRevoked TicketStatus = "REVOKED"
)

// IsValidTicketStatus reports whether s names a known status
func IsValidTicketStatus(s string) bool {
	switch TicketStatus(s) {
	case TicketStatusIssued, TicketStatusScanned, TicketStatusExpired, TicketStatusRevoked:
		return true
	}
	return false
}

// Ticket represents a single admission grant for one user at one event
type Ticket struct {
	ID             string       `json:"id"`
	EventID        string       `json:"event_id"`
	UserID         string       `json:"user_id"`
	Status         TicketStatus `json:"status"`
	QRPayload      string       `json:"qr_payload"`
	ScanCount      int          `json:"scan_count"`
	IssuedAt       time.Time    `json:"issued_at"`
	ExpiresAt      time.Time    `json:"expires_at"`
	ScannedAt      *time.Time   `json:"scanned_at,omitempty"`
	RevokeReason   string       `json:"revoke_reason,omitempty"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
}

// IsTerminal reports whether no further status transition is possible.
// ISSUED is the only non-terminal state.
func (t *Ticket) IsTerminal() bool {
	return t.Status != TicketStatusIssued
}

// IsExpired reports whether the ticket is past its expiry at the given
// time. Evaluated against the wall clock, not the stored status.
func (t *Ticket) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// OccupiesCapacity reports whether the ticket consumes a capacity slot.
// ISSUED and SCANNED tickets count against the venue capacity; EXPIRED
// and REVOKED tickets have freed their slot.
func (t *Ticket) OccupiesCapacity() bool {
	return t.Status == TicketStatusIssued || t.Status == TicketStatusScanned
}
