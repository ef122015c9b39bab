package domain

// TicketStats is the per-event aggregate derived from ticket rows.
// It is recomputed from the store on every read; there are no mutable
// counters to drift from ground truth.
type TicketStats struct {
	EventID string `json:"event_id"`
	Total   int64  `json:"total"`
	Issued  int64  `json:"issued"`
	Scanned int64  `json:"scanned"`
	Expired int64  `json:"expired"`
	Revoked int64  `json:"revoked"`
}

// AttendanceRate is scanned/(issued+scanned), 0 when the denominator is 0.
// Tickets that expired or were revoked without ever being scanned are
// excluded from the denominator.
func (s *TicketStats) AttendanceRate() float64 {
	denominator := s.Issued + s.Scanned
	if denominator == 0 {
		return 0
	}
	return float64(s.Scanned) / float64(denominator)
}
