package domain

import "time"

// ScanMethod describes how a ticket was presented at the gate
type ScanMethod string

const (
	ScanMethodCamera ScanMethod = "camera"
	ScanMethodManual ScanMethod = "manual"
)

// IsValidScanMethod reports whether m names a known scan method
func IsValidScanMethod(m string) bool {
	switch ScanMethod(m) {
	case ScanMethodCamera, ScanMethodManual:
		return true
	}
	return false
}

// AttendanceRecord captures one successful gate scan of a ticket.
// A ticket accumulates one record per scan, including re-entry scans.
type AttendanceRecord struct {
	ID        string     `json:"id"`
	TicketID  string     `json:"ticket_id"`
	ScannedAt time.Time  `json:"scanned_at"`
	Location  string     `json:"location,omitempty"`
	ScannedBy string     `json:"scanned_by,omitempty"`
	Method    ScanMethod `json:"method"`
}
