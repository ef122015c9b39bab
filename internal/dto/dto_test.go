package dto

import (
	"testing"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

func TestCreateVenueRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateVenueRequest
		want    bool
		wantMsg string
	}{
		{
			name: "valid request",
			req: CreateVenueRequest{
				Name:        "Main Hall",
				Capacity:    300,
				OpeningTime: "08:00",
				ClosingTime: "22:00",
			},
			want: true,
		},
		{
			name: "midnight closing accepted",
			req: CreateVenueRequest{
				Name:        "Late Club",
				Capacity:    50,
				OpeningTime: "18:00",
				ClosingTime: "24:00",
			},
			want: true,
		},
		{
			name:    "missing name",
			req:     CreateVenueRequest{Capacity: 10, OpeningTime: "08:00", ClosingTime: "22:00"},
			want:    false,
			wantMsg: "Venue name is required",
		},
		{
			name:    "zero capacity",
			req:     CreateVenueRequest{Name: "Hall", OpeningTime: "08:00", ClosingTime: "22:00"},
			want:    false,
			wantMsg: "Venue capacity must be a positive integer",
		},
		{
			name:    "malformed opening time",
			req:     CreateVenueRequest{Name: "Hall", Capacity: 10, OpeningTime: "8am", ClosingTime: "22:00"},
			want:    false,
			wantMsg: "Opening time must be a 24-hour HH:mm string",
		},
		{
			name:    "open after close",
			req:     CreateVenueRequest{Name: "Hall", Capacity: 10, OpeningTime: "22:00", ClosingTime: "08:00"},
			want:    false,
			wantMsg: "Opening time must be before closing time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := tt.req.Validate()
			if got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
			if !tt.want && msg != tt.wantMsg {
				t.Errorf("Validate() msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestCreateVenueRequest_ToVenue_NormalisesMidnight(t *testing.T) {
	req := CreateVenueRequest{
		Name:        "Late Club",
		Capacity:    50,
		OpeningTime: "18:00",
		ClosingTime: "24:00",
	}

	venue := req.ToVenue()
	if venue.ClosingTime != domain.EndOfDay {
		t.Errorf("ClosingTime = %v, want %v", venue.ClosingTime, domain.EndOfDay)
	}
	if venue.ClosingTime.String() != "23:59" {
		t.Errorf("ClosingTime string = %q, want 23:59", venue.ClosingTime.String())
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	end := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name    string
		req     CreateEventRequest
		want    bool
		wantMsg string
	}{
		{
			name: "valid request",
			req: CreateEventRequest{
				Name:             "Go Conference",
				VenueID:          "venue-1",
				BookingStartDate: start,
				BookingEndDate:   end,
			},
			want: true,
		},
		{
			name: "missing name",
			req: CreateEventRequest{
				VenueID:          "venue-1",
				BookingStartDate: start,
				BookingEndDate:   end,
			},
			want:    false,
			wantMsg: "Event name is required",
		},
		{
			name: "missing venue",
			req: CreateEventRequest{
				Name:             "Go Conference",
				BookingStartDate: start,
				BookingEndDate:   end,
			},
			want:    false,
			wantMsg: "Event venue is required",
		},
		{
			name: "end before start",
			req: CreateEventRequest{
				Name:             "Go Conference",
				VenueID:          "venue-1",
				BookingStartDate: end,
				BookingEndDate:   start,
			},
			want:    false,
			wantMsg: "Booking start time must be before booking end time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := tt.req.Validate()
			if got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
			if !tt.want && msg != tt.wantMsg {
				t.Errorf("Validate() msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestScanTicketRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  ScanTicketRequest
		want bool
	}{
		{"camera scan", ScanTicketRequest{QRPayload: "token", Method: "camera"}, true},
		{"manual scan", ScanTicketRequest{QRPayload: "token", Method: "manual"}, true},
		{"missing payload", ScanTicketRequest{Method: "camera"}, false},
		{"unknown method", ScanTicketRequest{QRPayload: "token", Method: "telepathy"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := tt.req.Validate()
			if got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTicketListFilter_Validate(t *testing.T) {
	from := time.Now()
	to := from.Add(time.Hour)

	valid := TicketListFilter{Status: "ISSUED", From: &from, To: &to}
	if ok, msg := valid.Validate(); !ok {
		t.Errorf("Validate() failed unexpectedly: %s", msg)
	}

	badStatus := TicketListFilter{Status: "PENDING"}
	if ok, _ := badStatus.Validate(); ok {
		t.Error("unknown status should fail validation")
	}

	badRange := TicketListFilter{From: &to, To: &from}
	if ok, _ := badRange.Validate(); ok {
		t.Error("inverted range should fail validation")
	}
}

func TestNewTicketStatsResponse(t *testing.T) {
	stats := &domain.TicketStats{
		EventID: "event-1",
		Total:   4,
		Issued:  1,
		Scanned: 1,
		Expired: 1,
		Revoked: 1,
	}

	resp := NewTicketStatsResponse(stats)
	if resp.AttendanceRate != 0.5 {
		t.Errorf("AttendanceRate = %v, want 0.5", resp.AttendanceRate)
	}
	if resp.Total != 4 {
		t.Errorf("Total = %d, want 4", resp.Total)
	}
}
