package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

var (
	// Ticket counters
	TicketsIssued  *telemetry.Counter
	TicketsRevoked *telemetry.Counter
	TicketsExpired *telemetry.Counter
	TicketScans    *telemetry.Counter
	IssuanceReject *telemetry.Counter

	// LiveTickets tracks tickets currently holding a capacity slot. Scans
	// keep the slot; only revocation and expiry release it.
	LiveTickets *telemetry.UpDownCounter

	// Event lifecycle counters
	EventTransitions *telemetry.Counter

	// Histograms
	IssueDuration *telemetry.Histogram
	ScanDuration  *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all engine metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	TicketsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_issued_total",
		Description: "Total number of tickets issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsRevoked, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_revoked_total",
		Description: "Total number of tickets revoked",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_expired_total",
		Description: "Total number of tickets expired",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketScans, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_scans_total",
		Description: "Total number of accepted gate scans",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	IssuanceReject, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_issuance_rejections_total",
		Description: "Total number of rejected issuance attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	LiveTickets, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "tickets_live",
		Description: "Tickets currently occupying a capacity slot",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventTransitions, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "event_transitions_total",
		Description: "Total number of event lifecycle transitions",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	IssueDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_issue_duration_seconds",
		Description: "Duration of ticket issuance including the capacity check",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5})
	if err != nil {
		return err
	}

	ScanDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_scan_duration_seconds",
		Description: "Duration of QR verification and check-in",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5})
	if err != nil {
		return err
	}

	return nil
}

// RecordIssue records a successful ticket issuance
func RecordIssue(ctx context.Context, eventID string, durationSeconds float64) {
	if TicketsIssued != nil {
		TicketsIssued.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if IssueDuration != nil {
		IssueDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if LiveTickets != nil {
		LiveTickets.Inc(ctx)
	}
}

// RecordIssueRejection records a refused issuance attempt by reason
func RecordIssueRejection(ctx context.Context, eventID, reason string) {
	if IssuanceReject != nil {
		IssuanceReject.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordScan records an accepted gate scan
func RecordScan(ctx context.Context, eventID string, reentry bool, durationSeconds float64) {
	if TicketScans != nil {
		TicketScans.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Bool("reentry", reentry),
		)
	}
	if ScanDuration != nil {
		ScanDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordRevocation records a ticket revocation
func RecordRevocation(ctx context.Context, eventID string) {
	if TicketsRevoked != nil {
		TicketsRevoked.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if LiveTickets != nil {
		LiveTickets.Dec(ctx)
	}
}

// RecordRevocations records a batch of revocations from an event
// cancellation cascade
func RecordRevocations(ctx context.Context, eventID string, count int64) {
	if count == 0 {
		return
	}
	if TicketsRevoked != nil {
		TicketsRevoked.Add(ctx, count,
			attribute.String("event_id", eventID),
		)
	}
	if LiveTickets != nil {
		LiveTickets.Add(ctx, -count)
	}
}

// RecordExpirations records a batch of ticket expirations
func RecordExpirations(ctx context.Context, count int64) {
	if TicketsExpired != nil {
		TicketsExpired.Add(ctx, count)
	}
	if LiveTickets != nil {
		LiveTickets.Add(ctx, -count)
	}
}

// RecordTransition records an event lifecycle transition
func RecordTransition(ctx context.Context, from, to string) {
	if EventTransitions != nil {
		EventTransitions.Inc(ctx,
			attribute.String("from", from),
			attribute.String("to", to),
		)
	}
}
