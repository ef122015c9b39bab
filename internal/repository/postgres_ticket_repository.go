package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// Issue atomically issues a ticket for a published event. The event row is
// locked FOR UPDATE so concurrent issuance for the same event serialises on
// the capacity check. Overdue ISSUED tickets are expired inside the same
// transaction so stale rows never hold capacity slots.
func (r *PostgresTicketRepository) Issue(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.issue")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("event_id", ticket.EventID),
		attribute.String("user_id", ticket.UserID),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		eventStatus    string
		bookingEndTime time.Time
		capacity       int
	)
	err = tx.QueryRow(ctx, `
		SELECT e.status, e.booking_end_time, v.capacity
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		WHERE e.id = $1
		FOR UPDATE OF e
	`, ticket.EventID).Scan(&eventStatus, &bookingEndTime, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "event not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock event: %w", err)
	}

	now := time.Now()
	if eventStatus != string(domain.EventStatusPublished) || !now.Before(bookingEndTime) {
		span.SetAttributes(attribute.String("event_status", eventStatus))
		span.SetStatus(codes.Error, "event not open")
		return domain.ErrEventNotPublished
	}

	// Expire overdue ISSUED rows for this event before counting so they
	// do not hold capacity slots
	_, err = tx.Exec(ctx, `
		UPDATE tickets SET status = $2
		WHERE event_id = $1 AND status = 'ISSUED' AND expires_at < $3
	`, ticket.EventID, string(domain.TicketStatusExpired), now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to expire overdue tickets: %w", err)
	}

	var live int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE event_id = $1 AND status IN ('ISSUED', 'SCANNED')
	`, ticket.EventID).Scan(&live)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to count live tickets: %w", err)
	}

	if live >= capacity {
		span.SetAttributes(
			attribute.Int("live_tickets", live),
			attribute.Int("capacity", capacity),
		)
		span.SetStatus(codes.Error, "capacity exceeded")
		return domain.ErrCapacityExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (
			id, event_id, user_id, status, qr_payload, scan_count,
			issued_at, expires_at, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		ticket.ID,
		ticket.EventID,
		ticket.UserID,
		string(ticket.Status),
		ticket.QRPayload,
		ticket.ScanCount,
		ticket.IssuedAt,
		ticket.ExpiresAt,
		nullString(ticket.IdempotencyKey),
	)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "duplicate ticket")
			return domain.ErrDuplicateTicket
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit ticket issuance: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	ticket, err := scanTicketRow(r.pool.QueryRow(ctx, ticketSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetByIdempotencyKey retrieves a ticket by issuance idempotency key,
// returning nil without error when no ticket matches
func (r *PostgresTicketRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_idempotency_key")
	defer span.End()

	span.SetAttributes(attribute.String("idempotency_key", key))

	ticket, err := scanTicketRow(r.pool.QueryRow(ctx, ticketSelect+" WHERE idempotency_key = $1", key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket by idempotency key: %w", err)
	}

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// ListByEvent lists tickets for an event with filters and pagination,
// returning the filtered total alongside the page
func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID string, filter *TicketFilter, limit, offset int) ([]*domain.Ticket, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	where := " WHERE event_id = $1"
	args := []interface{}{eventID}
	argPos := 2

	if filter != nil {
		if filter.Status != "" {
			where += fmt.Sprintf(" AND status = $%d", argPos)
			args = append(args, filter.Status)
			argPos++
		}
		if filter.UserID != "" {
			where += fmt.Sprintf(" AND user_id ILIKE '%%' || $%d || '%%'", argPos)
			args = append(args, filter.UserID)
			argPos++
		}
		if filter.From != nil {
			where += fmt.Sprintf(" AND issued_at >= $%d", argPos)
			args = append(args, *filter.From)
			argPos++
		}
		if filter.To != nil {
			where += fmt.Sprintf(" AND issued_at <= $%d", argPos)
			args = append(args, *filter.To)
			argPos++
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tickets"+where, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	query := ticketSelect + where + fmt.Sprintf(" ORDER BY issued_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return tickets, total, nil
}

// Revoke revokes an issued ticket, recording the reason. Status and expiry
// are both part of the UPDATE predicate, so an overdue ISSUED ticket is
// classified as expired rather than revoked; when no row moves the actual
// state is inspected for the precise error.
func (r *PostgresTicketRepository) Revoke(ctx context.Context, id, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.revoke")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `
		UPDATE tickets SET status = $2, revoke_reason = $3
		WHERE id = $1 AND status = 'ISSUED' AND expires_at > $4
	`

	result, err := r.pool.Exec(ctx, query, id, string(domain.TicketStatusRevoked), reason, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to revoke ticket: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.classifyStaleTicket(ctx, span, id)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkExpired moves an issued ticket to expired
func (r *PostgresTicketRepository) MarkExpired(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.mark_expired")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `
		UPDATE tickets SET status = $2
		WHERE id = $1 AND status = 'ISSUED'
	`

	result, err := r.pool.Exec(ctx, query, id, string(domain.TicketStatusExpired))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark ticket expired: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.classifyStaleTicket(ctx, span, id)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RecordScan applies a gate scan to a ticket inside one transaction. A
// first scan moves the ticket ISSUED→SCANNED and stamps scannedAt; a scan
// of an already SCANNED ticket is a re-entry and only bumps the counter.
// Both append an attendance record. The bool result reports re-entry.
// Expiry is re-evaluated against the wall clock ahead of the status
// dispatch, so a ticket past its expiry is refused whatever its stored
// status; a stale ISSUED row is additionally persisted as EXPIRED.
func (r *PostgresTicketRepository) RecordScan(ctx context.Context, ticketID string, record *domain.AttendanceRecord) (*domain.Ticket, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.record_scan")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("method", string(record.Method)),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ticket, err := scanTicketRow(tx.QueryRow(ctx, ticketSelect+" WHERE id = $1 FOR UPDATE", ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, false, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to lock ticket: %w", err)
	}

	now := record.ScannedAt
	if ticket.IsExpired(now) {
		if ticket.Status == domain.TicketStatusIssued {
			_, err := tx.Exec(ctx, `UPDATE tickets SET status = $2 WHERE id = $1`,
				ticketID, string(domain.TicketStatusExpired))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, false, fmt.Errorf("failed to expire ticket: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, false, fmt.Errorf("failed to commit ticket expiry: %w", err)
			}
		}
		span.SetStatus(codes.Error, "expired")
		return nil, false, domain.ErrTicketExpired
	}

	switch ticket.Status {
	case domain.TicketStatusExpired:
		span.SetStatus(codes.Error, "expired")
		return nil, false, domain.ErrTicketExpired
	case domain.TicketStatusRevoked:
		span.SetStatus(codes.Error, "revoked")
		return nil, false, domain.ErrTicketRevoked
	}

	reentry := ticket.Status == domain.TicketStatusScanned

	if reentry {
		_, err = tx.Exec(ctx, `
			UPDATE tickets SET scan_count = scan_count + 1
			WHERE id = $1
		`, ticketID)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE tickets SET status = $2, scanned_at = $3, scan_count = scan_count + 1
			WHERE id = $1
		`, ticketID, string(domain.TicketStatusScanned), now)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to update ticket scan state: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO attendance_records (id, ticket_id, scanned_at, location, scanned_by, method)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		record.ID,
		ticketID,
		record.ScannedAt,
		nullString(record.Location),
		nullString(record.ScannedBy),
		string(record.Method),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to insert attendance record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to commit scan: %w", err)
	}

	ticket.ScanCount++
	if !reentry {
		ticket.Status = domain.TicketStatusScanned
		ticket.ScannedAt = &now
	}

	span.SetAttributes(
		attribute.Bool("reentry", reentry),
		attribute.Int("scan_count", ticket.ScanCount),
	)
	span.SetStatus(codes.Ok, "")
	return ticket, reentry, nil
}

// ListAttendance lists attendance records for a ticket, oldest first
func (r *PostgresTicketRepository) ListAttendance(ctx context.Context, ticketID string) ([]*domain.AttendanceRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_attendance")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT id, ticket_id, scanned_at, location, scanned_by, method
		FROM attendance_records
		WHERE ticket_id = $1
		ORDER BY scanned_at
	`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AttendanceRecord
	for rows.Next() {
		record := &domain.AttendanceRecord{}
		var (
			location  *string
			scannedBy *string
			method    string
		)
		if err := rows.Scan(&record.ID, &record.TicketID, &record.ScannedAt, &location, &scannedBy, &method); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		if location != nil {
			record.Location = *location
		}
		if scannedBy != nil {
			record.ScannedBy = *scannedBy
		}
		record.Method = domain.ScanMethod(method)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(records)))
	span.SetStatus(codes.Ok, "")
	return records, nil
}

// GetStats recomputes the per-status ticket counts for an event from the
// ticket rows themselves
func (r *PostgresTicketRepository) GetStats(ctx context.Context, eventID string) (*domain.TicketStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_stats")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	// An ISSUED row past its expiry counts as EXPIRED without waiting for
	// the sweeper to persist the move
	query := `
		SELECT
			CASE WHEN status = 'ISSUED' AND expires_at < $2 THEN 'EXPIRED' ELSE status END,
			COUNT(*)
		FROM tickets
		WHERE event_id = $1
		GROUP BY 1
	`

	rows, err := r.pool.Query(ctx, query, eventID, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.TicketStats{EventID: eventID}
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket stats: %w", err)
		}
		stats.Total += count
		switch domain.TicketStatus(status) {
		case domain.TicketStatusIssued:
			stats.Issued = count
		case domain.TicketStatusScanned:
			stats.Scanned = count
		case domain.TicketStatusExpired:
			stats.Expired = count
		case domain.TicketStatusRevoked:
			stats.Revoked = count
		}
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating ticket stats: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", stats.Total))
	span.SetStatus(codes.Ok, "")
	return stats, nil
}

// ExpireOverdue expires issued tickets past their expiry in batches,
// returning the number of tickets moved
func (r *PostgresTicketRepository) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.expire_overdue")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE tickets SET status = $1
		WHERE id IN (
			SELECT id FROM tickets
			WHERE status = 'ISSUED' AND expires_at < $2
			ORDER BY expires_at
			LIMIT $3
		)
	`

	result, err := r.pool.Exec(ctx, query, string(domain.TicketStatusExpired), now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to expire overdue tickets: %w", err)
	}

	count := int(result.RowsAffected())
	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// classifyStaleTicket resolves a zero-row CAS update into the precise
// domain error for the ticket's actual state. An ISSUED row here lost the
// CAS to its own expiry predicate, so the overdue move is persisted before
// reporting it.
func (r *PostgresTicketRepository) classifyStaleTicket(ctx context.Context, span trace.Span, id string) error {
	var actual string
	err := r.pool.QueryRow(ctx, "SELECT status FROM tickets WHERE id = $1", id).Scan(&actual)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to check ticket status: %w", err)
	}

	span.SetAttributes(attribute.String("actual_status", actual))
	span.SetStatus(codes.Error, "invalid state")
	switch domain.TicketStatus(actual) {
	case domain.TicketStatusRevoked:
		return domain.ErrTicketRevoked
	case domain.TicketStatusExpired:
		return domain.ErrTicketExpired
	case domain.TicketStatusIssued:
		_, err := r.pool.Exec(ctx, `
			UPDATE tickets SET status = $2
			WHERE id = $1 AND status = 'ISSUED'
		`, id, string(domain.TicketStatusExpired))
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to expire overdue ticket: %w", err)
		}
		return domain.ErrTicketExpired
	default:
		return fmt.Errorf("%w: ticket is %s", domain.ErrInvalidTicketState, actual)
	}
}

const ticketSelect = `
	SELECT id, event_id, user_id, status, qr_payload, scan_count,
		issued_at, expires_at, scanned_at, revoke_reason, idempotency_key
	FROM tickets`

// scanTicketRow scans a row into a Ticket struct
func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var (
		status         string
		scannedAt      *time.Time
		revokeReason   *string
		idempotencyKey *string
	)

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.UserID,
		&status,
		&ticket.QRPayload,
		&ticket.ScanCount,
		&ticket.IssuedAt,
		&ticket.ExpiresAt,
		&scannedAt,
		&revokeReason,
		&idempotencyKey,
	)
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	ticket.ScannedAt = scannedAt
	if revokeReason != nil {
		ticket.RevokeReason = *revokeReason
	}
	if idempotencyKey != nil {
		ticket.IdempotencyKey = *idempotencyKey
	}
	return ticket, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
