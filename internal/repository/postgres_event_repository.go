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

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create creates a new event record in the database
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("venue_id", event.VenueID),
		attribute.String("status", string(event.Status)),
	)

	query := `
		INSERT INTO events (
			id, name, description, category, venue_id,
			booking_start_time, booking_end_time, status, rejection_reason,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Category,
		event.VenueID,
		event.BookingStartTime,
		event.BookingEndTime,
		string(event.Status),
		nullString(event.RejectionReason),
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `
		SELECT id, name, description, category, venue_id,
			booking_start_time, booking_end_time, status, rejection_reason,
			created_by, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List lists events with filters and pagination, returning the filtered
// total alongside the page
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	where := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter != nil {
		if filter.Status != "" {
			where += fmt.Sprintf(" AND status = $%d", argPos)
			args = append(args, filter.Status)
			argPos++
		}
		if filter.VenueID != "" {
			where += fmt.Sprintf(" AND venue_id = $%d", argPos)
			args = append(args, filter.VenueID)
			argPos++
		}
		if filter.SpeakerID != "" {
			where += fmt.Sprintf(" AND created_by = $%d", argPos)
			args = append(args, filter.SpeakerID)
			argPos++
		}
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM events" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT id, name, description, category, venue_id,
			booking_start_time, booking_end_time, status, rejection_reason,
			created_by, created_at, updated_at
		FROM events` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// Update updates an event's descriptive fields. Lifecycle fields are only
// touched through UpdateStatus and CancelWithRevoke. The editable states
// are part of the UPDATE predicate, so a transition racing ahead of the
// write leaves the published event untouched.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		UPDATE events SET
			name = $2,
			description = $3,
			category = $4,
			venue_id = $5,
			booking_start_time = $6,
			booking_end_time = $7,
			updated_at = $8
		WHERE id = $1 AND status IN ('DRAFT', 'REJECTED')
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Category,
		event.VenueID,
		event.BookingStartTime,
		event.BookingEndTime,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		var actual string
		err := r.pool.QueryRow(ctx, "SELECT status FROM events WHERE id = $1", event.ID).Scan(&actual)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrEventNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check event status: %w", err)
		}
		span.SetAttributes(attribute.String("actual_status", actual))
		span.SetStatus(codes.Error, "not editable")
		return fmt.Errorf("%w: event is %s", domain.ErrInvalidTransition, actual)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete deletes an event that is still in draft
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `DELETE FROM events WHERE id = $1 AND status = 'DRAFT'`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check event existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrEventNotFound
		}
		span.SetStatus(codes.Error, "not draft")
		return domain.ErrInvalidTransition
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateStatus transitions an event from one lifecycle status to another.
// The expected current status is part of the UPDATE predicate so two racing
// transitions cannot both succeed; the loser gets a precise error based on
// the status actually found.
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	)

	query := `
		UPDATE events SET
			status = $2,
			rejection_reason = $3,
			updated_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.pool.Exec(ctx, query, id, string(to), nullString(reason), time.Now(), string(from))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var actual string
		err := r.pool.QueryRow(ctx, "SELECT status FROM events WHERE id = $1", id).Scan(&actual)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrEventNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check event status: %w", err)
		}
		span.SetAttributes(attribute.String("actual_status", actual))
		span.SetStatus(codes.Error, "status mismatch")
		return fmt.Errorf("%w: event is %s, not %s", domain.ErrInvalidTransition, actual, from)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CancelWithRevoke cancels a published event and revokes all of its
// outstanding issued tickets in the same transaction, returning how many
// tickets were revoked
func (r *PostgresEventRepository) CancelWithRevoke(ctx context.Context, id, revokeReason string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.cancel_with_revoke")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	result, err := tx.Exec(ctx, `
		UPDATE events SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'PUBLISHED'
	`, id, string(domain.EventStatusCancelled), now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to cancel event: %w", err)
	}

	if result.RowsAffected() == 0 {
		var actual string
		err := tx.QueryRow(ctx, "SELECT status FROM events WHERE id = $1", id).Scan(&actual)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return 0, domain.ErrEventNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("failed to check event status: %w", err)
		}
		span.SetAttributes(attribute.String("actual_status", actual))
		span.SetStatus(codes.Error, "status mismatch")
		return 0, fmt.Errorf("%w: event is %s, not PUBLISHED", domain.ErrInvalidTransition, actual)
	}

	revoked, err := tx.Exec(ctx, `
		UPDATE tickets SET status = $2, revoke_reason = $3
		WHERE event_id = $1 AND status = 'ISSUED'
	`, id, string(domain.TicketStatusRevoked), revokeReason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to revoke event tickets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to commit event cancellation: %w", err)
	}

	count := int(revoked.RowsAffected())
	span.SetAttributes(attribute.Int("revoked_tickets", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// CompletePastEvents moves published events whose booking window closed
// before now to completed, returning the IDs it moved
func (r *PostgresEventRepository) CompletePastEvents(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.complete_past")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE events SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM events
			WHERE status = 'PUBLISHED' AND booking_end_time < $2
			ORDER BY booking_end_time
			LIMIT $3
		)
		RETURNING id
	`

	rows, err := r.pool.Query(ctx, query, string(domain.EventStatusCompleted), now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to complete past events: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating completed events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(ids)))
	span.SetStatus(codes.Ok, "")
	return ids, nil
}

// CountActiveByVenue counts pending and published events at a venue
func (r *PostgresEventRepository) CountActiveByVenue(ctx context.Context, venueID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.count_active_by_venue")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	query := `
		SELECT COUNT(*) FROM events
		WHERE venue_id = $1 AND status IN ('PENDING_APPROVAL', 'PUBLISHED')
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, venueID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count active events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// scanEventRow scans a row into an Event struct
func scanEventRow(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		status          string
		rejectionReason *string
	)

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Category,
		&event.VenueID,
		&event.BookingStartTime,
		&event.BookingEndTime,
		&status,
		&rejectionReason,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = domain.EventStatus(status)
	if rejectionReason != nil {
		event.RejectionReason = *rejectionReason
	}
	return event, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
