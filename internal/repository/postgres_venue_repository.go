package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

// PostgresVenueRepository implements VenueRepository using PostgreSQL with pgxpool
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

// Create creates a new venue record in the database
func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("venue_id", venue.ID),
		attribute.String("venue_name", venue.Name),
		attribute.Int("capacity", venue.Capacity),
	)

	query := `
		INSERT INTO venues (
			id, name, address, capacity, opening_time, closing_time,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		venue.ID,
		venue.Name,
		venue.Address,
		venue.Capacity,
		int(venue.OpeningTime),
		int(venue.ClosingTime),
		venue.CreatedAt,
		venue.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "name taken")
			return domain.ErrVenueNameTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create venue: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a venue by its ID
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", id))

	query := `
		SELECT id, name, address, capacity, opening_time, closing_time,
			created_at, updated_at
		FROM venues
		WHERE id = $1
	`

	venue, err := scanVenueRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVenueNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return venue, nil
}

// List retrieves all venues ordered by name
func (r *PostgresVenueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.list")
	defer span.End()

	query := `
		SELECT id, name, address, capacity, opening_time, closing_time,
			created_at, updated_at
		FROM venues
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		venue, err := scanVenueRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, venue)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(venues)))
	span.SetStatus(codes.Ok, "")
	return venues, nil
}

// Update updates an existing venue. The update runs in a transaction so a
// capacity reduction can be checked against the highest live ticket count
// of any active event at the venue without racing concurrent issuance.
func (r *PostgresVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("venue_id", venue.ID),
		attribute.Int("capacity", venue.Capacity),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `SELECT capacity FROM venues WHERE id = $1 FOR UPDATE`, venue.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrVenueNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock venue: %w", err)
	}

	if venue.Capacity < current {
		var maxLive int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(live), 0) FROM (
				SELECT COUNT(t.id) AS live
				FROM events e
				JOIN tickets t ON t.event_id = e.id
				WHERE e.venue_id = $1
					AND e.status IN ('PENDING_APPROVAL', 'PUBLISHED')
					AND t.status IN ('ISSUED', 'SCANNED')
				GROUP BY e.id
			) per_event
		`, venue.ID).Scan(&maxLive)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check live ticket counts: %w", err)
		}
		if venue.Capacity < maxLive {
			span.SetAttributes(attribute.Int("max_live_tickets", maxLive))
			span.SetStatus(codes.Error, "capacity below live tickets")
			return fmt.Errorf("%w: %d tickets already live against this venue", domain.ErrCapacityExceeded, maxLive)
		}
	}

	query := `
		UPDATE venues SET
			name = $2,
			address = $3,
			capacity = $4,
			opening_time = $5,
			closing_time = $6,
			updated_at = $7
		WHERE id = $1
	`

	_, err = tx.Exec(ctx, query,
		venue.ID,
		venue.Name,
		venue.Address,
		venue.Capacity,
		int(venue.OpeningTime),
		int(venue.ClosingTime),
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "name taken")
			return domain.ErrVenueNameTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update venue: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit venue update: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete deletes a venue. The delete is refused while the venue still has
// pending or published events referencing it.
func (r *PostgresVenueRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.delete")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", id))

	query := `
		DELETE FROM venues
		WHERE id = $1
			AND NOT EXISTS (
				SELECT 1 FROM events
				WHERE venue_id = $1 AND status IN ('PENDING_APPROVAL', 'PUBLISHED')
			)
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete venue: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing venue from one blocked by active events
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM venues WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check venue existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrVenueNotFound
		}
		span.SetStatus(codes.Error, "venue in use")
		return domain.ErrVenueInUse
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// scanVenueRow scans a row into a Venue struct
func scanVenueRow(row pgx.Row) (*domain.Venue, error) {
	venue := &domain.Venue{}
	var opening, closing int

	err := row.Scan(
		&venue.ID,
		&venue.Name,
		&venue.Address,
		&venue.Capacity,
		&opening,
		&closing,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	venue.OpeningTime = domain.TimeOfDay(opening)
	venue.ClosingTime = domain.TimeOfDay(closing)
	return venue, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Helper function to convert empty string to nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresVenueRepository implements VenueRepository
var _ VenueRepository = (*PostgresVenueRepository)(nil)
