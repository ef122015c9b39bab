package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/internal/repository"
	"github.com/Buffden/Event-Management-System-sub005/pkg/telemetry"
)

// VenueService defines the interface for venue business logic
type VenueService interface {
	// CreateVenue registers a new venue
	CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error)

	// GetVenue retrieves a venue by ID
	GetVenue(ctx context.Context, id string) (*domain.Venue, error)

	// ListVenues lists all venues
	ListVenues(ctx context.Context) ([]*domain.Venue, error)

	// UpdateVenue updates a venue's fields
	UpdateVenue(ctx context.Context, id string, req *dto.UpdateVenueRequest) (*domain.Venue, error)

	// DeleteVenue deletes a venue with no active events
	DeleteVenue(ctx context.Context, id string) error
}

// venueService implements VenueService
type venueService struct {
	venueRepo repository.VenueRepository
}

// NewVenueService creates a new venue service
func NewVenueService(venueRepo repository.VenueRepository) VenueService {
	return &venueService{venueRepo: venueRepo}
}

// CreateVenue registers a new venue
func (s *venueService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.create")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	venue := req.ToVenue()
	venue.ID = uuid.New().String()
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now

	if err := venue.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.venueRepo.Create(ctx, venue); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("venue_id", venue.ID))
	span.SetStatus(codes.Ok, "")
	return venue, nil
}

// GetVenue retrieves a venue by ID
func (s *venueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	return s.venueRepo.GetByID(ctx, id)
}

// ListVenues lists all venues
func (s *venueService) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	return s.venueRepo.List(ctx)
}

// UpdateVenue updates a venue's fields. Capacity reductions below the live
// ticket count of any active event are refused by the repository.
func (s *venueService) UpdateVenue(ctx context.Context, id string, req *dto.UpdateVenueRequest) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.update")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", id))

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError("%s", msg)
	}

	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req.Apply(venue)
	if err := venue.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return venue, nil
}

// DeleteVenue deletes a venue with no active events
func (s *venueService) DeleteVenue(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.delete")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", id))

	if err := s.venueRepo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
