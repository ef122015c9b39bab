package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/redis"
)

const (
	eventDetailKeyPrefix = "event:detail:"
	eventListKeyPrefix   = "event:list:"

	eventCacheTTL = 5 * time.Minute
)

// CachedEventRepository wraps EventRepository with Redis caching. Detail
// lookups and unfiltered list pages are cached; every write path
// invalidates the affected keys.
type CachedEventRepository struct {
	repo  EventRepository
	cache *redis.Client
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache *redis.Client) *CachedEventRepository {
	return &CachedEventRepository{
		repo:  repo,
		cache: cache,
	}
}

// Create creates a new event and invalidates list caches
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Create(ctx, event); err != nil {
		return err
	}
	r.invalidateListCaches(ctx)
	return nil
}

// GetByID retrieves an event by ID with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	cacheKey := eventDetailKeyPrefix + id
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheEvent(ctx, cacheKey, event)
	return event, nil
}

// List lists events with filters and pagination. Only status-filtered
// pages are cached; venue and speaker scoped queries go to the database.
func (r *CachedEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if filter != nil && (filter.VenueID != "" || filter.SpeakerID != "") {
		return r.repo.List(ctx, filter, limit, offset)
	}

	status := ""
	if filter != nil {
		status = filter.Status
	}
	cacheKey := fmt.Sprintf("%sall:%s:%d:%d", eventListKeyPrefix, status, limit, offset)
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var result cachedEventList
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result.Events, result.Total, nil
		}
	}

	events, total, err := r.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	r.cacheEventList(ctx, cacheKey, events, total)
	return events, total, nil
}

// Update updates an event's descriptive fields and invalidates caches
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Update(ctx, event); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, event.ID)
	return nil
}

// Delete deletes an event and invalidates caches
func (r *CachedEventRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, id)
	return nil
}

// UpdateStatus transitions an event's status and invalidates caches
func (r *CachedEventRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus, reason string) error {
	if err := r.repo.UpdateStatus(ctx, id, from, to, reason); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, id)
	return nil
}

// CancelWithRevoke cancels an event, revokes its issued tickets and
// invalidates caches
func (r *CachedEventRepository) CancelWithRevoke(ctx context.Context, id, revokeReason string) (int, error) {
	revoked, err := r.repo.CancelWithRevoke(ctx, id, revokeReason)
	if err != nil {
		return 0, err
	}
	r.invalidateEventCaches(ctx, id)
	return revoked, nil
}

// CompletePastEvents completes past events and invalidates the caches of
// every event it moved
func (r *CachedEventRepository) CompletePastEvents(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ids, err := r.repo.CompletePastEvents(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		r.cache.Del(ctx, eventDetailKeyPrefix+id)
	}
	if len(ids) > 0 {
		r.invalidateListCaches(ctx)
	}
	return ids, nil
}

// CountActiveByVenue counts active events at a venue (bypass cache)
func (r *CachedEventRepository) CountActiveByVenue(ctx context.Context, venueID string) (int, error) {
	return r.repo.CountActiveByVenue(ctx, venueID)
}

type cachedEventList struct {
	Events []*domain.Event `json:"events"`
	Total  int             `json:"total"`
}

func (r *CachedEventRepository) cacheEvent(ctx context.Context, key string, event *domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) cacheEventList(ctx context.Context, key string, events []*domain.Event, total int) {
	data, err := json.Marshal(cachedEventList{Events: events, Total: total})
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) invalidateEventCaches(ctx context.Context, id string) {
	r.cache.Del(ctx, eventDetailKeyPrefix+id)
	r.invalidateListCaches(ctx)
}

func (r *CachedEventRepository) invalidateListCaches(ctx context.Context) {
	// KEYS is off limits in production, so walk the keyspace with SCAN
	iter := r.cache.Client().Scan(ctx, 0, eventListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}
}

// Ensure CachedEventRepository implements EventRepository
var _ EventRepository = (*CachedEventRepository)(nil)
