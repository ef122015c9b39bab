package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// MockEventRepository is a mock implementation of EventRepository for testing
type MockEventRepository struct {
	events       map[string]*domain.Event
	listCount    int // Track how many times List is called
	getByIDCount int // Track how many times GetByID is called
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		events: make(map[string]*domain.Event),
	}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.getByIDCount++
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	m.listCount++
	var events []*domain.Event
	for _, e := range m.events {
		if filter != nil {
			if filter.Status != "" && string(e.Status) != filter.Status {
				continue
			}
			if filter.VenueID != "" && e.VenueID != filter.VenueID {
				continue
			}
			if filter.SpeakerID != "" && e.CreatedBy != filter.SpeakerID {
				continue
			}
		}
		events = append(events, e)
	}
	return events, len(events), nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	event, ok := m.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if event.Status != domain.EventStatusDraft {
		return domain.ErrInvalidTransition
	}
	delete(m.events, id)
	return nil
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus, reason string) error {
	event, ok := m.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if event.Status != from {
		return domain.ErrInvalidTransition
	}
	event.Status = to
	event.RejectionReason = reason
	return nil
}

func (m *MockEventRepository) CancelWithRevoke(ctx context.Context, id, revokeReason string) (int, error) {
	if err := m.UpdateStatus(ctx, id, domain.EventStatusPublished, domain.EventStatusCancelled, ""); err != nil {
		return 0, err
	}
	return 0, nil
}

func (m *MockEventRepository) CompletePastEvents(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	for id, e := range m.events {
		if e.Status == domain.EventStatusPublished && e.BookingEndTime.Before(now) {
			e.Status = domain.EventStatusCompleted
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockEventRepository) CountActiveByVenue(ctx context.Context, venueID string) (int, error) {
	count := 0
	for _, e := range m.events {
		if e.VenueID == venueID &&
			(e.Status == domain.EventStatusPendingApproval || e.Status == domain.EventStatusPublished) {
			count++
		}
	}
	return count, nil
}

func (m *MockEventRepository) AddEvent(event *domain.Event) {
	m.events[event.ID] = event
}

func (m *MockEventRepository) ResetCounts() {
	m.listCount = 0
	m.getByIDCount = 0
}

var _ EventRepository = (*MockEventRepository)(nil)

func testEvent(id string, status domain.EventStatus) *domain.Event {
	now := time.Now()
	return &domain.Event{
		ID:               id,
		Name:             "Cloud Infrastructure Summit",
		VenueID:          "venue-1",
		BookingStartTime: now.Add(-time.Hour),
		BookingEndTime:   now.Add(24 * time.Hour),
		Status:           status,
		CreatedBy:        "speaker-1",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestMockEventRepository_GetByID(t *testing.T) {
	mockRepo := NewMockEventRepository()
	mockRepo.AddEvent(testEvent("event-1", domain.EventStatusPublished))
	ctx := context.Background()

	result, err := mockRepo.GetByID(ctx, "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ID != "event-1" {
		t.Errorf("expected ID 'event-1', got '%s'", result.ID)
	}
	if mockRepo.getByIDCount != 1 {
		t.Errorf("expected getByIDCount 1, got %d", mockRepo.getByIDCount)
	}

	if _, err := mockRepo.GetByID(ctx, "missing"); err != domain.ErrEventNotFound {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestMockEventRepository_List_Filters(t *testing.T) {
	mockRepo := NewMockEventRepository()
	mockRepo.AddEvent(testEvent("event-1", domain.EventStatusPublished))
	mockRepo.AddEvent(testEvent("event-2", domain.EventStatusDraft))
	ctx := context.Background()

	events, total, err := mockRepo.List(ctx, &EventFilter{Status: "PUBLISHED"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Errorf("expected 1 published event, got %d", total)
	}
	if events[0].ID != "event-1" {
		t.Errorf("expected event-1, got %s", events[0].ID)
	}
}

func TestMockEventRepository_UpdateStatus_CAS(t *testing.T) {
	mockRepo := NewMockEventRepository()
	mockRepo.AddEvent(testEvent("event-1", domain.EventStatusDraft))
	ctx := context.Background()

	err := mockRepo.UpdateStatus(ctx, "event-1", domain.EventStatusDraft, domain.EventStatusPendingApproval, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second submit loses the race, the event is no longer DRAFT
	err = mockRepo.UpdateStatus(ctx, "event-1", domain.EventStatusDraft, domain.EventStatusPendingApproval, "")
	if err != domain.ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMockEventRepository_CompletePastEvents(t *testing.T) {
	mockRepo := NewMockEventRepository()
	past := testEvent("event-1", domain.EventStatusPublished)
	past.BookingEndTime = time.Now().Add(-time.Hour)
	mockRepo.AddEvent(past)
	mockRepo.AddEvent(testEvent("event-2", domain.EventStatusPublished))
	ctx := context.Background()

	ids, err := mockRepo.CompletePastEvents(ctx, time.Now(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "event-1" {
		t.Errorf("expected [event-1], got %v", ids)
	}
	if past.Status != domain.EventStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", past.Status)
	}
}
