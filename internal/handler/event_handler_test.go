package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/internal/dto"
	"github.com/Buffden/Event-Management-System-sub005/pkg/middleware"
)

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	events map[string]*domain.Event
}

func NewMockEventService() *MockEventService {
	return &MockEventService{
		events: make(map[string]*domain.Event),
	}
}

// AddEvent adds an event to the mock service
func (m *MockEventService) AddEvent(event *domain.Event) {
	m.events[event.ID] = event
}

func (m *MockEventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, domain.NewValidationError("%s", msg)
	}
	now := time.Now()
	event := &domain.Event{
		ID:               "event-123",
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		VenueID:          req.VenueID,
		BookingStartTime: req.BookingStartDate,
		BookingEndTime:   req.BookingEndDate,
		Status:           domain.EventStatusDraft,
		CreatedBy:        req.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (m *MockEventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	if valid, msg := filter.Validate(); !valid {
		return nil, 0, domain.NewValidationError("%s", msg)
	}
	filter.SetDefaults()
	var events []*domain.Event
	for _, e := range m.events {
		events = append(events, e)
	}
	return events, len(events), nil
}

func (m *MockEventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsEditable() {
		return nil, domain.ErrInvalidTransition
	}
	req.Apply(event)
	return event, nil
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id string) error {
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

func (m *MockEventService) SubmitEvent(ctx context.Context, id string) (*domain.Event, error) {
	return m.transition(id, domain.EventStatusPendingApproval, "")
}

func (m *MockEventService) ApproveEvent(ctx context.Context, id string) (*domain.Event, error) {
	return m.transition(id, domain.EventStatusPublished, "")
}

func (m *MockEventService) RejectEvent(ctx context.Context, id, reason string) (*domain.Event, error) {
	if len(strings.TrimSpace(reason)) < 10 {
		return nil, domain.NewValidationError("rejection reason must be at least 10 characters")
	}
	return m.transition(id, domain.EventStatusRejected, reason)
}

func (m *MockEventService) CancelEvent(ctx context.Context, id string) (*domain.Event, int, error) {
	event, err := m.transition(id, domain.EventStatusCancelled, "")
	if err != nil {
		return nil, 0, err
	}
	return event, 2, nil
}

func (m *MockEventService) CompletePastEvents(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

func (m *MockEventService) transition(id string, to domain.EventStatus, reason string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if !domain.CanTransition(event.Status, to) {
		return nil, domain.ErrInvalidTransition
	}
	event.Status = to
	event.RejectionReason = reason
	return event, nil
}

// testAuth injects an authenticated identity into the request context
func testAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyUserRole, role)
		c.Next()
	}
}

func setupEventRouter(h *EventHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(testAuth("speaker-1", "speaker"))

	events := router.Group("/events")
	{
		events.GET("", h.List)
		events.GET("/:id", h.GetByID)
		events.POST("", h.Create)
		events.PUT("/:id", h.Update)
		events.DELETE("/:id", h.Delete)
		events.POST("/:id/submit", h.Submit)
		events.POST("/:id/approve", h.Approve)
		events.POST("/:id/reject", h.Reject)
		events.POST("/:id/cancel", h.Cancel)
	}

	return router
}

func draftEvent(id string) *domain.Event {
	now := time.Now()
	return &domain.Event{
		ID:               id,
		Name:             "Test Event",
		VenueID:          "venue-1",
		BookingStartTime: now.Add(24 * time.Hour),
		BookingEndTime:   now.Add(32 * time.Hour),
		Status:           domain.EventStatusDraft,
		CreatedBy:        "speaker-1",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestEventHandler_Create(t *testing.T) {
	mockSvc := NewMockEventService()
	handler := NewEventHandler(mockSvc)
	router := setupEventRouter(handler)

	body, _ := json.Marshal(dto.CreateEventRequest{
		Name:             "Test Event",
		VenueID:          "venue-1",
		BookingStartDate: time.Now().Add(24 * time.Hour),
		BookingEndDate:   time.Now().Add(32 * time.Hour),
	})

	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d: %s", http.StatusCreated, resp.Code, resp.Body.String())
	}
}

func TestEventHandler_GetByID(t *testing.T) {
	mockSvc := NewMockEventService()
	handler := NewEventHandler(mockSvc)
	router := setupEventRouter(handler)

	mockSvc.AddEvent(draftEvent("event-1"))

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{
			name:       "existing event",
			id:         "event-1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-existent event",
			id:         "non-existent",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/events/"+tt.id, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}

func TestEventHandler_Lifecycle(t *testing.T) {
	mockSvc := NewMockEventService()
	handler := NewEventHandler(mockSvc)
	router := setupEventRouter(handler)

	mockSvc.AddEvent(draftEvent("event-1"))

	steps := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "approve draft is refused",
			path:       "/events/event-1/approve",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "submit draft",
			path:       "/events/event-1/submit",
			wantStatus: http.StatusOK,
		},
		{
			name:       "reject without reason",
			path:       "/events/event-1/reject",
			body:       `{"reason":"too short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "approve pending",
			path:       "/events/event-1/approve",
			wantStatus: http.StatusOK,
		},
		{
			name:       "cancel published",
			path:       "/events/event-1/cancel",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown event",
			path:       "/events/missing/submit",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			var body *bytes.Buffer
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			} else {
				body = bytes.NewBuffer(nil)
			}
			req, _ := http.NewRequest(http.MethodPost, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestEventHandler_Delete(t *testing.T) {
	mockSvc := NewMockEventService()
	handler := NewEventHandler(mockSvc)
	router := setupEventRouter(handler)

	mockSvc.AddEvent(draftEvent("event-1"))
	published := draftEvent("event-2")
	published.Status = domain.EventStatusPublished
	mockSvc.AddEvent(published)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{
			name:       "draft is deleted",
			id:         "event-1",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "published cannot be deleted",
			id:         "event-2",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodDelete, "/events/"+tt.id, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}
