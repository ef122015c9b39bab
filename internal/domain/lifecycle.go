package domain

import "time"

// LifecycleFactType identifies a lifecycle fact published to Kafka
type LifecycleFactType string

const (
	FactEventSubmitted LifecycleFactType = "event.submitted"
	FactEventPublished LifecycleFactType = "event.published"
	FactEventRejected  LifecycleFactType = "event.rejected"
	FactEventCancelled LifecycleFactType = "event.cancelled"
	FactEventCompleted LifecycleFactType = "event.completed"
	FactTicketIssued   LifecycleFactType = "ticket.issued"
	FactTicketScanned  LifecycleFactType = "ticket.scanned"
	FactTicketRevoked  LifecycleFactType = "ticket.revoked"
	FactTicketExpired  LifecycleFactType = "ticket.expired"
)

// LifecycleFact is the envelope produced to the lifecycle topic. Facts are
// keyed by event ID so all facts for one event land on one partition in
// order.
type LifecycleFact struct {
	FactID     string            `json:"fact_id"`
	Type       LifecycleFactType `json:"type"`
	EventID    string            `json:"event_id"`
	TicketID   string            `json:"ticket_id,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewLifecycleFact creates a fact envelope stamped with the current time
func NewLifecycleFact(factID string, factType LifecycleFactType, eventID string) *LifecycleFact {
	return &LifecycleFact{
		FactID:     factID,
		Type:       factType,
		EventID:    eventID,
		OccurredAt: time.Now(),
	}
}

// Key returns the Kafka partition key for this fact
func (f *LifecycleFact) Key() string {
	return f.EventID
}
