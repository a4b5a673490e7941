package matching

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeMatchRun = "MatchRun"

// Event type constants
const (
	EventTypeMatchRunCompleted = "MatchRunCompleted"
	EventTypeMatchRunFailed    = "MatchRunFailed"
)

// MatchRunCompletedEvent is raised when a match run produces results
// Source lets telemetry track the API fallback rate
type MatchRunCompletedEvent struct {
	shared.BaseDomainEvent
	MatchRunID  uuid.UUID `json:"match_run_id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	Source      string    `json:"source"`
	ResultCount int       `json:"result_count"`
}

// NewMatchRunCompletedEvent creates a new MatchRunCompletedEvent
func NewMatchRunCompletedEvent(r *MatchRun) *MatchRunCompletedEvent {
	return &MatchRunCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMatchRunCompleted, AggregateTypeMatchRun, r.ID, r.TenantID),
		MatchRunID:      r.ID,
		CampaignID:      r.CampaignID,
		Source:          r.Source.String(),
		ResultCount:     len(r.Results),
	}
}

// EventType returns the event type name
func (e *MatchRunCompletedEvent) EventType() string {
	return EventTypeMatchRunCompleted
}

// MatchRunFailedEvent is raised when both the API and fallback paths fail
type MatchRunFailedEvent struct {
	shared.BaseDomainEvent
	MatchRunID uuid.UUID `json:"match_run_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Reason     string    `json:"reason"`
}

// NewMatchRunFailedEvent creates a new MatchRunFailedEvent
func NewMatchRunFailedEvent(r *MatchRun) *MatchRunFailedEvent {
	return &MatchRunFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMatchRunFailed, AggregateTypeMatchRun, r.ID, r.TenantID),
		MatchRunID:      r.ID,
		CampaignID:      r.CampaignID,
		Reason:          r.FailureReason,
	}
}

// EventType returns the event type name
func (e *MatchRunFailedEvent) EventType() string {
	return EventTypeMatchRunFailed
}
