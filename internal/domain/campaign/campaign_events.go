package campaign

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCampaign = "Campaign"

// Event type constants
const (
	EventTypeCampaignCreated       = "CampaignCreated"
	EventTypeCampaignStepCompleted = "CampaignStepCompleted"
	EventTypeCampaignPublished     = "CampaignPublished"
	EventTypeCampaignPaused        = "CampaignPaused"
	EventTypeCampaignResumed       = "CampaignResumed"
	EventTypeCampaignCompleted     = "CampaignCompleted"
	EventTypeCampaignCancelled     = "CampaignCancelled"
)

// CampaignCreatedEvent is raised when a new campaign draft is created
type CampaignCreatedEvent struct {
	shared.BaseDomainEvent
	CampaignID        uuid.UUID `json:"campaign_id"`
	CampaignName      string    `json:"campaign_name"`
	BusinessProfileID uuid.UUID `json:"business_profile_id"`
}

// NewCampaignCreatedEvent creates a new CampaignCreatedEvent
func NewCampaignCreatedEvent(c *Campaign) *CampaignCreatedEvent {
	return &CampaignCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCampaignCreated, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:        c.ID,
		CampaignName:      c.Name,
		BusinessProfileID: c.BusinessProfileID,
	}
}

// EventType returns the event type name
func (e *CampaignCreatedEvent) EventType() string {
	return EventTypeCampaignCreated
}

// CampaignStepCompletedEvent is raised when a wizard step completes for
// the first time and the wizard advances
type CampaignStepCompletedEvent struct {
	shared.BaseDomainEvent
	CampaignID    uuid.UUID `json:"campaign_id"`
	CompletedStep string    `json:"completed_step"`
	CurrentStep   string    `json:"current_step"`
}

// NewCampaignStepCompletedEvent creates a new CampaignStepCompletedEvent
func NewCampaignStepCompletedEvent(c *Campaign, completed WizardStep) *CampaignStepCompletedEvent {
	return &CampaignStepCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignStepCompleted, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:      c.ID,
		CompletedStep:   completed.String(),
		CurrentStep:     c.Step.String(),
	}
}

// EventType returns the event type name
func (e *CampaignStepCompletedEvent) EventType() string {
	return EventTypeCampaignStepCompleted
}

// CampaignPublishedEvent is raised when a campaign is published
// This event makes the campaign visible to matching and bundles
type CampaignPublishedEvent struct {
	shared.BaseDomainEvent
	CampaignID        uuid.UUID       `json:"campaign_id"`
	CampaignName      string          `json:"campaign_name"`
	BusinessProfileID uuid.UUID       `json:"business_profile_id"`
	BudgetAmount      decimal.Decimal `json:"budget_amount"`
	BudgetCurrency    string          `json:"budget_currency"`
	Criteria          TargetCriteria  `json:"criteria"`
}

// NewCampaignPublishedEvent creates a new CampaignPublishedEvent
func NewCampaignPublishedEvent(c *Campaign) *CampaignPublishedEvent {
	return &CampaignPublishedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCampaignPublished, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:        c.ID,
		CampaignName:      c.Name,
		BusinessProfileID: c.BusinessProfileID,
		BudgetAmount:      c.BudgetAmount,
		BudgetCurrency:    c.BudgetCurrency,
		Criteria:          c.Criteria,
	}
}

// EventType returns the event type name
func (e *CampaignPublishedEvent) EventType() string {
	return EventTypeCampaignPublished
}

// CampaignPausedEvent is raised when a campaign is paused
type CampaignPausedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID `json:"campaign_id"`
}

// NewCampaignPausedEvent creates a new CampaignPausedEvent
func NewCampaignPausedEvent(c *Campaign) *CampaignPausedEvent {
	return &CampaignPausedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignPaused, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:      c.ID,
	}
}

// EventType returns the event type name
func (e *CampaignPausedEvent) EventType() string {
	return EventTypeCampaignPaused
}

// CampaignResumedEvent is raised when a paused campaign resumes
type CampaignResumedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID `json:"campaign_id"`
}

// NewCampaignResumedEvent creates a new CampaignResumedEvent
func NewCampaignResumedEvent(c *Campaign) *CampaignResumedEvent {
	return &CampaignResumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignResumed, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:      c.ID,
	}
}

// EventType returns the event type name
func (e *CampaignResumedEvent) EventType() string {
	return EventTypeCampaignResumed
}

// CampaignCompletedEvent is raised when a campaign completes
type CampaignCompletedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID `json:"campaign_id"`
}

// NewCampaignCompletedEvent creates a new CampaignCompletedEvent
func NewCampaignCompletedEvent(c *Campaign) *CampaignCompletedEvent {
	return &CampaignCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignCompleted, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:      c.ID,
	}
}

// EventType returns the event type name
func (e *CampaignCompletedEvent) EventType() string {
	return EventTypeCampaignCompleted
}

// CampaignCancelledEvent is raised when a campaign is cancelled
// WasPublished signals downstream contexts (bundles, matching) to
// withdraw pending work for this campaign
type CampaignCancelledEvent struct {
	shared.BaseDomainEvent
	CampaignID   uuid.UUID `json:"campaign_id"`
	CancelReason string    `json:"cancel_reason"`
	WasPublished bool      `json:"was_published"`
}

// NewCampaignCancelledEvent creates a new CampaignCancelledEvent
func NewCampaignCancelledEvent(c *Campaign, wasPublished bool) *CampaignCancelledEvent {
	return &CampaignCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignCancelled, AggregateTypeCampaign, c.ID, c.TenantID),
		CampaignID:      c.ID,
		CancelReason:    c.CancelReason,
		WasPublished:    wasPublished,
	}
}

// EventType returns the event type name
func (e *CampaignCancelledEvent) EventType() string {
	return EventTypeCampaignCancelled
}
