package billing

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSubscription = "Subscription"

// Event type constants
const (
	EventTypeSubscriptionCreated         = "SubscriptionCreated"
	EventTypeSubscriptionActivated       = "SubscriptionActivated"
	EventTypeSubscriptionPlanChanged     = "SubscriptionPlanChanged"
	EventTypeSubscriptionCancelScheduled = "SubscriptionCancelScheduled"
	EventTypeSubscriptionCanceled        = "SubscriptionCanceled"
	EventTypeSubscriptionReactivated     = "SubscriptionReactivated"
	EventTypeSubscriptionPaymentFailed   = "SubscriptionPaymentFailed"
)

// SubscriptionCreatedEvent is raised when a subscription is first created
type SubscriptionCreatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID   uuid.UUID `json:"subscription_id"`
	PlanCode         string    `json:"plan_code"`
	StripeCustomerID string    `json:"stripe_customer_id"`
}

// NewSubscriptionCreatedEvent creates a new SubscriptionCreatedEvent
func NewSubscriptionCreatedEvent(s *Subscription) *SubscriptionCreatedEvent {
	return &SubscriptionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSubscriptionCreated, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:   s.ID,
		PlanCode:         s.PlanCode,
		StripeCustomerID: s.StripeCustomerID,
	}
}

// EventType returns the event type name
func (e *SubscriptionCreatedEvent) EventType() string {
	return EventTypeSubscriptionCreated
}

// SubscriptionActivatedEvent is raised when a subscription becomes active
// The identity context listens to keep the tenant plan in sync
type SubscriptionActivatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	PlanCode       string    `json:"plan_code"`
}

// NewSubscriptionActivatedEvent creates a new SubscriptionActivatedEvent
func NewSubscriptionActivatedEvent(s *Subscription) *SubscriptionActivatedEvent {
	return &SubscriptionActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionActivated, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
		PlanCode:        s.PlanCode,
	}
}

// EventType returns the event type name
func (e *SubscriptionActivatedEvent) EventType() string {
	return EventTypeSubscriptionActivated
}

// SubscriptionPlanChangedEvent is raised when the plan changes
type SubscriptionPlanChangedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	OldPlanCode    string    `json:"old_plan_code"`
	NewPlanCode    string    `json:"new_plan_code"`
}

// NewSubscriptionPlanChangedEvent creates a new SubscriptionPlanChangedEvent
func NewSubscriptionPlanChangedEvent(s *Subscription, oldPlan string) *SubscriptionPlanChangedEvent {
	return &SubscriptionPlanChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionPlanChanged, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
		OldPlanCode:     oldPlan,
		NewPlanCode:     s.PlanCode,
	}
}

// EventType returns the event type name
func (e *SubscriptionPlanChangedEvent) EventType() string {
	return EventTypeSubscriptionPlanChanged
}

// SubscriptionCancelScheduledEvent is raised when cancellation is
// scheduled for period end
type SubscriptionCancelScheduledEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
}

// NewSubscriptionCancelScheduledEvent creates a new SubscriptionCancelScheduledEvent
func NewSubscriptionCancelScheduledEvent(s *Subscription) *SubscriptionCancelScheduledEvent {
	return &SubscriptionCancelScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionCancelScheduled, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
	}
}

// EventType returns the event type name
func (e *SubscriptionCancelScheduledEvent) EventType() string {
	return EventTypeSubscriptionCancelScheduled
}

// SubscriptionCanceledEvent is raised when a subscription is canceled
// The identity context downgrades the tenant to the free plan
type SubscriptionCanceledEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	PlanCode       string    `json:"plan_code"`
}

// NewSubscriptionCanceledEvent creates a new SubscriptionCanceledEvent
func NewSubscriptionCanceledEvent(s *Subscription) *SubscriptionCanceledEvent {
	return &SubscriptionCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionCanceled, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
		PlanCode:        s.PlanCode,
	}
}

// EventType returns the event type name
func (e *SubscriptionCanceledEvent) EventType() string {
	return EventTypeSubscriptionCanceled
}

// SubscriptionReactivatedEvent is raised when a scheduled cancellation
// is cleared
type SubscriptionReactivatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
}

// NewSubscriptionReactivatedEvent creates a new SubscriptionReactivatedEvent
func NewSubscriptionReactivatedEvent(s *Subscription) *SubscriptionReactivatedEvent {
	return &SubscriptionReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionReactivated, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
	}
}

// EventType returns the event type name
func (e *SubscriptionReactivatedEvent) EventType() string {
	return EventTypeSubscriptionReactivated
}

// SubscriptionPaymentFailedEvent is raised when an invoice payment fails
type SubscriptionPaymentFailedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	LatestInvoiceID string    `json:"latest_invoice_id"`
}

// NewSubscriptionPaymentFailedEvent creates a new SubscriptionPaymentFailedEvent
func NewSubscriptionPaymentFailedEvent(s *Subscription) *SubscriptionPaymentFailedEvent {
	return &SubscriptionPaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionPaymentFailed, AggregateTypeSubscription, s.ID, s.TenantID),
		SubscriptionID:  s.ID,
		LatestInvoiceID: s.LatestInvoiceID,
	}
}

// EventType returns the event type name
func (e *SubscriptionPaymentFailedEvent) EventType() string {
	return EventTypeSubscriptionPaymentFailed
}
