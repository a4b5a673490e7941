package profile

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeBusinessProfile = "BusinessProfile"

// Event type constants
const (
	EventTypeBusinessProfileCreated   = "BusinessProfileCreated"
	EventTypeBusinessProfileSubmitted = "BusinessProfileSubmitted"
	EventTypeBusinessProfileActivated = "BusinessProfileActivated"
	EventTypeBusinessProfileRejected  = "BusinessProfileRejected"
	EventTypeBusinessProfileSuspended = "BusinessProfileSuspended"
)

// BusinessProfileCreatedEvent is raised when a business profile is created
type BusinessProfileCreatedEvent struct {
	shared.BaseDomainEvent
	ProfileID   uuid.UUID `json:"profile_id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
}

// NewBusinessProfileCreatedEvent creates a new BusinessProfileCreatedEvent
func NewBusinessProfileCreatedEvent(p *BusinessProfile) *BusinessProfileCreatedEvent {
	return &BusinessProfileCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessProfileCreated, AggregateTypeBusinessProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		CompanyName:     p.CompanyName,
	}
}

// EventType returns the event type name
func (e *BusinessProfileCreatedEvent) EventType() string {
	return EventTypeBusinessProfileCreated
}

// BusinessProfileSubmittedEvent is raised when a profile enters compliance review
type BusinessProfileSubmittedEvent struct {
	shared.BaseDomainEvent
	ProfileID   uuid.UUID `json:"profile_id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry"`
}

// NewBusinessProfileSubmittedEvent creates a new BusinessProfileSubmittedEvent
func NewBusinessProfileSubmittedEvent(p *BusinessProfile) *BusinessProfileSubmittedEvent {
	return &BusinessProfileSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessProfileSubmitted, AggregateTypeBusinessProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		CompanyName:     p.CompanyName,
		Industry:        p.Industry,
	}
}

// EventType returns the event type name
func (e *BusinessProfileSubmittedEvent) EventType() string {
	return EventTypeBusinessProfileSubmitted
}

// BusinessProfileActivatedEvent is raised when a profile becomes active
type BusinessProfileActivatedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// NewBusinessProfileActivatedEvent creates a new BusinessProfileActivatedEvent
func NewBusinessProfileActivatedEvent(p *BusinessProfile) *BusinessProfileActivatedEvent {
	return &BusinessProfileActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessProfileActivated, AggregateTypeBusinessProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
	}
}

// EventType returns the event type name
func (e *BusinessProfileActivatedEvent) EventType() string {
	return EventTypeBusinessProfileActivated
}

// BusinessProfileRejectedEvent is raised when compliance rejects a profile
type BusinessProfileRejectedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
}

// NewBusinessProfileRejectedEvent creates a new BusinessProfileRejectedEvent
func NewBusinessProfileRejectedEvent(p *BusinessProfile) *BusinessProfileRejectedEvent {
	return &BusinessProfileRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessProfileRejected, AggregateTypeBusinessProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Reason:          p.RejectionReason,
	}
}

// EventType returns the event type name
func (e *BusinessProfileRejectedEvent) EventType() string {
	return EventTypeBusinessProfileRejected
}

// BusinessProfileSuspendedEvent is raised when a profile is suspended
type BusinessProfileSuspendedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
}

// NewBusinessProfileSuspendedEvent creates a new BusinessProfileSuspendedEvent
func NewBusinessProfileSuspendedEvent(p *BusinessProfile) *BusinessProfileSuspendedEvent {
	return &BusinessProfileSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessProfileSuspended, AggregateTypeBusinessProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Reason:          p.SuspendReason,
	}
}

// EventType returns the event type name
func (e *BusinessProfileSuspendedEvent) EventType() string {
	return EventTypeBusinessProfileSuspended
}
