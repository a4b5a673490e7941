package profile

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeAthleteProfile = "AthleteProfile"

// Event type constants
const (
	EventTypeAthleteProfileCreated   = "AthleteProfileCreated"
	EventTypeAthleteProfileSubmitted = "AthleteProfileSubmitted"
	EventTypeAthleteProfileActivated = "AthleteProfileActivated"
	EventTypeAthleteProfileRejected  = "AthleteProfileRejected"
	EventTypeAthleteProfileSuspended = "AthleteProfileSuspended"
)

// AthleteProfileCreatedEvent is raised when an athlete profile is created
type AthleteProfileCreatedEvent struct {
	shared.BaseDomainEvent
	ProfileID   uuid.UUID `json:"profile_id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

// NewAthleteProfileCreatedEvent creates a new AthleteProfileCreatedEvent
func NewAthleteProfileCreatedEvent(p *AthleteProfile) *AthleteProfileCreatedEvent {
	return &AthleteProfileCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAthleteProfileCreated, AggregateTypeAthleteProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
	}
}

// EventType returns the event type name
func (e *AthleteProfileCreatedEvent) EventType() string {
	return EventTypeAthleteProfileCreated
}

// AthleteProfileSubmittedEvent is raised when a profile enters compliance review
// This event feeds the compliance work queue
type AthleteProfileSubmittedEvent struct {
	shared.BaseDomainEvent
	ProfileID   uuid.UUID `json:"profile_id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Sport       string    `json:"sport"`
}

// NewAthleteProfileSubmittedEvent creates a new AthleteProfileSubmittedEvent
func NewAthleteProfileSubmittedEvent(p *AthleteProfile) *AthleteProfileSubmittedEvent {
	return &AthleteProfileSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAthleteProfileSubmitted, AggregateTypeAthleteProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
		Sport:           p.Sport,
	}
}

// EventType returns the event type name
func (e *AthleteProfileSubmittedEvent) EventType() string {
	return EventTypeAthleteProfileSubmitted
}

// AthleteProfileActivatedEvent is raised when a profile becomes visible
// on the marketplace (direct activation, approval, or reinstatement)
type AthleteProfileActivatedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Sport     string    `json:"sport"`
}

// NewAthleteProfileActivatedEvent creates a new AthleteProfileActivatedEvent
func NewAthleteProfileActivatedEvent(p *AthleteProfile) *AthleteProfileActivatedEvent {
	return &AthleteProfileActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAthleteProfileActivated, AggregateTypeAthleteProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Sport:           p.Sport,
	}
}

// EventType returns the event type name
func (e *AthleteProfileActivatedEvent) EventType() string {
	return EventTypeAthleteProfileActivated
}

// AthleteProfileRejectedEvent is raised when compliance rejects a profile
type AthleteProfileRejectedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
}

// NewAthleteProfileRejectedEvent creates a new AthleteProfileRejectedEvent
func NewAthleteProfileRejectedEvent(p *AthleteProfile) *AthleteProfileRejectedEvent {
	return &AthleteProfileRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAthleteProfileRejected, AggregateTypeAthleteProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Reason:          p.RejectionReason,
	}
}

// EventType returns the event type name
func (e *AthleteProfileRejectedEvent) EventType() string {
	return EventTypeAthleteProfileRejected
}

// AthleteProfileSuspendedEvent is raised when a profile is suspended
type AthleteProfileSuspendedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
}

// NewAthleteProfileSuspendedEvent creates a new AthleteProfileSuspendedEvent
func NewAthleteProfileSuspendedEvent(p *AthleteProfile) *AthleteProfileSuspendedEvent {
	return &AthleteProfileSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAthleteProfileSuspended, AggregateTypeAthleteProfile, p.ID, p.TenantID),
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Reason:          p.SuspendReason,
	}
}

// EventType returns the event type name
func (e *AthleteProfileSuspendedEvent) EventType() string {
	return EventTypeAthleteProfileSuspended
}
