package billing

import (
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for usage quota events
const AggregateTypeUsageQuota = "UsageQuota"

// Event type constants
const (
	EventTypeQuotaWarning  = "QuotaWarning"
	EventTypeQuotaExceeded = "QuotaExceeded"
)

// QuotaWarningEvent is raised when usage crosses the soft limit of a quota
type QuotaWarningEvent struct {
	shared.BaseDomainEvent
	UsageType    UsageType `json:"usage_type"`
	CurrentUsage int64     `json:"current_usage"`
	Limit        int64     `json:"limit"`
	UsagePercent float64   `json:"usage_percent"`
}

// NewQuotaWarningEvent creates a new QuotaWarningEvent
func NewQuotaWarningEvent(tenantID uuid.UUID, result QuotaCheckResult) *QuotaWarningEvent {
	return &QuotaWarningEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotaWarning, AggregateTypeUsageQuota, tenantID, tenantID),
		UsageType:       result.UsageType,
		CurrentUsage:    result.CurrentUsage,
		Limit:           result.Limit,
		UsagePercent:    result.UsagePercent,
	}
}

// EventType returns the event type name
func (e *QuotaWarningEvent) EventType() string {
	return EventTypeQuotaWarning
}

// QuotaExceededEvent is raised when usage exceeds the hard limit of a quota
type QuotaExceededEvent struct {
	shared.BaseDomainEvent
	UsageType    UsageType `json:"usage_type"`
	CurrentUsage int64     `json:"current_usage"`
	Limit        int64     `json:"limit"`
	Overage      int64     `json:"overage"`
}

// NewQuotaExceededEvent creates a new QuotaExceededEvent
func NewQuotaExceededEvent(tenantID uuid.UUID, result QuotaCheckResult) *QuotaExceededEvent {
	return &QuotaExceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotaExceeded, AggregateTypeUsageQuota, tenantID, tenantID),
		UsageType:       result.UsageType,
		CurrentUsage:    result.CurrentUsage,
		Limit:           result.Limit,
		Overage:         result.Overage,
	}
}

// EventType returns the event type name
func (e *QuotaExceededEvent) EventType() string {
	return EventTypeQuotaExceeded
}
