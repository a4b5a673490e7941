package event

import (
	"context"

	"github.com/google/uuid"

	"github.com/nilmarket/backend/internal/domain/billing"
	"github.com/nilmarket/backend/internal/domain/shared"
)

// BusQuotaEventPublisher publishes quota threshold events over the event bus.
// It implements billing.UsageEventPublisher.
type BusQuotaEventPublisher struct {
	publisher shared.EventPublisher
}

// NewBusQuotaEventPublisher creates a new BusQuotaEventPublisher
func NewBusQuotaEventPublisher(publisher shared.EventPublisher) *BusQuotaEventPublisher {
	return &BusQuotaEventPublisher{publisher: publisher}
}

// PublishQuotaWarning publishes an event when usage approaches the quota limit
func (p *BusQuotaEventPublisher) PublishQuotaWarning(ctx context.Context, tenantID uuid.UUID, result billing.QuotaCheckResult) error {
	return p.publisher.Publish(ctx, billing.NewQuotaWarningEvent(tenantID, result))
}

// PublishQuotaExceeded publishes an event when usage exceeds the quota limit
func (p *BusQuotaEventPublisher) PublishQuotaExceeded(ctx context.Context, tenantID uuid.UUID, result billing.QuotaCheckResult) error {
	return p.publisher.Publish(ctx, billing.NewQuotaExceededEvent(tenantID, result))
}
