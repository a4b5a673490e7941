package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nilmarket/backend/internal/domain/billing"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/shared"
)

// SubscriptionPlanSyncHandler keeps the tenant plan in sync with the billing context.
// Quota enforcement reads the plan off the tenant, so activation, plan changes and
// cancellation all flow through here.
type SubscriptionPlanSyncHandler struct {
	tenantService *TenantService
	logger        *zap.Logger
}

// NewSubscriptionPlanSyncHandler creates a new handler for subscription lifecycle events
func NewSubscriptionPlanSyncHandler(
	tenantService *TenantService,
	logger *zap.Logger,
) *SubscriptionPlanSyncHandler {
	return &SubscriptionPlanSyncHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SubscriptionPlanSyncHandler) EventTypes() []string {
	return []string{
		billing.EventTypeSubscriptionActivated,
		billing.EventTypeSubscriptionPlanChanged,
		billing.EventTypeSubscriptionCanceled,
	}
}

// Handle applies the subscription's plan to the owning tenant
func (h *SubscriptionPlanSyncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var plan string
	switch e := event.(type) {
	case *billing.SubscriptionActivatedEvent:
		plan = e.PlanCode
	case *billing.SubscriptionPlanChangedEvent:
		plan = e.NewPlanCode
	case *billing.SubscriptionCanceledEvent:
		// A fully canceled subscription drops the tenant back to the free tier
		plan = string(identity.TenantPlanFree)
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	h.logger.Info("syncing tenant plan from subscription event",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("plan", plan),
	)

	if _, err := h.tenantService.SetPlan(ctx, event.TenantID(), plan); err != nil {
		return fmt.Errorf("failed to set tenant plan: %w", err)
	}
	return nil
}
