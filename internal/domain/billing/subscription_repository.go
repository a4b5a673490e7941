package billing

import (
	"context"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// FindByID finds a subscription by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// FindByTenant finds the subscription for a tenant
	// At most one subscription row exists per tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)

	// FindByStripeSubscriptionID finds a subscription by its Stripe ID
	// Used by the webhook handler
	FindByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)

	// FindByStripeCustomerID finds a subscription by its Stripe customer ID
	FindByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*Subscription, error)

	// Save creates or updates a subscription
	Save(ctx context.Context, s *Subscription) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, s *Subscription) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, s *Subscription, events []shared.DomainEvent) error

	// Delete deletes a subscription (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error
}
