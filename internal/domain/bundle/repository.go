package bundle

import (
	"context"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BundleRepository defines the interface for bundle persistence
type BundleRepository interface {
	// FindByID finds a bundle by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bundle, error)

	// FindByIDForTenant finds a bundle by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bundle, error)

	// FindByIdempotencyKey finds a bundle created with the given idempotency key
	// Used to dedupe retried create requests
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Bundle, error)

	// FindByOffer finds the bundle containing the given offer
	FindByOffer(ctx context.Context, tenantID, offerID uuid.UUID) (*Bundle, error)

	// FindAllForTenant finds all bundles for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Bundle, error)

	// FindByCampaign finds bundles for a campaign
	FindByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, filter shared.Filter) ([]Bundle, error)

	// FindByStatus finds bundles by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status BundleStatus, filter shared.Filter) ([]Bundle, error)

	// FindPendingReview finds bundles awaiting compliance review
	FindPendingReview(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Bundle, error)

	// FindExpirable finds dispatched or ready bundles whose expiry window
	// has passed and that still carry non-terminal offers
	FindExpirable(ctx context.Context, before time.Time, limit int) ([]Bundle, error)

	// FindOffersForAthlete finds bundles containing offers for an athlete user
	FindOffersForAthlete(ctx context.Context, tenantID, athleteUserID uuid.UUID, filter shared.Filter) ([]Bundle, error)

	// Save creates or updates a bundle
	Save(ctx context.Context, b *Bundle) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, b *Bundle) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, b *Bundle, events []shared.DomainEvent) error

	// Delete deletes a bundle (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts bundles for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts bundles by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status BundleStatus) (int64, error)

	// CountCreatedSince counts bundles created since the given time
	// Used for the bundles-per-month plan quota
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
}
