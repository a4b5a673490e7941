package campaign

import (
	"context"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CampaignRepository defines the interface for campaign persistence
type CampaignRepository interface {
	// FindByID finds a campaign by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindByIDForTenant finds a campaign by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Campaign, error)

	// FindAllForTenant finds all campaigns for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Campaign, error)

	// FindByStatus finds campaigns by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status CampaignStatus, filter shared.Filter) ([]Campaign, error)

	// FindByBusinessProfile finds campaigns owned by a business profile
	FindByBusinessProfile(ctx context.Context, tenantID, businessProfileID uuid.UUID, filter shared.Filter) ([]Campaign, error)

	// Save creates or updates a campaign
	Save(ctx context.Context, c *Campaign) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Campaign) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, c *Campaign, events []shared.DomainEvent) error

	// Delete deletes a campaign (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForTenant deletes a campaign for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts campaigns for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts campaigns by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status CampaignStatus) (int64, error)

	// CountActiveForTenant counts campaigns in PUBLISHED or PAUSED status
	// Used for plan quota checks before publishing
	CountActiveForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
