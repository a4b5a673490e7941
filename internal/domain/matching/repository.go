package matching

import (
	"context"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MatchRunRepository defines the interface for match run persistence
type MatchRunRepository interface {
	// FindByID finds a match run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MatchRun, error)

	// FindByIDForTenant finds a match run by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*MatchRun, error)

	// FindLatestByCampaign finds the most recent completed run for a campaign
	FindLatestByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*MatchRun, error)

	// FindAllForTenant finds all match runs for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MatchRun, error)

	// FindByCampaign finds match runs for a campaign
	FindByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, filter shared.Filter) ([]MatchRun, error)

	// Save creates or updates a match run
	Save(ctx context.Context, r *MatchRun) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, r *MatchRun, events []shared.DomainEvent) error

	// CountForTenant counts match runs for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountCreatedSince counts match runs created since the given time
	// Used for the matches-per-day plan quota
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
}
