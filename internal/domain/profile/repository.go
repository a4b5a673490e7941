package profile

import (
	"context"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AthleteSearch describes a filtered athlete lookup
// Used by admin search and by the local matching fallback
type AthleteSearch struct {
	Sports       []string
	Divisions    []string
	Regions      []string
	ContentTags  []string
	MinFollowers int
	Limit        int
}

// AthleteProfileRepository defines the interface for athlete profile persistence
type AthleteProfileRepository interface {
	// FindByID finds an athlete profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AthleteProfile, error)

	// FindByIDForTenant finds an athlete profile by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AthleteProfile, error)

	// FindByUser finds the athlete profile owned by a user
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*AthleteProfile, error)

	// FindAllForTenant finds all athlete profiles for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AthleteProfile, error)

	// FindByStatus finds athlete profiles by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ProfileStatus, filter shared.Filter) ([]AthleteProfile, error)

	// SearchActive finds active athlete profiles matching the search criteria
	// Follower counts are matched against the summed total across accounts
	SearchActive(ctx context.Context, tenantID uuid.UUID, search AthleteSearch) ([]AthleteProfile, error)

	// Save creates or updates an athlete profile
	Save(ctx context.Context, p *AthleteProfile) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *AthleteProfile) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, p *AthleteProfile, events []shared.DomainEvent) error

	// Delete deletes an athlete profile (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts athlete profiles for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts athlete profiles by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status ProfileStatus) (int64, error)

	// ExistsForUser checks if a user already has an athlete profile
	ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
}

// BusinessProfileRepository defines the interface for business profile persistence
type BusinessProfileRepository interface {
	// FindByID finds a business profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BusinessProfile, error)

	// FindByIDForTenant finds a business profile by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BusinessProfile, error)

	// FindByUser finds the business profile owned by a user
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*BusinessProfile, error)

	// FindAllForTenant finds all business profiles for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BusinessProfile, error)

	// FindByStatus finds business profiles by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ProfileStatus, filter shared.Filter) ([]BusinessProfile, error)

	// Save creates or updates a business profile
	Save(ctx context.Context, p *BusinessProfile) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *BusinessProfile) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, p *BusinessProfile, events []shared.DomainEvent) error

	// Delete deletes a business profile (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts business profiles for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts business profiles by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status ProfileStatus) (int64, error)

	// ExistsForUser checks if a user already has a business profile
	ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
}
