package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBundleRepository implements BundleRepository using GORM
type GormBundleRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormBundleRepository creates a new GormBundleRepository
func NewGormBundleRepository(db *gorm.DB) *GormBundleRepository {
	return &GormBundleRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormBundleRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a bundle by its ID
func (r *GormBundleRepository) FindByID(ctx context.Context, id uuid.UUID) (*bundle.Bundle, error) {
	var model models.BundleModel
	if err := r.db.WithContext(ctx).
		Preload("Offers").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a bundle by ID within a tenant
func (r *GormBundleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*bundle.Bundle, error) {
	var model models.BundleModel
	if err := r.db.WithContext(ctx).
		Preload("Offers").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey finds a bundle by its creation idempotency key
func (r *GormBundleRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*bundle.Bundle, error) {
	var model models.BundleModel
	if err := r.db.WithContext(ctx).
		Preload("Offers").
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOffer finds the bundle containing the given offer
func (r *GormBundleRepository) FindByOffer(ctx context.Context, tenantID, offerID uuid.UUID) (*bundle.Bundle, error) {
	var offerModel models.BundleOfferModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", offerID).
		First(&offerModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByIDForTenant(ctx, tenantID, offerModel.BundleID)
}

// FindAllForTenant finds all bundles for a tenant with filtering
func (r *GormBundleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]bundle.Bundle, error) {
	var bundleModels []models.BundleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BundleModel{}).
			Preload("Offers").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&bundleModels).Error; err != nil {
		return nil, err
	}
	return toDomainBundles(bundleModels), nil
}

// FindByCampaign finds bundles for a campaign
func (r *GormBundleRepository) FindByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, filter shared.Filter) ([]bundle.Bundle, error) {
	var bundleModels []models.BundleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BundleModel{}).
			Preload("Offers").
			Where("tenant_id = ? AND campaign_id = ?", tenantID, campaignID),
		filter,
	)

	if err := query.Find(&bundleModels).Error; err != nil {
		return nil, err
	}
	return toDomainBundles(bundleModels), nil
}

// FindByStatus finds bundles by status for a tenant
func (r *GormBundleRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status bundle.BundleStatus, filter shared.Filter) ([]bundle.Bundle, error) {
	var bundleModels []models.BundleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BundleModel{}).
			Preload("Offers").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&bundleModels).Error; err != nil {
		return nil, err
	}
	return toDomainBundles(bundleModels), nil
}

// FindPendingReview finds bundles waiting for compliance review
func (r *GormBundleRepository) FindPendingReview(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]bundle.Bundle, error) {
	return r.FindByStatus(ctx, tenantID, bundle.BundleStatusPendingReview, filter)
}

// FindExpirable finds dispatched bundles whose expiry has passed, across all tenants.
// The expiry sweep processes these in batches.
func (r *GormBundleRepository) FindExpirable(ctx context.Context, before time.Time, limit int) ([]bundle.Bundle, error) {
	var bundleModels []models.BundleModel
	query := r.db.WithContext(ctx).Model(&models.BundleModel{}).
		Preload("Offers").
		Where("status = ? AND expires_at <= ?", bundle.BundleStatusDispatched, before).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&bundleModels).Error; err != nil {
		return nil, err
	}
	return toDomainBundles(bundleModels), nil
}

// FindOffersForAthlete finds bundles containing offers addressed to the athlete user
func (r *GormBundleRepository) FindOffersForAthlete(ctx context.Context, tenantID, athleteUserID uuid.UUID, filter shared.Filter) ([]bundle.Bundle, error) {
	var bundleIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.BundleOfferModel{}).
		Distinct("bundle_id").
		Where("athlete_user_id = ?", athleteUserID).
		Pluck("bundle_id", &bundleIDs).Error; err != nil {
		return nil, err
	}
	if len(bundleIDs) == 0 {
		return []bundle.Bundle{}, nil
	}

	var bundleModels []models.BundleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BundleModel{}).
			Preload("Offers").
			Where("tenant_id = ? AND id IN ?", tenantID, bundleIDs),
		filter,
	)

	if err := query.Find(&bundleModels).Error; err != nil {
		return nil, err
	}
	return toDomainBundles(bundleModels), nil
}

// Save creates or updates a bundle with its offers
func (r *GormBundleRepository) Save(ctx context.Context, b *bundle.Bundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BundleModelFromDomain(b)
		offers := model.Offers
		model.Offers = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return r.saveOffersTx(tx, b.ID, offers)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBundleRepository) SaveWithLock(ctx context.Context, b *bundle.Bundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, b)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// Events go to the outbox table in the same transaction as the aggregate, which is how
// the dispatch request reaches the broker without dual-write races
func (r *GormBundleRepository) SaveWithLockAndEvents(ctx context.Context, b *bundle.Bundle, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A freshly created bundle has no stored version to check
		var exists int64
		if err := tx.Model(&models.BundleModel{}).Where("id = ?", b.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			model := models.BundleModelFromDomain(b)
			offers := model.Offers
			model.Offers = nil
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			if err := r.saveOffersTx(tx, b.ID, offers); err != nil {
				return err
			}
		} else if err := r.saveWithLockTx(tx, b); err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

func (r *GormBundleRepository) saveWithLockTx(tx *gorm.DB, b *bundle.Bundle) error {
	var currentVersion int
	if err := tx.Model(&models.BundleModel{}).
		Where("id = ?", b.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	if currentVersion != b.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The bundle has been modified by another user")
	}

	b.Version++
	b.UpdatedAt = time.Now()

	model := models.BundleModelFromDomain(b)
	result := tx.Model(&models.BundleModel{}).
		Where("id = ? AND version = ?", b.ID, currentVersion).
		Updates(map[string]interface{}{
			"name":                 model.Name,
			"total_budget":         model.TotalBudget,
			"currency":             model.Currency,
			"default_offer_amount": model.DefaultOfferAmount,
			"expires_at":           model.ExpiresAt,
			"status":               model.Status,
			"submitted_at":         model.SubmittedAt,
			"approved_at":          model.ApprovedAt,
			"dispatched_at":        model.DispatchedAt,
			"closed_at":            model.ClosedAt,
			"rejected_at":          model.RejectedAt,
			"reject_reason":        model.RejectReason,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The bundle has been modified by another user")
	}

	return r.saveOffersTx(tx, b.ID, model.Offers)
}

// saveOffersTx reconciles the offer child rows with the aggregate's current set
func (r *GormBundleRepository) saveOffersTx(tx *gorm.DB, bundleID uuid.UUID, offers []models.BundleOfferModel) error {
	currentOfferIDs := make([]uuid.UUID, len(offers))
	for i, offer := range offers {
		currentOfferIDs[i] = offer.ID
	}

	if len(currentOfferIDs) > 0 {
		if err := tx.Where("bundle_id = ? AND id NOT IN ?", bundleID, currentOfferIDs).
			Delete(&models.BundleOfferModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("bundle_id = ?", bundleID).
			Delete(&models.BundleOfferModel{}).Error; err != nil {
			return err
		}
	}

	for i := range offers {
		offers[i].BundleID = bundleID
		if err := tx.Save(&offers[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a bundle and its offers
func (r *GormBundleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bundle_id = ?", id).Delete(&models.BundleOfferModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.BundleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts bundles for a tenant with optional filters
func (r *GormBundleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BundleModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts bundles by status for a tenant
func (r *GormBundleRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status bundle.BundleStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BundleModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountCreatedSince counts bundles created since the given time
// Used for the bundles-per-month plan quota
func (r *GormBundleRepository) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BundleModel{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormBundleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BundleSortFields, "created_at")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBundleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "campaign_id":
			query = query.Where("campaign_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

func toDomainBundles(bundleModels []models.BundleModel) []bundle.Bundle {
	bundles := make([]bundle.Bundle, len(bundleModels))
	for i := range bundleModels {
		bundles[i] = *bundleModels[i].ToDomain()
	}
	return bundles
}

// Ensure GormBundleRepository implements BundleRepository
var _ bundle.BundleRepository = (*GormBundleRepository)(nil)
