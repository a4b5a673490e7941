package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBusinessProfileRepository implements BusinessProfileRepository using GORM
type GormBusinessProfileRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormBusinessProfileRepository creates a new GormBusinessProfileRepository
func NewGormBusinessProfileRepository(db *gorm.DB) *GormBusinessProfileRepository {
	return &GormBusinessProfileRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormBusinessProfileRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a business profile by its ID
func (r *GormBusinessProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.BusinessProfile, error) {
	var model models.BusinessProfileModel
	if err := r.db.WithContext(ctx).
		Preload("MediaAssets").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a business profile by ID within a tenant
func (r *GormBusinessProfileRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*profile.BusinessProfile, error) {
	var model models.BusinessProfileModel
	if err := r.db.WithContext(ctx).
		Preload("MediaAssets").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds the business profile owned by a user
func (r *GormBusinessProfileRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*profile.BusinessProfile, error) {
	var model models.BusinessProfileModel
	if err := r.db.WithContext(ctx).
		Preload("MediaAssets").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all business profiles for a tenant with filtering
func (r *GormBusinessProfileRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]profile.BusinessProfile, error) {
	var profileModels []models.BusinessProfileModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BusinessProfileModel{}).
			Preload("MediaAssets").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}
	return toDomainBusinessProfiles(profileModels), nil
}

// FindByStatus finds business profiles by status for a tenant
func (r *GormBusinessProfileRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus, filter shared.Filter) ([]profile.BusinessProfile, error) {
	var profileModels []models.BusinessProfileModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BusinessProfileModel{}).
			Preload("MediaAssets").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}
	return toDomainBusinessProfiles(profileModels), nil
}

// Save creates or updates a business profile with its media assets
func (r *GormBusinessProfileRepository) Save(ctx context.Context, p *profile.BusinessProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BusinessProfileModelFromDomain(p)
		assets := model.MediaAssets
		model.MediaAssets = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return saveMediaAssetsTx(tx, p.ID, assets)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBusinessProfileRepository) SaveWithLock(ctx context.Context, p *profile.BusinessProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, p)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormBusinessProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *profile.BusinessProfile, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, p); err != nil {
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

func (r *GormBusinessProfileRepository) saveWithLockTx(tx *gorm.DB, p *profile.BusinessProfile) error {
	var currentVersion int
	if err := tx.Model(&models.BusinessProfileModel{}).
		Where("id = ?", p.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	if currentVersion != p.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The profile has been modified by another user")
	}

	p.Version++
	p.UpdatedAt = time.Now()

	model := models.BusinessProfileModelFromDomain(p)
	result := tx.Model(&models.BusinessProfileModel{}).
		Where("id = ? AND version = ?", p.ID, currentVersion).
		Updates(map[string]interface{}{
			"company_name":     model.CompanyName,
			"industry":         model.Industry,
			"website":          model.Website,
			"bio":              model.Bio,
			"target_sports":    model.TargetSportsJSON,
			"target_regions":   model.TargetRegionsJSON,
			"campaign_goals":   model.CampaignGoalsJSON,
			"budget_min":       model.BudgetMin,
			"budget_max":       model.BudgetMax,
			"status":           model.Status,
			"submitted_at":     model.SubmittedAt,
			"activated_at":     model.ActivatedAt,
			"rejected_at":      model.RejectedAt,
			"suspended_at":     model.SuspendedAt,
			"rejection_reason": model.RejectionReason,
			"suspend_reason":   model.SuspendReason,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The profile has been modified by another user")
	}

	return saveMediaAssetsTx(tx, p.ID, model.MediaAssets)
}

// Delete deletes a business profile and its media assets
func (r *GormBusinessProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&models.MediaAssetModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.BusinessProfileModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts business profiles for a tenant with optional filters
func (r *GormBusinessProfileRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BusinessProfileModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts business profiles by status for a tenant
func (r *GormBusinessProfileRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BusinessProfileModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForUser checks whether the user already has a business profile in the tenant
func (r *GormBusinessProfileRepository) ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BusinessProfileModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormBusinessProfileRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BusinessProfileSortFields, "created_at")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBusinessProfileRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("company_name ILIKE ? OR industry ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "industry":
			query = query.Where("industry = ?", value)
		}
	}

	return query
}

func toDomainBusinessProfiles(profileModels []models.BusinessProfileModel) []profile.BusinessProfile {
	profiles := make([]profile.BusinessProfile, len(profileModels))
	for i := range profileModels {
		profiles[i] = *profileModels[i].ToDomain()
	}
	return profiles
}

// Ensure GormBusinessProfileRepository implements BusinessProfileRepository
var _ profile.BusinessProfileRepository = (*GormBusinessProfileRepository)(nil)
