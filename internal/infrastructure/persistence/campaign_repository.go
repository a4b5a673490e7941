package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCampaignRepository implements CampaignRepository using GORM
type GormCampaignRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormCampaignRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	var model models.CampaignModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a campaign by ID within a tenant
func (r *GormCampaignRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*campaign.Campaign, error) {
	var model models.CampaignModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all campaigns for a tenant with filtering
func (r *GormCampaignRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]campaign.Campaign, error) {
	var campaignModels []models.CampaignModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CampaignModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	return toDomainCampaigns(campaignModels), nil
}

// FindByStatus finds campaigns by status for a tenant
func (r *GormCampaignRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status campaign.CampaignStatus, filter shared.Filter) ([]campaign.Campaign, error) {
	var campaignModels []models.CampaignModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CampaignModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	return toDomainCampaigns(campaignModels), nil
}

// FindByBusinessProfile finds campaigns owned by a business profile
func (r *GormCampaignRepository) FindByBusinessProfile(ctx context.Context, tenantID, businessProfileID uuid.UUID, filter shared.Filter) ([]campaign.Campaign, error) {
	var campaignModels []models.CampaignModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CampaignModel{}).
			Where("tenant_id = ? AND business_profile_id = ?", tenantID, businessProfileID),
		filter,
	)

	if err := query.Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	return toDomainCampaigns(campaignModels), nil
}

// Save creates or updates a campaign
func (r *GormCampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	model := models.CampaignModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCampaignRepository) SaveWithLock(ctx context.Context, c *campaign.Campaign) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, c)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// Events go to the outbox table in the same transaction as the aggregate
func (r *GormCampaignRepository) SaveWithLockAndEvents(ctx context.Context, c *campaign.Campaign, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, c); err != nil {
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

func (r *GormCampaignRepository) saveWithLockTx(tx *gorm.DB, c *campaign.Campaign) error {
	var currentVersion int
	if err := tx.Model(&models.CampaignModel{}).
		Where("id = ?", c.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	if currentVersion != c.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The campaign has been modified by another user")
	}

	c.Version++
	c.UpdatedAt = time.Now()

	model := models.CampaignModelFromDomain(c)
	result := tx.Model(&models.CampaignModel{}).
		Where("id = ? AND version = ?", c.ID, currentVersion).
		Updates(map[string]interface{}{
			"name":            model.Name,
			"description":     model.Description,
			"step":            model.Step,
			"criteria":        model.CriteriaJSON,
			"budget_amount":   model.BudgetAmount,
			"budget_currency": model.BudgetCurrency,
			"starts_at":       model.StartsAt,
			"ends_at":         model.EndsAt,
			"status":          model.Status,
			"published_at":    model.PublishedAt,
			"paused_at":       model.PausedAt,
			"completed_at":    model.CompletedAt,
			"cancelled_at":    model.CancelledAt,
			"cancel_reason":   model.CancelReason,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The campaign has been modified by another user")
	}
	return nil
}

// Delete deletes a campaign
func (r *GormCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CampaignModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForTenant deletes a campaign for a tenant
func (r *GormCampaignRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CampaignModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts campaigns for a tenant with optional filters
func (r *GormCampaignRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CampaignModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts campaigns by status for a tenant
func (r *GormCampaignRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status campaign.CampaignStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CampaignModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveForTenant counts campaigns that consume an active-campaign quota slot
func (r *GormCampaignRepository) CountActiveForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CampaignModel{}).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]campaign.CampaignStatus{campaign.CampaignStatusPublished, campaign.CampaignStatusPaused}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCampaignRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, CampaignSortFields, "created_at")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCampaignRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "business_profile_id":
			query = query.Where("business_profile_id = ?", value)
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

func toDomainCampaigns(campaignModels []models.CampaignModel) []campaign.Campaign {
	campaigns := make([]campaign.Campaign, len(campaignModels))
	for i := range campaignModels {
		campaigns[i] = *campaignModels[i].ToDomain()
	}
	return campaigns
}

// Ensure GormCampaignRepository implements CampaignRepository
var _ campaign.CampaignRepository = (*GormCampaignRepository)(nil)
