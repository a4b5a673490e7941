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
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormAthleteProfileRepository implements AthleteProfileRepository using GORM
type GormAthleteProfileRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormAthleteProfileRepository creates a new GormAthleteProfileRepository
func NewGormAthleteProfileRepository(db *gorm.DB) *GormAthleteProfileRepository {
	return &GormAthleteProfileRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormAthleteProfileRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an athlete profile by its ID
func (r *GormAthleteProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.AthleteProfile, error) {
	var model models.AthleteProfileModel
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

// FindByIDForTenant finds an athlete profile by ID within a tenant
func (r *GormAthleteProfileRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*profile.AthleteProfile, error) {
	var model models.AthleteProfileModel
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

// FindByUser finds the athlete profile owned by a user
// A user has at most one athlete profile per tenant
func (r *GormAthleteProfileRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*profile.AthleteProfile, error) {
	var model models.AthleteProfileModel
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

// FindAllForTenant finds all athlete profiles for a tenant with filtering
func (r *GormAthleteProfileRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]profile.AthleteProfile, error) {
	var profileModels []models.AthleteProfileModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AthleteProfileModel{}).
			Preload("MediaAssets").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}
	return toDomainAthleteProfiles(profileModels), nil
}

// FindByStatus finds athlete profiles by status for a tenant
func (r *GormAthleteProfileRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus, filter shared.Filter) ([]profile.AthleteProfile, error) {
	var profileModels []models.AthleteProfileModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AthleteProfileModel{}).
			Preload("MediaAssets").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}
	return toDomainAthleteProfiles(profileModels), nil
}

// SearchActive finds active athlete profiles matching the search criteria.
// The local match scorer consumes these candidates, so the query stays broad:
// criteria not expressed in columns (content tag overlap scoring, budget fit)
// are left to the scorer.
func (r *GormAthleteProfileRepository) SearchActive(ctx context.Context, tenantID uuid.UUID, search profile.AthleteSearch) ([]profile.AthleteProfile, error) {
	query := r.db.WithContext(ctx).Model(&models.AthleteProfileModel{}).
		Preload("MediaAssets").
		Where("tenant_id = ? AND status = ?", tenantID, profile.ProfileStatusActive)

	if len(search.Sports) > 0 {
		query = query.Where("sport IN ?", search.Sports)
	}
	if len(search.Divisions) > 0 {
		query = query.Where("division IN ?", search.Divisions)
	}
	if len(search.ContentTags) > 0 {
		query = query.Where("jsonb_exists_any(content_tags, ?)", pq.Array(search.ContentTags))
	}
	if search.MinFollowers > 0 {
		query = query.Where("total_followers >= ?", search.MinFollowers)
	}

	query = query.Order("total_followers DESC")
	if search.Limit > 0 {
		query = query.Limit(search.Limit)
	}

	var profileModels []models.AthleteProfileModel
	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}
	return toDomainAthleteProfiles(profileModels), nil
}

// Save creates or updates an athlete profile with its media assets
func (r *GormAthleteProfileRepository) Save(ctx context.Context, p *profile.AthleteProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.AthleteProfileModelFromDomain(p)
		assets := model.MediaAssets
		model.MediaAssets = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return saveMediaAssetsTx(tx, p.ID, assets)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormAthleteProfileRepository) SaveWithLock(ctx context.Context, p *profile.AthleteProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, p)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormAthleteProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *profile.AthleteProfile, events []shared.DomainEvent) error {
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

func (r *GormAthleteProfileRepository) saveWithLockTx(tx *gorm.DB, p *profile.AthleteProfile) error {
	var currentVersion int
	if err := tx.Model(&models.AthleteProfileModel{}).
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

	model := models.AthleteProfileModelFromDomain(p)
	result := tx.Model(&models.AthleteProfileModel{}).
		Where("id = ? AND version = ?", p.ID, currentVersion).
		Updates(map[string]interface{}{
			"display_name":       model.DisplayName,
			"sport":              model.Sport,
			"school":             model.School,
			"division":           model.Division,
			"graduation_year":    model.GraduationYear,
			"bio":                model.Bio,
			"content_tags":       model.ContentTagsJSON,
			"social_accounts":    model.SocialAccountsJSON,
			"total_followers":    model.TotalFollowers,
			"compensation_floor": model.CompensationFloor,
			"status":             model.Status,
			"submitted_at":       model.SubmittedAt,
			"activated_at":       model.ActivatedAt,
			"rejected_at":        model.RejectedAt,
			"suspended_at":       model.SuspendedAt,
			"rejection_reason":   model.RejectionReason,
			"suspend_reason":     model.SuspendReason,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The profile has been modified by another user")
	}

	return saveMediaAssetsTx(tx, p.ID, model.MediaAssets)
}

// Delete deletes an athlete profile and its media assets
func (r *GormAthleteProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&models.MediaAssetModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.AthleteProfileModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts athlete profiles for a tenant with optional filters
func (r *GormAthleteProfileRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AthleteProfileModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts athlete profiles by status for a tenant
func (r *GormAthleteProfileRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AthleteProfileModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForUser checks whether the user already has an athlete profile in the tenant
func (r *GormAthleteProfileRepository) ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AthleteProfileModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormAthleteProfileRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, AthleteProfileSortFields, "created_at")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAthleteProfileRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("display_name ILIKE ? OR school ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "sport":
			query = query.Where("sport = ?", value)
		case "division":
			query = query.Where("division = ?", value)
		case "min_followers":
			query = query.Where("total_followers >= ?", value)
		}
	}

	return query
}

// saveMediaAssetsTx reconciles the media asset child rows with the aggregate's current set
func saveMediaAssetsTx(tx *gorm.DB, profileID uuid.UUID, assets []models.MediaAssetModel) error {
	currentAssetIDs := make([]uuid.UUID, len(assets))
	for i, asset := range assets {
		currentAssetIDs[i] = asset.ID
	}

	if len(currentAssetIDs) > 0 {
		if err := tx.Where("profile_id = ? AND id NOT IN ?", profileID, currentAssetIDs).
			Delete(&models.MediaAssetModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("profile_id = ?", profileID).
			Delete(&models.MediaAssetModel{}).Error; err != nil {
			return err
		}
	}

	for i := range assets {
		assets[i].ProfileID = profileID
		if err := tx.Save(&assets[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func toDomainAthleteProfiles(profileModels []models.AthleteProfileModel) []profile.AthleteProfile {
	profiles := make([]profile.AthleteProfile, len(profileModels))
	for i := range profileModels {
		profiles[i] = *profileModels[i].ToDomain()
	}
	return profiles
}

// Ensure GormAthleteProfileRepository implements AthleteProfileRepository
var _ profile.AthleteProfileRepository = (*GormAthleteProfileRepository)(nil)
