package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMatchRunRepository implements MatchRunRepository using GORM
type GormMatchRunRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormMatchRunRepository creates a new GormMatchRunRepository
func NewGormMatchRunRepository(db *gorm.DB) *GormMatchRunRepository {
	return &GormMatchRunRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormMatchRunRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a match run by its ID
func (r *GormMatchRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.MatchRun, error) {
	var model models.MatchRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a match run by ID within a tenant
func (r *GormMatchRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*matching.MatchRun, error) {
	var model models.MatchRunModel
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

// FindLatestByCampaign finds the most recent completed run for a campaign
func (r *GormMatchRunRepository) FindLatestByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*matching.MatchRun, error) {
	var model models.MatchRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND campaign_id = ? AND status = ?", tenantID, campaignID, matching.MatchRunStatusCompleted).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all match runs for a tenant with filtering
func (r *GormMatchRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]matching.MatchRun, error) {
	var runModels []models.MatchRunModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MatchRunModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainMatchRuns(runModels), nil
}

// FindByCampaign finds match runs for a campaign
func (r *GormMatchRunRepository) FindByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, filter shared.Filter) ([]matching.MatchRun, error) {
	var runModels []models.MatchRunModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MatchRunModel{}).
			Where("tenant_id = ? AND campaign_id = ?", tenantID, campaignID),
		filter,
	)

	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainMatchRuns(runModels), nil
}

// Save creates or updates a match run
func (r *GormMatchRunRepository) Save(ctx context.Context, run *matching.MatchRun) error {
	model := models.MatchRunModelFromDomain(run)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Also handles the initial insert, since a run is created and completed through the
// same service path.
func (r *GormMatchRunRepository) SaveWithLockAndEvents(ctx context.Context, run *matching.MatchRun, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.MatchRunModel{}).
			Where("id = ?", run.ID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			if err := tx.Create(models.MatchRunModelFromDomain(run)).Error; err != nil {
				return err
			}
		} else {
			if err := r.saveWithLockTx(tx, run); err != nil {
				return err
			}
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

func (r *GormMatchRunRepository) saveWithLockTx(tx *gorm.DB, run *matching.MatchRun) error {
	var currentVersion int
	if err := tx.Model(&models.MatchRunModel{}).
		Where("id = ?", run.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	if currentVersion != run.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The match run has been modified by another user")
	}

	run.Version++
	run.UpdatedAt = time.Now()

	model := models.MatchRunModelFromDomain(run)
	result := tx.Model(&models.MatchRunModel{}).
		Where("id = ? AND version = ?", run.ID, currentVersion).
		Updates(map[string]interface{}{
			"source":         model.Source,
			"status":         model.Status,
			"results":        model.ResultsJSON,
			"failure_reason": model.FailureReason,
			"started_at":     model.StartedAt,
			"completed_at":   model.CompletedAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The match run has been modified by another user")
	}
	return nil
}

// CountForTenant counts match runs for a tenant with optional filters
func (r *GormMatchRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MatchRunModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountCreatedSince counts match runs created since the given time.
// Feeds the matches-per-day plan quota.
func (r *GormMatchRunRepository) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MatchRunModel{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormMatchRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, MatchRunSortFields, "created_at")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMatchRunRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "campaign_id":
			query = query.Where("campaign_id = ?", value)
		}
	}

	return query
}

func toDomainMatchRuns(runModels []models.MatchRunModel) []matching.MatchRun {
	runs := make([]matching.MatchRun, len(runModels))
	for i := range runModels {
		runs[i] = *runModels[i].ToDomain()
	}
	return runs
}

// Ensure GormMatchRunRepository implements MatchRunRepository
var _ matching.MatchRunRepository = (*GormMatchRunRepository)(nil)
