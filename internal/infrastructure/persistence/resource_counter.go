package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
)

// GormResourceCounter counts tenant resources for usage snapshots.
type GormResourceCounter struct {
	db *gorm.DB
}

// NewGormResourceCounter creates a new GormResourceCounter
func NewGormResourceCounter(db *gorm.DB) *GormResourceCounter {
	return &GormResourceCounter{db: db}
}

func (c *GormResourceCounter) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error
	return n, err
}

// CountUsers counts users belonging to a tenant
func (c *GormResourceCounter) CountUsers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.UserModel{}, "tenant_id = ?", tenantID)
}

// CountAthleteProfiles counts athlete profiles belonging to a tenant
func (c *GormResourceCounter) CountAthleteProfiles(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.AthleteProfileModel{}, "tenant_id = ?", tenantID)
}

// CountBusinessProfiles counts business profiles belonging to a tenant
func (c *GormResourceCounter) CountBusinessProfiles(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.BusinessProfileModel{}, "tenant_id = ?", tenantID)
}

// CountActiveCampaigns counts published and paused campaigns belonging to a tenant
func (c *GormResourceCounter) CountActiveCampaigns(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.CampaignModel{}, "tenant_id = ? AND status IN ?", tenantID,
		[]string{string(campaign.CampaignStatusPublished), string(campaign.CampaignStatusPaused)})
}

// CountBundles counts bundles belonging to a tenant
func (c *GormResourceCounter) CountBundles(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.BundleModel{}, "tenant_id = ?", tenantID)
}

// CountMatchRuns counts match runs belonging to a tenant
func (c *GormResourceCounter) CountMatchRuns(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, &models.MatchRunModel{}, "tenant_id = ?", tenantID)
}
