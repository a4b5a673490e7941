// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMarketplaceMetricsProvider implements MarketplaceMetricsProvider using GORM.
// It queries the bundles and bundle_offers tables directly for aggregated metrics.
type GormMarketplaceMetricsProvider struct {
	db *gorm.DB
}

// NewGormMarketplaceMetricsProvider creates a new GormMarketplaceMetricsProvider.
func NewGormMarketplaceMetricsProvider(db *gorm.DB) *GormMarketplaceMetricsProvider {
	return &GormMarketplaceMetricsProvider{db: db}
}

// GetPendingReviewBundleCount returns the number of bundles awaiting compliance review for a tenant.
func (p *GormMarketplaceMetricsProvider) GetPendingReviewBundleCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("bundles").
		Where("tenant_id = ? AND status = ?", tenantID, "PENDING_REVIEW").
		Count(&count).Error

	return count, err
}

// GetOpenOfferCount returns the number of offers still awaiting an athlete decision for a tenant.
func (p *GormMarketplaceMetricsProvider) GetOpenOfferCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("bundle_offers").
		Joins("JOIN bundles ON bundles.id = bundle_offers.bundle_id").
		Where("bundles.tenant_id = ? AND bundle_offers.status IN ?", tenantID, []string{"PENDING", "SENT"}).
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Select("id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
