package persistence

import (
	"context"
	"fmt"

	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// TenantPlanLookup resolves a tenant's subscription plan for plan feature checks
type TenantPlanLookup struct {
	tenants identity.TenantRepository
}

// NewTenantPlanLookup creates a new TenantPlanLookup
func NewTenantPlanLookup(tenants identity.TenantRepository) *TenantPlanLookup {
	return &TenantPlanLookup{tenants: tenants}
}

// GetTenantPlan returns the plan for a tenant
func (l *TenantPlanLookup) GetTenantPlan(ctx context.Context, tenantID string) (identity.TenantPlan, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return "", fmt.Errorf("invalid tenant id: %w", err)
	}
	tenant, err := l.tenants.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return tenant.Plan, nil
}
