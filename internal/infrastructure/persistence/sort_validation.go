package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"short_name": true,
	"status":     true,
	"plan":       true,
	"expires_at": true,
}

// AthleteProfileSortFields contains allowed sort fields for athlete profiles
var AthleteProfileSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"display_name":    true,
	"status":          true,
	"sport":           true,
	"school":          true,
	"division":        true,
	"graduation_year": true,
	"total_followers": true,
}

// BusinessProfileSortFields contains allowed sort fields for business profiles
var BusinessProfileSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"company_name": true,
	"status":       true,
	"industry":     true,
	"budget_min":   true,
	"budget_max":   true,
}

// CampaignSortFields contains allowed sort fields for campaigns
var CampaignSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"status":        true,
	"budget_amount": true,
	"starts_at":     true,
	"ends_at":       true,
	"published_at":  true,
}

// BundleSortFields contains allowed sort fields for bundles
var BundleSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"name":                 true,
	"status":               true,
	"campaign_id":          true,
	"total_budget":         true,
	"default_offer_amount": true,
	"expires_at":           true,
	"dispatched_at":        true,
}

// MatchRunSortFields contains allowed sort fields for matching runs
var MatchRunSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"campaign_id":  true,
	"status":       true,
	"source":       true,
	"started_at":   true,
	"completed_at": true,
}

// SubscriptionSortFields contains allowed sort fields for subscriptions
var SubscriptionSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"status":               true,
	"plan_code":            true,
	"current_period_start": true,
	"current_period_end":   true,
	"canceled_at":          true,
}

// RoleSortFields contains allowed sort fields for roles
var RoleSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"sort_order":     true,
	"is_enabled":     true,
	"is_system_role": true,
}
