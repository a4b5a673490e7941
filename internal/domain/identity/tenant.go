package identity

import (
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to payment/violation issues
	TenantStatusTrial     TenantStatus = "trial"     // Trial period
)

// TenantPlan represents the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "free"
	TenantPlanBasic      TenantPlan = "basic"
	TenantPlanPro        TenantPlan = "pro"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

// AllTenantPlans returns every plan in upgrade order
func AllTenantPlans() []TenantPlan {
	return []TenantPlan{TenantPlanFree, TenantPlanBasic, TenantPlanPro, TenantPlanEnterprise}
}

// DisplayName returns a human-readable plan name
func (p TenantPlan) DisplayName() string {
	switch p {
	case TenantPlanFree:
		return "Free"
	case TenantPlanBasic:
		return "Basic"
	case TenantPlanPro:
		return "Pro"
	case TenantPlanEnterprise:
		return "Enterprise"
	}
	return string(p)
}

// TenantConfig holds configurable settings for a tenant
type TenantConfig struct {
	MaxUsers           int    `json:"max_users"`             // Maximum number of users allowed
	MaxActiveCampaigns int    `json:"max_active_campaigns"`  // Maximum concurrently active campaigns
	MaxBundlesPerMonth int    `json:"max_bundles_per_month"` // Maximum bundles created per billing month
	MaxMatchesPerDay   int    `json:"max_matches_per_day"`   // Maximum matching runs per day
	ComplianceReview   bool   `json:"compliance_review"`     // Bundles require compliance approval before dispatch
	Features           string `json:"features"`              // JSON object of enabled features
	Settings           string `json:"settings"`              // JSON object of tenant settings
	Currency           string `json:"currency"`              // Default currency code
	Timezone           string `json:"timezone"`              // Tenant timezone
	Locale             string `json:"locale"`                // Tenant locale (e.g., en-US)
}

// DefaultTenantConfig returns the default configuration for a new tenant
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		MaxUsers:           5,
		MaxActiveCampaigns: 1,
		MaxBundlesPerMonth: 5,
		MaxMatchesPerDay:   10,
		ComplianceReview:   false,
		Features:           "{}",
		Settings:           "{}",
		Currency:           "USD",
		Timezone:           "America/Chicago",
		Locale:             "en-US",
	}
}

// Tenant represents a tenant/organization in the multi-tenant system
// It is the aggregate root for tenant-related operations
type Tenant struct {
	shared.BaseAggregateRoot
	Code         string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string       `gorm:"type:varchar(200);not null"`
	ShortName    string       `gorm:"type:varchar(100)"`
	Status       TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         TenantPlan   `gorm:"type:varchar(20);not null;default:'free'"`
	ContactName  string       `gorm:"type:varchar(100)"`
	ContactPhone string       `gorm:"type:varchar(50)"`
	ContactEmail string       `gorm:"type:varchar(200)"`
	Address      string       `gorm:"type:text"`
	LogoURL      string       `gorm:"type:varchar(500)"`
	Domain       string       `gorm:"type:varchar(200);uniqueIndex"` // Custom subdomain
	ExpiresAt    *time.Time   `gorm:"index"`                         // Subscription expiry date
	TrialEndsAt  *time.Time   // Trial period end date
	Config       TenantConfig `gorm:"embedded;embeddedPrefix:config_"`
	Notes        string       `gorm:"type:text"`
	// Stripe billing fields
	StripeCustomerID     string `gorm:"column:stripe_customer_id;type:varchar(255);index"`
	StripeSubscriptionID string `gorm:"column:stripe_subscription_id;type:varchar(255);index"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}

	tenant := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
		Plan:              TenantPlanFree,
		Config:            DefaultTenantConfig(),
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// NewTrialTenant creates a new tenant in trial status
func NewTrialTenant(code, name string, trialDays int) (*Tenant, error) {
	if trialDays <= 0 {
		return nil, shared.NewDomainError("INVALID_TRIAL_DAYS", "Trial days must be positive")
	}

	tenant, err := NewTenant(code, name)
	if err != nil {
		return nil, err
	}

	tenant.Status = TenantStatusTrial
	trialEnds := time.Now().AddDate(0, 0, trialDays)
	tenant.TrialEndsAt = &trialEnds

	return tenant, nil
}

// Update updates the tenant's basic information
func (t *Tenant) Update(name, shortName string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	t.Name = name
	t.ShortName = shortName
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantUpdatedEvent(t))

	return nil
}

// SetContact sets the tenant's contact information
func (t *Tenant) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	t.ContactName = contactName
	t.ContactPhone = phone
	t.ContactEmail = email
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetAddress sets the tenant's address
func (t *Tenant) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	t.Address = address
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetLogoURL sets the tenant's logo URL
func (t *Tenant) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}

	t.LogoURL = url
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetDomain sets the tenant's custom domain/subdomain
func (t *Tenant) SetDomain(domain string) error {
	if domain != "" && len(domain) > 200 {
		return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot exceed 200 characters")
	}
	if domain != "" {
		domain = strings.ToLower(strings.TrimSpace(domain))
	}

	t.Domain = domain
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetPlan sets the tenant's subscription plan
func (t *Tenant) SetPlan(plan TenantPlan) error {
	if err := validateTenantPlan(plan); err != nil {
		return err
	}

	oldPlan := t.Plan
	t.Plan = plan
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	// If upgrading from trial, clear trial status
	if t.Status == TenantStatusTrial && plan != TenantPlanFree {
		t.Status = TenantStatusActive
		t.TrialEndsAt = nil
	}

	// Update config limits based on plan
	t.updateConfigForPlan(plan)

	t.AddDomainEvent(NewTenantPlanChangedEvent(t, oldPlan, plan))

	return nil
}

// updateConfigForPlan updates configuration limits based on the plan
func (t *Tenant) updateConfigForPlan(plan TenantPlan) {
	quotas := ConfigForPlan(plan)
	t.Config.MaxUsers = quotas.MaxUsers
	t.Config.MaxActiveCampaigns = quotas.MaxActiveCampaigns
	t.Config.MaxBundlesPerMonth = quotas.MaxBundlesPerMonth
	t.Config.MaxMatchesPerDay = quotas.MaxMatchesPerDay
}

// ConfigForPlan returns the quota limits a plan grants
func ConfigForPlan(plan TenantPlan) TenantConfig {
	cfg := DefaultTenantConfig()
	switch plan {
	case TenantPlanBasic:
		cfg.MaxUsers = 10
		cfg.MaxActiveCampaigns = 5
		cfg.MaxBundlesPerMonth = 25
		cfg.MaxMatchesPerDay = 50
	case TenantPlanPro:
		cfg.MaxUsers = 50
		cfg.MaxActiveCampaigns = 25
		cfg.MaxBundlesPerMonth = 200
		cfg.MaxMatchesPerDay = 500
	case TenantPlanEnterprise:
		cfg.MaxUsers = 9999
		cfg.MaxActiveCampaigns = 9999
		cfg.MaxBundlesPerMonth = 99999
		cfg.MaxMatchesPerDay = 99999
	}
	return cfg
}

// SetStripeCustomerID sets the tenant's Stripe customer ID
func (t *Tenant) SetStripeCustomerID(customerID string) {
	t.StripeCustomerID = customerID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetStripeSubscriptionID sets the tenant's Stripe subscription ID
func (t *Tenant) SetStripeSubscriptionID(subscriptionID string) {
	t.StripeSubscriptionID = subscriptionID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// ClearStripeSubscription clears the tenant's Stripe subscription ID
func (t *Tenant) ClearStripeSubscription() {
	t.StripeSubscriptionID = ""
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetExpiration sets the subscription expiration date
func (t *Tenant) SetExpiration(expiresAt time.Time) {
	t.ExpiresAt = &expiresAt
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// ClearExpiration clears the expiration date (e.g., for lifetime plans)
func (t *Tenant) ClearExpiration() {
	t.ExpiresAt = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// UpdateConfig updates the tenant's configuration
func (t *Tenant) UpdateConfig(config TenantConfig) error {
	if config.MaxUsers < 0 {
		return shared.NewDomainError("INVALID_MAX_USERS", "Max users cannot be negative")
	}
	if config.MaxActiveCampaigns < 0 {
		return shared.NewDomainError("INVALID_MAX_CAMPAIGNS", "Max active campaigns cannot be negative")
	}
	if config.MaxBundlesPerMonth < 0 {
		return shared.NewDomainError("INVALID_MAX_BUNDLES", "Max bundles per month cannot be negative")
	}
	if config.MaxMatchesPerDay < 0 {
		return shared.NewDomainError("INVALID_MAX_MATCHES", "Max matches per day cannot be negative")
	}

	t.Config = config
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetNotes sets the tenant's notes
func (t *Tenant) SetNotes(notes string) {
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate activates the tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}

	oldStatus := t.Status
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusActive))

	return nil
}

// Deactivate deactivates the tenant
func (t *Tenant) Deactivate() error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}

	oldStatus := t.Status
	t.Status = TenantStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusInactive))

	return nil
}

// Suspend suspends the tenant (e.g., due to payment issues)
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}

	oldStatus := t.Status
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusSuspended))

	return nil
}

// ConvertFromTrial converts a trial tenant to a paid tenant
func (t *Tenant) ConvertFromTrial(plan TenantPlan) error {
	if t.Status != TenantStatusTrial {
		return shared.NewDomainError("NOT_TRIAL", "Tenant is not in trial status")
	}
	if plan == TenantPlanFree {
		return shared.NewDomainError("INVALID_PLAN", "Cannot convert to free plan from trial")
	}

	return t.SetPlan(plan)
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// IsInactive returns true if the tenant is inactive
func (t *Tenant) IsInactive() bool {
	return t.Status == TenantStatusInactive
}

// IsSuspended returns true if the tenant is suspended
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// IsTrial returns true if the tenant is in trial period
func (t *Tenant) IsTrial() bool {
	return t.Status == TenantStatusTrial
}

// IsTrialExpired returns true if the trial has expired
func (t *Tenant) IsTrialExpired() bool {
	if t.Status != TenantStatusTrial {
		return false
	}
	if t.TrialEndsAt == nil {
		return false
	}
	return time.Now().After(*t.TrialEndsAt)
}

// IsSubscriptionExpired returns true if the subscription has expired
func (t *Tenant) IsSubscriptionExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*t.ExpiresAt)
}

// CanAddUser returns true if the tenant can add more users
func (t *Tenant) CanAddUser(currentUserCount int) bool {
	return currentUserCount < t.Config.MaxUsers
}

// CanActivateCampaign returns true if the tenant can activate another campaign
func (t *Tenant) CanActivateCampaign(activeCampaignCount int) bool {
	return activeCampaignCount < t.Config.MaxActiveCampaigns
}

// CanCreateBundle returns true if the tenant can create another bundle this month
func (t *Tenant) CanCreateBundle(bundlesThisMonth int) bool {
	return bundlesThisMonth < t.Config.MaxBundlesPerMonth
}

// CanRunMatch returns true if the tenant can run another matching pass today
func (t *Tenant) CanRunMatch(matchesToday int) bool {
	return matchesToday < t.Config.MaxMatchesPerDay
}

// RequiresComplianceReview returns true if bundles need compliance approval
func (t *Tenant) RequiresComplianceReview() bool {
	return t.Config.ComplianceReview
}

// GetID returns the tenant ID (implements a helper for getting UUID)
func (t *Tenant) GetTenantID() uuid.UUID {
	return t.ID
}

// Validation functions

func validateTenantCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTenantName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}

func validateTenantPlan(plan TenantPlan) error {
	switch plan {
	case TenantPlanFree, TenantPlanBasic, TenantPlanPro, TenantPlanEnterprise:
		return nil
	default:
		return shared.NewDomainError("INVALID_PLAN", "Invalid tenant plan")
	}
}
