package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business profile completion sections, in display order
const (
	SectionCompany   = "company"
	SectionStory     = "story"
	SectionTargeting = "targeting"
	SectionGoals     = "goals"
	SectionBudget    = "budget"
)

var businessSections = []string{
	SectionCompany,
	SectionStory,
	SectionTargeting,
	SectionGoals,
	SectionBudget,
}

// BudgetBand is the per-deal spending range a business plans for
type BudgetBand struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// NewBudgetBand creates a validated budget band
func NewBudgetBand(min, max decimal.Decimal) (BudgetBand, error) {
	if min.IsNegative() {
		return BudgetBand{}, shared.NewDomainError("INVALID_BUDGET_BAND", "Budget band minimum cannot be negative")
	}
	if max.LessThanOrEqual(decimal.Zero) {
		return BudgetBand{}, shared.NewDomainError("INVALID_BUDGET_BAND", "Budget band maximum must be positive")
	}
	if max.LessThan(min) {
		return BudgetBand{}, shared.NewDomainError("INVALID_BUDGET_BAND", "Budget band maximum cannot be below minimum")
	}
	return BudgetBand{Min: min, Max: max}, nil
}

// IsSet returns true if the band has been configured
func (b BudgetBand) IsSet() bool {
	return b.Max.GreaterThan(decimal.Zero)
}

// Contains returns true if the amount falls inside the band
func (b BudgetBand) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(b.Min) && amount.LessThanOrEqual(b.Max)
}

// BusinessProfile represents a sponsoring business's profile aggregate root
type BusinessProfile struct {
	shared.TenantAggregateRoot
	UserID          uuid.UUID
	CompanyName     string
	Industry        string
	Website         string
	Bio             string
	TargetSports    []string
	TargetRegions   []string
	CampaignGoals   []string
	Budget          BudgetBand
	Status          ProfileStatus
	SubmittedAt     *time.Time
	ActivatedAt     *time.Time
	RejectedAt      *time.Time
	SuspendedAt     *time.Time
	RejectionReason string
	SuspendReason   string
	MediaAssets     []MediaAsset
}

// NewBusinessProfile creates a new business profile in PENDING status
func NewBusinessProfile(tenantID, userID uuid.UUID, companyName string) (*BusinessProfile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if strings.TrimSpace(companyName) == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(companyName) > 150 {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 150 characters")
	}

	p := &BusinessProfile{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		CompanyName:         strings.TrimSpace(companyName),
		Status:              ProfileStatusPending,
		MediaAssets:         make([]MediaAsset, 0),
	}

	p.AddDomainEvent(NewBusinessProfileCreatedEvent(p))

	return p, nil
}

// UpdateCompany updates company identity info
func (p *BusinessProfile) UpdateCompany(companyName, industry, website string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if strings.TrimSpace(companyName) == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}

	p.CompanyName = strings.TrimSpace(companyName)
	p.Industry = strings.ToLower(strings.TrimSpace(industry))
	p.Website = strings.TrimSpace(website)
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateBio updates the company story text
func (p *BusinessProfile) UpdateBio(bio string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if len(bio) > 2000 {
		return shared.NewDomainError("INVALID_BIO", "Bio cannot exceed 2000 characters")
	}
	p.Bio = bio
	p.UpdatedAt = time.Now()
	return nil
}

// SetTargeting replaces the audience targeting lists
func (p *BusinessProfile) SetTargeting(sports, regions []string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}

	p.TargetSports = cleanList(sports)
	p.TargetRegions = cleanList(regions)
	p.UpdatedAt = time.Now()
	return nil
}

// SetCampaignGoals replaces the campaign goal list
func (p *BusinessProfile) SetCampaignGoals(goals []string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if len(goals) > 10 {
		return shared.NewDomainError("INVALID_GOALS", "Cannot set more than 10 campaign goals")
	}
	p.CampaignGoals = cleanList(goals)
	p.UpdatedAt = time.Now()
	return nil
}

// SetBudgetBand sets the planned spending range
func (p *BusinessProfile) SetBudgetBand(band BudgetBand) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	p.Budget = band
	p.UpdatedAt = time.Now()
	return nil
}

// cleanList lowercases, trims and dedupes a string list preserving order
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Completion computes how much of the profile is filled in
func (p *BusinessProfile) Completion() Completion {
	done := map[string]bool{
		SectionCompany:   p.CompanyName != "" && p.Industry != "",
		SectionStory:     p.Bio != "" || p.Website != "",
		SectionTargeting: len(p.TargetSports) > 0,
		SectionGoals:     len(p.CampaignGoals) > 0,
		SectionBudget:    p.Budget.IsSet(),
	}
	return computeCompletion(businessSections, done)
}

// SubmitForReview submits the profile for activation
// Mirrors the athlete flow: compliance-reviewed tenants wait in IN_REVIEW
func (p *BusinessProfile) SubmitForReview(requiresCompliance bool) error {
	if p.Status != ProfileStatusPending && p.Status != ProfileStatusRejected {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit profile in %s status", p.Status))
	}
	if completion := p.Completion(); completion.Percent < 100 {
		return shared.NewDomainError("PROFILE_INCOMPLETE", fmt.Sprintf("Profile is %d%% complete; missing sections: %s", completion.Percent, strings.Join(completion.Missing, ", ")))
	}

	now := time.Now()
	p.SubmittedAt = &now
	p.UpdatedAt = now

	if requiresCompliance {
		p.Status = ProfileStatusInReview
		p.AddDomainEvent(NewBusinessProfileSubmittedEvent(p))
		return nil
	}

	p.Status = ProfileStatusActive
	p.ActivatedAt = &now
	p.AddDomainEvent(NewBusinessProfileActivatedEvent(p))
	return nil
}

// Approve activates a profile that passed compliance review
func (p *BusinessProfile) Approve() error {
	if p.Status != ProfileStatusInReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve profile in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProfileStatusActive
	p.ActivatedAt = &now
	p.RejectionReason = ""
	p.UpdatedAt = now

	p.AddDomainEvent(NewBusinessProfileActivatedEvent(p))
	return nil
}

// Reject sends a profile back to the business with a reason
func (p *BusinessProfile) Reject(reason string) error {
	if p.Status != ProfileStatusInReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject profile in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	p.Status = ProfileStatusRejected
	p.RejectedAt = &now
	p.RejectionReason = reason
	p.UpdatedAt = now

	p.AddDomainEvent(NewBusinessProfileRejectedEvent(p))
	return nil
}

// Suspend takes an active profile off the marketplace
func (p *BusinessProfile) Suspend(reason string) error {
	if !p.Status.CanTransitionTo(ProfileStatusSuspended) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot suspend profile in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Suspend reason is required")
	}

	now := time.Now()
	p.Status = ProfileStatusSuspended
	p.SuspendedAt = &now
	p.SuspendReason = reason
	p.UpdatedAt = now

	p.AddDomainEvent(NewBusinessProfileSuspendedEvent(p))
	return nil
}

// Reinstate restores a suspended profile to active
func (p *BusinessProfile) Reinstate() error {
	if p.Status != ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reinstate profile in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProfileStatusActive
	p.SuspendedAt = nil
	p.SuspendReason = ""
	p.UpdatedAt = now

	p.AddDomainEvent(NewBusinessProfileActivatedEvent(p))
	return nil
}

// AddMediaAsset registers an upload intent for a new media asset
// maxAssets is the plan's media kit limit; zero or negative means unlimited
func (p *BusinessProfile) AddMediaAsset(kind MediaKind, title, objectKey, contentType string, maxAssets int) (*MediaAsset, error) {
	if p.Status == ProfileStatusSuspended {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	count := 0
	for _, a := range p.MediaAssets {
		if a.Status != MediaAssetStatusRemoved {
			count++
		}
	}
	if maxAssets > 0 && count >= maxAssets {
		return nil, shared.NewDomainError("QUOTA_EXCEEDED", fmt.Sprintf("Media kit limit of %d assets reached", maxAssets))
	}

	asset, err := NewMediaAsset(p.ID, kind, title, objectKey, contentType)
	if err != nil {
		return nil, err
	}

	p.MediaAssets = append(p.MediaAssets, *asset)
	p.UpdatedAt = time.Now()
	return asset, nil
}

// ConfirmMediaAsset marks an asset as uploaded
func (p *BusinessProfile) ConfirmMediaAsset(assetID uuid.UUID, sizeBytes int64) error {
	for idx := range p.MediaAssets {
		if p.MediaAssets[idx].ID == assetID {
			if err := p.MediaAssets[idx].Confirm(sizeBytes); err != nil {
				return err
			}
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ASSET_NOT_FOUND", "Media asset not found")
}

// RemoveMediaAsset removes an asset from the media kit
func (p *BusinessProfile) RemoveMediaAsset(assetID uuid.UUID) error {
	for idx := range p.MediaAssets {
		if p.MediaAssets[idx].ID == assetID {
			if err := p.MediaAssets[idx].Remove(); err != nil {
				return err
			}
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ASSET_NOT_FOUND", "Media asset not found")
}

// GetBudgetBandMoney returns the band bounds as Money values
func (p *BusinessProfile) GetBudgetBandMoney() (valueobject.Money, valueobject.Money) {
	return valueobject.NewMoneyUSD(p.Budget.Min), valueobject.NewMoneyUSD(p.Budget.Max)
}

// IsActive returns true if the profile is visible on the marketplace
func (p *BusinessProfile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// IsInReview returns true if the profile awaits compliance review
func (p *BusinessProfile) IsInReview() bool {
	return p.Status == ProfileStatusInReview
}

// IsSuspended returns true if the profile is suspended
func (p *BusinessProfile) IsSuspended() bool {
	return p.Status == ProfileStatusSuspended
}
