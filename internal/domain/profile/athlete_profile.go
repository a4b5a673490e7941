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

// Athlete profile completion sections, in display order
const (
	SectionIdentity     = "identity"
	SectionAcademics    = "academics"
	SectionAudience     = "audience"
	SectionContent      = "content"
	SectionCompensation = "compensation"
)

var athleteSections = []string{
	SectionIdentity,
	SectionAcademics,
	SectionAudience,
	SectionContent,
	SectionCompensation,
}

// SocialAccount is a linked social media account with its follower count
type SocialAccount struct {
	Platform  string `json:"platform"`
	Handle    string `json:"handle"`
	Followers int    `json:"followers"`
}

// NewSocialAccount creates a validated social account entry
func NewSocialAccount(platform, handle string, followers int) (SocialAccount, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	handle = strings.TrimSpace(handle)
	if platform == "" {
		return SocialAccount{}, shared.NewDomainError("INVALID_PLATFORM", "Platform cannot be empty")
	}
	if handle == "" {
		return SocialAccount{}, shared.NewDomainError("INVALID_HANDLE", "Handle cannot be empty")
	}
	if followers < 0 {
		return SocialAccount{}, shared.NewDomainError("INVALID_FOLLOWERS", "Follower count cannot be negative")
	}
	return SocialAccount{
		Platform:  platform,
		Handle:    handle,
		Followers: followers,
	}, nil
}

// AthleteProfile represents an athlete's marketplace profile aggregate root
// It holds the athlete's sport and school info, linked social audience,
// content tags and compensation floor, plus the media kit
type AthleteProfile struct {
	shared.TenantAggregateRoot
	UserID            uuid.UUID
	DisplayName       string
	Sport             string
	School            string
	Division          string
	GraduationYear    int
	Bio               string
	ContentTags       []string
	SocialAccounts    []SocialAccount
	CompensationFloor decimal.Decimal
	Status            ProfileStatus
	SubmittedAt       *time.Time
	ActivatedAt       *time.Time
	RejectedAt        *time.Time
	SuspendedAt       *time.Time
	RejectionReason   string
	SuspendReason     string
	MediaAssets       []MediaAsset
}

// NewAthleteProfile creates a new athlete profile in PENDING status
func NewAthleteProfile(tenantID, userID uuid.UUID, displayName string) (*AthleteProfile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 100 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}

	p := &AthleteProfile{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		DisplayName:         strings.TrimSpace(displayName),
		CompensationFloor:   decimal.Zero,
		Status:              ProfileStatusPending,
		MediaAssets:         make([]MediaAsset, 0),
	}

	p.AddDomainEvent(NewAthleteProfileCreatedEvent(p))

	return p, nil
}

// UpdateBasics updates identity and academic info
// Not allowed while the profile is suspended
func (p *AthleteProfile) UpdateBasics(displayName, sport, school, division string, graduationYear int) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if strings.TrimSpace(displayName) == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if graduationYear != 0 && (graduationYear < 1950 || graduationYear > 2100) {
		return shared.NewDomainError("INVALID_GRADUATION_YEAR", "Graduation year is out of range")
	}

	p.DisplayName = strings.TrimSpace(displayName)
	p.Sport = strings.ToLower(strings.TrimSpace(sport))
	p.School = strings.TrimSpace(school)
	p.Division = strings.ToLower(strings.TrimSpace(division))
	p.GraduationYear = graduationYear
	p.UpdatedAt = time.Now()

	return nil
}

// UpdateBio updates the free-form bio text
func (p *AthleteProfile) UpdateBio(bio string) error {
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

// SetContentTags replaces the content tags
func (p *AthleteProfile) SetContentTags(tags []string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if len(tags) > 20 {
		return shared.NewDomainError("INVALID_TAGS", "Cannot set more than 20 content tags")
	}

	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}

	p.ContentTags = cleaned
	p.UpdatedAt = time.Now()
	return nil
}

// SetSocialAccounts replaces the linked social accounts
// At most one account per platform
func (p *AthleteProfile) SetSocialAccounts(accounts []SocialAccount) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}

	seen := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		if seen[acc.Platform] {
			return shared.NewDomainError("DUPLICATE_PLATFORM", fmt.Sprintf("Platform %s is linked more than once", acc.Platform))
		}
		seen[acc.Platform] = true
	}

	p.SocialAccounts = accounts
	p.UpdatedAt = time.Now()
	return nil
}

// SetCompensationFloor sets the minimum deal amount the athlete accepts
func (p *AthleteProfile) SetCompensationFloor(floor valueobject.Money) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if floor.IsNegative() {
		return shared.NewDomainError("INVALID_COMPENSATION", "Compensation floor cannot be negative")
	}
	p.CompensationFloor = floor.Amount()
	p.UpdatedAt = time.Now()
	return nil
}

// TotalFollowers sums follower counts across all linked accounts
func (p *AthleteProfile) TotalFollowers() int {
	total := 0
	for _, acc := range p.SocialAccounts {
		total += acc.Followers
	}
	return total
}

// Completion computes how much of the profile is filled in
func (p *AthleteProfile) Completion() Completion {
	done := map[string]bool{
		SectionIdentity:     p.DisplayName != "" && p.Sport != "",
		SectionAcademics:    p.School != "" && p.Division != "",
		SectionAudience:     p.TotalFollowers() > 0,
		SectionContent:      len(p.ContentTags) > 0,
		SectionCompensation: p.CompensationFloor.GreaterThan(decimal.Zero),
	}
	return computeCompletion(athleteSections, done)
}

// SubmitForReview submits the profile for activation
// If the tenant requires compliance review the profile waits in IN_REVIEW,
// otherwise it activates immediately
// The profile must be complete before submission
func (p *AthleteProfile) SubmitForReview(requiresCompliance bool) error {
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
		p.AddDomainEvent(NewAthleteProfileSubmittedEvent(p))
		return nil
	}

	p.Status = ProfileStatusActive
	p.ActivatedAt = &now
	p.AddDomainEvent(NewAthleteProfileActivatedEvent(p))
	return nil
}

// Approve activates a profile that passed compliance review
func (p *AthleteProfile) Approve() error {
	if p.Status != ProfileStatusInReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve profile in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProfileStatusActive
	p.ActivatedAt = &now
	p.RejectionReason = ""
	p.UpdatedAt = now

	p.AddDomainEvent(NewAthleteProfileActivatedEvent(p))
	return nil
}

// Reject sends a profile back to the athlete with a reason
func (p *AthleteProfile) Reject(reason string) error {
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

	p.AddDomainEvent(NewAthleteProfileRejectedEvent(p))
	return nil
}

// Suspend takes an active profile off the marketplace
func (p *AthleteProfile) Suspend(reason string) error {
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

	p.AddDomainEvent(NewAthleteProfileSuspendedEvent(p))
	return nil
}

// Reinstate restores a suspended profile to active
func (p *AthleteProfile) Reinstate() error {
	if p.Status != ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reinstate profile in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProfileStatusActive
	p.SuspendedAt = nil
	p.SuspendReason = ""
	p.UpdatedAt = now

	p.AddDomainEvent(NewAthleteProfileActivatedEvent(p))
	return nil
}

// AddMediaAsset registers an upload intent for a new media kit asset
// maxAssets is the plan's media kit limit; zero or negative means unlimited
func (p *AthleteProfile) AddMediaAsset(kind MediaKind, title, objectKey, contentType string, maxAssets int) (*MediaAsset, error) {
	if p.Status == ProfileStatusSuspended {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot edit a suspended profile")
	}
	if maxAssets > 0 && p.activeMediaCount() >= maxAssets {
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
func (p *AthleteProfile) ConfirmMediaAsset(assetID uuid.UUID, sizeBytes int64) error {
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
func (p *AthleteProfile) RemoveMediaAsset(assetID uuid.UUID) error {
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

// activeMediaCount counts assets that are not removed
func (p *AthleteProfile) activeMediaCount() int {
	count := 0
	for _, a := range p.MediaAssets {
		if a.Status != MediaAssetStatusRemoved {
			count++
		}
	}
	return count
}

// GetCompensationFloorMoney returns the compensation floor as Money
func (p *AthleteProfile) GetCompensationFloorMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.CompensationFloor)
}

// IsActive returns true if the profile is visible on the marketplace
func (p *AthleteProfile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// IsInReview returns true if the profile awaits compliance review
func (p *AthleteProfile) IsInReview() bool {
	return p.Status == ProfileStatusInReview
}

// IsSuspended returns true if the profile is suspended
func (p *AthleteProfile) IsSuspended() bool {
	return p.Status == ProfileStatusSuspended
}
