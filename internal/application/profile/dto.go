package profile

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCaser = cases.Title(language.English)

// displayLabel renders a stored lowercase value for display
func displayLabel(s string) string {
	if s == "" {
		return ""
	}
	return labelCaser.String(s)
}

// CreateAthleteProfileRequest is the request to create an athlete profile
type CreateAthleteProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Sport       string `json:"sport" binding:"omitempty,max=50"`
	School      string `json:"school" binding:"omitempty,max=150"`
	Division    string `json:"division" binding:"omitempty,max=50"`
}

// UpdateAthleteBasicsRequest updates identity and academic info
type UpdateAthleteBasicsRequest struct {
	DisplayName    string `json:"display_name" binding:"required,min=1,max=100"`
	Sport          string `json:"sport" binding:"omitempty,max=50"`
	School         string `json:"school" binding:"omitempty,max=150"`
	Division       string `json:"division" binding:"omitempty,max=50"`
	GraduationYear int    `json:"graduation_year" binding:"omitempty,min=1950,max=2100"`
}

// UpdateBioRequest updates the free-form bio
type UpdateBioRequest struct {
	Bio string `json:"bio" binding:"max=2000"`
}

// SetContentTagsRequest replaces the content tags
type SetContentTagsRequest struct {
	Tags []string `json:"tags" binding:"max=20,dive,min=1,max=50"`
}

// SocialAccountInput is one linked social account
type SocialAccountInput struct {
	Platform  string `json:"platform" binding:"required,min=1,max=30"`
	Handle    string `json:"handle" binding:"required,min=1,max=100"`
	Followers int    `json:"followers" binding:"min=0"`
}

// SetSocialAccountsRequest replaces the linked social accounts
type SetSocialAccountsRequest struct {
	Accounts []SocialAccountInput `json:"accounts" binding:"max=10,dive"`
}

// SetCompensationFloorRequest sets the athlete's minimum deal amount
type SetCompensationFloorRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// CreateBusinessProfileRequest is the request to create a business profile
type CreateBusinessProfileRequest struct {
	CompanyName string `json:"company_name" binding:"required,min=1,max=150"`
	Industry    string `json:"industry" binding:"omitempty,max=100"`
	Website     string `json:"website" binding:"omitempty,url,max=300"`
}

// UpdateBusinessCompanyRequest updates company identity info
type UpdateBusinessCompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required,min=1,max=150"`
	Industry    string `json:"industry" binding:"omitempty,max=100"`
	Website     string `json:"website" binding:"omitempty,url,max=300"`
}

// SetTargetingRequest replaces targeting preferences
type SetTargetingRequest struct {
	Sports  []string `json:"sports" binding:"max=20,dive,min=1,max=50"`
	Regions []string `json:"regions" binding:"max=20,dive,min=1,max=100"`
}

// SetCampaignGoalsRequest replaces the business's campaign goals
type SetCampaignGoalsRequest struct {
	Goals []string `json:"goals" binding:"max=10,dive,min=1,max=100"`
}

// SetBudgetBandRequest sets the sponsorship budget range
type SetBudgetBandRequest struct {
	Min string `json:"min" binding:"required"`
	Max string `json:"max" binding:"required"`
}

// RejectProfileRequest carries the compliance rejection reason
type RejectProfileRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SuspendProfileRequest carries the suspension reason
type SuspendProfileRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListProfilesRequest filters a profile listing
type ListProfilesRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING IN_REVIEW ACTIVE REJECTED SUSPENDED"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at display_name company_name"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateMediaAssetRequest registers an upload intent for a media kit asset
type CreateMediaAssetRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=IMAGE VIDEO"`
	Title       string `json:"title" binding:"omitempty,max=150"`
	ContentType string `json:"content_type" binding:"required"`
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
}

// ConfirmMediaAssetRequest marks an asset as uploaded
type ConfirmMediaAssetRequest struct {
	SizeBytes int64 `json:"size_bytes" binding:"required,min=1"`
}

// SocialAccountResponse is one linked social account in responses
type SocialAccountResponse struct {
	Platform  string `json:"platform"`
	Handle    string `json:"handle"`
	Followers int    `json:"followers"`
}

// CompletionResponse reports profile completion progress
type CompletionResponse struct {
	Percent  int      `json:"percent"`
	Sections []string `json:"sections"`
	Missing  []string `json:"missing"`
}

// MediaAssetResponse is the API representation of a media kit asset
type MediaAssetResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"download_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// UploadIntentResponse is returned when a media asset is registered
// The client PUTs the file to UploadURL and then confirms the asset
type UploadIntentResponse struct {
	Asset     MediaAssetResponse `json:"asset"`
	UploadURL string             `json:"upload_url"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// AthleteProfileResponse is the API representation of an athlete profile
type AthleteProfileResponse struct {
	ID                uuid.UUID               `json:"id"`
	TenantID          uuid.UUID               `json:"tenant_id"`
	UserID            uuid.UUID               `json:"user_id"`
	DisplayName       string                  `json:"display_name"`
	Sport             string                  `json:"sport"`
	SportLabel        string                  `json:"sport_label,omitempty"`
	School            string                  `json:"school"`
	Division          string                  `json:"division"`
	GraduationYear    int                     `json:"graduation_year,omitempty"`
	Bio               string                  `json:"bio,omitempty"`
	ContentTags       []string                `json:"content_tags"`
	SocialAccounts    []SocialAccountResponse `json:"social_accounts"`
	TotalFollowers    int                     `json:"total_followers"`
	CompensationFloor string                  `json:"compensation_floor"`
	Status            string                  `json:"status"`
	RejectionReason   string                  `json:"rejection_reason,omitempty"`
	Completion        CompletionResponse      `json:"completion"`
	MediaAssets       []MediaAssetResponse    `json:"media_assets"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// AthleteProfileListItemResponse is a slim athlete row for listings
type AthleteProfileListItemResponse struct {
	ID             uuid.UUID `json:"id"`
	DisplayName    string    `json:"display_name"`
	Sport          string    `json:"sport"`
	School         string    `json:"school"`
	Division       string    `json:"division"`
	TotalFollowers int       `json:"total_followers"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// BusinessProfileResponse is the API representation of a business profile
type BusinessProfileResponse struct {
	ID              uuid.UUID            `json:"id"`
	TenantID        uuid.UUID            `json:"tenant_id"`
	UserID          uuid.UUID            `json:"user_id"`
	CompanyName     string               `json:"company_name"`
	Industry        string               `json:"industry,omitempty"`
	IndustryLabel   string               `json:"industry_label,omitempty"`
	Website         string               `json:"website,omitempty"`
	Bio             string               `json:"bio,omitempty"`
	TargetSports    []string             `json:"target_sports"`
	TargetRegions   []string             `json:"target_regions"`
	CampaignGoals   []string             `json:"campaign_goals"`
	BudgetMin       string               `json:"budget_min,omitempty"`
	BudgetMax       string               `json:"budget_max,omitempty"`
	Status          string               `json:"status"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	Completion      CompletionResponse   `json:"completion"`
	MediaAssets     []MediaAssetResponse `json:"media_assets"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// BusinessProfileListItemResponse is a slim business row for listings
type BusinessProfileListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCompletionResponse(c profile.Completion) CompletionResponse {
	return CompletionResponse{
		Percent:  c.Percent,
		Sections: c.Sections,
		Missing:  c.Missing,
	}
}

func toMediaAssetResponse(a profile.MediaAsset) MediaAssetResponse {
	return MediaAssetResponse{
		ID:          a.ID,
		Kind:        a.Kind.String(),
		Title:       a.Title,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		ConfirmedAt: a.ConfirmedAt,
	}
}

func toMediaAssetResponses(assets []profile.MediaAsset) []MediaAssetResponse {
	out := make([]MediaAssetResponse, 0, len(assets))
	for _, a := range assets {
		if a.Status == profile.MediaAssetStatusRemoved {
			continue
		}
		out = append(out, toMediaAssetResponse(a))
	}
	return out
}

func toAthleteProfileResponse(p *profile.AthleteProfile) *AthleteProfileResponse {
	accounts := make([]SocialAccountResponse, 0, len(p.SocialAccounts))
	for _, acc := range p.SocialAccounts {
		accounts = append(accounts, SocialAccountResponse(acc))
	}
	return &AthleteProfileResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		UserID:            p.UserID,
		DisplayName:       p.DisplayName,
		Sport:             p.Sport,
		SportLabel:        displayLabel(p.Sport),
		School:            p.School,
		Division:          p.Division,
		GraduationYear:    p.GraduationYear,
		Bio:               p.Bio,
		ContentTags:       p.ContentTags,
		SocialAccounts:    accounts,
		TotalFollowers:    p.TotalFollowers(),
		CompensationFloor: p.CompensationFloor.String(),
		Status:            p.Status.String(),
		RejectionReason:   p.RejectionReason,
		Completion:        toCompletionResponse(p.Completion()),
		MediaAssets:       toMediaAssetResponses(p.MediaAssets),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toAthleteProfileListItem(p *profile.AthleteProfile) AthleteProfileListItemResponse {
	return AthleteProfileListItemResponse{
		ID:             p.ID,
		DisplayName:    p.DisplayName,
		Sport:          p.Sport,
		School:         p.School,
		Division:       p.Division,
		TotalFollowers: p.TotalFollowers(),
		Status:         p.Status.String(),
		CreatedAt:      p.CreatedAt,
	}
}

func toBusinessProfileResponse(p *profile.BusinessProfile) *BusinessProfileResponse {
	resp := &BusinessProfileResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		UserID:          p.UserID,
		CompanyName:     p.CompanyName,
		Industry:        p.Industry,
		IndustryLabel:   displayLabel(p.Industry),
		Website:         p.Website,
		Bio:             p.Bio,
		TargetSports:    p.TargetSports,
		TargetRegions:   p.TargetRegions,
		CampaignGoals:   p.CampaignGoals,
		Status:          p.Status.String(),
		RejectionReason: p.RejectionReason,
		Completion:      toCompletionResponse(p.Completion()),
		MediaAssets:     toMediaAssetResponses(p.MediaAssets),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Budget.IsSet() {
		resp.BudgetMin = p.Budget.Min.String()
		resp.BudgetMax = p.Budget.Max.String()
	}
	return resp
}

func toBusinessProfileListItem(p *profile.BusinessProfile) BusinessProfileListItemResponse {
	return BusinessProfileListItemResponse{
		ID:          p.ID,
		CompanyName: p.CompanyName,
		Industry:    p.Industry,
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
	}
}
