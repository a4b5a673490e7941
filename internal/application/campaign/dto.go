package campaign

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/google/uuid"
)

// CreateCampaignRequest starts a new draft campaign
type CreateCampaignRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// SaveBasicsRequest records the wizard basics step
type SaveBasicsRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=120"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// SaveAudienceRequest records the wizard audience step
type SaveAudienceRequest struct {
	Sports       []string `json:"sports" binding:"required,min=1,max=20,dive,min=1,max=50"`
	Divisions    []string `json:"divisions" binding:"max=10,dive,min=1,max=50"`
	Regions      []string `json:"regions" binding:"max=20,dive,min=1,max=100"`
	ContentTypes []string `json:"content_types" binding:"max=20,dive,min=1,max=50"`
	MinFollowers int      `json:"min_followers" binding:"min=0"`
}

// SaveBudgetRequest records the wizard budget step
type SaveBudgetRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// CancelCampaignRequest cancels a campaign with a reason
type CancelCampaignRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListCampaignsRequest filters a campaign listing
type ListCampaignsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED PAUSED COMPLETED CANCELLED"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at name published_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TargetCriteriaResponse is the API representation of target criteria
type TargetCriteriaResponse struct {
	Sports       []string `json:"sports"`
	Divisions    []string `json:"divisions"`
	Regions      []string `json:"regions"`
	ContentTypes []string `json:"content_types"`
	MinFollowers int      `json:"min_followers"`
}

// CampaignResponse is the API representation of a campaign
type CampaignResponse struct {
	ID                uuid.UUID              `json:"id"`
	TenantID          uuid.UUID              `json:"tenant_id"`
	BusinessProfileID uuid.UUID              `json:"business_profile_id"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	Step              string                 `json:"step"`
	Criteria          TargetCriteriaResponse `json:"criteria"`
	BudgetAmount      string                 `json:"budget_amount"`
	BudgetCurrency    string                 `json:"budget_currency"`
	StartsAt          *time.Time             `json:"starts_at,omitempty"`
	EndsAt            *time.Time             `json:"ends_at,omitempty"`
	Status            string                 `json:"status"`
	PublishedAt       *time.Time             `json:"published_at,omitempty"`
	CancelReason      string                 `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// CampaignListItemResponse is a slim campaign row for listings
type CampaignListItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Step         string     `json:"step"`
	Status       string     `json:"status"`
	BudgetAmount string     `json:"budget_amount"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toCampaignResponse(c *campaign.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:                c.ID,
		TenantID:          c.TenantID,
		BusinessProfileID: c.BusinessProfileID,
		Name:              c.Name,
		Description:       c.Description,
		Step:              c.Step.String(),
		Criteria: TargetCriteriaResponse{
			Sports:       c.Criteria.Sports,
			Divisions:    c.Criteria.Divisions,
			Regions:      c.Criteria.Regions,
			ContentTypes: c.Criteria.ContentTypes,
			MinFollowers: c.Criteria.MinFollowers,
		},
		BudgetAmount:   c.BudgetAmount.String(),
		BudgetCurrency: c.BudgetCurrency,
		StartsAt:       c.StartsAt,
		EndsAt:         c.EndsAt,
		Status:         c.Status.String(),
		PublishedAt:    c.PublishedAt,
		CancelReason:   c.CancelReason,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toCampaignListItem(c *campaign.Campaign) CampaignListItemResponse {
	return CampaignListItemResponse{
		ID:           c.ID,
		Name:         c.Name,
		Step:         c.Step.String(),
		Status:       c.Status.String(),
		BudgetAmount: c.BudgetAmount.String(),
		PublishedAt:  c.PublishedAt,
		CreatedAt:    c.CreatedAt,
	}
}
