package bundle

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/google/uuid"
)

// OfferInput selects one athlete for a bundle
// Amount overrides the bundle default when set
type OfferInput struct {
	AthleteProfileID uuid.UUID `json:"athlete_profile_id" binding:"required"`
	Amount           *string   `json:"amount"`
}

// CreateBundleRequest creates a draft bundle with its offers in one shot
type CreateBundleRequest struct {
	CampaignID         uuid.UUID    `json:"campaign_id" binding:"required"`
	Name               string       `json:"name" binding:"required,min=1,max=120"`
	IdempotencyKey     string       `json:"idempotency_key" binding:"omitempty,max=128"`
	TotalBudget        string       `json:"total_budget" binding:"required"`
	DefaultOfferAmount string       `json:"default_offer_amount" binding:"required"`
	ExpiresAt          time.Time    `json:"expires_at" binding:"required"`
	Offers             []OfferInput `json:"offers" binding:"required,min=1,max=100,dive"`
}

// RejectBundleRequest rejects a bundle held for compliance review
type RejectBundleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// DeclineOfferRequest records an athlete's decline
type DeclineOfferRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ListBundlesRequest filters a bundle listing
type ListBundlesRequest struct {
	Status     string    `form:"status" binding:"omitempty,oneof=DRAFT PENDING_REVIEW READY DISPATCHED CLOSED REJECTED"`
	CampaignID uuid.UUID `form:"campaign_id"`
	Page       int       `form:"page" binding:"omitempty,min=1"`
	PageSize   int       `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string    `form:"order_by" binding:"omitempty,oneof=created_at updated_at expires_at"`
	OrderDir   string    `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ListAthleteOffersRequest filters an athlete's offer inbox
type ListAthleteOffersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OfferResponse is the API representation of a single offer
type OfferResponse struct {
	ID               uuid.UUID  `json:"id"`
	BundleID         uuid.UUID  `json:"bundle_id"`
	AthleteProfileID uuid.UUID  `json:"athlete_profile_id"`
	Amount           string     `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	DeclineReason    string     `json:"decline_reason,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
}

// BundleResponse is the API representation of a bundle
type BundleResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	CampaignID         uuid.UUID       `json:"campaign_id"`
	Name               string          `json:"name"`
	Status             string          `json:"status"`
	TotalBudget        string          `json:"total_budget"`
	Currency           string          `json:"currency"`
	DefaultOfferAmount string          `json:"default_offer_amount"`
	CommittedAmount    string          `json:"committed_amount"`
	AcceptedAmount     string          `json:"accepted_amount"`
	ExpiresAt          time.Time       `json:"expires_at"`
	Offers             []OfferResponse `json:"offers"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
	DispatchedAt       *time.Time      `json:"dispatched_at,omitempty"`
	ClosedAt           *time.Time      `json:"closed_at,omitempty"`
	RejectReason       string          `json:"reject_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BundleListItemResponse is a slim bundle row for listings
type BundleListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	TotalBudget string    `json:"total_budget"`
	OfferCount  int       `json:"offer_count"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOfferResponse(b *bundle.Bundle, o *bundle.BundleOffer) OfferResponse {
	return OfferResponse{
		ID:               o.ID,
		BundleID:         o.BundleID,
		AthleteProfileID: o.AthleteProfileID,
		Amount:           o.Amount.String(),
		Currency:         b.Currency,
		Status:           o.Status.String(),
		SentAt:           o.SentAt,
		RespondedAt:      o.RespondedAt,
		DeclineReason:    o.DeclineReason,
		ExpiresAt:        b.ExpiresAt,
	}
}

func toBundleResponse(b *bundle.Bundle) *BundleResponse {
	offers := make([]OfferResponse, 0, len(b.Offers))
	for idx := range b.Offers {
		offers = append(offers, toOfferResponse(b, &b.Offers[idx]))
	}
	return &BundleResponse{
		ID:                 b.ID,
		TenantID:           b.TenantID,
		CampaignID:         b.CampaignID,
		Name:               b.Name,
		Status:             b.Status.String(),
		TotalBudget:        b.TotalBudget.String(),
		Currency:           b.Currency,
		DefaultOfferAmount: b.DefaultOfferAmount.String(),
		CommittedAmount:    b.CommittedAmount().String(),
		AcceptedAmount:     b.AcceptedAmount().String(),
		ExpiresAt:          b.ExpiresAt,
		Offers:             offers,
		SubmittedAt:        b.SubmittedAt,
		DispatchedAt:       b.DispatchedAt,
		ClosedAt:           b.ClosedAt,
		RejectReason:       b.RejectReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toBundleListItem(b *bundle.Bundle) BundleListItemResponse {
	return BundleListItemResponse{
		ID:          b.ID,
		CampaignID:  b.CampaignID,
		Name:        b.Name,
		Status:      b.Status.String(),
		TotalBudget: b.TotalBudget.String(),
		OfferCount:  b.OfferCount(),
		ExpiresAt:   b.ExpiresAt,
		CreatedAt:   b.CreatedAt,
	}
}
