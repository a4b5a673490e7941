package models

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/shopspring/decimal"
	"github.com/google/uuid"
)

// BundleModel is the persistence model for the Bundle aggregate root.
type BundleModel struct {
	TenantAggregateModel
	CampaignID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name               string              `gorm:"type:varchar(120);not null"`
	TotalBudget        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency           string              `gorm:"type:varchar(10);not null;default:'USD'"`
	DefaultOfferAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	ExpiresAt          time.Time           `gorm:"not null;index"`
	IdempotencyKey     string              `gorm:"type:varchar(128);not null;uniqueIndex:idx_bundle_tenant_idem,priority:2"`
	Status             bundle.BundleStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Offers             []BundleOfferModel  `gorm:"foreignKey:BundleID;references:ID"`
	SubmittedAt        *time.Time
	ApprovedAt         *time.Time
	DispatchedAt       *time.Time `gorm:"index"`
	ClosedAt           *time.Time
	RejectedAt         *time.Time
	RejectReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BundleModel) TableName() string {
	return "bundles"
}

// ToDomain converts the persistence model to a domain Bundle entity.
func (m *BundleModel) ToDomain() *bundle.Bundle {
	b := &bundle.Bundle{
		CampaignID:         m.CampaignID,
		Name:               m.Name,
		TotalBudget:        m.TotalBudget,
		Currency:           m.Currency,
		DefaultOfferAmount: m.DefaultOfferAmount,
		ExpiresAt:          m.ExpiresAt,
		IdempotencyKey:     m.IdempotencyKey,
		Status:             m.Status,
		SubmittedAt:        m.SubmittedAt,
		ApprovedAt:         m.ApprovedAt,
		DispatchedAt:       m.DispatchedAt,
		ClosedAt:           m.ClosedAt,
		RejectedAt:         m.RejectedAt,
		RejectReason:       m.RejectReason,
		Offers:             make([]bundle.BundleOffer, len(m.Offers)),
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	for i, offer := range m.Offers {
		b.Offers[i] = *offer.ToDomain()
	}
	return b
}

// FromDomain populates the persistence model from a domain Bundle entity.
func (m *BundleModel) FromDomain(b *bundle.Bundle) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.CampaignID = b.CampaignID
	m.Name = b.Name
	m.TotalBudget = b.TotalBudget
	m.Currency = b.Currency
	m.DefaultOfferAmount = b.DefaultOfferAmount
	m.ExpiresAt = b.ExpiresAt
	m.IdempotencyKey = b.IdempotencyKey
	m.Status = b.Status
	m.SubmittedAt = b.SubmittedAt
	m.ApprovedAt = b.ApprovedAt
	m.DispatchedAt = b.DispatchedAt
	m.ClosedAt = b.ClosedAt
	m.RejectedAt = b.RejectedAt
	m.RejectReason = b.RejectReason
	m.Offers = make([]BundleOfferModel, len(b.Offers))
	for i, offer := range b.Offers {
		m.Offers[i] = *BundleOfferModelFromDomain(&offer)
	}
}

// BundleModelFromDomain creates a new persistence model from a domain Bundle entity.
func BundleModelFromDomain(b *bundle.Bundle) *BundleModel {
	m := &BundleModel{}
	m.FromDomain(b)
	return m
}

// BundleOfferModel is the persistence model for the BundleOffer entity.
type BundleOfferModel struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key"`
	BundleID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	AthleteProfileID uuid.UUID          `gorm:"type:uuid;not null;index"`
	AthleteUserID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Status           bundle.OfferStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SentAt           *time.Time
	RespondedAt      *time.Time
	DeclineReason    string    `gorm:"type:varchar(500)"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BundleOfferModel) TableName() string {
	return "bundle_offers"
}

// ToDomain converts the persistence model to a domain BundleOffer entity.
func (m *BundleOfferModel) ToDomain() *bundle.BundleOffer {
	return &bundle.BundleOffer{
		ID:               m.ID,
		BundleID:         m.BundleID,
		AthleteProfileID: m.AthleteProfileID,
		AthleteUserID:    m.AthleteUserID,
		Amount:           m.Amount,
		Status:           m.Status,
		SentAt:           m.SentAt,
		RespondedAt:      m.RespondedAt,
		DeclineReason:    m.DeclineReason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain BundleOffer entity.
func (m *BundleOfferModel) FromDomain(o *bundle.BundleOffer) {
	m.ID = o.ID
	m.BundleID = o.BundleID
	m.AthleteProfileID = o.AthleteProfileID
	m.AthleteUserID = o.AthleteUserID
	m.Amount = o.Amount
	m.Status = o.Status
	m.SentAt = o.SentAt
	m.RespondedAt = o.RespondedAt
	m.DeclineReason = o.DeclineReason
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
}

// BundleOfferModelFromDomain creates a new persistence model from a domain BundleOffer entity.
func BundleOfferModelFromDomain(o *bundle.BundleOffer) *BundleOfferModel {
	m := &BundleOfferModel{}
	m.FromDomain(o)
	return m
}
