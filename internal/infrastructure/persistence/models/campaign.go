package models

import (
	"encoding/json"
	"time"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/shopspring/decimal"
	"github.com/google/uuid"
)

// CampaignModel is the persistence model for the Campaign aggregate root.
type CampaignModel struct {
	TenantAggregateModel
	Name              string                  `gorm:"type:varchar(120);not null"`
	Description       string                  `gorm:"type:text"`
	BusinessProfileID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Step              campaign.WizardStep     `gorm:"type:varchar(20);not null;default:'BASICS'"`
	CriteriaJSON      string                  `gorm:"column:criteria;type:jsonb;default:'{}'"`
	BudgetAmount      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	BudgetCurrency    string                  `gorm:"type:varchar(10);not null;default:'USD'"`
	StartsAt          *time.Time              `gorm:"index"`
	EndsAt            *time.Time              `gorm:"index"`
	Status            campaign.CampaignStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PublishedAt       *time.Time              `gorm:"index"`
	PausedAt          *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CampaignModel) TableName() string {
	return "campaigns"
}

// ToDomain converts the persistence model to a domain Campaign entity.
func (m *CampaignModel) ToDomain() *campaign.Campaign {
	c := &campaign.Campaign{
		Name:              m.Name,
		Description:       m.Description,
		BusinessProfileID: m.BusinessProfileID,
		Step:              m.Step,
		BudgetAmount:      m.BudgetAmount,
		BudgetCurrency:    m.BudgetCurrency,
		StartsAt:          m.StartsAt,
		EndsAt:            m.EndsAt,
		Status:            m.Status,
		PublishedAt:       m.PublishedAt,
		PausedAt:          m.PausedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	if m.CriteriaJSON != "" {
		// A corrupt row degrades to empty criteria rather than failing the read
		_ = json.Unmarshal([]byte(m.CriteriaJSON), &c.Criteria)
	}
	return c
}

// FromDomain populates the persistence model from a domain Campaign entity.
func (m *CampaignModel) FromDomain(c *campaign.Campaign) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
	m.BusinessProfileID = c.BusinessProfileID
	m.Step = c.Step
	m.BudgetAmount = c.BudgetAmount
	m.BudgetCurrency = c.BudgetCurrency
	m.StartsAt = c.StartsAt
	m.EndsAt = c.EndsAt
	m.Status = c.Status
	m.PublishedAt = c.PublishedAt
	m.PausedAt = c.PausedAt
	m.CompletedAt = c.CompletedAt
	m.CancelledAt = c.CancelledAt
	m.CancelReason = c.CancelReason
	if jsonBytes, err := json.Marshal(c.Criteria); err == nil {
		m.CriteriaJSON = string(jsonBytes)
	} else {
		m.CriteriaJSON = "{}"
	}
}

// CampaignModelFromDomain creates a new persistence model from a domain Campaign entity.
func CampaignModelFromDomain(c *campaign.Campaign) *CampaignModel {
	m := &CampaignModel{}
	m.FromDomain(c)
	return m
}
