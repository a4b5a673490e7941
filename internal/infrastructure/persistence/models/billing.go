package models

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/billing"
)

// SubscriptionModel is the persistence model for the Subscription aggregate root.
// It mirrors the Stripe subscription state; Stripe remains the source of truth
// and webhook syncs keep this row current.
type SubscriptionModel struct {
	TenantAggregateModel
	PlanCode             string                     `gorm:"type:varchar(50);not null"`
	StripeCustomerID     string                     `gorm:"type:varchar(255);not null;index"`
	StripeSubscriptionID string                     `gorm:"type:varchar(255);index"`
	Status               billing.SubscriptionStatus `gorm:"type:varchar(30);not null;default:'incomplete';index"`
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time `gorm:"index"`
	CancelAtPeriodEnd    bool       `gorm:"not null;default:false"`
	CanceledAt           *time.Time
	LatestInvoiceID      string `gorm:"type:varchar(255)"`
	LastSyncedAt         *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription entity.
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	s := &billing.Subscription{
		PlanCode:             m.PlanCode,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		Status:               m.Status,
		CurrentPeriodStart:   m.CurrentPeriodStart,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		CanceledAt:           m.CanceledAt,
		LatestInvoiceID:      m.LatestInvoiceID,
		LastSyncedAt:         m.LastSyncedAt,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Subscription entity.
func (m *SubscriptionModel) FromDomain(s *billing.Subscription) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.PlanCode = s.PlanCode
	m.StripeCustomerID = s.StripeCustomerID
	m.StripeSubscriptionID = s.StripeSubscriptionID
	m.Status = s.Status
	m.CurrentPeriodStart = s.CurrentPeriodStart
	m.CurrentPeriodEnd = s.CurrentPeriodEnd
	m.CancelAtPeriodEnd = s.CancelAtPeriodEnd
	m.CanceledAt = s.CanceledAt
	m.LatestInvoiceID = s.LatestInvoiceID
	m.LastSyncedAt = s.LastSyncedAt
}

// SubscriptionModelFromDomain creates a new persistence model from a domain Subscription entity.
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{}
	m.FromDomain(s)
	return m
}
