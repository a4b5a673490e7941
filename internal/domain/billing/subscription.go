package billing

import (
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the Stripe subscription states the
// marketplace cares about; the local row is a read model kept in sync
// by the Stripe webhook
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete SubscriptionStatus = "INCOMPLETE"
	SubscriptionStatusTrialing   SubscriptionStatus = "TRIALING"
	SubscriptionStatusActive     SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue    SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusUnpaid     SubscriptionStatus = "UNPAID"
	SubscriptionStatusCanceled   SubscriptionStatus = "CANCELED"
)

// IsValid checks if the status is a valid SubscriptionStatus
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusIncomplete, SubscriptionStatusTrialing, SubscriptionStatusActive,
		SubscriptionStatusPastDue, SubscriptionStatusUnpaid, SubscriptionStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of SubscriptionStatus
func (s SubscriptionStatus) String() string {
	return string(s)
}

// SubscriptionStatusFromStripe maps a Stripe subscription status string
// to the local status; unknown states map to INCOMPLETE
func SubscriptionStatusFromStripe(stripeStatus string) SubscriptionStatus {
	switch stripeStatus {
	case "trialing":
		return SubscriptionStatusTrialing
	case "active":
		return SubscriptionStatusActive
	case "past_due":
		return SubscriptionStatusPastDue
	case "unpaid":
		return SubscriptionStatusUnpaid
	case "canceled":
		return SubscriptionStatusCanceled
	case "incomplete", "incomplete_expired":
		return SubscriptionStatusIncomplete
	}
	return SubscriptionStatusIncomplete
}

// Subscription represents a tenant's billing subscription aggregate root
// One subscription per tenant; the plan code drives feature gates and
// quotas in the identity context
type Subscription struct {
	shared.TenantAggregateRoot
	PlanCode             string
	StripeCustomerID     string
	StripeSubscriptionID string
	Status               SubscriptionStatus
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
	LatestInvoiceID      string
	LastSyncedAt         *time.Time
}

// NewSubscription creates a subscription in INCOMPLETE status
// It becomes active once Stripe confirms the first payment
func NewSubscription(tenantID uuid.UUID, planCode, stripeCustomerID string) (*Subscription, error) {
	if planCode == "" {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan code cannot be empty")
	}
	if stripeCustomerID == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Stripe customer ID cannot be empty")
	}

	s := &Subscription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PlanCode:            planCode,
		StripeCustomerID:    stripeCustomerID,
		Status:              SubscriptionStatusIncomplete,
	}

	s.AddDomainEvent(NewSubscriptionCreatedEvent(s))

	return s, nil
}

// AttachStripeSubscription links the Stripe subscription object created
// for this tenant
func (s *Subscription) AttachStripeSubscription(stripeSubscriptionID string) error {
	if stripeSubscriptionID == "" {
		return shared.NewDomainError("INVALID_SUBSCRIPTION", "Stripe subscription ID cannot be empty")
	}
	s.StripeSubscriptionID = stripeSubscriptionID
	s.UpdatedAt = time.Now()
	return nil
}

// ApplyStripeState syncs the local mirror from a Stripe subscription
// payload; the webhook handler calls this for created/updated events
func (s *Subscription) ApplyStripeState(stripeStatus string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) {
	previous := s.Status
	now := time.Now()

	s.Status = SubscriptionStatusFromStripe(stripeStatus)
	s.CurrentPeriodStart = &periodStart
	s.CurrentPeriodEnd = &periodEnd
	s.CancelAtPeriodEnd = cancelAtPeriodEnd
	s.LastSyncedAt = &now
	s.UpdatedAt = now

	if previous != SubscriptionStatusActive && s.Status == SubscriptionStatusActive {
		s.AddDomainEvent(NewSubscriptionActivatedEvent(s))
	}
	if previous != SubscriptionStatusPastDue && s.Status == SubscriptionStatusPastDue {
		s.AddDomainEvent(NewSubscriptionPaymentFailedEvent(s))
	}
}

// ChangePlan switches the subscription to a new plan
// Stripe proration is handled by the billing adapter; this records the
// local intent and keeps the tenant's plan code in sync
func (s *Subscription) ChangePlan(planCode string) error {
	if planCode == "" {
		return shared.NewDomainError("INVALID_PLAN", "Plan code cannot be empty")
	}
	if planCode == s.PlanCode {
		return shared.NewDomainError("SAME_PLAN", "Subscription is already on this plan")
	}
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Cannot change plan on a canceled subscription")
	}

	oldPlan := s.PlanCode
	s.PlanCode = planCode
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSubscriptionPlanChangedEvent(s, oldPlan))
	return nil
}

// ScheduleCancel cancels at the end of the current billing period
func (s *Subscription) ScheduleCancel() error {
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already canceled")
	}
	if s.CancelAtPeriodEnd {
		return shared.NewDomainError("INVALID_STATE", "Cancellation is already scheduled")
	}

	s.CancelAtPeriodEnd = true
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSubscriptionCancelScheduledEvent(s))
	return nil
}

// CancelNow cancels immediately
func (s *Subscription) CancelNow() error {
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already canceled")
	}

	now := time.Now()
	s.Status = SubscriptionStatusCanceled
	s.CanceledAt = &now
	s.CancelAtPeriodEnd = false
	s.UpdatedAt = now

	s.AddDomainEvent(NewSubscriptionCanceledEvent(s))
	return nil
}

// Reactivate clears a scheduled cancellation before it takes effect
func (s *Subscription) Reactivate() error {
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "A canceled subscription cannot be reactivated; create a new one")
	}
	if !s.CancelAtPeriodEnd {
		return shared.NewDomainError("INVALID_STATE", "No cancellation is scheduled")
	}

	s.CancelAtPeriodEnd = false
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSubscriptionReactivatedEvent(s))
	return nil
}

// RecordInvoicePaid tracks the latest paid invoice and restores an
// unpaid subscription to active
func (s *Subscription) RecordInvoicePaid(invoiceID string) {
	s.LatestInvoiceID = invoiceID
	if s.Status == SubscriptionStatusPastDue || s.Status == SubscriptionStatusUnpaid || s.Status == SubscriptionStatusIncomplete {
		s.Status = SubscriptionStatusActive
		s.AddDomainEvent(NewSubscriptionActivatedEvent(s))
	}
	s.UpdatedAt = time.Now()
}

// RecordPaymentFailure marks a failed invoice payment
func (s *Subscription) RecordPaymentFailure(invoiceID string) {
	s.LatestInvoiceID = invoiceID
	if s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing {
		s.Status = SubscriptionStatusPastDue
		s.AddDomainEvent(NewSubscriptionPaymentFailedEvent(s))
	}
	s.UpdatedAt = time.Now()
}

// IsActive returns true for statuses that unlock paid features
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}

// IsCanceled returns true if the subscription is canceled
func (s *Subscription) IsCanceled() bool {
	return s.Status == SubscriptionStatusCanceled
}

// InGracePeriod returns true while payment is being retried
func (s *Subscription) InGracePeriod() bool {
	return s.Status == SubscriptionStatusPastDue
}

// PeriodContains reports whether t falls inside the current billing period
func (s *Subscription) PeriodContains(t time.Time) bool {
	if s.CurrentPeriodStart == nil || s.CurrentPeriodEnd == nil {
		return false
	}
	return !t.Before(*s.CurrentPeriodStart) && t.Before(*s.CurrentPeriodEnd)
}

// Describe returns a short human-readable summary for logs
func (s *Subscription) Describe() string {
	return fmt.Sprintf("%s (%s)", s.PlanCode, s.Status)
}
