package billing

import (
	"context"
	"fmt"
	"time"

	domainBilling "github.com/nilmarket/backend/internal/domain/billing"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StripeGateway is the subset of the Stripe adapter the subscription
// service drives. Declared here so tests can substitute a mock.
type StripeGateway interface {
	CreateCustomer(ctx context.Context, input billing.CreateCustomerInput) (*billing.CreateCustomerOutput, error)
	CreateSubscription(ctx context.Context, input billing.CreateSubscriptionInput) (*billing.CreateSubscriptionOutput, error)
	UpdateSubscription(ctx context.Context, input billing.UpdateSubscriptionInput) (*billing.UpdateSubscriptionOutput, error)
	CancelSubscription(ctx context.Context, input billing.CancelSubscriptionInput) (*billing.CancelSubscriptionOutput, error)
	ResumeSubscription(ctx context.Context, tenantID uuid.UUID, subscriptionID string) (*billing.GetSubscriptionStatusOutput, error)
}

// SubscriptionService manages the tenant subscription lifecycle against
// Stripe and keeps the local mirror plus the tenant plan in sync
type SubscriptionService struct {
	stripeGateway    StripeGateway
	stripeConfig     *billing.StripeConfig
	subscriptionRepo domainBilling.SubscriptionRepository
	tenantRepo       identity.TenantRepository
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	stripeGateway StripeGateway,
	stripeConfig *billing.StripeConfig,
	subscriptionRepo domainBilling.SubscriptionRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		stripeGateway:    stripeGateway,
		stripeConfig:     stripeConfig,
		subscriptionRepo: subscriptionRepo,
		tenantRepo:       tenantRepo,
		logger:           logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *SubscriptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubscribeRequest is the request to start a paid subscription
type SubscribeRequest struct {
	PlanID          string `json:"plan_id" binding:"required,oneof=basic pro enterprise"`
	PaymentMethodID string `json:"payment_method_id"`
	TrialDays       int    `json:"trial_days" binding:"omitempty,min=0,max=90"`
}

// ChangePlanRequest is the request to move a subscription to a new plan
type ChangePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required,oneof=free basic pro enterprise"`
}

// CancelSubscriptionRequest is the request to cancel a subscription
type CancelSubscriptionRequest struct {
	AtPeriodEnd bool   `json:"at_period_end"`
	Reason      string `json:"reason" binding:"omitempty,max=500"`
}

// SubscriptionResponse is the API representation of a subscription
type SubscriptionResponse struct {
	ID                   uuid.UUID  `json:"id"`
	TenantID             uuid.UUID  `json:"tenant_id"`
	PlanCode             string     `json:"plan_code"`
	Status               string     `json:"status"`
	StripeSubscriptionID string     `json:"stripe_subscription_id,omitempty"`
	CurrentPeriodStart   *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	CanceledAt           *time.Time `json:"canceled_at,omitempty"`
	ClientSecret         string     `json:"client_secret,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PlanResponse describes a plan the tenant can subscribe to
type PlanResponse struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	MaxUsers           int    `json:"max_users"`
	MaxActiveCampaigns int    `json:"max_active_campaigns"`
	MaxBundlesPerMonth int    `json:"max_bundles_per_month"`
	MaxMatchesPerDay   int    `json:"max_matches_per_day"`
}

// ListPlans returns the plan catalog with the quotas each plan grants
func (s *SubscriptionService) ListPlans(ctx context.Context) []PlanResponse {
	plans := make([]PlanResponse, 0, len(identity.AllTenantPlans()))
	for _, plan := range identity.AllTenantPlans() {
		cfg := identity.ConfigForPlan(plan)
		plans = append(plans, PlanResponse{
			Code:               string(plan),
			Name:               plan.DisplayName(),
			MaxUsers:           cfg.MaxUsers,
			MaxActiveCampaigns: cfg.MaxActiveCampaigns,
			MaxBundlesPerMonth: cfg.MaxBundlesPerMonth,
			MaxMatchesPerDay:   cfg.MaxMatchesPerDay,
		})
	}
	return plans
}

// Subscribe creates a Stripe subscription for the tenant
// A Stripe customer is created on first subscribe and reused afterwards
func (s *SubscriptionService) Subscribe(ctx context.Context, tenantID uuid.UUID, req SubscribeRequest) (*SubscriptionResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.subscriptionRepo.FindByTenant(ctx, tenantID)
	if err != nil && err != shared.ErrNotFound {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if existing != nil && existing.IsActive() {
		return nil, shared.NewDomainError("SUBSCRIPTION_EXISTS", "Tenant already has an active subscription")
	}

	customerID := ""
	if existing != nil {
		customerID = existing.StripeCustomerID
	}
	if customerID == "" {
		customer, err := s.stripeGateway.CreateCustomer(ctx, billing.CreateCustomerInput{
			TenantID:    tenantID,
			Email:       tenant.ContactEmail,
			Name:        tenant.Name,
			Phone:       tenant.ContactPhone,
			Description: fmt.Sprintf("Tenant %s", tenant.Code),
			Metadata: map[string]string{
				"tenant_id":   tenantID.String(),
				"tenant_code": tenant.Code,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Stripe customer: %w", err)
		}
		customerID = customer.CustomerID
	}

	priceID, err := s.stripeConfig.GetPriceID(req.PlanID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PLAN", err.Error())
	}

	stripeSub, err := s.stripeGateway.CreateSubscription(ctx, billing.CreateSubscriptionInput{
		TenantID:      tenantID,
		CustomerID:    customerID,
		PlanID:        req.PlanID,
		PriceID:       priceID,
		TrialDays:     req.TrialDays,
		PaymentMethod: req.PaymentMethodID,
		Metadata: map[string]string{
			"tenant_id": tenantID.String(),
			"plan_id":   req.PlanID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Stripe subscription: %w", err)
	}

	subscription := existing
	if subscription == nil {
		subscription, err = domainBilling.NewSubscription(tenantID, req.PlanID, customerID)
		if err != nil {
			return nil, err
		}
	} else if subscription.PlanCode != req.PlanID {
		// a canceled subscription being replaced keeps its row
		subscription.PlanCode = req.PlanID
	}

	if err := subscription.AttachStripeSubscription(stripeSub.SubscriptionID); err != nil {
		return nil, err
	}
	subscription.ApplyStripeState(
		stripeSub.Status.String(),
		stripeSub.CurrentPeriodStart,
		stripeSub.CurrentPeriodEnd,
		stripeSub.CancelAtPeriodEnd,
	)

	if err := s.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	if subscription.IsActive() {
		if err := s.syncTenantPlan(ctx, tenant, req.PlanID, subscription.CurrentPeriodEnd); err != nil {
			s.logger.Error("Failed to sync tenant plan after subscribe",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, subscription)

	s.logger.Info("Subscription created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", req.PlanID),
		zap.String("stripe_subscription_id", stripeSub.SubscriptionID),
		zap.String("status", subscription.Status.String()))

	resp := toSubscriptionResponse(subscription)
	resp.ClientSecret = stripeSub.ClientSecret
	return resp, nil
}

// GetCurrent returns the tenant's subscription
// Tenants that never subscribed get a synthetic free-plan response
func (s *SubscriptionService) GetCurrent(ctx context.Context, tenantID uuid.UUID) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindByTenant(ctx, tenantID)
	if err == shared.ErrNotFound {
		tenant, terr := s.tenantRepo.FindByID(ctx, tenantID)
		if terr != nil {
			return nil, terr
		}
		return &SubscriptionResponse{
			TenantID: tenantID,
			PlanCode: string(tenant.Plan),
			Status:   domainBilling.SubscriptionStatusActive.String(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return toSubscriptionResponse(subscription), nil
}

// ChangePlan moves the subscription to a new plan with proration
func (s *SubscriptionService) ChangePlan(ctx context.Context, tenantID uuid.UUID, req ChangePlanRequest) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if subscription.PlanCode == req.PlanID {
		return nil, shared.NewDomainError("SAME_PLAN", "Subscription is already on this plan")
	}

	priceID, err := s.stripeConfig.GetPriceID(req.PlanID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PLAN", err.Error())
	}

	out, err := s.stripeGateway.UpdateSubscription(ctx, billing.UpdateSubscriptionInput{
		TenantID:          tenantID,
		SubscriptionID:    subscription.StripeSubscriptionID,
		NewPriceID:        priceID,
		NewPlanID:         req.PlanID,
		ProrationBehavior: "create_prorations",
		Metadata: map[string]string{
			"plan_id": req.PlanID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update Stripe subscription: %w", err)
	}

	if err := subscription.ChangePlan(req.PlanID); err != nil {
		return nil, err
	}
	subscription.ApplyStripeState(
		out.Status.String(),
		out.CurrentPeriodStart,
		out.CurrentPeriodEnd,
		out.CancelAtPeriodEnd,
	)

	if err := s.subscriptionRepo.SaveWithLock(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err == nil {
		if serr := s.syncTenantPlan(ctx, tenant, req.PlanID, subscription.CurrentPeriodEnd); serr != nil {
			s.logger.Error("Failed to sync tenant plan after plan change",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(serr))
		}
	}

	s.publishEvents(ctx, subscription)

	s.logger.Info("Subscription plan changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("new_plan", req.PlanID))

	return toSubscriptionResponse(subscription), nil
}

// Cancel cancels the subscription, immediately or at period end
func (s *SubscriptionService) Cancel(ctx context.Context, tenantID uuid.UUID, req CancelSubscriptionRequest) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if subscription.IsCanceled() {
		return nil, shared.NewDomainError("INVALID_STATE", "Subscription is already canceled")
	}

	_, err = s.stripeGateway.CancelSubscription(ctx, billing.CancelSubscriptionInput{
		TenantID:          tenantID,
		SubscriptionID:    subscription.StripeSubscriptionID,
		CancelAtPeriodEnd: req.AtPeriodEnd,
		Reason:            req.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel Stripe subscription: %w", err)
	}

	if req.AtPeriodEnd {
		if err := subscription.ScheduleCancel(); err != nil {
			return nil, err
		}
	} else {
		if err := subscription.CancelNow(); err != nil {
			return nil, err
		}
	}

	if err := s.subscriptionRepo.SaveWithLock(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	// immediate cancellation drops the tenant back to the free plan;
	// period-end cancellation keeps paid features until the period closes
	if !req.AtPeriodEnd {
		tenant, terr := s.tenantRepo.FindByID(ctx, tenantID)
		if terr == nil {
			if serr := s.syncTenantPlan(ctx, tenant, string(identity.TenantPlanFree), nil); serr != nil {
				s.logger.Error("Failed to downgrade tenant plan after cancel",
					zap.String("tenant_id", tenantID.String()),
					zap.Error(serr))
			}
		}
	}

	s.publishEvents(ctx, subscription)

	s.logger.Info("Subscription canceled",
		zap.String("tenant_id", tenantID.String()),
		zap.Bool("at_period_end", req.AtPeriodEnd))

	return toSubscriptionResponse(subscription), nil
}

// Reactivate clears a scheduled cancellation before the period ends
func (s *SubscriptionService) Reactivate(ctx context.Context, tenantID uuid.UUID) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !subscription.CancelAtPeriodEnd {
		return nil, shared.NewDomainError("INVALID_STATE", "No cancellation is scheduled")
	}

	out, err := s.stripeGateway.ResumeSubscription(ctx, tenantID, subscription.StripeSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resume Stripe subscription: %w", err)
	}

	if err := subscription.Reactivate(); err != nil {
		return nil, err
	}
	subscription.ApplyStripeState(
		out.Status.String(),
		out.CurrentPeriodStart,
		out.CurrentPeriodEnd,
		out.CancelAtPeriodEnd,
	)

	if err := s.subscriptionRepo.SaveWithLock(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	s.publishEvents(ctx, subscription)

	s.logger.Info("Subscription reactivated",
		zap.String("tenant_id", tenantID.String()))

	return toSubscriptionResponse(subscription), nil
}

// syncTenantPlan keeps the tenant aggregate's plan and expiry aligned
// with the subscription
func (s *SubscriptionService) syncTenantPlan(ctx context.Context, tenant *identity.Tenant, planCode string, periodEnd *time.Time) error {
	if string(tenant.Plan) == planCode && periodEnd == nil {
		return nil
	}
	if string(tenant.Plan) != planCode {
		if err := tenant.SetPlan(identity.TenantPlan(planCode)); err != nil {
			return err
		}
	}
	if periodEnd != nil {
		tenant.ExpiresAt = periodEnd
	}
	return s.tenantRepo.Save(ctx, tenant)
}

func (s *SubscriptionService) publishEvents(ctx context.Context, subscription *domainBilling.Subscription) {
	if s.eventPublisher == nil {
		return
	}
	events := subscription.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish subscription events",
			zap.String("subscription_id", subscription.ID.String()),
			zap.Error(err))
	}
	subscription.ClearDomainEvents()
}

func toSubscriptionResponse(sub *domainBilling.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                   sub.ID,
		TenantID:             sub.TenantID,
		PlanCode:             sub.PlanCode,
		Status:               sub.Status.String(),
		StripeSubscriptionID: sub.StripeSubscriptionID,
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CanceledAt:           sub.CanceledAt,
		CreatedAt:            sub.CreatedAt,
		UpdatedAt:            sub.UpdatedAt,
	}
}
