package campaign

import (
	"context"
	"errors"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/nilmarket/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuotaChecker verifies plan quotas before a campaign goes live
type QuotaChecker interface {
	CheckCampaignQuota(ctx context.Context, tenantID uuid.UUID) error
}

// CampaignService drives the campaign wizard and lifecycle
type CampaignService struct {
	campaignRepo    campaign.CampaignRepository
	businessRepo    profile.BusinessProfileRepository
	tenantRepo      identity.TenantRepository
	quotaChecker    QuotaChecker
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewCampaignService creates a campaign application service
func NewCampaignService(
	campaignRepo campaign.CampaignRepository,
	businessRepo profile.BusinessProfileRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		businessRepo: businessRepo,
		tenantRepo:   tenantRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CampaignService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetQuotaChecker sets the quota checker consulted on publish
func (s *CampaignService) SetQuotaChecker(checker QuotaChecker) {
	s.quotaChecker = checker
}

// SetBusinessMetrics sets the business metrics collector
func (s *CampaignService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create starts a new draft campaign for the caller's business profile
func (s *CampaignService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCampaignRequest) (*CampaignResponse, error) {
	bp, err := s.businessRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROFILE_REQUIRED", "A business profile is required to create campaigns")
		}
		return nil, err
	}
	if !bp.IsActive() {
		return nil, shared.NewDomainError("PROFILE_NOT_ACTIVE", "Business profile must be approved before creating campaigns")
	}

	c, err := campaign.NewCampaign(tenantID, userID, bp.ID, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		c.Description = req.Description
	}

	if err := s.campaignRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	s.logger.Info("campaign created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("campaign_id", c.ID.String()),
		zap.String("name", c.Name))

	return toCampaignResponse(c), nil
}

// Get returns a single campaign
func (s *CampaignService) Get(ctx context.Context, tenantID, campaignID uuid.UUID) (*CampaignResponse, error) {
	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	return toCampaignResponse(c), nil
}

// SaveBasics records the basics wizard step
func (s *CampaignService) SaveBasics(ctx context.Context, tenantID, userID, campaignID uuid.UUID, req SaveBasicsRequest) (*CampaignResponse, error) {
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.SaveBasics(req.Name, req.Description, req.StartsAt, req.EndsAt)
	})
}

// SaveAudience records the audience wizard step
func (s *CampaignService) SaveAudience(ctx context.Context, tenantID, userID, campaignID uuid.UUID, req SaveAudienceRequest) (*CampaignResponse, error) {
	criteria, err := campaign.NewTargetCriteria(req.Sports, req.Divisions, req.Regions, req.ContentTypes, req.MinFollowers)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.SaveAudience(criteria)
	})
}

// SaveBudget records the budget wizard step
func (s *CampaignService) SaveBudget(ctx context.Context, tenantID, userID, campaignID uuid.UUID, req SaveBudgetRequest) (*CampaignResponse, error) {
	budget, err := valueobject.NewMoneyUSDFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget amount is not a valid number")
	}
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.SaveBudget(budget)
	})
}

// Publish takes a reviewed draft live, enforcing plan quotas
func (s *CampaignService) Publish(ctx context.Context, tenantID, userID, campaignID uuid.UUID) (*CampaignResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_NOT_ACTIVE", "Tenant is not active")
	}
	if tenant.IsSubscriptionExpired() {
		return nil, shared.ErrSubscriptionNeeded
	}

	if s.quotaChecker != nil {
		if err := s.quotaChecker.CheckCampaignQuota(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	activeCount, err := s.campaignRepo.CountActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.CanActivateCampaign(int(activeCount)) {
		return nil, shared.ErrQuotaExceeded
	}

	resp, err := s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.Publish()
	})
	if err == nil && s.businessMetrics != nil {
		s.businessMetrics.RecordCampaignPublished(ctx, tenantID)
	}
	return resp, err
}

// Pause pauses a published campaign
func (s *CampaignService) Pause(ctx context.Context, tenantID, userID, campaignID uuid.UUID) (*CampaignResponse, error) {
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.Pause()
	})
}

// Resume resumes a paused campaign
func (s *CampaignService) Resume(ctx context.Context, tenantID, userID, campaignID uuid.UUID) (*CampaignResponse, error) {
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.Resume()
	})
}

// Complete marks a campaign as finished
func (s *CampaignService) Complete(ctx context.Context, tenantID, userID, campaignID uuid.UUID) (*CampaignResponse, error) {
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.Complete()
	})
}

// Cancel cancels a campaign with a reason
func (s *CampaignService) Cancel(ctx context.Context, tenantID, userID, campaignID uuid.UUID, req CancelCampaignRequest) (*CampaignResponse, error) {
	return s.mutate(ctx, tenantID, userID, campaignID, func(c *campaign.Campaign) error {
		return c.Cancel(req.Reason)
	})
}

// DeleteDraft removes a campaign that never left the wizard
func (s *CampaignService) DeleteDraft(ctx context.Context, tenantID, userID, campaignID uuid.UUID) error {
	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, campaignID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, tenantID, userID, c); err != nil {
		return err
	}
	if !c.IsDraft() {
		return shared.NewDomainError("NOT_DRAFT", "Only draft campaigns can be deleted")
	}
	return s.campaignRepo.DeleteForTenant(ctx, tenantID, campaignID)
}

// List returns campaigns for the tenant, optionally filtered by status
func (s *CampaignService) List(ctx context.Context, tenantID uuid.UUID, req ListCampaignsRequest) ([]CampaignListItemResponse, int64, error) {
	filter := buildCampaignFilter(req)

	var (
		campaigns []campaign.Campaign
		total     int64
		err       error
	)
	if req.Status != "" {
		status := campaign.CampaignStatus(req.Status)
		campaigns, err = s.campaignRepo.FindByStatus(ctx, tenantID, status, filter)
		if err != nil {
			return nil, 0, err
		}
		total, err = s.campaignRepo.CountByStatus(ctx, tenantID, status)
	} else {
		campaigns, err = s.campaignRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, 0, err
		}
		total, err = s.campaignRepo.CountForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	items := make([]CampaignListItemResponse, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, toCampaignListItem(&campaigns[i]))
	}
	return items, total, nil
}

// ListMine returns campaigns owned by the caller's business profile
func (s *CampaignService) ListMine(ctx context.Context, tenantID, userID uuid.UUID, req ListCampaignsRequest) ([]CampaignListItemResponse, int64, error) {
	bp, err := s.businessRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []CampaignListItemResponse{}, 0, nil
		}
		return nil, 0, err
	}

	campaigns, err := s.campaignRepo.FindByBusinessProfile(ctx, tenantID, bp.ID, buildCampaignFilter(req))
	if err != nil {
		return nil, 0, err
	}
	items := make([]CampaignListItemResponse, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, toCampaignListItem(&campaigns[i]))
	}
	return items, int64(len(items)), nil
}

// mutate loads a campaign, checks ownership, applies the change and saves with optimistic locking
func (s *CampaignService) mutate(ctx context.Context, tenantID, userID, campaignID uuid.UUID, apply func(*campaign.Campaign) error) (*CampaignResponse, error) {
	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenantID, userID, c); err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)
	return toCampaignResponse(c), nil
}

// authorize ensures the caller's business profile owns the campaign
func (s *CampaignService) authorize(ctx context.Context, tenantID, userID uuid.UUID, c *campaign.Campaign) error {
	bp, err := s.businessRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrForbidden
		}
		return err
	}
	if bp.ID != c.BusinessProfileID {
		return shared.ErrForbidden
	}
	return nil
}

func (s *CampaignService) publishEvents(ctx context.Context, c *campaign.Campaign) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish campaign events",
			zap.String("campaign_id", c.ID.String()),
			zap.Error(err))
	}
	c.ClearDomainEvents()
}

func buildCampaignFilter(req ListCampaignsRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Search != "" {
		filter.Search = req.Search
	}
	return filter
}
