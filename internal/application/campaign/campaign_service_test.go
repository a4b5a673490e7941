package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCampaignRepository struct {
	mock.Mock
}

func (m *mockCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *mockCampaignRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*campaign.Campaign, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *mockCampaignRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]campaign.Campaign, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]campaign.Campaign), args.Error(1)
}

func (m *mockCampaignRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status campaign.CampaignStatus, filter shared.Filter) ([]campaign.Campaign, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]campaign.Campaign), args.Error(1)
}

func (m *mockCampaignRepository) FindByBusinessProfile(ctx context.Context, tenantID, businessProfileID uuid.UUID, filter shared.Filter) ([]campaign.Campaign, error) {
	args := m.Called(ctx, tenantID, businessProfileID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]campaign.Campaign), args.Error(1)
}

func (m *mockCampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCampaignRepository) SaveWithLock(ctx context.Context, c *campaign.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCampaignRepository) SaveWithLockAndEvents(ctx context.Context, c *campaign.Campaign, events []shared.DomainEvent) error {
	args := m.Called(ctx, c, events)
	return args.Error(0)
}

func (m *mockCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCampaignRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *mockCampaignRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCampaignRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status campaign.CampaignStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCampaignRepository) CountActiveForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type mockBusinessProfileRepository struct {
	mock.Mock
}

func (m *mockBusinessProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.BusinessProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.BusinessProfile), args.Error(1)
}

func (m *mockBusinessProfileRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*profile.BusinessProfile, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.BusinessProfile), args.Error(1)
}

func (m *mockBusinessProfileRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*profile.BusinessProfile, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.BusinessProfile), args.Error(1)
}

func (m *mockBusinessProfileRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]profile.BusinessProfile, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.BusinessProfile), args.Error(1)
}

func (m *mockBusinessProfileRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus, filter shared.Filter) ([]profile.BusinessProfile, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.BusinessProfile), args.Error(1)
}

func (m *mockBusinessProfileRepository) Save(ctx context.Context, p *profile.BusinessProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockBusinessProfileRepository) SaveWithLock(ctx context.Context, p *profile.BusinessProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockBusinessProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *profile.BusinessProfile, events []shared.DomainEvent) error {
	args := m.Called(ctx, p, events)
	return args.Error(0)
}

func (m *mockBusinessProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBusinessProfileRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBusinessProfileRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBusinessProfileRepository) ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Bool(0), args.Error(1)
}

type mockTenantRepository struct {
	mock.Mock
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByDomain(ctx context.Context, domain string) (*identity.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByStatus(ctx context.Context, status identity.TenantStatus, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByPlan(ctx context.Context, plan identity.TenantPlan, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, plan, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindActive(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindTrialExpiring(ctx context.Context, withinDays int) ([]identity.Tenant, error) {
	args := m.Called(ctx, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindSubscriptionExpiring(ctx context.Context, withinDays int) ([]identity.Tenant, error) {
	args := m.Called(ctx, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Tenant, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *mockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTenantRepository) CountByStatus(ctx context.Context, status identity.TenantStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTenantRepository) CountByPlan(ctx context.Context, plan identity.TenantPlan) (int64, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockTenantRepository) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	args := m.Called(ctx, domain)
	return args.Bool(0), args.Error(1)
}

type mockQuotaChecker struct {
	mock.Mock
}

func (m *mockQuotaChecker) CheckCampaignQuota(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func newCampaignTestService(t *testing.T) (*CampaignService, *mockCampaignRepository, *mockBusinessProfileRepository, *mockTenantRepository) {
	t.Helper()
	campaignRepo := new(mockCampaignRepository)
	businessRepo := new(mockBusinessProfileRepository)
	tenantRepo := new(mockTenantRepository)
	service := NewCampaignService(campaignRepo, businessRepo, tenantRepo, zap.NewNop())
	return service, campaignRepo, businessRepo, tenantRepo
}

func activeBusinessProfile(t *testing.T, tenantID, userID uuid.UUID) *profile.BusinessProfile {
	t.Helper()
	p, err := profile.NewBusinessProfile(tenantID, userID, "Northside Grill")
	require.NoError(t, err)
	require.NoError(t, p.UpdateCompany("Northside Grill", "restaurants", "https://northsidegrill.test"))
	require.NoError(t, p.SetTargeting([]string{"basketball"}, []string{"texas"}))
	require.NoError(t, p.SetCampaignGoals([]string{"local awareness"}))
	band, err := profile.NewBudgetBand(decimal.NewFromInt(100), decimal.NewFromInt(2500))
	require.NoError(t, err)
	require.NoError(t, p.SetBudgetBand(band))
	require.NoError(t, p.SubmitForReview(false))
	p.ClearDomainEvents()
	return p
}

func reviewedCampaign(t *testing.T, tenantID, userID, businessProfileID uuid.UUID) *campaign.Campaign {
	t.Helper()
	c, err := campaign.NewCampaign(tenantID, userID, businessProfileID, "Spring Basketball Push")
	require.NoError(t, err)
	require.NoError(t, c.SaveBasics("Spring Basketball Push", "Local awareness for march", nil, nil))
	criteria, err := campaign.NewTargetCriteria([]string{"basketball"}, nil, []string{"texas"}, nil, 1000)
	require.NoError(t, err)
	require.NoError(t, c.SaveAudience(criteria))
	budget, err := valueobject.NewMoneyUSDFromString("1500")
	require.NoError(t, err)
	require.NoError(t, c.SaveBudget(budget))
	c.ClearDomainEvents()
	return c
}

func activeTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("ACME", "Acme Sports Collective")
	require.NoError(t, err)
	tenant.ClearDomainEvents()
	return tenant
}

func TestCampaignCreate(t *testing.T) {
	service, campaignRepo, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("Save", mock.Anything, mock.AnythingOfType("*campaign.Campaign")).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, userID, CreateCampaignRequest{
		Name:        "Spring Basketball Push",
		Description: "Local awareness for march",
	})

	require.NoError(t, err)
	assert.Equal(t, "Spring Basketball Push", resp.Name)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, "BASICS", resp.Step)
	assert.Equal(t, bp.ID, resp.BusinessProfileID)
	campaignRepo.AssertExpectations(t)
}

func TestCampaignCreate_RequiresBusinessProfile(t *testing.T) {
	service, _, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(nil, shared.ErrNotFound)

	_, err := service.Create(context.Background(), tenantID, userID, CreateCampaignRequest{Name: "Doomed"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PROFILE_REQUIRED", domainErr.Code)
}

func TestCampaignCreate_ProfileNotApproved(t *testing.T) {
	service, _, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp, err := profile.NewBusinessProfile(tenantID, userID, "Pending Biz")
	require.NoError(t, err)

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)

	_, err = service.Create(context.Background(), tenantID, userID, CreateCampaignRequest{Name: "Too Soon"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PROFILE_NOT_ACTIVE", domainErr.Code)
}

func TestCampaignWizardProgression(t *testing.T) {
	service, campaignRepo, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c, err := campaign.NewCampaign(tenantID, userID, bp.ID, "Wizard Run")
	require.NoError(t, err)
	c.ClearDomainEvents()

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	campaignRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.SaveBasics(context.Background(), tenantID, userID, c.ID, SaveBasicsRequest{
		Name:        "Wizard Run",
		Description: "step one",
	})
	require.NoError(t, err)
	assert.Equal(t, "AUDIENCE", resp.Step)

	resp, err = service.SaveAudience(context.Background(), tenantID, userID, c.ID, SaveAudienceRequest{
		Sports:       []string{"Basketball"},
		Regions:      []string{"texas"},
		MinFollowers: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "BUDGET", resp.Step)
	assert.Equal(t, []string{"basketball"}, resp.Criteria.Sports)

	resp, err = service.SaveBudget(context.Background(), tenantID, userID, c.ID, SaveBudgetRequest{Amount: "1500"})
	require.NoError(t, err)
	assert.Equal(t, "REVIEW", resp.Step)
	assert.Equal(t, "1500", resp.BudgetAmount)
}

func TestCampaignSaveBudget_InvalidAmount(t *testing.T) {
	service, _, _, _ := newCampaignTestService(t)

	_, err := service.SaveBudget(context.Background(), uuid.New(), uuid.New(), uuid.New(), SaveBudgetRequest{Amount: "lots"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_BUDGET", domainErr.Code)
}

func TestCampaignPublish(t *testing.T) {
	service, campaignRepo, businessRepo, tenantRepo := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c := reviewedCampaign(t, tenantID, userID, bp.ID)
	tenant := activeTenant(t)

	quota := new(mockQuotaChecker)
	service.SetQuotaChecker(quota)

	tenantRepo.On("FindByID", mock.Anything, tenantID).Return(tenant, nil)
	quota.On("CheckCampaignQuota", mock.Anything, tenantID).Return(nil)
	campaignRepo.On("CountActiveForTenant", mock.Anything, tenantID).Return(int64(0), nil)
	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	campaignRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.Publish(context.Background(), tenantID, userID, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", resp.Status)
	assert.NotNil(t, resp.PublishedAt)
	quota.AssertExpectations(t)
}

func TestCampaignPublish_ActiveLimitReached(t *testing.T) {
	service, campaignRepo, _, tenantRepo := newCampaignTestService(t)
	tenantID := uuid.New()
	tenant := activeTenant(t)

	tenantRepo.On("FindByID", mock.Anything, tenantID).Return(tenant, nil)
	// free plan allows a single active campaign
	campaignRepo.On("CountActiveForTenant", mock.Anything, tenantID).Return(int64(1), nil)

	_, err := service.Publish(context.Background(), tenantID, uuid.New(), uuid.New())

	require.ErrorIs(t, err, shared.ErrQuotaExceeded)
}

func TestCampaignPublish_ExpiredSubscription(t *testing.T) {
	service, _, _, tenantRepo := newCampaignTestService(t)
	tenantID := uuid.New()
	tenant := activeTenant(t)
	tenant.SetExpiration(time.Now().Add(-24 * time.Hour))

	tenantRepo.On("FindByID", mock.Anything, tenantID).Return(tenant, nil)

	_, err := service.Publish(context.Background(), tenantID, uuid.New(), uuid.New())

	require.ErrorIs(t, err, shared.ErrSubscriptionNeeded)
}

func TestCampaignPublish_NotOwner(t *testing.T) {
	service, campaignRepo, businessRepo, tenantRepo := newCampaignTestService(t)
	tenantID := uuid.New()
	ownerID := uuid.New()
	strangerID := uuid.New()
	ownerProfile := activeBusinessProfile(t, tenantID, ownerID)
	strangerProfile := activeBusinessProfile(t, tenantID, strangerID)
	c := reviewedCampaign(t, tenantID, ownerID, ownerProfile.ID)
	tenant := activeTenant(t)

	tenantRepo.On("FindByID", mock.Anything, tenantID).Return(tenant, nil)
	campaignRepo.On("CountActiveForTenant", mock.Anything, tenantID).Return(int64(0), nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	businessRepo.On("FindByUser", mock.Anything, tenantID, strangerID).Return(strangerProfile, nil)

	_, err := service.Publish(context.Background(), tenantID, strangerID, c.ID)

	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCampaignPauseAndResume(t *testing.T) {
	service, campaignRepo, businessRepo, tenantRepo := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c := reviewedCampaign(t, tenantID, userID, bp.ID)
	tenant := activeTenant(t)

	tenantRepo.On("FindByID", mock.Anything, tenantID).Return(tenant, nil)
	campaignRepo.On("CountActiveForTenant", mock.Anything, tenantID).Return(int64(0), nil)
	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	campaignRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	_, err := service.Publish(context.Background(), tenantID, userID, c.ID)
	require.NoError(t, err)

	resp, err := service.Pause(context.Background(), tenantID, userID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAUSED", resp.Status)

	resp, err = service.Resume(context.Background(), tenantID, userID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", resp.Status)
}

func TestCampaignCancel(t *testing.T) {
	service, campaignRepo, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c := reviewedCampaign(t, tenantID, userID, bp.ID)

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	campaignRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.Cancel(context.Background(), tenantID, userID, c.ID, CancelCampaignRequest{Reason: "budget pulled"})

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "budget pulled", resp.CancelReason)
}

func TestCampaignDeleteDraft(t *testing.T) {
	service, campaignRepo, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c, err := campaign.NewCampaign(tenantID, userID, bp.ID, "Abandoned")
	require.NoError(t, err)

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	campaignRepo.On("DeleteForTenant", mock.Anything, tenantID, c.ID).Return(nil)

	require.NoError(t, service.DeleteDraft(context.Background(), tenantID, userID, c.ID))
	campaignRepo.AssertExpectations(t)
}

func TestCampaignDeleteDraft_PublishedRejected(t *testing.T) {
	service, campaignRepo, businessRepo, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := activeBusinessProfile(t, tenantID, userID)
	c := reviewedCampaign(t, tenantID, userID, bp.ID)
	require.NoError(t, c.Publish())

	businessRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(bp, nil)
	campaignRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)

	err := service.DeleteDraft(context.Background(), tenantID, userID, c.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_DRAFT", domainErr.Code)
}

func TestCampaignList(t *testing.T) {
	service, campaignRepo, _, _ := newCampaignTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	bp := uuid.New()
	c := reviewedCampaign(t, tenantID, userID, bp)

	campaignRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return([]campaign.Campaign{*c}, nil)
	campaignRepo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), tenantID, ListCampaignsRequest{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Spring Basketball Push", items[0].Name)
}

func TestCampaignList_ByStatus(t *testing.T) {
	service, campaignRepo, _, _ := newCampaignTestService(t)
	tenantID := uuid.New()

	campaignRepo.On("FindByStatus", mock.Anything, tenantID, campaign.CampaignStatusPublished, mock.AnythingOfType("shared.Filter")).Return([]campaign.Campaign{}, nil)
	campaignRepo.On("CountByStatus", mock.Anything, tenantID, campaign.CampaignStatusPublished).Return(int64(0), nil)

	items, total, err := service.List(context.Background(), tenantID, ListCampaignsRequest{Status: "PUBLISHED"})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
