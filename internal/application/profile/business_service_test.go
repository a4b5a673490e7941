package profile

import (
	"context"
	"testing"

	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

func newBusinessTestService(t *testing.T) (*BusinessService, *mockBusinessProfileRepository, *mockTenantRepository, *mockObjectStorage) {
	t.Helper()
	repo := new(mockBusinessProfileRepository)
	tenantRepo := new(mockTenantRepository)
	storage := new(mockObjectStorage)
	service := NewBusinessService(repo, tenantRepo, storage, zap.NewNop())
	return service, repo, tenantRepo, storage
}

func completeBusinessProfile(t *testing.T, tenantID, userID uuid.UUID) *profile.BusinessProfile {
	t.Helper()
	p, err := profile.NewBusinessProfile(tenantID, userID, "Northside Grill")
	require.NoError(t, err)
	require.NoError(t, p.UpdateCompany("Northside Grill", "restaurants", "https://northsidegrill.test"))
	require.NoError(t, p.SetTargeting([]string{"basketball", "football"}, []string{"texas"}))
	require.NoError(t, p.SetCampaignGoals([]string{"local awareness"}))
	band, err := profile.NewBudgetBand(decimal.NewFromInt(100), decimal.NewFromInt(2500))
	require.NoError(t, err)
	require.NoError(t, p.SetBudgetBand(band))
	p.ClearDomainEvents()
	return p
}

func TestBusinessCreate(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()

	repo.On("ExistsForUser", mock.Anything, tenantID, userID).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*profile.BusinessProfile")).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, userID, CreateBusinessProfileRequest{
		CompanyName: "Northside Grill",
		Industry:    "Restaurants",
	})

	require.NoError(t, err)
	assert.Equal(t, "Northside Grill", resp.CompanyName)
	assert.Equal(t, "PENDING", resp.Status)
}

func TestBusinessCreate_DuplicateRejected(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()

	repo.On("ExistsForUser", mock.Anything, tenantID, userID).Return(true, nil)

	_, err := service.Create(context.Background(), tenantID, userID, CreateBusinessProfileRequest{
		CompanyName: "Northside Grill",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PROFILE_EXISTS", domainErr.Code)
}

func TestBusinessSetBudgetBand(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	p, err := profile.NewBusinessProfile(tenantID, userID, "Northside Grill")
	require.NoError(t, err)
	p.ClearDomainEvents()

	repo.On("FindByUser", mock.Anything, tenantID, userID).Return(p, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.SetBudgetBand(context.Background(), tenantID, userID, SetBudgetBandRequest{
		Min: "100",
		Max: "2500",
	})

	require.NoError(t, err)
	assert.Equal(t, "100", resp.BudgetMin)
	assert.Equal(t, "2500", resp.BudgetMax)
}

func TestBusinessSetBudgetBand_InvalidRange(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	p, err := profile.NewBusinessProfile(tenantID, userID, "Northside Grill")
	require.NoError(t, err)
	p.ClearDomainEvents()

	repo.On("FindByUser", mock.Anything, tenantID, userID).Return(p, nil)

	_, err = service.SetBudgetBand(context.Background(), tenantID, userID, SetBudgetBandRequest{
		Min: "5000",
		Max: "100",
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestBusinessSubmit_ComplianceReview(t *testing.T) {
	service, repo, tenantRepo, _ := newBusinessTestService(t)
	tenant := freePlanTenant(t)
	tenant.Config.ComplianceReview = true
	userID := uuid.New()
	p := completeBusinessProfile(t, tenant.ID, userID)

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.Submit(context.Background(), tenant.ID, userID)

	require.NoError(t, err)
	assert.Equal(t, "IN_REVIEW", resp.Status)
}

func TestBusinessSuspendAndReinstate(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	p := completeBusinessProfile(t, tenantID, uuid.New())
	require.NoError(t, p.SubmitForReview(false))
	p.ClearDomainEvents()

	repo.On("FindByIDForTenant", mock.Anything, tenantID, p.ID).Return(p, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.Suspend(context.Background(), tenantID, p.ID, SuspendProfileRequest{Reason: "terms violation"})
	require.NoError(t, err)
	assert.Equal(t, "SUSPENDED", resp.Status)

	resp, err = service.Reinstate(context.Background(), tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
}

func TestBusinessList(t *testing.T) {
	service, repo, _, _ := newBusinessTestService(t)
	tenantID := uuid.New()
	p := completeBusinessProfile(t, tenantID, uuid.New())

	repo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).
		Return([]profile.BusinessProfile{*p}, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), tenantID, ListProfilesRequest{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Northside Grill", items[0].CompanyName)
}
