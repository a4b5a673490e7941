package profile

import (
	"context"
	"testing"
	"time"

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

type mockAthleteProfileRepository struct {
	mock.Mock
}

func (m *mockAthleteProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.AthleteProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*profile.AthleteProfile, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*profile.AthleteProfile, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]profile.AthleteProfile, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus, filter shared.Filter) ([]profile.AthleteProfile, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) SearchActive(ctx context.Context, tenantID uuid.UUID, search profile.AthleteSearch) ([]profile.AthleteProfile, error) {
	args := m.Called(ctx, tenantID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.AthleteProfile), args.Error(1)
}

func (m *mockAthleteProfileRepository) Save(ctx context.Context, p *profile.AthleteProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockAthleteProfileRepository) SaveWithLock(ctx context.Context, p *profile.AthleteProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockAthleteProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *profile.AthleteProfile, events []shared.DomainEvent) error {
	args := m.Called(ctx, p, events)
	return args.Error(0)
}

func (m *mockAthleteProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAthleteProfileRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAthleteProfileRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status profile.ProfileStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAthleteProfileRepository) ExistsForUser(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
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

type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func newAthleteTestService(t *testing.T) (*AthleteService, *mockAthleteProfileRepository, *mockTenantRepository, *mockObjectStorage) {
	t.Helper()
	repo := new(mockAthleteProfileRepository)
	tenantRepo := new(mockTenantRepository)
	storage := new(mockObjectStorage)
	service := NewAthleteService(repo, tenantRepo, storage, zap.NewNop())
	return service, repo, tenantRepo, storage
}

func completeAthleteProfile(t *testing.T, tenantID, userID uuid.UUID) *profile.AthleteProfile {
	t.Helper()
	p, err := profile.NewAthleteProfile(tenantID, userID, "Jess Carter")
	require.NoError(t, err)
	require.NoError(t, p.UpdateBasics("Jess Carter", "basketball", "State University", "d1", 2027))
	require.NoError(t, p.SetContentTags([]string{"training", "community"}))
	acc, err := profile.NewSocialAccount("instagram", "jesscarter", 42000)
	require.NoError(t, err)
	require.NoError(t, p.SetSocialAccounts([]profile.SocialAccount{acc}))
	require.NoError(t, p.SetCompensationFloor(valueobject.NewMoneyUSD(decimal.NewFromInt(250))))
	p.ClearDomainEvents()
	return p
}

func freePlanTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("ACME", "Acme Sports Collective")
	require.NoError(t, err)
	tenant.ClearDomainEvents()
	return tenant
}

func TestAthleteCreate(t *testing.T) {
	service, repo, _, _ := newAthleteTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()

	repo.On("ExistsForUser", mock.Anything, tenantID, userID).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*profile.AthleteProfile")).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, userID, CreateAthleteProfileRequest{
		DisplayName: "Jess Carter",
		Sport:       "Basketball",
	})

	require.NoError(t, err)
	assert.Equal(t, "Jess Carter", resp.DisplayName)
	assert.Equal(t, "basketball", resp.Sport)
	assert.Equal(t, "PENDING", resp.Status)
	repo.AssertExpectations(t)
}

func TestAthleteCreate_DuplicateRejected(t *testing.T) {
	service, repo, _, _ := newAthleteTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()

	repo.On("ExistsForUser", mock.Anything, tenantID, userID).Return(true, nil)

	_, err := service.Create(context.Background(), tenantID, userID, CreateAthleteProfileRequest{
		DisplayName: "Jess Carter",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PROFILE_EXISTS", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAthleteSubmit_ActivatesWithoutComplianceReview(t *testing.T) {
	service, repo, tenantRepo, _ := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	userID := uuid.New()
	p := completeAthleteProfile(t, tenant.ID, userID)

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.Submit(context.Background(), tenant.ID, userID)

	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
}

func TestAthleteSubmit_HeldForComplianceReview(t *testing.T) {
	service, repo, tenantRepo, _ := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	tenant.Config.ComplianceReview = true
	userID := uuid.New()
	p := completeAthleteProfile(t, tenant.ID, userID)

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.Submit(context.Background(), tenant.ID, userID)

	require.NoError(t, err)
	assert.Equal(t, "IN_REVIEW", resp.Status)
}

func TestAthleteSubmit_IncompleteRejected(t *testing.T) {
	service, repo, tenantRepo, _ := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	userID := uuid.New()
	p, err := profile.NewAthleteProfile(tenant.ID, userID, "Jess Carter")
	require.NoError(t, err)
	p.ClearDomainEvents()

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err = service.Submit(context.Background(), tenant.ID, userID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PROFILE_INCOMPLETE", domainErr.Code)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestAthleteApproveAndReject(t *testing.T) {
	service, repo, _, _ := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	tenant.Config.ComplianceReview = true
	userID := uuid.New()
	p := completeAthleteProfile(t, tenant.ID, userID)
	require.NoError(t, p.SubmitForReview(true))
	p.ClearDomainEvents()

	repo.On("FindByIDForTenant", mock.Anything, tenant.ID, p.ID).Return(p, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.Approve(context.Background(), tenant.ID, p.ID)

	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)

	_, err = service.Reject(context.Background(), tenant.ID, p.ID, RejectProfileRequest{Reason: "missing disclosures"})
	require.Error(t, err)
}

func TestAthleteCreateMediaAsset(t *testing.T) {
	service, repo, tenantRepo, storage := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	userID := uuid.New()
	p := completeAthleteProfile(t, tenant.ID, userID)

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	expiresAt := time.Now().Add(uploadURLTTL)
	storage.On("GenerateUploadURL", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", uploadURLTTL).
		Return("https://storage.test/upload/abc", expiresAt, nil)

	resp, err := service.CreateMediaAsset(context.Background(), tenant.ID, userID, CreateMediaAssetRequest{
		Kind:        "IMAGE",
		Title:       "Game highlights",
		ContentType: "image/jpeg",
		FileName:    "highlights.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/upload/abc", resp.UploadURL)
	assert.Equal(t, "PENDING_UPLOAD", resp.Asset.Status)
	assert.Equal(t, "IMAGE", resp.Asset.Kind)
	storage.AssertExpectations(t)
}

func TestAthleteCreateMediaAsset_PlanLimit(t *testing.T) {
	service, repo, tenantRepo, storage := newAthleteTestService(t)
	tenant := freePlanTenant(t)
	userID := uuid.New()
	p := completeAthleteProfile(t, tenant.ID, userID)

	// free plan allows three media kit items
	for i := 0; i < 3; i++ {
		_, err := p.AddMediaAsset(profile.MediaKindImage, "asset", uuid.NewString(), "image/png", 3)
		require.NoError(t, err)
	}

	repo.On("FindByUser", mock.Anything, tenant.ID, userID).Return(p, nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err := service.CreateMediaAsset(context.Background(), tenant.ID, userID, CreateMediaAssetRequest{
		Kind:        "IMAGE",
		ContentType: "image/png",
		FileName:    "fourth.png",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "QUOTA_EXCEEDED", domainErr.Code)
	storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAthleteConfirmAndRemoveMediaAsset(t *testing.T) {
	service, repo, _, storage := newAthleteTestService(t)
	tenantID := uuid.New()
	userID := uuid.New()
	p := completeAthleteProfile(t, tenantID, userID)
	asset, err := p.AddMediaAsset(profile.MediaKindImage, "headshot", "tenants/x/media/1.jpg", "image/jpeg", 0)
	require.NoError(t, err)

	repo.On("FindByUser", mock.Anything, tenantID, userID).Return(p, nil)
	repo.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := service.ConfirmMediaAsset(context.Background(), tenantID, userID, asset.ID, ConfirmMediaAssetRequest{SizeBytes: 2048})
	require.NoError(t, err)
	require.Len(t, resp.MediaAssets, 1)
	assert.Equal(t, "READY", resp.MediaAssets[0].Status)

	storage.On("DeleteObject", mock.Anything, "tenants/x/media/1.jpg").Return(nil)

	resp, err = service.RemoveMediaAsset(context.Background(), tenantID, userID, asset.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.MediaAssets)
	storage.AssertExpectations(t)
}

func TestAthleteList(t *testing.T) {
	service, repo, _, _ := newAthleteTestService(t)
	tenantID := uuid.New()
	p := completeAthleteProfile(t, tenantID, uuid.New())

	repo.On("FindByStatus", mock.Anything, tenantID, profile.ProfileStatusPending, mock.AnythingOfType("shared.Filter")).
		Return([]profile.AthleteProfile{*p}, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), tenantID, ListProfilesRequest{Status: "PENDING"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Jess Carter", items[0].DisplayName)
	assert.Equal(t, 42000, items[0].TotalFollowers)
}
