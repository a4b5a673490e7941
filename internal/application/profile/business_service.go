package profile

import (
	"context"
	"fmt"

	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BusinessService manages sponsoring business profiles
type BusinessService struct {
	profileRepo    profile.BusinessProfileRepository
	tenantRepo     identity.TenantRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBusinessService creates a new BusinessService
func NewBusinessService(
	profileRepo profile.BusinessProfileRepository,
	tenantRepo identity.TenantRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *BusinessService {
	return &BusinessService{
		profileRepo: profileRepo,
		tenantRepo:  tenantRepo,
		storage:     storage,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *BusinessService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a business profile for the user
// A user can own at most one business profile per tenant
func (s *BusinessService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateBusinessProfileRequest) (*BusinessProfileResponse, error) {
	exists, err := s.profileRepo.ExistsForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("PROFILE_EXISTS", "User already has a business profile")
	}

	p, err := profile.NewBusinessProfile(tenantID, userID, req.CompanyName)
	if err != nil {
		return nil, err
	}
	if req.Industry != "" || req.Website != "" {
		if err := p.UpdateCompany(req.CompanyName, req.Industry, req.Website); err != nil {
			return nil, err
		}
	}

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	s.publishEvents(ctx, p)

	s.logger.Info("Business profile created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("profile_id", p.ID.String()))

	return toBusinessProfileResponse(p), nil
}

// GetMine returns the profile owned by the calling user
func (s *BusinessService) GetMine(ctx context.Context, tenantID, userID uuid.UUID) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return toBusinessProfileResponse(p), nil
}

// Get returns a profile by ID within the tenant
func (s *BusinessService) Get(ctx context.Context, tenantID, profileID uuid.UUID) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByIDForTenant(ctx, tenantID, profileID)
	if err != nil {
		return nil, err
	}
	return toBusinessProfileResponse(p), nil
}

// UpdateCompany updates company identity info
func (s *BusinessService) UpdateCompany(ctx context.Context, tenantID, userID uuid.UUID, req UpdateBusinessCompanyRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateCompany(req.CompanyName, req.Industry, req.Website); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// UpdateBio updates the bio section
func (s *BusinessService) UpdateBio(ctx context.Context, tenantID, userID uuid.UUID, req UpdateBioRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateBio(req.Bio); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// SetTargeting replaces targeting preferences
func (s *BusinessService) SetTargeting(ctx context.Context, tenantID, userID uuid.UUID, req SetTargetingRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.SetTargeting(req.Sports, req.Regions); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// SetCampaignGoals replaces the campaign goals
func (s *BusinessService) SetCampaignGoals(ctx context.Context, tenantID, userID uuid.UUID, req SetCampaignGoalsRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.SetCampaignGoals(req.Goals); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// SetBudgetBand sets the sponsorship budget range
func (s *BusinessService) SetBudgetBand(ctx context.Context, tenantID, userID uuid.UUID, req SetBudgetBandRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	min, err := decimal.NewFromString(req.Min)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget minimum must be a valid decimal number")
	}
	max, err := decimal.NewFromString(req.Max)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget maximum must be a valid decimal number")
	}

	band, err := profile.NewBudgetBand(min, max)
	if err != nil {
		return nil, err
	}
	if err := p.SetBudgetBand(band); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// Submit submits the profile for activation
func (s *BusinessService) Submit(ctx context.Context, tenantID, userID uuid.UUID) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := p.SubmitForReview(tenant.Config.ComplianceReview); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	s.publishEvents(ctx, p)

	s.logger.Info("Business profile submitted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("profile_id", p.ID.String()),
		zap.String("status", p.Status.String()))

	return toBusinessProfileResponse(p), nil
}

// Approve activates a profile awaiting compliance review
func (s *BusinessService) Approve(ctx context.Context, tenantID, profileID uuid.UUID) (*BusinessProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.BusinessProfile) error {
		return p.Approve()
	})
}

// Reject sends a profile back to the business with a reason
func (s *BusinessService) Reject(ctx context.Context, tenantID, profileID uuid.UUID, req RejectProfileRequest) (*BusinessProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.BusinessProfile) error {
		return p.Reject(req.Reason)
	})
}

// Suspend takes an active profile off the marketplace
func (s *BusinessService) Suspend(ctx context.Context, tenantID, profileID uuid.UUID, req SuspendProfileRequest) (*BusinessProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.BusinessProfile) error {
		return p.Suspend(req.Reason)
	})
}

// Reinstate restores a suspended profile
func (s *BusinessService) Reinstate(ctx context.Context, tenantID, profileID uuid.UUID) (*BusinessProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.BusinessProfile) error {
		return p.Reinstate()
	})
}

func (s *BusinessService) transition(ctx context.Context, tenantID, profileID uuid.UUID, apply func(*profile.BusinessProfile) error) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByIDForTenant(ctx, tenantID, profileID)
	if err != nil {
		return nil, err
	}

	if err := apply(p); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	s.publishEvents(ctx, p)
	return toBusinessProfileResponse(p), nil
}

// List returns business profiles for the tenant with filtering
func (s *BusinessService) List(ctx context.Context, tenantID uuid.UUID, req ListProfilesRequest) ([]BusinessProfileListItemResponse, int64, error) {
	filter := buildProfileFilter(req)

	var (
		profiles []profile.BusinessProfile
		err      error
	)
	if req.Status != "" {
		profiles, err = s.profileRepo.FindByStatus(ctx, tenantID, profile.ProfileStatus(req.Status), filter)
	} else {
		profiles, err = s.profileRepo.FindAllForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list business profiles: %w", err)
	}

	total, err := s.profileRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count business profiles: %w", err)
	}

	items := make([]BusinessProfileListItemResponse, 0, len(profiles))
	for idx := range profiles {
		items = append(items, toBusinessProfileListItem(&profiles[idx]))
	}
	return items, total, nil
}

// CreateMediaAsset registers an upload intent and returns a presigned URL
func (s *BusinessService) CreateMediaAsset(ctx context.Context, tenantID, userID uuid.UUID, req CreateMediaAssetRequest) (*UploadIntentResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !identity.PlanHasFeature(tenant.Plan, identity.FeatureMediaKit) {
		return nil, shared.ErrSubscriptionNeeded
	}

	maxAssets := 0
	if limit := identity.GetPlanFeatureLimit(tenant.Plan, identity.FeatureMediaKit); limit != nil {
		maxAssets = *limit
	}

	objectKey := mediaObjectKey(tenantID, p.ID, req.FileName)
	asset, err := p.AddMediaAsset(profile.MediaKind(req.Kind), req.Title, objectKey, req.ContentType, maxAssets)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, objectKey, req.ContentType, uploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &UploadIntentResponse{
		Asset:     toMediaAssetResponse(*asset),
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmMediaAsset marks an asset as uploaded and ready
func (s *BusinessService) ConfirmMediaAsset(ctx context.Context, tenantID, userID, assetID uuid.UUID, req ConfirmMediaAssetRequest) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.ConfirmMediaAsset(assetID, req.SizeBytes); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return toBusinessProfileResponse(p), nil
}

// RemoveMediaAsset removes an asset and deletes the stored object
func (s *BusinessService) RemoveMediaAsset(ctx context.Context, tenantID, userID, assetID uuid.UUID) (*BusinessProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	var objectKey string
	for _, a := range p.MediaAssets {
		if a.ID == assetID {
			objectKey = a.ObjectKey
		}
	}

	if err := p.RemoveMediaAsset(assetID); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	if objectKey != "" {
		if err := s.storage.DeleteObject(ctx, objectKey); err != nil {
			s.logger.Warn("Failed to delete media object",
				zap.String("object_key", objectKey),
				zap.Error(err))
		}
	}

	return toBusinessProfileResponse(p), nil
}

func (s *BusinessService) publishEvents(ctx context.Context, p *profile.BusinessProfile) {
	if s.eventPublisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish business profile events",
			zap.String("profile_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}
