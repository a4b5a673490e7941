package profile

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage is the subset of the object store the profile services
// use for media kits. Satisfied by the S3 storage and the stub.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// uploadURLTTL bounds how long a presigned media upload stays valid
const uploadURLTTL = 15 * time.Minute

// AthleteService manages athlete profiles and their media kits
type AthleteService struct {
	profileRepo    profile.AthleteProfileRepository
	tenantRepo     identity.TenantRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAthleteService creates a new AthleteService
func NewAthleteService(
	profileRepo profile.AthleteProfileRepository,
	tenantRepo identity.TenantRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *AthleteService {
	return &AthleteService{
		profileRepo: profileRepo,
		tenantRepo:  tenantRepo,
		storage:     storage,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AthleteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates an athlete profile for the user
// A user can own at most one athlete profile per tenant
func (s *AthleteService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateAthleteProfileRequest) (*AthleteProfileResponse, error) {
	exists, err := s.profileRepo.ExistsForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("PROFILE_EXISTS", "User already has an athlete profile")
	}

	p, err := profile.NewAthleteProfile(tenantID, userID, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.Sport != "" || req.School != "" || req.Division != "" {
		if err := p.UpdateBasics(req.DisplayName, req.Sport, req.School, req.Division, 0); err != nil {
			return nil, err
		}
	}

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}

	s.publishEvents(ctx, p)

	s.logger.Info("Athlete profile created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("profile_id", p.ID.String()))

	return toAthleteProfileResponse(p), nil
}

// GetMine returns the profile owned by the calling user
func (s *AthleteService) GetMine(ctx context.Context, tenantID, userID uuid.UUID) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return toAthleteProfileResponse(p), nil
}

// Get returns a profile by ID within the tenant
func (s *AthleteService) Get(ctx context.Context, tenantID, profileID uuid.UUID) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByIDForTenant(ctx, tenantID, profileID)
	if err != nil {
		return nil, err
	}
	return toAthleteProfileResponse(p), nil
}

// UpdateBasics updates identity and academic info on the user's profile
func (s *AthleteService) UpdateBasics(ctx context.Context, tenantID, userID uuid.UUID, req UpdateAthleteBasicsRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateBasics(req.DisplayName, req.Sport, req.School, req.Division, req.GraduationYear); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// UpdateBio updates the bio section
func (s *AthleteService) UpdateBio(ctx context.Context, tenantID, userID uuid.UUID, req UpdateBioRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateBio(req.Bio); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// SetContentTags replaces the content tag section
func (s *AthleteService) SetContentTags(ctx context.Context, tenantID, userID uuid.UUID, req SetContentTagsRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.SetContentTags(req.Tags); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// SetSocialAccounts replaces the linked social accounts
func (s *AthleteService) SetSocialAccounts(ctx context.Context, tenantID, userID uuid.UUID, req SetSocialAccountsRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	accounts := make([]profile.SocialAccount, 0, len(req.Accounts))
	for _, in := range req.Accounts {
		acc, err := profile.NewSocialAccount(in.Platform, in.Handle, in.Followers)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err := p.SetSocialAccounts(accounts); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// SetCompensationFloor sets the minimum deal amount
func (s *AthleteService) SetCompensationFloor(ctx context.Context, tenantID, userID uuid.UUID, req SetCompensationFloorRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	floor, err := valueobject.NewMoneyUSDFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_COMPENSATION", "Amount must be a valid decimal number")
	}
	if err := p.SetCompensationFloor(floor); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// Submit submits the profile for activation
// Tenants flagged for compliance review hold the profile in IN_REVIEW
func (s *AthleteService) Submit(ctx context.Context, tenantID, userID uuid.UUID) (*AthleteProfileResponse, error) {
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
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}

	s.publishEvents(ctx, p)

	s.logger.Info("Athlete profile submitted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("profile_id", p.ID.String()),
		zap.String("status", p.Status.String()))

	return toAthleteProfileResponse(p), nil
}

// Approve activates a profile awaiting compliance review
func (s *AthleteService) Approve(ctx context.Context, tenantID, profileID uuid.UUID) (*AthleteProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.AthleteProfile) error {
		return p.Approve()
	})
}

// Reject sends a profile back to the athlete with a reason
func (s *AthleteService) Reject(ctx context.Context, tenantID, profileID uuid.UUID, req RejectProfileRequest) (*AthleteProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.AthleteProfile) error {
		return p.Reject(req.Reason)
	})
}

// Suspend takes an active profile off the marketplace
func (s *AthleteService) Suspend(ctx context.Context, tenantID, profileID uuid.UUID, req SuspendProfileRequest) (*AthleteProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.AthleteProfile) error {
		return p.Suspend(req.Reason)
	})
}

// Reinstate restores a suspended profile
func (s *AthleteService) Reinstate(ctx context.Context, tenantID, profileID uuid.UUID) (*AthleteProfileResponse, error) {
	return s.transition(ctx, tenantID, profileID, func(p *profile.AthleteProfile) error {
		return p.Reinstate()
	})
}

func (s *AthleteService) transition(ctx context.Context, tenantID, profileID uuid.UUID, apply func(*profile.AthleteProfile) error) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByIDForTenant(ctx, tenantID, profileID)
	if err != nil {
		return nil, err
	}

	if err := apply(p); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}

	s.publishEvents(ctx, p)
	return toAthleteProfileResponse(p), nil
}

// List returns athlete profiles for the tenant with filtering
func (s *AthleteService) List(ctx context.Context, tenantID uuid.UUID, req ListProfilesRequest) ([]AthleteProfileListItemResponse, int64, error) {
	filter := buildProfileFilter(req)

	var (
		profiles []profile.AthleteProfile
		err      error
	)
	if req.Status != "" {
		profiles, err = s.profileRepo.FindByStatus(ctx, tenantID, profile.ProfileStatus(req.Status), filter)
	} else {
		profiles, err = s.profileRepo.FindAllForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list athlete profiles: %w", err)
	}

	total, err := s.profileRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count athlete profiles: %w", err)
	}

	items := make([]AthleteProfileListItemResponse, 0, len(profiles))
	for idx := range profiles {
		items = append(items, toAthleteProfileListItem(&profiles[idx]))
	}
	return items, total, nil
}

// CreateMediaAsset registers an upload intent and returns a presigned URL
// The media kit size is capped by the tenant plan
func (s *AthleteService) CreateMediaAsset(ctx context.Context, tenantID, userID uuid.UUID, req CreateMediaAssetRequest) (*UploadIntentResponse, error) {
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
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
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
func (s *AthleteService) ConfirmMediaAsset(ctx context.Context, tenantID, userID, assetID uuid.UUID, req ConfirmMediaAssetRequest) (*AthleteProfileResponse, error) {
	p, err := s.profileRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := p.ConfirmMediaAsset(assetID, req.SizeBytes); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}
	return toAthleteProfileResponse(p), nil
}

// RemoveMediaAsset removes an asset from the media kit and deletes the object
func (s *AthleteService) RemoveMediaAsset(ctx context.Context, tenantID, userID, assetID uuid.UUID) (*AthleteProfileResponse, error) {
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
		return nil, fmt.Errorf("failed to save athlete profile: %w", err)
	}

	if objectKey != "" {
		if err := s.storage.DeleteObject(ctx, objectKey); err != nil {
			s.logger.Warn("Failed to delete media object",
				zap.String("object_key", objectKey),
				zap.Error(err))
		}
	}

	return toAthleteProfileResponse(p), nil
}

func (s *AthleteService) publishEvents(ctx context.Context, p *profile.AthleteProfile) {
	if s.eventPublisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish athlete profile events",
			zap.String("profile_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}

// buildProfileFilter converts a listing request into a repository filter
func buildProfileFilter(req ListProfilesRequest) shared.Filter {
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
	filter.Search = strings.TrimSpace(req.Search)
	return filter
}

// mediaObjectKey builds the storage key for a media kit upload
func mediaObjectKey(tenantID, profileID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("tenants/%s/profiles/%s/media/%s%s", tenantID, profileID, uuid.New(), ext)
}
