package access

import (
	"context"
	"errors"

	"github.com/nilmarket/backend/internal/domain/access"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecideRequest carries a route's requirement for an access check
type DecideRequest struct {
	Public              bool     `json:"public"`
	RequiredRoles       []string `json:"required_roles" binding:"max=10,dive,min=1,max=50"`
	MinCompletion       int      `json:"min_completion" binding:"min=0,max=100"`
	RequireSubscription bool     `json:"require_subscription"`
}

// DecisionResponse is the outcome of an access check
type DecisionResponse struct {
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// AccessService evaluates route access for a caller.
// It assembles the caller's auth and profile state and delegates the
// actual rules to the access decision table, which the gating
// middleware shares.
type AccessService struct {
	athleteRepo  profile.AthleteProfileRepository
	businessRepo profile.BusinessProfileRepository
	tenantRepo   identity.TenantRepository
	logger       *zap.Logger
}

// NewAccessService creates an access application service
func NewAccessService(
	athleteRepo profile.AthleteProfileRepository,
	businessRepo profile.BusinessProfileRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		athleteRepo:  athleteRepo,
		businessRepo: businessRepo,
		tenantRepo:   tenantRepo,
		logger:       logger,
	}
}

// Decide evaluates a route requirement for the caller.
// A nil userID means the caller is unauthenticated.
func (s *AccessService) Decide(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, roles []string, req DecideRequest) (*DecisionResponse, error) {
	requirement := access.Requirement{
		Public:              req.Public,
		RequiredRoles:       req.RequiredRoles,
		MinCompletion:       req.MinCompletion,
		RequireSubscription: req.RequireSubscription,
	}

	auth := access.AuthState{Source: access.AuthSourceNone}
	prof := access.ProfileState{}

	if userID != nil {
		auth.Source = access.AuthSourceSession
		auth.Roles = roles

		tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		auth.SubscriptionActive = tenant.IsActive() && !tenant.IsSubscriptionExpired()

		state, err := s.profileState(ctx, tenantID, *userID)
		if err != nil {
			return nil, err
		}
		prof = state
	}

	decision := access.Decide(auth, requirement, prof)
	return &DecisionResponse{
		Kind:   string(decision.Kind),
		Target: string(decision.Target),
		Reason: decision.Reason,
	}, nil
}

// profileState resolves the caller's profile, athlete first then business
func (s *AccessService) profileState(ctx context.Context, tenantID, userID uuid.UUID) (access.ProfileState, error) {
	if p, err := s.athleteRepo.FindByUser(ctx, tenantID, userID); err == nil {
		return access.ProfileState{
			Exists:            true,
			CompletionPercent: p.Completion().Percent,
			Suspended:         p.IsSuspended(),
		}, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return access.ProfileState{}, err
	}

	if p, err := s.businessRepo.FindByUser(ctx, tenantID, userID); err == nil {
		return access.ProfileState{
			Exists:            true,
			CompletionPercent: p.Completion().Percent,
			Suspended:         p.IsSuspended(),
		}, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return access.ProfileState{}, err
	}

	return access.ProfileState{}, nil
}
