package bundle

import (
	"context"
	"errors"
	"time"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/nilmarket/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// idempotencyTTL bounds how long a create request's key is held in the
// fast-path store; the bundle row itself dedupes beyond that
const idempotencyTTL = 24 * time.Hour

// QuotaChecker verifies plan quotas before a bundle is created
type QuotaChecker interface {
	CheckBundleQuota(ctx context.Context, tenantID uuid.UUID) error
}

// BundleService drives bundle creation, compliance review and the offer lifecycle
type BundleService struct {
	bundleRepo       bundle.BundleRepository
	campaignRepo     campaign.CampaignRepository
	businessRepo     profile.BusinessProfileRepository
	athleteRepo      profile.AthleteProfileRepository
	tenantRepo       identity.TenantRepository
	quotaChecker     QuotaChecker
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
	businessMetrics  *telemetry.BusinessMetrics
}

// NewBundleService creates a bundle application service
func NewBundleService(
	bundleRepo bundle.BundleRepository,
	campaignRepo campaign.CampaignRepository,
	businessRepo profile.BusinessProfileRepository,
	athleteRepo profile.AthleteProfileRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *BundleService {
	return &BundleService{
		bundleRepo:   bundleRepo,
		campaignRepo: campaignRepo,
		businessRepo: businessRepo,
		athleteRepo:  athleteRepo,
		tenantRepo:   tenantRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *BundleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetQuotaChecker sets the quota checker consulted on create
func (s *BundleService) SetQuotaChecker(checker QuotaChecker) {
	s.quotaChecker = checker
}

// SetBusinessMetrics sets the business metrics collector
func (s *BundleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

func (s *BundleService) recordOfferDecision(ctx context.Context, tenantID uuid.UUID, decision telemetry.OfferDecision, amount decimal.Decimal) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOfferDecisionWithAmount(ctx, tenantID, decision, amount)
	}
}

// SetIdempotencyStore sets the fast-path store for create request dedupe
func (s *BundleService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// Create builds a draft bundle with its offers in one transaction.
// Retried requests carrying the same idempotency key return the
// original bundle instead of creating a duplicate.
func (s *BundleService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateBundleRequest) (*BundleResponse, error) {
	if existing, err := s.bundleRepo.FindByIdempotencyKey(ctx, tenantID, req.IdempotencyKey); err == nil {
		return toBundleResponse(existing), nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	marked := false
	if s.idempotencyStore != nil {
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, idempotencyCacheKey(tenantID, req.IdempotencyKey), idempotencyTTL)
		if err != nil {
			s.logger.Warn("idempotency store unavailable, falling back to repository dedupe", zap.Error(err))
		} else if !fresh {
			// A concurrent request holds the key but its row is not
			// visible yet; report the conflict rather than double-create
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "A bundle with this idempotency key is already being created")
		} else {
			marked = true
		}
	}

	resp, err := s.create(ctx, tenantID, userID, req)
	if err != nil && marked {
		// The attempt left no row behind; free the key so a retry can run
		if relErr := s.idempotencyStore.Release(ctx, idempotencyCacheKey(tenantID, req.IdempotencyKey)); relErr != nil {
			s.logger.Warn("failed to release idempotency key after failed create", zap.Error(relErr))
		}
	}
	return resp, err
}

func (s *BundleService) create(ctx context.Context, tenantID, userID uuid.UUID, req CreateBundleRequest) (*BundleResponse, error) {
	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("CAMPAIGN_NOT_ACTIVE", "Bundles can only be created for published campaigns")
	}
	bp, err := s.businessRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrForbidden
		}
		return nil, err
	}
	if bp.ID != c.BusinessProfileID {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.IsSubscriptionExpired() {
		return nil, shared.ErrSubscriptionNeeded
	}
	if s.quotaChecker != nil {
		if err := s.quotaChecker.CheckBundleQuota(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.UTC)
	createdThisMonth, err := s.bundleRepo.CountCreatedSince(ctx, tenantID, monthStart)
	if err != nil {
		return nil, err
	}
	if !tenant.CanCreateBundle(int(createdThisMonth)) {
		return nil, shared.ErrQuotaExceeded
	}

	totalBudget, err := valueobject.NewMoneyUSDFromString(req.TotalBudget)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Bundle budget is not a valid number")
	}
	defaultAmount, err := valueobject.NewMoneyUSDFromString(req.DefaultOfferAmount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Default offer amount is not a valid number")
	}

	b, err := bundle.NewBundle(tenantID, userID, c.ID, req.Name, req.IdempotencyKey, totalBudget, defaultAmount, req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Offers {
		athlete, err := s.athleteRepo.FindByIDForTenant(ctx, tenantID, input.AthleteProfileID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("ATHLETE_NOT_FOUND", "Athlete profile not found")
			}
			return nil, err
		}
		if !athlete.IsActive() {
			return nil, shared.NewDomainError("ATHLETE_NOT_ACTIVE", "Offers can only target approved athlete profiles")
		}

		var amount *decimal.Decimal
		if input.Amount != nil {
			parsed, err := decimal.NewFromString(*input.Amount)
			if err != nil {
				return nil, shared.NewDomainError("INVALID_AMOUNT", "Offer amount is not a valid number")
			}
			amount = &parsed
		}
		if _, err := b.AddOffer(athlete.ID, athlete.UserID, amount); err != nil {
			return nil, err
		}
	}

	events := b.GetDomainEvents()
	if err := s.bundleRepo.SaveWithLockAndEvents(ctx, b, events); err != nil {
		return nil, err
	}
	b.ClearDomainEvents()

	s.logger.Info("bundle created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bundle_id", b.ID.String()),
		zap.String("campaign_id", c.ID.String()),
		zap.Int("offers", b.OfferCount()))

	return toBundleResponse(b), nil
}

// Get returns a single bundle
func (s *BundleService) Get(ctx context.Context, tenantID, bundleID uuid.UUID) (*BundleResponse, error) {
	b, err := s.bundleRepo.FindByIDForTenant(ctx, tenantID, bundleID)
	if err != nil {
		return nil, err
	}
	return toBundleResponse(b), nil
}

// Submit finalizes a draft bundle. Tenants flagged for compliance review
// park the bundle until an admin approves; otherwise dispatch is requested
// through the outbox immediately.
func (s *BundleService) Submit(ctx context.Context, tenantID, userID, bundleID uuid.UUID) (*BundleResponse, error) {
	b, err := s.bundleRepo.FindByIDForTenant(ctx, tenantID, bundleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenantID, userID, b); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := b.Submit(tenant.RequiresComplianceReview()); err != nil {
		return nil, err
	}
	return s.saveWithOutbox(ctx, b)
}

// Approve releases a bundle held for compliance review
func (s *BundleService) Approve(ctx context.Context, tenantID, reviewerID, bundleID uuid.UUID) (*BundleResponse, error) {
	b, err := s.bundleRepo.FindByIDForTenant(ctx, tenantID, bundleID)
	if err != nil {
		return nil, err
	}
	if err := b.Approve(reviewerID); err != nil {
		return nil, err
	}
	return s.saveWithOutbox(ctx, b)
}

// Reject rejects a bundle held for compliance review, withdrawing its offers
func (s *BundleService) Reject(ctx context.Context, tenantID, reviewerID, bundleID uuid.UUID, req RejectBundleRequest) (*BundleResponse, error) {
	b, err := s.bundleRepo.FindByIDForTenant(ctx, tenantID, bundleID)
	if err != nil {
		return nil, err
	}
	if err := b.RejectReview(reviewerID, req.Reason); err != nil {
		return nil, err
	}
	return s.saveWithOutbox(ctx, b)
}

// MarkDispatched records that the dispatch worker enqueued every offer notification
func (s *BundleService) MarkDispatched(ctx context.Context, tenantID, bundleID uuid.UUID) error {
	b, err := s.bundleRepo.FindByIDForTenant(ctx, tenantID, bundleID)
	if err != nil {
		return err
	}
	if err := b.MarkDispatched(); err != nil {
		return err
	}
	for idx := range b.Offers {
		if b.Offers[idx].Status == bundle.OfferStatusPending {
			if err := b.MarkOfferSent(b.Offers[idx].ID); err != nil {
				return err
			}
		}
	}
	if _, err := s.saveWithOutbox(ctx, b); err != nil {
		return err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordBundleDispatched(ctx, tenantID)
	}
	return nil
}

// AcceptOffer records an athlete's acceptance of their offer
func (s *BundleService) AcceptOffer(ctx context.Context, tenantID, athleteUserID, offerID uuid.UUID) (*OfferResponse, error) {
	return s.respondToOffer(ctx, tenantID, offerID, telemetry.OfferDecisionAccepted, func(b *bundle.Bundle) error {
		return b.AcceptOffer(offerID, athleteUserID)
	})
}

// DeclineOffer records an athlete's decline of their offer
func (s *BundleService) DeclineOffer(ctx context.Context, tenantID, athleteUserID, offerID uuid.UUID, req DeclineOfferRequest) (*OfferResponse, error) {
	return s.respondToOffer(ctx, tenantID, offerID, telemetry.OfferDecisionDeclined, func(b *bundle.Bundle) error {
		return b.DeclineOffer(offerID, athleteUserID, req.Reason)
	})
}

// WithdrawOffer lets the bundle owner pull back an unanswered offer
func (s *BundleService) WithdrawOffer(ctx context.Context, tenantID, userID, offerID uuid.UUID) (*OfferResponse, error) {
	b, err := s.bundleRepo.FindByOffer(ctx, tenantID, offerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenantID, userID, b); err != nil {
		return nil, err
	}
	if err := b.WithdrawOffer(offerID); err != nil {
		return nil, err
	}
	if _, err := s.saveWithOutbox(ctx, b); err != nil {
		return nil, err
	}
	offer := b.GetOffer(offerID)
	s.recordOfferDecision(ctx, tenantID, telemetry.OfferDecisionWithdrawn, offer.Amount)
	resp := toOfferResponse(b, offer)
	return &resp, nil
}

// ListOffersForAthlete returns the athlete's offer inbox across bundles
func (s *BundleService) ListOffersForAthlete(ctx context.Context, tenantID, athleteUserID uuid.UUID, req ListAthleteOffersRequest) ([]OfferResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	bundles, err := s.bundleRepo.FindOffersForAthlete(ctx, tenantID, athleteUserID, filter)
	if err != nil {
		return nil, err
	}

	offers := make([]OfferResponse, 0, len(bundles))
	for i := range bundles {
		b := &bundles[i]
		for idx := range b.Offers {
			if b.Offers[idx].AthleteUserID == athleteUserID {
				offers = append(offers, toOfferResponse(b, &b.Offers[idx]))
			}
		}
	}
	return offers, nil
}

// List returns bundles for the tenant, optionally filtered by status or campaign
func (s *BundleService) List(ctx context.Context, tenantID uuid.UUID, req ListBundlesRequest) ([]BundleListItemResponse, int64, error) {
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

	var (
		bundles []bundle.Bundle
		err     error
	)
	switch {
	case req.CampaignID != uuid.Nil:
		bundles, err = s.bundleRepo.FindByCampaign(ctx, tenantID, req.CampaignID, filter)
	case req.Status != "":
		bundles, err = s.bundleRepo.FindByStatus(ctx, tenantID, bundle.BundleStatus(req.Status), filter)
	default:
		bundles, err = s.bundleRepo.FindAllForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.bundleRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]BundleListItemResponse, 0, len(bundles))
	for i := range bundles {
		items = append(items, toBundleListItem(&bundles[i]))
	}
	return items, total, nil
}

// ListPendingReview returns bundles awaiting compliance review
func (s *BundleService) ListPendingReview(ctx context.Context, tenantID uuid.UUID, req ListBundlesRequest) ([]BundleListItemResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	bundles, err := s.bundleRepo.FindPendingReview(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]BundleListItemResponse, 0, len(bundles))
	for i := range bundles {
		items = append(items, toBundleListItem(&bundles[i]))
	}
	return items, nil
}

// ExpireDue sweeps bundles whose offer window has passed.
// Called by the scheduler; returns the number of offers expired.
func (s *BundleService) ExpireDue(ctx context.Context, before time.Time, limit int) (int, error) {
	bundles, err := s.bundleRepo.FindExpirable(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range bundles {
		b := &bundles[i]
		n := b.ExpireOffers(before)
		if n == 0 {
			continue
		}
		if _, err := s.saveWithOutbox(ctx, b); err != nil {
			s.logger.Error("failed to persist expired offers",
				zap.String("bundle_id", b.ID.String()),
				zap.Error(err))
			continue
		}
		if s.businessMetrics != nil {
			for j := 0; j < n; j++ {
				s.businessMetrics.RecordOfferDecision(ctx, b.TenantID, telemetry.OfferDecisionExpired)
			}
		}
		expired += n
	}
	return expired, nil
}

func (s *BundleService) respondToOffer(ctx context.Context, tenantID, offerID uuid.UUID, decision telemetry.OfferDecision, apply func(*bundle.Bundle) error) (*OfferResponse, error) {
	b, err := s.bundleRepo.FindByOffer(ctx, tenantID, offerID)
	if err != nil {
		return nil, err
	}
	if err := apply(b); err != nil {
		return nil, err
	}
	if _, err := s.saveWithOutbox(ctx, b); err != nil {
		return nil, err
	}
	offer := b.GetOffer(offerID)
	s.recordOfferDecision(ctx, tenantID, decision, offer.Amount)
	resp := toOfferResponse(b, offer)
	return &resp, nil
}

// saveWithOutbox persists the bundle and its pending events atomically
func (s *BundleService) saveWithOutbox(ctx context.Context, b *bundle.Bundle) (*BundleResponse, error) {
	events := b.GetDomainEvents()
	if err := s.bundleRepo.SaveWithLockAndEvents(ctx, b, events); err != nil {
		return nil, err
	}
	b.ClearDomainEvents()
	return toBundleResponse(b), nil
}

// authorize ensures the caller's business profile owns the bundle's campaign
func (s *BundleService) authorize(ctx context.Context, tenantID, userID uuid.UUID, b *bundle.Bundle) error {
	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, b.CampaignID)
	if err != nil {
		return err
	}
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

func idempotencyCacheKey(tenantID uuid.UUID, key string) string {
	return "bundle:create:" + tenantID.String() + ":" + key
}
