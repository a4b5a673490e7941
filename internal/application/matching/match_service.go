package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultResultLimit = 20
	defaultCacheTTL    = 15 * time.Minute
)

// MatchAPIRequest is the payload sent to the external matching API
type MatchAPIRequest struct {
	TenantID   uuid.UUID         `json:"tenant_id"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	Criteria   matching.Criteria `json:"criteria"`
	Limit      int               `json:"limit"`
}

// MatchAPIResponse is the external matching API's answer
type MatchAPIResponse struct {
	Results []matching.MatchResult `json:"results"`
}

// MatchClient calls the external matching API
type MatchClient interface {
	Match(ctx context.Context, req MatchAPIRequest) (*MatchAPIResponse, error)
}

// ResultCache caches match results per criteria fingerprint
type ResultCache interface {
	Get(ctx context.Context, key string) ([]matching.MatchResult, bool, error)
	Set(ctx context.Context, key string, results []matching.MatchResult, ttl time.Duration) error
}

// QuotaChecker verifies plan quotas before a run starts
type QuotaChecker interface {
	CheckMatchRunQuota(ctx context.Context, tenantID uuid.UUID) error
}

// MatchService runs athlete matching for campaigns.
// The external API is the primary path; the local scorer over the
// profile repository is the fallback when the API is down or unset.
type MatchService struct {
	matchRunRepo    matching.MatchRunRepository
	campaignRepo    campaign.CampaignRepository
	businessRepo    profile.BusinessProfileRepository
	athleteRepo     profile.AthleteProfileRepository
	tenantRepo      identity.TenantRepository
	client          MatchClient
	cache           ResultCache
	quotaChecker    QuotaChecker
	eventPublisher  shared.EventPublisher
	cacheTTL        time.Duration
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewMatchService creates a matching application service
func NewMatchService(
	matchRunRepo matching.MatchRunRepository,
	campaignRepo campaign.CampaignRepository,
	businessRepo profile.BusinessProfileRepository,
	athleteRepo profile.AthleteProfileRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		matchRunRepo: matchRunRepo,
		campaignRepo: campaignRepo,
		businessRepo: businessRepo,
		athleteRepo:  athleteRepo,
		tenantRepo:   tenantRepo,
		cacheTTL:     defaultCacheTTL,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *MatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClient sets the external matching API client
func (s *MatchService) SetClient(client MatchClient) {
	s.client = client
}

// SetCache sets the match result cache
func (s *MatchService) SetCache(cache ResultCache, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// SetQuotaChecker sets the quota checker consulted before a run
func (s *MatchService) SetQuotaChecker(checker QuotaChecker) {
	s.quotaChecker = checker
}

// SetBusinessMetrics sets the business metrics collector
func (s *MatchService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Run executes a match for a campaign and persists the run
func (s *MatchService) Run(ctx context.Context, tenantID, userID uuid.UUID, req RunMatchRequest) (*MatchRunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "run")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCampaignID, req.CampaignID.String(),
	)

	c, err := s.campaignRepo.FindByIDForTenant(ctx, tenantID, req.CampaignID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.authorize(ctx, tenantID, userID, c); err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("CAMPAIGN_NOT_ACTIVE", "Matching requires a published campaign")
	}
	if c.Criteria.IsEmpty() {
		return nil, shared.NewDomainError("CRITERIA_MISSING", "Campaign has no target criteria")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.IsSubscriptionExpired() {
		return nil, shared.ErrSubscriptionNeeded
	}
	if s.quotaChecker != nil {
		if err := s.quotaChecker.CheckMatchRunQuota(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	runsToday, err := s.matchRunRepo.CountCreatedSince(ctx, tenantID, dayStart)
	if err != nil {
		return nil, err
	}
	if !tenant.CanRunMatch(int(runsToday)) {
		return nil, shared.ErrQuotaExceeded
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}
	fingerprint := c.Criteria.Fingerprint()

	run, err := matching.NewMatchRun(tenantID, c.ID, userID, fingerprint)
	if err != nil {
		return nil, err
	}

	if results, ok := s.cachedResults(ctx, tenantID, c.ID, fingerprint); ok {
		if len(results) > limit {
			results = results[:limit]
		}
		if err := run.Complete(matching.MatchSourceCache, results); err != nil {
			return nil, err
		}
		return s.saveRun(ctx, run)
	}

	criteria := matching.Criteria{
		Sports:           c.Criteria.Sports,
		Divisions:        c.Criteria.Divisions,
		Regions:          c.Criteria.Regions,
		ContentTypes:     c.Criteria.ContentTypes,
		MinFollowers:     c.Criteria.MinFollowers,
		BudgetPerAthlete: c.BudgetAmount,
	}

	source := matching.MatchSourceAPI
	results, err := s.matchViaAPI(ctx, tenantID, c.ID, criteria, limit)
	if err != nil {
		s.logger.Warn("matching API unavailable, using local scorer",
			zap.String("tenant_id", tenantID.String()),
			zap.String("campaign_id", c.ID.String()),
			zap.Error(err))
		source = matching.MatchSourceFallback
		results, err = s.matchLocally(ctx, tenantID, criteria, limit)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		if failErr := run.Fail(err.Error()); failErr != nil {
			return nil, failErr
		}
		if _, saveErr := s.saveRun(ctx, run); saveErr != nil {
			return nil, saveErr
		}
		return nil, shared.NewDomainError("MATCH_FAILED", "Matching is temporarily unavailable")
	}

	if err := run.Complete(source, results); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrMatchRunID, run.ID.String(),
		telemetry.SpanAttrScoreSource, string(source),
	)
	if s.businessMetrics != nil {
		scoreSource := telemetry.ScoreSourceAPI
		if source == matching.MatchSourceFallback {
			scoreSource = telemetry.ScoreSourceLocal
		}
		s.businessMetrics.RecordMatchRun(ctx, tenantID, scoreSource)
	}
	s.cacheResults(ctx, tenantID, c.ID, fingerprint, results)
	return s.saveRun(ctx, run)
}

// GetLatest returns the most recent completed run for a campaign
func (s *MatchService) GetLatest(ctx context.Context, tenantID, campaignID uuid.UUID) (*MatchRunResponse, error) {
	run, err := s.matchRunRepo.FindLatestByCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	return toMatchRunResponse(run), nil
}

// Get returns a single match run
func (s *MatchService) Get(ctx context.Context, tenantID, runID uuid.UUID) (*MatchRunResponse, error) {
	run, err := s.matchRunRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return toMatchRunResponse(run), nil
}

// ListByCampaign returns run history for a campaign
func (s *MatchService) ListByCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, page, pageSize int) ([]MatchRunResponse, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	runs, err := s.matchRunRepo.FindByCampaign(ctx, tenantID, campaignID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]MatchRunResponse, 0, len(runs))
	for i := range runs {
		items = append(items, *toMatchRunResponse(&runs[i]))
	}
	return items, nil
}

func (s *MatchService) matchViaAPI(ctx context.Context, tenantID, campaignID uuid.UUID, criteria matching.Criteria, limit int) ([]matching.MatchResult, error) {
	if s.client == nil {
		return nil, errors.New("no matching API configured")
	}
	resp, err := s.client.Match(ctx, MatchAPIRequest{
		TenantID:   tenantID,
		CampaignID: campaignID,
		Criteria:   criteria,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (s *MatchService) matchLocally(ctx context.Context, tenantID uuid.UUID, criteria matching.Criteria, limit int) ([]matching.MatchResult, error) {
	profiles, err := s.athleteRepo.SearchActive(ctx, tenantID, profile.AthleteSearch{
		Sports:       criteria.Sports,
		Divisions:    criteria.Divisions,
		Regions:      criteria.Regions,
		ContentTags:  criteria.ContentTypes,
		MinFollowers: 0, // score below-minimum athletes instead of dropping them
	})
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}

	candidates := make([]matching.Candidate, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		candidates = append(candidates, matching.Candidate{
			ProfileID:         p.ID,
			DisplayName:       p.DisplayName,
			Sport:             p.Sport,
			Division:          p.Division,
			TotalFollowers:    p.TotalFollowers(),
			ContentTags:       p.ContentTags,
			CompensationFloor: p.CompensationFloor,
		})
	}
	return matching.RankCandidates(candidates, criteria, limit), nil
}

func (s *MatchService) cachedResults(ctx context.Context, tenantID, campaignID uuid.UUID, fingerprint string) ([]matching.MatchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	results, ok, err := s.cache.Get(ctx, matchCacheKey(tenantID, campaignID, fingerprint))
	if err != nil {
		s.logger.Warn("match cache read failed", zap.Error(err))
		return nil, false
	}
	return results, ok
}

func (s *MatchService) cacheResults(ctx context.Context, tenantID, campaignID uuid.UUID, fingerprint string, results []matching.MatchResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, matchCacheKey(tenantID, campaignID, fingerprint), results, s.cacheTTL); err != nil {
		s.logger.Warn("match cache write failed", zap.Error(err))
	}
}

func (s *MatchService) saveRun(ctx context.Context, run *matching.MatchRun) (*MatchRunResponse, error) {
	events := run.GetDomainEvents()
	if err := s.matchRunRepo.SaveWithLockAndEvents(ctx, run, events); err != nil {
		return nil, err
	}
	run.ClearDomainEvents()
	return toMatchRunResponse(run), nil
}

// authorize ensures the caller's business profile owns the campaign
func (s *MatchService) authorize(ctx context.Context, tenantID, userID uuid.UUID, c *campaign.Campaign) error {
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

func matchCacheKey(tenantID, campaignID uuid.UUID, fingerprint string) string {
	return "match:" + tenantID.String() + ":" + campaignID.String() + ":" + fingerprint
}
