// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides marketplace metrics.
// It tracks match runs, bundle dispatch, and offer decisions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	matchRunTotal          *Counter
	campaignPublishedTotal *Counter
	bundleDispatchedTotal  *Counter
	offerDecisionTotal     *Counter
	offerAmountTotal       *Counter

	// Gauge metrics (point-in-time values)
	bundlesPendingReview *Gauge
	offersOpen           *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	marketplaceProvider MarketplaceMetricsProvider
}

// MarketplaceMetricsProvider provides marketplace data for periodic metrics
// collection. This interface allows the telemetry layer to query bundle and
// offer state without depending on the bundle domain directly.
type MarketplaceMetricsProvider interface {
	// GetPendingReviewBundleCount returns the number of bundles awaiting compliance review for a tenant
	GetPendingReviewBundleCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetOpenOfferCount returns the number of offers still awaiting an athlete decision for a tenant
	GetOpenOfferCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	CollectInterval     time.Duration // Default: 5 minutes
	MarketplaceProvider MarketplaceMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		marketplaceProvider: cfg.MarketplaceProvider,
	}

	// Initialize counter metrics
	var err error

	bm.matchRunTotal, err = NewCounter(
		cfg.Meter,
		"nilmarket_match_run_total",
		"Total number of completed match runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.campaignPublishedTotal, err = NewCounter(
		cfg.Meter,
		"nilmarket_campaign_published_total",
		"Total number of campaigns published",
		"{campaigns}",
	)
	if err != nil {
		return nil, err
	}

	bm.bundleDispatchedTotal, err = NewCounter(
		cfg.Meter,
		"nilmarket_bundle_dispatched_total",
		"Total number of bundles dispatched to athletes",
		"{bundles}",
	)
	if err != nil {
		return nil, err
	}

	bm.offerDecisionTotal, err = NewCounter(
		cfg.Meter,
		"nilmarket_offer_decision_total",
		"Total number of offer decisions",
		"{offers}",
	)
	if err != nil {
		return nil, err
	}

	bm.offerAmountTotal, err = NewCounter(
		cfg.Meter,
		"nilmarket_offer_amount_total",
		"Total decided offer amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Gauge metrics filled by periodic collection
	bm.bundlesPendingReview, err = NewGauge(
		cfg.Meter,
		"nilmarket_bundles_pending_review",
		"Number of bundles awaiting compliance review",
		"{bundles}",
	)
	if err != nil {
		return nil, err
	}

	bm.offersOpen, err = NewGauge(
		cfg.Meter,
		"nilmarket_offers_open",
		"Number of offers awaiting an athlete decision",
		"{offers}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Match Metrics
// =============================================================================

// ScoreSource labels where the match scores came from.
type ScoreSource string

const (
	ScoreSourceAPI   ScoreSource = "api"
	ScoreSourceLocal ScoreSource = "local"
)

// RecordMatchRun records a completed match run and where its scores came from.
// The local source also counts fallback runs after an API failure.
func (bm *BusinessMetrics) RecordMatchRun(ctx context.Context, tenantID uuid.UUID, source ScoreSource) {
	bm.matchRunTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrScoreSource.String(string(source)),
	)
}

// RecordCampaignPublished records a campaign publish event.
func (bm *BusinessMetrics) RecordCampaignPublished(ctx context.Context, tenantID uuid.UUID) {
	bm.campaignPublishedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Bundle and Offer Metrics
// =============================================================================

// OfferDecision labels the outcome of an offer for metrics.
type OfferDecision string

const (
	OfferDecisionAccepted  OfferDecision = "accepted"
	OfferDecisionDeclined  OfferDecision = "declined"
	OfferDecisionWithdrawn OfferDecision = "withdrawn"
	OfferDecisionExpired   OfferDecision = "expired"
)

// RecordBundleDispatched records a bundle dispatch event.
func (bm *BusinessMetrics) RecordBundleDispatched(ctx context.Context, tenantID uuid.UUID) {
	bm.bundleDispatchedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOfferDecision records the outcome of an offer.
func (bm *BusinessMetrics) RecordOfferDecision(ctx context.Context, tenantID uuid.UUID, decision OfferDecision) {
	bm.offerDecisionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOfferDecision.String(string(decision)),
	)
}

// RecordOfferAmount records the amount of a decided offer.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordOfferAmount(ctx context.Context, tenantID uuid.UUID, decision OfferDecision, amountCents int64) {
	bm.offerAmountTotal.Add(ctx, amountCents,
		AttrTenantID.String(tenantID.String()),
		AttrOfferDecision.String(string(decision)),
	)
}

// RecordOfferDecisionWithAmount records both the decision count and the amount.
func (bm *BusinessMetrics) RecordOfferDecisionWithAmount(ctx context.Context, tenantID uuid.UUID, decision OfferDecision, amount decimal.Decimal) {
	bm.RecordOfferDecision(ctx, tenantID, decision)

	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOfferAmount(ctx, tenantID, decision, amountCents)
}

// RecordPendingReviewBundles records the number of bundles awaiting review.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingReviewBundles(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.bundlesPendingReview.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOpenOffers records the number of offers awaiting a decision.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenOffers(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.offersOpen.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects marketplace metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectMarketplaceMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectMarketplaceMetrics(ctx, tenantProvider)
		}
	}
}

// collectMarketplaceMetrics collects marketplace gauge metrics for all tenants.
func (bm *BusinessMetrics) collectMarketplaceMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.marketplaceProvider == nil {
		bm.logger.Debug("No marketplace provider configured, skipping gauge metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantMarketplaceMetrics(ctx, tenantID)
	}
}

// collectTenantMarketplaceMetrics collects marketplace metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantMarketplaceMetrics(ctx context.Context, tenantID uuid.UUID) {
	pendingReview, err := bm.marketplaceProvider.GetPendingReviewBundleCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get pending review bundle count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordPendingReviewBundles(ctx, tenantID, pendingReview)
	}

	openOffers, err := bm.marketplaceProvider.GetOpenOfferCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open offer count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenOffers(ctx, tenantID, openOffers)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	// Additional business attributes can be added here
	AttrOfferSource = attribute.Key("offer_source")
)
