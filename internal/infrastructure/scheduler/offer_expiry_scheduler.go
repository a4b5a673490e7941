package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OfferExpirer sweeps dispatched bundles whose offers passed their deadline
type OfferExpirer interface {
	ExpireDue(ctx context.Context, before time.Time, limit int) (int, error)
}

// OfferExpirySchedulerConfig holds configuration for the offer expiry scheduler
type OfferExpirySchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// CheckInterval is how often the expiry sweep runs
	CheckInterval time.Duration

	// BatchSize limits how many bundles a single sweep processes
	BatchSize int

	// SweepTimeout is the maximum time for a single sweep
	SweepTimeout time.Duration
}

// DefaultOfferExpirySchedulerConfig returns default configuration
func DefaultOfferExpirySchedulerConfig() OfferExpirySchedulerConfig {
	return OfferExpirySchedulerConfig{
		Enabled:       true,
		CheckInterval: 5 * time.Minute,
		BatchSize:     100,
		SweepTimeout:  2 * time.Minute,
	}
}

// OfferExpiryScheduler periodically expires pending offers on dispatched
// bundles whose expiry deadline has passed. Bundles whose offers all
// resolved get closed by the same sweep.
type OfferExpiryScheduler struct {
	expirer   OfferExpirer
	logger    *zap.Logger
	config    OfferExpirySchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOfferExpiryScheduler creates a new offer expiry scheduler
func NewOfferExpiryScheduler(
	expirer OfferExpirer,
	logger *zap.Logger,
	config OfferExpirySchedulerConfig,
) *OfferExpiryScheduler {
	return &OfferExpiryScheduler{
		expirer: expirer,
		logger:  logger,
		config:  config,
	}
}

// Start starts the offer expiry scheduler
func (s *OfferExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Offer expiry scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Offer expiry scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("batch_size", s.config.BatchSize),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *OfferExpiryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Offer expiry scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Offer expiry scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *OfferExpiryScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *OfferExpiryScheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	expired, err := s.expirer.ExpireDue(sweepCtx, time.Now(), s.config.BatchSize)
	if err != nil {
		s.logger.Error("Offer expiry sweep failed", zap.Error(err))
		return
	}

	if expired > 0 {
		s.logger.Info("Offer expiry sweep completed", zap.Int("bundles_expired", expired))
	}
}
