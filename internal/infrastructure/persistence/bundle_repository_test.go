package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/nilmarket/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBundleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BundleModel{}, &models.BundleOfferModel{}))
	return db
}

func newTestBundle(t *testing.T, tenantID uuid.UUID, key string, offers int) *bundle.Bundle {
	budget := valueobject.NewMoneyUSD(decimal.NewFromInt(5000))
	defaultAmount := valueobject.NewMoneyUSD(decimal.NewFromInt(500))

	b, err := bundle.NewBundle(tenantID, uuid.New(), uuid.New(),
		"Gameday Promo", key, budget, defaultAmount, time.Now().Add(72*time.Hour))
	require.NoError(t, err)

	for i := 0; i < offers; i++ {
		_, err := b.AddOffer(uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
	}
	return b
}

func TestGormBundleRepository_SaveAndFind(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	b := newTestBundle(t, tenantID, "key-1", 3)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
	assert.Equal(t, "Gameday Promo", found.Name)
	assert.Equal(t, bundle.BundleStatusDraft, found.Status)
	require.Len(t, found.Offers, 3)
	assert.True(t, found.Offers[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, bundle.OfferStatusPending, found.Offers[0].Status)
}

func TestGormBundleRepository_FindByIdempotencyKey(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	b := newTestBundle(t, tenantID, "retry-safe-key", 1)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByIdempotencyKey(ctx, tenantID, "retry-safe-key")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	// Keys are scoped per tenant
	_, err = repo.FindByIdempotencyKey(ctx, uuid.New(), "retry-safe-key")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByIdempotencyKey(ctx, tenantID, "missing-key")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBundleRepository_FindByOffer(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	b := newTestBundle(t, tenantID, "key-2", 2)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByOffer(ctx, tenantID, b.Offers[1].ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	_, err = repo.FindByOffer(ctx, tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBundleRepository_FindOffersForAthlete(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	athleteUserID := uuid.New()

	withOffer := newTestBundle(t, tenantID, "key-3", 0)
	_, err := withOffer.AddOffer(uuid.New(), athleteUserID, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, withOffer))

	other := newTestBundle(t, tenantID, "key-4", 2)
	require.NoError(t, repo.Save(ctx, other))

	results, err := repo.FindOffersForAthlete(ctx, tenantID, athleteUserID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, withOffer.ID, results[0].ID)

	none, err := repo.FindOffersForAthlete(ctx, tenantID, uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormBundleRepository_FindExpirable(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	expired := newTestBundle(t, tenantID, "key-5", 1)
	require.NoError(t, expired.Submit(false))
	require.NoError(t, expired.MarkDispatched())
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, expired))

	live := newTestBundle(t, tenantID, "key-6", 1)
	require.NoError(t, live.Submit(false))
	require.NoError(t, live.MarkDispatched())
	require.NoError(t, repo.Save(ctx, live))

	stillDraft := newTestBundle(t, tenantID, "key-7", 1)
	stillDraft.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, stillDraft))

	results, err := repo.FindExpirable(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, expired.ID, results[0].ID)
}

func TestGormBundleRepository_SaveWithLock_PersistsOfferResponses(t *testing.T) {
	db := setupBundleTestDB(t)
	repo := NewGormBundleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	athleteUserID := uuid.New()

	b := newTestBundle(t, tenantID, "key-8", 0)
	offer, err := b.AddOffer(uuid.New(), athleteUserID, nil)
	require.NoError(t, err)
	require.NoError(t, b.Submit(false))
	require.NoError(t, b.MarkDispatched())
	require.NoError(t, repo.Save(ctx, b))

	require.NoError(t, b.MarkOfferSent(offer.ID))
	require.NoError(t, b.AcceptOffer(offer.ID, athleteUserID))
	require.NoError(t, repo.SaveWithLock(ctx, b))

	found, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	require.Len(t, found.Offers, 1)
	assert.Equal(t, bundle.OfferStatusAccepted, found.Offers[0].Status)
	require.NotNil(t, found.Offers[0].RespondedAt)
}
