package bundle

import (
	"testing"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestBundle(t *testing.T) *Bundle {
	b, err := NewBundle(
		uuid.New(), uuid.New(), uuid.New(),
		"Spring launch offers", "idem-key-001",
		valueobject.NewMoneyUSDFromFloat(10000),
		valueobject.NewMoneyUSDFromFloat(1000),
		time.Now().Add(7*24*time.Hour),
	)
	require.NoError(t, err)
	return b
}

func addTestOffer(t *testing.T, b *Bundle) *BundleOffer {
	offer, err := b.AddOffer(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	return offer
}

func dispatchedTestBundle(t *testing.T) *Bundle {
	b := createTestBundle(t)
	addTestOffer(t, b)
	addTestOffer(t, b)
	require.NoError(t, b.Submit(false))
	require.NoError(t, b.MarkDispatched())
	return b
}

// ============================================
// Status Tests
// ============================================

func TestBundleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     BundleStatus
		to       BundleStatus
		canTrans bool
	}{
		{BundleStatusDraft, BundleStatusReady, true},
		{BundleStatusDraft, BundleStatusPendingReview, true},
		{BundleStatusDraft, BundleStatusDispatched, false},
		{BundleStatusPendingReview, BundleStatusReady, true},
		{BundleStatusPendingReview, BundleStatusRejected, true},
		{BundleStatusPendingReview, BundleStatusDispatched, false},
		{BundleStatusReady, BundleStatusDispatched, true},
		{BundleStatusReady, BundleStatusClosed, false},
		{BundleStatusDispatched, BundleStatusClosed, true},
		{BundleStatusClosed, BundleStatusReady, false},
		{BundleStatusRejected, BundleStatusReady, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOfferStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OfferStatus
		to       OfferStatus
		canTrans bool
	}{
		{OfferStatusPending, OfferStatusSent, true},
		{OfferStatusPending, OfferStatusAccepted, true},
		{OfferStatusPending, OfferStatusWithdrawn, true},
		{OfferStatusSent, OfferStatusAccepted, true},
		{OfferStatusSent, OfferStatusDeclined, true},
		{OfferStatusSent, OfferStatusExpired, true},
		{OfferStatusSent, OfferStatusPending, false},
		{OfferStatusAccepted, OfferStatusDeclined, false},
		{OfferStatusDeclined, OfferStatusAccepted, false},
		{OfferStatusExpired, OfferStatusAccepted, false},
		{OfferStatusWithdrawn, OfferStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOfferStatus_IsTerminal(t *testing.T) {
	assert.False(t, OfferStatusPending.IsTerminal())
	assert.False(t, OfferStatusSent.IsTerminal())
	assert.True(t, OfferStatusAccepted.IsTerminal())
	assert.True(t, OfferStatusDeclined.IsTerminal())
	assert.True(t, OfferStatusExpired.IsTerminal())
	assert.True(t, OfferStatusWithdrawn.IsTerminal())
}

// ============================================
// Bundle Creation Tests
// ============================================

func TestNewBundle(t *testing.T) {
	tenantID := uuid.New()
	createdBy := uuid.New()
	campaignID := uuid.New()

	b, err := NewBundle(
		tenantID, createdBy, campaignID,
		"Spring launch offers", "idem-key-001",
		valueobject.NewMoneyUSDFromFloat(10000),
		valueobject.NewMoneyUSDFromFloat(1000),
		time.Now().Add(72*time.Hour),
	)
	require.NoError(t, err)

	assert.Equal(t, tenantID, b.TenantID)
	assert.Equal(t, campaignID, b.CampaignID)
	assert.Equal(t, "idem-key-001", b.IdempotencyKey)
	assert.Equal(t, BundleStatusDraft, b.Status)
	assert.Equal(t, "USD", b.Currency)

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeBundleCreated, events[0].EventType())
}

func TestNewBundle_Validation(t *testing.T) {
	budget := valueobject.NewMoneyUSDFromFloat(10000)
	offerAmt := valueobject.NewMoneyUSDFromFloat(1000)
	future := time.Now().Add(time.Hour)

	t.Run("nil campaign", func(t *testing.T) {
		_, err := NewBundle(uuid.New(), uuid.New(), uuid.Nil, "Name", "key", budget, offerAmt, future)
		require.Error(t, err)
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		_, err := NewBundle(uuid.New(), uuid.New(), uuid.New(), "Name", "", budget, offerAmt, future)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Idempotency key")
	})

	t.Run("zero budget", func(t *testing.T) {
		_, err := NewBundle(uuid.New(), uuid.New(), uuid.New(), "Name", "key", valueobject.ZeroUSD(), offerAmt, future)
		require.Error(t, err)
	})

	t.Run("default amount over budget", func(t *testing.T) {
		_, err := NewBundle(uuid.New(), uuid.New(), uuid.New(), "Name", "key", offerAmt, budget, future)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("expiry in the past", func(t *testing.T) {
		_, err := NewBundle(uuid.New(), uuid.New(), uuid.New(), "Name", "key", budget, offerAmt, time.Now().Add(-time.Hour))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "future")
	})
}

// ============================================
// Offer Management Tests
// ============================================

func TestBundle_AddOffer(t *testing.T) {
	b := createTestBundle(t)

	offer := addTestOffer(t, b)
	assert.Equal(t, OfferStatusPending, offer.Status)
	assert.True(t, offer.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, b.OfferCount())
}

func TestBundle_AddOffer_CustomAmount(t *testing.T) {
	b := createTestBundle(t)

	custom := decimal.NewFromInt(2500)
	offer, err := b.AddOffer(uuid.New(), uuid.New(), &custom)
	require.NoError(t, err)
	assert.True(t, offer.Amount.Equal(custom))
}

func TestBundle_AddOffer_DuplicateAthlete(t *testing.T) {
	b := createTestBundle(t)
	athleteID := uuid.New()

	_, err := b.AddOffer(athleteID, uuid.New(), nil)
	require.NoError(t, err)

	_, err = b.AddOffer(athleteID, uuid.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has an offer")
}

func TestBundle_AddOffer_BudgetEnforced(t *testing.T) {
	b := createTestBundle(t)

	// Budget is 10000, default offer 1000: ten offers fit, eleven do not
	for i := 0; i < 10; i++ {
		addTestOffer(t, b)
	}
	_, err := b.AddOffer(uuid.New(), uuid.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds bundle budget")
}

func TestBundle_AddOffer_AfterSubmitRejected(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	require.NoError(t, b.Submit(false))

	_, err := b.AddOffer(uuid.New(), uuid.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submitted bundle")
}

// ============================================
// Submit / Compliance Tests
// ============================================

func TestBundle_Submit_WithoutCompliance(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	b.ClearDomainEvents()

	require.NoError(t, b.Submit(false))

	assert.Equal(t, BundleStatusReady, b.Status)
	assert.NotNil(t, b.SubmittedAt)

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeBundleDispatchRequested, events[0].EventType())

	dispatch, ok := events[0].(*BundleDispatchRequestedEvent)
	require.True(t, ok)
	assert.Len(t, dispatch.Offers, 1)
}

func TestBundle_Submit_WithCompliance(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	b.ClearDomainEvents()

	require.NoError(t, b.Submit(true))

	assert.Equal(t, BundleStatusPendingReview, b.Status)
	assert.True(t, b.IsPendingReview())

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeBundleSubmittedForReview, events[0].EventType())
}

func TestBundle_Submit_RequiresOffers(t *testing.T) {
	b := createTestBundle(t)
	err := b.Submit(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without offers")
}

func TestBundle_ComplianceApprove(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	require.NoError(t, b.Submit(true))
	b.ClearDomainEvents()

	reviewer := uuid.New()
	require.NoError(t, b.Approve(reviewer))

	assert.Equal(t, BundleStatusReady, b.Status)
	assert.NotNil(t, b.ApprovedAt)

	// Approval releases the held dispatch
	events := b.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeBundleApproved, events[0].EventType())
	assert.Equal(t, EventTypeBundleDispatchRequested, events[1].EventType())
}

func TestBundle_ComplianceReject(t *testing.T) {
	b := createTestBundle(t)
	offer := addTestOffer(t, b)
	require.NoError(t, b.Submit(true))
	b.ClearDomainEvents()

	require.NoError(t, b.RejectReview(uuid.New(), "deal terms violate school policy"))

	assert.Equal(t, BundleStatusRejected, b.Status)
	assert.Equal(t, "deal terms violate school policy", b.RejectReason)
	assert.Equal(t, OfferStatusWithdrawn, b.GetOffer(offer.ID).Status)
	assert.True(t, b.IsTerminal())
}

func TestBundle_ComplianceReject_RequiresReason(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	require.NoError(t, b.Submit(true))

	err := b.RejectReview(uuid.New(), "")
	require.Error(t, err)
}

// ============================================
// Dispatch / Offer Response Tests
// ============================================

func TestBundle_MarkDispatched(t *testing.T) {
	b := createTestBundle(t)
	addTestOffer(t, b)
	require.NoError(t, b.Submit(false))
	b.ClearDomainEvents()

	require.NoError(t, b.MarkDispatched())
	assert.True(t, b.IsDispatched())
	assert.NotNil(t, b.DispatchedAt)

	// Cannot dispatch twice
	require.Error(t, b.MarkDispatched())
}

func TestBundle_MarkOfferSent(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]

	require.NoError(t, b.MarkOfferSent(offer.ID))
	assert.Equal(t, OfferStatusSent, offer.Status)
	assert.NotNil(t, offer.SentAt)

	// Re-sending a sent offer is rejected
	require.Error(t, b.MarkOfferSent(offer.ID))
}

func TestBundle_AcceptOffer(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]
	require.NoError(t, b.MarkOfferSent(offer.ID))
	b.ClearDomainEvents()

	require.NoError(t, b.AcceptOffer(offer.ID, offer.AthleteUserID))

	assert.Equal(t, OfferStatusAccepted, offer.Status)
	assert.NotNil(t, offer.RespondedAt)
	assert.True(t, b.AcceptedAmount().Equal(offer.Amount))

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeOfferAccepted, events[0].EventType())
}

func TestBundle_AcceptOffer_WrongAthlete(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]

	err := b.AcceptOffer(offer.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, shared.ErrForbidden, err)
	assert.Equal(t, OfferStatusPending, offer.Status)
}

func TestBundle_AcceptOffer_AfterExpiry(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]

	// Force the window into the past
	b.ExpiresAt = time.Now().Add(-time.Minute)

	err := b.AcceptOffer(offer.ID, offer.AthleteUserID)
	require.Error(t, err)
	assert.Equal(t, shared.ErrOfferExpired, err)
}

func TestBundle_DeclineOffer(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]
	b.ClearDomainEvents()

	require.NoError(t, b.DeclineOffer(offer.ID, offer.AthleteUserID, "schedule conflict"))

	assert.Equal(t, OfferStatusDeclined, offer.Status)
	assert.Equal(t, "schedule conflict", offer.DeclineReason)

	// Declined offers free up committed budget
	assert.True(t, b.CommittedAmount().Equal(b.Offers[1].Amount))

	// Cannot accept after declining
	require.Error(t, b.AcceptOffer(offer.ID, offer.AthleteUserID))
}

func TestBundle_WithdrawOffer(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]
	b.ClearDomainEvents()

	require.NoError(t, b.WithdrawOffer(offer.ID))
	assert.Equal(t, OfferStatusWithdrawn, offer.Status)

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeOfferWithdrawn, events[0].EventType())
}

func TestBundle_WithdrawOffer_AcceptedRejected(t *testing.T) {
	b := dispatchedTestBundle(t)
	offer := &b.Offers[0]
	require.NoError(t, b.AcceptOffer(offer.ID, offer.AthleteUserID))

	err := b.WithdrawOffer(offer.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCEPTED")
}

// ============================================
// Expiry Tests
// ============================================

func TestBundle_ExpireOffers(t *testing.T) {
	b := dispatchedTestBundle(t)
	accepted := &b.Offers[0]
	require.NoError(t, b.AcceptOffer(accepted.ID, accepted.AthleteUserID))
	b.ClearDomainEvents()

	// Before the window nothing happens
	assert.Equal(t, 0, b.ExpireOffers(time.Now()))

	// Past the window the unanswered offer expires and the bundle closes
	expired := b.ExpireOffers(b.ExpiresAt.Add(time.Minute))
	assert.Equal(t, 1, expired)
	assert.Equal(t, OfferStatusExpired, b.Offers[1].Status)
	assert.Equal(t, OfferStatusAccepted, b.Offers[0].Status)
	assert.Equal(t, BundleStatusClosed, b.Status)
	assert.NotNil(t, b.ClosedAt)

	types := make([]string, 0)
	for _, e := range b.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, EventTypeOfferExpired)
	assert.Contains(t, types, EventTypeBundleClosed)
}

func TestBundle_Close(t *testing.T) {
	b := dispatchedTestBundle(t)

	// Unanswered offers block closing
	err := b.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unanswered offers")

	for idx := range b.Offers {
		offer := &b.Offers[idx]
		require.NoError(t, b.DeclineOffer(offer.ID, offer.AthleteUserID, "not interested"))
	}
	require.NoError(t, b.Close())
	assert.Equal(t, BundleStatusClosed, b.Status)
}
