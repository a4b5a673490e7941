package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSubscription(t *testing.T) *Subscription {
	s, err := NewSubscription(uuid.New(), "basic", "cus_123")
	require.NoError(t, err)
	return s
}

func activeTestSubscription(t *testing.T) *Subscription {
	s := createTestSubscription(t)
	require.NoError(t, s.AttachStripeSubscription("sub_123"))
	start := time.Now().Add(-time.Hour)
	end := start.Add(30 * 24 * time.Hour)
	s.ApplyStripeState("active", start, end, false)
	s.ClearDomainEvents()
	return s
}

func TestSubscriptionStatusFromStripe(t *testing.T) {
	tests := []struct {
		stripe   string
		expected SubscriptionStatus
	}{
		{"trialing", SubscriptionStatusTrialing},
		{"active", SubscriptionStatusActive},
		{"past_due", SubscriptionStatusPastDue},
		{"unpaid", SubscriptionStatusUnpaid},
		{"canceled", SubscriptionStatusCanceled},
		{"incomplete", SubscriptionStatusIncomplete},
		{"incomplete_expired", SubscriptionStatusIncomplete},
		{"something_new", SubscriptionStatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.stripe, func(t *testing.T) {
			assert.Equal(t, tt.expected, SubscriptionStatusFromStripe(tt.stripe))
		})
	}
}

func TestNewSubscription(t *testing.T) {
	tenantID := uuid.New()
	s, err := NewSubscription(tenantID, "pro", "cus_abc")
	require.NoError(t, err)

	assert.Equal(t, tenantID, s.TenantID)
	assert.Equal(t, "pro", s.PlanCode)
	assert.Equal(t, SubscriptionStatusIncomplete, s.Status)
	assert.False(t, s.IsActive())

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSubscriptionCreated, events[0].EventType())
}

func TestNewSubscription_Validation(t *testing.T) {
	_, err := NewSubscription(uuid.New(), "", "cus_abc")
	require.Error(t, err)

	_, err = NewSubscription(uuid.New(), "pro", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer ID")
}

func TestSubscription_ApplyStripeState(t *testing.T) {
	s := createTestSubscription(t)
	s.ClearDomainEvents()

	start := time.Now()
	end := start.Add(30 * 24 * time.Hour)
	s.ApplyStripeState("active", start, end, false)

	assert.True(t, s.IsActive())
	assert.True(t, s.PeriodContains(start.Add(time.Hour)))
	assert.False(t, s.PeriodContains(end.Add(time.Hour)))
	assert.NotNil(t, s.LastSyncedAt)

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSubscriptionActivated, events[0].EventType())

	// Re-applying the same state emits nothing new
	s.ClearDomainEvents()
	s.ApplyStripeState("active", start, end, false)
	assert.Empty(t, s.GetDomainEvents())
}

func TestSubscription_ApplyStripeState_PastDue(t *testing.T) {
	s := activeTestSubscription(t)

	start := time.Now()
	s.ApplyStripeState("past_due", start, start.Add(30*24*time.Hour), false)

	assert.True(t, s.InGracePeriod())
	assert.False(t, s.IsActive())

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSubscriptionPaymentFailed, events[0].EventType())
}

func TestSubscription_ChangePlan(t *testing.T) {
	s := activeTestSubscription(t)

	require.NoError(t, s.ChangePlan("pro"))
	assert.Equal(t, "pro", s.PlanCode)

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*SubscriptionPlanChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "basic", changed.OldPlanCode)
	assert.Equal(t, "pro", changed.NewPlanCode)
}

func TestSubscription_ChangePlan_SamePlan(t *testing.T) {
	s := activeTestSubscription(t)
	err := s.ChangePlan("basic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already on this plan")
}

func TestSubscription_CancelFlow(t *testing.T) {
	t.Run("schedule then reactivate", func(t *testing.T) {
		s := activeTestSubscription(t)

		require.NoError(t, s.ScheduleCancel())
		assert.True(t, s.CancelAtPeriodEnd)
		assert.True(t, s.IsActive(), "stays active until period end")

		// Double scheduling rejected
		require.Error(t, s.ScheduleCancel())

		require.NoError(t, s.Reactivate())
		assert.False(t, s.CancelAtPeriodEnd)
	})

	t.Run("cancel now", func(t *testing.T) {
		s := activeTestSubscription(t)

		require.NoError(t, s.CancelNow())
		assert.True(t, s.IsCanceled())
		assert.NotNil(t, s.CanceledAt)

		// Terminal: no plan change, no reactivation
		require.Error(t, s.ChangePlan("pro"))
		require.Error(t, s.Reactivate())
		require.Error(t, s.CancelNow())
	})

	t.Run("reactivate without scheduled cancel", func(t *testing.T) {
		s := activeTestSubscription(t)
		err := s.Reactivate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No cancellation")
	})
}

func TestSubscription_InvoiceTracking(t *testing.T) {
	t.Run("paid invoice restores active", func(t *testing.T) {
		s := activeTestSubscription(t)
		s.RecordPaymentFailure("in_001")
		assert.True(t, s.InGracePeriod())

		s.ClearDomainEvents()
		s.RecordInvoicePaid("in_002")
		assert.True(t, s.IsActive())
		assert.Equal(t, "in_002", s.LatestInvoiceID)

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSubscriptionActivated, events[0].EventType())
	})

	t.Run("payment failure from active", func(t *testing.T) {
		s := activeTestSubscription(t)
		s.RecordPaymentFailure("in_003")

		assert.Equal(t, SubscriptionStatusPastDue, s.Status)
		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSubscriptionPaymentFailed, events[0].EventType())
	})

	t.Run("failure on canceled subscription is a no-op", func(t *testing.T) {
		s := activeTestSubscription(t)
		require.NoError(t, s.CancelNow())
		s.ClearDomainEvents()

		s.RecordPaymentFailure("in_004")
		assert.True(t, s.IsCanceled())
		assert.Empty(t, s.GetDomainEvents())
	})
}
