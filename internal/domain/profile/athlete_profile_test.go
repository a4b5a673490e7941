package profile

import (
	"testing"

	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestAthleteProfile(t *testing.T) *AthleteProfile {
	p, err := NewAthleteProfile(uuid.New(), uuid.New(), "Jordan Reyes")
	require.NoError(t, err)
	return p
}

func fillAthleteProfile(t *testing.T, p *AthleteProfile) {
	require.NoError(t, p.UpdateBasics("Jordan Reyes", "Basketball", "State University", "D1", 2027))
	acc, err := NewSocialAccount("instagram", "jordan.reyes", 42000)
	require.NoError(t, err)
	require.NoError(t, p.SetSocialAccounts([]SocialAccount{acc}))
	require.NoError(t, p.SetContentTags([]string{"game-day", "training"}))
	require.NoError(t, p.SetCompensationFloor(valueobject.NewMoneyUSDFromFloat(500)))
}

// ============================================
// ProfileStatus Tests
// ============================================

func TestProfileStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  ProfileStatus
		isValid bool
	}{
		{ProfileStatusPending, true},
		{ProfileStatusInReview, true},
		{ProfileStatusActive, true},
		{ProfileStatusRejected, true},
		{ProfileStatusSuspended, true},
		{ProfileStatus("DELETED"), false},
		{ProfileStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestProfileStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     ProfileStatus
		to       ProfileStatus
		canTrans bool
	}{
		{ProfileStatusPending, ProfileStatusInReview, true},
		{ProfileStatusPending, ProfileStatusActive, true},
		{ProfileStatusPending, ProfileStatusSuspended, false},
		{ProfileStatusInReview, ProfileStatusActive, true},
		{ProfileStatusInReview, ProfileStatusRejected, true},
		{ProfileStatusInReview, ProfileStatusSuspended, false},
		{ProfileStatusRejected, ProfileStatusInReview, true},
		{ProfileStatusRejected, ProfileStatusActive, false},
		{ProfileStatusActive, ProfileStatusSuspended, true},
		{ProfileStatusActive, ProfileStatusInReview, false},
		{ProfileStatusSuspended, ProfileStatusActive, true},
		{ProfileStatusSuspended, ProfileStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// SocialAccount Tests
// ============================================

func TestNewSocialAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		acc, err := NewSocialAccount(" Instagram ", "jordan.reyes", 42000)
		require.NoError(t, err)
		assert.Equal(t, "instagram", acc.Platform)
		assert.Equal(t, "jordan.reyes", acc.Handle)
		assert.Equal(t, 42000, acc.Followers)
	})

	t.Run("empty platform", func(t *testing.T) {
		_, err := NewSocialAccount("", "handle", 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Platform cannot be empty")
	})

	t.Run("empty handle", func(t *testing.T) {
		_, err := NewSocialAccount("tiktok", "  ", 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Handle cannot be empty")
	})

	t.Run("negative followers", func(t *testing.T) {
		_, err := NewSocialAccount("tiktok", "handle", -1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})
}

// ============================================
// Profile Creation Tests
// ============================================

func TestNewAthleteProfile(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	p, err := NewAthleteProfile(tenantID, userID, "Jordan Reyes")
	require.NoError(t, err)

	assert.Equal(t, tenantID, p.TenantID)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, userID, *p.CreatedBy)
	assert.Equal(t, ProfileStatusPending, p.Status)
	assert.True(t, p.CompensationFloor.IsZero())

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAthleteProfileCreated, events[0].EventType())
}

func TestNewAthleteProfile_Validation(t *testing.T) {
	t.Run("nil user", func(t *testing.T) {
		_, err := NewAthleteProfile(uuid.New(), uuid.Nil, "Jordan")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User ID")
	})

	t.Run("blank display name", func(t *testing.T) {
		_, err := NewAthleteProfile(uuid.New(), uuid.New(), "   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Display name cannot be empty")
	})
}

// ============================================
// Completion Tests
// ============================================

func TestAthleteProfile_Completion(t *testing.T) {
	p := createTestAthleteProfile(t)

	// Fresh profile has no complete sections
	c := p.Completion()
	assert.Equal(t, 0, c.Percent)
	assert.Len(t, c.Missing, 5)

	// Basics fill identity and academics
	require.NoError(t, p.UpdateBasics("Jordan Reyes", "basketball", "State University", "d1", 2027))
	c = p.Completion()
	assert.Equal(t, 40, c.Percent)
	assert.Contains(t, c.Sections, SectionIdentity)
	assert.Contains(t, c.Sections, SectionAcademics)
	assert.Contains(t, c.Missing, SectionAudience)

	// Complete everything
	fillAthleteProfile(t, p)
	c = p.Completion()
	assert.Equal(t, 100, c.Percent)
	assert.Empty(t, c.Missing)
}

func TestAthleteProfile_TotalFollowers(t *testing.T) {
	p := createTestAthleteProfile(t)

	ig, _ := NewSocialAccount("instagram", "a", 10000)
	tk, _ := NewSocialAccount("tiktok", "b", 25000)
	require.NoError(t, p.SetSocialAccounts([]SocialAccount{ig, tk}))

	assert.Equal(t, 35000, p.TotalFollowers())
}

func TestAthleteProfile_SetSocialAccounts_DuplicatePlatform(t *testing.T) {
	p := createTestAthleteProfile(t)

	a, _ := NewSocialAccount("instagram", "one", 100)
	b, _ := NewSocialAccount("instagram", "two", 200)
	err := p.SetSocialAccounts([]SocialAccount{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linked more than once")
}

func TestAthleteProfile_SetContentTags_Normalizes(t *testing.T) {
	p := createTestAthleteProfile(t)

	require.NoError(t, p.SetContentTags([]string{"Game-Day", "  training ", "game-day", ""}))
	assert.Equal(t, []string{"game-day", "training"}, p.ContentTags)
}

// ============================================
// Review Lifecycle Tests
// ============================================

func TestAthleteProfile_SubmitForReview_RequiresComplete(t *testing.T) {
	p := createTestAthleteProfile(t)

	err := p.SubmitForReview(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing sections")
	assert.Equal(t, ProfileStatusPending, p.Status)
}

func TestAthleteProfile_SubmitForReview_WithCompliance(t *testing.T) {
	p := createTestAthleteProfile(t)
	fillAthleteProfile(t, p)
	p.ClearDomainEvents()

	require.NoError(t, p.SubmitForReview(true))

	assert.Equal(t, ProfileStatusInReview, p.Status)
	assert.NotNil(t, p.SubmittedAt)
	assert.Nil(t, p.ActivatedAt)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAthleteProfileSubmitted, events[0].EventType())
}

func TestAthleteProfile_SubmitForReview_WithoutCompliance(t *testing.T) {
	p := createTestAthleteProfile(t)
	fillAthleteProfile(t, p)
	p.ClearDomainEvents()

	require.NoError(t, p.SubmitForReview(false))

	assert.Equal(t, ProfileStatusActive, p.Status)
	assert.NotNil(t, p.ActivatedAt)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAthleteProfileActivated, events[0].EventType())
}

func TestAthleteProfile_ApproveAndReject(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		p := createTestAthleteProfile(t)
		fillAthleteProfile(t, p)
		require.NoError(t, p.SubmitForReview(true))
		p.ClearDomainEvents()

		require.NoError(t, p.Approve())
		assert.Equal(t, ProfileStatusActive, p.Status)
		assert.True(t, p.IsActive())
	})

	t.Run("reject requires reason", func(t *testing.T) {
		p := createTestAthleteProfile(t)
		fillAthleteProfile(t, p)
		require.NoError(t, p.SubmitForReview(true))

		err := p.Reject("")
		require.Error(t, err)
	})

	t.Run("reject then resubmit", func(t *testing.T) {
		p := createTestAthleteProfile(t)
		fillAthleteProfile(t, p)
		require.NoError(t, p.SubmitForReview(true))
		require.NoError(t, p.Reject("missing verification"))

		assert.Equal(t, ProfileStatusRejected, p.Status)
		assert.Equal(t, "missing verification", p.RejectionReason)

		require.NoError(t, p.SubmitForReview(true))
		assert.Equal(t, ProfileStatusInReview, p.Status)
	})

	t.Run("approve requires in-review", func(t *testing.T) {
		p := createTestAthleteProfile(t)
		err := p.Approve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PENDING")
	})
}

func TestAthleteProfile_SuspendAndReinstate(t *testing.T) {
	p := createTestAthleteProfile(t)
	fillAthleteProfile(t, p)
	require.NoError(t, p.SubmitForReview(false))
	p.ClearDomainEvents()

	require.NoError(t, p.Suspend("policy violation"))
	assert.Equal(t, ProfileStatusSuspended, p.Status)
	assert.Equal(t, "policy violation", p.SuspendReason)

	// Suspended profiles are read-only
	err := p.UpdateBio("new bio")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suspended")

	require.NoError(t, p.Reinstate())
	assert.Equal(t, ProfileStatusActive, p.Status)
	assert.Empty(t, p.SuspendReason)
	assert.Nil(t, p.SuspendedAt)
}

// ============================================
// Media Kit Tests
// ============================================

func TestAthleteProfile_MediaKitFlow(t *testing.T) {
	p := createTestAthleteProfile(t)

	asset, err := p.AddMediaAsset(MediaKindImage, "Hero shot", "media/abc123.jpg", "image/jpeg", 3)
	require.NoError(t, err)
	assert.Equal(t, MediaAssetStatusPendingUpload, asset.Status)

	require.NoError(t, p.ConfirmMediaAsset(asset.ID, 204800))
	assert.True(t, p.MediaAssets[0].IsReady())
	assert.Equal(t, int64(204800), p.MediaAssets[0].SizeBytes)

	require.NoError(t, p.RemoveMediaAsset(asset.ID))
	assert.Equal(t, MediaAssetStatusRemoved, p.MediaAssets[0].Status)
}

func TestAthleteProfile_MediaKitLimit(t *testing.T) {
	p := createTestAthleteProfile(t)

	for i := 0; i < 3; i++ {
		_, err := p.AddMediaAsset(MediaKindImage, "", "media/key", "image/png", 3)
		require.NoError(t, err)
	}

	_, err := p.AddMediaAsset(MediaKindImage, "", "media/key", "image/png", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit of 3")

	// Removing one frees a slot
	require.NoError(t, p.RemoveMediaAsset(p.MediaAssets[0].ID))
	_, err = p.AddMediaAsset(MediaKindImage, "", "media/key", "image/png", 3)
	require.NoError(t, err)
}

func TestAthleteProfile_MediaKitUnlimited(t *testing.T) {
	p := createTestAthleteProfile(t)

	for i := 0; i < 10; i++ {
		_, err := p.AddMediaAsset(MediaKindVideo, "", "media/key", "video/mp4", 0)
		require.NoError(t, err)
	}
	assert.Len(t, p.MediaAssets, 10)
}

func TestNewMediaAsset_Validation(t *testing.T) {
	profileID := uuid.New()

	t.Run("bad kind", func(t *testing.T) {
		_, err := NewMediaAsset(profileID, MediaKind("AUDIO"), "", "key", "audio/mp3")
		require.Error(t, err)
	})

	t.Run("content type must match kind", func(t *testing.T) {
		_, err := NewMediaAsset(profileID, MediaKindImage, "", "key", "video/mp4")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Content type")
	})

	t.Run("confirm requires positive size", func(t *testing.T) {
		a, err := NewMediaAsset(profileID, MediaKindImage, "", "key", "image/jpeg")
		require.NoError(t, err)
		require.Error(t, a.Confirm(0))
		require.NoError(t, a.Confirm(100))
		// Already confirmed
		require.Error(t, a.Confirm(100))
	})
}
