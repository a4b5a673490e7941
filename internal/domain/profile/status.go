package profile

// ProfileStatus represents the review/visibility status of a profile
// Both athlete and business profiles share the same lifecycle
type ProfileStatus string

const (
	ProfileStatusPending   ProfileStatus = "PENDING"
	ProfileStatusInReview  ProfileStatus = "IN_REVIEW"
	ProfileStatusActive    ProfileStatus = "ACTIVE"
	ProfileStatusRejected  ProfileStatus = "REJECTED"
	ProfileStatusSuspended ProfileStatus = "SUSPENDED"
)

// IsValid checks if the status is a valid ProfileStatus
func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusPending, ProfileStatusInReview, ProfileStatusActive, ProfileStatusRejected, ProfileStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of ProfileStatus
func (s ProfileStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProfileStatus) CanTransitionTo(target ProfileStatus) bool {
	switch s {
	case ProfileStatusPending:
		return target == ProfileStatusInReview || target == ProfileStatusActive
	case ProfileStatusInReview:
		return target == ProfileStatusActive || target == ProfileStatusRejected
	case ProfileStatusRejected:
		return target == ProfileStatusInReview
	case ProfileStatusActive:
		return target == ProfileStatusSuspended
	case ProfileStatusSuspended:
		return target == ProfileStatusActive
	}
	return false
}

// Completion summarizes how much of a profile is filled in
// The percentage feeds route-access gating for onboarding redirects
type Completion struct {
	Percent  int      `json:"percent"`
	Sections []string `json:"sections"`
	Missing  []string `json:"missing"`
}

// computeCompletion derives a Completion from an ordered section checklist
func computeCompletion(sections []string, done map[string]bool) Completion {
	completed := make([]string, 0, len(sections))
	missing := make([]string, 0)
	for _, s := range sections {
		if done[s] {
			completed = append(completed, s)
		} else {
			missing = append(missing, s)
		}
	}
	percent := 0
	if len(sections) > 0 {
		percent = len(completed) * 100 / len(sections)
	}
	return Completion{
		Percent:  percent,
		Sections: completed,
		Missing:  missing,
	}
}
