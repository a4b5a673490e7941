package matching

import (
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchSource identifies where a match run's results came from
type MatchSource string

const (
	MatchSourceAPI      MatchSource = "api"
	MatchSourceFallback MatchSource = "fallback"
	MatchSourceCache    MatchSource = "cache"
)

// IsValid checks if the source is a valid MatchSource
func (s MatchSource) IsValid() bool {
	switch s {
	case MatchSourceAPI, MatchSourceFallback, MatchSourceCache:
		return true
	}
	return false
}

// String returns the string representation of MatchSource
func (s MatchSource) String() string {
	return string(s)
}

// MatchRunStatus represents the outcome of a match run
type MatchRunStatus string

const (
	MatchRunStatusRunning   MatchRunStatus = "RUNNING"
	MatchRunStatusCompleted MatchRunStatus = "COMPLETED"
	MatchRunStatusFailed    MatchRunStatus = "FAILED"
)

// IsValid checks if the status is a valid MatchRunStatus
func (s MatchRunStatus) IsValid() bool {
	switch s {
	case MatchRunStatusRunning, MatchRunStatusCompleted, MatchRunStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of MatchRunStatus
func (s MatchRunStatus) String() string {
	return string(s)
}

// MatchResult is one scored athlete in a match run
type MatchResult struct {
	AthleteProfileID uuid.UUID       `json:"athlete_profile_id"`
	DisplayName      string          `json:"display_name"`
	Sport            string          `json:"sport"`
	TotalFollowers   int             `json:"total_followers"`
	Score            decimal.Decimal `json:"score"`
	Reasons          []string        `json:"reasons,omitempty"`
}

// MatchRun represents one matching execution for a campaign aggregate root
// A run records which path produced the results (external API, local
// fallback, or cache) so clients can surface degraded results
type MatchRun struct {
	shared.TenantAggregateRoot
	CampaignID          uuid.UUID
	RequestedBy         uuid.UUID
	CriteriaFingerprint string
	Source              MatchSource
	Status              MatchRunStatus
	Results             []MatchResult
	FailureReason       string
	StartedAt           time.Time
	CompletedAt         *time.Time
}

// NewMatchRun starts a match run for a campaign
func NewMatchRun(tenantID, campaignID, requestedBy uuid.UUID, criteriaFingerprint string) (*MatchRun, error) {
	if campaignID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN", "Campaign ID cannot be empty")
	}
	if criteriaFingerprint == "" {
		return nil, shared.NewDomainError("INVALID_CRITERIA", "Criteria fingerprint cannot be empty")
	}

	return &MatchRun{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, requestedBy),
		CampaignID:          campaignID,
		RequestedBy:         requestedBy,
		CriteriaFingerprint: criteriaFingerprint,
		Status:              MatchRunStatusRunning,
		Results:             make([]MatchResult, 0),
		StartedAt:           time.Now(),
	}, nil
}

// Complete records results from the given source
func (r *MatchRun) Complete(source MatchSource, results []MatchResult) error {
	if r.Status != MatchRunStatusRunning {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete match run in %s status", r.Status))
	}
	if !source.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", "Match source is not valid")
	}

	now := time.Now()
	r.Source = source
	r.Results = results
	r.Status = MatchRunStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewMatchRunCompletedEvent(r))
	return nil
}

// Fail records that both the API and the fallback path failed
func (r *MatchRun) Fail(reason string) error {
	if r.Status != MatchRunStatusRunning {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail match run in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason is required")
	}

	now := time.Now()
	r.Status = MatchRunStatusFailed
	r.FailureReason = reason
	r.CompletedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewMatchRunFailedEvent(r))
	return nil
}

// IsCompleted returns true if the run produced results
func (r *MatchRun) IsCompleted() bool {
	return r.Status == MatchRunStatusCompleted
}

// IsFallback returns true if the results came from the local scorer
func (r *MatchRun) IsFallback() bool {
	return r.Source == MatchSourceFallback
}

// ResultCount returns the number of scored athletes
func (r *MatchRun) ResultCount() int {
	return len(r.Results)
}

// Duration returns how long the run took; zero while still running
func (r *MatchRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
