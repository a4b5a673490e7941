package matching

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/google/uuid"
)

// RunMatchRequest starts a match run for a campaign
type RunMatchRequest struct {
	CampaignID uuid.UUID `json:"campaign_id" binding:"required"`
	Limit      int       `json:"limit" binding:"omitempty,min=1,max=100"`
}

// MatchResultResponse is one scored athlete in the API response
type MatchResultResponse struct {
	AthleteProfileID uuid.UUID `json:"athlete_profile_id"`
	DisplayName      string    `json:"display_name"`
	Sport            string    `json:"sport"`
	TotalFollowers   int       `json:"total_followers"`
	Score            string    `json:"score"`
	Reasons          []string  `json:"reasons,omitempty"`
}

// MatchRunResponse is the API representation of a match run
type MatchRunResponse struct {
	ID            uuid.UUID             `json:"id"`
	CampaignID    uuid.UUID             `json:"campaign_id"`
	Source        string                `json:"source"`
	Status        string                `json:"status"`
	Results       []MatchResultResponse `json:"results"`
	FailureReason string                `json:"failure_reason,omitempty"`
	StartedAt     time.Time             `json:"started_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
}

func toMatchRunResponse(r *matching.MatchRun) *MatchRunResponse {
	results := make([]MatchResultResponse, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, MatchResultResponse{
			AthleteProfileID: res.AthleteProfileID,
			DisplayName:      res.DisplayName,
			Sport:            res.Sport,
			TotalFollowers:   res.TotalFollowers,
			Score:            res.Score.String(),
			Reasons:          res.Reasons,
		})
	}
	return &MatchRunResponse{
		ID:            r.ID,
		CampaignID:    r.CampaignID,
		Source:        r.Source.String(),
		Status:        r.Status.String(),
		Results:       results,
		FailureReason: r.FailureReason,
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
	}
}
