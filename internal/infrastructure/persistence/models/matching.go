package models

import (
	"encoding/json"
	"time"

	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/google/uuid"
)

// MatchRunModel is the persistence model for the MatchRun aggregate root.
// Results are stored as a jsonb snapshot; they are immutable once the run
// completes and are never queried individually.
type MatchRunModel struct {
	TenantAggregateModel
	CampaignID          uuid.UUID               `gorm:"type:uuid;not null;index"`
	RequestedBy         uuid.UUID               `gorm:"type:uuid;not null"`
	CriteriaFingerprint string                  `gorm:"type:varchar(64);not null;index"`
	Source              matching.MatchSource    `gorm:"type:varchar(20)"`
	Status              matching.MatchRunStatus `gorm:"type:varchar(20);not null;default:'RUNNING';index"`
	ResultsJSON         string                  `gorm:"column:results;type:jsonb;default:'[]'"`
	FailureReason       string                  `gorm:"type:varchar(500)"`
	StartedAt           time.Time               `gorm:"not null"`
	CompletedAt         *time.Time
}

// TableName returns the table name for GORM
func (MatchRunModel) TableName() string {
	return "match_runs"
}

// ToDomain converts the persistence model to a domain MatchRun entity.
func (m *MatchRunModel) ToDomain() *matching.MatchRun {
	run := &matching.MatchRun{
		CampaignID:          m.CampaignID,
		RequestedBy:         m.RequestedBy,
		CriteriaFingerprint: m.CriteriaFingerprint,
		Source:              m.Source,
		Status:              m.Status,
		FailureReason:       m.FailureReason,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
	}
	m.PopulateTenantAggregateRoot(&run.TenantAggregateRoot)
	if m.ResultsJSON != "" {
		_ = json.Unmarshal([]byte(m.ResultsJSON), &run.Results)
	}
	return run
}

// FromDomain populates the persistence model from a domain MatchRun entity.
func (m *MatchRunModel) FromDomain(run *matching.MatchRun) {
	m.FromDomainTenantAggregateRoot(run.TenantAggregateRoot)
	m.CampaignID = run.CampaignID
	m.RequestedBy = run.RequestedBy
	m.CriteriaFingerprint = run.CriteriaFingerprint
	m.Source = run.Source
	m.Status = run.Status
	m.FailureReason = run.FailureReason
	m.StartedAt = run.StartedAt
	m.CompletedAt = run.CompletedAt
	if jsonBytes, err := json.Marshal(run.Results); err == nil {
		m.ResultsJSON = string(jsonBytes)
	} else {
		m.ResultsJSON = "[]"
	}
}

// MatchRunModelFromDomain creates a new persistence model from a domain MatchRun entity.
func MatchRunModelFromDomain(run *matching.MatchRun) *MatchRunModel {
	m := &MatchRunModel{}
	m.FromDomain(run)
	return m
}
