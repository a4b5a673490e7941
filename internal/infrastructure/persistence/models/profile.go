package models

import (
	"encoding/json"
	"time"

	"github.com/nilmarket/backend/internal/domain/profile"
	"github.com/shopspring/decimal"
	"github.com/google/uuid"
)

// AthleteProfileModel is the persistence model for the AthleteProfile aggregate root.
// Content tags and social accounts are small value collections stored as jsonb;
// media assets are child rows shared with business profiles.
type AthleteProfileModel struct {
	TenantAggregateModel
	UserID             uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_athlete_tenant_user,priority:2"`
	DisplayName        string                `gorm:"type:varchar(120);not null"`
	Sport              string                `gorm:"type:varchar(50);index"`
	School             string                `gorm:"type:varchar(200)"`
	Division           string                `gorm:"type:varchar(20);index"`
	GraduationYear     int                   `gorm:"not null;default:0"`
	Bio                string                `gorm:"type:text"`
	ContentTagsJSON    string                `gorm:"column:content_tags;type:jsonb;default:'[]'"`
	SocialAccountsJSON string                `gorm:"column:social_accounts;type:jsonb;default:'[]'"`
	TotalFollowers     int                   `gorm:"not null;default:0;index"`
	CompensationFloor  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status             profile.ProfileStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SubmittedAt        *time.Time
	ActivatedAt        *time.Time
	RejectedAt         *time.Time
	SuspendedAt        *time.Time
	RejectionReason    string            `gorm:"type:varchar(500)"`
	SuspendReason      string            `gorm:"type:varchar(500)"`
	MediaAssets        []MediaAssetModel `gorm:"foreignKey:ProfileID;references:ID"`
}

// TableName returns the table name for GORM
func (AthleteProfileModel) TableName() string {
	return "athlete_profiles"
}

// ToDomain converts the persistence model to a domain AthleteProfile entity.
func (m *AthleteProfileModel) ToDomain() *profile.AthleteProfile {
	p := &profile.AthleteProfile{
		UserID:            m.UserID,
		DisplayName:       m.DisplayName,
		Sport:             m.Sport,
		School:            m.School,
		Division:          m.Division,
		GraduationYear:    m.GraduationYear,
		Bio:               m.Bio,
		CompensationFloor: m.CompensationFloor,
		Status:            m.Status,
		SubmittedAt:       m.SubmittedAt,
		ActivatedAt:       m.ActivatedAt,
		RejectedAt:        m.RejectedAt,
		SuspendedAt:       m.SuspendedAt,
		RejectionReason:   m.RejectionReason,
		SuspendReason:     m.SuspendReason,
		MediaAssets:       make([]profile.MediaAsset, len(m.MediaAssets)),
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	if m.ContentTagsJSON != "" {
		_ = json.Unmarshal([]byte(m.ContentTagsJSON), &p.ContentTags)
	}
	if m.SocialAccountsJSON != "" {
		_ = json.Unmarshal([]byte(m.SocialAccountsJSON), &p.SocialAccounts)
	}
	for i, asset := range m.MediaAssets {
		p.MediaAssets[i] = *asset.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain AthleteProfile entity.
func (m *AthleteProfileModel) FromDomain(p *profile.AthleteProfile) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.UserID = p.UserID
	m.DisplayName = p.DisplayName
	m.Sport = p.Sport
	m.School = p.School
	m.Division = p.Division
	m.GraduationYear = p.GraduationYear
	m.Bio = p.Bio
	m.TotalFollowers = p.TotalFollowers()
	m.CompensationFloor = p.CompensationFloor
	m.Status = p.Status
	m.SubmittedAt = p.SubmittedAt
	m.ActivatedAt = p.ActivatedAt
	m.RejectedAt = p.RejectedAt
	m.SuspendedAt = p.SuspendedAt
	m.RejectionReason = p.RejectionReason
	m.SuspendReason = p.SuspendReason
	if jsonBytes, err := json.Marshal(p.ContentTags); err == nil {
		m.ContentTagsJSON = string(jsonBytes)
	} else {
		m.ContentTagsJSON = "[]"
	}
	if jsonBytes, err := json.Marshal(p.SocialAccounts); err == nil {
		m.SocialAccountsJSON = string(jsonBytes)
	} else {
		m.SocialAccountsJSON = "[]"
	}
	m.MediaAssets = make([]MediaAssetModel, len(p.MediaAssets))
	for i, asset := range p.MediaAssets {
		m.MediaAssets[i] = *MediaAssetModelFromDomain(&asset)
	}
}

// AthleteProfileModelFromDomain creates a new persistence model from a domain AthleteProfile entity.
func AthleteProfileModelFromDomain(p *profile.AthleteProfile) *AthleteProfileModel {
	m := &AthleteProfileModel{}
	m.FromDomain(p)
	return m
}

// BusinessProfileModel is the persistence model for the BusinessProfile aggregate root.
type BusinessProfileModel struct {
	TenantAggregateModel
	UserID            uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_business_tenant_user,priority:2"`
	CompanyName       string                `gorm:"type:varchar(200);not null"`
	Industry          string                `gorm:"type:varchar(100)"`
	Website           string                `gorm:"type:varchar(500)"`
	Bio               string                `gorm:"type:text"`
	TargetSportsJSON  string                `gorm:"column:target_sports;type:jsonb;default:'[]'"`
	TargetRegionsJSON string                `gorm:"column:target_regions;type:jsonb;default:'[]'"`
	CampaignGoalsJSON string                `gorm:"column:campaign_goals;type:jsonb;default:'[]'"`
	BudgetMin         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	BudgetMax         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status            profile.ProfileStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SubmittedAt       *time.Time
	ActivatedAt       *time.Time
	RejectedAt        *time.Time
	SuspendedAt       *time.Time
	RejectionReason   string            `gorm:"type:varchar(500)"`
	SuspendReason     string            `gorm:"type:varchar(500)"`
	MediaAssets       []MediaAssetModel `gorm:"foreignKey:ProfileID;references:ID"`
}

// TableName returns the table name for GORM
func (BusinessProfileModel) TableName() string {
	return "business_profiles"
}

// ToDomain converts the persistence model to a domain BusinessProfile entity.
func (m *BusinessProfileModel) ToDomain() *profile.BusinessProfile {
	p := &profile.BusinessProfile{
		UserID:          m.UserID,
		CompanyName:     m.CompanyName,
		Industry:        m.Industry,
		Website:         m.Website,
		Bio:             m.Bio,
		Budget:          profile.BudgetBand{Min: m.BudgetMin, Max: m.BudgetMax},
		Status:          m.Status,
		SubmittedAt:     m.SubmittedAt,
		ActivatedAt:     m.ActivatedAt,
		RejectedAt:      m.RejectedAt,
		SuspendedAt:     m.SuspendedAt,
		RejectionReason: m.RejectionReason,
		SuspendReason:   m.SuspendReason,
		MediaAssets:     make([]profile.MediaAsset, len(m.MediaAssets)),
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	if m.TargetSportsJSON != "" {
		_ = json.Unmarshal([]byte(m.TargetSportsJSON), &p.TargetSports)
	}
	if m.TargetRegionsJSON != "" {
		_ = json.Unmarshal([]byte(m.TargetRegionsJSON), &p.TargetRegions)
	}
	if m.CampaignGoalsJSON != "" {
		_ = json.Unmarshal([]byte(m.CampaignGoalsJSON), &p.CampaignGoals)
	}
	for i, asset := range m.MediaAssets {
		p.MediaAssets[i] = *asset.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain BusinessProfile entity.
func (m *BusinessProfileModel) FromDomain(p *profile.BusinessProfile) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.UserID = p.UserID
	m.CompanyName = p.CompanyName
	m.Industry = p.Industry
	m.Website = p.Website
	m.Bio = p.Bio
	m.BudgetMin = p.Budget.Min
	m.BudgetMax = p.Budget.Max
	m.Status = p.Status
	m.SubmittedAt = p.SubmittedAt
	m.ActivatedAt = p.ActivatedAt
	m.RejectedAt = p.RejectedAt
	m.SuspendedAt = p.SuspendedAt
	m.RejectionReason = p.RejectionReason
	m.SuspendReason = p.SuspendReason
	if jsonBytes, err := json.Marshal(p.TargetSports); err == nil {
		m.TargetSportsJSON = string(jsonBytes)
	} else {
		m.TargetSportsJSON = "[]"
	}
	if jsonBytes, err := json.Marshal(p.TargetRegions); err == nil {
		m.TargetRegionsJSON = string(jsonBytes)
	} else {
		m.TargetRegionsJSON = "[]"
	}
	if jsonBytes, err := json.Marshal(p.CampaignGoals); err == nil {
		m.CampaignGoalsJSON = string(jsonBytes)
	} else {
		m.CampaignGoalsJSON = "[]"
	}
	m.MediaAssets = make([]MediaAssetModel, len(p.MediaAssets))
	for i, asset := range p.MediaAssets {
		m.MediaAssets[i] = *MediaAssetModelFromDomain(&asset)
	}
}

// BusinessProfileModelFromDomain creates a new persistence model from a domain BusinessProfile entity.
func BusinessProfileModelFromDomain(p *profile.BusinessProfile) *BusinessProfileModel {
	m := &BusinessProfileModel{}
	m.FromDomain(p)
	return m
}

// MediaAssetModel is the persistence model for the MediaAsset entity.
// ProfileID references either an athlete or a business profile; profile IDs
// are globally unique so a single table serves both.
type MediaAssetModel struct {
	ID          uuid.UUID                `gorm:"type:uuid;primary_key"`
	ProfileID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	Kind        profile.MediaKind        `gorm:"type:varchar(20);not null"`
	Title       string                   `gorm:"type:varchar(200)"`
	ObjectKey   string                   `gorm:"type:varchar(500);not null"`
	ContentType string                   `gorm:"type:varchar(100)"`
	SizeBytes   int64                    `gorm:"not null;default:0"`
	Status      profile.MediaAssetStatus `gorm:"type:varchar(20);not null;default:'PENDING_UPLOAD'"`
	CreatedAt   time.Time                `gorm:"not null"`
	UpdatedAt   time.Time                `gorm:"not null"`
	ConfirmedAt *time.Time
}

// TableName returns the table name for GORM
func (MediaAssetModel) TableName() string {
	return "media_assets"
}

// ToDomain converts the persistence model to a domain MediaAsset entity.
func (m *MediaAssetModel) ToDomain() *profile.MediaAsset {
	return &profile.MediaAsset{
		ID:          m.ID,
		ProfileID:   m.ProfileID,
		Kind:        m.Kind,
		Title:       m.Title,
		ObjectKey:   m.ObjectKey,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ConfirmedAt: m.ConfirmedAt,
	}
}

// FromDomain populates the persistence model from a domain MediaAsset entity.
func (m *MediaAssetModel) FromDomain(a *profile.MediaAsset) {
	m.ID = a.ID
	m.ProfileID = a.ProfileID
	m.Kind = a.Kind
	m.Title = a.Title
	m.ObjectKey = a.ObjectKey
	m.ContentType = a.ContentType
	m.SizeBytes = a.SizeBytes
	m.Status = a.Status
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.ConfirmedAt = a.ConfirmedAt
}

// MediaAssetModelFromDomain creates a new persistence model from a domain MediaAsset entity.
func MediaAssetModelFromDomain(a *profile.MediaAsset) *MediaAssetModel {
	m := &MediaAssetModel{}
	m.FromDomain(a)
	return m
}
