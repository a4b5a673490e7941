package campaign

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WizardStep represents a step in the campaign creation wizard
type WizardStep string

const (
	StepBasics   WizardStep = "BASICS"
	StepAudience WizardStep = "AUDIENCE"
	StepBudget   WizardStep = "BUDGET"
	StepReview   WizardStep = "REVIEW"
)

// stepOrder defines the wizard step sequence; steps complete in order
var stepOrder = map[WizardStep]int{
	StepBasics:   1,
	StepAudience: 2,
	StepBudget:   3,
	StepReview:   4,
}

// IsValid checks if the step is a valid WizardStep
func (s WizardStep) IsValid() bool {
	_, ok := stepOrder[s]
	return ok
}

// String returns the string representation of WizardStep
func (s WizardStep) String() string {
	return string(s)
}

// Order returns the position of the step in the wizard sequence (1-based)
func (s WizardStep) Order() int {
	return stepOrder[s]
}

// Next returns the step that follows this one; ok is false for the last step
func (s WizardStep) Next() (WizardStep, bool) {
	switch s {
	case StepBasics:
		return StepAudience, true
	case StepAudience:
		return StepBudget, true
	case StepBudget:
		return StepReview, true
	}
	return s, false
}

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusPublished CampaignStatus = "PUBLISHED"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

// IsValid checks if the status is a valid CampaignStatus
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusPublished, CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of CampaignStatus
func (s CampaignStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s CampaignStatus) CanTransitionTo(target CampaignStatus) bool {
	switch s {
	case CampaignStatusDraft:
		return target == CampaignStatusPublished || target == CampaignStatusCancelled
	case CampaignStatusPublished:
		return target == CampaignStatusPaused || target == CampaignStatusCompleted || target == CampaignStatusCancelled
	case CampaignStatusPaused:
		return target == CampaignStatusPublished || target == CampaignStatusCompleted || target == CampaignStatusCancelled
	case CampaignStatusCompleted, CampaignStatusCancelled:
		return false // Terminal states
	}
	return false
}

// TargetCriteria describes which athletes a campaign wants to reach
type TargetCriteria struct {
	Sports       []string `json:"sports"`
	Divisions    []string `json:"divisions"`
	Regions      []string `json:"regions"`
	ContentTypes []string `json:"content_types"`
	MinFollowers int      `json:"min_followers"`
}

// NewTargetCriteria creates validated target criteria
// At least one sport is required; follower minimum cannot be negative
func NewTargetCriteria(sports, divisions, regions, contentTypes []string, minFollowers int) (TargetCriteria, error) {
	if len(sports) == 0 {
		return TargetCriteria{}, shared.NewDomainError("INVALID_CRITERIA", "At least one sport is required")
	}
	if minFollowers < 0 {
		return TargetCriteria{}, shared.NewDomainError("INVALID_CRITERIA", "Minimum followers cannot be negative")
	}
	for _, sport := range sports {
		if strings.TrimSpace(sport) == "" {
			return TargetCriteria{}, shared.NewDomainError("INVALID_CRITERIA", "Sport cannot be empty")
		}
	}

	return TargetCriteria{
		Sports:       normalizeList(sports),
		Divisions:    normalizeList(divisions),
		Regions:      normalizeList(regions),
		ContentTypes: normalizeList(contentTypes),
		MinFollowers: minFollowers,
	}, nil
}

// normalizeList lowercases, trims, dedupes and sorts a criteria list
// so two equivalent criteria produce the same fingerprint
func normalizeList(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// IsEmpty returns true if the criteria have no targeting dimensions set
func (c TargetCriteria) IsEmpty() bool {
	return len(c.Sports) == 0 && len(c.Divisions) == 0 && len(c.Regions) == 0 &&
		len(c.ContentTypes) == 0 && c.MinFollowers == 0
}

// Fingerprint returns a stable hash of the criteria
// Used as part of the match-result cache key
func (c TargetCriteria) Fingerprint() string {
	payload, _ := json.Marshal(c)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}

// Campaign represents a sponsorship campaign aggregate root
// It carries the wizard's server-side state: a campaign is assembled
// step by step (basics, audience, budget, review) and only a fully
// assembled campaign can be published
type Campaign struct {
	shared.TenantAggregateRoot
	Name              string
	Description       string
	BusinessProfileID uuid.UUID
	Step              WizardStep
	Criteria          TargetCriteria
	BudgetAmount      decimal.Decimal
	BudgetCurrency    string
	StartsAt          *time.Time
	EndsAt            *time.Time
	Status            CampaignStatus
	PublishedAt       *time.Time
	PausedAt          *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
}

// NewCampaign creates a new draft campaign positioned at the first wizard step
func NewCampaign(tenantID, createdBy, businessProfileID uuid.UUID, name string) (*Campaign, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Campaign name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_NAME", "Campaign name cannot exceed 120 characters")
	}
	if businessProfileID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS_PROFILE", "Business profile ID cannot be empty")
	}

	c := &Campaign{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Name:                name,
		BusinessProfileID:   businessProfileID,
		Step:                StepBasics,
		BudgetAmount:        decimal.Zero,
		BudgetCurrency:      string(valueobject.USD),
		Status:              CampaignStatusDraft,
	}

	c.AddDomainEvent(NewCampaignCreatedEvent(c))

	return c, nil
}

// SaveBasics records the basics step (name, description, schedule)
// Only allowed while the campaign is a draft; completing the step for the
// first time advances the wizard to the audience step
func (c *Campaign) SaveBasics(name, description string, startsAt, endsAt *time.Time) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Campaign can only be edited while in draft")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Campaign name cannot be empty")
	}
	if len(name) > 120 {
		return shared.NewDomainError("INVALID_NAME", "Campaign name cannot exceed 120 characters")
	}
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Campaign end date must be after start date")
	}

	c.Name = name
	c.Description = description
	c.StartsAt = startsAt
	c.EndsAt = endsAt
	c.advanceFrom(StepBasics)
	c.UpdatedAt = time.Now()

	return nil
}

// SaveAudience records the audience step (target criteria)
// Requires the basics step to be complete
func (c *Campaign) SaveAudience(criteria TargetCriteria) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Campaign can only be edited while in draft")
	}
	if !c.HasReachedStep(StepAudience) {
		return shared.NewDomainError("STEP_ORDER", "Complete the basics step before the audience step")
	}
	if len(criteria.Sports) == 0 {
		return shared.NewDomainError("INVALID_CRITERIA", "At least one sport is required")
	}

	c.Criteria = criteria
	c.advanceFrom(StepAudience)
	c.UpdatedAt = time.Now()

	return nil
}

// SaveBudget records the budget step
// Requires the audience step to be complete; budget must be positive
func (c *Campaign) SaveBudget(budget valueobject.Money) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Campaign can only be edited while in draft")
	}
	if !c.HasReachedStep(StepBudget) {
		return shared.NewDomainError("STEP_ORDER", "Complete the audience step before the budget step")
	}
	if !budget.IsPositive() {
		return shared.NewDomainError("INVALID_BUDGET", "Campaign budget must be positive")
	}

	c.BudgetAmount = budget.Amount()
	c.BudgetCurrency = string(budget.Currency())
	c.advanceFrom(StepBudget)
	c.UpdatedAt = time.Now()

	return nil
}

// advanceFrom moves the wizard forward when the step just saved is the
// current one; re-saving an earlier step never regresses progress
func (c *Campaign) advanceFrom(step WizardStep) {
	if c.Step != step {
		return
	}
	next, ok := step.Next()
	if !ok {
		return
	}
	c.Step = next
	c.AddDomainEvent(NewCampaignStepCompletedEvent(c, step))
}

// HasReachedStep returns true if the wizard has reached the given step,
// meaning all earlier steps are complete
func (c *Campaign) HasReachedStep(step WizardStep) bool {
	return c.Step.Order() >= step.Order()
}

// Publish publishes the campaign, transitioning from DRAFT to PUBLISHED
// All wizard steps must be complete; subscription and quota checks are
// enforced by the application service before calling this
func (c *Campaign) Publish() error {
	if c.Status != CampaignStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot publish campaign in %s status", c.Status))
	}
	if c.Step != StepReview {
		return shared.NewDomainError("WIZARD_INCOMPLETE", "All wizard steps must be completed before publishing")
	}
	if c.BudgetAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_BUDGET", "Campaign budget must be positive")
	}
	if len(c.Criteria.Sports) == 0 {
		return shared.NewDomainError("INVALID_CRITERIA", "Campaign target criteria are required")
	}

	now := time.Now()
	c.Status = CampaignStatusPublished
	c.PublishedAt = &now
	c.UpdatedAt = now

	c.AddDomainEvent(NewCampaignPublishedEvent(c))

	return nil
}

// Pause pauses a published campaign
func (c *Campaign) Pause() error {
	if !c.Status.CanTransitionTo(CampaignStatusPaused) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pause campaign in %s status", c.Status))
	}

	now := time.Now()
	c.Status = CampaignStatusPaused
	c.PausedAt = &now
	c.UpdatedAt = now

	c.AddDomainEvent(NewCampaignPausedEvent(c))

	return nil
}

// Resume resumes a paused campaign back to PUBLISHED
func (c *Campaign) Resume() error {
	if c.Status != CampaignStatusPaused {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resume campaign in %s status", c.Status))
	}

	now := time.Now()
	c.Status = CampaignStatusPublished
	c.PausedAt = nil
	c.UpdatedAt = now

	c.AddDomainEvent(NewCampaignResumedEvent(c))

	return nil
}

// Complete marks the campaign as completed
func (c *Campaign) Complete() error {
	if !c.Status.CanTransitionTo(CampaignStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete campaign in %s status", c.Status))
	}

	now := time.Now()
	c.Status = CampaignStatusCompleted
	c.CompletedAt = &now
	c.UpdatedAt = now

	c.AddDomainEvent(NewCampaignCompletedEvent(c))

	return nil
}

// Cancel cancels the campaign
func (c *Campaign) Cancel(reason string) error {
	if !c.Status.CanTransitionTo(CampaignStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel campaign in %s status", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasPublished := c.Status == CampaignStatusPublished || c.Status == CampaignStatusPaused
	now := time.Now()
	c.Status = CampaignStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.UpdatedAt = now

	c.AddDomainEvent(NewCampaignCancelledEvent(c, wasPublished))

	return nil
}

// GetBudgetMoney returns the campaign budget as Money
func (c *Campaign) GetBudgetMoney() valueobject.Money {
	m, err := valueobject.NewMoney(c.BudgetAmount, valueobject.Currency(c.BudgetCurrency))
	if err != nil {
		return valueobject.NewMoneyUSD(c.BudgetAmount)
	}
	return m
}

// IsDraft returns true if the campaign is in draft status
func (c *Campaign) IsDraft() bool {
	return c.Status == CampaignStatusDraft
}

// IsPublished returns true if the campaign is published
func (c *Campaign) IsPublished() bool {
	return c.Status == CampaignStatusPublished
}

// IsPaused returns true if the campaign is paused
func (c *Campaign) IsPaused() bool {
	return c.Status == CampaignStatusPaused
}

// IsCompleted returns true if the campaign is completed
func (c *Campaign) IsCompleted() bool {
	return c.Status == CampaignStatusCompleted
}

// IsCancelled returns true if the campaign is cancelled
func (c *Campaign) IsCancelled() bool {
	return c.Status == CampaignStatusCancelled
}

// IsTerminal returns true if the campaign is completed or cancelled
func (c *Campaign) IsTerminal() bool {
	return c.IsCompleted() || c.IsCancelled()
}

// IsActive returns true if the campaign counts against the active-campaign quota
func (c *Campaign) IsActive() bool {
	return c.IsPublished() || c.IsPaused()
}

// CanModify returns true if the wizard steps can still be edited
func (c *Campaign) CanModify() bool {
	return c.IsDraft()
}
