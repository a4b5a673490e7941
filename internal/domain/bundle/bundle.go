package bundle

import (
	"fmt"
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BundleStatus represents the lifecycle status of an offer bundle
type BundleStatus string

const (
	BundleStatusDraft         BundleStatus = "DRAFT"
	BundleStatusPendingReview BundleStatus = "PENDING_REVIEW"
	BundleStatusReady         BundleStatus = "READY"
	BundleStatusDispatched    BundleStatus = "DISPATCHED"
	BundleStatusClosed        BundleStatus = "CLOSED"
	BundleStatusRejected      BundleStatus = "REJECTED"
)

// IsValid checks if the status is a valid BundleStatus
func (s BundleStatus) IsValid() bool {
	switch s {
	case BundleStatusDraft, BundleStatusPendingReview, BundleStatusReady, BundleStatusDispatched, BundleStatusClosed, BundleStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of BundleStatus
func (s BundleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s BundleStatus) CanTransitionTo(target BundleStatus) bool {
	switch s {
	case BundleStatusDraft:
		return target == BundleStatusPendingReview || target == BundleStatusReady
	case BundleStatusPendingReview:
		return target == BundleStatusReady || target == BundleStatusRejected
	case BundleStatusReady:
		return target == BundleStatusDispatched
	case BundleStatusDispatched:
		return target == BundleStatusClosed
	case BundleStatusClosed, BundleStatusRejected:
		return false // Terminal states
	}
	return false
}

// OfferStatus represents the status of a single athlete offer
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "PENDING"
	OfferStatusSent      OfferStatus = "SENT"
	OfferStatusAccepted  OfferStatus = "ACCEPTED"
	OfferStatusDeclined  OfferStatus = "DECLINED"
	OfferStatusExpired   OfferStatus = "EXPIRED"
	OfferStatusWithdrawn OfferStatus = "WITHDRAWN"
)

// IsValid checks if the status is a valid OfferStatus
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusPending, OfferStatusSent, OfferStatusAccepted, OfferStatusDeclined, OfferStatusExpired, OfferStatusWithdrawn:
		return true
	}
	return false
}

// String returns the string representation of OfferStatus
func (s OfferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
// An offer whose notification was never delivered can still be answered,
// so PENDING allows the same responses as SENT
func (s OfferStatus) CanTransitionTo(target OfferStatus) bool {
	switch s {
	case OfferStatusPending:
		return target == OfferStatusSent || target == OfferStatusAccepted || target == OfferStatusDeclined ||
			target == OfferStatusExpired || target == OfferStatusWithdrawn
	case OfferStatusSent:
		return target == OfferStatusAccepted || target == OfferStatusDeclined ||
			target == OfferStatusExpired || target == OfferStatusWithdrawn
	case OfferStatusAccepted, OfferStatusDeclined, OfferStatusExpired, OfferStatusWithdrawn:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if the offer status is final
func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferStatusAccepted, OfferStatusDeclined, OfferStatusExpired, OfferStatusWithdrawn:
		return true
	}
	return false
}

// BundleOffer represents one athlete's offer inside a bundle
type BundleOffer struct {
	ID               uuid.UUID
	BundleID         uuid.UUID
	AthleteProfileID uuid.UUID
	AthleteUserID    uuid.UUID
	Amount           decimal.Decimal
	Status           OfferStatus
	SentAt           *time.Time
	RespondedAt      *time.Time
	DeclineReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBundleOffer creates a new offer for an athlete
func NewBundleOffer(bundleID, athleteProfileID, athleteUserID uuid.UUID, amount decimal.Decimal) (*BundleOffer, error) {
	if athleteProfileID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ATHLETE", "Athlete profile ID cannot be empty")
	}
	if athleteUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ATHLETE", "Athlete user ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Offer amount must be positive")
	}

	now := time.Now()
	return &BundleOffer{
		ID:               uuid.New(),
		BundleID:         bundleID,
		AthleteProfileID: athleteProfileID,
		AthleteUserID:    athleteUserID,
		Amount:           amount,
		Status:           OfferStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// GetAmountMoney returns the offer amount as Money
func (o *BundleOffer) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Amount)
}

// Bundle represents a grouped set of offers for a campaign aggregate root
// A bundle is created atomically with its offers; dispatch, responses and
// expiry then drive the offer lifecycle
type Bundle struct {
	shared.TenantAggregateRoot
	CampaignID         uuid.UUID
	Name               string
	TotalBudget        decimal.Decimal
	Currency           string
	DefaultOfferAmount decimal.Decimal
	ExpiresAt          time.Time
	IdempotencyKey     string
	Status             BundleStatus
	Offers             []BundleOffer
	SubmittedAt        *time.Time
	ApprovedAt         *time.Time
	DispatchedAt       *time.Time
	ClosedAt           *time.Time
	RejectedAt         *time.Time
	RejectReason       string
}

// NewBundle creates a new draft bundle for a campaign
// The default offer amount applies to offers added without a custom amount
func NewBundle(tenantID, createdBy, campaignID uuid.UUID, name, idempotencyKey string, totalBudget, defaultOfferAmount valueobject.Money, expiresAt time.Time) (*Bundle, error) {
	if campaignID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN", "Campaign ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Bundle name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_NAME", "Bundle name cannot exceed 120 characters")
	}
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key is required")
	}
	if !totalBudget.IsPositive() {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Bundle budget must be positive")
	}
	if !defaultOfferAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Default offer amount must be positive")
	}
	if defaultOfferAmount.Amount().GreaterThan(totalBudget.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Default offer amount cannot exceed the bundle budget")
	}
	if !expiresAt.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Offer expiry must be in the future")
	}

	b := &Bundle{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		CampaignID:          campaignID,
		Name:                strings.TrimSpace(name),
		TotalBudget:         totalBudget.Amount(),
		Currency:            string(totalBudget.Currency()),
		DefaultOfferAmount:  defaultOfferAmount.Amount(),
		ExpiresAt:           expiresAt,
		IdempotencyKey:      idempotencyKey,
		Status:              BundleStatusDraft,
		Offers:              make([]BundleOffer, 0),
	}

	b.AddDomainEvent(NewBundleCreatedEvent(b))

	return b, nil
}

// AddOffer adds an offer for an athlete
// amount overrides the bundle's default offer amount when non-nil
// Only allowed before the bundle is submitted
func (b *Bundle) AddOffer(athleteProfileID, athleteUserID uuid.UUID, amount *decimal.Decimal) (*BundleOffer, error) {
	if b.Status != BundleStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add offers to a submitted bundle")
	}

	for _, o := range b.Offers {
		if o.AthleteProfileID == athleteProfileID {
			return nil, shared.NewDomainError("DUPLICATE_ATHLETE", "Athlete already has an offer in this bundle")
		}
	}

	offerAmount := b.DefaultOfferAmount
	if amount != nil {
		offerAmount = *amount
	}

	offer, err := NewBundleOffer(b.ID, athleteProfileID, athleteUserID, offerAmount)
	if err != nil {
		return nil, err
	}

	committed := b.CommittedAmount().Add(offerAmount)
	if committed.GreaterThan(b.TotalBudget) {
		return nil, shared.NewDomainError("BUDGET_EXCEEDED", fmt.Sprintf("Offer total %s exceeds bundle budget %s", committed, b.TotalBudget))
	}

	b.Offers = append(b.Offers, *offer)
	b.UpdatedAt = time.Now()

	return offer, nil
}

// Submit finalizes the bundle for dispatch
// Tenants flagged for compliance review park the bundle in PENDING_REVIEW;
// otherwise it is immediately ready and a dispatch is requested
func (b *Bundle) Submit(requiresCompliance bool) error {
	if b.Status != BundleStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit bundle in %s status", b.Status))
	}
	if len(b.Offers) == 0 {
		return shared.NewDomainError("NO_OFFERS", "Cannot submit a bundle without offers")
	}

	now := time.Now()
	b.SubmittedAt = &now
	b.UpdatedAt = now

	if requiresCompliance {
		b.Status = BundleStatusPendingReview
		b.AddDomainEvent(NewBundleSubmittedForReviewEvent(b))
		return nil
	}

	b.Status = BundleStatusReady
	b.AddDomainEvent(NewBundleDispatchRequestedEvent(b))
	return nil
}

// Approve releases a bundle held for compliance review
func (b *Bundle) Approve(reviewerID uuid.UUID) error {
	if b.Status != BundleStatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve bundle in %s status", b.Status))
	}

	now := time.Now()
	b.Status = BundleStatusReady
	b.ApprovedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBundleApprovedEvent(b, reviewerID))
	b.AddDomainEvent(NewBundleDispatchRequestedEvent(b))
	return nil
}

// RejectReview rejects a bundle held for compliance review
// All offers are withdrawn
func (b *Bundle) RejectReview(reviewerID uuid.UUID, reason string) error {
	if b.Status != BundleStatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject bundle in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	b.Status = BundleStatusRejected
	b.RejectedAt = &now
	b.RejectReason = reason
	b.UpdatedAt = now

	for idx := range b.Offers {
		if !b.Offers[idx].Status.IsTerminal() {
			b.Offers[idx].Status = OfferStatusWithdrawn
			b.Offers[idx].UpdatedAt = now
		}
	}

	b.AddDomainEvent(NewBundleRejectedEvent(b, reviewerID))
	return nil
}

// MarkDispatched records that all offer notifications were enqueued
func (b *Bundle) MarkDispatched() error {
	if !b.Status.CanTransitionTo(BundleStatusDispatched) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispatch bundle in %s status", b.Status))
	}

	now := time.Now()
	b.Status = BundleStatusDispatched
	b.DispatchedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBundleDispatchedEvent(b))
	return nil
}

// MarkOfferSent records delivery of one offer's notification
func (b *Bundle) MarkOfferSent(offerID uuid.UUID) error {
	offer := b.findOffer(offerID)
	if offer == nil {
		return shared.NewDomainError("OFFER_NOT_FOUND", "Offer not found in bundle")
	}
	if !offer.Status.CanTransitionTo(OfferStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark offer in %s status as sent", offer.Status))
	}

	now := time.Now()
	offer.Status = OfferStatusSent
	offer.SentAt = &now
	offer.UpdatedAt = now
	b.UpdatedAt = now

	return nil
}

// AcceptOffer records an athlete's acceptance
// Acceptance after the expiry window fails even if the scheduler has not
// swept the offer yet
func (b *Bundle) AcceptOffer(offerID, athleteUserID uuid.UUID) error {
	offer := b.findOffer(offerID)
	if offer == nil {
		return shared.NewDomainError("OFFER_NOT_FOUND", "Offer not found in bundle")
	}
	if offer.AthleteUserID != athleteUserID {
		return shared.ErrForbidden
	}
	if time.Now().After(b.ExpiresAt) {
		return shared.ErrOfferExpired
	}
	if !offer.Status.CanTransitionTo(OfferStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept offer in %s status", offer.Status))
	}

	now := time.Now()
	offer.Status = OfferStatusAccepted
	offer.RespondedAt = &now
	offer.UpdatedAt = now
	b.UpdatedAt = now

	b.AddDomainEvent(NewOfferAcceptedEvent(b, offer))
	return nil
}

// DeclineOffer records an athlete's decline
func (b *Bundle) DeclineOffer(offerID, athleteUserID uuid.UUID, reason string) error {
	offer := b.findOffer(offerID)
	if offer == nil {
		return shared.NewDomainError("OFFER_NOT_FOUND", "Offer not found in bundle")
	}
	if offer.AthleteUserID != athleteUserID {
		return shared.ErrForbidden
	}
	if !offer.Status.CanTransitionTo(OfferStatusDeclined) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot decline offer in %s status", offer.Status))
	}

	now := time.Now()
	offer.Status = OfferStatusDeclined
	offer.RespondedAt = &now
	offer.DeclineReason = reason
	offer.UpdatedAt = now
	b.UpdatedAt = now

	b.AddDomainEvent(NewOfferDeclinedEvent(b, offer))
	return nil
}

// WithdrawOffer lets the business pull back an unanswered offer
func (b *Bundle) WithdrawOffer(offerID uuid.UUID) error {
	offer := b.findOffer(offerID)
	if offer == nil {
		return shared.NewDomainError("OFFER_NOT_FOUND", "Offer not found in bundle")
	}
	if !offer.Status.CanTransitionTo(OfferStatusWithdrawn) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot withdraw offer in %s status", offer.Status))
	}

	now := time.Now()
	offer.Status = OfferStatusWithdrawn
	offer.UpdatedAt = now
	b.UpdatedAt = now

	b.AddDomainEvent(NewOfferWithdrawnEvent(b, offer))
	return nil
}

// ExpireOffers sweeps unanswered offers past the expiry window
// Returns the number of offers expired; the bundle closes once every
// offer is terminal
func (b *Bundle) ExpireOffers(now time.Time) int {
	if now.Before(b.ExpiresAt) {
		return 0
	}

	expired := 0
	for idx := range b.Offers {
		offer := &b.Offers[idx]
		if offer.Status.IsTerminal() {
			continue
		}
		offer.Status = OfferStatusExpired
		offer.UpdatedAt = now
		expired++
		b.AddDomainEvent(NewOfferExpiredEvent(b, offer))
	}

	if expired > 0 {
		b.UpdatedAt = now
	}

	if b.Status == BundleStatusDispatched && b.allOffersTerminal() {
		b.Status = BundleStatusClosed
		closedAt := now
		b.ClosedAt = &closedAt
		b.AddDomainEvent(NewBundleClosedEvent(b))
	}

	return expired
}

// Close closes a dispatched bundle once every offer is terminal
func (b *Bundle) Close() error {
	if !b.Status.CanTransitionTo(BundleStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close bundle in %s status", b.Status))
	}
	if !b.allOffersTerminal() {
		return shared.NewDomainError("OFFERS_OUTSTANDING", "Cannot close a bundle with unanswered offers")
	}

	now := time.Now()
	b.Status = BundleStatusClosed
	b.ClosedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBundleClosedEvent(b))
	return nil
}

// CommittedAmount sums the amounts of offers that are not withdrawn,
// declined or expired
func (b *Bundle) CommittedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.Offers {
		switch o.Status {
		case OfferStatusWithdrawn, OfferStatusDeclined, OfferStatusExpired:
			continue
		}
		total = total.Add(o.Amount)
	}
	return total
}

// AcceptedAmount sums the amounts of accepted offers
func (b *Bundle) AcceptedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.Offers {
		if o.Status == OfferStatusAccepted {
			total = total.Add(o.Amount)
		}
	}
	return total
}

// GetTotalBudgetMoney returns the bundle budget as Money
func (b *Bundle) GetTotalBudgetMoney() valueobject.Money {
	m, err := valueobject.NewMoney(b.TotalBudget, valueobject.Currency(b.Currency))
	if err != nil {
		return valueobject.NewMoneyUSD(b.TotalBudget)
	}
	return m
}

// OfferCount returns the number of offers in the bundle
func (b *Bundle) OfferCount() int {
	return len(b.Offers)
}

// GetOffer returns an offer by its ID
func (b *Bundle) GetOffer(offerID uuid.UUID) *BundleOffer {
	return b.findOffer(offerID)
}

// GetOfferForAthlete returns the offer targeting an athlete profile
func (b *Bundle) GetOfferForAthlete(athleteProfileID uuid.UUID) *BundleOffer {
	for idx := range b.Offers {
		if b.Offers[idx].AthleteProfileID == athleteProfileID {
			return &b.Offers[idx]
		}
	}
	return nil
}

func (b *Bundle) findOffer(offerID uuid.UUID) *BundleOffer {
	for idx := range b.Offers {
		if b.Offers[idx].ID == offerID {
			return &b.Offers[idx]
		}
	}
	return nil
}

func (b *Bundle) allOffersTerminal() bool {
	for _, o := range b.Offers {
		if !o.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// IsPendingReview returns true if the bundle awaits compliance review
func (b *Bundle) IsPendingReview() bool {
	return b.Status == BundleStatusPendingReview
}

// IsDispatched returns true if offer notifications were enqueued
func (b *Bundle) IsDispatched() bool {
	return b.Status == BundleStatusDispatched
}

// IsTerminal returns true if the bundle is closed or rejected
func (b *Bundle) IsTerminal() bool {
	return b.Status == BundleStatusClosed || b.Status == BundleStatusRejected
}
