package bundle

import (
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBundle = "Bundle"

// Event type constants
const (
	EventTypeBundleCreated            = "BundleCreated"
	EventTypeBundleSubmittedForReview = "BundleSubmittedForReview"
	EventTypeBundleApproved           = "BundleApproved"
	EventTypeBundleRejected           = "BundleRejected"
	EventTypeBundleDispatchRequested  = "BundleDispatchRequested"
	EventTypeBundleDispatched         = "BundleDispatched"
	EventTypeBundleClosed             = "BundleClosed"
	EventTypeOfferAccepted            = "OfferAccepted"
	EventTypeOfferDeclined            = "OfferDeclined"
	EventTypeOfferWithdrawn           = "OfferWithdrawn"
	EventTypeOfferExpired             = "OfferExpired"
)

// BundleOfferInfo represents offer information carried in events
type BundleOfferInfo struct {
	OfferID          uuid.UUID       `json:"offer_id"`
	AthleteProfileID uuid.UUID       `json:"athlete_profile_id"`
	AthleteUserID    uuid.UUID       `json:"athlete_user_id"`
	Amount           decimal.Decimal `json:"amount"`
}

func offerInfos(offers []BundleOffer) []BundleOfferInfo {
	infos := make([]BundleOfferInfo, len(offers))
	for i, o := range offers {
		infos[i] = BundleOfferInfo{
			OfferID:          o.ID,
			AthleteProfileID: o.AthleteProfileID,
			AthleteUserID:    o.AthleteUserID,
			Amount:           o.Amount,
		}
	}
	return infos
}

// BundleCreatedEvent is raised when a new bundle is created
type BundleCreatedEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID `json:"bundle_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	BundleName string    `json:"bundle_name"`
}

// NewBundleCreatedEvent creates a new BundleCreatedEvent
func NewBundleCreatedEvent(b *Bundle) *BundleCreatedEvent {
	return &BundleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleCreated, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		CampaignID:      b.CampaignID,
		BundleName:      b.Name,
	}
}

// EventType returns the event type name
func (e *BundleCreatedEvent) EventType() string {
	return EventTypeBundleCreated
}

// BundleSubmittedForReviewEvent is raised when a bundle is parked for
// compliance review; it feeds the compliance work queue
type BundleSubmittedForReviewEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID         `json:"bundle_id"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	BundleName string            `json:"bundle_name"`
	Offers     []BundleOfferInfo `json:"offers"`
}

// NewBundleSubmittedForReviewEvent creates a new BundleSubmittedForReviewEvent
func NewBundleSubmittedForReviewEvent(b *Bundle) *BundleSubmittedForReviewEvent {
	return &BundleSubmittedForReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleSubmittedForReview, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		CampaignID:      b.CampaignID,
		BundleName:      b.Name,
		Offers:          offerInfos(b.Offers),
	}
}

// EventType returns the event type name
func (e *BundleSubmittedForReviewEvent) EventType() string {
	return EventTypeBundleSubmittedForReview
}

// BundleApprovedEvent is raised when compliance approves a bundle
type BundleApprovedEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID `json:"bundle_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
}

// NewBundleApprovedEvent creates a new BundleApprovedEvent
func NewBundleApprovedEvent(b *Bundle, reviewerID uuid.UUID) *BundleApprovedEvent {
	return &BundleApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleApproved, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		ReviewerID:      reviewerID,
	}
}

// EventType returns the event type name
func (e *BundleApprovedEvent) EventType() string {
	return EventTypeBundleApproved
}

// BundleRejectedEvent is raised when compliance rejects a bundle
type BundleRejectedEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID `json:"bundle_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Reason     string    `json:"reason"`
}

// NewBundleRejectedEvent creates a new BundleRejectedEvent
func NewBundleRejectedEvent(b *Bundle, reviewerID uuid.UUID) *BundleRejectedEvent {
	return &BundleRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleRejected, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		ReviewerID:      reviewerID,
		Reason:          b.RejectReason,
	}
}

// EventType returns the event type name
func (e *BundleRejectedEvent) EventType() string {
	return EventTypeBundleRejected
}

// BundleDispatchRequestedEvent is raised when a bundle becomes ready
// The outbox delivers it to the dispatch handler, which enqueues one
// notification job per offer on the message queue
type BundleDispatchRequestedEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID         `json:"bundle_id"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	BundleName string            `json:"bundle_name"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Offers     []BundleOfferInfo `json:"offers"`
}

// NewBundleDispatchRequestedEvent creates a new BundleDispatchRequestedEvent
func NewBundleDispatchRequestedEvent(b *Bundle) *BundleDispatchRequestedEvent {
	return &BundleDispatchRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleDispatchRequested, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		CampaignID:      b.CampaignID,
		BundleName:      b.Name,
		ExpiresAt:       b.ExpiresAt,
		Offers:          offerInfos(b.Offers),
	}
}

// EventType returns the event type name
func (e *BundleDispatchRequestedEvent) EventType() string {
	return EventTypeBundleDispatchRequested
}

// BundleDispatchedEvent is raised after all offer notifications are enqueued
type BundleDispatchedEvent struct {
	shared.BaseDomainEvent
	BundleID   uuid.UUID `json:"bundle_id"`
	OfferCount int       `json:"offer_count"`
}

// NewBundleDispatchedEvent creates a new BundleDispatchedEvent
func NewBundleDispatchedEvent(b *Bundle) *BundleDispatchedEvent {
	return &BundleDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleDispatched, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		OfferCount:      len(b.Offers),
	}
}

// EventType returns the event type name
func (e *BundleDispatchedEvent) EventType() string {
	return EventTypeBundleDispatched
}

// BundleClosedEvent is raised when every offer has reached a terminal state
type BundleClosedEvent struct {
	shared.BaseDomainEvent
	BundleID       uuid.UUID       `json:"bundle_id"`
	AcceptedAmount decimal.Decimal `json:"accepted_amount"`
}

// NewBundleClosedEvent creates a new BundleClosedEvent
func NewBundleClosedEvent(b *Bundle) *BundleClosedEvent {
	return &BundleClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBundleClosed, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:        b.ID,
		AcceptedAmount:  b.AcceptedAmount(),
	}
}

// EventType returns the event type name
func (e *BundleClosedEvent) EventType() string {
	return EventTypeBundleClosed
}

// OfferAcceptedEvent is raised when an athlete accepts an offer
type OfferAcceptedEvent struct {
	shared.BaseDomainEvent
	BundleID         uuid.UUID       `json:"bundle_id"`
	OfferID          uuid.UUID       `json:"offer_id"`
	AthleteProfileID uuid.UUID       `json:"athlete_profile_id"`
	Amount           decimal.Decimal `json:"amount"`
}

// NewOfferAcceptedEvent creates a new OfferAcceptedEvent
func NewOfferAcceptedEvent(b *Bundle, o *BundleOffer) *OfferAcceptedEvent {
	return &OfferAcceptedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOfferAccepted, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:         b.ID,
		OfferID:          o.ID,
		AthleteProfileID: o.AthleteProfileID,
		Amount:           o.Amount,
	}
}

// EventType returns the event type name
func (e *OfferAcceptedEvent) EventType() string {
	return EventTypeOfferAccepted
}

// OfferDeclinedEvent is raised when an athlete declines an offer
type OfferDeclinedEvent struct {
	shared.BaseDomainEvent
	BundleID         uuid.UUID `json:"bundle_id"`
	OfferID          uuid.UUID `json:"offer_id"`
	AthleteProfileID uuid.UUID `json:"athlete_profile_id"`
	Reason           string    `json:"reason"`
}

// NewOfferDeclinedEvent creates a new OfferDeclinedEvent
func NewOfferDeclinedEvent(b *Bundle, o *BundleOffer) *OfferDeclinedEvent {
	return &OfferDeclinedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOfferDeclined, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:         b.ID,
		OfferID:          o.ID,
		AthleteProfileID: o.AthleteProfileID,
		Reason:           o.DeclineReason,
	}
}

// EventType returns the event type name
func (e *OfferDeclinedEvent) EventType() string {
	return EventTypeOfferDeclined
}

// OfferWithdrawnEvent is raised when a business withdraws a pending offer
type OfferWithdrawnEvent struct {
	shared.BaseDomainEvent
	BundleID         uuid.UUID `json:"bundle_id"`
	OfferID          uuid.UUID `json:"offer_id"`
	AthleteProfileID uuid.UUID `json:"athlete_profile_id"`
}

// NewOfferWithdrawnEvent creates a new OfferWithdrawnEvent
func NewOfferWithdrawnEvent(b *Bundle, o *BundleOffer) *OfferWithdrawnEvent {
	return &OfferWithdrawnEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOfferWithdrawn, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:         b.ID,
		OfferID:          o.ID,
		AthleteProfileID: o.AthleteProfileID,
	}
}

// EventType returns the event type name
func (e *OfferWithdrawnEvent) EventType() string {
	return EventTypeOfferWithdrawn
}

// OfferExpiredEvent is raised when the expiry sweep times out an offer
type OfferExpiredEvent struct {
	shared.BaseDomainEvent
	BundleID         uuid.UUID `json:"bundle_id"`
	OfferID          uuid.UUID `json:"offer_id"`
	AthleteProfileID uuid.UUID `json:"athlete_profile_id"`
}

// NewOfferExpiredEvent creates a new OfferExpiredEvent
func NewOfferExpiredEvent(b *Bundle, o *BundleOffer) *OfferExpiredEvent {
	return &OfferExpiredEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOfferExpired, AggregateTypeBundle, b.ID, b.TenantID),
		BundleID:         b.ID,
		OfferID:          o.ID,
		AthleteProfileID: o.AthleteProfileID,
	}
}

// EventType returns the event type name
func (e *OfferExpiredEvent) EventType() string {
	return EventTypeOfferExpired
}
