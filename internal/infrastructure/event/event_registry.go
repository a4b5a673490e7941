package event

import (
	"github.com/nilmarket/backend/internal/domain/billing"
	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/nilmarket/backend/internal/domain/campaign"
	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/nilmarket/backend/internal/domain/profile"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Profile domain - Athlete Profile events
	serializer.Register("AthleteProfileCreated", &profile.AthleteProfileCreatedEvent{})
	serializer.Register("AthleteProfileSubmitted", &profile.AthleteProfileSubmittedEvent{})
	serializer.Register("AthleteProfileActivated", &profile.AthleteProfileActivatedEvent{})
	serializer.Register("AthleteProfileRejected", &profile.AthleteProfileRejectedEvent{})
	serializer.Register("AthleteProfileSuspended", &profile.AthleteProfileSuspendedEvent{})

	// Profile domain - Business Profile events
	serializer.Register("BusinessProfileCreated", &profile.BusinessProfileCreatedEvent{})
	serializer.Register("BusinessProfileSubmitted", &profile.BusinessProfileSubmittedEvent{})
	serializer.Register("BusinessProfileActivated", &profile.BusinessProfileActivatedEvent{})
	serializer.Register("BusinessProfileRejected", &profile.BusinessProfileRejectedEvent{})
	serializer.Register("BusinessProfileSuspended", &profile.BusinessProfileSuspendedEvent{})

	// Campaign domain events
	serializer.Register("CampaignCreated", &campaign.CampaignCreatedEvent{})
	serializer.Register("CampaignStepCompleted", &campaign.CampaignStepCompletedEvent{})
	serializer.Register("CampaignPublished", &campaign.CampaignPublishedEvent{})
	serializer.Register("CampaignPaused", &campaign.CampaignPausedEvent{})
	serializer.Register("CampaignResumed", &campaign.CampaignResumedEvent{})
	serializer.Register("CampaignCompleted", &campaign.CampaignCompletedEvent{})
	serializer.Register("CampaignCancelled", &campaign.CampaignCancelledEvent{})

	// Bundle domain events
	serializer.Register("BundleCreated", &bundle.BundleCreatedEvent{})
	serializer.Register("BundleSubmittedForReview", &bundle.BundleSubmittedForReviewEvent{})
	serializer.Register("BundleApproved", &bundle.BundleApprovedEvent{})
	serializer.Register("BundleRejected", &bundle.BundleRejectedEvent{})
	serializer.Register("BundleDispatchRequested", &bundle.BundleDispatchRequestedEvent{})
	serializer.Register("BundleDispatched", &bundle.BundleDispatchedEvent{})
	serializer.Register("BundleClosed", &bundle.BundleClosedEvent{})

	// Bundle domain - Offer events
	serializer.Register("OfferAccepted", &bundle.OfferAcceptedEvent{})
	serializer.Register("OfferDeclined", &bundle.OfferDeclinedEvent{})
	serializer.Register("OfferWithdrawn", &bundle.OfferWithdrawnEvent{})
	serializer.Register("OfferExpired", &bundle.OfferExpiredEvent{})

	// Matching domain events
	serializer.Register("MatchRunCompleted", &matching.MatchRunCompletedEvent{})
	serializer.Register("MatchRunFailed", &matching.MatchRunFailedEvent{})

	// Billing domain - Subscription events
	serializer.Register("SubscriptionCreated", &billing.SubscriptionCreatedEvent{})
	serializer.Register("SubscriptionActivated", &billing.SubscriptionActivatedEvent{})
	serializer.Register("SubscriptionPlanChanged", &billing.SubscriptionPlanChangedEvent{})
	serializer.Register("SubscriptionCancelScheduled", &billing.SubscriptionCancelScheduledEvent{})
	serializer.Register("SubscriptionCanceled", &billing.SubscriptionCanceledEvent{})
	serializer.Register("SubscriptionReactivated", &billing.SubscriptionReactivatedEvent{})
	serializer.Register("SubscriptionPaymentFailed", &billing.SubscriptionPaymentFailedEvent{})

	// Billing domain - Usage quota events
	serializer.Register("QuotaWarning", &billing.QuotaWarningEvent{})
	serializer.Register("QuotaExceeded", &billing.QuotaExceededEvent{})
}
