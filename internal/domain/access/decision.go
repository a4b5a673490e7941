// Package access implements the route access decision table.
//
// Decide is a pure function from (auth state, route requirement, profile
// state) to a decision. The HTTP gating middleware and the route-decision
// endpoint both delegate here so the gating rules live in exactly one
// place.
package access

import "strings"

// AuthSource identifies how the caller is authenticated
type AuthSource string

const (
	AuthSourceNone    AuthSource = "none"
	AuthSourceSession AuthSource = "session"
)

// DecisionKind is the outcome of a route access check
type DecisionKind string

const (
	DecisionAllow    DecisionKind = "allow"
	DecisionRedirect DecisionKind = "redirect"
	DecisionDeny     DecisionKind = "deny"
)

// RedirectTarget names where a redirect decision points
type RedirectTarget string

const (
	RedirectLogin      RedirectTarget = "login"
	RedirectOnboarding RedirectTarget = "onboarding"
	RedirectUpgrade    RedirectTarget = "upgrade"
)

// AuthState is the caller's authentication context
type AuthState struct {
	Source             AuthSource `json:"source"`
	Roles              []string   `json:"roles"`
	SubscriptionActive bool       `json:"subscription_active"`
}

// ProfileState is the caller's profile context
type ProfileState struct {
	Exists            bool `json:"exists"`
	CompletionPercent int  `json:"completion_percent"`
	Suspended         bool `json:"suspended"`
}

// Requirement describes what a route demands
type Requirement struct {
	// Public routes skip all checks
	Public bool `json:"public"`
	// RequiredRoles is an any-of set; empty means any authenticated user
	RequiredRoles []string `json:"required_roles"`
	// MinCompletion gates on profile completion percentage; zero disables
	MinCompletion int `json:"min_completion"`
	// RequireSubscription gates on an active subscription
	RequireSubscription bool `json:"require_subscription"`
}

// Decision is the outcome of Decide
type Decision struct {
	Kind   DecisionKind   `json:"kind"`
	Target RedirectTarget `json:"target,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// IsAllowed returns true for an allow decision
func (d Decision) IsAllowed() bool {
	return d.Kind == DecisionAllow
}

const adminRole = "admin"

// Decide evaluates the route access table
//
// Rule order: public short-circuits; unauthenticated callers go to
// login; suspended profiles are denied; a role mismatch is denied;
// incomplete profiles go to onboarding; missing subscriptions go to
// upgrade. Admins bypass the onboarding and upgrade gates but not the
// suspension check
func Decide(auth AuthState, req Requirement, prof ProfileState) Decision {
	if req.Public {
		return Decision{Kind: DecisionAllow}
	}

	if auth.Source == AuthSourceNone || auth.Source == "" {
		return Decision{Kind: DecisionRedirect, Target: RedirectLogin, Reason: "authentication required"}
	}

	if prof.Suspended {
		return Decision{Kind: DecisionDeny, Reason: "profile suspended"}
	}

	if len(req.RequiredRoles) > 0 && !hasAnyRole(auth.Roles, req.RequiredRoles) {
		return Decision{Kind: DecisionDeny, Reason: "role not permitted"}
	}

	if isAdmin(auth.Roles) {
		return Decision{Kind: DecisionAllow}
	}

	if req.MinCompletion > 0 && (!prof.Exists || prof.CompletionPercent < req.MinCompletion) {
		return Decision{Kind: DecisionRedirect, Target: RedirectOnboarding, Reason: "profile incomplete"}
	}

	if req.RequireSubscription && !auth.SubscriptionActive {
		return Decision{Kind: DecisionRedirect, Target: RedirectUpgrade, Reason: "active subscription required"}
	}

	return Decision{Kind: DecisionAllow}
}

// Role codes are matched case-insensitively; identity stores them
// uppercase while route requirements are written lowercase
func hasAnyRole(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) || strings.EqualFold(h, adminRole) {
				return true
			}
		}
	}
	return false
}

func isAdmin(roles []string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, adminRole) {
			return true
		}
	}
	return false
}
