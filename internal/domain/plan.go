// Package domain contains core business types and interfaces.
//
// This file defines the subscription plan policy: the closed plan
// enumeration, the free-tier limits, and the admission decisions derived
// from them. All functions here are pure; counting lives in the service
// layer so that policy can change without touching any query.
package domain

import "fmt"

// Plan represents the subscription tier of a user.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Free plan limits. Pro is unlimited for both resources.
const (
	FreePlanLeadLimit = 5
	FreePlanAILimit   = 10
)

// Valid reports whether p is a known plan value.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

func (p Plan) String() string {
	return string(p)
}

// NormalizePlan maps a stored plan string to a Plan, defaulting unknown or
// empty values to the free tier. Storage carries the plan as free text, so
// an unrecognized value must never grant paid features.
func NormalizePlan(s string) Plan {
	if p := Plan(s); p.Valid() {
		return p
	}
	return PlanFree
}

// PlanLimits holds the resource limits for a plan. A nil limit means the
// resource is unlimited.
type PlanLimits struct {
	LeadLimit *int
	AILimit   *int
}

// LimitsFor returns the limits for the given plan.
func LimitsFor(plan Plan) PlanLimits {
	if plan == PlanPro {
		return PlanLimits{}
	}
	lead := FreePlanLeadLimit
	ai := FreePlanAILimit
	return PlanLimits{LeadLimit: &lead, AILimit: &ai}
}

// CanCreateLead reports whether an account with the given plan and current
// lead count may create another lead. Limits are strict less-than: an
// account sitting exactly at the limit is denied.
func CanCreateLead(plan Plan, leadCount int) bool {
	if plan == PlanPro {
		return true
	}
	return leadCount < FreePlanLeadLimit
}

// CanUseAI reports whether an account with the given plan and current
// monthly AI usage may request another generation.
func CanUseAI(plan Plan, aiUsage int) bool {
	if plan == PlanPro {
		return true
	}
	return aiUsage < FreePlanAILimit
}

// UsageSummary is the normalized view of an account's usage against its
// plan. It is derived on demand and never persisted or cached; both
// booleans are always computed here so that callers cannot drift from the
// policy thresholds.
type UsageSummary struct {
	Plan             Plan `json:"plan"`
	LeadCount        int  `json:"leadCount"`
	LeadLimit        *int `json:"leadLimit"`
	AIUsageThisMonth int  `json:"aiUsageThisMonth"`
	AILimit          *int `json:"aiLimit"`
	CanCreateLead    bool `json:"canCreateLead"`
	CanUseAI         bool `json:"canUseAi"`
}

// BuildUsageSummary composes plan, lead count, and monthly AI usage into a
// full summary. This is the single source of truth for admission.
func BuildUsageSummary(plan Plan, leadCount, aiUsage int) UsageSummary {
	limits := LimitsFor(plan)
	return UsageSummary{
		Plan:             plan,
		LeadCount:        leadCount,
		LeadLimit:        limits.LeadLimit,
		AIUsageThisMonth: aiUsage,
		AILimit:          limits.AILimit,
		CanCreateLead:    CanCreateLead(plan, leadCount),
		CanUseAI:         CanUseAI(plan, aiUsage),
	}
}

// Quota reason codes surfaced to API clients.
const (
	ReasonAILimitReached   = "AI_LIMIT_REACHED"
	ReasonLeadLimitReached = "LEAD_LIMIT_REACHED"
)

// QuotaError is a structured quota denial. It is a decision, not a fault:
// the caller receives the stable reason code together with the usage
// summary current at the moment of denial so it can render remaining quota
// or an upgrade prompt.
type QuotaError struct {
	Op     string
	Reason string
	Usage  UsageSummary
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: quota exceeded (%s)", e.Op, e.Reason)
}

// Message returns the user-facing denial message for the reason code.
func (e *QuotaError) Message() string {
	switch e.Reason {
	case ReasonLeadLimitReached:
		return "Lead limit reached. Please upgrade to Pro for unlimited leads."
	default:
		return "AI usage limit reached. Please upgrade to Pro for unlimited AI messages."
	}
}

// QuotaExceeded creates a quota denial carrying the current usage summary.
func QuotaExceeded(op, reason string, usage UsageSummary) *QuotaError {
	return &QuotaError{Op: op, Reason: reason, Usage: usage}
}
