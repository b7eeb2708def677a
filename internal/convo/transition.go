package convo

import (
	"strings"

	"github.com/ashureev/autostream/internal/domain"
)

var (
	// Content platforms and posting-cadence keywords that move the
	// conversation out of discovery.
	discoveryKeywords = []string{"youtube", "tiktok", "instagram", "weekly", "daily", "monthly"}

	pricingKeywords   = []string{"price", "cost", "plan", "how much"}
	agreementKeywords = []string{"sounds good", "okay", "interested", "like it"}
)

// NextPhase computes the phase for a turn. Transitions are strictly
// forward-only under the phase order; FINAL is absorbing.
//
// Pricing signals are checked before discovery keywords, so a pricing
// question asked while the platform is still unknown jumps DISCOVERY
// straight to PRICING instead of stalling in discovery.
func NextPhase(current domain.Phase, intent domain.Intent, lowerText string, rec *domain.SessionRecord) domain.Phase {
	switch current {
	case domain.PhaseFinal:
		return domain.PhaseFinal

	case domain.PhaseDiscovery:
		if pricingSignal(intent, lowerText) {
			return domain.PhasePricing
		}
		if containsAny(lowerText, discoveryKeywords) {
			return domain.PhaseExploring
		}
		return domain.PhaseDiscovery

	case domain.PhaseExploring:
		if pricingSignal(intent, lowerText) {
			return domain.PhasePricing
		}
		return domain.PhaseExploring

	case domain.PhasePricing:
		if containsAny(lowerText, agreementKeywords) {
			return domain.PhaseConfirmation
		}
		if intent == domain.IntentHighIntent {
			return domain.PhaseQualified
		}
		return domain.PhasePricing

	case domain.PhaseConfirmation:
		// CONFIRMATION is a single-turn phase: every subsequent turn
		// leaves it, whether or not explicit commitment language is
		// present. Lingering here loops on ambiguous follow-ups.
		return domain.PhaseQualified

	case domain.PhaseQualified:
		if rec.LeadCaptured {
			return domain.PhaseFinal
		}
		return domain.PhaseQualified
	}

	return current
}

func pricingSignal(intent domain.Intent, lowerText string) bool {
	if intent == domain.IntentPricing || intent == domain.IntentComparison {
		return true
	}
	return containsAny(lowerText, pricingKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
