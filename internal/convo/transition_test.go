package convo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/autostream/internal/domain"
)

func next(t *testing.T, current domain.Phase, intent domain.Intent, text string) domain.Phase {
	t.Helper()
	rec := domain.NewSessionRecord("s")
	rec.Phase = current
	return NextPhase(current, intent, strings.ToLower(text), rec)
}

func TestDiscoveryToExploring(t *testing.T) {
	assert.Equal(t, domain.PhaseExploring, next(t, domain.PhaseDiscovery, domain.IntentInfo, "I post on YouTube"))
	assert.Equal(t, domain.PhaseExploring, next(t, domain.PhaseDiscovery, domain.IntentInfo, "I upload weekly"))
	assert.Equal(t, domain.PhaseDiscovery, next(t, domain.PhaseDiscovery, domain.IntentGreeting, "Hi there"))
}

func TestDiscoverySkipsToPricing(t *testing.T) {
	// A pricing question with the platform still unknown jumps straight
	// to PRICING rather than stalling in discovery.
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhaseDiscovery, domain.IntentPricing, "What pricing plans do you offer?"))
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhaseDiscovery, domain.IntentInfo, "how much does it cost"))
}

func TestExploringToPricing(t *testing.T) {
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhaseExploring, domain.IntentPricing, "tell me more"))
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhaseExploring, domain.IntentComparison, "basic vs pro?"))
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhaseExploring, domain.IntentInfo, "what does a plan include"))
	assert.Equal(t, domain.PhaseExploring, next(t, domain.PhaseExploring, domain.IntentInfo, "I edit gaming videos"))
}

func TestPricingToConfirmation(t *testing.T) {
	assert.Equal(t, domain.PhaseConfirmation, next(t, domain.PhasePricing, domain.IntentInfo, "sounds good to me"))
	assert.Equal(t, domain.PhaseConfirmation, next(t, domain.PhasePricing, domain.IntentInfo, "okay, interesting"))
	assert.Equal(t, domain.PhasePricing, next(t, domain.PhasePricing, domain.IntentObjection, "that is expensive"))
}

func TestPricingShortcutToQualified(t *testing.T) {
	assert.Equal(t, domain.PhaseQualified, next(t, domain.PhasePricing, domain.IntentHighIntent, "sign me up for Pro"))
}

func TestConfirmationAlwaysExits(t *testing.T) {
	// Single-turn phase: even an ambiguous follow-up leaves it.
	assert.Equal(t, domain.PhaseQualified, next(t, domain.PhaseConfirmation, domain.IntentHighIntent, "yes let's do it"))
	assert.Equal(t, domain.PhaseQualified, next(t, domain.PhaseConfirmation, domain.IntentInfo, "hmm"))
	assert.Equal(t, domain.PhaseQualified, next(t, domain.PhaseConfirmation, domain.IntentGreeting, ""))
}

func TestQualifiedToFinalOnCapture(t *testing.T) {
	rec := domain.NewSessionRecord("s")
	rec.Phase = domain.PhaseQualified
	rec.LeadCaptured = true
	assert.Equal(t, domain.PhaseFinal, NextPhase(domain.PhaseQualified, domain.IntentHighIntent, "", rec))

	rec.LeadCaptured = false
	assert.Equal(t, domain.PhaseQualified, NextPhase(domain.PhaseQualified, domain.IntentHighIntent, "", rec))
}

func TestFinalIsAbsorbing(t *testing.T) {
	for _, intent := range []domain.Intent{domain.IntentGreeting, domain.IntentPricing, domain.IntentHighIntent} {
		assert.Equal(t, domain.PhaseFinal, next(t, domain.PhaseFinal, intent, "what about pricing on youtube"))
	}
}

func TestTransitionsNeverRegress(t *testing.T) {
	phases := []domain.Phase{
		domain.PhaseDiscovery, domain.PhaseExploring, domain.PhasePricing,
		domain.PhaseConfirmation, domain.PhaseQualified, domain.PhaseFinal,
	}
	intents := []domain.Intent{
		domain.IntentGreeting, domain.IntentInfo, domain.IntentPricing,
		domain.IntentComparison, domain.IntentObjection, domain.IntentHighIntent,
	}
	texts := []string{"", "hi", "youtube weekly", "price plan cost", "sounds good okay", "sign me up"}

	for _, phase := range phases {
		for _, intent := range intents {
			for _, text := range texts {
				got := next(t, phase, intent, text)
				assert.GreaterOrEqual(t, got.Rank(), phase.Rank(),
					"phase regressed: %s -> %s (intent=%s text=%q)", phase, got, intent, text)
			}
		}
	}
}
