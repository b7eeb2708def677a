package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/autostream/internal/domain"
	"github.com/ashureev/autostream/internal/session"
)

type scriptedGenerator struct {
	replies []string
	calls   int
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ GenerationRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	reply := g.replies[g.calls%len(g.replies)]
	g.calls++
	return reply, nil
}

type staticRetriever struct {
	snippets []string
	err      error
}

func (r *staticRetriever) Retrieve(_ context.Context, _ string, _ int) ([]string, error) {
	return r.snippets, r.err
}

type stubAnalyzer struct {
	calls int
}

func (a *stubAnalyzer) Analyze(_ context.Context, url string) *domain.ChannelAnalysis {
	a.calls++
	return &domain.ChannelAnalysis{ChannelName: "sarahvlogs", ChannelURL: url}
}

type recordingSink struct {
	leads []*domain.Lead
	err   error
}

func (s *recordingSink) Capture(_ context.Context, lead *domain.Lead) error {
	if s.err != nil {
		return s.err
	}
	s.leads = append(s.leads, lead)
	return nil
}

func newTestService(gen *scriptedGenerator, sink *recordingSink) (*Service, *session.Registry) {
	registry := session.NewRegistry(10, time.Hour, 6)
	svc := NewService(registry, gen, &staticRetriever{snippets: []string{"Basic is $29/month."}}, &stubAnalyzer{}, sink, 3)
	return svc, registry
}

func TestChatGreeting(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Welcome to AutoStream! INTENT: greeting"}}
	sink := &recordingSink{}
	svc, _ := newTestService(gen, sink)

	res, err := svc.Chat(context.Background(), "s1", "Hi there")
	require.NoError(t, err)

	assert.Equal(t, "Welcome to AutoStream!", res.Reply)
	assert.Equal(t, domain.IntentGreeting, res.Intent)
	assert.Equal(t, domain.PhaseDiscovery, res.State.ConversationState)
	assert.Equal(t, 1, res.State.TurnCount)
	assert.Empty(t, sink.leads)
}

func TestChatPricingQuestionAdvancesPhase(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"Welcome to AutoStream! INTENT: greeting",
		"We offer Basic and Pro. [INTENT: pricing]",
	}}
	svc, _ := newTestService(gen, &recordingSink{})

	_, err := svc.Chat(context.Background(), "s1", "Hi there")
	require.NoError(t, err)

	res, err := svc.Chat(context.Background(), "s1", "What pricing plans do you offer?")
	require.NoError(t, err)

	// Platform unknown, so the pricing question takes the skip path
	// straight to PRICING.
	assert.Equal(t, domain.PhasePricing, res.State.ConversationState)
	assert.Equal(t, domain.IntentPricing, res.Intent)
	assert.Contains(t, res.UIComponents, "show_pricing_cards")
}

func TestChatFullQualificationScenario(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"Welcome to AutoStream! INTENT: greeting",
		"We offer Basic and Pro. [INTENT: pricing]",
		"You're all set, Sarah! INTENT: high_intent",
	}}
	sink := &recordingSink{}
	svc, _ := newTestService(gen, sink)
	ctx := context.Background()

	_, err := svc.Chat(ctx, "s1", "Hi there")
	require.NoError(t, err)
	_, err = svc.Chat(ctx, "s1", "What pricing plans do you offer?")
	require.NoError(t, err)

	res, err := svc.Chat(ctx, "s1", "I'll take the Pro plan, sign me up, my name is Sarah and my email is sarah@x.com and I'm on YouTube")
	require.NoError(t, err)

	assert.Equal(t, "pro", res.State.SelectedPlan)
	assert.Equal(t, "Sarah", res.State.Name)
	assert.Equal(t, "sarah@x.com", res.State.Email)
	assert.Equal(t, "YouTube", res.State.Platform)
	assert.Equal(t, domain.IntentHighIntent, res.Intent)
	assert.Equal(t, domain.PhaseFinal, res.State.ConversationState)
	assert.True(t, res.State.LeadCaptured)
	assert.Equal(t, ClosingMessage, res.Reply)
	assert.Contains(t, res.UIComponents, "show_success")

	require.Len(t, sink.leads, 1)
	lead := sink.leads[0]
	assert.Equal(t, "s1", lead.SessionID)
	assert.Equal(t, "Sarah", lead.Name)
	assert.Equal(t, "sarah@x.com", lead.Email)
	assert.Equal(t, "YouTube", lead.Platform)
	assert.Equal(t, "pro", lead.SelectedPlan)
}

func TestChatAfterCaptureYieldsClosingReply(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"Done! INTENT: high_intent",
		"Should never be used. INTENT: pricing",
	}}
	sink := &recordingSink{}
	svc, registry := newTestService(gen, sink)
	ctx := context.Background()

	// Prime a session already at PRICING with all slots filled.
	rec := registry.GetOrCreate("s1")
	rec.Phase = domain.PhasePricing
	registry.Update("s1", rec)

	res, err := svc.Chat(ctx, "s1", "sign me up for pro, I'm Sarah, sarah@x.com, on YouTube")
	require.NoError(t, err)
	require.True(t, res.State.LeadCaptured)

	for i := 0; i < 3; i++ {
		res, err = svc.Chat(ctx, "s1", "anything else?")
		require.NoError(t, err)
		assert.Equal(t, ClosingMessage, res.Reply)
		assert.Equal(t, domain.PhaseFinal, res.State.ConversationState)
	}

	// The sink is never invoked again for this session.
	assert.Len(t, sink.leads, 1)
	assert.Equal(t, 1, gen.calls)
}

func TestChatSinkFailureRearmsTrigger(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"On it! INTENT: high_intent"}}
	sink := &recordingSink{err: errors.New("crm unavailable")}
	svc, registry := newTestService(gen, sink)
	ctx := context.Background()

	rec := registry.GetOrCreate("s1")
	rec.Phase = domain.PhasePricing
	registry.Update("s1", rec)

	res, err := svc.Chat(ctx, "s1", "sign me up for pro, I'm Sarah, sarah@x.com, on YouTube")
	require.NoError(t, err)

	assert.False(t, res.State.LeadCaptured)
	assert.NotEqual(t, domain.PhaseFinal, res.State.ConversationState)
	assert.Empty(t, sink.leads)

	// Sink recovers: the next turn retries the capture.
	sink.err = nil
	res, err = svc.Chat(ctx, "s1", "yes please sign me up")
	require.NoError(t, err)
	assert.True(t, res.State.LeadCaptured)
	assert.Equal(t, domain.PhaseFinal, res.State.ConversationState)
	assert.Len(t, sink.leads, 1)
}

func TestChatGenerationFailureFallsBack(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("engine timeout")}
	svc, registry := newTestService(gen, &recordingSink{})

	rec := registry.GetOrCreate("s1")
	rec.Intent = domain.IntentPricing
	rec.Phase = domain.PhaseExploring
	registry.Update("s1", rec)

	res, err := svc.Chat(context.Background(), "s1", "tell me about plans")
	require.NoError(t, err, "engine failures are recovered locally, never surfaced")

	assert.Equal(t, FallbackReply, res.Reply)
	assert.Equal(t, domain.IntentPricing, res.Intent, "previous intent retained")
	assert.Equal(t, domain.PhaseExploring, res.State.ConversationState, "no transition on failure")
}

func TestChatChannelAnalysisRunsOnce(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Nice channel! INTENT: info"}}
	registry := session.NewRegistry(10, time.Hour, 6)
	analyzer := &stubAnalyzer{}
	svc := NewService(registry, gen, &staticRetriever{}, analyzer, &recordingSink{}, 3)
	ctx := context.Background()

	res, err := svc.Chat(ctx, "s1", "my channel is youtube.com/@sarahvlogs")
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
	assert.Contains(t, res.UIComponents, "channel_analysis")
	assert.Contains(t, res.UIComponents, "show_channel_permission")

	// Link already stored: no second lookup, no second permission prompt.
	res, err = svc.Chat(ctx, "s1", "here it is again youtube.com/@sarahvlogs")
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
	assert.NotContains(t, res.UIComponents, "show_channel_permission")
}

func TestChatTurnCountMonotonic(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Hello! INTENT: greeting"}}
	svc, _ := newTestService(gen, &recordingSink{})
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		res, err := svc.Chat(ctx, "s1", "hello")
		require.NoError(t, err)
		assert.Equal(t, i, res.State.TurnCount)
	}
}
