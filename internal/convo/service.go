package convo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/autostream/internal/domain"
	"github.com/ashureev/autostream/internal/session"
)

const contextUnavailable = "Knowledge base not available."

// Service is the turn orchestrator. It composes extraction, generation,
// the phase state machine and the capture trigger for each inbound user
// message, and persists the updated record through the registry.
type Service struct {
	registry  *session.Registry
	generator Generator
	retriever Retriever
	analyzer  ChannelAnalyzer
	sink      CaptureSink
	topK      int
}

// NewService wires the orchestrator with its collaborators. topK bounds
// retrieval; non-positive values default to 3.
func NewService(registry *session.Registry, generator Generator, retriever Retriever, analyzer ChannelAnalyzer, sink CaptureSink, topK int) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		registry:  registry,
		generator: generator,
		retriever: retriever,
		analyzer:  analyzer,
		sink:      sink,
		topK:      topK,
	}
}

// Chat processes one user message for a session and returns the reply,
// the classified intent and the public state slice. Turns for the same
// session id are serialized; a turn either commits or leaves the record
// at its last committed state.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	unlock := s.registry.LockSession(sessionID)
	defer unlock()

	rec := s.registry.GetOrCreate(sessionID)

	// A captured lead closes the conversation: every later turn yields
	// the fixed closing reply and the session stays FINAL.
	if rec.Phase == domain.PhaseFinal {
		rec.AppendMessage(domain.RoleUser, message)
		rec.AppendMessage(domain.RoleAssistant, ClosingMessage)
		rec.TurnCount++
		s.registry.Update(sessionID, rec)
		return &TurnResult{
			Reply:        ClosingMessage,
			Intent:       rec.Intent,
			State:        publicState(rec),
			UIComponents: s.uiComponents(rec),
		}, nil
	}

	rec.AppendMessage(domain.RoleUser, message)

	retrieved := s.retrieveContext(ctx, message)
	rec.RetrievedContext = retrieved

	raw, err := s.generator.Generate(ctx, GenerationRequest{
		Record:  rec,
		Context: retrieved,
		Message: message,
	})
	if err != nil {
		// Engine failure is recovered locally: static fallback reply,
		// previous intent retained, no state transition.
		slog.Error("Generation engine failed", "session_id", sessionID, "error", err)
		rec.AppendMessage(domain.RoleAssistant, FallbackReply)
		s.registry.Update(sessionID, rec)
		return &TurnResult{
			Reply:        FallbackReply,
			Intent:       rec.Intent,
			State:        publicState(rec),
			UIComponents: s.uiComponents(rec),
		}, nil
	}

	intent, reply := ParseReply(raw, rec.Intent)
	lower := strings.ToLower(message)

	upd := ExtractSlots(message, rec)
	next := NextPhase(rec.Phase, intent, lower, rec)

	upd.Apply(rec)
	rec.Intent = intent
	rec.Phase = next

	if upd.ChannelLink != "" && !rec.ChannelAnalysisDone {
		if analysis := s.analyzer.Analyze(ctx, upd.ChannelLink); analysis != nil {
			rec.ChannelAnalysis = analysis
			rec.ChannelAnalysisDone = true
		}
	}

	if ShouldCapture(rec) {
		lead := &domain.Lead{
			SessionID:    sessionID,
			Name:         rec.Name,
			Email:        rec.Email,
			Platform:     rec.Platform,
			SelectedPlan: rec.SelectedPlan,
			ChannelLink:  rec.ChannelLink,
			CapturedAt:   time.Now(),
		}
		if err := s.sink.Capture(ctx, lead); err != nil {
			// Leave lead_captured false so the trigger re-evaluates on
			// the next turn.
			slog.Error("Lead capture failed", "session_id", sessionID, "error", err)
		} else {
			rec.LeadCaptured = true
			rec.Phase = domain.PhaseFinal
			reply = ClosingMessage
			slog.Info("Lead captured",
				"session_id", sessionID,
				"email", rec.Email,
				"platform", rec.Platform,
				"plan", rec.SelectedPlan,
			)
		}
	}

	rec.AppendMessage(domain.RoleAssistant, reply)
	rec.TurnCount++
	s.registry.Update(sessionID, rec)

	return &TurnResult{
		Reply:        reply,
		Intent:       intent,
		State:        publicState(rec),
		UIComponents: s.uiComponents(rec),
	}, nil
}

// retrieveContext queries the retrieval engine and formats the snippets
// for prompt embedding. Unavailable retrieval is a valid result, not an
// error for the turn.
func (s *Service) retrieveContext(ctx context.Context, query string) string {
	snippets, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		slog.Warn("Retrieval engine failed", "error", err)
		return contextUnavailable
	}
	if len(snippets) == 0 {
		return contextUnavailable
	}
	parts := make([]string, 0, len(snippets))
	for i, snippet := range snippets {
		parts = append(parts, fmt.Sprintf("[Context %d]\n%s", i+1, snippet))
	}
	return strings.Join(parts, "\n\n")
}

// uiComponents computes frontend display hints from the updated record.
func (s *Service) uiComponents(rec *domain.SessionRecord) map[string]interface{} {
	ui := map[string]interface{}{}

	if rec.Intent == domain.IntentPricing && rec.SelectedPlan == "" {
		ui["show_pricing_cards"] = true
	}
	if rec.SelectedPlan == "basic" {
		ui["show_plan_comparison"] = true
	}
	if rec.ChannelLink != "" && !rec.ChannelPermissionAsked {
		ui["show_channel_permission"] = true
		ui["channel_link"] = rec.ChannelLink
		rec.ChannelPermissionAsked = true
		s.registry.Update(rec.SessionID, rec)
	}
	if rec.Name != "" && rec.Email != "" && rec.Platform != "" && !rec.LeadCaptured {
		ui["show_confirmation"] = true
	}
	if rec.LeadCaptured {
		ui["show_success"] = true
	}
	if rec.ChannelAnalysis != nil {
		ui["channel_analysis"] = rec.ChannelAnalysis
	}
	return ui
}
