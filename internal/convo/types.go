// Package convo implements the per-turn conversation pipeline: slot
// extraction, the phase state machine, the lead capture trigger and the
// orchestrator composing them around the external engines.
package convo

import (
	"context"

	"github.com/ashureev/autostream/internal/domain"
)

// GenerationRequest carries everything the generation engine needs for a
// single reply: the session record (known fields and current phase are
// embedded in the prompt), the retrieved supporting context and the raw
// user message.
type GenerationRequest struct {
	Record  *domain.SessionRecord
	Context string
	Message string
}

// Generator produces a reply for one turn. The reply may embed an inline
// intent tag; the engine is fallible and may time out or error.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Retriever returns ranked supporting snippets for a query. An empty
// result is valid, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// ChannelAnalyzer looks up descriptive metadata for a shared channel link.
// It returns nil when the URL cannot be parsed.
type ChannelAnalyzer interface {
	Analyze(ctx context.Context, channelURL string) *domain.ChannelAnalysis
}

// CaptureSink persists or forwards a completed lead. The trigger
// guarantees at-most-once invocation per session.
type CaptureSink interface {
	Capture(ctx context.Context, lead *domain.Lead) error
}

// PublicState is the state slice returned to the caller after each turn.
type PublicState struct {
	SelectedPlan      string       `json:"selected_plan,omitempty"`
	Name              string       `json:"name,omitempty"`
	Email             string       `json:"email,omitempty"`
	Platform          string       `json:"platform,omitempty"`
	ChannelLink       string       `json:"channel_link,omitempty"`
	LeadCaptured      bool         `json:"lead_captured"`
	TurnCount         int          `json:"turn_count"`
	ConversationState domain.Phase `json:"conversation_state"`
}

// TurnResult is the outcome of one processed user message.
type TurnResult struct {
	Reply        string                 `json:"reply"`
	Intent       domain.Intent          `json:"intent"`
	State        PublicState            `json:"state"`
	UIComponents map[string]interface{} `json:"ui_components"`
}

func publicState(rec *domain.SessionRecord) PublicState {
	return PublicState{
		SelectedPlan:      rec.SelectedPlan,
		Name:              rec.Name,
		Email:             rec.Email,
		Platform:          rec.Platform,
		ChannelLink:       rec.ChannelLink,
		LeadCaptured:      rec.LeadCaptured,
		TurnCount:         rec.TurnCount,
		ConversationState: rec.Phase,
	}
}
