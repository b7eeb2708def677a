// Package domain defines the core conversation types shared across the backend.
package domain

import (
	"time"
)

// Phase is the six-valued conversation stage governing selling behavior.
// Transitions are strictly forward-only; Final is absorbing.
type Phase string

const (
	PhaseDiscovery    Phase = "DISCOVERY"
	PhaseExploring    Phase = "EXPLORING"
	PhasePricing      Phase = "PRICING"
	PhaseConfirmation Phase = "CONFIRMATION"
	PhaseQualified    Phase = "QUALIFIED"
	PhaseFinal        Phase = "FINAL"
)

// phaseRanks orders phases so the forward-only invariant is checkable.
var phaseRanks = map[Phase]int{
	PhaseDiscovery:    0,
	PhaseExploring:    1,
	PhasePricing:      2,
	PhaseConfirmation: 3,
	PhaseQualified:    4,
	PhaseFinal:        5,
}

// Rank returns the position of the phase in the conversation order.
// Unknown phases rank as Discovery.
func (p Phase) Rank() int {
	if r, ok := phaseRanks[p]; ok {
		return r
	}
	return 0
}

// Before reports whether p precedes other in the conversation order.
func (p Phase) Before(other Phase) bool {
	return p.Rank() < other.Rank()
}

// Intent is the per-turn classification of visitor purpose, distinct from phase.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentInfo       Intent = "info"
	IntentPricing    Intent = "pricing"
	IntentComparison Intent = "comparison"
	IntentObjection  Intent = "objection"
	IntentHighIntent Intent = "high_intent"
)

// ParseIntent maps a raw tag to a known intent. The second return value
// reports whether the tag was recognized.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(raw) {
	case IntentGreeting, IntentInfo, IntentPricing, IntentComparison, IntentObjection, IntentHighIntent:
		return Intent(raw), true
	}
	return IntentGreeting, false
}

// Message roles stored in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn entry in the session history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChannelAnalysis holds the descriptive result of a channel-metadata lookup.
type ChannelAnalysis struct {
	ChannelName     string `json:"channel_name"`
	ChannelURL      string `json:"channel_url"`
	ContentType     string `json:"content_type"`
	UploadFrequency string `json:"upload_frequency"`
	Recommendation  string `json:"recommendation"`
}

// SessionRecord is the full per-conversation state object, keyed by an
// opaque caller-supplied session identifier.
type SessionRecord struct {
	SessionID string
	Messages  []Message
	Phase     Phase
	Intent    Intent

	// Slot fields: set at most once, never overwritten once non-empty.
	Name         string
	Email        string
	Platform     string
	SelectedPlan string
	ChannelLink  string

	LeadCaptured           bool
	ChannelAnalysisDone    bool
	ChannelPermissionAsked bool
	ChannelAnalysis        *ChannelAnalysis
	RetrievedContext       string

	TurnCount  int
	LastAccess time.Time
	CreatedAt  time.Time
}

// NewSessionRecord returns a default record for an unseen session identifier.
func NewSessionRecord(sessionID string) *SessionRecord {
	now := time.Now()
	return &SessionRecord{
		SessionID:  sessionID,
		Phase:      PhaseDiscovery,
		Intent:     IntentGreeting,
		LastAccess: now,
		CreatedAt:  now,
	}
}

// AppendMessage adds a (role, text) pair to the session history.
func (r *SessionRecord) AppendMessage(role, content string) {
	r.Messages = append(r.Messages, Message{Role: role, Content: content})
}

// LastUserMessage returns the most recent user message, or "" if none exists.
func (r *SessionRecord) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Clone returns a deep copy so callers can mutate turn state without
// touching the registry's stored record.
func (r *SessionRecord) Clone() *SessionRecord {
	cp := *r
	cp.Messages = make([]Message, len(r.Messages))
	copy(cp.Messages, r.Messages)
	if r.ChannelAnalysis != nil {
		analysis := *r.ChannelAnalysis
		cp.ChannelAnalysis = &analysis
	}
	return &cp
}

// Lead is the payload handed to the capture sink for a qualified visitor.
type Lead struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Platform     string    `json:"platform"`
	SelectedPlan string    `json:"selected_plan"`
	ChannelLink  string    `json:"channel_link,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`
}
