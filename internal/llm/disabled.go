package llm

import (
	"context"

	"github.com/ashureev/autostream/internal/convo"
)

const disabledReply = "Our AI assistant is offline right now, but I can still take your details — what's your name, email and which platform do you create for? INTENT: info"

// Disabled is the generator wired when no API key is configured. Every
// turn gets the same canned reply; slot extraction and the phase state
// machine still run, so lead capture keeps working without the engine.
type Disabled struct{}

// Generate returns the fixed offline reply.
func (Disabled) Generate(_ context.Context, _ convo.GenerationRequest) (string, error) {
	return disabledReply, nil
}
