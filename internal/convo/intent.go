package convo

import (
	"regexp"
	"strings"

	"github.com/ashureev/autostream/internal/domain"
)

// The generation engine tags its reply with a best-effort inline marker in
// either "INTENT: x" or "[INTENT: x]" form. The tag protocol is loose on
// purpose: a missing tag defaults to greeting, an unrecognized one falls
// back by escalation from the previous intent.
var (
	intentBarePattern    = regexp.MustCompile(`(?i)INTENT:\s*(\w+)`)
	intentBracketPattern = regexp.MustCompile(`(?i)\[INTENT:\s*(.*?)\]`)

	stripBracketPattern = regexp.MustCompile(`(?i)\[INTENT:.*?\]`)
	stripIntentPattern  = regexp.MustCompile(`(?i)INTENT:\s*\w+\s*`)
	stripStatePattern   = regexp.MustCompile(`(?i)STATE:\s*\w+\s*`)
)

// ParseReply extracts the intent tag from a raw engine reply and strips
// all inline tags from the visible text.
func ParseReply(raw string, previous domain.Intent) (domain.Intent, string) {
	intent := domain.IntentGreeting

	tag := ""
	if m := intentBarePattern.FindStringSubmatch(raw); m != nil {
		tag = m[1]
	} else if m := intentBracketPattern.FindStringSubmatch(raw); m != nil {
		tag = m[1]
	}

	if tag != "" {
		parsed, ok := domain.ParseIntent(strings.ToLower(strings.TrimSpace(tag)))
		if ok {
			intent = parsed
		} else {
			intent = escalateIntent(previous)
		}
	}

	clean := stripBracketPattern.ReplaceAllString(raw, "")
	clean = stripIntentPattern.ReplaceAllString(clean, "")
	clean = stripStatePattern.ReplaceAllString(clean, "")

	return intent, strings.TrimSpace(clean)
}

// escalateIntent advances one step along the qualification ladder when the
// engine emits a tag we cannot place, rather than surfacing an error.
func escalateIntent(previous domain.Intent) domain.Intent {
	switch previous {
	case domain.IntentGreeting:
		return domain.IntentInfo
	case domain.IntentInfo, domain.IntentPricing:
		return domain.IntentComparison
	default:
		return previous
	}
}
