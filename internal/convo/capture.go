package convo

import (
	"github.com/ashureev/autostream/internal/domain"
)

// ClosingMessage is the fixed reply sent once a lead is captured. No
// further selling or questions after this point.
const ClosingMessage = "Thanks for sharing your details. Our team will review your information and reach out to you shortly to help you get started with AutoStream. Looking forward to supporting your content journey."

// FallbackReply is the safe static reply used when the generation engine
// fails or times out.
const FallbackReply = "I'm here to help! What would you like to know about our video editing plans?"

// ShouldCapture reports whether the lead is fully qualified and not yet
// captured: high purchase intent plus all four required fields.
func ShouldCapture(rec *domain.SessionRecord) bool {
	if rec.LeadCaptured {
		return false
	}
	if rec.Intent != domain.IntentHighIntent {
		return false
	}
	return rec.Name != "" && rec.Email != "" && rec.Platform != "" && rec.SelectedPlan != ""
}

// MissingFields lists the required lead fields still unset, in display form.
func MissingFields(rec *domain.SessionRecord) []string {
	var missing []string
	if rec.Name == "" {
		missing = append(missing, "Name")
	}
	if rec.Email == "" {
		missing = append(missing, "Email")
	}
	if rec.Platform == "" {
		missing = append(missing, "Platform")
	}
	if rec.SelectedPlan == "" {
		missing = append(missing, "Plan selection")
	}
	return missing
}
