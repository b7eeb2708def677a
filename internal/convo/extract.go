package convo

import (
	"regexp"
	"strings"

	"github.com/ashureev/autostream/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	namePattern  = regexp.MustCompile(`(?:my name is|i'm|i am|call me) ([\w\s]+)`)
	linkPattern  = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/\S+|youtu\.be/\S+`)
)

// platformNames maps the recognized keyword to its display form.
var platformNames = []struct {
	keyword string
	display string
}{
	{"youtube", "YouTube"},
	{"tiktok", "TikTok"},
	{"instagram", "Instagram"},
}

// Updates is the partial field map produced by one extraction pass.
type Updates struct {
	Name         string
	Email        string
	Platform     string
	SelectedPlan string
	ChannelLink  string
}

// Apply writes the updates onto the record, first-write-wins per field.
func (u Updates) Apply(rec *domain.SessionRecord) {
	if rec.Name == "" {
		rec.Name = u.Name
	}
	if rec.Email == "" {
		rec.Email = u.Email
	}
	if rec.Platform == "" {
		rec.Platform = u.Platform
	}
	if rec.SelectedPlan == "" {
		rec.SelectedPlan = u.SelectedPlan
	}
	if rec.ChannelLink == "" {
		rec.ChannelLink = u.ChannelLink
	}
}

// ExtractSlots derives lead fields from raw user text. Pure pattern
// matching, never calls the generation engine. Fields already set on the
// record are never re-derived.
func ExtractSlots(text string, rec *domain.SessionRecord) Updates {
	var upd Updates
	lower := strings.ToLower(text)

	if rec.Email == "" {
		if m := emailPattern.FindString(text); m != "" {
			upd.Email = m
		}
	}

	// "pro" is checked first so it beats "basic" when both appear.
	if rec.SelectedPlan == "" {
		if strings.Contains(lower, "pro") {
			upd.SelectedPlan = "pro"
		} else if strings.Contains(lower, "basic") {
			upd.SelectedPlan = "basic"
		}
	}

	if rec.Platform == "" {
		for _, p := range platformNames {
			if strings.Contains(lower, p.keyword) {
				upd.Platform = p.display
				break
			}
		}
	}

	if rec.Name == "" {
		if m := namePattern.FindStringSubmatch(lower); m != nil {
			words := strings.Fields(m[1])
			if len(words) > 0 {
				upd.Name = capitalize(words[0])
			}
		}
	}

	if rec.ChannelLink == "" && (strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be")) {
		if m := linkPattern.FindString(text); m != "" {
			upd.ChannelLink = m
		}
	}

	return upd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
