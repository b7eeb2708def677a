package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHandleURL(t *testing.T) {
	a := NewAnalyzer()

	analysis := a.Analyze(context.Background(), "https://www.youtube.com/@sarahvlogs")
	require.NotNil(t, analysis)
	assert.Equal(t, "sarahvlogs", analysis.ChannelName)
	assert.Equal(t, "https://www.youtube.com/@sarahvlogs", analysis.ChannelURL)
	assert.Equal(t, "YouTube Creator", analysis.ContentType)
}

func TestAnalyzeChannelIDAndCustomURLs(t *testing.T) {
	a := NewAnalyzer()

	analysis := a.Analyze(context.Background(), "youtube.com/channel/UC12345abc")
	require.NotNil(t, analysis)
	assert.Equal(t, "UC12345abc", analysis.ChannelName)

	analysis = a.Analyze(context.Background(), "youtube.com/c/SarahMakesVideos")
	require.NotNil(t, analysis)
	assert.Equal(t, "SarahMakesVideos", analysis.ChannelName)
}

func TestAnalyzeUnparseableURL(t *testing.T) {
	a := NewAnalyzer()

	assert.Nil(t, a.Analyze(context.Background(), "youtube.com/watch?v=abc123"))
	assert.Nil(t, a.Analyze(context.Background(), "https://example.com/@someone"))
	assert.Nil(t, a.Analyze(context.Background(), ""))
}

func TestAnalyzeStripsQueryAndPath(t *testing.T) {
	a := NewAnalyzer()

	analysis := a.Analyze(context.Background(), "youtube.com/@sarahvlogs?sub_confirmation=1")
	require.NotNil(t, analysis)
	assert.Equal(t, "sarahvlogs", analysis.ChannelName)
}
