package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/autostream/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCaptureAssignsIDAndTimestamp(t *testing.T) {
	repo := newTestStore(t)

	lead := &domain.Lead{
		SessionID:    "s1",
		Name:         "Sarah",
		Email:        "sarah@x.com",
		Platform:     "YouTube",
		SelectedPlan: "pro",
	}
	require.NoError(t, repo.Capture(context.Background(), lead))

	assert.NotEmpty(t, lead.ID)
	assert.False(t, lead.CapturedAt.IsZero())
}

func TestListLeadsNewestFirst(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	older := &domain.Lead{SessionID: "s1", Name: "A", Email: "a@x.com", Platform: "YouTube",
		SelectedPlan: "basic", CapturedAt: time.Now().Add(-time.Hour)}
	newer := &domain.Lead{SessionID: "s2", Name: "B", Email: "b@x.com", Platform: "TikTok",
		SelectedPlan: "pro", ChannelLink: "youtube.com/@b"}
	require.NoError(t, repo.Capture(ctx, older))
	require.NoError(t, repo.Capture(ctx, newer))

	leads, err := repo.ListLeads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "B", leads[0].Name)
	assert.Equal(t, "youtube.com/@b", leads[0].ChannelLink)
	assert.Equal(t, "A", leads[1].Name)
	assert.Empty(t, leads[1].ChannelLink)
}

func TestCountLeads(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	count, err := repo.CountLeads(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Capture(ctx, &domain.Lead{SessionID: "s1", Name: "A",
		Email: "a@x.com", Platform: "YouTube", SelectedPlan: "pro"}))

	count, err = repo.CountLeads(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
