package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecofood-backend/internal/database"
	"ecofood-backend/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Record(ctx, []shared.AgentMeta{
		{
			AgentName: "Architect",
			Usage:     shared.TokenUsage{PromptTokens: 120, CompletionTokens: 450, Model: "gemini-2.5-flash"},
			Latency:   1200 * time.Millisecond,
		},
		// Fallback runs produce no token usage and are not recorded.
		{AgentName: "Profiler"},
	})

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	m := recent[0]
	assert.Equal(t, "Architect", m.AgentName)
	assert.Equal(t, "gemini-2.5-flash", m.Model)
	assert.Equal(t, 120, m.PromptTokens)
	assert.Equal(t, 450, m.CompletionTokens)
	assert.EqualValues(t, 1200, m.LatencyMS)
}

func TestRecentOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		store.Record(ctx, []shared.AgentMeta{{
			AgentName: "Architect",
			Usage:     shared.TokenUsage{PromptTokens: i, CompletionTokens: 1},
		}})
		time.Sleep(2 * time.Millisecond) // distinct timestamps
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].PromptTokens, "newest metric first")

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit falls back to the default")
}
