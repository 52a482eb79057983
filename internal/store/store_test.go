package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTimeline(t *testing.T) timeline.Timeline {
	t.Helper()
	var tl timeline.Timeline
	for _, ev := range []types.InteractionEvent{
		{ID: "r", Type: types.EventRedirect, TriggeredAt: 0, URL: "https://example.com"},
		{ID: "a", Type: types.EventMouseClick, TriggeredAt: 10, Selector: "#a", SelectedSelector: &types.Selector{Name: types.SelectorID, Value: "#a"}},
		{ID: "b", Type: types.EventMouseClick, TriggeredAt: 10, Selector: "#b"},
	} {
		tl, _ = timeline.Append(tl, ev)
	}
	tl, _, ok := timeline.InsertBlock(tl, types.EventBlock{ID: "blk", Type: types.EventAssertion, TriggeredAt: 20, AssertionType: types.AssertToHaveTitle}, 1)
	require.True(t, ok)
	return tl
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	tl := sampleTimeline(t)
	saved, err := s.Save(ctx, "checkout", 4, tl)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 3, saved.EntryCount)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "checkout", got.Name)
	assert.Equal(t, 4, got.TabID)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	if diff := cmp.Diff(tl, got.Timeline); diff != "" {
		t.Errorf("timeline changed in storage (-want +got):\n%s", diff)
	}
	require.NoError(t, timeline.Validate(got.Timeline))
}

func TestGetByNameReturnsNewest(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return base }
	_, err := s.Save(ctx, "login", 1, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Minute) }
	newer, err := s.Save(ctx, "login", 2, sampleTimeline(t))
	require.NoError(t, err)

	got, err := s.Get(ctx, "login")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Nil(t, list[0].Timeline, "List omits timelines")
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "tmp", 1, nil)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, saved.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	_, err := s.Save(context.Background(), "  ", 1, nil)
	assert.Error(t, err)
}
