package timer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timer.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	got, err := store.GetStatus(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	status := ScheduleStatus{
		Last:        Never,
		Next:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastUpdated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.UpdateStatus(ctx, "t1", status))

	got, err = store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, status.Next.Equal(got.Next))
	assert.True(t, status.LastUpdated.Equal(got.LastUpdated))
}

func TestSQLStoreUpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timer.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	first := ScheduleStatus{
		Last:        Never,
		Next:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastUpdated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.UpdateStatus(ctx, "t1", first))

	second := ScheduleStatus{
		Last:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Next:        time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
		LastUpdated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.UpdateStatus(ctx, "t1", second))

	got, err := store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, second.Last.Equal(got.Last))
	assert.True(t, second.Next.Equal(got.Next))
}

func TestSQLStorePersistsMultipleTimers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timer.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s1 := ScheduleStatus{Last: Never, Next: time.Now().UTC(), LastUpdated: time.Now().UTC()}
	s2 := ScheduleStatus{Last: Never, Next: time.Now().UTC().Add(time.Hour), LastUpdated: time.Now().UTC()}
	require.NoError(t, store.UpdateStatus(ctx, "t1", s1))
	require.NoError(t, store.UpdateStatus(ctx, "t2", s2))

	got1, err := store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	got2, err := store.GetStatus(ctx, "t2")
	require.NoError(t, err)

	assert.True(t, s1.Next.Equal(got1.Next))
	assert.True(t, s2.Next.Equal(got2.Next))
}
