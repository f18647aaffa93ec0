package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/errors"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "posts.json"))
}

func pendingPost(slot time.Time) Post {
	return Post{
		ID:            uuid.NewString(),
		Topic:         "topic",
		Content:       "content",
		ScheduledTime: slot,
		Status:        StatusPending,
		GeneratedAt:   slot.Add(-time.Hour),
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := tempStore(t)

	posts, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)
	slot := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	original := []Post{pendingPost(slot), pendingPost(slot.Add(3 * time.Hour))}
	require.NoError(t, s.Save(original))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, original[0].ID, loaded[0].ID)
	assert.Equal(t, original[0].Topic, loaded[0].Topic)
	assert.True(t, original[0].ScheduledTime.Equal(loaded[0].ScheduledTime))
	assert.Equal(t, StatusPending, loaded[0].Status)
	assert.Nil(t, loaded[0].PublishedTime)
}

func TestStoreLoadCorruptFile(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.IsStorageError(err))

	// The corrupt file is left in place for inspection
	data, readErr := os.ReadFile(s.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestStoreAppend(t *testing.T) {
	s := tempStore(t)
	slot := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append([]Post{pendingPost(slot)}))
	require.NoError(t, s.Append([]Post{pendingPost(slot.Add(time.Hour))}))

	posts, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestStorePending(t *testing.T) {
	s := tempStore(t)
	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

	past := pendingPost(now.Add(-time.Hour))
	pastEarlier := pendingPost(now.Add(-4 * time.Hour))
	future := pendingPost(now.Add(time.Hour))
	published := pendingPost(now.Add(-2 * time.Hour))
	published.Status = StatusPublished

	require.NoError(t, s.Save([]Post{past, future, published, pastEarlier}))

	due, err := s.Pending(now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Oldest slot first
	assert.Equal(t, pastEarlier.ID, due[0].ID)
	assert.Equal(t, past.ID, due[1].ID)
}

func TestStoreMarkPublished(t *testing.T) {
	s := tempStore(t)
	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	p := pendingPost(now.Add(-time.Hour))
	require.NoError(t, s.Save([]Post{p}))

	require.NoError(t, s.MarkPublished(p.ID, now))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)
	require.NotNil(t, got.PublishedTime)
	assert.True(t, now.Equal(*got.PublishedTime))

	// Marking again keeps the original publication time
	require.NoError(t, s.MarkPublished(p.ID, now.Add(time.Hour)))
	got, err = s.Get(p.ID)
	require.NoError(t, err)
	assert.True(t, now.Equal(*got.PublishedTime))
}

func TestStoreMarkFailed(t *testing.T) {
	s := tempStore(t)
	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	p := pendingPost(now.Add(-time.Hour))
	require.NoError(t, s.Save([]Post{p}))

	require.NoError(t, s.MarkFailed(p.ID))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Nil(t, got.PublishedTime)
}

func TestStoreMarkFailedNeverDemotesPublished(t *testing.T) {
	s := tempStore(t)
	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	p := pendingPost(now.Add(-time.Hour))
	require.NoError(t, s.Save([]Post{p}))
	require.NoError(t, s.MarkPublished(p.ID, now))

	require.NoError(t, s.MarkFailed(p.ID))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)
}

func TestStoreMarkUnknownID(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save([]Post{}))

	assert.Error(t, s.MarkPublished("missing", time.Now()))
	assert.Error(t, s.MarkFailed("missing"))
}
