package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/schedule"
)

func seedStore(t *testing.T) *schedule.Store {
	t.Helper()

	store := schedule.NewStore(filepath.Join(t.TempDir(), "posts.json"))
	now := time.Now()
	require.NoError(t, store.Save([]schedule.Post{
		{ID: "aaaa1111", Topic: "first", Status: schedule.StatusPending, ScheduledTime: now},
		{ID: "aaab2222", Topic: "second", Status: schedule.StatusFailed, ScheduledTime: now},
		{ID: "cccc3333", Topic: "third", Status: schedule.StatusPublished, ScheduledTime: now},
	}))
	return store
}

func TestFindPost(t *testing.T) {
	store := seedStore(t)

	post, err := findPost(store, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, "first", post.Topic)

	post, err = findPost(store, "cccc")
	require.NoError(t, err)
	assert.Equal(t, "third", post.Topic)

	_, err = findPost(store, "aaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longer prefix")

	_, err = findPost(store, "zzzz")
	assert.Error(t, err)
}

func TestFilteredPosts(t *testing.T) {
	store := seedStore(t)

	all, err := filteredPosts(store, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := filteredPosts(store, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "first", pending[0].Topic)

	failed, err := filteredPosts(store, "failed")
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}
