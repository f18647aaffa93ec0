package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/errors"
)

func drafts(n int) []Draft {
	out := make([]Draft, n)
	for i := range out {
		out[i] = Draft{Topic: "topic", Content: "content"}
	}
	return out
}

func at(base time.Time, day, hour int) time.Time {
	d := base.AddDate(0, 0, day)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location())
}

func TestDistributeFillsDaysInOrder(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := start // midnight, all slots ahead

	posts, err := d.Distribute(drafts(5), 3, start, now)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	// ceil(5/3) = 2 posts per day
	assert.Equal(t, at(start, 0, 9), posts[0].ScheduledTime)
	assert.Equal(t, at(start, 0, 12), posts[1].ScheduledTime)
	assert.Equal(t, at(start, 1, 9), posts[2].ScheduledTime)
	assert.Equal(t, at(start, 1, 12), posts[3].ScheduledTime)
	assert.Equal(t, at(start, 2, 9), posts[4].ScheduledTime)

	for _, p := range posts {
		assert.Equal(t, StatusPending, p.Status)
		assert.NotEmpty(t, p.ID)
	}
}

func TestDistributeSkipsPastSlots(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := at(start, 0, 13) // 9:00 and 12:00 already gone

	posts, err := d.Distribute(drafts(5), 3, start, now)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	assert.Equal(t, at(start, 0, 15), posts[0].ScheduledTime)
	assert.Equal(t, at(start, 0, 17), posts[1].ScheduledTime)
	assert.Equal(t, at(start, 1, 9), posts[2].ScheduledTime)
	assert.Equal(t, at(start, 1, 12), posts[3].ScheduledTime)
	assert.Equal(t, at(start, 2, 9), posts[4].ScheduledTime)

	for _, p := range posts {
		assert.False(t, p.ScheduledTime.Before(now))
	}
}

func TestDistributeWholeDayPastSpillsToTomorrow(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := at(start, 0, 18) // after the last slot of day one

	posts, err := d.Distribute(drafts(2), 1, start, now)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, at(start, 1, 9), posts[0].ScheduledTime)
	assert.Equal(t, at(start, 1, 12), posts[1].ScheduledTime)
}

func TestDistributeMonotonic(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		count int
		days  int
		now   time.Time
	}{
		{"single post", 1, 1, start},
		{"exact fit", 4, 1, start},
		{"more posts than slots", 10, 1, start},
		{"more days than posts", 2, 7, start},
		{"mid-afternoon start", 9, 2, at(start, 0, 16)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts, err := d.Distribute(drafts(tc.count), tc.days, start, tc.now)
			require.NoError(t, err)
			require.Len(t, posts, tc.count)

			for i := 1; i < len(posts); i++ {
				assert.False(t, posts[i].ScheduledTime.Before(posts[i-1].ScheduledTime),
					"post %d scheduled before post %d", i, i-1)
			}
			for _, p := range posts {
				assert.False(t, p.ScheduledTime.Before(tc.now))
			}
		})
	}
}

func TestDistributeOverfullDayReusesLastSlot(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	posts, err := d.Distribute(drafts(6), 1, start, start)
	require.NoError(t, err)
	require.Len(t, posts, 6)

	assert.Equal(t, at(start, 0, 17), posts[3].ScheduledTime)
	assert.Equal(t, at(start, 0, 17), posts[4].ScheduledTime)
	assert.Equal(t, at(start, 0, 17), posts[5].ScheduledTime)
}

func TestDistributeEmpty(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Now()

	posts, err := d.Distribute(nil, 3, start, start)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestDistributeInvalidDays(t *testing.T) {
	d := NewDistributor(nil)
	start := time.Now()

	for _, days := range []int{0, -1} {
		_, err := d.Distribute(drafts(3), days, start, start)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidDays))
	}
}

func TestDistributeCustomSlots(t *testing.T) {
	d := NewDistributor([]int{8, 20})
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	posts, err := d.Distribute(drafts(3), 2, start, start)
	require.NoError(t, err)

	assert.Equal(t, at(start, 0, 8), posts[0].ScheduledTime)
	assert.Equal(t, at(start, 0, 20), posts[1].ScheduledTime)
	assert.Equal(t, at(start, 1, 8), posts[2].ScheduledTime)
}
