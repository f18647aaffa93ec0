package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/newspulse/newspulse/errors"
	"github.com/newspulse/newspulse/internal/util"
)

// DefaultSlotHours are the time-of-day slots posts land on, in ascending
// order. Business hours, so a feed reader sees posts spread through the
// working day rather than a midnight dump.
var DefaultSlotHours = []int{9, 12, 15, 17}

// Distributor assigns calendar slots to a batch of drafts.
type Distributor struct {
	SlotHours []int
}

// NewDistributor returns a distributor using the given time-of-day slots,
// falling back to DefaultSlotHours when none are given.
func NewDistributor(slotHours []int) *Distributor {
	if len(slotHours) == 0 {
		slotHours = DefaultSlotHours
	}
	return &Distributor{SlotHours: slotHours}
}

// Distribute spreads drafts across days calendar days starting at start,
// filling each day's slots in order before moving to the next day. A day
// takes max(1, ceil(len(drafts)/days)) posts; when a day needs more posts
// than the slot list has hours, the day's last slot time is reused so the
// batch stays in non-decreasing order. Slots already in the past relative
// to now are skipped without counting against the day, so a batch started
// mid-afternoon lands on the remaining slots of today before spilling into
// tomorrow.
//
// Returns ErrInvalidDays when days is not positive. An empty draft list
// yields an empty batch.
func (d *Distributor) Distribute(drafts []Draft, days int, start, now time.Time) ([]Post, error) {
	if days <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidDays, "days must be positive, got %d", days)
	}
	if len(drafts) == 0 {
		return []Post{}, nil
	}

	slotsPerDay := util.CeilDiv(len(drafts), days)
	if slotsPerDay < 1 {
		slotsPerDay = 1
	}

	generatedAt := now
	posts := make([]Post, 0, len(drafts))

	// Cursor over the slot grid. hourIdx walks the slot list within a day;
	// assigned counts posts placed on the current day. The cursor only ever
	// moves forward in absolute time, which keeps the batch monotonic even
	// when past slots force posts later.
	day, hourIdx, assigned := 0, 0, 0

	for _, draft := range drafts {
		// Skip slots that have already passed. Skipped slots do not count
		// toward the day's quota.
		for d.slotTime(start, day, hourIdx).Before(now) {
			hourIdx++
			if hourIdx >= len(d.SlotHours) {
				day, hourIdx, assigned = day+1, 0, 0
			}
		}

		posts = append(posts, Post{
			ID:            uuid.NewString(),
			Topic:         draft.Topic,
			Content:       draft.Content,
			ScheduledTime: d.slotTime(start, day, hourIdx),
			Status:        StatusPending,
			GeneratedAt:   generatedAt,
		})

		assigned++
		if assigned >= slotsPerDay {
			day, hourIdx, assigned = day+1, 0, 0
			continue
		}
		if hourIdx < len(d.SlotHours)-1 {
			// A day holding more posts than there are slot hours parks the
			// overflow on the final hour rather than wrapping to morning.
			hourIdx++
		}
	}

	return posts, nil
}

// slotTime resolves a (day, slot) cursor position to wall-clock time in
// start's location.
func (d *Distributor) slotTime(start time.Time, day, hourIdx int) time.Time {
	base := start.AddDate(0, 0, day)
	return time.Date(base.Year(), base.Month(), base.Day(), d.SlotHours[hourIdx], 0, 0, 0, base.Location())
}
