// Package schedule holds the scheduled-post model, the engine that spreads
// a batch of drafts across calendar slots, and the flat-file store the poll
// loop reads due posts from.
package schedule

import (
	"time"
)

// Status is the lifecycle state of a scheduled post.
// Transitions only move forward: pending → published or pending → failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Draft is an unscheduled (topic, content) pair produced by a generation run.
type Draft struct {
	Topic   string
	Content string
}

// Post is a draft with an assigned publication slot, as persisted in the
// store file.
type Post struct {
	ID            string     `json:"id"`
	Topic         string     `json:"topic"`
	Content       string     `json:"content"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        Status     `json:"status"`
	PublishedTime *time.Time `json:"published_time,omitempty"`
	GeneratedAt   time.Time  `json:"generated_at"`
	SourceSubject string     `json:"source_subject,omitempty"`
}

// Due reports whether the post is pending and its slot has passed.
func (p *Post) Due(now time.Time) bool {
	return p.Status == StatusPending && !p.ScheduledTime.After(now)
}
