package pulse

import (
	"sync"
	"time"

	"github.com/newspulse/newspulse/newsletter"
)

// State tracks the last newsletter issue that went through generation, so a
// content check that re-fetches the same message does not produce a second
// batch of posts. Empty at startup; a daemon restart regenerates from the
// current issue at most once.
type State struct {
	mu            sync.Mutex
	lastIssueKey  string
	lastCheckedAt time.Time
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Seen reports whether msg was already processed.
func (s *State) Seen(msg *newsletter.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIssueKey != "" && s.lastIssueKey == issueKey(msg)
}

// MarkSeen records msg as processed. Call only after its posts are safely
// in the store.
func (s *State) MarkSeen(msg *newsletter.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastIssueKey = issueKey(msg)
	s.lastCheckedAt = time.Now()
}

// issueKey is the deduplication key for an issue. The Message-ID header
// when present, otherwise subject plus date, which is stable enough for
// senders that omit the header.
func issueKey(msg *newsletter.Message) string {
	if msg.ID != "" {
		return msg.ID
	}
	return msg.Subject + "|" + msg.Date.UTC().Format(time.RFC3339)
}
