package schedule

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/newspulse/newspulse/errors"
)

// Store persists scheduled posts as a single JSON array on disk. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-written store behind. A mutex serializes load-modify-save cycles,
// since the content and publish loops share one store in-process.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the JSON file at path. The file is not
// created until the first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store's backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads all posts from the store file. A missing file is an empty
// store, not an error. Unreadable or unparseable content returns a storage
// error without touching the file.
func (s *Store) Load() ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Post, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Post{}, nil
		}
		return nil, errors.NewStorageError(err, "reading store file "+s.path)
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, errors.NewStorageError(err, "parsing store file "+s.path)
	}
	return posts, nil
}

// Save atomically replaces the store contents with posts.
func (s *Store) Save(posts []Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(posts)
}

func (s *Store) save(posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return errors.NewStorageError(err, "encoding posts")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStorageError(err, "creating store directory "+dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.NewStorageError(err, "creating temp file in "+dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorageError(err, "writing temp store file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError(err, "closing temp store file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError(err, "replacing store file "+s.path)
	}
	return nil
}

// Append adds posts to the store, preserving existing entries.
func (s *Store) Append(posts []Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(existing, posts...))
}

// Pending returns posts that are due for publication at now, oldest slot
// first.
func (s *Store) Pending(now time.Time) ([]Post, error) {
	posts, err := s.Load()
	if err != nil {
		return nil, err
	}

	due := make([]Post, 0)
	for _, p := range posts {
		if p.Due(now) {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledTime.Before(due[j].ScheduledTime)
	})
	return due, nil
}

// Get returns the post with the given id.
func (s *Store) Get(id string) (*Post, error) {
	posts, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, errors.Newf("no post with id %s", id)
}

// MarkPublished transitions the post with the given id to published and
// records the publication time. Marking an already-published post again is
// a no-op, so a crash between publish and save cannot flip a post back.
func (s *Store) MarkPublished(id string, at time.Time) error {
	return s.transition(id, func(p *Post) error {
		if p.Status == StatusPublished {
			return nil
		}
		p.Status = StatusPublished
		p.PublishedTime = &at
		return nil
	})
}

// MarkFailed transitions the post with the given id to failed. Posts that
// already published stay published.
func (s *Store) MarkFailed(id string) error {
	return s.transition(id, func(p *Post) error {
		if p.Status == StatusPublished {
			return nil
		}
		p.Status = StatusFailed
		return nil
	})
}

func (s *Store) transition(id string, apply func(*Post) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range posts {
		if posts[i].ID == id {
			if err := apply(&posts[i]); err != nil {
				return err
			}
			found = true
			break
		}
	}
	if !found {
		return errors.Newf("no post with id %s", id)
	}
	return s.save(posts)
}
