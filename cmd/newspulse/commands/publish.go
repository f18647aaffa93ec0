package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/schedule"
)

// PublishCmd publishes a single scheduled post immediately.
var PublishCmd = &cobra.Command{
	Use:   "publish <post-id>",
	Short: "Publish one scheduled post now, regardless of its slot",
	Long: `Publish a post by id (a unique prefix is enough), ahead of its
scheduled slot if necessary. Failed posts can be re-triggered this way;
already-published posts are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store := newStore(cfg)
		post, err := findPost(store, args[0])
		if err != nil {
			return err
		}
		if post.Status == schedule.StatusPublished {
			return fmt.Errorf("post %s was already published at %s", shortID(post.ID), post.PublishedTime.Local().Format(time.RFC822))
		}

		publisher := newPublisher(cfg)
		if err := publisher.Publish(cmd.Context(), post.Content); err != nil {
			if merr := store.MarkFailed(post.ID); merr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record failure: %v\n", merr)
			}
			return fmt.Errorf("publish failed: %w", err)
		}

		if err := store.MarkPublished(post.ID, time.Now()); err != nil {
			return fmt.Errorf("post went out but could not be recorded: %w", err)
		}

		fmt.Printf("Published %s (%s)\n", shortID(post.ID), post.Topic)
		return nil
	},
}

// findPost resolves a full id or unique prefix to a post.
func findPost(store *schedule.Store, idOrPrefix string) (*schedule.Post, error) {
	posts, err := store.Load()
	if err != nil {
		return nil, err
	}

	var matches []*schedule.Post
	for i := range posts {
		if posts[i].ID == idOrPrefix {
			return &posts[i], nil
		}
		if strings.HasPrefix(posts[i].ID, idOrPrefix) {
			matches = append(matches, &posts[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no post matches %q", idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d posts, use a longer prefix", idOrPrefix, len(matches))
	}
}
