package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/schedule"
)

// PostsCmd lists scheduled posts.
var PostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List scheduled posts and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		status, _ := cmd.Flags().GetString("status")
		asJSON, _ := cmd.Flags().GetBool("output-json")

		store := newStore(cfg)
		if asJSON {
			posts, err := filteredPosts(store, status)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(posts, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		return printPosts(store, status)
	},
}

func init() {
	PostsCmd.Flags().String("status", "", "Filter by status: pending, published, or failed")
	PostsCmd.Flags().Bool("output-json", false, "Print posts as JSON")
}

func filteredPosts(store *schedule.Store, status string) ([]schedule.Post, error) {
	posts, err := store.Load()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return posts, nil
	}

	filtered := make([]schedule.Post, 0, len(posts))
	for _, p := range posts {
		if string(p.Status) == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func printPosts(store *schedule.Store, status string) error {
	posts, err := filteredPosts(store, status)
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		fmt.Println("No posts")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSCHEDULED\tTOPIC")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(p.ID),
			p.Status,
			p.ScheduledTime.Local().Format("2006-01-02 15:04"),
			p.Topic)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
