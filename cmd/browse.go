package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scholarbrief/internal/archive"
	"scholarbrief/internal/config"
	"scholarbrief/internal/tui"
)

var flagBrowseSince string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse previously digested articles",
	Long:  "Open the two-pane archive browser over every article that has appeared in a digest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := archive.Open(config.ArchivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		var since time.Time
		if flagBrowseSince != "" {
			d, err := parseSince(flagBrowseSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			since = time.Now().Add(-d)
		}

		return tui.Run(tui.RunOpts{DB: db, Since: since})
	},
}

func init() {
	browseCmd.Flags().StringVar(&flagBrowseSince, "since", "", "only show articles digested in the last duration (e.g., 7d, 24h)")
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
