package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scholarbrief/internal/archive"
	"scholarbrief/internal/cache"
	"scholarbrief/internal/config"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the archive",
	Long:  "Delete archived articles digested before the retention cutoff and reclaim disk space.",
	RunE: func(cmd *cobra.Command, args []string) error {
		retention := 90 * 24 * time.Hour
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		db, err := archive.Open(config.ArchivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive and novelty cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dbPath := config.ArchivePath()
		db, err := archive.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Archive: %s\n", dbPath)
		fmt.Printf("Articles: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		if last, ok := db.LastDigest(); ok {
			fmt.Printf("Last digest: %s\n", last.Local().Format("2006-01-02 15:04"))
		}

		seen, err := cache.Open(cfg.CachePath())
		if err != nil {
			return fmt.Errorf("opening novelty cache: %w", err)
		}
		fmt.Printf("\nNovelty cache: %s\n", cfg.CachePath())
		fmt.Printf("Seen titles: %d\n", seen.Len())
		if last, ok := seen.LastRunTime(); ok {
			fmt.Printf("Last run: %s\n", last.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "retention period (e.g., 30d, 720h; default 90d)")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
