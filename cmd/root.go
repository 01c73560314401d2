package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig    string
	flagVerbose   bool
	flagQueries   []string
	flagDays      int
	flagOutputDir string
	flagEndnote   string
	flagFormat    string
	flagNoAI      bool
)

var rootCmd = &cobra.Command{
	Use:   "scholarbrief",
	Short: "Scholarly article digest generator",
	Long: `scholarbrief collects new scholarly articles from Google Scholar, EndNote
exports, and journal alert feeds, filters out everything it has shown before,
ranks the rest by keyword relevance, and writes an AI-summarized digest.`,
	RunE: runDigest,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().StringArrayVarP(&flagQueries, "query", "q", nil, "search query (repeatable, replaces configured queries)")
	rootCmd.Flags().IntVarP(&flagDays, "days", "d", 0, "override lookback window in days")
	rootCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "override digest output directory")
	rootCmd.Flags().StringVarP(&flagEndnote, "endnote", "e", "", "EndNote export to import (.ris or .xml)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "digest format: markdown or html")
	rootCmd.Flags().BoolVar(&flagNoAI, "no-ai", false, "skip the AI summary and emit the ranked listing")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scholarbrief %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
