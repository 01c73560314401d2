package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scholarbrief/internal/ai"
	"scholarbrief/internal/archive"
	"scholarbrief/internal/article"
	"scholarbrief/internal/cache"
	"scholarbrief/internal/config"
	"scholarbrief/internal/digest"
	"scholarbrief/internal/email"
	"scholarbrief/internal/endnote"
	"scholarbrief/internal/feeds"
	"scholarbrief/internal/output"
	"scholarbrief/internal/pipeline"
	"scholarbrief/internal/scholar"
)

func runDigest(cmd *cobra.Command, args []string) error {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	setupLogging()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg)

	if len(cfg.SearchQueries) == 0 && cfg.EndnoteFile == "" && len(cfg.EnabledFeeds()) == 0 {
		return errors.New("nothing to collect: configure search queries, an endnote file, or feeds")
	}

	seen, err := cache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening novelty cache: %w", err)
	}

	ctx := context.Background()
	now := time.Now()

	batches := collectBatches(ctx, cfg, now)

	raw := 0
	for _, b := range batches {
		raw += len(b)
	}

	ranked, err := pipeline.Reconcile(batches, cfg.RelevanceKeywords, seen)
	if err != nil {
		return err
	}
	slog.Info("reconciled articles", "collected", raw, "new", len(ranked))

	if len(ranked) == 0 {
		fmt.Println("No new articles since the last run.")
		return nil
	}

	content := digest.Header(len(cfg.SearchQueries), len(ranked)) +
		digest.Render(ctx, ranked, cfg.RelevanceKeywords, buildSummarizer(cfg))

	path, err := output.Write(content, cfg.OutputDir, cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}

	recordHistory(ranked, now)

	if cfg.Email.Enabled {
		subject := fmt.Sprintf("Scholar Digest: %s", now.Format("2006-01-02"))
		sender := email.NewSender(cfg.Email, cfg.SMTPPassword())
		if err := sender.Send(subject, content); err != nil {
			slog.Warn("emailing digest failed", "error", err)
		} else {
			slog.Info("digest emailed", "recipient", cfg.Email.Recipient)
		}
	}

	fmt.Printf("Digest written to %s (%d new articles)\n", path, len(ranked))
	return nil
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func applyFlagOverrides(cfg *config.Config) {
	if len(flagQueries) > 0 {
		cfg.SearchQueries = flagQueries
	}
	if flagDays > 0 {
		cfg.DaysBack = flagDays
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagEndnote != "" {
		cfg.EndnoteFile = flagEndnote
	}
	switch flagFormat {
	case "":
	case "markdown", "html":
		cfg.OutputFormat = flagFormat
	default:
		slog.Warn("unknown --format, keeping configured format", "format", flagFormat)
	}
}

// collectBatches gathers one batch per source. A failing source logs a
// warning and contributes nothing; the run continues with whatever the
// others returned.
func collectBatches(ctx context.Context, cfg *config.Config, now time.Time) [][]article.Article {
	var batches [][]article.Article

	if len(cfg.SearchQueries) > 0 {
		client := scholar.New()
		opts := scholar.SearchOpts{
			MaxResults: cfg.MaxResultsPerQuery,
			YearFrom:   cfg.YearFrom(now),
		}
		for i, query := range cfg.SearchQueries {
			if i > 0 {
				time.Sleep(2 * time.Second) // pace scholar requests
			}
			found, err := client.Search(ctx, query, opts)
			if err != nil {
				slog.Warn("scholar search failed", "query", query, "error", err)
				continue
			}
			slog.Debug("scholar search done", "query", query, "results", len(found))
			batches = append(batches, found)
		}
	}

	if cfg.EndnoteFile != "" {
		imported, err := endnote.ImportFile(cfg.EndnoteFile)
		if err != nil {
			slog.Warn("endnote import failed", "file", cfg.EndnoteFile, "error", err)
		} else {
			slog.Debug("endnote import done", "file", cfg.EndnoteFile, "records", len(imported))
			batches = append(batches, imported)
		}
	}

	if enabled := cfg.EnabledFeeds(); len(enabled) > 0 {
		fctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		result := feeds.FetchAll(fctx, enabled, cfg.Since(now))
		for _, e := range result.Errors {
			slog.Warn("feed fetch failed", "error", e)
		}
		slog.Debug("feeds fetched", "articles", len(result.Articles))
		batches = append(batches, result.Articles)
	}

	return batches
}

// buildSummarizer returns nil when the digest should use the ranked listing
// instead of an AI summary.
func buildSummarizer(cfg *config.Config) ai.Summarizer {
	if flagNoAI {
		return nil
	}
	if cfg.AI == nil {
		return nil
	}
	if !cfg.AIEnabled() {
		slog.Warn("AI configured but no API key found, using ranked listing")
		return nil
	}
	s, err := ai.New(cfg.AI, cfg.AIKey())
	if err != nil {
		slog.Warn("AI setup failed, using ranked listing", "error", err)
		return nil
	}
	return s
}

// recordHistory appends the digested articles to the archive. History is
// best-effort: the digest file is already on disk, so archive trouble only
// warns.
func recordHistory(ranked []article.Article, now time.Time) {
	db, err := archive.Open(config.ArchivePath())
	if err != nil {
		slog.Warn("opening archive failed", "error", err)
		return
	}
	defer db.Close()

	if err := db.Record(ranked, now); err != nil {
		slog.Warn("archiving articles failed", "error", err)
		return
	}
	if err := db.SetLastDigest(now); err != nil {
		slog.Warn("recording digest time failed", "error", err)
	}
}
