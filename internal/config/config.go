package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Feed is one journal alert feed (RSS or Atom).
type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type Email struct {
	Enabled   bool   `yaml:"enabled"`
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	Password  string `yaml:"password"`
}

type Config struct {
	SearchQueries      []string  `yaml:"search_queries"`
	DaysBack           int       `yaml:"days_back"`
	MaxResultsPerQuery int       `yaml:"max_results_per_query"`
	RelevanceKeywords  []string  `yaml:"relevance_keywords"`
	OutputDir          string    `yaml:"output_dir"`
	OutputFormat       string    `yaml:"output_format"`
	EndnoteFile        string    `yaml:"endnote_file,omitempty"`
	Feeds              []Feed    `yaml:"feeds"`
	AI                 *AIConfig `yaml:"ai,omitempty"`
	Email              Email     `yaml:"email"`
}

// AIEnabled reports whether an AI provider is configured with a usable key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey resolves the API key: explicit config value first, then the
// provider's conventional environment variable.
func (c *Config) AIKey() string {
	if c.AI == nil {
		return ""
	}
	if c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	switch c.AI.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// SMTPPassword resolves the email password from config or environment.
func (c *Config) SMTPPassword() string {
	if c.Email.Password != "" {
		return c.Email.Password
	}
	return os.Getenv("SCHOLARBRIEF_SMTP_PASSWORD")
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// Since returns the start of the lookback window ending at now.
func (c *Config) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.DaysBack)
}

// YearFrom returns the publication-year lower bound for scholar queries.
func (c *Config) YearFrom(now time.Time) int {
	return c.Since(now).Year()
}

// CachePath returns the novelty cache location. It lives beside the digest
// output so run state travels with the digests it describes.
func (c *Config) CachePath() string {
	return filepath.Join(c.OutputDir, ".article_cache.json")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "scholarbrief", "config.yaml")
}

func ArchivePath() string {
	return filepath.Join(xdg.DataHome, "scholarbrief", "archive.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: materialize the defaults so they can be edited.
			// Failing to write them is non-fatal.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg, defaults)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// applyDefaults fills unset fields from the embedded defaults, so a
// minimal user config still yields a runnable setup.
func applyDefaults(cfg, defaults *Config) {
	if len(cfg.SearchQueries) == 0 {
		cfg.SearchQueries = defaults.SearchQueries
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = defaults.DaysBack
	}
	if cfg.MaxResultsPerQuery <= 0 {
		cfg.MaxResultsPerQuery = defaults.MaxResultsPerQuery
	}
	if len(cfg.RelevanceKeywords) == 0 {
		cfg.RelevanceKeywords = defaults.RelevanceKeywords
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = defaults.OutputFormat
	}
	if cfg.AI == nil {
		cfg.AI = defaults.AI
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = defaults.Email.SMTPHost
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = defaults.Email.SMTPPort
	}

	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.EndnoteFile = expandHome(cfg.EndnoteFile)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func validate(cfg *Config) error {
	if cfg.OutputFormat != "markdown" && cfg.OutputFormat != "html" {
		return fmt.Errorf("output_format must be markdown or html, got %q", cfg.OutputFormat)
	}
	if cfg.DaysBack < 0 {
		return fmt.Errorf("days_back must not be negative, got %d", cfg.DaysBack)
	}
	if cfg.MaxResultsPerQuery > 20 {
		return fmt.Errorf("max_results_per_query must be at most 20, got %d", cfg.MaxResultsPerQuery)
	}
	if cfg.AI != nil && cfg.AI.Provider != "claude" && cfg.AI.Provider != "openai" {
		return fmt.Errorf("ai provider must be claude or openai, got %q", cfg.AI.Provider)
	}
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	if cfg.Email.Enabled {
		if cfg.Email.Sender == "" || cfg.Email.Recipient == "" {
			return fmt.Errorf("email: sender and recipient are required when enabled")
		}
		if cfg.Email.SMTPHost == "" {
			return fmt.Errorf("email: smtp_host is required when enabled")
		}
	}
	return nil
}
