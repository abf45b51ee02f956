package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all casefile configuration
type Config struct {
	DataDir  string         `yaml:"data_dir" mapstructure:"data_dir"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Sanitize SanitizeConfig `yaml:"sanitize" mapstructure:"sanitize"`
	Feed     FeedConfig     `yaml:"feed" mapstructure:"feed"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Ledger   LedgerConfig   `yaml:"ledger" mapstructure:"ledger"`
}

// LLMConfig selects and tunes the extraction backend
type LLMConfig struct {
	API       string        `yaml:"api" mapstructure:"api"`               // model alias, see llm.Models
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`       // per request
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"` // response budget

	OpenAIBaseURL    string `yaml:"openai_base_url,omitempty" mapstructure:"openai_base_url"`
	AnthropicBaseURL string `yaml:"anthropic_base_url,omitempty" mapstructure:"anthropic_base_url"`
	OllamaBaseURL    string `yaml:"ollama_base_url,omitempty" mapstructure:"ollama_base_url"`

	// Keys come from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY) and are never written out
	OpenAIAPIKey    string `yaml:"-" mapstructure:"-"`
	AnthropicAPIKey string `yaml:"-" mapstructure:"-"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// PipelineConfig tunes chunking and pacing
type PipelineConfig struct {
	ChunkChars     int           `yaml:"chunk_chars" mapstructure:"chunk_chars"`
	Cooldown       time.Duration `yaml:"cooldown" mapstructure:"cooldown"`               // after every backend call
	ErrorBackoff   time.Duration `yaml:"error_backoff" mapstructure:"error_backoff"`     // extra wait after a backend error
	RegionCooldown time.Duration `yaml:"region_cooldown" mapstructure:"region_cooldown"` // between region repair calls
	AdPatterns     []string      `yaml:"ad_patterns" mapstructure:"ad_patterns"`
	ShowName       string        `yaml:"show_name" mapstructure:"show_name"`
	HostName       string        `yaml:"host_name" mapstructure:"host_name"`

	// ProviderCooldowns replaces both cooldowns for one provider, e.g. a local ollama
	ProviderCooldowns map[string]time.Duration `yaml:"provider_cooldowns" mapstructure:"provider_cooldowns"`
}

// SanitizeConfig holds the tunable sanitizer heuristics
type SanitizeConfig struct {
	DecadeCutoff    int    `yaml:"decade_cutoff" mapstructure:"decade_cutoff"` // two-digit decades >= cutoff are 1900s
	DomesticCountry string `yaml:"domestic_country" mapstructure:"domestic_country"`
}

// FeedConfig controls episode list retrieval
type FeedConfig struct {
	URLs          []string      `yaml:"urls" mapstructure:"urls"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	MaxRetryTime  time.Duration `yaml:"max_retry_time" mapstructure:"max_retry_time"`
}

// ExportConfig controls the tidy spreadsheet
type ExportConfig struct {
	Path  string `yaml:"path" mapstructure:"path"` // relative paths resolve under <data_dir>/output
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// MetricsConfig controls the end-of-run metrics dump
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	TextfilePath string `yaml:"textfile_path,omitempty" mapstructure:"textfile_path"`
}

// LedgerConfig controls the sqlite run history
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"` // relative paths resolve under data_dir
}

// DefaultAdPatterns are the sponsor reads stripped before chunking
var DefaultAdPatterns = []string{
	`(?is)let's do the sixty second savings challenge.*?rocketmoney\.com/cancel\.`,
	`(?is)have you ever had an edible.*?lumigummies\.com.*?m a u\.`,
	`(?is)do you find yourself wanting to eat better.*?factormeals\.com.*?show notes\.`,
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		LLM: LLMConfig{
			API:       "haiku",
			Timeout:   3 * time.Minute,
			MaxTokens: 8000,
		},
		Pipeline: PipelineConfig{
			ChunkChars:     75000,
			Cooldown:       1500 * time.Millisecond,
			ErrorBackoff:   5 * time.Second,
			RegionCooldown: time.Second,
			AdPatterns:     append([]string(nil), DefaultAdPatterns...),
			ShowName:       "Monsters Among Us",
			HostName:       "Derek Hayes",
			ProviderCooldowns: map[string]time.Duration{
				"ollama": 0,
			},
		},
		Sanitize: SanitizeConfig{
			DecadeCutoff:    30,
			DomesticCountry: "USA",
		},
		Feed: FeedConfig{
			URLs: []string{
				"https://feeds.audioboom.com/channels/5106512.rss",
				"http://monstersamonguspodcast.libsyn.com/rss",
				"https://feeds.megaphone.fm/QCD6797102910",
			},
			UserAgent:     "casefile/0.1 (+https://github.com/ppiankov/casefile)",
			Timeout:       30 * time.Second,
			MaxBytes:      50_000_000,
			RespectRobots: true,
			MaxRetryTime:  time.Minute,
		},
		Export: ExportConfig{
			Path:  "casefile_tidy.xlsx",
			Sheet: "Calls",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    "ledger.sqlite",
		},
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.Pipeline.ChunkChars <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.chunk_chars must be positive, got %d", c.Pipeline.ChunkChars))
	}
	if c.Pipeline.Cooldown < 0 || c.Pipeline.ErrorBackoff < 0 || c.Pipeline.RegionCooldown < 0 {
		errs = append(errs, errors.New("pipeline cooldowns must not be negative"))
	}
	for provider, d := range c.Pipeline.ProviderCooldowns {
		if d < 0 {
			errs = append(errs, fmt.Errorf("pipeline.provider_cooldowns.%s must not be negative", provider))
		}
	}
	if c.Sanitize.DecadeCutoff < 0 || c.Sanitize.DecadeCutoff > 99 {
		errs = append(errs, fmt.Errorf("sanitize.decade_cutoff must be in [0,99], got %d", c.Sanitize.DecadeCutoff))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// TranscriptsDir holds <id>.txt and <id>_timestamps.json
func (c *Config) TranscriptsDir() string { return filepath.Join(c.DataDir, "transcripts") }

// ParsedDir holds per-session checkpoints
func (c *Config) ParsedDir() string { return filepath.Join(c.DataDir, "parsed") }

// OutputDir holds exported spreadsheets
func (c *Config) OutputDir() string { return filepath.Join(c.DataDir, "output") }

// AudioDir holds downloaded audio, owned by the transcriber
func (c *Config) AudioDir() string { return filepath.Join(c.DataDir, "audio") }

// EpisodeListPath is the cached feed result
func (c *Config) EpisodeListPath() string { return filepath.Join(c.DataDir, "episode_list.json") }

// ExportPath resolves the configured export path
func (c *Config) ExportPath() string {
	if filepath.IsAbs(c.Export.Path) {
		return c.Export.Path
	}
	return filepath.Join(c.OutputDir(), c.Export.Path)
}

// LedgerPath resolves the configured ledger path
func (c *Config) LedgerPath() string {
	if filepath.IsAbs(c.Ledger.Path) {
		return c.Ledger.Path
	}
	return filepath.Join(c.DataDir, c.Ledger.Path)
}
