package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir            string `toml:"data_dir"`
	LogDir             string `toml:"log_dir"`
	TranscriptCacheDir string `toml:"transcript_cache_dir"`
	DropDir            string `toml:"drop_dir"`
	APIBind            string `toml:"api_bind"`
}

// Models assigns an LLM to each role in the summarization pipeline.
type Models struct {
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
	Synthesis string `toml:"synthesis"`
}

// LLM contains connection settings for the chat-completion providers.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	GeminiAPIKey   string `toml:"gemini_api_key"`
}

// Summarize contains tuning for the multi-model summarization pipeline.
type Summarize struct {
	CostThresholdTokens   int     `toml:"cost_threshold_tokens"`
	FallbackStrategy      string  `toml:"fallback_strategy"`
	SummaryTemplatePath   string  `toml:"summary_template_path"`
	SynthesisTemplatePath string  `toml:"synthesis_template_path"`
	Temperature           float64 `toml:"temperature"`
	TopP                  float64 `toml:"top_p"`
	MaxTokens             int     `toml:"max_tokens"`
	RetryAttempts         int     `toml:"retry_attempts"`
	RetryBaseSeconds      int     `toml:"retry_base_seconds"`
}

// Telegram contains delivery settings for the Bot API.
type Telegram struct {
	BotToken         string `toml:"bot_token"`
	ChatID           string `toml:"chat_id"`
	BaseURL          string `toml:"base_url"`
	RequestTimeout   int    `toml:"request_timeout"`
	MessageMaxLength int    `toml:"message_max_length"`
	Errors           bool   `toml:"errors"`
}

// Channels contains settings for the monitored channel registry.
type Channels struct {
	ConfigPath          string `toml:"config_path"`
	PollIntervalMinutes int    `toml:"poll_interval_minutes"`
	MaxVideosPerPoll    int    `toml:"max_videos_per_poll"`
}

// YtDlp contains settings for the subtitle extraction tool.
type YtDlp struct {
	BinaryPath     string   `toml:"binary_path"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	SubtitleLangs  []string `toml:"subtitle_langs"`
}

// Workflow contains daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Recap.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Models: LLM role assignments (primary/secondary/synthesis)
//   - LLM: provider connection settings and API keys
//   - Summarize: cost gating, fallback strategy, prompt templates
//   - Telegram: bot token, chat, and delivery tuning
//   - Channels: monitored channel registry and poll cadence
//   - YtDlp: subtitle extraction tool settings
//   - Workflow: daemon polling intervals
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Models    Models    `toml:"models"`
	LLM       LLM       `toml:"llm"`
	Summarize Summarize `toml:"summarize"`
	Telegram  Telegram  `toml:"telegram"`
	Channels  Channels  `toml:"channels"`
	YtDlp     YtDlp     `toml:"ytdlp"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recap/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.TranscriptCacheDir, c.Paths.DropDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "recap.db")
}

// LockPath returns the daemon lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "recap.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
