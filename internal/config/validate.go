package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownFallbackStrategies = map[string]struct{}{
	"best_summary":    {},
	"primary_summary": {},
}

var knownProviders = map[string]struct{}{
	"openrouter": {},
	"gemini":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateSummarize(); err != nil {
		return err
	}
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if _, ok := knownProviders[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider must be one of openrouter, gemini (got %q)", c.LLM.Provider)
	}
	switch c.LLM.Provider {
	case "openrouter":
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/recap/config.toml"
			}
			return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'recap config init')", defaultPath)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return errors.New("llm.gemini_api_key is required when llm.provider is gemini (or set GEMINI_API_KEY)")
		}
	}
	return nil
}

func (c *Config) validateModels() error {
	if c.Models.Primary == "" {
		return errors.New("models.primary must be set")
	}
	if c.Models.Secondary == "" {
		return errors.New("models.secondary must be set")
	}
	if c.Models.Synthesis == "" {
		return errors.New("models.synthesis must be set")
	}
	return nil
}

func (c *Config) validateSummarize() error {
	if _, ok := knownFallbackStrategies[c.Summarize.FallbackStrategy]; !ok {
		return fmt.Errorf("summarize.fallback_strategy must be one of best_summary, primary_summary (got %q)", c.Summarize.FallbackStrategy)
	}
	if c.Summarize.CostThresholdTokens < 0 {
		return errors.New("summarize.cost_threshold_tokens must be >= 0 (0 disables the gate)")
	}
	if c.Summarize.Temperature > 2 {
		return errors.New("summarize.temperature must be <= 2")
	}
	if c.Summarize.TopP > 1 {
		return errors.New("summarize.top_p must be <= 1")
	}
	return nil
}

func (c *Config) validateTelegram() error {
	configured := c.Telegram.BotToken != "" || c.Telegram.ChatID != ""
	if !configured {
		return nil
	}
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return errors.New("telegram.bot_token must be set when telegram.chat_id is set")
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		return errors.New("telegram.chat_id must be set when telegram.bot_token is set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":   c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval":  c.Workflow.ErrorRetryInterval,
		"channels.poll_interval_minutes": c.Channels.PollIntervalMinutes,
		"channels.max_videos_per_poll":   c.Channels.MaxVideosPerPoll,
		"ytdlp.timeout_seconds":          c.YtDlp.TimeoutSeconds,
		"telegram.request_timeout":       c.Telegram.RequestTimeout,
		"llm.timeout_seconds":            c.LLM.TimeoutSeconds,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
