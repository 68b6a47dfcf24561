package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeModels()
	c.normalizeLLM()
	if err := c.normalizeSummarize(); err != nil {
		return err
	}
	c.normalizeTelegram()
	if err := c.normalizeChannels(); err != nil {
		return err
	}
	c.normalizeYtDlp()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptCacheDir) == "" {
		c.Paths.TranscriptCacheDir = defaultTranscriptCacheDir
	}
	if c.Paths.TranscriptCacheDir, err = expandPath(c.Paths.TranscriptCacheDir); err != nil {
		return fmt.Errorf("paths.transcript_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DropDir) == "" {
		c.Paths.DropDir = defaultDropDir
	}
	if c.Paths.DropDir, err = expandPath(c.Paths.DropDir); err != nil {
		return fmt.Errorf("paths.drop_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeModels() {
	c.Models.Primary = strings.TrimSpace(c.Models.Primary)
	c.Models.Secondary = strings.TrimSpace(c.Models.Secondary)
	c.Models.Synthesis = strings.TrimSpace(c.Models.Synthesis)
	if c.Models.Primary == "" {
		c.Models.Primary = defaultPrimaryModel
	}
	if c.Models.Secondary == "" {
		c.Models.Secondary = defaultSecondaryModel
	}
	if c.Models.Synthesis == "" {
		c.Models.Synthesis = defaultSynthesisModel
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.GeminiAPIKey = strings.TrimSpace(c.LLM.GeminiAPIKey)
	if c.LLM.GeminiAPIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.LLM.GeminiAPIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeSummarize() error {
	var err error
	c.Summarize.FallbackStrategy = strings.ToLower(strings.TrimSpace(c.Summarize.FallbackStrategy))
	if c.Summarize.FallbackStrategy == "" {
		c.Summarize.FallbackStrategy = defaultFallbackStrategy
	}
	if c.Summarize.SummaryTemplatePath != "" {
		if c.Summarize.SummaryTemplatePath, err = expandPath(c.Summarize.SummaryTemplatePath); err != nil {
			return fmt.Errorf("summarize.summary_template_path: %w", err)
		}
	}
	if c.Summarize.SynthesisTemplatePath != "" {
		if c.Summarize.SynthesisTemplatePath, err = expandPath(c.Summarize.SynthesisTemplatePath); err != nil {
			return fmt.Errorf("summarize.synthesis_template_path: %w", err)
		}
	}
	if c.Summarize.Temperature <= 0 {
		c.Summarize.Temperature = defaultTemperature
	}
	if c.Summarize.TopP <= 0 {
		c.Summarize.TopP = defaultTopP
	}
	if c.Summarize.MaxTokens <= 0 {
		c.Summarize.MaxTokens = defaultMaxTokens
	}
	if c.Summarize.RetryAttempts <= 0 {
		c.Summarize.RetryAttempts = defaultRetryAttempts
	}
	if c.Summarize.RetryBaseSeconds <= 0 {
		c.Summarize.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		}
	}
	c.Telegram.ChatID = strings.TrimSpace(c.Telegram.ChatID)
	if c.Telegram.ChatID == "" {
		if value, ok := os.LookupEnv("TELEGRAM_CHAT_ID"); ok {
			c.Telegram.ChatID = strings.TrimSpace(value)
		}
	}
	c.Telegram.BaseURL = strings.TrimSpace(c.Telegram.BaseURL)
	if c.Telegram.RequestTimeout <= 0 {
		c.Telegram.RequestTimeout = defaultTelegramTimeout
	}
	if c.Telegram.MessageMaxLength <= 0 {
		c.Telegram.MessageMaxLength = defaultMessageMaxLength
	}
}

func (c *Config) normalizeChannels() error {
	var err error
	if strings.TrimSpace(c.Channels.ConfigPath) == "" {
		c.Channels.ConfigPath = defaultChannelsPath
	}
	if c.Channels.ConfigPath, err = expandPath(c.Channels.ConfigPath); err != nil {
		return fmt.Errorf("channels.config_path: %w", err)
	}
	if c.Channels.PollIntervalMinutes <= 0 {
		c.Channels.PollIntervalMinutes = defaultPollMinutes
	}
	if c.Channels.MaxVideosPerPoll <= 0 {
		c.Channels.MaxVideosPerPoll = defaultMaxVideosPerPoll
	}
	return nil
}

func (c *Config) normalizeYtDlp() {
	c.YtDlp.BinaryPath = strings.TrimSpace(c.YtDlp.BinaryPath)
	if c.YtDlp.BinaryPath == "" {
		c.YtDlp.BinaryPath = defaultYtDlpBinary
	}
	if c.YtDlp.TimeoutSeconds <= 0 {
		c.YtDlp.TimeoutSeconds = defaultYtDlpTimeout
	}
	if len(c.YtDlp.SubtitleLangs) == 0 {
		c.YtDlp.SubtitleLangs = []string{"en"}
	} else {
		langs := make([]string, 0, len(c.YtDlp.SubtitleLangs))
		seen := make(map[string]struct{}, len(c.YtDlp.SubtitleLangs))
		for _, lang := range c.YtDlp.SubtitleLangs {
			normalized := strings.ToLower(strings.TrimSpace(lang))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			langs = append(langs, normalized)
		}
		if len(langs) == 0 {
			langs = []string{"en"}
		}
		c.YtDlp.SubtitleLangs = langs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
