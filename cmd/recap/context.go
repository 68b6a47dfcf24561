package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"recap/internal/config"
	"recap/internal/llm"
	"recap/internal/logging"
	"recap/internal/pricing"
	"recap/internal/queue"
	"recap/internal/retry"
	"recap/internal/services/gemini"
	"recap/internal/services/ytdlp"
	"recap/internal/summarize"
	"recap/internal/telegram"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(cfg *config.Config, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// buildProvider selects the completion backend from configuration.
func buildProvider(cfg *config.Config) llm.Provider {
	if strings.EqualFold(strings.TrimSpace(cfg.LLM.Provider), "gemini") {
		return gemini.NewClient(gemini.Config{APIKey: cfg.LLM.GeminiAPIKey})
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

// buildEngine assembles the full summarization pipeline from configuration.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*summarize.Orchestrator, error) {
	template, err := summarize.LoadSummaryTemplate(cfg.Summarize.SummaryTemplatePath)
	if err != nil {
		return nil, err
	}

	policy := retry.Default()
	if cfg.Summarize.RetryAttempts > 0 {
		policy.MaxAttempts = cfg.Summarize.RetryAttempts
	}
	if cfg.Summarize.RetryBaseSeconds > 0 {
		policy.BaseDelay = time.Duration(cfg.Summarize.RetryBaseSeconds) * time.Second
	}

	summarizer, err := summarize.NewSummarizer(buildProvider(cfg), logger, summarize.SummarizerOptions{
		Template:    template,
		Policy:      &policy,
		MaxTokens:   cfg.Summarize.MaxTokens,
		Temperature: cfg.Summarize.Temperature,
		TopP:        cfg.Summarize.TopP,
	})
	if err != nil {
		return nil, err
	}

	return summarize.NewOrchestrator(summarizer, pricing.NewEstimator(nil, logger), logger, summarize.Config{
		PrimaryModel:          cfg.Models.Primary,
		SecondaryModel:        cfg.Models.Secondary,
		SynthesisModel:        cfg.Models.Synthesis,
		CostThresholdTokens:   cfg.Summarize.CostThresholdTokens,
		FallbackStrategy:      summarize.Strategy(cfg.Summarize.FallbackStrategy),
		SynthesisTemplatePath: cfg.Summarize.SynthesisTemplatePath,
	})
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) (telegram.Service, error) {
	return telegram.NewService(telegram.Config{
		BotToken:         cfg.Telegram.BotToken,
		ChatID:           cfg.Telegram.ChatID,
		BaseURL:          cfg.Telegram.BaseURL,
		TimeoutSeconds:   cfg.Telegram.RequestTimeout,
		MaxMessageLength: cfg.Telegram.MessageMaxLength,
	}, logger)
}

func buildFetcher(cfg *config.Config, logger *slog.Logger) *ytdlp.Client {
	return ytdlp.NewClient(ytdlp.Config{
		BinaryPath:    cfg.YtDlp.BinaryPath,
		Timeout:       time.Duration(cfg.YtDlp.TimeoutSeconds) * time.Second,
		SubtitleLangs: cfg.YtDlp.SubtitleLangs,
		CacheDir:      cfg.Paths.TranscriptCacheDir,
	}, logger)
}
