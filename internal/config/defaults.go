package config

const (
	defaultDataDir            = "~/.local/share/recap"
	defaultLogDir             = "~/.local/share/recap/logs"
	defaultTranscriptCacheDir = "~/.local/share/recap/cache/transcripts"
	defaultDropDir            = "~/.local/share/recap/drop"
	defaultAPIBind            = "127.0.0.1:7519"

	defaultPrimaryModel   = "openai/gpt-4o"
	defaultSecondaryModel = "google/gemini-2.5-flash"
	defaultSynthesisModel = "anthropic/claude-sonnet-4"

	defaultLLMProvider       = "openrouter"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMReferer        = "https://github.com/recap-sh/recap"
	defaultLLMTitle          = "Recap Summarizer"
	defaultLLMTimeoutSeconds = 120

	defaultCostThresholdTokens = 50000
	defaultFallbackStrategy    = "best_summary"
	defaultTemperature         = 0.3
	defaultTopP                = 0.9
	defaultMaxTokens           = 4096
	defaultRetryAttempts       = 3
	defaultRetryBaseSeconds    = 2

	defaultTelegramTimeout   = 30
	defaultMessageMaxLength  = 3800
	defaultChannelsPath      = "~/.config/recap/channels.yaml"
	defaultPollMinutes       = 30
	defaultMaxVideosPerPoll  = 5
	defaultYtDlpBinary       = "yt-dlp"
	defaultYtDlpTimeout      = 300
	defaultQueuePollInterval = 5
	defaultErrorRetryDelay   = 10

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:            defaultDataDir,
			LogDir:             defaultLogDir,
			TranscriptCacheDir: defaultTranscriptCacheDir,
			DropDir:            defaultDropDir,
			APIBind:            defaultAPIBind,
		},
		Models: Models{
			Primary:   defaultPrimaryModel,
			Secondary: defaultSecondaryModel,
			Synthesis: defaultSynthesisModel,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Summarize: Summarize{
			CostThresholdTokens: defaultCostThresholdTokens,
			FallbackStrategy:    defaultFallbackStrategy,
			Temperature:         defaultTemperature,
			TopP:                defaultTopP,
			MaxTokens:           defaultMaxTokens,
			RetryAttempts:       defaultRetryAttempts,
			RetryBaseSeconds:    defaultRetryBaseSeconds,
		},
		Telegram: Telegram{
			RequestTimeout:   defaultTelegramTimeout,
			MessageMaxLength: defaultMessageMaxLength,
			Errors:           true,
		},
		Channels: Channels{
			ConfigPath:          defaultChannelsPath,
			PollIntervalMinutes: defaultPollMinutes,
			MaxVideosPerPoll:    defaultMaxVideosPerPoll,
		},
		YtDlp: YtDlp{
			BinaryPath:     defaultYtDlpBinary,
			TimeoutSeconds: defaultYtDlpTimeout,
			SubtitleLangs:  []string{"en"},
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryDelay,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
