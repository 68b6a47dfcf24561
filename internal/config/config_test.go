package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	path := writeConfig(t, "")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("config not resolved: %q %v", resolved, exists)
	}
	if cfg.Models.Primary != defaultPrimaryModel {
		t.Fatalf("Models.Primary = %q", cfg.Models.Primary)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("LLM.APIKey = %q, env fallback not applied", cfg.LLM.APIKey)
	}
	if cfg.Summarize.FallbackStrategy != "best_summary" {
		t.Fatalf("FallbackStrategy = %q", cfg.Summarize.FallbackStrategy)
	}
	if cfg.Summarize.CostThresholdTokens != defaultCostThresholdTokens {
		t.Fatalf("CostThresholdTokens = %d", cfg.Summarize.CostThresholdTokens)
	}
	if !strings.HasSuffix(cfg.DatabasePath(), "recap.db") {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath())
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	path := writeConfig(t, `
[models]
primary = "openai/gpt-5"
secondary = "deepseek/deepseek-chat"

[summarize]
cost_threshold_tokens = 9000
fallback_strategy = "primary_summary"

[logging]
format = "json"
level = "debug"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Models.Primary != "openai/gpt-5" || cfg.Models.Secondary != "deepseek/deepseek-chat" {
		t.Fatalf("models not applied: %+v", cfg.Models)
	}
	if cfg.Models.Synthesis != defaultSynthesisModel {
		t.Fatalf("unset model lost default: %q", cfg.Models.Synthesis)
	}
	if cfg.Summarize.CostThresholdTokens != 9000 {
		t.Fatalf("CostThresholdTokens = %d", cfg.Summarize.CostThresholdTokens)
	}
	if cfg.Summarize.FallbackStrategy != "primary_summary" {
		t.Fatalf("FallbackStrategy = %q", cfg.Summarize.FallbackStrategy)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not applied: %+v", cfg.Logging)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	path := writeConfig(t, "")
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestLoadRejectsUnknownFallbackStrategy(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	path := writeConfig(t, `
[summarize]
fallback_strategy = "coin_flip"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "fallback_strategy") {
		t.Fatalf("expected strategy error, got %v", err)
	}
}

func TestLoadRejectsHalfConfiguredTelegram(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	path := writeConfig(t, `
[telegram]
bot_token = "123:abc"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "telegram.chat_id") {
		t.Fatalf("expected telegram error, got %v", err)
	}
}

func TestGeminiProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := writeConfig(t, `
[llm]
provider = "gemini"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "gemini_api_key") {
		t.Fatalf("expected gemini key error, got %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load with GEMINI_API_KEY: %v", err)
	}
	if cfg.LLM.GeminiAPIKey != "g-key" {
		t.Fatalf("GeminiAPIKey = %q", cfg.LLM.GeminiAPIKey)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/recap-test")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "recap-test") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[summarize]") {
		t.Fatal("sample config missing summarize section")
	}
}
