package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"recap/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "Destination path for the sample config")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data dir:        %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Queue database:  %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "Transcript dir:  %s\n", cfg.Paths.TranscriptCacheDir)
			fmt.Fprintf(out, "Drop dir:        %s\n", cfg.Paths.DropDir)
			fmt.Fprintf(out, "Channels file:   %s\n", cfg.Channels.ConfigPath)
			fmt.Fprintf(out, "Provider:        %s\n", cfg.LLM.Provider)
			fmt.Fprintf(out, "Models:          %s / %s / %s\n", cfg.Models.Primary, cfg.Models.Secondary, cfg.Models.Synthesis)
			fmt.Fprintf(out, "Cost threshold:  %d tokens\n", cfg.Summarize.CostThresholdTokens)
			fmt.Fprintf(out, "Fallback:        %s\n", cfg.Summarize.FallbackStrategy)
			fmt.Fprintf(out, "Telegram:        %s\n", telegramSummary(cfg))
			fmt.Fprintf(out, "Poll interval:   %dm channels, %ds queue\n",
				cfg.Channels.PollIntervalMinutes, cfg.Workflow.QueuePollInterval)
			return nil
		},
	}
}

func telegramSummary(cfg *config.Config) string {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return "disabled"
	}
	return fmt.Sprintf("chat %s (errors: %s)", cfg.Telegram.ChatID, yesNo(cfg.Telegram.Errors))
}
