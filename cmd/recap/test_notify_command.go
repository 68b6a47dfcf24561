package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test message to the configured Telegram chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Telegram is not configured; set telegram.bot_token and telegram.chat_id")
				return nil
			}

			logger, err := ctx.buildLogger(cfg)
			if err != nil {
				return err
			}
			notifier, err := buildNotifier(cfg, logger)
			if err != nil {
				return err
			}
			if err := notifier.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
