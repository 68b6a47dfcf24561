package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recap/internal/channels"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "Inspect the monitored channel registry",
	}

	channelsCmd.AddCommand(newChannelsListCommand(ctx))
	return channelsCmd
}

func newChannelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := channels.Load(cfg.Channels.ConfigPath)
			if err != nil {
				return err
			}
			if registry.Len() == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No channels configured (expected at %s)\n", cfg.Channels.ConfigPath)
				return nil
			}

			all := registry.All()
			rows := make([][]string, 0, len(all))
			for _, channel := range all {
				rows = append(rows, []string{
					channel.ID,
					channel.DisplayName(),
					yesNo(!channel.Disabled),
					truncateCell(channel.CreatorContext, 60),
				})
			}
			table := renderTable(
				[]string{"ID", "Name", "Enabled", "Creator Context"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
