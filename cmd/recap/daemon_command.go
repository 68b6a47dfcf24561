package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"recap/internal/daemon"
	"recap/internal/ingest"
	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the recap daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}

			engine, err := buildEngine(cfg, logger)
			if err != nil {
				store.Close()
				return fmt.Errorf("build summarization engine: %w", err)
			}
			notifier, err := buildNotifier(cfg, logger)
			if err != nil {
				store.Close()
				return fmt.Errorf("build notifier: %w", err)
			}
			fetcher := buildFetcher(cfg, logger)

			manager, err := workflow.NewManager(cfg, store, fetcher, engine, notifier, logger)
			if err != nil {
				store.Close()
				return err
			}

			var drop *ingest.DropWatcher
			if cfg.Paths.DropDir != "" {
				drop, err = ingest.NewDropWatcher(cfg.Paths.DropDir, cfg.Paths.TranscriptCacheDir, store, logger)
				if err != nil {
					store.Close()
					return err
				}
			}

			d, err := daemon.New(cfg, store, manager, drop, logger)
			if err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "recap daemon running; press Ctrl-C to stop")

			<-runCtx.Done()
			d.Stop()
			return nil
		},
	}
}
