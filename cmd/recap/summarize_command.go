package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"recap/internal/services/ytdlp"
)

// newSummarizeCommand summarizes a local transcript file without touching the
// queue, which is handy for prompt tuning and cost checks.
func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var creatorContext string

	cmd := &cobra.Command{
		Use:   "summarize <transcript-file>",
		Short: "Summarize a local transcript or subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			content := string(raw)
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".vtt", ".srt":
				content = ytdlp.ParseSubtitles(content)
			}

			logger, err := ctx.buildLogger(cfg)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}

			result := engine.Summarize(cmd.Context(), content, creatorContext)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.FinalSummary)
			fmt.Fprintf(cmd.ErrOrStderr(), "\nmethod=%s fallback=%s cost=$%.6f elapsed=%.2fs\n",
				result.Method, yesNo(result.FallbackUsed), result.CostEstimate, result.ProcessingSeconds)
			return nil
		},
	}

	cmd.Flags().StringVar(&creatorContext, "creator-context", "", "Creator context passed to the models")
	return cmd
}
