package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lgdlong/ttt/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all pending transcripts in the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.sink.Close()

		registry, err := a.registry(ctx)
		if err != nil {
			return err
		}

		p := pipeline.New(ctx, a.cfg, registry, a.log)

		summary, err := p.Run(ctx, providerName)
		if err != nil {
			return err
		}

		printSummary(ctx, a, summary)
		return nil
	},
}

func printSummary(ctx context.Context, a *app, s *pipeline.Summary) {
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "WORKFLOW SUMMARY (run %s)", s.RunID)
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Found: %d, skipped: %d, processed: %d", s.Found, s.Skipped, s.Processed)
	a.log.Info(ctx, "Success: %d/%d", s.Success, s.Processed)
	a.log.Info(ctx, "Error: %d/%d", s.Errors, s.Processed)
	a.log.Info(ctx, "Total duration: %.2fs", s.WallTime.Seconds())
	a.log.Info(ctx, "LLM API time: %.2fs", s.APITime.Seconds())
	if s.Success > 0 {
		a.log.Info(ctx, "Output files saved to: %s", a.cfg.Paths.Output)
	}
	for _, r := range s.Results {
		if r.Status == pipeline.StatusError {
			a.log.Warn(ctx, "  %s: %s", r.File, r.Message)
		}
	}
	a.log.Info(ctx, "========================================")
}
