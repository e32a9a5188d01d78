package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lgdlong/ttt/internal/pipeline"
)

var fixTimesCmd = &cobra.Command{
	Use:   "fix-times",
	Short: "Renumber transcript start_time fields across the output directory",
	Long: "fix-times rewrites every output JSON whose transcript array exists,\n" +
		"setting start_time to 0 for the first entry and +1000ms for each one\n" +
		"after it. Files without a transcript array are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.sink.Close()

		updated, skipped, err := pipeline.FixStartTimes(ctx, a.cfg.Paths.Output, a.log)
		if err != nil {
			return err
		}

		a.log.Info(ctx, "Updated %d file(s), skipped %d", updated, skipped)
		return nil
	},
}
