package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print API usage aggregated from recorded telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.sink.Close()

		names := []string{"gemini", "openai"}
		if providerName != "" {
			names = []string{providerName}
		}

		for _, name := range names {
			sum, err := a.sink.Summary(ctx, name)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Printf("No telemetry recorded yet (%s)\n", a.cfg.Telemetry.Path)
					return nil
				}
				return err
			}
			if sum.TotalCalls == 0 {
				continue
			}

			fmt.Println(strings.Repeat("=", 50))
			fmt.Printf("API Usage Summary - %s\n", strings.ToUpper(sum.Provider))
			fmt.Println(strings.Repeat("=", 50))
			fmt.Printf("Total Calls:         %d\n", sum.TotalCalls)
			fmt.Printf("  Success:           %d\n", sum.SuccessCount)
			fmt.Printf("  Errors:            %d\n", sum.ErrorCount)
			fmt.Printf("  Rate Limited:      %d\n", sum.RateLimitedCount)
			fmt.Printf("Total Input Tokens:  %d\n", sum.TotalInputTokens)
			fmt.Printf("Total Output Tokens: %d\n", sum.TotalOutputTokens)
			fmt.Printf("Total Duration:      %.2fms (%.2fs)\n", sum.TotalDurationMS, sum.TotalDurationMS/1000)
			if sum.SuccessCount > 0 {
				fmt.Printf("Avg Duration:        %.2fms\n", sum.TotalDurationMS/float64(sum.SuccessCount))
			}
		}
		return nil
	},
}
