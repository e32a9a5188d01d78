package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	providerName string
)

var rootCmd = &cobra.Command{
	Use:   "ttt",
	Short: "Transcript-to-JSON batch pipeline",
	Long: "ttt converts raw transcript files into structured JSON by delegating\n" +
		"each file to an LLM provider, with API key rotation, retries, and\n" +
		"resumable batch semantics.",
	SilenceUsage: true,
}

// Run executes the root command and returns the process exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "", "provider name (default from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(fixTimesCmd)

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
