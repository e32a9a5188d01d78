package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.sink.Close()

		registry, err := a.registry(ctx)
		if err != nil {
			return err
		}
		defer registry.Shutdown(ctx)

		for _, name := range registry.Names() {
			p, err := registry.Resolve(name)
			if err != nil {
				return err
			}
			marker := " "
			if name == registry.DefaultName() {
				marker = "*"
			}
			fmt.Printf("%s %s (model: %s)\n", marker, name, p.ModelName())
		}
		return nil
	},
}
