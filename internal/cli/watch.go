package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lgdlong/ttt/internal/pipeline"
	"github.com/lgdlong/ttt/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input directory and process transcripts as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

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

		if err := os.MkdirAll(a.cfg.Paths.Input, 0755); err != nil {
			return fmt.Errorf("create input dir: %w", err)
		}

		p := pipeline.New(ctx, a.cfg, registry, a.log)

		handler := func(ctx context.Context, filePath string) error {
			res := p.ProcessFile(ctx, filePath, providerName)
			if res.Status == pipeline.StatusError {
				return fmt.Errorf("%s", res.Message)
			}
			return nil
		}

		w, err := watcher.New(a.cfg.Paths.Input, pipeline.InputExt, handler, a.log, a.cfg.Performance.MaxWorkers)
		if err != nil {
			return err
		}
		defer w.Stop()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				errChan <- err
			}
		}()

		a.log.Info(ctx, "Watch mode ready. Press Ctrl+C to stop")

		select {
		case <-sigChan:
			a.log.Info(ctx, "Shutdown signal received")
		case err := <-errChan:
			a.log.Error(ctx, "Watcher error: %v", err)
		}

		cancel()
		return nil
	},
}
