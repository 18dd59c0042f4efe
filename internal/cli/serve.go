package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/qbridge-labs/qbridge/internal/api"
	"github.com/qbridge-labs/qbridge/internal/device"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server",
		Long: `Start the gateway server. Jobs are accepted over HTTP, compiled against
the device topology and calibration data, and executed on the configured
backend. Stops on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, egctx := errgroup.WithContext(ctx)

	if cfg.Device.StatusPath != "" {
		eg.Go(func() error {
			err := device.WatchStatusFile(egctx, cfg.Device.StatusPath, rt.status, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	srv := api.NewServer(api.Config{
		Pipeline: rt.pipeline,
		Store:    rt.store,
		Addr:     cfg.Server.Addr,
		Logger:   logger,
	})
	eg.Go(func() error {
		return srv.Serve(egctx)
	})

	return eg.Wait()
}
