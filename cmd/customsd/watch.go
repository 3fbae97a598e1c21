package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/99minutos/customs-tracking/internal/core/ports"
	natsbroker "github.com/99minutos/customs-tracking/internal/infrastructure/broker/nats"
	"github.com/99minutos/customs-tracking/internal/infrastructure/config"
	"github.com/99minutos/customs-tracking/pkg/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print summary changes published on NATS until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg.LogLevel, cfg.LogPretty)
	if cfg.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	broker, err := natsbroker.Connect(cfg.NATS.URL, cfg.NATS.Subject, natsbroker.Options{Name: "customsd-watch"}, logger.Component("nats"))
	if err != nil {
		return err
	}
	defer broker.Close()

	out := cmd.OutOrStdout()
	return broker.Watch(ctx, func(_ context.Context, change ports.SummaryChange) error {
		return writeJSON(out, change)
	})
}
