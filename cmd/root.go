package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cafe.GO/api"
	"cafe.GO/bootstrap"
	"cafe.GO/config"
)

var rootCmd = &cobra.Command{
	Use:          "cafe",
	Short:        "Cafe storefront maintenance commands",
	SilenceUsage: true,
}

// Execute applies registered commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// services loads configuration and wires the storefront services for a
// command. The caller runs cleanup when done.
func services(ctx context.Context) (*api.Deps, func(), error) {
	cfg := config.LoadAppConfig()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	d, cleanup, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return d, func() {
		cleanup()
		_ = logger.Sync()
	}, nil
}
