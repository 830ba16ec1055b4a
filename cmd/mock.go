package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tripcost/infra/logger"
	"github.com/kilianp07/tripcost/infra/predictor"
)

var mockAddr string

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local prediction service",
	RunE:  runMock,
}

func init() {
	mockCmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (default server.mock_addr)")
	rootCmd.AddCommand(mockCmd)
}

func runMock(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	addr := mockAddr
	if addr == "" {
		addr = cfg.Server.MockAddr
	}
	return predictor.NewServer(addr, nil).Start(ctx)
}
