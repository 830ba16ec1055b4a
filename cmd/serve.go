package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	apisession "github.com/kilianp07/tripcost/api/session"
	"github.com/kilianp07/tripcost/app"
	"github.com/kilianp07/tripcost/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one trip session over a JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := app.New(cfg)
	if err != nil {
		return err
	}
	log := logger.New("main")
	defer func() {
		if err := sess.Close(); err != nil {
			log.Errorf("session close: %v", err)
		}
	}()
	sess.Start(ctx)

	handler := cors.Default().Handler(apisession.NewHandler(sess.Controller, sess.Suggestions))
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
	}()
	log.Infof("session API listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
