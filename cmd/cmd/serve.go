package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seanmtli/personalnewsletter/internal/batch"
	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/curator"
	"github.com/seanmtli/personalnewsletter/internal/email"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/refdata"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
	"github.com/seanmtli/personalnewsletter/internal/server"
	"github.com/seanmtli/personalnewsletter/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the newsletter HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runServe(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cfg *config.Config) error {
	st, err := store.New(cfg.App.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	catalog, err := refdata.Load()
	if err != nil {
		return err
	}

	shots := screenshot.NewService(cfg.Screenshot)
	cur := curator.New(*cfg, shots)
	em := email.NewEmailer(cfg.Email)

	srv := server.New(*cfg, st, cur, em, catalog)

	httpServer := &http.Server{
		Addr:              cfg.Server.BindAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.BindAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", err)
			return err
		}
	}

	return nil
}

// newBatchRunner builds the batch runner with the same wiring the server uses.
func newBatchRunner(cfg *config.Config) (*batch.Runner, *store.Store, error) {
	st, err := store.New(cfg.App.DataDir)
	if err != nil {
		return nil, nil, err
	}
	shots := screenshot.NewService(cfg.Screenshot)
	cur := curator.New(*cfg, shots)
	em := email.NewEmailer(cfg.Email)
	return batch.New(*cfg, st, cur, em), st, nil
}
