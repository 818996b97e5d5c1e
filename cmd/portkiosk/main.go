package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/config"
	"github.com/harborlight/portkiosk/internal/db"
	"github.com/harborlight/portkiosk/internal/logbuffer"
	"github.com/harborlight/portkiosk/internal/logging"
	"github.com/harborlight/portkiosk/internal/server"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
	logBuf *logbuffer.Buffer
)

var rootCmd = &cobra.Command{
	Use:   "portkiosk",
	Short: "Port Kiosk - digital signage and advertising for ferry terminals",
	Long:  "Port Kiosk serves the departure board, media playlist, and ad campaigns for terminal kiosks, plus the admin API that manages them.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Port Kiosk server",
	Long:  "Start the HTTP API server, kiosk endpoint, and campaign status sweeper",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logBuf = logbuffer.New(5000)
	logger = logging.SetupWithWriter(cfg.Environment, logbuffer.NewWriter(logBuf, nil))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("Port Kiosk starting")

	srv, err := server.New(cfg, logBuf, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(runCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	cancelRun()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("Port Kiosk stopped")
	return nil
}

// initDatabase initializes the database connection (used by the import command)
func initDatabase() (*gorm.DB, error) {
	return db.Connect(cfg, logger)
}
