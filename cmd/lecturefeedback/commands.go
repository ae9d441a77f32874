package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/lecture-feedback-backend/internal/app"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

var (
	logMode  string
	seedFile string

	rootCmd = &cobra.Command{
		Use:           "lecturefeedback",
		Short:         "Lecture feedback backend: reactions, AI suggestions and versioned lectures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and realtime stream",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed <file>",
		Short: "Load enrollments and lectures from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeed,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "logger mode (production|development|test); defaults to LOG_MODE")
	serveCmd.Flags().StringVar(&seedFile, "seed", "", "seed file applied before serving; defaults to SEED_FILE")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func newLogger() (*logger.Logger, error) {
	mode := logMode
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Close(shutdownCtx)
	}()

	path := seedFile
	if path == "" {
		path = a.Cfg.SeedFile
	}
	if path != "" {
		if _, err := a.Seed(ctx, path); err != nil {
			return err
		}
	}

	if err := a.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutdown signal received")
		return nil
	}
}

func runMigrate(_ *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	db, err := app.OpenDB(log, cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	log.Info("Schema up to date", "driver", cfg.DBDriver)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	a, err := app.New(ctx, log)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	res, err := a.Seed(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enrollments=%d created=%d skipped=%d\n", res.Enrollments, res.LecturesCreated, res.LecturesSkipped)
	return nil
}
