/*
main.go - Application entry point

PURPOSE:
  Command-line front end for the business administration backend.
  The default 'serve' command wires configuration, storage, blob
  storage and the identity generator into the HTTP API and runs it
  with graceful shutdown.

COMMANDS:
  serve              Run the HTTP API (default)
  migrate            Apply pending schema migrations and exit
  import-employees   Load employees from a CSV or XLSX file
  export-employees   Write all employees to an XLSX file

FLAGS (override the environment):
  --port    HTTP server port (PORT)
  --db      SQLite database path (DB_PATH)
            Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the review scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server serve --db=./data/business.db
  ./server import-employees staff.xlsx
  GENERATOR_DRIVER=openai OPENAI_API_KEY=... ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/business-admin/api"
	"github.com/warp/business-admin/blob"
	"github.com/warp/business-admin/config"
	"github.com/warp/business-admin/store/sqlite"
	"github.com/warp/business-admin/strategy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	port   int
	dbPath string
}

// load reads the configuration and applies flag overrides.
func (g *globals) load(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(config.DefaultEnvFiles)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = g.port
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = g.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(os.Stdout), nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "server",
		Short:        "Business administration API",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&g.port, "port", 8080, "HTTP server port")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "business.db", "SQLite database path")

	serve := newServeCmd(g)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(g), newImportCmd(g), newExportCmd(g))
	return root
}

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	blobs, err := blob.Open(ctx, blob.Options{
		Driver: blob.Driver(cfg.Blob.Driver),
		Dir:    cfg.Blob.Dir,
		S3: blob.S3Config{
			Region:          cfg.Blob.S3Region,
			Bucket:          cfg.Blob.S3Bucket,
			Endpoint:        cfg.Blob.S3Endpoint,
			AccessKeyID:     cfg.Blob.S3AccessKeyID,
			SecretAccessKey: cfg.Blob.S3SecretAccessKey,
			PathStyle:       cfg.Blob.S3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	handler, err := api.NewHandler(store, api.Options{
		Blobs:         blobs,
		Generator:     newGenerator(cfg.Generator, logger),
		Logger:        logger,
		MaxUploadSize: cfg.MaxUploadSize,
	})
	if err != nil {
		return err
	}

	scheduler := api.NewReviewScheduler(handler)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.Interval

	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPS: cfg.RateLimitRPS,
		Scheduler:    scheduler,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      server.Addr,
			"db":        cfg.DBPath,
			"blob":      cfg.Blob.Driver,
			"generator": cfg.Generator.Driver,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		scheduler.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newGenerator picks the identity generator for the configured driver.
func newGenerator(opts config.GeneratorOptions, logger logrus.FieldLogger) strategy.Generator {
	var primary strategy.Generator
	switch opts.Driver {
	case "functions":
		primary = strategy.NewFunctionClient(opts.FunctionsURL, opts.FunctionsKey)
	case "openai":
		primary = strategy.NewOpenAIGenerator(opts.OpenAIKey, opts.OpenAIModel, opts.OpenAIBaseURL)
	default:
		return strategy.TemplateGenerator{}
	}
	if !opts.Fallback {
		return primary
	}
	return strategy.Fallback{Primary: primary, Secondary: strategy.TemplateGenerator{}, Logger: logger}
}

// =============================================================================
// MIGRATE
// =============================================================================

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			store, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.Migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.WithFields(logrus.Fields{"db": cfg.DBPath, "version": version}).Info("schema up to date")
			return nil
		},
	}
}
