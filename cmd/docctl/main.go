package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/abduss/docstore/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliApp carries state shared by every docctl subcommand.
type cliApp struct {
	out      io.Writer
	envFile  string
	logLevel string
	category string

	cfg     config.Config
	logger  *zap.Logger
	gateway objectstore.Gateway
	open    func(ctx context.Context, cfg config.ObjectStoreConfig) (objectstore.Gateway, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cliApp{out: os.Stdout, open: storage.OpenGateway}
	if err := newRootCmd(app).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(app *cliApp) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docctl",
		Short: "Operate on brokerage document folders",
		Long: `docctl runs the document folder workflows directly against the object store.

It reads the same DOCSTORE_* environment as the API server.

Examples:
  # Back up a license record's documents
  docctl backup LIC-100

  # Back up, then delete, a license record's documents
  docctl purge LIC-100

  # List an owner's documents, or the category's backups
  docctl ls LIC-100
  docctl ls --backups

  # Short-lived download link
  docctl presign licenses/LIC-100/A.pdf --ttl 10m

  # Service token for a record service
  docctl token license-service`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(app.out)

	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&app.logLevel, "log-level", "l", "warn", "log level")
	rootCmd.PersistentFlags().StringVar(&app.category, "category", "", "document category (overrides DOCSTORE_CATEGORY)")

	rootCmd.AddCommand(newBackupCmd(app))
	rootCmd.AddCommand(newPurgeCmd(app))
	rootCmd.AddCommand(newLsCmd(app))
	rootCmd.AddCommand(newPresignCmd(app))
	rootCmd.AddCommand(newTokenCmd(app))

	return rootCmd
}

func (a *cliApp) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	level, err := zapcore.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(level)
	logCfg.DisableStacktrace = true
	if a.logger, err = logCfg.Build(); err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	if a.category != "" {
		os.Setenv("DOCSTORE_CATEGORY", a.category)
	}
	if a.cfg, err = config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// store opens the configured object store on first use.
func (a *cliApp) store(ctx context.Context) (objectstore.Gateway, error) {
	if a.gateway != nil {
		return a.gateway, nil
	}
	gw, err := a.open(ctx, a.cfg.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.ObjectStore.Driver, err)
	}
	a.gateway = gw
	return gw, nil
}
