/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suparena/tablequery"
	"github.com/suparena/tablequery/config"
)

// DefaultConfigFile is read when --config is not given and the file exists.
const DefaultConfigFile = "tq.yaml"

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	envFiles []string
	verbose  bool

	logger  *zap.Logger
	cfg     *config.Config
	catalog *tablequery.Catalog
}

// NewRootCmd builds the tq command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "tq",
		Short: "tq - paginated reads of Azure and DynamoDB tables",
		Long: `tq reads rows from a table one segment at a time, following continuation
tokens until the table is exhausted or the --top cap is reached.

Tables are named in tq.yaml or described ad hoc with --backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default "+DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringArrayVar(&a.envFiles, "env-file", nil, "env file to load before the config (repeatable, default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newQueryCmd(a),
		newExportCmd(a),
		newTablesCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs tq with the process arguments. Interrupts cancel the running query.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.catalog = tablequery.NewCatalog(cfg)

	logger, err := newLogger(cfg.LogLevel, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With(zap.String("run_id", uuid.NewString()))
	a.logger.Debug("config loaded",
		zap.String("file", a.cfgFile),
		zap.Strings("tables", cfg.TableNames()),
	)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			a.cfgFile = DefaultConfigFile
		}
	}
	if a.cfgFile == "" {
		if err := config.LoadEnv(a.envFiles...); err != nil {
			return nil, err
		}
		return &config.Config{}, nil
	}
	return config.Load(a.cfgFile, a.envFiles...)
}

// newLogger builds a production logger writing to stderr, so that stdout
// carries only rows.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = lvl
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}
