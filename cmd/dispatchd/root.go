package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dispatchd/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state resolved by the root command for its subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg config.Config
	log zerolog.Logger
	// listen opens the HTTP listener; nil means net.Listen.
	listen func(network, address string) (net.Listener, error)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dispatchd",
		Short:         "Named in-process event channels with lifetime-safe sinks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Dotenv file with DISPATCHD_* variables (default .env when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: trace|debug|info|warn|error (default info)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: json|console (default json)")

	root.AddCommand(
		newServeCmd(a),
		newReplayCmd(a),
		newValidateCmd(a),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration in order: dotenv, file, environment, flags,
// defaults. It then builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotenv(a.envFile); err != nil {
		return fmt.Errorf("env file: %w", err)
	}
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if err := config.ApplyEnv(&a.cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.LogFormat = a.logFormat
	}
	a.cfg.Defaults()

	l, err := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = l
	return nil
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// skip config resolution
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dispatchd %s\n", version)
		},
	}
}
