// Package cmd wires the command-line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhcgn/email-features/config"
	"github.com/dhcgn/email-features/features"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	cleanup func() error
}

// Execute runs the root command with the process arguments.
func Execute() error {
	root, a := newRootCmd()
	defer func() {
		_ = a.close()
	}()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "email-features",
		Short:         "Build labeled email datasets for categorization models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	config.RegisterFlags(root)

	root.AddCommand(
		newSampleCmd(a),
		newParseCmd(a),
		newExtractCmd(a),
		newExploreCmd(a),
		newKeywordsCmd(a),
		newInstructionsCmd(),
		newMboxStatsCmd(a),
		newCheckCmd(a),
		newQuickstartCmd(a),
	)
	return root, a
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	logger.Debug("configuration loaded", "command", cmd.Name(), "dataDir", cfg.DataDir, "configFile", cfg.ConfigFile)
	return nil
}

func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}

func (a *app) extractor() *features.Extractor {
	return features.New(a.cfg.ExtractorOptions(), a.logger)
}

func setupLogger(cfg config.Config, w io.Writer) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("email-features-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(w, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(w, opts)
	return slog.New(handler), cleanup, nil
}
