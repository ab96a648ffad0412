// Command formengine renders, edits and fills clinical form layouts.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formengine/internal/config"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	layoutsDir string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	// driver replaces the survey prompts of the fill command.
	driver tui.PromptDriver
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "formengine",
		Short: "Render and edit documents through section/field layouts",
		Long: `formengine resolves a layout against a document and renders the
result as HTML, JSON or an interactive terminal session.

Layouts are read from --layouts (a directory of YAML or JSON files) or from
the built-in sample set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a formengine.yaml config file")
	flags.StringVar(&a.layoutsDir, "layouts", "", "directory of layout files (overrides the config file)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRenderCmd(a),
		newEditCmd(a),
		newFillCmd(a),
		newLayoutsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.layoutsDir != "" {
		cfg.Layouts = a.layoutsDir
	}
	a.cfg = cfg

	if a.logger != nil {
		return nil
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	if a.verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}
