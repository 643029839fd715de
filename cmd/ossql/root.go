package main

import (
	"time"

	"ossql/internal/app"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	dataDir      string
	contentDir   string
	engine       string
	logPath      string
	progressFile string
	style        string
	timeout      time.Duration
	requireFrom  bool
	ascii        bool
	debugLayout  bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&rootOptions{})
}

func newRootCmdWithOptions(opts *rootOptions) *cobra.Command {
	defaults := app.DefaultConfig()

	root := &cobra.Command{
		Use:           "ossql",
		Short:         "Aprenda SQL resolvendo exercícios sobre atletas de jiu-jitsu",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dataDir, "data-dir", "", "state directory (default ~/.local/share/ossql)")
	pf.StringVar(&opts.contentDir, "content", "", "load the catalog from this directory instead of the built-in one")
	pf.StringVar(&opts.engine, "engine", "", "engine to start with: sqlite or duckdb")
	pf.StringVar(&opts.logPath, "log", "", "append JSON logs to this file")
	pf.StringVar(&opts.progressFile, "progress-file", "", "file used by save/load progress (default <data-dir>/progress.json)")
	pf.StringVar(&opts.style, "style", defaults.UI.StyleVariant, "ui style: modern_arcade, cozy_clean or retro_terminal")
	pf.DurationVar(&opts.timeout, "timeout", defaults.QueryTimeout, "time limit for a single query")
	pf.BoolVar(&opts.requireFrom, "require-from", defaults.RequireFrom, "require FROM in every submission")
	pf.BoolVar(&opts.ascii, "ascii", false, "draw borders with ASCII only")
	pf.BoolVar(&opts.debugLayout, "debug-layout", false, "log ui debug events to stderr")

	root.AddCommand(
		newPlayCmd(opts),
		newCheckCmd(opts),
		newExercisesCmd(opts),
		newVerifyCmd(opts),
		newProgressCmd(opts),
	)
	return root
}

// config layers defaults, OSSQL_* variables and explicitly set flags, in
// that order.
func (o *rootOptions) config(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := cfg.ApplyEnv(nil); err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("content") {
		cfg.ContentDir = o.contentDir
	}
	if flags.Changed("engine") {
		cfg.Engine = o.engine
	}
	if flags.Changed("log") {
		cfg.LogPath = o.logPath
	}
	if flags.Changed("progress-file") {
		cfg.ProgressFile = o.progressFile
	}
	if flags.Changed("style") {
		cfg.UI.StyleVariant = o.style
	}
	if flags.Changed("timeout") {
		cfg.QueryTimeout = o.timeout
	}
	if flags.Changed("require-from") {
		cfg.RequireFrom = o.requireFrom
	}
	if flags.Changed("ascii") {
		cfg.ASCIIOnly = o.ascii
	}
	if flags.Changed("debug-layout") {
		cfg.DebugLayout = o.debugLayout
	}

	if err := cfg.Validate(); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Abre o editor interativo (padrão)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}
}

func runPlay(cmd *cobra.Command, opts *rootOptions) error {
	a, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(cmd.Context())
}
