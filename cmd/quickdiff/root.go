package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quickdiff/quickdiff/internal/app"
	"github.com/quickdiff/quickdiff/internal/apperr"
	"github.com/quickdiff/quickdiff/internal/applog"
	"github.com/quickdiff/quickdiff/internal/config"
	"github.com/quickdiff/quickdiff/internal/ghpr"
	"github.com/quickdiff/quickdiff/internal/patch"
	"github.com/quickdiff/quickdiff/internal/source"
	"github.com/quickdiff/quickdiff/internal/telemetry"
)

var version = "dev"

var (
	flagCommit    string
	flagBase      string
	flagFile      string
	flagTheme     string
	flagStdin     bool
	flagPR        string // cobra NoOptDefVal makes this "" mean "flag present, no value"
	flagMetrics   bool
	flagDebug     bool
	flagCfgFile   string
)

var rootCmd = &cobra.Command{
	Use:     "quickdiff [REV | <from>..<to>]",
	Short:   "A terminal side-by-side diff viewer for version-controlled trees",
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/quickdiff/config.json)")
	rootCmd.Flags().StringVarP(&flagCommit, "commit", "c", "", "diff a single commit against its parent")
	rootCmd.Flags().StringVarP(&flagBase, "base", "b", "", "diff HEAD against a base ref")
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "open directly to this file")
	rootCmd.Flags().StringVarP(&flagTheme, "theme", "t", "", "color theme (default, light)")
	rootCmd.Flags().BoolVar(&flagStdin, "stdin", false, "read a unified diff from stdin")
	rootCmd.Flags().StringVar(&flagPR, "pr", "", "review a pull request (current branch's PR if no number given)")
	rootCmd.Flags().Lookup("pr").NoOptDefVal = "0"
	rootCmd.Flags().BoolVar(&flagMetrics, "metrics", false, "record diff-compute/render-frame timing spans")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "write a structured debug log")

	rootCmd.AddCommand(commentsCmd)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func loadedConfig() config.AppConfig {
	var cfg config.AppConfig
	var err error
	if flagCfgFile != "" {
		cfg, err = config.LoadFromPath(flagCfgFile)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "quickdiff: config: %v (using defaults)\n", err)
		return config.AppConfig{ThemeName: "default", EditorChain: []string{"$EDITOR", "nvim", "vi"}}
	}
	return cfg
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	themeName := cfg.ThemeName
	if flagTheme != "" {
		themeName = flagTheme
	}

	metricsEnabled := cfg.MetricsEnabled || flagMetrics
	tp, err := telemetry.NewProvider(telemetry.Config{Enabled: metricsEnabled})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer tp.Shutdown(context.Background())

	if flagDebug || applog.DebugEnabledFromEnv() {
		if closeLog, err := applog.Init(debugLogPath()); err == nil {
			defer closeLog()
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	model, err := buildModel(cwd, args, themeName, cfg.EditorChain)
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok && !kind.Fatal() {
			fmt.Fprintf(os.Stderr, "quickdiff: %v\n", err)
		}
		return err
	}
	if flagFile != "" {
		model = model.WithInitialFile(flagFile)
	}

	return runTUI(model)
}

// buildModel resolves the requested DiffSource from flags/args and
// constructs the AppLoop model, dispatching to a patch-backed model for
// --stdin/--pr and a git-backed model otherwise.
func buildModel(cwd string, args []string, themeName string, editorChain []string) (app.Model, error) {
	switch {
	case flagStdin:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return app.Model{}, apperr.Wrap(apperr.PatchParseFailed, "read stdin", err)
		}
		files, err := patch.Parse(raw)
		if err != nil {
			return app.Model{}, apperr.Wrap(apperr.PatchParseFailed, "parse stdin diff", err)
		}
		return app.NewModelFromPatch(cwd, source.DiffSource{Mode: source.Stdin}, files, themeName, editorChain)

	case cmdPRRequested():
		prNum, _ := strconv.Atoi(flagPR)
		client := ghpr.New(cwd)
		raw, err := client.Diff(context.Background(), prNum)
		if err != nil {
			return app.Model{}, apperr.Wrap(apperr.BlobFetchFailed, "fetch pull request diff", err)
		}
		files, err := patch.Parse([]byte(raw))
		if err != nil {
			return app.Model{}, apperr.Wrap(apperr.PatchParseFailed, "parse pull request diff", err)
		}
		return app.NewModelFromPatch(cwd, source.DiffSource{Mode: source.PullRequest, PRNum: prNum}, files, themeName, editorChain)

	default:
		ds, err := diffSourceFromFlags(args)
		if err != nil {
			return app.Model{}, err
		}
		return app.NewModel(cwd, ds, themeName, editorChain)
	}
}

func cmdPRRequested() bool {
	return rootCmd.Flags().Changed("pr")
}

func diffSourceFromFlags(args []string) (source.DiffSource, error) {
	switch {
	case flagCommit != "":
		return source.DiffSource{Mode: source.Commit, Commit: flagCommit}, nil
	case flagBase != "":
		return source.DiffSource{Mode: source.Base, BaseRef: flagBase}, nil
	case len(args) == 1:
		return parsePositionalRev(args[0])
	default:
		return source.DiffSource{Mode: source.WorkingTree}, nil
	}
}

func parsePositionalRev(arg string) (source.DiffSource, error) {
	if from, to, ok := strings.Cut(arg, ".."); ok {
		if from == "" || to == "" {
			return source.DiffSource{}, apperr.New(apperr.RevisionUnresolved, "malformed range "+arg)
		}
		return source.DiffSource{Mode: source.Range, From: from, To: to}, nil
	}
	return source.DiffSource{Mode: source.Commit, Commit: arg}, nil
}

func debugLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return dir + "/quickdiff-debug.log"
}

func runTUI(model app.Model) error {
	guard := app.NewTermGuard()
	defer func() {
		if r := recover(); r != nil {
			guard.RecoverTerminal(r)
			os.Exit(1)
		}
	}()
	defer guard.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	model.Close()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
