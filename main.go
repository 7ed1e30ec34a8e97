// catsync keeps translated product catalogs in sync: it translates only the
// catalog strings that changed since the last run.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minios-linux/catsync/i18n"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	colorInfo    = color.New(color.FgBlue)
	colorOK      = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow, color.Bold)
	colorErr     = color.New(color.FgRed)
	colorHeading = color.New(color.FgCyan, color.Bold)
)

// stderr receives all human-facing output.
var stderr io.Writer = os.Stderr

func logInfo(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", colorInfo.Sprint("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", colorOK.Sprint("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", colorWarn.Sprint("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", colorErr.Sprint("[ERROR]"), fmt.Sprintf(format, args...))
}

func heading(title string) {
	fmt.Fprintf(stderr, "\n%s\n", colorHeading.Sprint(title))
	fmt.Fprintln(stderr, strings.Repeat("─", 60))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configFile string
	verbose    bool
)

// newLogger returns the structured logger handed to the engine. Without
// --verbose only warnings and errors are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catsync",
		Short: i18n.T("Incremental translation of product catalogs"),
		Long: i18n.T(`catsync translates product and category catalogs into every target
language, calling the translation service only for strings whose source
text changed since the last run.

Files (relative to --root):
  data/products.json, data/categories.json    source catalogs
  locales/<lang>.json                         locale documents
  .cache/translated-refs.json                 fingerprint cache
  logs/translation-log-<timestamp>.json       per-run transcript

Commands:
  run             Translate changed entries
  sync            Translate entries missing from the target documents
  check-missing   Report missing translations
  generate-cache  Rebuild the fingerprint cache without translating
  reset           Remove the cache and target locale documents
  status          Show cache and translation coverage
  schedule        Run periodically on a cron schedule
  filter          Strip catalogs down to their translatable fields
  init            Write a .catsync.yaml project file
  auth            Manage provider API keys`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))
	root.PersistentFlags().StringVar(&configFile, "config", "", i18n.T("Config file (default: <root>/.catsync.yaml)"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable detailed logging"))

	root.AddCommand(
		newRunCmd(),
		newSyncCmd(),
		newCheckMissingCmd(),
		newGenerateCacheCmd(),
		newResetCmd(),
		newStatusCmd(),
		newScheduleCmd(),
		newFilterCmd(),
		newInitCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catsync version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}
