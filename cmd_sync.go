package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/catsync/config"
	"github.com/minios-linux/catsync/i18n"
	"github.com/minios-linux/catsync/langmeta"
	"github.com/minios-linux/catsync/syncer"
)

// ---------------------------------------------------------------------------
// run / sync
// ---------------------------------------------------------------------------

func newRunCmd() *cobra.Command {
	var f syncFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: i18n.T("Translate entries whose source text changed"),
		Long: i18n.T(`Extract every translatable string from the source catalogs, compare it
with the fingerprint cache and translate the changed ones into every target
language. The source locale document is rewritten to mirror the catalogs.

Examples:
  catsync run
  catsync run -t en,de --force
  catsync run --provider openai --model gpt-4o-mini
  catsync run --dry-run`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, f, syncer.ModeRun)
		},
	}
	f.register(cmd.Flags())
	registerProviderCompletion(cmd)
	return cmd
}

func newSyncCmd() *cobra.Command {
	var f syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: i18n.T("Translate entries missing from the target documents"),
		Long: i18n.T(`Translate every entry that has no value in a target locale document,
whatever the cache says. Use it to repair documents after a run that fell
back to the source text, or after a locale file was edited by hand.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, f, syncer.ModeSync)
		},
	}
	f.register(cmd.Flags())
	registerProviderCompletion(cmd)
	return cmd
}

func registerProviderCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"deepl\tDeepL API Free",
			"deepl-pro\tDeepL API Pro",
			"openai\tOpenAI chat completions",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runSync(cmd *cobra.Command, f syncFlags, mode syncer.Mode) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger := newLogger(stderr, verbose)

	var client syncer.Client
	if !f.dryRun {
		c, err := newClient(cfg, f.apiKey, !f.yes && isTerminal(os.Stdin), logger)
		if err != nil {
			return err
		}
		client = c
	}

	var onProgress func(string, int, int)
	if !verbose && isTerminal(os.Stderr) {
		onProgress = newProgressReporter(stderr).update
	}

	printPlan(cfg, mode, f.dryRun)
	eng := newEngine(cfg, client, logger, onProgress)
	rc := cfg.RunConfig(mode)
	rc.DryRun = f.dryRun

	rep, err := eng.Run(cmd.Context(), rc)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logWarning("%s", i18n.T("Interrupted; documents of languages already finished were saved."))
		}
		return err
	}
	printReport(rep)
	return nil
}

func printPlan(cfg *config.Config, mode syncer.Mode, dryRun bool) {
	heading(fmt.Sprintf("catsync %s", mode))
	fmt.Fprintf(stderr, "  %-12s %s\n", i18n.T("Source:"), langmeta.Label(cfg.SourceLang))
	for i, l := range cfg.Languages {
		label := ""
		if i == 0 {
			label = i18n.T("Targets:")
		}
		fmt.Fprintf(stderr, "  %-12s %s\n", label, langmeta.Label(l))
	}
	fmt.Fprintf(stderr, "  %-12s %v\n", i18n.T("Catalogs:"), cfg.Sources)
	fmt.Fprintf(stderr, "  %-12s %s\n", i18n.T("Provider:"), cfg.Provider)
	if !cfg.UseCache {
		logWarning("%s", i18n.T("Cache disabled: every entry is translated and the cache file is left untouched."))
	}
	if cfg.Force {
		logWarning("%s", i18n.T("Force mode: every entry is translated."))
	}
	if dryRun {
		logInfo("%s", i18n.T("Dry run: nothing is translated or written."))
	}
	fmt.Fprintln(stderr)
}

func printReport(rep *syncer.Report) {
	logInfo(i18n.T("Extracted %d entries, %d changed since the last run"), rep.Entries, len(rep.Changed))
	if rep.Skipped > 0 {
		logWarning(i18n.N("%d record without id was skipped", "%d records without id were skipped", rep.Skipped), rep.Skipped)
	}

	langs := make([]string, 0, len(rep.Languages))
	for _, lr := range rep.Languages {
		langs = append(langs, lr.Lang)
	}
	width := langColumnWidth(langs)
	for _, lr := range rep.Languages {
		var line string
		if rep.DryRun {
			line = fmt.Sprintf(i18n.T("%d to translate, %d missing"), lr.Queued, len(lr.Missing))
		} else {
			line = fmt.Sprintf(i18n.T("%d translated, %d fallbacks, %d were missing"), lr.Translated, lr.Fallbacks, len(lr.Missing))
		}
		fmt.Fprintf(stderr, "  %s  %s\n", padRight(langmeta.Label(lr.Lang), width), line)
	}

	if rep.DryRun {
		if verbose {
			for _, e := range rep.Changed {
				fmt.Fprintf(stderr, "    %s\n", e.String())
			}
		}
		return
	}
	if rep.Fallbacks > 0 {
		logWarning(i18n.N("%d string kept its source text; run 'catsync sync' later to retry",
			"%d strings kept their source text; run 'catsync sync' later to retry", rep.Fallbacks), rep.Fallbacks)
	}
	if rep.LogPath != "" {
		logInfo(i18n.T("Log written to %s"), rep.LogPath)
	}
	logSuccess(i18n.T("%d calls in %s"), rep.Calls, rep.Duration.Round(time.Millisecond))
}

// ---------------------------------------------------------------------------
// check-missing
// ---------------------------------------------------------------------------

func newCheckMissingCmd() *cobra.Command {
	var (
		sources []string
		targets []string
	)

	cmd := &cobra.Command{
		Use:   "check-missing",
		Short: i18n.T("Report missing translations"),
		Long: i18n.T(`List, for every target language, the catalog entries that have no value
in its locale document, and the entries changed since the last run.
Nothing is translated or written. Use -v to list the keys.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			eng := newEngine(cfg, nil, newLogger(stderr, verbose), nil)
			rep, err := eng.CheckMissing(cmd.Context(), cfg.Sources, cfg.Languages)
			if err != nil {
				return err
			}
			return printMissing(rep)
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, i18n.T("Source catalog files, comma-separated"))
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, i18n.T("Target languages, comma-separated"))
	return cmd
}

func printMissing(rep *syncer.Report) error {
	heading(i18n.T("Missing translations"))
	total := 0
	for _, lr := range rep.Languages {
		total += len(lr.Missing)
		if len(lr.Missing) == 0 {
			fmt.Fprintf(stderr, "  %s  %s\n", langmeta.Label(lr.Lang), colorOK.Sprint(i18n.T("complete")))
			continue
		}
		fmt.Fprintf(stderr, "  %s  %s\n", langmeta.Label(lr.Lang),
			colorWarn.Sprintf(i18n.N("%d missing entry", "%d missing entries", len(lr.Missing)), len(lr.Missing)))
		if verbose {
			for _, e := range lr.Missing {
				fmt.Fprintf(stderr, "      %s\n", e.String())
			}
		}
	}
	fmt.Fprintln(stderr)
	if len(rep.Changed) > 0 {
		logInfo(i18n.N("%d entry changed since the last run", "%d entries changed since the last run", len(rep.Changed)), len(rep.Changed))
	}
	if total == 0 {
		logSuccess("%s", i18n.T("All target documents are complete"))
		return nil
	}
	logInfo("%s", i18n.T("Run 'catsync sync' to translate missing entries."))
	return nil
}
