package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/catsync/i18n"
	"github.com/minios-linux/catsync/langmeta"
	"github.com/minios-linux/catsync/syncer"
)

// ---------------------------------------------------------------------------
// generate-cache
// ---------------------------------------------------------------------------

func newGenerateCacheCmd() *cobra.Command {
	var (
		sources []string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "generate-cache",
		Short: i18n.T("Rebuild the fingerprint cache without translating"),
		Long: i18n.T(`Record the fingerprint of every current catalog entry, marking the
catalogs as in sync with the locale documents. Use it after translating by
hand or after importing locale files. With --force the cache is rebuilt
from scratch, dropping fingerprints of deleted records.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			eng := newEngine(cfg, nil, newLogger(stderr, verbose), nil)
			n, err := eng.GenerateCache(cfg.Sources, force)
			if err != nil {
				return err
			}
			logSuccess(i18n.N("Cache written with %d entry: %s", "Cache written with %d entries: %s", n), n, cfg.Paths().CacheFile)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, i18n.T("Source catalog files, comma-separated"))
	cmd.Flags().BoolVarP(&force, "force", "f", false, i18n.T("Rebuild the cache from scratch"))
	return cmd
}

// ---------------------------------------------------------------------------
// reset
// ---------------------------------------------------------------------------

func newResetCmd() *cobra.Command {
	var (
		targets []string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: i18n.T("Remove the cache, the logs and the locale documents"),
		Long: i18n.T(`Delete the fingerprint cache, every translation log and the locale
documents of the source and target languages. The next run translates
everything again. Asks for confirmation unless --yes is given.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if !yes {
				if !isTerminal(os.Stdin) {
					return fmt.Errorf("%s", i18n.T("refusing to reset without confirmation; pass --yes"))
				}
				if !confirm(os.Stdin, i18n.T("Delete the cache, the logs and all locale documents?")) {
					logInfo("%s", i18n.T("Reset cancelled"))
					return nil
				}
			}

			eng := newEngine(cfg, nil, newLogger(stderr, verbose), nil)
			removed, err := eng.Reset(cfg.Languages)
			for _, p := range removed {
				fmt.Fprintf(stderr, "  - %s\n", relPath(cfg.Root, p))
			}
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				logInfo("%s", i18n.T("Nothing to remove"))
				return nil
			}
			logSuccess(i18n.N("%d file removed", "%d files removed", len(removed)), len(removed))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, i18n.T("Target languages, comma-separated"))
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, i18n.T("Do not ask for confirmation"))
	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: cache and coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show cache and translation coverage"),
		Long: i18n.T(`Show the project layout, the contents of the fingerprint cache and, for
every language, how many catalog entries its locale document covers.
Does not modify any files.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			eng := newEngine(cfg, nil, newLogger(stderr, verbose), nil)
			cs, cov, err := eng.Status(cfg.Sources, cfg.Languages)
			if err != nil {
				return err
			}

			paths := cfg.Paths()
			heading(i18n.T("Project"))
			absRoot, _ := filepath.Abs(cfg.Root)
			fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Root:"), absRoot)
			if cfg.File != "" {
				fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Config:"), relPath(cfg.Root, cfg.File))
			}
			fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Catalogs:"), relPath(cfg.Root, paths.DataDir))
			fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Locales:"), relPath(cfg.Root, paths.LocalesDir))
			fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Cache:"), cs.Summary())

			logs, _ := syncer.LogFiles(paths.LogsDir)
			if len(logs) > 0 {
				fmt.Fprintf(stderr, "  %-10s %s\n", i18n.T("Last log:"), relPath(cfg.Root, logs[len(logs)-1]))
			}

			printCoverage(cov)
			return nil
		},
	}
}

func printCoverage(cov []syncer.Coverage) {
	heading(i18n.T("Translation coverage"))
	langs := make([]string, 0, len(cov))
	for _, c := range cov {
		langs = append(langs, c.Lang)
	}
	width := langColumnWidth(langs)

	var gaps []syncer.Coverage
	for _, c := range cov {
		percent := 100
		if c.Total > 0 {
			percent = c.Present * 100 / c.Total
		}
		fmt.Fprintf(stderr, "  %s  %s  %d/%d\n", padRight(langmeta.Label(c.Lang), width), progressBar(percent, 20), c.Present, c.Total)
		if c.Present < c.Total {
			gaps = append(gaps, c)
		}
	}
	fmt.Fprintln(stderr)

	if len(gaps) > 0 {
		logInfo("%s", i18n.T("Translation gaps:"))
		for _, g := range gaps {
			fmt.Fprintf(stderr, "  %s: %s\n", g.Lang, fmt.Sprintf(i18n.N("%d missing entry", "%d missing entries", g.Total-g.Present), g.Total-g.Present))
		}
		fmt.Fprintln(stderr)
		logInfo("%s", i18n.T("Run 'catsync sync' to translate missing entries."))
	}
}

// relPath shortens p relative to root for display.
func relPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
