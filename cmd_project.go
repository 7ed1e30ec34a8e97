package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/config"
	"github.com/minios-linux/catsync/i18n"
	"github.com/minios-linux/catsync/syncer"
)

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("Write a .catsync.yaml project file"),
		Long: i18n.T(`Write .catsync.yaml in the project root with the default settings.
Target languages are detected from existing locales/<lang>.json files and
source catalogs from data/products* and data/categories*.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Root = rootDir
			paths := cfg.Paths()

			if langs := config.DetectLanguages(paths.LocalesDir, cfg.SourceLang); len(langs) > 0 {
				cfg.Languages = langs
				logInfo(i18n.T("Detected languages: %v"), langs)
			}
			if sources := config.DetectSources(paths.DataDir); len(sources) > 0 {
				cfg.Sources = sources
				logInfo(i18n.T("Detected catalogs: %v"), sources)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := filepath.Join(rootDir, config.FileName)
			if err := config.WriteFile(path, cfg, force); err != nil {
				return err
			}
			logSuccess(i18n.T("Created %s"), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, i18n.T("Overwrite an existing file"))
	return cmd
}

// ---------------------------------------------------------------------------
// filter
// ---------------------------------------------------------------------------

func newFilterCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: i18n.T("Strip catalogs down to their translatable fields"),
		Long: i18n.T(`Write <name>-filtered.json next to every source catalog, keeping only
the id, the type and the translatable fields of each record. Array fields
keep the translated attribute of each element, so positions are unchanged.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			dataDir := cfg.Paths().DataDir
			for _, f := range cfg.Sources {
				src := f
				if !filepath.IsAbs(src) {
					src = filepath.Join(dataDir, f)
				}
				out := catalog.FilteredName(src)
				n, err := catalog.FilterFile(src, out, cfg.Schema)
				if err != nil {
					return err
				}
				logSuccess(i18n.N("%s: %d record written to %s", "%s: %d records written to %s", n), f, n, relPath(cfg.Root, out))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, i18n.T("Source catalog files, comma-separated"))
	return cmd
}

// ---------------------------------------------------------------------------
// schedule
// ---------------------------------------------------------------------------

func newScheduleCmd() *cobra.Command {
	var (
		f        syncFlags
		schedule string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: i18n.T("Run periodically on a cron schedule"),
		Long: i18n.T(`Run "catsync run" on a cron schedule until interrupted. The schedule
comes from --schedule or the "schedule" key of .catsync.yaml and uses the
standard five-field syntax or descriptors such as @hourly. A run still in
progress when the next one is due is skipped.

Examples:
  catsync schedule --schedule "*/30 * * * *"
  catsync schedule --schedule @daily -t en,de`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Schedule == "" {
				return fmt.Errorf("%s", i18n.T("no schedule: pass --schedule or set \"schedule\" in .catsync.yaml"))
			}
			logger := newLogger(stderr, verbose)
			client, err := newClient(cfg, f.apiKey, false, logger)
			if err != nil {
				return err
			}
			eng := newEngine(cfg, client, logger, nil)
			rc := cfg.RunConfig(syncer.ModeRun)

			job := func(ctx context.Context) {
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				rep, err := eng.Run(ctx, rc)
				if err != nil {
					logError(i18n.T("Scheduled run failed: %v"), err)
					return
				}
				printReport(rep)
			}
			return runSchedule(cmd.Context(), cfg.Schedule, job)
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVar(&schedule, "schedule", "", i18n.T("Cron expression, e.g. \"0 * * * *\" or @hourly"))
	cmd.Flags().DurationVar(&timeout, "timeout", 0, i18n.T("Maximum duration of one run (0 = unlimited)"))
	return cmd
}

// runSchedule calls job on the cron expression expr until ctx is done,
// skipping a tick while the previous call is still running.
func runSchedule(ctx context.Context, expr string, job func(context.Context)) error {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf(i18n.T("invalid cron expression %q: %w"), expr, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(func() { job(ctx) }))
	c.Start()
	logInfo(i18n.T("Scheduled %q, next run at %s. Press Ctrl+C to stop."), expr, sched.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	logInfo("%s", i18n.T("Scheduler stopped"))
	return nil
}
