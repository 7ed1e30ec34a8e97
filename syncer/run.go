package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/locale"
	"github.com/minios-linux/catsync/lockfile"
	"github.com/minios-linux/catsync/translate"
)

// Run executes one sync. Entries and languages are processed strictly one
// after another; each language document is written once, after all of its
// entries were translated, and the cache and transcript are written last.
//
// The cache is advanced for every queued entry before translation, so an
// entry whose translation fell back to the source text is not retried by
// the next run. ModeSync repairs such gaps.
func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*Report, error) {
	start := time.Now()
	startedAt := e.opts.Now()
	mode := cfg.Mode
	if mode == "" {
		mode = ModeRun
	}
	rep := &Report{RunID: uuid.NewString(), Mode: mode, DryRun: cfg.DryRun}
	log := e.logger.With("run", rep.RunID, "mode", string(mode))

	if e.client == nil && !cfg.DryRun {
		return nil, errors.New("no translation client configured")
	}

	// Extracting
	ext, err := e.extract(cfg.SourceFiles)
	if err != nil {
		return nil, phaseErr(PhaseExtracting, "", err)
	}
	entries := ext.Entries
	rep.Entries = len(entries)
	rep.Skipped = ext.Skipped

	// Diffing
	var lf *lockfile.LockFile
	stored := make(lockfile.Checksums)
	if cfg.UseCache {
		lf, err = lockfile.Load(e.opts.CacheFile)
		if err != nil {
			return nil, phaseErr(PhaseDiffing, "", err)
		}
		stored = lf.Checksums
	}
	updated, changed := lockfile.Diff(entries, stored, cfg.ForceTranslation)
	rep.Changed = changed
	// In sync mode a changed entry is recorded only once every target
	// language received it.
	var sent map[string]int
	if mode == ModeSync {
		updated = stored.Clone()
		sent = make(map[string]int)
	}
	log.Info("diff computed", "entries", len(entries), "changed", len(changed), "force", cfg.ForceTranslation, "cache", cfg.UseCache)

	// WritingSourceTree
	if !cfg.DryRun {
		if err := e.writeSource(entries); err != nil {
			return nil, phaseErr(PhaseWritingSource, e.opts.SourceLang, err)
		}
	}

	var limiter *rate.Limiter
	if e.opts.Pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(e.opts.Pacing), 1)
	}

	var records []Record
	for _, lang := range cfg.TargetLanguages {
		// Loading
		doc, err := locale.Load(e.opts.LocalesDir, lang)
		if err != nil {
			return nil, phaseErr(PhaseLoading, lang, err)
		}
		lr := LangReport{Lang: lang, Missing: doc.Missing(entries)}
		if len(lr.Missing) > 0 {
			log.Warn("missing translations", "lang", lang, "count", len(lr.Missing))
			for _, m := range lr.Missing {
				log.Debug("missing key", "lang", lang, "key", m.String())
			}
		}

		queue := changed
		if mode == ModeSync {
			queue = lr.Missing
		}
		lr.Queued = len(queue)

		if cfg.DryRun {
			rep.Languages = append(rep.Languages, lr)
			continue
		}

		// Translating
		for i, entry := range queue {
			if err := ctx.Err(); err != nil {
				return nil, phaseErr(PhaseTranslating, lang, err)
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return nil, phaseErr(PhaseTranslating, lang, err)
				}
			}

			res := e.client.Translate(ctx, translate.Request{
				Text:       entry.Value,
				SourceLang: e.opts.SourceLang,
				TargetLang: lang,
				Context:    e.opts.Context,
			})
			rep.Calls++
			doc.Apply(entry, res.Text)

			rec := Record{Lang: lang, Key: entry.Key, Value: entry.Value, TranslatedValue: res.Text}
			if entry.Element != nil {
				idx := entry.Element.Index
				rec.Index = &idx
			}
			if res.Fallback {
				lr.Fallbacks++
				rec.Fallback = true
				if res.Err != nil {
					rec.Error = res.Err.Error()
				}
				log.Warn("translation fell back to source text", "lang", lang, "key", entry.String(), "attempts", res.Attempts, "err", res.Err)
			} else {
				lr.Translated++
				log.Debug("translated", "lang", lang, "key", entry.String())
			}
			records = append(records, rec)

			if sent != nil {
				sent[entry.String()]++
			}
			if e.opts.OnProgress != nil {
				e.opts.OnProgress(lang, i+1, len(queue))
			}
		}

		// Writing
		if err := doc.Save(); err != nil {
			return nil, phaseErr(PhaseWriting, lang, err)
		}
		rep.Fallbacks += lr.Fallbacks
		rep.Languages = append(rep.Languages, lr)
		log.Info("language written", "lang", lang, "translated", lr.Translated, "fallbacks", lr.Fallbacks, "file", doc.FilePath())
	}

	if cfg.DryRun {
		rep.Duration = time.Since(start)
		return rep, nil
	}

	// CacheFlush
	if sent != nil {
		for _, entry := range changed {
			if sent[entry.String()] == len(cfg.TargetLanguages) {
				updated.Put(entry)
			}
		}
	}
	if cfg.UseCache {
		lf.Checksums = updated
		if err := lf.Save(); err != nil {
			return nil, phaseErr(PhaseCacheFlush, "", err)
		}
	}

	// LogFlush
	path, err := writeLog(e.opts.LogsDir, startedAt, records)
	if err != nil {
		return nil, phaseErr(PhaseLogFlush, "", err)
	}
	rep.LogPath = path
	rep.Duration = time.Since(start)
	log.Info("run finished", "calls", rep.Calls, "fallbacks", rep.Fallbacks, "log", path, "duration", rep.Duration)
	return rep, nil
}

// writeSource stores every entry verbatim in the source-language document
// so that it mirrors the catalogs key for key.
func (e *Engine) writeSource(entries []catalog.Entry) error {
	doc, err := locale.Load(e.opts.LocalesDir, e.opts.SourceLang)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		doc.Apply(entry, entry.Value)
	}
	if err := doc.Save(); err != nil {
		return fmt.Errorf("saving source document: %w", err)
	}
	return nil
}
