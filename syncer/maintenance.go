package syncer

import (
	"context"
	"fmt"
	"os"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/locale"
	"github.com/minios-linux/catsync/lockfile"
)

// CheckMissing reports, for every language, the entries that have no value
// in its document, along with the entries the cache considers changed.
// Nothing is written.
func (e *Engine) CheckMissing(ctx context.Context, files, langs []string) (*Report, error) {
	return e.Run(ctx, RunConfig{
		SourceFiles:     files,
		TargetLanguages: langs,
		UseCache:        true,
		DryRun:          true,
	})
}

// GenerateCache records the digest of every current entry without
// translating anything, marking the catalogs as in sync. With force the
// cache is rebuilt from scratch, dropping digests of deleted records.
func (e *Engine) GenerateCache(files []string, force bool) (int, error) {
	ext, err := e.extract(files)
	if err != nil {
		return 0, phaseErr(PhaseExtracting, "", err)
	}

	lf, err := lockfile.Load(e.opts.CacheFile)
	if err != nil {
		return 0, phaseErr(PhaseDiffing, "", err)
	}
	if force {
		lf.Checksums = make(lockfile.Checksums)
	}
	for _, entry := range ext.Entries {
		lf.Checksums.Put(entry)
	}
	if err := lf.Save(); err != nil {
		return 0, phaseErr(PhaseCacheFlush, "", err)
	}
	e.logger.Info("cache generated", "entries", len(ext.Entries), "force", force, "file", lf.Path())
	return len(ext.Entries), nil
}

// Reset deletes the cache file, every transcript and the locale documents
// of the source language and langs. It returns the removed paths.
func (e *Engine) Reset(langs []string) ([]string, error) {
	var removed []string
	remove := func(path string) error {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return phaseErr(PhaseReset, "", fmt.Errorf("removing %s: %w", path, err))
		}
		removed = append(removed, path)
		return nil
	}

	if err := remove(e.opts.CacheFile); err != nil {
		return removed, err
	}

	logs, err := LogFiles(e.opts.LogsDir)
	if err != nil {
		return removed, phaseErr(PhaseReset, "", err)
	}
	for _, p := range logs {
		if err := remove(p); err != nil {
			return removed, err
		}
	}

	seen := make(map[string]bool)
	for _, lang := range append([]string{e.opts.SourceLang}, langs...) {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		if err := remove(locale.Path(e.opts.LocalesDir, lang)); err != nil {
			return removed, err
		}
	}

	e.logger.Info("reset", "removed", len(removed))
	return removed, nil
}

// Coverage is the translation state of one language.
type Coverage struct {
	Lang    string
	Present int
	Total   int
}

// Status returns the cache contents and per-language coverage of the
// current catalogs.
func (e *Engine) Status(files, langs []string) (lockfile.Checksums, []Coverage, error) {
	ext, err := e.extract(files)
	if err != nil {
		return nil, nil, phaseErr(PhaseExtracting, "", err)
	}
	lf, err := lockfile.Load(e.opts.CacheFile)
	if err != nil {
		return nil, nil, phaseErr(PhaseDiffing, "", err)
	}

	var cov []Coverage
	for _, lang := range append([]string{e.opts.SourceLang}, langs...) {
		doc, err := locale.Load(e.opts.LocalesDir, lang)
		if err != nil {
			return nil, nil, phaseErr(PhaseLoading, lang, err)
		}
		present, total := doc.Stats(ext.Entries)
		cov = append(cov, Coverage{Lang: lang, Present: present, Total: total})
	}
	return lf.Checksums, cov, nil
}

// Entries returns the entries extracted from files.
func (e *Engine) Entries(files []string) ([]catalog.Entry, error) {
	ext, err := e.extract(files)
	if err != nil {
		return nil, phaseErr(PhaseExtracting, "", err)
	}
	return ext.Entries, nil
}
