// Package syncer drives a translation run: it extracts entries from the
// source catalogs, diffs them against the fingerprint cache, translates the
// changed ones into every target language and persists the locale
// documents, the cache and a transcript of every call.
//
// A run moves through fixed phases, each flushing its own file:
//
//	extracting -> diffing -> writing-source
//	  -> per language: loading -> translating -> writing
//	-> cache-flush -> log-flush
//
// A failing phase aborts the run with a *PhaseError; files flushed by
// earlier phases stay on disk.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/translate"
)

// ---------------------------------------------------------------------------
// Phases and errors
// ---------------------------------------------------------------------------

// Phase names a step of a run.
type Phase string

const (
	PhaseExtracting    Phase = "extracting"
	PhaseDiffing       Phase = "diffing"
	PhaseWritingSource Phase = "writing-source"
	PhaseLoading       Phase = "loading"
	PhaseTranslating   Phase = "translating"
	PhaseWriting       Phase = "writing"
	PhaseCacheFlush    Phase = "cache-flush"
	PhaseLogFlush      Phase = "log-flush"
	PhaseReset         Phase = "reset"
)

// PhaseError reports the phase (and language, for per-language phases)
// in which a run failed.
type PhaseError struct {
	Phase Phase
	Lang  string
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Lang != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Phase, e.Lang, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseErr(p Phase, lang string, err error) error {
	return &PhaseError{Phase: p, Lang: lang, Err: err}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Mode selects which entries a run translates.
type Mode string

const (
	// ModeRun translates entries whose source text changed.
	ModeRun Mode = "run"
	// ModeSync translates entries missing from each target document.
	ModeSync Mode = "sync"
)

// Paths locates the files a run reads and writes.
type Paths struct {
	DataDir    string
	LocalesDir string
	LogsDir    string
	CacheFile  string
}

// Options are fixed for the lifetime of an Engine.
type Options struct {
	Paths
	// SourceLang is the language of the source catalogs. Default: "fr".
	SourceLang string
	// Schema lists the translatable fields. Default: catalog.DefaultSchema().
	Schema *catalog.Schema
	// Context is the domain hint sent with every request.
	Context string
	// Pacing is the minimum interval between two translation calls.
	// Zero disables pacing.
	Pacing time.Duration
	// Logger receives structured diagnostics. Default: discard.
	Logger *slog.Logger
	// OnProgress is called after each translated entry.
	OnProgress func(lang string, done, total int)
	// Now is the clock used for log file names.
	Now func() time.Time
}

// RunConfig is the per-invocation configuration.
type RunConfig struct {
	SourceFiles     []string
	TargetLanguages []string
	// UseCache false ignores the fingerprint cache: every entry is
	// translated and the cache file is left untouched.
	UseCache bool
	// ForceTranslation treats every entry as changed.
	ForceTranslation bool
	Mode             Mode
	// DryRun computes the work without translating or writing anything.
	DryRun bool
}

// Client is the translation client used by a run.
type Client interface {
	Translate(ctx context.Context, req translate.Request) translate.Result
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

// LangReport summarizes one target language.
type LangReport struct {
	Lang string
	// Missing lists entries absent from the document before the run.
	Missing    []catalog.Entry
	Queued     int
	Translated int
	Fallbacks  int
}

// Report summarizes a run.
type Report struct {
	RunID     string
	Mode      Mode
	DryRun    bool
	Entries   int
	Skipped   int
	Changed   []catalog.Entry
	Languages []LangReport
	Calls     int
	Fallbacks int
	LogPath   string
	Duration  time.Duration
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine runs syncs against one project layout.
type Engine struct {
	opts   Options
	client Client
	logger *slog.Logger
}

// New returns an engine. client may be nil for operations that never
// translate (dry runs, check-missing, generate-cache, reset).
func New(opts Options, client Client) *Engine {
	if opts.SourceLang == "" {
		opts.SourceLang = "fr"
	}
	if opts.Schema == nil {
		s := catalog.DefaultSchema()
		opts.Schema = &s
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts, client: client, logger: logger}
}

// extract loads the source catalogs and flattens them.
func (e *Engine) extract(files []string) (catalog.Result, error) {
	src, err := catalog.LoadSources(e.opts.DataDir, files)
	if err != nil {
		return catalog.Result{}, err
	}
	res := catalog.Extract(src.Products, src.Categories, *e.opts.Schema)
	e.logger.Debug("extracted entries",
		"files", len(src.Files),
		"products", len(src.Products),
		"categories", len(src.Categories),
		"entries", len(res.Entries),
		"skipped", res.Skipped)
	return res, nil
}
