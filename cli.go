package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/minios-linux/catsync/config"
	"github.com/minios-linux/catsync/i18n"
	"github.com/minios-linux/catsync/langmeta"
	"github.com/minios-linux/catsync/settings"
	"github.com/minios-linux/catsync/syncer"
	"github.com/minios-linux/catsync/translate"
)

// ---------------------------------------------------------------------------
// Shared flags
// ---------------------------------------------------------------------------

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"source":   "sources",
	"target":   "languages",
	"cache":    "cache",
	"force":    "force",
	"provider": "provider",
	"model":    "model",
	"base-url": "base_url",
	"schedule": "schedule",
}

// syncFlags are the flags shared by the commands that translate.
type syncFlags struct {
	sources  []string
	targets  []string
	useCache bool
	force    bool
	apiKey   string
	yes      bool
	dryRun   bool
	provider string
	model    string
	baseURL  string
}

func (f *syncFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVarP(&f.sources, "source", "s", nil, i18n.T("Source catalog files, comma-separated (default: products.json,categories.json)"))
	fs.StringSliceVarP(&f.targets, "target", "t", nil, i18n.T("Target languages, comma-separated (default: en,de,it)"))
	fs.BoolVar(&f.useCache, "cache", true, i18n.T("Use the fingerprint cache to skip unchanged entries"))
	fs.BoolVarP(&f.force, "force", "f", false, i18n.T("Translate every entry, ignoring the cache"))
	fs.StringVarP(&f.apiKey, "api-key", "k", "", i18n.T("Translation service API key"))
	fs.BoolVarP(&f.yes, "yes", "y", false, i18n.T("Skip all confirmations and prompts"))
	fs.BoolVar(&f.dryRun, "dry-run", false, i18n.T("Show what would be translated without calling the service"))
	fs.StringVar(&f.provider, "provider", "", i18n.T("Translation provider: deepl, deepl-pro, openai"))
	fs.StringVar(&f.model, "model", "", i18n.T("Model name (openai only)"))
	fs.StringVar(&f.baseURL, "base-url", "", i18n.T("Custom API endpoint"))
}

// loadConfig layers defaults, the project file, CATSYNC_* variables and
// the flags of fs that were set.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	v := viper.New()
	config.Init(v, rootDir, configFile)
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}
	return config.Load(v, rootDir)
}

// ---------------------------------------------------------------------------
// Engine and client
// ---------------------------------------------------------------------------

func newEngine(cfg *config.Config, client syncer.Client, logger *slog.Logger, onProgress func(lang string, done, total int)) *syncer.Engine {
	schema := cfg.Schema
	return syncer.New(syncer.Options{
		Paths:      cfg.Paths(),
		SourceLang: cfg.SourceLang,
		Schema:     &schema,
		Context:    cfg.Context,
		Pacing:     cfg.Pacing,
		Logger:     logger,
		OnProgress: onProgress,
	}, client)
}

// newClient resolves the provider and its key (flag, environment, stored
// credentials, then an interactive prompt) and wraps it with the retry
// policy of cfg.
func newClient(cfg *config.Config, apiKey string, interactive bool, logger *slog.Logger) (*translate.Client, error) {
	secrets, err := config.LoadSecrets(cfg.Root)
	if err != nil {
		return nil, err
	}

	key, source := config.APIKey(apiKey, cfg.Provider, secrets)
	if key == "" && interactive {
		key, err = promptLine(os.Stdin, fmt.Sprintf(i18n.T("Enter the %s API key: "), cfg.Provider))
		if err != nil {
			return nil, err
		}
		source = "prompt"
	}
	if key == "" {
		return nil, fmt.Errorf(i18n.T("no API key for provider '%s'\n\n"+
			"Option 1: Store your API key:\n"+
			"  catsync auth set-key %s\n\n"+
			"Option 2: Set DEEP_L_API_KEY (deepl) or OPENAI_API_KEY (openai)\n\n"+
			"Option 3: Pass key directly:\n"+
			"  --api-key YOUR_KEY"), cfg.Provider, cfg.Provider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if info := settings.Get(cfg.Provider); info != nil {
			baseURL = info.BaseURL
		}
	}
	prov, err := translate.ResolveProvider(cfg.Provider, baseURL, cfg.Model, key)
	if err != nil {
		return nil, err
	}
	tr, err := translate.New(prov, cfg.Retry.Timeout)
	if err != nil {
		return nil, err
	}
	logger.Debug("translation provider",
		"provider", prov.ID,
		"endpoint", prov.BaseURL,
		"key", settings.MaskKey(key),
		"key_source", source)

	client := translate.NewClient(tr, cfg.Policy())
	client.OnLog = func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	}
	return client, nil
}

// ---------------------------------------------------------------------------
// Terminal helpers
// ---------------------------------------------------------------------------

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// promptLine writes prompt to stderr and reads one trimmed line from r.
func promptLine(r io.Reader, prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s", i18n.T("no input received"))
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// confirm asks a yes/no question; anything but y/yes/o/oui is a no.
func confirm(r io.Reader, question string) bool {
	answer, err := promptLine(r, question+" [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

// progressReporter draws one progress bar per language.
type progressReporter struct {
	w    io.Writer
	lang string
	bar  *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{w: w}
}

func (p *progressReporter) update(lang string, done, total int) {
	if p.bar == nil || p.lang != lang {
		p.finish()
		p.lang = lang
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", langmeta.Label(lang))),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}
	_ = p.bar.Set(done)
	if done >= total {
		p.finish()
	}
}

func (p *progressReporter) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
	p.bar = nil
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// progressBar renders a colored bar of width cells followed by the percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	c := colorErr
	switch {
	case percent >= 100:
		c = colorOK
	case percent >= 50:
		c = colorWarn
	}
	return fmt.Sprintf("%s %3d%%", c.Sprint(bar), percent)
}

// langColumnWidth returns the width needed to print every label of langs.
func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if n := len([]rune(langmeta.Label(l))); n > w {
			w = n
		}
	}
	return w
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
