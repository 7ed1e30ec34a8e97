// Package config loads the .catsync.yaml project configuration.
//
// Values are layered by viper: built-in defaults, then the project file,
// then CATSYNC_* environment variables, then command-line flags bound by
// the CLI. API keys never live in the project file; see secrets.go.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/langmeta"
	"github.com/minios-linux/catsync/lockfile"
	"github.com/minios-linux/catsync/syncer"
	"github.com/minios-linux/catsync/translate"
)

// FileName is the default config file name.
const FileName = ".catsync.yaml"

// EnvPrefix prefixes environment overrides (CATSYNC_SOURCE_LANG, ...).
const EnvPrefix = "CATSYNC"

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the resolved project configuration.
type Config struct {
	// SourceLang is the language of the source catalogs (default "fr").
	SourceLang string `mapstructure:"source_lang" yaml:"source_lang"`
	// Languages are the target languages.
	Languages []string `mapstructure:"languages" yaml:"languages"`
	// Sources are the catalog files inside DataDir.
	Sources []string `mapstructure:"sources" yaml:"sources"`

	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	LocalesDir string `mapstructure:"locales_dir" yaml:"locales_dir"`
	LogsDir    string `mapstructure:"logs_dir" yaml:"logs_dir"`
	CacheFile  string `mapstructure:"cache_file" yaml:"cache_file"`

	// UseCache enables the fingerprint cache (default true).
	UseCache bool `mapstructure:"cache" yaml:"cache"`
	// Force retranslates every entry.
	Force bool `mapstructure:"force" yaml:"force,omitempty"`

	// Provider is the translation service id (deepl, deepl-pro, openai).
	Provider string `mapstructure:"provider" yaml:"provider"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model    string `mapstructure:"model" yaml:"model,omitempty"`
	// Context is the domain hint sent with each request.
	Context string `mapstructure:"context" yaml:"context"`
	// Pacing is the minimum interval between two calls.
	Pacing time.Duration `mapstructure:"pacing" yaml:"pacing"`

	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Schedule is the cron expression used by "catsync schedule".
	Schedule string `mapstructure:"schedule" yaml:"schedule,omitempty"`

	// Schema overrides the translatable fields per record type.
	Schema catalog.Schema `mapstructure:"schema" yaml:"schema,omitempty"`

	// Root is the project directory; relative paths resolve against it.
	Root string `mapstructure:"-" yaml:"-"`
	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// RetryConfig controls retries and the circuit breaker.
type RetryConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay            time.Duration `mapstructure:"delay" yaml:"delay"`
	Backoff          string        `mapstructure:"backoff" yaml:"backoff"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold" yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown" yaml:"breaker_cooldown"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns the built-in configuration.
func Default() Config {
	p := translate.DefaultPolicy()
	return Config{
		SourceLang: "fr",
		Languages:  []string{"en", "de", "it"},
		Sources:    []string{"products.json", "categories.json"},
		DataDir:    "data",
		LocalesDir: "locales",
		LogsDir:    "logs",
		CacheFile:  filepath.Join(".cache", lockfile.FileName),
		UseCache:   true,
		Provider:   translate.ProviderDeepL,
		Context:    translate.DefaultContext,
		Pacing:     time.Second,
		Retry: RetryConfig{
			MaxAttempts:      p.MaxAttempts,
			Delay:            p.Delay,
			Backoff:          p.Backoff,
			Timeout:          p.AttemptTimeout,
			BreakerThreshold: p.BreakerThreshold,
			BreakerCooldown:  p.BreakerCooldown,
		},
		Schema: catalog.DefaultSchema(),
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source_lang", d.SourceLang)
	v.SetDefault("languages", d.Languages)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("locales_dir", d.LocalesDir)
	v.SetDefault("logs_dir", d.LogsDir)
	v.SetDefault("cache_file", d.CacheFile)
	v.SetDefault("cache", d.UseCache)
	v.SetDefault("force", d.Force)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("base_url", "")
	v.SetDefault("model", "")
	v.SetDefault("context", d.Context)
	v.SetDefault("pacing", d.Pacing)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.delay", d.Retry.Delay)
	v.SetDefault("retry.backoff", d.Retry.Backoff)
	v.SetDefault("retry.timeout", d.Retry.Timeout)
	v.SetDefault("retry.breaker_threshold", d.Retry.BreakerThreshold)
	v.SetDefault("retry.breaker_cooldown", d.Retry.BreakerCooldown)
	v.SetDefault("schedule", "")
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Init prepares v to read the project file and CATSYNC_* variables.
// An explicit file wins over the lookup of .catsync.yaml in root.
func Init(v *viper.Viper, root, file string) {
	SetDefaults(v)
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(root)
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads the config file (if any) into a validated Config.
// A missing .catsync.yaml is not an error; a missing explicit file is.
func Load(v *viper.Viper, root string) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Root = root
	cfg.File = v.ConfigFileUsed()

	def := catalog.DefaultSchema()
	if isEmptyType(cfg.Schema.Product) {
		cfg.Schema.Product = def.Product
	}
	if isEmptyType(cfg.Schema.Category) {
		cfg.Schema.Category = def.Category
	}

	if err := cfg.Validate(); err != nil {
		if cfg.File != "" {
			return nil, fmt.Errorf("%s: %w", cfg.File, err)
		}
		return nil, err
	}
	return &cfg, nil
}

func isEmptyType(ts catalog.TypeSchema) bool {
	return len(ts.Fields) == 0 && len(ts.Arrays) == 0
}

// Validate checks language codes, sources and retry settings, and
// canonicalizes language codes and the provider id in place.
func (c *Config) Validate() error {
	src, err := langmeta.Parse(c.SourceLang)
	if err != nil {
		return fmt.Errorf("source_lang: %w", err)
	}
	c.SourceLang = src

	if len(c.Languages) == 0 {
		return fmt.Errorf("languages: at least one target language is required")
	}
	seen := make(map[string]bool)
	langs := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		code, err := langmeta.Parse(l)
		if err != nil {
			return fmt.Errorf("languages: %w", err)
		}
		if code == c.SourceLang {
			return fmt.Errorf("languages: %q is the source language", code)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		langs = append(langs, code)
	}
	c.Languages = langs

	if len(c.Sources) == 0 {
		return fmt.Errorf("sources: at least one catalog file is required")
	}
	for _, s := range c.Sources {
		if _, err := catalog.TypeForFile(s); err != nil {
			return fmt.Errorf("sources: %w", err)
		}
	}

	provider := strings.ToLower(strings.TrimSpace(c.Provider))
	if _, ok := translate.DefaultProviders()[provider]; !ok {
		return fmt.Errorf("provider: unknown provider %q", c.Provider)
	}
	c.Provider = provider
	if c.Pacing < 0 {
		return fmt.Errorf("pacing: must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts: must be at least 1")
	}
	switch c.Retry.Backoff {
	case "", translate.BackoffConstant, translate.BackoffExponential:
	default:
		return fmt.Errorf("retry.backoff: must be %q or %q", translate.BackoffConstant, translate.BackoffExponential)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Derived settings
// ---------------------------------------------------------------------------

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Paths returns the file layout resolved against Root.
func (c *Config) Paths() syncer.Paths {
	return syncer.Paths{
		DataDir:    c.abs(c.DataDir),
		LocalesDir: c.abs(c.LocalesDir),
		LogsDir:    c.abs(c.LogsDir),
		CacheFile:  c.abs(c.CacheFile),
	}
}

// Policy returns the translation retry policy.
func (c *Config) Policy() translate.Policy {
	return translate.Policy{
		MaxAttempts:      c.Retry.MaxAttempts,
		Delay:            c.Retry.Delay,
		Backoff:          c.Retry.Backoff,
		AttemptTimeout:   c.Retry.Timeout,
		BreakerThreshold: c.Retry.BreakerThreshold,
		BreakerCooldown:  c.Retry.BreakerCooldown,
	}
}

// RunConfig builds the per-run configuration.
func (c *Config) RunConfig(mode syncer.Mode) syncer.RunConfig {
	return syncer.RunConfig{
		SourceFiles:      c.Sources,
		TargetLanguages:  c.Languages,
		UseCache:         c.UseCache,
		ForceTranslation: c.Force,
		Mode:             mode,
	}
}
