// Package translate sends catalog strings to an external translation
// service. Providers perform a single raw call; Client wraps a provider with
// bounded retry, per-attempt deadlines and a circuit breaker, and falls back
// to the source text when the service cannot deliver a translation.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderDeepL    = "deepl"
	ProviderDeepLPro = "deepl-pro"
	ProviderOpenAI   = "openai"
)

// DefaultContext is the hint sent with every request unless overridden.
const DefaultContext = "E-commerce Pizzeria in Switzerland"

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (deepl, deepl-pro, openai).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the endpoint (DeepL) or API base URL (OpenAI).
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the model identifier (OpenAI only).
	Model string
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderDeepL: {
			ID:      ProviderDeepL,
			Name:    "DeepL API Free",
			BaseURL: "https://api-free.deepl.com/v2/translate",
		},
		ProviderDeepLPro: {
			ID:      ProviderDeepLPro,
			Name:    "DeepL API Pro",
			BaseURL: "https://api.deepl.com/v2/translate",
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
	}
}

// ResolveProvider returns the registered provider id with any non-empty
// override applied.
func ResolveProvider(id, baseURL, model, apiKey string) (Provider, error) {
	prov, ok := DefaultProviders()[strings.ToLower(id)]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (available: %s, %s, %s)", id, ProviderDeepL, ProviderDeepLPro, ProviderOpenAI)
	}
	if baseURL != "" {
		prov.BaseURL = baseURL
	}
	if model != "" {
		prov.Model = model
	}
	prov.APIKey = apiKey
	return prov, nil
}

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

// Request is a single string to translate.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	// Context is a free-text domain hint.
	Context string
}

// Translator performs one translation attempt. Implementations report
// HTTP failures as *StatusError and network failures as *TransportError.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, req Request) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New builds the translator for a provider.
func New(prov Provider, timeout time.Duration) (Translator, error) {
	if prov.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is not set", prov.Name)
	}
	switch prov.ID {
	case ProviderDeepL, ProviderDeepLPro:
		return NewDeepL(prov, timeout), nil
	case ProviderOpenAI:
		return NewOpenAI(prov), nil
	}
	return nil, fmt.Errorf("unsupported provider %q", prov.ID)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
