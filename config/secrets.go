package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/minios-linux/catsync/settings"
	"github.com/minios-linux/catsync/translate"
)

// Secrets are provider API keys read from the environment.
type Secrets struct {
	DeepLKey    string `env:"DEEP_L_API_KEY"`
	DeepLKeyAlt string `env:"DEEPL_API_KEY"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	// GenericKey applies to whichever provider is selected.
	GenericKey string `env:"CATSYNC_API_KEY"`
}

// LoadSecrets reads <root>/.env (if present, without overriding variables
// already set) and parses the key variables.
func LoadSecrets(root string) (*Secrets, error) {
	_ = godotenv.Load(filepath.Join(root, ".env"))

	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &s, nil
}

// For returns the environment key for a provider.
func (s *Secrets) For(provider string) string {
	if s.GenericKey != "" {
		return s.GenericKey
	}
	switch provider {
	case translate.ProviderDeepL, translate.ProviderDeepLPro:
		if s.DeepLKey != "" {
			return s.DeepLKey
		}
		return s.DeepLKeyAlt
	case translate.ProviderOpenAI:
		return s.OpenAIKey
	}
	return ""
}

// APIKey resolves the key for a provider: explicit flag value first, then
// the environment, then the stored credentials.
func APIKey(flagValue, provider string, s *Secrets) (key, source string) {
	if flagValue != "" {
		return flagValue, "flag"
	}
	if s != nil {
		if k := s.For(provider); k != "" {
			return k, "environment"
		}
	}
	if k := settings.GetAPIKey(provider); k != "" {
		return k, "stored credentials"
	}
	return "", ""
}
