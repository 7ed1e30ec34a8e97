package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/catsync/langmeta"
)

// ---------------------------------------------------------------------------
// Writing .catsync.yaml
// ---------------------------------------------------------------------------

// WriteFile writes cfg as a project file. Existing files are not
// overwritten unless force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	header := "# catsync project configuration.\n" +
		"# API keys are read from DEEP_L_API_KEY / OPENAI_API_KEY or `catsync auth set-key`.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Language detection
// ---------------------------------------------------------------------------

// DetectLanguages finds target languages from existing <lang>.json files
// in the locales directory, excluding the source language.
func DetectLanguages(localesDir, sourceLang string) []string {
	entries, err := os.ReadDir(localesDir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		code, err := langmeta.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil || code == sourceLang {
			continue
		}
		langs = append(langs, code)
	}
	sort.Strings(langs)
	return langs
}

// DetectSources lists catalog files (products*/categories*, JSON or YAML)
// in the data directory.
func DetectSources(dataDir string) []string {
	var out []string
	for _, pattern := range []string{"products*", "categories*"} {
		matches, _ := filepath.Glob(filepath.Join(dataDir, pattern))
		sort.Strings(matches)
		for _, m := range matches {
			switch strings.ToLower(filepath.Ext(m)) {
			case ".json", ".yaml", ".yml":
				out = append(out, filepath.Base(m))
			}
		}
	}
	return out
}
