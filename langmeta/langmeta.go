// Package langmeta provides language display metadata (native name, English
// name and emoji flag) for the CLI and for provider prompts.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Code string
	Name string
	Flag string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Parse validates a language code and returns it in canonical form
// (lower-case language, upper-case region: "pt_br" -> "pt-BR").
func Parse(lang string) (string, error) {
	code := canonicalize(lang)
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	if _, err := language.Parse(code); err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", lang, err)
	}
	return code, nil
}

// Resolve returns best-effort metadata for a language code. Unknown codes
// come back with the code as name and no flag.
func Resolve(lang string) Meta {
	code := canonicalize(lang)
	tag, err := language.Parse(code)
	if err != nil {
		return Meta{Code: lang, Name: lang}
	}
	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}
	return Meta{Code: code, Name: name, Flag: flag(tag)}
}

// EnglishName returns the English name of a language ("de" -> "German").
func EnglishName(lang string) string {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return lang
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return lang
}

// Label renders "🇩🇪 Deutsch (de)" for CLI output.
func Label(lang string) string {
	m := Resolve(lang)
	if m.Flag == "" {
		return fmt.Sprintf("%s (%s)", m.Name, lang)
	}
	return fmt.Sprintf("%s %s (%s)", m.Flag, m.Name, lang)
}

// flag builds the regional-indicator emoji of the tag's most likely region.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
