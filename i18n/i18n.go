// Package i18n translates the catsync command-line interface.
//
// It wraps gotext with T() and N() helpers. Catalogs are embedded in the
// binary and selected at startup by Init().
//
// Usage:
//
//	import "github.com/minios-linux/catsync/i18n"
//
//	func main() {
//	    i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	    fmt.Println(i18n.T("Hello, world!"))
//	    fmt.Println(i18n.N("Found %d file", "Found %d files", count))
//	}
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Directory structure: locales/{lang}/LC_MESSAGES/catsync.po
//
//go:embed all:locales
var locales embed.FS

const domain = "catsync"

// translator is the part of *gotext.Locale used for lookups.
type translator interface {
	Get(str string, vars ...any) string
	GetN(str, plural string, n int, vars ...any) string
}

// po holds the loaded catalogs; nil until Init.
var po translator

var current string

// Init selects the UI language. An empty lang is detected from LANGUAGE,
// LC_ALL, LC_MESSAGES and LANG, in GNU gettext order.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	current = lang
	l := gotext.NewLocaleFSWithPath(lang, locales, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)
	po = l
}

// T translates msgid, or returns it unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE is a colon-separated preference list.
			if env == "LANGUAGE" {
				val, _, _ = strings.Cut(val, ":")
			}
			// "fr_CH.UTF-8" -> "fr_CH"
			val, _, _ = strings.Cut(val, ".")
			val, _, _ = strings.Cut(val, "@")
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}

// Language returns the UI language selected by Init, or "" before Init.
func Language() string {
	return current
}
