// Package i18n holds the English and French UI strings and picks the
// language of a request.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile is the layout of locales/<lang>/messages.json.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// DefaultLanguage is used when nothing better matches, and for keys a
// catalog lacks.
const DefaultLanguage = "en"

// SupportedLanguages lists the UI languages we support.
var SupportedLanguages = []string{"en", "fr"}

// catalogs is immutable once built; Init swaps it atomically.
type catalogs struct {
	messages map[string]map[string]string // lang -> key -> translation
	tags     []language.Tag
	matcher  language.Matcher
}

var current atomic.Pointer[catalogs]

// Init loads every supported catalog. logger may be nil.
func Init(logger *slog.Logger) error {
	c := &catalogs{messages: make(map[string]map[string]string, len(SupportedLanguages))}

	for _, lang := range SupportedLanguages {
		msgs, err := readCatalog(lang)
		if err != nil {
			return err
		}
		c.messages[lang] = msgs
		c.tags = append(c.tags, language.MustParse(lang))
	}
	c.matcher = language.NewMatcher(c.tags)

	if logger != nil {
		for lang, msgs := range c.messages {
			for key := range c.messages[DefaultLanguage] {
				if _, ok := msgs[key]; !ok {
					logger.Debug("missing translation", "lang", lang, "key", key)
				}
			}
		}
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}

	current.Store(c)
	return nil
}

func readCatalog(lang string) (map[string]string, error) {
	path := "locales/" + lang + "/messages.json"
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f MessageFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	msgs := make(map[string]string, len(f.Messages))
	for _, m := range f.Messages {
		msgs[m.ID] = m.Translation
	}
	return msgs, nil
}

// T translates key into lang, formatting args into it when given.
// Unknown languages and missing keys fall back to English; a key missing
// everywhere is returned as-is.
func T(lang, key string, args ...any) string {
	c := current.Load()
	if c == nil {
		return key
	}

	translation, ok := c.messages[lang][key]
	if !ok {
		translation, ok = c.messages[DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// GetSupportedLanguages returns the list of supported UI languages.
func GetSupportedLanguages() []string {
	return SupportedLanguages
}

// MatchLanguage picks the supported language closest to an
// Accept-Language header or a bare language code.
func MatchLanguage(accept string) string {
	c := current.Load()
	if c == nil {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.tags) {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// IsSupported reports whether lang (any case) is a UI language.
func IsSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, strings.ToLower(lang))
}

// TranslationCount returns the number of messages loaded for lang.
func TranslationCount(lang string) int {
	c := current.Load()
	if c == nil {
		return 0
	}
	return len(c.messages[lang])
}
