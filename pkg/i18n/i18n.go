// Package i18n resolves the user-facing messages of a form session. A
// Localizer looks a key up in a Translator for the active locale, falls back
// to its defaults and finally to the key itself.
package i18n

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("i18n: translator is not configured")

// ErrMissingTranslation is returned by translators that do not know a key.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// Translator resolves a key for a locale. Args carry template parameters.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// MissingTranslationHandler decides the string returned when a translation
// is missing. fallback is the default message, possibly empty.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_ string, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Localizer binds a translator to a locale.
type Localizer struct {
	Translator Translator
	Locale     string
	Defaults   map[string]string
	OnMissing  MissingTranslationHandler
}

// NewLocalizer returns a Localizer seeded with the built-in defaults.
func NewLocalizer(t Translator, locale string) *Localizer {
	return &Localizer{
		Translator: t,
		Locale:     strings.TrimSpace(locale),
		Defaults:   Defaults(),
	}
}

// Localize resolves key. Args are forwarded to the translator and used to
// render default messages that contain template placeholders.
func (l *Localizer) Localize(key string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if l == nil {
		return missingTranslationDefault("", key, Defaults()[key], ErrMissingTranslator)
	}

	onMissing := l.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	fallback := l.Defaults[key]
	if fallback != "" && len(args) > 0 {
		if rendered, err := Render(fallback, args...); err == nil {
			fallback = rendered
		}
	}

	if l.Translator == nil {
		return onMissing(l.Locale, key, fallback, ErrMissingTranslator)
	}

	msg, err := l.Translator.Translate(l.Locale, key, args...)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	if err == nil {
		err = ErrMissingTranslation
	}
	return onMissing(l.Locale, key, fallback, err)
}
