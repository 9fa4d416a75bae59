package i18n_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formsession/pkg/i18n"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizer_FallsBackToDefaults(t *testing.T) {
	l := i18n.NewLocalizer(stubTranslator{i18n.KeyRecordSaved: "Gespeichert"}, "de")

	if got := l.Localize(i18n.KeyRecordSaved); got != "Gespeichert" {
		t.Fatalf("expected translated message, got %q", got)
	}
	if got := l.Localize(i18n.KeyFormNotChanged); got != "No changes to save" {
		t.Fatalf("expected default message, got %q", got)
	}
	if got := l.Localize("custom.key"); got != "custom.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestLocalizer_NilTranslatorUsesDefaults(t *testing.T) {
	var l *i18n.Localizer
	if got := l.Localize(i18n.KeyAlertTitle); got != "Information" {
		t.Fatalf("nil localizer should use defaults, got %q", got)
	}

	l = i18n.NewLocalizer(nil, "en")
	if got := l.Localize(i18n.KeyRecordDeleted); got != "Record successfully deleted" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalizer_OnMissing(t *testing.T) {
	var seen error
	l := i18n.NewLocalizer(stubTranslator{}, "fr")
	l.OnMissing = func(locale, key, fallback string, err error) string {
		seen = err
		return "[" + locale + ":" + key + "]"
	}
	if got := l.Localize(i18n.KeyInvalidForm); got != "[fr:invalidForm]" {
		t.Fatalf("got %q", got)
	}
	if seen == nil {
		t.Fatalf("expected OnMissing to receive the translator error")
	}
}

func TestCatalog_LoadFSAndLocaleChain(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/de.yaml":   {Data: []byte("messages:\n  recordSaved: Datensatz gespeichert\n  recordDeleted: \"Datensatz {{ id }} gelöscht\"\n")},
		"locales/en.json":   {Data: []byte(`{"locale":"en","messages":{"recordSaved":"Saved!","alertTitle":"Notice"}}`)},
		"locales/README.md": {Data: []byte("ignored")},
	}
	catalog, err := i18n.LoadCatalogFS(fsys, "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	msg, err := catalog.Translate("de-AT", i18n.KeyRecordSaved)
	if err != nil || msg != "Datensatz gespeichert" {
		t.Fatalf("de-AT recordSaved = %q, %v", msg, err)
	}

	msg, err = catalog.Translate("de", i18n.KeyRecordDeleted, map[string]any{"id": 42})
	if err != nil || msg != "Datensatz 42 gelöscht" {
		t.Fatalf("templated message = %q, %v", msg, err)
	}

	msg, err = catalog.Translate("de", i18n.KeyAlertTitle)
	if err != nil || msg != "Notice" {
		t.Fatalf("fallback locale lookup = %q, %v", msg, err)
	}

	if _, err := catalog.Translate("de", "nope"); !errors.Is(err, i18n.ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
}

func TestCatalog_EmptyFileFails(t *testing.T) {
	_, err := i18n.LoadCatalogFS(fstest.MapFS{"es.yaml": {Data: []byte("  ")}}, "")
	if err == nil {
		t.Fatalf("expected empty file error")
	}
}

func TestRender_PlainTextPassthrough(t *testing.T) {
	got, err := i18n.Render("No placeholders here", map[string]any{"id": 1})
	if err != nil || got != "No placeholders here" {
		t.Fatalf("Render = %q, %v", got, err)
	}
	got, err = i18n.Render("Record {{ arg0 }}", 9)
	if err != nil || got != "Record 9" {
		t.Fatalf("positional Render = %q, %v", got, err)
	}
}
