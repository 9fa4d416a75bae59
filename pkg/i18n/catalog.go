package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is an in-memory Translator keyed by locale then message key.
// Lookups for a regional locale fall back to its base language and then to
// the catalog's fallback locale.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
	fallback string
}

var _ Translator = (*Catalog)(nil)

// NewCatalog returns an empty catalog. fallback may be empty.
func NewCatalog(fallback string) *Catalog {
	return &Catalog{
		messages: make(map[string]map[string]string),
		fallback: normalizeLocale(fallback),
	}
}

// Add registers messages for a locale, overriding existing keys.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normalizeLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.messages[locale]
	if !ok {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for key, msg := range messages {
		if k := strings.TrimSpace(key); k != "" {
			bucket[k] = msg
		}
	}
}

// Locales lists the registered locales.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

// Translate implements Translator.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	c.mu.RLock()
	msg, ok := c.lookup(normalizeLocale(locale), key)
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
	}
	return Render(msg, args...)
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	for _, candidate := range localeChain(locale, c.fallback) {
		if msg, ok := c.messages[candidate][key]; ok {
			return msg, true
		}
	}
	return "", false
}

func localeChain(locale, fallback string) []string {
	var chain []string
	if locale != "" {
		chain = append(chain, locale)
		if base, _, found := strings.Cut(locale, "-"); found {
			chain = append(chain, base)
		}
	}
	if fallback != "" && fallback != locale {
		chain = append(chain, fallback)
	}
	return chain
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

type catalogFile struct {
	Locale   string            `json:"locale" yaml:"locale"`
	Messages map[string]string `json:"messages" yaml:"messages"`
}

// LoadCatalogFS walks fsys and loads every JSON/YAML locale file; JSON is
// parsed as YAML. A file declares its locale with a top-level `locale` key or
// through its base name (for example `de.yaml`).
func LoadCatalogFS(fsys fs.FS, fallback string) (*Catalog, error) {
	catalog := NewCatalog(fallback)
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", p, err)
		}
		doc, err := parseCatalog(data, p)
		if err != nil {
			return err
		}
		locale := strings.TrimSpace(doc.Locale)
		if locale == "" {
			locale = strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		catalog.Add(locale, doc.Messages)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func parseCatalog(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, fmt.Errorf("i18n: file %s is empty", source)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("i18n: parse %s: %w", source, err)
	}
	return doc, nil
}

func isCatalogFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
