package options

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/model"
)

// Cache memoizes successful loads of keyed sources. Failed loads are not
// cached so the next call retries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]Option
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]Option)}
}

// Load returns the cached list for src or loads it. Sources that do not
// implement Keyed are always loaded.
func (c *Cache) Load(ctx context.Context, src Source) ([]Option, error) {
	keyed, ok := src.(Keyed)
	if !ok {
		return src.Load(ctx)
	}
	key := keyed.Key()

	c.mu.RLock()
	opts, hit := c.entries[key]
	c.mu.RUnlock()
	if hit {
		return Static(opts).Load(ctx)
	}

	opts, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = opts
	c.mu.Unlock()
	return Static(opts).Load(ctx)
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string][]Option)
	c.mu.Unlock()
}

// Len reports the number of cached lists.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type cachedSource struct {
	cache *Cache
	src   Source
}

func (s cachedSource) Load(ctx context.Context) ([]Option, error) {
	return s.cache.Load(ctx, s.src)
}

// DefaultResolver builds HTTP sources for fields with a URL and CRUD sources
// for fields naming an entity. Static options of a plain select are served
// as-is.
type DefaultResolver struct {
	Transport  crud.Transport
	HTTPClient *http.Client
	Cache      *Cache
	Logger     *zap.Logger
}

var _ Resolver = (*DefaultResolver)(nil)

// Resolve returns the source of field.
func (r *DefaultResolver) Resolve(field model.Field) (Source, error) {
	var src Source
	switch {
	case field.Remote != nil && strings.TrimSpace(field.Remote.URL) != "":
		src = NewHTTPSource(*field.Remote, WithHTTPClient(r.HTTPClient), WithLogger(r.Logger))
	case field.Remote != nil && strings.TrimSpace(field.Remote.Entity) != "" && r.Transport != nil:
		src = NewCRUDSource(r.Transport, *field.Remote)
	case len(field.Options) > 0:
		return Static(field.Options), nil
	default:
		return nil, ErrNoSource
	}
	if r.Cache != nil {
		return cachedSource{cache: r.Cache, src: src}, nil
	}
	return src, nil
}
