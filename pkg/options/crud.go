package options

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/model"
)

// CRUDSource lists the records of an entity through a crud.Transport. Params
// become the where clause of the list request; the value field defaults to
// the record identifier.
type CRUDSource struct {
	cfg       model.OptionsConfig
	transport crud.Transport
}

var (
	_ Source = (*CRUDSource)(nil)
	_ Keyed  = (*CRUDSource)(nil)
)

// NewCRUDSource constructs a source for cfg. cfg.Entity must be set.
func NewCRUDSource(transport crud.Transport, cfg model.OptionsConfig) *CRUDSource {
	return &CRUDSource{cfg: cfg, transport: transport}
}

// Key identifies the request for caching.
func (s *CRUDSource) Key() string {
	return cacheKey("crud", s.cfg)
}

// Load issues the list request and maps the returned records.
func (s *CRUDSource) Load(ctx context.Context) ([]Option, error) {
	if s.transport == nil || strings.TrimSpace(s.cfg.Entity) == "" {
		return nil, ErrNoSource
	}
	var where map[string]any
	if len(s.cfg.Params) > 0 {
		where = make(map[string]any, len(s.cfg.Params))
		for k, v := range s.cfg.Params {
			where[k] = v
		}
	}
	resp, err := s.transport.Do(ctx, crud.List(s.cfg.Entity, where))
	if err != nil {
		return nil, fmt.Errorf("options: list %s: %w", s.cfg.Entity, err)
	}
	return mapOptions(extractResults(resp.Data, s.cfg.Results), s.cfg, crud.IDKey), nil
}
