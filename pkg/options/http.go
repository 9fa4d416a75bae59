package options

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/model"
)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if logger != nil {
			s.log = logger
		}
	}
}

// HTTPSource fetches options from a JSON endpoint. GET requests send the
// params as query string; other methods send them as a JSON body.
type HTTPSource struct {
	cfg    model.OptionsConfig
	client *http.Client
	log    *zap.Logger
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Keyed  = (*HTTPSource)(nil)
)

// NewHTTPSource constructs a source for cfg. cfg.URL must be set.
func NewHTTPSource(cfg model.OptionsConfig, options ...HTTPOption) *HTTPSource {
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	s := &HTTPSource{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Key identifies the request for caching.
func (s *HTTPSource) Key() string {
	return cacheKey("http", s.cfg)
}

// Load performs the request and maps the results.
func (s *HTTPSource) Load(ctx context.Context) ([]Option, error) {
	if strings.TrimSpace(s.cfg.URL) == "" {
		return nil, ErrNoSource
	}
	reqURL, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("options: parse url: %w", err)
	}

	var body io.Reader
	if s.cfg.Method == http.MethodGet {
		q := reqURL.Query()
		for k, v := range s.cfg.Params {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	} else if len(s.cfg.Params) > 0 {
		encoded, err := crud.Codec.Marshal(s.cfg.Params)
		if err != nil {
			return nil, fmt.Errorf("options: encode params: %w", err)
		}
		body = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, s.cfg.Method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("options: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("options: unexpected status %d from %s", resp.StatusCode, s.cfg.URL)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("options: read response: %w", err)
	}
	var payload any
	if err := crud.Codec.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("options: decode: %w", err)
	}

	opts := mapOptions(extractResults(payload, s.cfg.Results), s.cfg, "value")
	s.log.Debug("options loaded",
		zap.String("url", s.cfg.URL),
		zap.Int("count", len(opts)))
	return opts, nil
}
