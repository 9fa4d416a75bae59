package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-formsession/pkg/model"
)

// SourceKind tells Read how to fetch a document.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// ErrNoFS is returned when an fs source is read without WithFS.
var ErrNoFS = errors.New("schema: fs source requires WithFS")

// Source locates an OpenAPI document on disk, inside an fs.FS or behind a URL.
type Source struct {
	Kind     SourceKind
	Location string
}

// FileSource points at a document on disk.
func FileSource(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// FSSource points at a document inside the fs.FS passed with WithFS.
func FSSource(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// URLSource points at a document served over HTTP(S).
func URLSource(raw string) (Source, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Source{}, fmt.Errorf("schema: invalid document URL %q", raw)
	}
	return Source{Kind: SourceKindURL, Location: u.String()}, nil
}

// ParseSource treats http(s) locations as URLs and anything else as a file.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, errors.New("schema: empty document location")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return URLSource(raw)
	}
	return FileSource(raw), nil
}

// ReadOption configures Read.
type ReadOption func(*readConfig)

type readConfig struct {
	fsys   fs.FS
	client *http.Client
}

// WithFS sets the filesystem fs sources are read from.
func WithFS(fsys fs.FS) ReadOption {
	return func(cfg *readConfig) {
		cfg.fsys = fsys
	}
}

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(client *http.Client) ReadOption {
	return func(cfg *readConfig) {
		if client != nil {
			cfg.client = client
		}
	}
}

// Read fetches the raw document behind src.
func Read(ctx context.Context, src Source, opts ...ReadOption) ([]byte, error) {
	cfg := readConfig{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	switch src.Kind {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindFS:
		if cfg.fsys == nil {
			return nil, ErrNoFS
		}
		data, err := fs.ReadFile(cfg.fsys, src.Location)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindURL:
		return fetch(ctx, cfg.client, src.Location)
	}
	return nil, fmt.Errorf("schema: unknown source kind %q", src.Kind)
}

// Load reads src and builds the form of component.
func Load(ctx context.Context, src Source, component string, opts ...ReadOption) (model.FormModel, error) {
	data, err := Read(ctx, src, opts...)
	if err != nil {
		return model.FormModel{}, err
	}
	return FromOpenAPI(ctx, data, component)
}

func fetch(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schema: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("schema: fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", location, err)
	}
	return data, nil
}
