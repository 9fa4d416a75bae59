package crud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Transport delivers an ActionRequest to a backend.
type Transport interface {
	Do(ctx context.Context, req ActionRequest) (Response, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, req ActionRequest) (Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req ActionRequest) (Response, error) {
	return f(ctx, req)
}

// RemoteError is a failure reported by the backend.
type RemoteError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("crud: remote error (status %d)", e.Status)
	}
	return "crud: remote error"
}

// DefaultEndpoint is the path the HTTP transport posts to.
const DefaultEndpoint = "api/v1"

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithEndpoint overrides the endpoint path relative to the base URL.
func WithEndpoint(path string) HTTPOption {
	return func(t *HTTPTransport) {
		if trimmed := strings.Trim(strings.TrimSpace(path), "/"); trimmed != "" {
			t.endpoint = trimmed
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) HTTPOption {
	return func(t *HTTPTransport) {
		if strings.TrimSpace(name) != "" {
			t.headers.Set(name, value)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.log = logger
		}
	}
}

// HTTPTransport posts JSON requests to a single endpoint.
type HTTPTransport struct {
	baseURL  string
	endpoint string
	client   *http.Client
	headers  http.Header
	log      *zap.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport constructs a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, options ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  make(http.Header),
		log:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// URL returns the endpoint URL.
func (t *HTTPTransport) URL() string {
	return t.baseURL + "/" + t.endpoint
}

// Do validates, encodes and posts the request.
func (t *HTTPTransport) Do(ctx context.Context, req ActionRequest) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	body, err := Codec.Marshal(Envelope{Params: req})
	if err != nil {
		return Response{}, fmt.Errorf("crud: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("crud: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for name, values := range t.headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.log.Warn("crud request failed",
			zap.String("entity", req.Entity),
			zap.String("action", string(req.Action)),
			zap.Error(err))
		return Response{}, fmt.Errorf("crud: do request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("crud: read response: %w", err)
	}

	t.log.Debug("crud request",
		zap.String("entity", req.Entity),
		zap.String("action", string(req.Action)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	var out Response
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := Codec.Unmarshal(payload, &out); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return Response{}, fmt.Errorf("crud: decode response: %w", err)
			}
			return Response{}, &RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		return out, &RemoteError{Status: resp.StatusCode, Message: out.Msg, Fields: out.Errors}
	}
	return out, nil
}

// MessageOf returns the message reported by the backend, or "" when err did
// not come from the backend.
func MessageOf(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return strings.TrimSpace(remote.Message)
	}
	return ""
}

// FieldErrorsOf returns the field errors attached to a remote failure.
func FieldErrorsOf(err error) map[string][]string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Fields
	}
	return nil
}
