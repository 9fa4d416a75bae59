package options

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/model"
)

func TestHTTPSource_GetWithParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"items":[
			{"id":1,"attributes":{"name":"Alpha"},"default":true},
			{"id":2,"attributes":{"name":"Beta"}},
			{"attributes":{"name":"no id"}},
			"not an object"
		]}}`)
	}))
	defer srv.Close()

	src := NewHTTPSource(model.OptionsConfig{
		URL:           srv.URL + "/authors",
		Results:       "data.items",
		LabelField:    "attributes.name",
		ValueField:    "id",
		SelectedField: "default",
		Params:        map[string]string{"status": "active"},
	}, WithHTTPClient(srv.Client()))

	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []Option{
		{Label: "Alpha", Value: int64(1), Selected: true},
		{Label: "Beta", Value: int64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if gotQuery != "status=active" {
		t.Fatalf("expected params in query, got %q", gotQuery)
	}
}

func TestHTTPSource_PostSendsJSONBody(t *testing.T) {
	var gotBody, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = io.WriteString(w, `[{"value":"x","label":"X"}]`)
	}))
	defer srv.Close()

	src := NewHTTPSource(model.OptionsConfig{
		URL:        srv.URL,
		Method:     "post",
		LabelField: "label",
		Params:     map[string]string{"q": "x"},
	})
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotBody != `{"q":"x"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
	if diff := cmp.Diff([]Option{{Label: "X", Value: "x"}}, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(model.OptionsConfig{URL: srv.URL}).Load(context.Background())
	if err == nil {
		t.Fatalf("expected status error")
	}
}

func TestCRUDSource_ListsEntity(t *testing.T) {
	var got crud.ActionRequest
	transport := crud.TransportFunc(func(_ context.Context, req crud.ActionRequest) (crud.Response, error) {
		got = req
		return crud.Response{Success: true, Data: []any{
			map[string]any{"Id": int64(7), "Name": "Ops"},
			map[string]any{"Id": int64(9)},
		}}, nil
	})

	src := NewCRUDSource(transport, model.OptionsConfig{
		Entity:     "Team",
		LabelField: "Name",
		Params:     map[string]string{"active": "1"},
	})
	opts, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	wantReq := crud.List("Team", map[string]any{"active": "1"})
	if diff := cmp.Diff(wantReq, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	wantOpts := []Option{{Label: "Ops", Value: int64(7)}, {Label: "9", Value: int64(9)}}
	if diff := cmp.Diff(wantOpts, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestCRUDSource_WrapsTransportError(t *testing.T) {
	boom := errors.New("offline")
	src := NewCRUDSource(crud.TransportFunc(func(context.Context, crud.ActionRequest) (crud.Response, error) {
		return crud.Response{}, boom
	}), model.OptionsConfig{Entity: "Team"})

	if _, err := src.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

type countingSource struct {
	calls atomic.Int32
	fail  bool
}

func (s *countingSource) Key() string { return "counting" }

func (s *countingSource) Load(context.Context) ([]Option, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errors.New("fail")
	}
	return []Option{{Label: "A", Value: "a"}}, nil
}

func TestCache_MemoizesKeyedSources(t *testing.T) {
	cache := NewCache()
	src := &countingSource{}

	for i := 0; i < 3; i++ {
		opts, err := cache.Load(context.Background(), src)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		opts[0].Label = "mutated"
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected one underlying load, got %d", got)
	}
	opts, _ := cache.Load(context.Background(), src)
	if opts[0].Label != "A" {
		t.Fatalf("cached entry was mutated: %q", opts[0].Label)
	}

	cache.Invalidate()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after invalidate")
	}
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	cache := NewCache()
	src := &countingSource{fail: true}
	for i := 0; i < 2; i++ {
		if _, err := cache.Load(context.Background(), src); err == nil {
			t.Fatalf("expected failure")
		}
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected two attempts, got %d", got)
	}
}

func TestDefaultResolver(t *testing.T) {
	transport := crud.TransportFunc(func(context.Context, crud.ActionRequest) (crud.Response, error) {
		return crud.Response{Success: true}, nil
	})
	r := &DefaultResolver{Transport: transport}

	if src, err := r.Resolve(model.Field{Kind: model.KindRemoteSelect, Remote: &model.OptionsConfig{URL: "http://x"}}); err != nil {
		t.Fatalf("resolve http: %v", err)
	} else if _, ok := src.(*HTTPSource); !ok {
		t.Fatalf("expected HTTPSource, got %T", src)
	}
	if src, err := r.Resolve(model.Field{Kind: model.KindRemoteSelect, Remote: &model.OptionsConfig{Entity: "Team"}}); err != nil {
		t.Fatalf("resolve crud: %v", err)
	} else if _, ok := src.(*CRUDSource); !ok {
		t.Fatalf("expected CRUDSource, got %T", src)
	}
	if _, err := r.Resolve(model.Field{Kind: model.KindRemoteSelect}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}

	static := []Option{{Label: "One", Value: 1}}
	src, err := r.Resolve(model.Field{Kind: model.KindSelect, Options: static})
	if err != nil {
		t.Fatalf("resolve static: %v", err)
	}
	got, _ := src.Load(context.Background())
	if diff := cmp.Diff(static, got); diff != "" {
		t.Fatalf("static mismatch (-want +got):\n%s", diff)
	}
}

func TestSelected(t *testing.T) {
	opt, ok := Selected([]Option{{Value: 1}, {Value: 2, Selected: true}})
	if !ok || opt.Value != 2 {
		t.Fatalf("expected second option, got %+v (%v)", opt, ok)
	}
	if _, ok := Selected(nil); ok {
		t.Fatalf("expected no selection")
	}
}
