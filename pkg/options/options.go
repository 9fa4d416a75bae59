// Package options loads the choice lists of remote-select fields. Sources
// fetch options from a JSON endpoint or through a CRUD list request; a Cache
// memoizes loads so a form only fetches each list once.
package options

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formsession/pkg/model"
)

// Option is a single selectable value.
type Option = model.Option

// ErrNoSource is returned when a field carries no usable remote configuration.
var ErrNoSource = errors.New("options: field has no option source")

// Source loads an option list.
type Source interface {
	Load(ctx context.Context) ([]Option, error)
}

// Keyed is implemented by sources that can be cached. Equal keys must denote
// equal results.
type Keyed interface {
	Key() string
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Option, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) ([]Option, error) {
	return f(ctx)
}

// Static is a fixed option list.
type Static []Option

// Load returns a copy of the list.
func (s Static) Load(context.Context) ([]Option, error) {
	out := make([]Option, len(s))
	copy(out, s)
	return out, nil
}

// Resolver picks the option source of a field.
type Resolver interface {
	Resolve(field model.Field) (Source, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(field model.Field) (Source, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(field model.Field) (Source, error) {
	return f(field)
}

// Selected returns the first option flagged as selected.
func Selected(opts []Option) (Option, bool) {
	for _, opt := range opts {
		if opt.Selected {
			return opt, true
		}
	}
	return Option{}, false
}

func cacheKey(kind string, cfg model.OptionsConfig) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteString(" ")
	b.WriteString(strings.ToUpper(cfg.Method))
	b.WriteString(" ")
	b.WriteString(cfg.URL)
	b.WriteString(cfg.Entity)
	if len(cfg.Params) > 0 {
		keys := make([]string, 0, len(cfg.Params))
		for k := range cfg.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(";")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(cfg.Params[k])
		}
	}
	fmt.Fprintf(&b, "|%s|%s|%s|%s", cfg.Results, cfg.LabelField, cfg.ValueField, cfg.SelectedField)
	return b.String()
}

func extractResults(payload any, path string) []any {
	if payload == nil {
		return nil
	}
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			switch node := cur.(type) {
			case map[string]any:
				cur = node[segment]
			default:
				return nil
			}
		}
	}
	switch v := cur.(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	default:
		return nil
	}
}

func pickValue(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := any(m)
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y":
			return true
		}
		return false
	case nil:
		return false
	default:
		return fmt.Sprint(t) != "0"
	}
}

// mapOptions converts decoded records to options. Records without a value are
// skipped; a missing label falls back to the value.
func mapOptions(items []any, cfg model.OptionsConfig, defaultValueField string) []Option {
	valueField := strings.TrimSpace(cfg.ValueField)
	if valueField == "" {
		valueField = defaultValueField
	}
	labelField := strings.TrimSpace(cfg.LabelField)

	opts := make([]Option, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		val, ok := pickValue(obj, valueField)
		if !ok || fmt.Sprint(val) == "" {
			continue
		}
		label := ""
		if raw, ok := pickValue(obj, labelField); ok {
			label = fmt.Sprint(raw)
		}
		if label == "" {
			label = fmt.Sprint(val)
		}
		opt := Option{Label: label, Value: val}
		if raw, ok := pickValue(obj, cfg.SelectedField); ok {
			opt.Selected = truthy(raw)
		}
		opts = append(opts, opt)
	}
	return opts
}
