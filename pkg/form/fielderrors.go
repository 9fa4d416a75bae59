package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formsession/pkg/model"
)

// FieldErrors splits a server error payload into messages per form field and
// messages for the form as a whole.
type FieldErrors struct {
	Fields map[string][]string
	Form   []string
}

// MapFieldErrors normalizes server error paths (dotted, bracketed or JSON
// pointer) onto the field names of def. Paths that match no field become
// form-level messages so nothing is lost.
func MapFieldErrors(def model.FormModel, payload map[string][]string) FieldErrors {
	var out FieldErrors
	if len(payload) == 0 {
		return out
	}

	names := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			names[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		field := matchField(rawPath, names)
		if field == "" {
			out.Form = append(out.Form, messages...)
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string][]string)
		}
		out.Fields[field] = normalizeMessages(append(out.Fields[field], messages...))
	}
	out.Form = normalizeMessages(out.Form)
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// matchField returns the field named by the head of path, trying the path
// as given and then without wrapper segments and array indexes.
func matchField(path string, names map[string]struct{}) string {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "", "_", "form", "_form", "$", "#", "/":
		return ""
	}
	segments := parsePathSegments(path)
	for _, candidate := range [][]string{segments, stripNumericSegments(dropWrapperSegments(segments))} {
		if len(candidate) == 0 {
			continue
		}
		if _, ok := names[candidate[0]]; ok {
			return candidate[0]
		}
	}
	return ""
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 1 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data", "values", "attributes":
			segments = segments[1:]
			continue
		}
		break
	}
	return segments
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}
