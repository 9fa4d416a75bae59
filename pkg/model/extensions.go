package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtensionNamespace is the OpenAPI extension whose scalar values are copied
// into Field.Metadata.
const ExtensionNamespace = "x-formsession"

// MetadataFromExtensions collects the values declared under the namespace,
// either nested (`x-formsession: {widget: textarea}`) or flattened
// (`x-formsession-widget: textarea`). Flattened keys win. Non-scalar values are
// skipped. It returns nil when nothing is declared.
func MetadataFromExtensions(ext map[string]any) map[string]string {
	var out map[string]string
	set := func(key string, value any) {
		str, ok := scalarString(value)
		if !ok || strings.TrimSpace(key) == "" {
			return
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = str
	}

	if nested, ok := ext[ExtensionNamespace].(map[string]any); ok {
		for key, value := range nested {
			set(key, value)
		}
	}
	for key, value := range ext {
		if trimmed, ok := strings.CutPrefix(key, ExtensionNamespace+"-"); ok {
			set(trimmed, value)
		}
	}
	return out
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int, int64, uint64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
