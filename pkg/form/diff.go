package form

import (
	"fmt"
	"reflect"
	"sort"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/goliatone/go-formsession/pkg/crud"
)

// changedFields returns the names of the top-level fields whose JSON encoding
// differs between original and current, sorted. The comparison goes through a
// JSON merge patch so numerically equal values of different Go types compare
// equal.
func changedFields(original, current map[string]any) ([]string, error) {
	origJSON, err := crud.Codec.Marshal(normalizeMap(original))
	if err != nil {
		return nil, fmt.Errorf("form: encode original values: %w", err)
	}
	curJSON, err := crud.Codec.Marshal(normalizeMap(current))
	if err != nil {
		return nil, fmt.Errorf("form: encode current values: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(origJSON, curJSON)
	if err != nil {
		return nil, fmt.Errorf("form: diff values: %w", err)
	}
	var changed map[string]any
	if err := crud.Codec.Unmarshal(patch, &changed); err != nil {
		return nil, fmt.Errorf("form: decode diff: %w", err)
	}
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// changedFieldsStrict falls back to reflect.DeepEqual for values the codec
// cannot encode.
func changedFieldsStrict(original, current map[string]any) []string {
	seen := make(map[string]struct{}, len(current))
	var names []string
	for name, v := range current {
		seen[name] = struct{}{}
		if o, ok := original[name]; !ok || !reflect.DeepEqual(o, v) {
			names = append(names, name)
		}
	}
	for name := range original {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// normalizeMap makes sure nil maps encode as {} so a missing snapshot diffs
// against an empty object instead of null.
func normalizeMap(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return values
}
