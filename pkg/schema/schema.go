// Package schema derives form definitions from OpenAPI 3 component schemas.
//
// Property types map to field types, the required list marks required
// fields, enums become static selects and the x-options extension turns a
// property into a remote select. A property flagged with x-identifier, or a
// read-only property named "id" in any case, becomes the identifier field.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formsession/pkg/model"
)

const (
	optionsExtensionKey    = "x-options"
	identifierExtensionKey = "x-identifier"
	entityExtensionKey     = "x-entity"
)

var (
	// ErrEmptyDocument is returned for an empty payload.
	ErrEmptyDocument = errors.New("schema: document payload is empty")
	// ErrComponentNotFound is returned when the component is not declared.
	ErrComponentNotFound = errors.New("schema: component not found")
)

// FromOpenAPI loads an OpenAPI document and builds the form of one component
// schema.
func FromOpenAPI(ctx context.Context, data []byte, component string) (model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if len(data) == 0 {
		return model.FormModel{}, ErrEmptyDocument
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("schema: load document: %w", err)
	}
	if spec.Components == nil {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrComponentNotFound, component)
	}
	ref, ok := spec.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrComponentNotFound, component)
	}
	return FromSchema(component, ref.Value)
}

// FromSchema builds the form of an already loaded object schema.
func FromSchema(name string, src *openapi3.Schema) (model.FormModel, error) {
	if src == nil {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	if t := firstSchemaType(src.Type); t != "" && t != "object" {
		return model.FormModel{}, fmt.Errorf("schema: component %s is %s, not an object", name, t)
	}

	form := model.FormModel{
		Name:   name,
		Entity: name,
		Title:  src.Title,
	}
	if entity, ok := src.Extensions[entityExtensionKey].(string); ok && strings.TrimSpace(entity) != "" {
		form.Entity = strings.TrimSpace(entity)
	}

	required := make(map[string]struct{}, len(src.Required))
	for _, prop := range src.Required {
		required[prop] = struct{}{}
	}

	names := make([]string, 0, len(src.Properties))
	for prop := range src.Properties {
		names = append(names, prop)
	}
	sort.Strings(names)

	idField := identifierProperty(src.Properties, names)
	if idField != "" {
		form.IDField = idField
		names = moveFirst(names, idField)
	}

	for _, prop := range names {
		ref := src.Properties[prop]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, req := required[prop]
		field, err := convertProperty(prop, ref.Value, req)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("schema: %s.%s: %w", name, prop, err)
		}
		form.Fields = append(form.Fields, field)
	}
	if form.IDField == model.DefaultIDField {
		form.IDField = ""
	}
	return form, nil
}

func convertProperty(name string, src *openapi3.Schema, required bool) (model.Field, error) {
	field := model.Field{
		Name:        name,
		Label:       src.Title,
		Description: src.Description,
		Type:        fieldType(firstSchemaType(src.Type)),
		Kind:        model.KindInput,
		Required:    required,
		ReadOnly:    src.ReadOnly,
		Default:     src.Default,
		Metadata:    model.MetadataFromExtensions(src.Extensions),
	}
	if field.Label == "" {
		field.Label = field.Metadata["label"]
	}

	if len(src.Enum) > 0 {
		field.Kind = model.KindSelect
		for _, value := range src.Enum {
			field.Options = append(field.Options, model.Option{
				Label:    fmt.Sprint(value),
				Value:    value,
				Selected: src.Default != nil && fmt.Sprint(src.Default) == fmt.Sprint(value),
			})
		}
	}
	if raw, ok := src.Extensions[optionsExtensionKey]; ok {
		cfg, err := optionsConfig(raw)
		if err != nil {
			return model.Field{}, err
		}
		field.Kind = model.KindRemoteSelect
		field.Remote = cfg
	}

	if src.Min != nil {
		field.Validations = append(field.Validations, numericRule(model.ValidationRuleMin, *src.Min))
	}
	if src.Max != nil {
		field.Validations = append(field.Validations, numericRule(model.ValidationRuleMax, *src.Max))
	}
	if src.MinLength != 0 {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.FormatUint(src.MinLength, 10)},
		})
	}
	if src.MaxLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.FormatUint(*src.MaxLength, 10)},
		})
	}
	if src.Pattern != "" {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": src.Pattern},
		})
	}
	return field, nil
}

func numericRule(kind string, value float64) model.ValidationRule {
	return model.ValidationRule{
		Kind:   kind,
		Params: map[string]string{"value": strconv.FormatFloat(value, 'f', -1, 64)},
	}
}

// optionsConfig decodes the x-options extension.
func optionsConfig(raw any) (*model.OptionsConfig, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", optionsExtensionKey)
	}
	cfg := &model.OptionsConfig{
		URL:           stringOf(m["url"]),
		Method:        strings.ToUpper(stringOf(m["method"])),
		Entity:        stringOf(m["entity"]),
		Results:       stringOf(m["results"]),
		LabelField:    stringOf(m["labelField"]),
		ValueField:    stringOf(m["valueField"]),
		SelectedField: stringOf(m["selectedField"]),
	}
	if params, ok := m["params"].(map[string]any); ok && len(params) > 0 {
		cfg.Params = make(map[string]string, len(params))
		for k, v := range params {
			cfg.Params[k] = fmt.Sprint(v)
		}
	}
	if cfg.URL == "" && cfg.Entity == "" {
		return nil, fmt.Errorf("%s needs a url or an entity", optionsExtensionKey)
	}
	return cfg, nil
}

func identifierProperty(props openapi3.Schemas, names []string) string {
	for _, name := range names {
		if ref := props[name]; ref != nil && ref.Value != nil {
			if flag, ok := ref.Value.Extensions[identifierExtensionKey].(bool); ok && flag {
				return name
			}
		}
	}
	for _, name := range names {
		if ref := props[name]; ref != nil && ref.Value != nil && ref.Value.ReadOnly && strings.EqualFold(name, "id") {
			return name
		}
	}
	return ""
}

func moveFirst(names []string, first string) []string {
	out := make([]string, 0, len(names))
	out = append(out, first)
	for _, name := range names {
		if name != first {
			out = append(out, name)
		}
	}
	return out
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	for _, v := range values {
		if v != "null" {
			return v
		}
	}
	return values[0]
}

func fieldType(t string) model.FieldType {
	switch t {
	case "integer":
		return model.FieldTypeInteger
	case "number":
		return model.FieldTypeNumber
	case "boolean":
		return model.FieldTypeBoolean
	case "array":
		return model.FieldTypeArray
	case "object":
		return model.FieldTypeObject
	default:
		return model.FieldTypeString
	}
}
