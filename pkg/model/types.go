package model

import "strings"

// DefaultIDField is the identifier field name used when a form does not
// declare one.
const DefaultIDField = "Id"

// FieldType is the simplified enum for form-friendly value types.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// FieldKind describes how a field collects its value.
type FieldKind string

const (
	KindInput        FieldKind = "input"
	KindSelect       FieldKind = "select"
	KindRemoteSelect FieldKind = "remote-select"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds and length limits encode their threshold in Params["value"]
// while pattern rules keep the expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Option is a static choice for select fields.
type Option struct {
	Label    string `json:"label" yaml:"label"`
	Value    any    `json:"value" yaml:"value"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// OptionsConfig locates the remote option list of a KindRemoteSelect field.
// Either URL (a JSON endpoint) or Entity (a CRUD list request) must be set.
type OptionsConfig struct {
	URL           string            `json:"url,omitempty" yaml:"url,omitempty"`
	Method        string            `json:"method,omitempty" yaml:"method,omitempty"`
	Entity        string            `json:"entity,omitempty" yaml:"entity,omitempty"`
	Results       string            `json:"results,omitempty" yaml:"results,omitempty"`
	LabelField    string            `json:"labelField,omitempty" yaml:"labelField,omitempty"`
	ValueField    string            `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	SelectedField string            `json:"selectedField,omitempty" yaml:"selectedField,omitempty"`
	Params        map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Field models an individual input inside a form.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type        FieldType         `json:"type,omitempty" yaml:"type,omitempty"`
	Kind        FieldKind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly    bool              `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Remote      *OptionsConfig    `json:"remote,omitempty" yaml:"remote,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasRemoteOptions reports whether the field is backed by a remote option list.
func (f Field) HasRemoteOptions() bool {
	return f.Kind == KindRemoteSelect && f.Remote != nil
}

// DisplayLabel returns the label, falling back to a label derived from the name.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return DefaultLabeler(f.Name)
}

// FormModel is the top-level definition of an entity form.
type FormModel struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Entity   string            `json:"entity" yaml:"entity"`
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	IDField  string            `json:"idField,omitempty" yaml:"idField,omitempty"`
	Fields   []Field           `json:"fields" yaml:"fields"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Identifier returns the identifier field name.
func (m FormModel) Identifier() string {
	if id := strings.TrimSpace(m.IDField); id != "" {
		return id
	}
	return DefaultIDField
}

// Field looks up a field by name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in order.
func (m FormModel) FieldNames() []string {
	out := make([]string, 0, len(m.Fields))
	for _, field := range m.Fields {
		out = append(out, field.Name)
	}
	return out
}
