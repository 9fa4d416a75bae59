// Package testsupport provides recording collaborators and fixture helpers
// shared by the package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsession/pkg/model"
)

// UserForm returns the form used across controller tests: an identifier, a
// required name, an optional age and a remote team selector.
func UserForm() model.FormModel {
	return model.FormModel{
		Name:   "user",
		Entity: "User",
		Title:  "User",
		Fields: []model.Field{
			{Name: model.DefaultIDField, Type: model.FieldTypeInteger, ReadOnly: true},
			{
				Name:     "name",
				Type:     model.FieldTypeString,
				Required: true,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "40"}},
				},
			},
			{
				Name: "age",
				Type: model.FieldTypeInteger,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}},
				},
			},
			{
				Name:   "team",
				Type:   model.FieldTypeInteger,
				Kind:   model.KindRemoteSelect,
				Remote: &model.OptionsConfig{Entity: "Team", LabelField: "Name"},
			},
		},
	}
}

// MustLoadFormModel loads a YAML or JSON fixture into a FormModel.
func MustLoadFormModel(t *testing.T, path string) model.FormModel {
	t.Helper()

	form, err := LoadFormModel(path)
	if err != nil {
		t.Fatalf("load form model: %v", err)
	}
	return form
}

// LoadFormModel reads a YAML or JSON fixture into a FormModel, returning an
// error for callers managing setup outside of *testing.T.
func LoadFormModel(path string) (model.FormModel, error) {
	if path == "" {
		return model.FormModel{}, errors.New("testsupport: form model path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("testsupport: read form model: %w", err)
	}
	var out model.FormModel
	if err := yaml.Unmarshal(data, &out); err != nil {
		return model.FormModel{}, fmt.Errorf("testsupport: unmarshal form model: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as YAML to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := yaml.Marshal(value)
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
