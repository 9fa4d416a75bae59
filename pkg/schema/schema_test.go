package schema_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/schema"
	"github.com/goliatone/go-formsession/pkg/testsupport"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "users.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestFromOpenAPI_User(t *testing.T) {
	form, err := schema.FromOpenAPI(context.Background(), loadFixture(t), "User")
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	if form.Entity != "User" || form.Title != "User" {
		t.Fatalf("unexpected header %+v", form)
	}
	if got := form.Identifier(); got != "id" {
		t.Fatalf("expected id identifier, got %q", got)
	}
	if diff := cmp.Diff([]string{"id", "age", "email", "name", "role", "team"}, form.FieldNames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	name, _ := form.Field("name")
	wantName := model.Field{
		Name:     "name",
		Label:    "Full name",
		Type:     model.FieldTypeString,
		Kind:     model.KindInput,
		Required: true,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "2"}},
			{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "40"}},
		},
	}
	if diff := cmp.Diff(wantName, name); diff != "" {
		t.Fatalf("name field mismatch (-want +got):\n%s", diff)
	}

	age, _ := form.Field("age")
	wantAge := []model.ValidationRule{
		{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}},
		{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "130"}},
	}
	if diff := cmp.Diff(wantAge, age.Validations); diff != "" {
		t.Fatalf("age rules mismatch (-want +got):\n%s", diff)
	}
	if age.Type != model.FieldTypeInteger || age.Required {
		t.Fatalf("unexpected age field %+v", age)
	}

	role, _ := form.Field("role")
	wantRole := []model.Option{
		{Label: "admin", Value: "admin"},
		{Label: "editor", Value: "editor", Selected: true},
	}
	if role.Kind != model.KindSelect {
		t.Fatalf("expected select kind, got %q", role.Kind)
	}
	if diff := cmp.Diff(wantRole, role.Options); diff != "" {
		t.Fatalf("role options mismatch (-want +got):\n%s", diff)
	}

	team, _ := form.Field("team")
	wantRemote := &model.OptionsConfig{Entity: "Team", LabelField: "Name", Params: map[string]string{"active": "true"}}
	if team.Kind != model.KindRemoteSelect {
		t.Fatalf("expected remote-select, got %q", team.Kind)
	}
	if diff := cmp.Diff(wantRemote, team.Remote); diff != "" {
		t.Fatalf("remote config mismatch (-want +got):\n%s", diff)
	}

	email, _ := form.Field("email")
	if len(email.Validations) != 1 || email.Validations[0].Params["pattern"] != "^[^@]+@[^@]+$" {
		t.Fatalf("pattern not mapped: %#v", email.Validations)
	}

	id, _ := form.Field("id")
	if !id.ReadOnly {
		t.Fatalf("expected read-only id")
	}
	if _, err := model.CompileRules(email); err != nil {
		t.Fatalf("derived rules must compile: %v", err)
	}
}

func TestFromOpenAPI_IdentifierExtensionAndEntity(t *testing.T) {
	form, err := schema.FromOpenAPI(context.Background(), loadFixture(t), "Person")
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}
	if form.Entity != "people" || form.Identifier() != "uuid" {
		t.Fatalf("unexpected form %+v", form)
	}

	nick, _ := form.Field("nickname")
	if nick.Label != "Nick" {
		t.Fatalf("nickname label = %q, want Nick", nick.Label)
	}
	wantMeta := map[string]string{"label": "Nick", "widget": "short", "help": "Shown in lists"}
	if diff := cmp.Diff(wantMeta, nick.Metadata); diff != "" {
		t.Fatalf("nickname metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestFromOpenAPI_PersonGolden(t *testing.T) {
	form, err := schema.FromOpenAPI(testsupport.Context(), loadFixture(t), "Person")
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	golden := filepath.Join("testdata", "person.golden.yaml")
	testsupport.WriteGolden(t, golden, form)
	want := testsupport.MustLoadFormModel(t, golden)
	if diff := testsupport.CompareGolden(want, form); diff != "" {
		t.Fatalf("golden mismatch (-want +got):\n%s", diff)
	}
}

func TestFromOpenAPI_Errors(t *testing.T) {
	data := loadFixture(t)
	if _, err := schema.FromOpenAPI(context.Background(), data, "Missing"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if _, err := schema.FromOpenAPI(context.Background(), data, "Tags"); err == nil || !strings.Contains(err.Error(), "not an object") {
		t.Fatalf("expected non-object error, got %v", err)
	}
	if _, err := schema.FromOpenAPI(context.Background(), data, "Broken"); err == nil || !strings.Contains(err.Error(), "x-options") {
		t.Fatalf("expected x-options error, got %v", err)
	}
	if _, err := schema.FromOpenAPI(context.Background(), nil, "User"); !errors.Is(err, schema.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := schema.FromOpenAPI(ctx, data, "User"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
