package formdef_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsession/pkg/formdef"
	"github.com/goliatone/go-formsession/pkg/model"
)

func TestLoadFS_YAMLAndJSON(t *testing.T) {
	store, err := formdef.LoadFS(os.DirFS(filepath.Join("testdata", "basic")))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"team", "user"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	user, ok := store.Form("user")
	if !ok {
		t.Fatalf("user form missing")
	}
	if user.Name != "user" || user.Entity != "User" || user.Identifier() != model.DefaultIDField {
		t.Fatalf("unexpected user form header %+v", user)
	}
	kinds := map[string]model.FieldKind{}
	for _, field := range user.Fields {
		kinds[field.Name] = field.Kind
	}
	wantKinds := map[string]model.FieldKind{
		"Id":    model.KindInput,
		"name":  model.KindInput,
		"email": model.KindInput,
		"role":  model.KindSelect,
		"team":  model.KindRemoteSelect,
	}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	role, _ := user.Field("role")
	if len(role.Options) != 2 || !role.Options[1].Selected {
		t.Fatalf("role options not parsed: %#v", role.Options)
	}
	name, _ := user.Field("name")
	if name.Type != model.FieldTypeString || name.DisplayLabel() != "Full name" {
		t.Fatalf("unexpected name field %#v", name)
	}

	team, ok := store.ByEntity("Team")
	if !ok || team.Name != "team" {
		t.Fatalf("expected team form by entity, got %+v", team)
	}
	lead, _ := team.Field("lead")
	if lead.Remote == nil || lead.Remote.Results != "data" {
		t.Fatalf("remote config not parsed: %#v", lead.Remote)
	}
	if got := store.Source("team"); got != "teams.json" {
		t.Fatalf("unexpected source %q", got)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name:  "empty file",
			files: fstest.MapFS{"a.yaml": {Data: []byte("  ")}},
			want:  "is empty",
		},
		{
			name: "duplicate form",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n")},
				"b.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n")},
			},
			want: `duplicate form "user"`,
		},
		{
			name:  "missing entity",
			files: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  user:\n    title: x\n")}},
			want:  "has no entity",
		},
		{
			name:  "empty field name",
			files: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n    fields:\n      - name: ' '\n")}},
			want:  "empty name",
		},
		{
			name:  "duplicate field",
			files: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n    fields:\n      - name: a\n      - name: a\n")}},
			want:  `duplicate field "a"`,
		},
		{
			name:  "remote kind without config",
			files: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n    fields:\n      - name: a\n        kind: remote-select\n")}},
			want:  "requires a remote configuration",
		},
		{
			name:  "unknown kind",
			files: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  user:\n    entity: User\n    fields:\n      - name: a\n        kind: slider\n")}},
			want:  `unknown kind "slider"`,
		},
		{
			name:  "bad pattern",
			files: fstest.MapFS{"a.json": {Data: []byte(`{"forms":{"user":{"entity":"User","fields":[{"name":"a","validations":[{"kind":"pattern","params":{"pattern":"("}}]}]}}}`)}},
			want:  "pattern",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := formdef.LoadFS(tc.files)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := formdef.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

func TestStore_Add(t *testing.T) {
	store := formdef.NewStore()
	if err := store.Add("note", model.FormModel{Entity: "Note", Fields: []model.Field{{Name: "body"}}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add("note", model.FormModel{Entity: "Note"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	form, _ := store.Form("note")
	if form.Fields[0].Kind != model.KindInput {
		t.Fatalf("expected normalized kind, got %q", form.Fields[0].Kind)
	}
}

func TestLoadFS_Decorators(t *testing.T) {
	audit := model.DecoratorFunc(func(form *model.FormModel) error {
		form.Fields = append(form.Fields, model.Field{Name: "updatedBy", ReadOnly: true})
		return nil
	})
	files := fstest.MapFS{
		"notes.yaml": {Data: []byte("forms:\n  note:\n    entity: Note\n    fields:\n      - name: body\n")},
	}

	store, err := formdef.LoadFS(files, audit)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form, _ := store.Form("note")
	if diff := cmp.Diff([]string{"body", "updatedBy"}, form.FieldNames()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	added, _ := form.Field("updatedBy")
	if added.Kind != model.KindInput || added.Type != model.FieldTypeString {
		t.Fatalf("decorated field not normalized: %#v", added)
	}

	failing := model.DecoratorFunc(func(*model.FormModel) error { return errors.New("boom") })
	if _, err := formdef.LoadFS(files, failing); err == nil || !strings.Contains(err.Error(), "decorate") {
		t.Fatalf("expected decorate error, got %v", err)
	}
}
