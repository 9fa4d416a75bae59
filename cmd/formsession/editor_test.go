package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/form"
	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/notify"
	"github.com/goliatone/go-formsession/pkg/testsupport"
)

type scriptedPrompter struct {
	selects []int
	inputs  []string
	selErr  error
	menus   [][]string
}

func (p *scriptedPrompter) Input(context.Context, notify.InputConfig) (string, error) {
	if len(p.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := p.inputs[0]
	p.inputs = p.inputs[1:]
	return next, nil
}

func (p *scriptedPrompter) Select(_ context.Context, cfg notify.SelectConfig) (int, error) {
	p.menus = append(p.menus, cfg.Options)
	if p.selErr != nil {
		return -1, p.selErr
	}
	if len(p.selects) == 0 {
		return -1, errors.New("no selection scripted")
	}
	next := p.selects[0]
	p.selects = p.selects[1:]
	return next, nil
}

func (p *scriptedPrompter) Info(context.Context, string) error { return nil }

func TestEditor_CreateAndClose(t *testing.T) {
	transport := (&testsupport.RecordingTransport{}).Succeed("", int64(7))
	ctrl, err := form.New(testsupport.UserForm(), transport, form.WithNotifier(&testsupport.RecordingNotifier{}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	prompter := &scriptedPrompter{
		selects: []int{0, 4},
		inputs:  []string{"Alice"},
	}

	if err := newEditor(ctrl, prompter, nil).run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	wantMenus := [][]string{
		{"Name: -", "Age: -", "Team: -", "Back"},
		{"Name: Alice", "Age: -", "Team: -", "Save", "Save & Close", "Back"},
	}
	if diff := cmp.Diff(wantMenus, prompter.menus); diff != "" {
		t.Fatalf("menus mismatch (-want +got):\n%s", diff)
	}
	reqs := transport.Requests()
	if len(reqs) != 1 || reqs[0].Action != crud.ActionCreate {
		t.Fatalf("requests = %+v, want one create", reqs)
	}
	if got := reqs[0].Values["name"]; got != "Alice" {
		t.Fatalf("created name = %v, want Alice", got)
	}
	if ctrl.State() != form.StateClosed {
		t.Fatalf("state = %s, want closed", ctrl.State())
	}
}

func TestEditor_EditDeclineCloseThenDelete(t *testing.T) {
	transport := &testsupport.RecordingTransport{}
	notifier := (&testsupport.RecordingNotifier{}).Answer(notify.AnswerCancel, notify.AnswerYes)
	ctrl, err := form.New(testsupport.UserForm(), transport,
		form.WithNotifier(notifier),
		form.WithRecord(int64(5), map[string]any{"name": "Bob", "age": int64(3)}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	prompter := &scriptedPrompter{
		// age (bad input), age, back (declined), delete
		selects: []int{1, 1, 7, 6},
		inputs:  []string{"x", "4"},
	}

	if err := newEditor(ctrl, prompter, nil).run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if diff := cmp.Diff([]string{"Name: Bob", "Age: 3", "Team: -", "Copy", "Delete", "Back"}, prompter.menus[0]); diff != "" {
		t.Fatalf("first menu mismatch (-want +got):\n%s", diff)
	}
	reqs := transport.Requests()
	if len(reqs) != 1 || reqs[0].Action != crud.ActionRemove {
		t.Fatalf("requests = %+v, want one remove", reqs)
	}
	if ctrl.State() != form.StateClosed {
		t.Fatalf("state = %s, want closed", ctrl.State())
	}
}

func TestEditor_AbortedMenuGoesBack(t *testing.T) {
	ctrl, err := form.New(testsupport.UserForm(), &testsupport.RecordingTransport{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	prompter := &scriptedPrompter{selErr: notify.ErrAborted}

	if err := newEditor(ctrl, prompter, nil).run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctrl.State() != form.StateClosed {
		t.Fatalf("state = %s, want closed", ctrl.State())
	}
}

func TestEditor_PromptFailureStops(t *testing.T) {
	ctrl, err := form.New(testsupport.UserForm(), &testsupport.RecordingTransport{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	boom := errors.New("tty gone")

	err = newEditor(ctrl, &scriptedPrompter{selErr: boom}, nil).run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("run err = %v, want %v", err, boom)
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		name    string
		typ     model.FieldType
		raw     string
		want    any
		wantErr bool
	}{
		{name: "blank clears", typ: model.FieldTypeInteger, raw: "  ", want: nil},
		{name: "integer", typ: model.FieldTypeInteger, raw: "42", want: int64(42)},
		{name: "bad integer", typ: model.FieldTypeInteger, raw: "4.2", wantErr: true},
		{name: "number", typ: model.FieldTypeNumber, raw: "4.5", want: 4.5},
		{name: "boolean", typ: model.FieldTypeBoolean, raw: "true", want: true},
		{name: "bad boolean", typ: model.FieldTypeBoolean, raw: "maybe", wantErr: true},
		{name: "string", typ: model.FieldTypeString, raw: " Alice ", want: "Alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseValue(tc.typ, tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseValue err = %v, wantErr %v", err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("parseValue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecordID(t *testing.T) {
	if got := parseRecordID(""); got != nil {
		t.Fatalf("parseRecordID(\"\") = %v, want nil", got)
	}
	if got := parseRecordID("12"); got != int64(12) {
		t.Fatalf("parseRecordID(12) = %#v, want int64(12)", got)
	}
	if got := parseRecordID("abc-1"); got != "abc-1" {
		t.Fatalf("parseRecordID(abc-1) = %#v", got)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("debug", "json"); err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if _, err := newLogger("loud", "console"); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := newLogger("info", "xml"); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestLoadDefinition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := "forms:\n  user:\n    entity: User\n    fields:\n      - name: name\n        required: true\n"
	if err := os.WriteFile(filepath.Join(dir, "user.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write form: %v", err)
	}

	def, err := loadDefinition(ctx, editConfig{formsDir: dir, form: "user"})
	if err != nil || def.Entity != "User" {
		t.Fatalf("loadDefinition(forms) = %+v, %v", def, err)
	}
	if _, err := loadDefinition(ctx, editConfig{formsDir: dir, form: "team"}); err == nil {
		t.Fatalf("expected unknown form error")
	}

	openapi := filepath.Join("..", "..", "pkg", "schema", "testdata", "users.yaml")
	def, err = loadDefinition(ctx, editConfig{openapi: openapi, form: "User"})
	if err != nil {
		t.Fatalf("loadDefinition(openapi): %v", err)
	}
	if def.Identifier() != "id" || def.Name != "User" {
		t.Fatalf("unexpected openapi form %+v", def)
	}

	if _, err := loadDefinition(ctx, editConfig{form: "user"}); err == nil {
		t.Fatalf("expected missing source error")
	}
}
