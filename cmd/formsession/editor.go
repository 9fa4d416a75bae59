package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/form"
	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/notify"
)

const noneLabel = "(none)"

// editor drives a form session from a terminal menu until the session closes.
type editor struct {
	ctrl     *form.Controller
	prompter notify.Prompter
	log      *zap.Logger
}

type menuItem struct {
	label string
	run   func(ctx context.Context) error
}

func newEditor(ctrl *form.Controller, prompter notify.Prompter, logger *zap.Logger) *editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &editor{ctrl: ctrl, prompter: prompter, log: logger}
}

func (e *editor) run(ctx context.Context) error {
	for e.ctrl.State() != form.StateClosed {
		items := e.menu()
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item.label
		}

		idx, err := e.prompter.Select(ctx, notify.SelectConfig{
			Message:  e.heading(),
			Options:  labels,
			PageSize: 15,
		})
		if errors.Is(err, notify.ErrAborted) {
			// Ctrl-C on the menu behaves like Back.
			idx, err = len(items)-1, nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(items) {
			continue
		}
		if err := items[idx].run(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.log.Debug("action finished with error", zap.String("action", items[idx].label), zap.Error(err))
		}
	}
	return nil
}

func (e *editor) heading() string {
	def := e.ctrl.Definition()
	title := def.Title
	if title == "" {
		title = def.Entity
	}
	switch e.ctrl.State() {
	case form.StateNew:
		return title + " (new)"
	case form.StatePersistedDirty:
		return fmt.Sprintf("%s #%v (modified)", title, e.ctrl.RecordID())
	default:
		return fmt.Sprintf("%s #%v", title, e.ctrl.RecordID())
	}
}

// menu lists the editable fields followed by the enabled actions. Back is
// always last.
func (e *editor) menu() []menuItem {
	def := e.ctrl.Definition()
	values := e.ctrl.Values()
	idField := def.Identifier()

	var items []menuItem
	for _, field := range def.Fields {
		if field.ReadOnly || field.Name == idField {
			continue
		}
		field := field
		items = append(items, menuItem{
			label: fmt.Sprintf("%s: %s", field.DisplayLabel(), e.display(field, values[field.Name])),
			run: func(ctx context.Context) error {
				return e.editField(ctx, field)
			},
		})
	}

	buttons := e.ctrl.Buttons()
	if buttons.Save {
		items = append(items, menuItem{label: "Save", run: func(ctx context.Context) error {
			_, err := e.ctrl.Save(ctx, false)
			return err
		}})
	}
	if buttons.SaveAndClose {
		items = append(items, menuItem{label: "Save & Close", run: e.saveAndClose})
	}
	if buttons.Copy {
		items = append(items, menuItem{label: "Copy", run: e.ctrl.Copy})
	}
	if buttons.Delete {
		items = append(items, menuItem{label: "Delete", run: e.ctrl.Delete})
	}
	items = append(items, menuItem{label: "Back", run: e.ctrl.Close})
	return items
}

func (e *editor) saveAndClose(ctx context.Context) error {
	res, err := e.ctrl.Save(ctx, true)
	if err != nil {
		return err
	}
	if res.CloseAfter {
		e.ctrl.ForceClose()
	}
	return nil
}

func (e *editor) editField(ctx context.Context, field model.Field) error {
	current, err := e.ctrl.Value(field.Name)
	if err != nil {
		return err
	}

	var value any
	switch field.Kind {
	case model.KindSelect, model.KindRemoteSelect:
		value, err = e.pickOption(ctx, field, current)
	default:
		value, err = e.readInput(ctx, field, current)
	}
	if errors.Is(err, notify.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.ctrl.SetValue(field.Name, value)
}

func (e *editor) pickOption(ctx context.Context, field model.Field, current any) (any, error) {
	opts := e.ctrl.Options(field.Name)
	labels := make([]string, 0, len(opts)+1)
	selected := 0
	labels = append(labels, noneLabel)
	for i, opt := range opts {
		labels = append(labels, opt.Label)
		if sameValue(opt.Value, current) {
			selected = i + 1
		}
	}

	idx, err := e.prompter.Select(ctx, notify.SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      labels,
		DefaultIndex: selected,
		Help:         field.Description,
	})
	if err != nil {
		return nil, err
	}
	if idx <= 0 || idx > len(opts) {
		return nil, nil
	}
	return opts[idx-1].Value, nil
}

func (e *editor) readInput(ctx context.Context, field model.Field, current any) (any, error) {
	raw, err := e.prompter.Input(ctx, notify.InputConfig{
		Message: field.DisplayLabel(),
		Default: formatValue(current),
		Help:    field.Description,
		Validator: func(s string) error {
			_, err := parseValue(field.Type, s)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return parseValue(field.Type, raw)
}

func (e *editor) display(field model.Field, value any) string {
	if value == nil || value == "" {
		return "-"
	}
	if field.Kind == model.KindSelect || field.Kind == model.KindRemoteSelect {
		for _, opt := range e.ctrl.Options(field.Name) {
			if sameValue(opt.Value, value) {
				return opt.Label
			}
		}
	}
	return formatValue(value)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// parseValue converts terminal input to the field's type. Blank input clears
// the value.
func parseValue(typ model.FieldType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	switch typ {
	case model.FieldTypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return n, nil
	case model.FieldTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case model.FieldTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
