package notify

import (
	"context"
	"errors"
	"strings"
)

// Theme captures the message prefixes a terminal notifier prints.
type Theme struct {
	ToastPrefix string
	AlertPrefix string
}

// Labels are the button captions of terminal dialogs.
type Labels struct {
	Yes    string
	No     string
	Cancel string
	OK     string
}

// TerminalOption configures a Terminal notifier.
type TerminalOption func(*Terminal)

// WithPrompter overrides the prompter.
func WithPrompter(p Prompter) TerminalOption {
	return func(t *Terminal) {
		if p != nil {
			t.prompter = p
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) TerminalOption {
	return func(t *Terminal) {
		t.theme = theme
	}
}

// WithLabels overrides dialog button captions. Empty captions keep defaults.
func WithLabels(labels Labels) TerminalOption {
	return func(t *Terminal) {
		if labels.Yes != "" {
			t.labels.Yes = labels.Yes
		}
		if labels.No != "" {
			t.labels.No = labels.No
		}
		if labels.Cancel != "" {
			t.labels.Cancel = labels.Cancel
		}
		if labels.OK != "" {
			t.labels.OK = labels.OK
		}
	}
}

// Terminal presents notifications through a Prompter.
type Terminal struct {
	prompter Prompter
	theme    Theme
	labels   Labels
}

var _ Notifier = (*Terminal)(nil)

// NewTerminal constructs a terminal notifier backed by survey prompts.
func NewTerminal(options ...TerminalOption) *Terminal {
	t := &Terminal{
		prompter: NewSurveyPrompter(),
		theme:    Theme{ToastPrefix: "✔ ", AlertPrefix: "! "},
		labels:   Labels{Yes: "Yes", No: "No", Cancel: "Cancel", OK: "OK"},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Prompter exposes the underlying prompter for editing flows.
func (t *Terminal) Prompter() Prompter {
	return t.prompter
}

// Toast prints a transient message. Print failures are ignored.
func (t *Terminal) Toast(ctx context.Context, message string) {
	message = PlainText(message)
	if message == "" {
		return
	}
	_ = t.prompter.Info(ctx, t.theme.ToastPrefix+message)
}

// Confirm asks a yes/no/cancel question. An aborted prompt answers cancel.
func (t *Terminal) Confirm(ctx context.Context, title, message string) (Answer, error) {
	options := []string{t.labels.Yes, t.labels.No, t.labels.Cancel}
	idx, err := t.prompter.Select(ctx, SelectConfig{
		Message:      dialogText(title, PlainText(message)),
		Options:      options,
		DefaultIndex: 2,
	})
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return AnswerCancel, nil
		}
		return AnswerCancel, err
	}
	switch idx {
	case 0:
		return AnswerYes, nil
	case 1:
		return AnswerNo, nil
	default:
		return AnswerCancel, nil
	}
}

// Alert shows a message and blocks until the user acknowledges it.
func (t *Terminal) Alert(ctx context.Context, title, message string) error {
	text := t.theme.AlertPrefix + dialogText(title, PlainText(message))
	_, err := t.prompter.Select(ctx, SelectConfig{
		Message: text,
		Options: []string{t.labels.OK},
	})
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

func dialogText(title, message string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return message
	}
	if message == "" {
		return title
	}
	return title + ": " + message
}
