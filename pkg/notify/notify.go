// Package notify presents form outcomes to the user: transient toasts for
// successes and minor failures, blocking alerts for server errors, and the
// yes/no/cancel confirmation used before destructive actions.
package notify

import (
	"context"
	"strings"
)

// Answer is the user's response to a confirmation dialog.
type Answer int

const (
	AnswerCancel Answer = iota
	AnswerYes
	AnswerNo
)

func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "yes"
	case AnswerNo:
		return "no"
	default:
		return "cancel"
	}
}

// ParseAnswer maps a button label to an Answer. Unknown labels cancel.
func ParseAnswer(label string) Answer {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes", "y":
		return AnswerYes
	case "no", "n":
		return AnswerNo
	default:
		return AnswerCancel
	}
}

// Notifier is the notification collaborator of a form session.
type Notifier interface {
	Toast(ctx context.Context, message string)
	Confirm(ctx context.Context, title, message string) (Answer, error)
	Alert(ctx context.Context, title, message string) error
}

// Discard drops toasts and alerts and answers every confirmation with a
// fixed answer.
type Discard struct {
	Answer Answer
}

var _ Notifier = Discard{}

func (Discard) Toast(context.Context, string) {}

func (d Discard) Confirm(context.Context, string, string) (Answer, error) {
	return d.Answer, nil
}

func (Discard) Alert(context.Context, string, string) error { return nil }
