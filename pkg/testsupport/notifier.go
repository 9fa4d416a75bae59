package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-formsession/pkg/notify"
)

// EventKind names a recorded notification.
type EventKind string

const (
	EventToast   EventKind = "toast"
	EventConfirm EventKind = "confirm"
	EventAlert   EventKind = "alert"
)

// Event is one recorded notification.
type Event struct {
	Kind    EventKind
	Title   string
	Message string
}

// RecordingNotifier records notifications and answers confirmations from a
// script. Confirmations without a scripted answer cancel.
type RecordingNotifier struct {
	mu         sync.Mutex
	events     []Event
	answers    []notify.Answer
	confirmErr error
}

var _ notify.Notifier = (*RecordingNotifier)(nil)

// Answer queues confirmation answers.
func (n *RecordingNotifier) Answer(answers ...notify.Answer) *RecordingNotifier {
	n.mu.Lock()
	n.answers = append(n.answers, answers...)
	n.mu.Unlock()
	return n
}

// FailConfirm makes every confirmation fail with err.
func (n *RecordingNotifier) FailConfirm(err error) *RecordingNotifier {
	n.mu.Lock()
	n.confirmErr = err
	n.mu.Unlock()
	return n
}

func (n *RecordingNotifier) Toast(_ context.Context, message string) {
	n.record(Event{Kind: EventToast, Message: message})
}

func (n *RecordingNotifier) Confirm(_ context.Context, title, message string) (notify.Answer, error) {
	n.record(Event{Kind: EventConfirm, Title: title, Message: message})
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirmErr != nil {
		return notify.AnswerCancel, n.confirmErr
	}
	if len(n.answers) == 0 {
		return notify.AnswerCancel, nil
	}
	next := n.answers[0]
	n.answers = n.answers[1:]
	return next, nil
}

func (n *RecordingNotifier) Alert(_ context.Context, title, message string) error {
	n.record(Event{Kind: EventAlert, Title: title, Message: message})
	return nil
}

// Events returns the recorded notifications.
func (n *RecordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// Reset clears the recorded notifications.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	n.events = nil
	n.mu.Unlock()
}

func (n *RecordingNotifier) record(ev Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}
