package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formsession/pkg/crud"
)

var (
	// ErrVetoed matches every VetoError.
	ErrVetoed = errors.New("form: action vetoed")
	// ErrInvalidForm matches every ValidationError.
	ErrInvalidForm = errors.New("form: invalid form")
	// ErrNoChanges is returned by Save when there is nothing to send.
	ErrNoChanges = errors.New("form: no changes")
	// ErrTransport matches every TransportError.
	ErrTransport = errors.New("form: transport failure")
	// ErrUserDeclined is returned when a confirmation was not answered with yes.
	ErrUserDeclined = errors.New("form: declined by user")
	// ErrClosed is returned by every operation on a closed session.
	ErrClosed = errors.New("form: session closed")
	// ErrUnknownField is returned when a value targets an undeclared field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrNotPersisted is returned when deleting a record that was never saved.
	ErrNotPersisted = errors.New("form: record not persisted")
)

// VetoError reports an action canceled by a before-hook.
type VetoError struct {
	Action string
	Reason string
}

func (e *VetoError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("form: %s vetoed: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("form: %s vetoed", e.Action)
}

func (e *VetoError) Is(target error) bool {
	return target == ErrVetoed
}

// ValidationError lists the fields that failed validation. Form holds
// messages that do not belong to a single field.
type ValidationError struct {
	Fields map[string][]string
	Form   []string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	switch {
	case len(names) > 0:
		return fmt.Sprintf("form: invalid fields: %s", strings.Join(names, ", "))
	case len(e.Form) > 0:
		return fmt.Sprintf("form: invalid form: %s", strings.Join(e.Form, "; "))
	default:
		return ErrInvalidForm.Error()
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

// FieldNames returns the invalid field names sorted.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ValidationError) add(field, message string) {
	if field == "" {
		e.Form = append(e.Form, message)
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0 && len(e.Form) == 0
}

// TransportError wraps a failed backend call. Fields carries server-side
// field errors mapped onto form field names.
type TransportError struct {
	Action  crud.Action
	Message string
	Fields  map[string][]string
	Form    []string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("form: %s failed", e.Action)
	}
	return fmt.Sprintf("form: %s failed: %v", e.Action, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
