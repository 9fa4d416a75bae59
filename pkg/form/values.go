package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formsession/pkg/crud"
)

// SetValue assigns a single field value.
func (c *Controller) SetValue(name string, value any) error {
	return c.SetValues(map[string]any{name: value})
}

// SetValues assigns several field values at once. Either all names are known
// and every value is applied, or nothing changes.
func (c *Controller) SetValues(values map[string]any) error {
	c.mu.Lock()
	if c.s.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	for name := range values {
		if _, ok := c.s.values[name]; !ok {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	for name, value := range values {
		c.s.values[name] = deepCopy(value)
	}
	flip, dirty := c.refreshLocked()
	c.mu.Unlock()

	if flip {
		c.emitDirty(dirty)
	}
	return nil
}

// Value returns the current value of a field.
func (c *Controller) Value(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.s.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return deepCopy(v), nil
}

// Values returns a copy of all current field values.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneValues(c.s.values)
}

// Bind loads a record into the session: it replaces the record identifier
// and the field values and clears the dirty state. Keys that do not name a
// declared field are ignored; declared fields missing from values fall back
// to their defaults.
func (c *Controller) Bind(id any, values map[string]any) error {
	c.mu.Lock()
	if c.s.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	next := c.defaults()
	for name, value := range values {
		if _, ok := next[name]; ok {
			next[name] = deepCopy(value)
		}
	}
	if crud.IsEmptyID(id) {
		id = nil
	}
	c.s.recordID = deepCopy(id)
	if _, ok := next[c.idField]; ok {
		next[c.idField] = deepCopy(id)
	}
	c.s.values = next
	c.s.original = cloneValues(next)
	c.s.forced = false
	flip, dirty := c.refreshLocked()
	c.mu.Unlock()

	c.log.Debug("record bound", c.fields()...)
	if flip {
		c.emitDirty(dirty)
	}
	return nil
}

// defaults returns the declared fields with their default values.
func (c *Controller) defaults() map[string]any {
	out := make(map[string]any, len(c.def.Fields))
	for _, field := range c.def.Fields {
		out[field.Name] = deepCopy(field.Default)
	}
	return out
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
