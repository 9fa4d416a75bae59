package form

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/options"
)

// LoadFieldStores loads the option lists of every remote-select field. While
// loading, dirty-change notifications are held back; a default selection is
// applied to untouched empty fields as both current and committed value so
// loading never dirties the form. Sources that fail are logged and joined
// into the returned error while the others still load.
func (c *Controller) LoadFieldStores(ctx context.Context) error {
	l, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer l.release()

	c.mu.Lock()
	if c.s.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.suspended++
	c.mu.Unlock()
	defer c.resumeDirtyEvents(l)

	var errs []error
	for _, field := range c.def.Fields {
		if field.Kind != model.KindRemoteSelect {
			continue
		}
		if err := c.loadField(ctx, field); err != nil {
			c.log.Warn("option source failed",
				zap.String("field", field.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("form: options for %q: %w", field.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) loadField(ctx context.Context, field model.Field) error {
	src, err := c.resolver.Resolve(field)
	if err != nil {
		return err
	}
	opts, err := src.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fieldOptions[field.Name] = opts

	current := c.s.values[field.Name]
	if !isEmptyValue(current) {
		return nil
	}
	names, err := changedFields(
		map[string]any{field.Name: c.s.original[field.Name]},
		map[string]any{field.Name: current})
	if err != nil || len(names) > 0 {
		return nil
	}

	var value any
	if opt, ok := options.Selected(opts); ok {
		value = opt.Value
	} else if field.Default != nil {
		value = field.Default
	}
	if value == nil {
		return nil
	}
	c.s.values[field.Name] = deepCopy(value)
	c.s.original[field.Name] = deepCopy(value)
	c.refreshLocked()
	return nil
}

// resumeDirtyEvents lifts one level of suspension and reports a dirty flag
// that changed while notifications were held back. The action slot is
// handed back before listeners run.
func (c *Controller) resumeDirtyEvents(l *lease) {
	c.mu.Lock()
	if c.suspended > 0 {
		c.suspended--
	}
	var flip, dirty bool
	if c.suspended == 0 && !c.s.closed {
		flip, dirty = c.refreshLocked()
	}
	c.mu.Unlock()
	l.release()

	if flip {
		c.emitDirty(dirty)
	}
}
