package form

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/notify"
	"github.com/goliatone/go-formsession/pkg/options"
)

// Localizer resolves message keys to display strings.
type Localizer interface {
	Localize(key string, args ...any) string
}

// Validator checks the whole value set before a save. Returning a
// *ValidationError reports field-level problems; any other error is a
// form-level message.
type Validator func(ctx context.Context, values map[string]any) error

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the notification collaborator.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLocalizer sets the localization collaborator.
func WithLocalizer(l Localizer) Option {
	return func(c *Controller) {
		if l != nil {
			c.localizer = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithOptionResolver overrides how remote-select fields find their options.
func WithOptionResolver(r options.Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithValidator adds a form-level validator run after the field rules.
func WithValidator(v Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validators = append(c.validators, v)
		}
	}
}

// WithRecord binds the session to an existing record on construction.
func WithRecord(id any, values map[string]any) Option {
	return func(c *Controller) {
		c.initialID = id
		c.initialValues = values
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			c.s.id = trimmed
		}
	}
}
