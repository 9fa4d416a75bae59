package model

// Decorator adjusts a form definition after it has been loaded and
// normalized, for example to inject host-specific fields or rules.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls fn.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}
