package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var templates sync.Map // string -> *pongo2.Template

// Render executes a message template. Map arguments are merged into the
// template context; any other argument is exposed positionally as argN.
// Messages without template markup are returned unchanged.
func Render(text string, args ...any) (string, error) {
	if !strings.Contains(text, "{{") && !strings.Contains(text, "{%") {
		return text, nil
	}

	tpl, err := compile(text)
	if err != nil {
		return "", err
	}

	out, err := tpl.Execute(contextFrom(args))
	if err != nil {
		return "", fmt.Errorf("i18n: render template: %w", err)
	}
	return out, nil
}

func compile(text string) (*pongo2.Template, error) {
	if cached, ok := templates.Load(text); ok {
		return cached.(*pongo2.Template), nil
	}
	tpl, err := pongo2.FromString(text)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse template: %w", err)
	}
	templates.Store(text, tpl)
	return tpl, nil
}

func contextFrom(args []any) pongo2.Context {
	ctx := pongo2.Context{}
	for i, arg := range args {
		switch v := arg.(type) {
		case pongo2.Context:
			for key, value := range v {
				ctx[key] = value
			}
		case map[string]any:
			for key, value := range v {
				ctx[key] = value
			}
		case map[string]string:
			for key, value := range v {
				ctx[key] = value
			}
		default:
			ctx[fmt.Sprintf("arg%d", i)] = v
		}
	}
	return ctx
}
