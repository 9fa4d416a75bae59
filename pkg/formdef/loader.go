package formdef

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsession/pkg/model"
)

// Store holds the loaded form definitions keyed by name.
type Store struct {
	forms      map[string]model.FormModel
	sources    map[string]string
	decorators []model.Decorator
}

// NewStore returns an empty store applying decorators to every added form.
func NewStore(decorators ...model.Decorator) *Store {
	s := &Store{
		forms:   make(map[string]model.FormModel),
		sources: make(map[string]string),
	}
	for _, d := range decorators {
		if d != nil {
			s.decorators = append(s.decorators, d)
		}
	}
	return s
}

// LoadFS walks fsys and parses every JSON/YAML file declaring forms. When fsys
// is nil or holds no definition files the returned store is empty. Decorators
// run on every normalized form, in order.
func LoadFS(fsys fs.FS, decorators ...model.Decorator) (*Store, error) {
	store := NewStore(decorators...)
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formdef: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(doc.Forms))
		for name := range doc.Forms {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := store.add(name, doc.Forms[name], path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Add registers a form built in code.
func (s *Store) Add(name string, form model.FormModel) error {
	return s.add(name, form, "")
}

// Form returns the definition registered under name.
func (s *Store) Form(name string) (model.FormModel, bool) {
	if s == nil {
		return model.FormModel{}, false
	}
	form, ok := s.forms[name]
	return form, ok
}

// ByEntity returns the first form, by name, editing entity.
func (s *Store) ByEntity(entity string) (model.FormModel, bool) {
	for _, name := range s.Names() {
		if form := s.forms[name]; form.Entity == entity {
			return form, true
		}
	}
	return model.FormModel{}, false
}

// Names returns the registered form names sorted.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.forms))
	for name := range s.forms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Source returns the file a form was loaded from.
func (s *Store) Source(name string) string {
	if s == nil {
		return ""
	}
	return s.sources[name]
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

type documentFile struct {
	Forms map[string]model.FormModel `json:"forms" yaml:"forms"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("formdef: file %s is empty", source)
	}
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("formdef: parse %s: %w", source, err)
	}
	return doc, nil
}

func (s *Store) add(name string, raw model.FormModel, source string) error {
	id := strings.TrimSpace(name)
	if id == "" {
		return fmt.Errorf("formdef: file %s defines a form with an empty name", source)
	}
	if _, exists := s.forms[id]; exists {
		return fmt.Errorf("formdef: duplicate form %q (file %s, first defined in %s)", id, source, s.sources[id])
	}
	form, err := s.normalize(id, raw)
	if err != nil {
		if source != "" {
			return fmt.Errorf("%w (file %s)", err, source)
		}
		return err
	}
	s.forms[id] = form
	s.sources[id] = source
	return nil
}

func (s *Store) normalize(name string, raw model.FormModel) (model.FormModel, error) {
	form, err := Normalize(name, raw)
	if err != nil || len(s.decorators) == 0 {
		return form, err
	}
	for _, d := range s.decorators {
		if err := d.Decorate(&form); err != nil {
			return model.FormModel{}, fmt.Errorf("formdef: decorate %q: %w", name, err)
		}
	}
	// decorators may add fields or rules
	return Normalize(name, form)
}

// Normalize validates a definition and fills in derived values: the form
// name, trimmed field names and the field kind implied by its options.
func Normalize(name string, form model.FormModel) (model.FormModel, error) {
	form.Name = name
	form.Entity = strings.TrimSpace(form.Entity)
	if form.Entity == "" {
		return model.FormModel{}, fmt.Errorf("formdef: form %q has no entity", name)
	}

	seen := make(map[string]struct{}, len(form.Fields))
	fields := make([]model.Field, 0, len(form.Fields))
	for idx, field := range form.Fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return model.FormModel{}, fmt.Errorf("formdef: form %q field %d has an empty name", name, idx)
		}
		if _, dup := seen[field.Name]; dup {
			return model.FormModel{}, fmt.Errorf("formdef: form %q defines duplicate field %q", name, field.Name)
		}
		seen[field.Name] = struct{}{}

		kind, err := resolveKind(field)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("formdef: form %q field %q: %w", name, field.Name, err)
		}
		field.Kind = kind
		if field.Type == "" {
			field.Type = model.FieldTypeString
		}
		if _, err := model.CompileRules(field); err != nil {
			return model.FormModel{}, fmt.Errorf("formdef: form %q: %w", name, err)
		}
		fields = append(fields, field)
	}
	form.Fields = fields
	return form, nil
}

func resolveKind(field model.Field) (model.FieldKind, error) {
	switch field.Kind {
	case "":
		switch {
		case field.Remote != nil:
			return model.KindRemoteSelect, nil
		case len(field.Options) > 0:
			return model.KindSelect, nil
		default:
			return model.KindInput, nil
		}
	case model.KindInput, model.KindSelect:
		return field.Kind, nil
	case model.KindRemoteSelect:
		if field.Remote == nil {
			return "", fmt.Errorf("kind %s requires a remote configuration", field.Kind)
		}
		if strings.TrimSpace(field.Remote.URL) == "" && strings.TrimSpace(field.Remote.Entity) == "" {
			return "", errors.New("remote options need a url or an entity")
		}
		return field.Kind, nil
	default:
		return "", fmt.Errorf("unknown kind %q", field.Kind)
	}
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
