package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/i18n"
	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/notify"
	"github.com/goliatone/go-formsession/pkg/options"
)

// ErrNoTransport is returned by New when no transport is supplied.
var ErrNoTransport = errors.New("form: transport is required")

// State is the lifecycle state of a session.
type State int

const (
	StateNew State = iota
	StatePersisted
	StatePersistedDirty
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePersisted:
		return "persisted"
	case StatePersistedDirty:
		return "persisted-dirty"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is a point-in-time copy of the editing session.
type Session struct {
	ID       string
	Entity   string
	RecordID any
	Values   map[string]any
	Original map[string]any
	Dirty    bool
	State    State
}

// New reports whether the session has no persisted record.
func (s Session) New() bool {
	return crud.IsEmptyID(s.RecordID)
}

type session struct {
	id       string
	recordID any
	values   map[string]any
	original map[string]any
	forced   bool
	dirty    bool
	closed   bool
}

// Controller drives one editing session over one record of an entity.
// Methods are safe for concurrent use. Save, Delete, Copy, Close and
// LoadFieldStores run one at a time.
type Controller struct {
	def        model.FormModel
	idField    string
	transport  crud.Transport
	notifier   notify.Notifier
	localizer  Localizer
	resolver   options.Resolver
	validators []Validator
	rules      map[string]model.Rules
	log        *zap.Logger

	initialID     any
	initialValues map[string]any

	actions chan struct{}

	mu           sync.Mutex
	s            session
	suspended    int
	reported     bool
	fieldOptions map[string][]model.Option

	hookMu sync.RWMutex
	hooks  hooks
}

// New constructs a controller for def posting through transport. The session
// starts as a new record holding the field defaults unless WithRecord is
// given.
func New(def model.FormModel, transport crud.Transport, opts ...Option) (*Controller, error) {
	if strings.TrimSpace(def.Entity) == "" {
		return nil, crud.ErrEntityRequired
	}
	if transport == nil {
		return nil, ErrNoTransport
	}

	c := &Controller{
		def:          def,
		idField:      def.Identifier(),
		transport:    transport,
		notifier:     notify.Discard{},
		localizer:    i18n.NewLocalizer(nil, ""),
		rules:        make(map[string]model.Rules, len(def.Fields)),
		log:          zap.NewNop(),
		actions:      make(chan struct{}, 1),
		fieldOptions: make(map[string][]model.Option),
		s:            session{id: uuid.NewString()},
	}

	seen := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, fmt.Errorf("form: %s: field without a name", def.Entity)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("form: %s: duplicate field %q", def.Entity, name)
		}
		seen[name] = struct{}{}
		rules, err := model.CompileRules(field)
		if err != nil {
			return nil, err
		}
		c.rules[name] = rules
		if len(field.Options) > 0 {
			c.fieldOptions[name] = append([]model.Option(nil), field.Options...)
		}
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = &options.DefaultResolver{
			Transport: transport,
			Cache:     options.NewCache(),
			Logger:    c.log,
		}
	}
	c.log = c.log.With(
		zap.String("session", c.s.id),
		zap.String("entity", def.Entity))

	c.s.values = c.defaults()
	c.s.original = cloneValues(c.s.values)
	if !crud.IsEmptyID(c.initialID) || len(c.initialValues) > 0 {
		if err := c.Bind(c.initialID, c.initialValues); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Definition returns the form definition.
func (c *Controller) Definition() model.FormModel {
	return c.def
}

// EntityName returns the remote collection the session edits.
func (c *Controller) EntityName() string {
	return c.def.Entity
}

// SessionID returns the random identifier of the session.
func (c *Controller) SessionID() string {
	return c.s.id
}

// RecordID returns the persisted record identifier, or nil for a new record.
func (c *Controller) RecordID() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deepCopy(c.s.recordID)
}

// SetRecordID replaces the record identifier and mirrors it into the
// identifier field without affecting the dirty state.
func (c *Controller) SetRecordID(id any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.closed {
		return ErrClosed
	}
	if crud.IsEmptyID(id) {
		id = nil
	}
	c.s.recordID = deepCopy(id)
	c.setIDFieldLocked(id)
	return nil
}

// Dirty reports whether the session holds unsaved changes.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.dirty
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Session returns a copy of the session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

// Options returns the option list cached for a select field.
func (c *Controller) Options(name string) []model.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Option(nil), c.fieldOptions[name]...)
}

// ResetDirty makes the current values the committed snapshot.
func (c *Controller) ResetDirty() {
	c.mu.Lock()
	if c.s.closed {
		c.mu.Unlock()
		return
	}
	flip, dirty := c.resetDirtyLocked()
	c.mu.Unlock()

	if flip {
		c.emitDirty(dirty)
	}
}

// ForceClose discards unsaved changes and closes the session without asking.
func (c *Controller) ForceClose() {
	c.mu.Lock()
	flip, dirty, snapshot, closing := c.forceCloseLocked()
	c.mu.Unlock()
	c.notifyClosed(flip, dirty, snapshot, closing)
}

// Close closes the session. A dirty session asks for confirmation first and
// only a yes answer closes it; any other answer returns ErrUserDeclined.
func (c *Controller) Close(ctx context.Context) error {
	l, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer l.release()

	c.mu.Lock()
	closed, dirty := c.s.closed, c.s.dirty
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if dirty && !c.confirm(ctx, i18n.KeyCloseTitle, i18n.KeyUnsavedCloseConfirm) {
		return ErrUserDeclined
	}
	c.mu.Lock()
	snapshot, closing := c.closeLocked()
	c.mu.Unlock()
	l.release()
	c.notifyClosed(false, false, snapshot, closing)
	return nil
}

// Copy turns the session into a new record seeded with the current values.
// No request is sent until the next Save.
func (c *Controller) Copy(ctx context.Context) error {
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
	previous := c.s.recordID
	c.s.recordID = nil
	c.setIDFieldLocked(nil)
	c.s.original = cloneValues(c.s.values)
	c.s.forced = true
	flip, dirty := c.refreshLocked()
	c.mu.Unlock()
	l.release()

	c.log.Info("record copied", zap.Any("from", previous))
	if flip {
		c.emitDirty(dirty)
	}
	return nil
}

// closeLocked marks the session closed and returns the snapshot close
// listeners receive. It reports false when the session was already closed.
func (c *Controller) closeLocked() (Session, bool) {
	if c.s.closed {
		return Session{}, false
	}
	c.s.closed = true
	return c.sessionLocked(), true
}

func (c *Controller) forceCloseLocked() (flip, dirty bool, snapshot Session, closing bool) {
	if c.s.closed {
		return false, false, Session{}, false
	}
	flip, dirty = c.resetDirtyLocked()
	snapshot, closing = c.closeLocked()
	return flip, dirty, snapshot, closing
}

// notifyClosed runs the listeners of a close. It must be called without mu
// and without the action slot so listeners may call back into the controller.
func (c *Controller) notifyClosed(flip, dirty bool, snapshot Session, closing bool) {
	if flip {
		c.emitDirty(dirty)
	}
	if closing {
		c.log.Debug("session closed")
		c.emitClose(snapshot)
	}
}

// lease holds the action slot. Actions release it before running listeners
// and hooks; release is idempotent so the deferred call stays safe.
type lease struct {
	actions  chan struct{}
	released bool
}

func (c *Controller) acquire(ctx context.Context) (*lease, error) {
	select {
	case c.actions <- struct{}{}:
		return &lease{actions: c.actions}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *lease) release() {
	if l.released {
		return
	}
	l.released = true
	<-l.actions
}

// refreshLocked recomputes the dirty flag. It reports whether listeners must
// be told about a flip.
func (c *Controller) refreshLocked() (bool, bool) {
	dirty := c.s.forced
	if !dirty {
		names, err := changedFields(c.s.original, c.s.values)
		if err != nil {
			c.log.Debug("falling back to strict comparison", zap.Error(err))
			names = changedFieldsStrict(c.s.original, c.s.values)
		}
		dirty = len(names) > 0
	}
	c.s.dirty = dirty
	if c.suspended > 0 || dirty == c.reported {
		return false, dirty
	}
	c.reported = dirty
	return true, dirty
}

func (c *Controller) resetDirtyLocked() (bool, bool) {
	c.s.original = cloneValues(c.s.values)
	c.s.forced = false
	return c.refreshLocked()
}

func (c *Controller) setIDFieldLocked(id any) {
	if _, ok := c.s.values[c.idField]; !ok {
		return
	}
	c.s.values[c.idField] = deepCopy(id)
	c.s.original[c.idField] = deepCopy(id)
}

func (c *Controller) stateLocked() State {
	switch {
	case c.s.closed:
		return StateClosed
	case crud.IsEmptyID(c.s.recordID):
		return StateNew
	case c.s.dirty:
		return StatePersistedDirty
	default:
		return StatePersisted
	}
}

func (c *Controller) sessionLocked() Session {
	return Session{
		ID:       c.s.id,
		Entity:   c.def.Entity,
		RecordID: deepCopy(c.s.recordID),
		Values:   cloneValues(c.s.values),
		Original: cloneValues(c.s.original),
		Dirty:    c.s.dirty,
		State:    c.stateLocked(),
	}
}

func (c *Controller) fields() []zap.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return []zap.Field{
		zap.Any("record", c.s.recordID),
		zap.Bool("dirty", c.s.dirty),
	}
}
