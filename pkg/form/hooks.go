package form

import (
	"context"

	"github.com/goliatone/go-formsession/pkg/crud"
)

// Decision is the verdict of a before-hook.
type Decision struct {
	denied bool
	Reason string
}

// Allow lets the action proceed.
func Allow() Decision { return Decision{} }

// Deny cancels the action. A non-empty reason replaces the default message
// shown to the user.
func Deny(reason string) Decision { return Decision{denied: true, Reason: reason} }

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool { return !d.denied }

// SaveEvent describes a save about to happen.
type SaveEvent struct {
	SessionID  string
	Entity     string
	RecordID   any
	Values     map[string]any
	CloseAfter bool
}

// SaveResult describes a completed save.
type SaveResult struct {
	SessionID  string
	Action     crud.Action
	RecordID   any
	Values     map[string]any
	Response   crud.Response
	CloseAfter bool
}

// DeleteEvent describes a delete about to happen.
type DeleteEvent struct {
	SessionID string
	Entity    string
	RecordID  any
}

// DeleteResult describes a completed delete.
type DeleteResult struct {
	SessionID string
	Entity    string
	RecordID  any
	Response  crud.Response
}

type (
	BeforeSaveFunc   func(ctx context.Context, ev SaveEvent) Decision
	AfterSaveFunc    func(ctx context.Context, res SaveResult)
	BeforeDeleteFunc func(ctx context.Context, ev DeleteEvent) Decision
	AfterDeleteFunc  func(ctx context.Context, res DeleteResult)
	DirtyChangeFunc  func(dirty bool)
	CloseFunc        func(s Session)
)

type hooks struct {
	beforeSave   []BeforeSaveFunc
	afterSave    []AfterSaveFunc
	beforeDelete []BeforeDeleteFunc
	afterDelete  []AfterDeleteFunc
	dirtyChange  []DirtyChangeFunc
	close        []CloseFunc
}

// OnBeforeSave registers a hook able to veto saves.
func (c *Controller) OnBeforeSave(fn BeforeSaveFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.beforeSave = append(c.hooks.beforeSave, fn)
	c.hookMu.Unlock()
}

// OnAfterSave registers a hook fired after a successful save.
func (c *Controller) OnAfterSave(fn AfterSaveFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.afterSave = append(c.hooks.afterSave, fn)
	c.hookMu.Unlock()
}

// OnBeforeDelete registers a hook able to veto deletes.
func (c *Controller) OnBeforeDelete(fn BeforeDeleteFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.beforeDelete = append(c.hooks.beforeDelete, fn)
	c.hookMu.Unlock()
}

// OnAfterDelete registers a hook fired after a successful delete.
func (c *Controller) OnAfterDelete(fn AfterDeleteFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.afterDelete = append(c.hooks.afterDelete, fn)
	c.hookMu.Unlock()
}

// OnDirtyChange registers a listener fired whenever the dirty flag flips.
func (c *Controller) OnDirtyChange(fn DirtyChangeFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.dirtyChange = append(c.hooks.dirtyChange, fn)
	c.hookMu.Unlock()
}

// OnClose registers a listener fired once when the session closes.
func (c *Controller) OnClose(fn CloseFunc) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.hooks.close = append(c.hooks.close, fn)
	c.hookMu.Unlock()
}

func (c *Controller) snapshotHooks() hooks {
	c.hookMu.RLock()
	defer c.hookMu.RUnlock()
	return hooks{
		beforeSave:   append([]BeforeSaveFunc(nil), c.hooks.beforeSave...),
		afterSave:    append([]AfterSaveFunc(nil), c.hooks.afterSave...),
		beforeDelete: append([]BeforeDeleteFunc(nil), c.hooks.beforeDelete...),
		afterDelete:  append([]AfterDeleteFunc(nil), c.hooks.afterDelete...),
		dirtyChange:  append([]DirtyChangeFunc(nil), c.hooks.dirtyChange...),
		close:        append([]CloseFunc(nil), c.hooks.close...),
	}
}

// vetoSave runs the before-save hooks in registration order. The first denial
// wins.
func (c *Controller) vetoSave(ctx context.Context, ev SaveEvent) (Decision, bool) {
	for _, fn := range c.snapshotHooks().beforeSave {
		if d := fn(ctx, ev); !d.Allowed() {
			return d, true
		}
	}
	return Allow(), false
}

func (c *Controller) vetoDelete(ctx context.Context, ev DeleteEvent) (Decision, bool) {
	for _, fn := range c.snapshotHooks().beforeDelete {
		if d := fn(ctx, ev); !d.Allowed() {
			return d, true
		}
	}
	return Allow(), false
}

func (c *Controller) emitDirty(dirty bool) {
	for _, fn := range c.snapshotHooks().dirtyChange {
		fn(dirty)
	}
}

func (c *Controller) emitClose(s Session) {
	for _, fn := range c.snapshotHooks().close {
		fn(s)
	}
}
