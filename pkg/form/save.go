package form

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/i18n"
)

// Save sends the session to the backend: a create request with every field
// for a new record, an update request with the changed fields otherwise. On
// success the sent values become the committed snapshot and the result
// reports whether the host should close the form.
//
// Failures are reported to the user and returned: a veto or invalid form
// or empty change set as a toast, a transport failure as a blocking alert.
func (c *Controller) Save(ctx context.Context, closeAfter bool) (SaveResult, error) {
	l, err := c.acquire(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	defer l.release()

	c.mu.Lock()
	if c.s.closed {
		c.mu.Unlock()
		return SaveResult{}, ErrClosed
	}
	recordID := deepCopy(c.s.recordID)
	snapshot := cloneValues(c.s.values)
	original := cloneValues(c.s.original)
	c.mu.Unlock()

	isNew := crud.IsEmptyID(recordID)

	ev := SaveEvent{
		SessionID:  c.s.id,
		Entity:     c.def.Entity,
		RecordID:   recordID,
		Values:     cloneValues(snapshot),
		CloseAfter: closeAfter,
	}
	if d, vetoed := c.vetoSave(ctx, ev); vetoed {
		c.log.Info("save vetoed", zap.String("reason", d.Reason))
		c.toast(ctx, d.Reason, i18n.KeyCantSaveRecord)
		return SaveResult{}, &VetoError{Action: "save", Reason: d.Reason}
	}

	if verr := c.validate(ctx, snapshot); verr != nil {
		for _, name := range verr.FieldNames() {
			c.log.Warn("invalid field",
				zap.String("field", name),
				zap.Strings("errors", verr.Fields[name]))
		}
		for _, msg := range verr.Form {
			c.log.Warn("invalid form", zap.String("error", msg))
		}
		c.toast(ctx, "", i18n.KeyInvalidForm)
		return SaveResult{}, verr
	}

	values := c.collect(isNew, original, snapshot)
	if len(values) == 0 {
		c.toast(ctx, "", i18n.KeyFormNotChanged)
		return SaveResult{}, ErrNoChanges
	}

	var req crud.ActionRequest
	if isNew {
		req = crud.Create(c.def.Entity, values)
	} else {
		req = crud.Update(c.def.Entity, recordID, values)
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		terr := c.transportError(req.Action, err)
		c.log.Warn("save failed",
			zap.String("action", string(req.Action)),
			zap.Error(err))
		msg := terr.Message
		if msg == "" {
			msg = c.text(i18n.KeyUnknownServerError)
		}
		c.alert(ctx, msg)
		return SaveResult{}, terr
	}

	c.mu.Lock()
	if isNew {
		if crud.IsEmptyID(resp.ID) {
			c.log.Warn("create response carried no id")
		} else {
			recordID = deepCopy(resp.ID)
			c.s.recordID = deepCopy(resp.ID)
			if _, ok := snapshot[c.idField]; ok {
				snapshot[c.idField] = deepCopy(resp.ID)
				c.s.values[c.idField] = deepCopy(resp.ID)
			}
		}
	}
	c.s.original = snapshot
	c.s.forced = false
	flip, dirty := c.refreshLocked()
	c.mu.Unlock()
	l.release()

	c.log.Info("record saved",
		zap.String("action", string(req.Action)),
		zap.Any("record", recordID),
		zap.Int("fields", len(values)))
	if flip {
		c.emitDirty(dirty)
	}

	c.toast(ctx, resp.Msg, i18n.KeyRecordSaved)

	res := SaveResult{
		SessionID:  c.s.id,
		Action:     req.Action,
		RecordID:   recordID,
		Values:     values,
		Response:   resp,
		CloseAfter: closeAfter,
	}
	for _, fn := range c.snapshotHooks().afterSave {
		fn(ctx, res)
	}
	return res, nil
}

// collect returns the values to send. New records send every field except an
// empty identifier; persisted records send only the changed fields.
func (c *Controller) collect(isNew bool, original, current map[string]any) map[string]any {
	if isNew {
		out := cloneValues(current)
		if v, ok := out[c.idField]; ok && crud.IsEmptyID(v) {
			delete(out, c.idField)
		}
		return out
	}
	names, err := changedFields(original, current)
	if err != nil {
		c.log.Debug("falling back to strict comparison", zap.Error(err))
		names = changedFieldsStrict(original, current)
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		if name == c.idField {
			continue
		}
		if v, ok := current[name]; ok {
			out[name] = deepCopy(v)
		}
	}
	return out
}

// validate checks every field against its rules, then runs the form
// validators. The identifier field is not validated.
func (c *Controller) validate(ctx context.Context, values map[string]any) *ValidationError {
	verr := &ValidationError{}
	for _, field := range c.def.Fields {
		if field.Name == c.idField {
			continue
		}
		if err := c.rules[field.Name].Validate(values[field.Name]); err != nil {
			verr.add(field.Name, err.Error())
		}
	}
	for _, validator := range c.validators {
		err := validator(ctx, cloneValues(values))
		if err == nil {
			continue
		}
		var fieldErr *ValidationError
		if errors.As(err, &fieldErr) {
			for name, msgs := range fieldErr.Fields {
				for _, msg := range msgs {
					verr.add(name, msg)
				}
			}
			for _, msg := range fieldErr.Form {
				verr.add("", msg)
			}
			continue
		}
		verr.add("", err.Error())
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func (c *Controller) transportError(action crud.Action, err error) *TransportError {
	mapped := MapFieldErrors(c.def, crud.FieldErrorsOf(err))
	return &TransportError{
		Action:  action,
		Message: crud.MessageOf(err),
		Fields:  mapped.Fields,
		Form:    mapped.Form,
		Err:     err,
	}
}
