package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/i18n"
)

// Delete removes the persisted record after the user confirms it, then
// closes the session. Any answer other than yes returns ErrUserDeclined and
// changes nothing.
func (c *Controller) Delete(ctx context.Context) error {
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
	recordID := deepCopy(c.s.recordID)
	c.mu.Unlock()

	if crud.IsEmptyID(recordID) {
		return ErrNotPersisted
	}

	ev := DeleteEvent{SessionID: c.s.id, Entity: c.def.Entity, RecordID: recordID}
	if d, vetoed := c.vetoDelete(ctx, ev); vetoed {
		c.log.Info("delete vetoed", zap.String("reason", d.Reason))
		c.toast(ctx, d.Reason, i18n.KeyCantDeleteRecord)
		return &VetoError{Action: "delete", Reason: d.Reason}
	}

	if !c.confirm(ctx, i18n.KeyDelRecordTitle, i18n.KeyBeforeDeleteConfirm) {
		return ErrUserDeclined
	}

	resp, err := c.transport.Do(ctx, crud.Remove(c.def.Entity, recordID))
	if err != nil {
		terr := c.transportError(crud.ActionRemove, err)
		c.log.Warn("delete failed", zap.Any("record", recordID), zap.Error(err))
		if terr.Message != "" {
			c.alert(ctx, terr.Message)
		}
		return terr
	}

	c.mu.Lock()
	flip, dirty, snapshot, closing := c.forceCloseLocked()
	c.mu.Unlock()
	l.release()

	c.log.Info("record deleted", zap.Any("record", recordID))
	res := DeleteResult{SessionID: c.s.id, Entity: c.def.Entity, RecordID: recordID, Response: resp}
	for _, fn := range c.snapshotHooks().afterDelete {
		fn(ctx, res)
	}
	c.toast(ctx, resp.Msg, i18n.KeyRecordDeleted)
	c.notifyClosed(flip, dirty, snapshot, closing)
	return nil
}
