package form

// Buttons reports which toolbar actions are enabled. NewRecord drives the
// "new record" indicator.
type Buttons struct {
	Back         bool
	Save         bool
	SaveAndClose bool
	Copy         bool
	Delete       bool
	NewRecord    bool
}

// Buttons derives the toolbar state from the session. Enablement is advisory;
// every operation re-checks its own preconditions.
func (c *Controller) Buttons() Buttons {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.stateLocked()
	if state == StateClosed {
		return Buttons{}
	}
	persisted := state != StateNew
	return Buttons{
		Back:         true,
		Save:         c.s.dirty,
		SaveAndClose: c.s.dirty,
		Copy:         persisted,
		Delete:       persisted,
		NewRecord:    !persisted,
	}
}
