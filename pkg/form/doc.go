// Package form implements the lifecycle controller of a data-entry form.
//
// A Controller owns one editing session over one record of a remote entity.
// It tracks whether the field values differ from the last committed snapshot,
// derives the toolbar state (Back, Save, Save & Close, Copy, Delete) and turns
// user actions into create, update and remove requests on a crud.Transport.
// Before-hooks can veto saves and deletes; outcomes are reported through a
// notify.Notifier with messages resolved by a Localizer.
//
//	c, err := form.New(def, crud.NewHTTPTransport(baseURL),
//		form.WithNotifier(notify.NewTerminal()),
//		form.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	_ = c.SetValue("name", "Bob")
//	res, err := c.Save(ctx, false)
package form
