// Package crud describes the single-endpoint CRUD protocol used by forms: an
// ActionRequest names an entity, an action and optionally the values and the
// target identifier, and a Transport delivers it to a backend.
//
// Create requests never carry a query; some backends reject a create call that
// carries a filter. Update, remove and read requests always carry the target
// identifier under query.where.Id.
package crud
