// Package model defines the form definitions consumed by the lifecycle
// controller: the entity a form edits, the identifier field, and the declared
// fields with their kinds and validation rules.
//
// Field kinds are explicit tags. A field backed by a remote option list is
// declared with KindRemoteSelect and an OptionsConfig; nothing is inferred from
// field or widget names.
package model
