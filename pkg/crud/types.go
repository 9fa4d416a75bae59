package crud

import (
	"errors"
	"fmt"
	"strings"
)

// Action enumerates the verbs understood by the endpoint.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
	ActionRead   Action = "read"
	ActionList   Action = "list"
)

// IDKey is the where-clause key carrying the record identifier.
const IDKey = "Id"

// Query filters the records an action applies to.
type Query struct {
	Where map[string]any `json:"where"`
}

// ActionRequest is one call against the endpoint.
type ActionRequest struct {
	Entity string         `json:"entity"`
	Action Action         `json:"action"`
	Values map[string]any `json:"values,omitempty"`
	Query  *Query         `json:"query,omitempty"`
}

// Response is the decoded backend reply.
type Response struct {
	Success bool                `json:"success"`
	Msg     string              `json:"msg,omitempty"`
	ID      any                 `json:"id,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

var (
	// ErrEntityRequired is returned when a request does not name an entity.
	ErrEntityRequired = errors.New("crud: entity is required")
	// ErrUnknownAction is returned for actions outside the supported set.
	ErrUnknownAction = errors.New("crud: unknown action")
	// ErrQueryOnCreate is returned when a create request carries a query.
	ErrQueryOnCreate = errors.New("crud: create request must not carry a query")
	// ErrIDRequired is returned when update/remove/read lacks the identifier.
	ErrIDRequired = errors.New("crud: request requires query.where.Id")
)

// Create builds a create request. It never carries a query.
func Create(entity string, values map[string]any) ActionRequest {
	return ActionRequest{Entity: entity, Action: ActionCreate, Values: values}
}

// Update builds an update request targeting id.
func Update(entity string, id any, values map[string]any) ActionRequest {
	return ActionRequest{Entity: entity, Action: ActionUpdate, Values: values, Query: WhereID(id)}
}

// Remove builds a remove request targeting id.
func Remove(entity string, id any) ActionRequest {
	return ActionRequest{Entity: entity, Action: ActionRemove, Query: WhereID(id)}
}

// Read builds a request fetching a single record.
func Read(entity string, id any) ActionRequest {
	return ActionRequest{Entity: entity, Action: ActionRead, Query: WhereID(id)}
}

// List builds a request listing the records of an entity, optionally filtered.
func List(entity string, where map[string]any) ActionRequest {
	req := ActionRequest{Entity: entity, Action: ActionList}
	if len(where) > 0 {
		req.Query = &Query{Where: where}
	}
	return req
}

// WhereID returns a query selecting a record by identifier.
func WhereID(id any) *Query {
	return &Query{Where: map[string]any{IDKey: id}}
}

// ID returns the identifier carried by the request query, if any.
func (r ActionRequest) ID() (any, bool) {
	if r.Query == nil || r.Query.Where == nil {
		return nil, false
	}
	id, ok := r.Query.Where[IDKey]
	if !ok || IsEmptyID(id) {
		return nil, false
	}
	return id, true
}

// Validate enforces the request invariants.
func (r ActionRequest) Validate() error {
	if strings.TrimSpace(r.Entity) == "" {
		return ErrEntityRequired
	}
	switch r.Action {
	case ActionCreate:
		if r.Query != nil {
			return ErrQueryOnCreate
		}
	case ActionUpdate, ActionRemove, ActionRead:
		if _, ok := r.ID(); !ok {
			return fmt.Errorf("%w (action %s)", ErrIDRequired, r.Action)
		}
	case ActionList:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, r.Action)
	}
	return nil
}

// IsEmptyID reports whether id denotes "no record": nil, an empty string or a
// numeric zero.
func IsEmptyID(id any) bool {
	switch v := id.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case int:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return v == 0
	case float64:
		return v == 0
	case interface{ String() string }:
		s := v.String()
		return s == "" || s == "0"
	default:
		return false
	}
}
