package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/internal/store"
	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/model"
)

const maxBodyBytes = 1 << 20

// statusError carries the HTTP status and outcome label of a failed action.
type statusError struct {
	status  int
	outcome string
	msg     string
	fields  map[string][]string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(msg string) *statusError {
	return &statusError{status: http.StatusBadRequest, outcome: outcomeBadRequest, msg: msg}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, crud.ActionRequest{}, badRequest("Could not read request body"), started)
		return
	}
	var env crud.Envelope
	if err := crud.Codec.Unmarshal(body, &env); err != nil {
		s.fail(w, r, crud.ActionRequest{}, badRequest("Malformed request body"), started)
		return
	}
	req := env.Params
	if err := req.Validate(); err != nil {
		s.fail(w, r, req, badRequest(err.Error()), started)
		return
	}

	resp, err := s.dispatch(r, req)
	if err != nil {
		s.fail(w, r, req, err, started)
		return
	}
	resp.Success = true
	entity, action := s.labels(req)
	s.metrics.observe(entity, action, outcomeOK, started)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dispatch(r *http.Request, req crud.ActionRequest) (crud.Response, error) {
	ctx := r.Context()

	switch req.Action {
	case crud.ActionCreate:
		if err := s.check(req.Entity, req.Values, true); err != nil {
			return crud.Response{}, err
		}
		rec, err := s.records.Create(ctx, req.Entity, req.Values)
		if err != nil {
			return crud.Response{}, err
		}
		return crud.Response{ID: rec.ID, Data: rec.Values}, nil

	case crud.ActionUpdate:
		id, err := recordID(req)
		if err != nil {
			return crud.Response{}, err
		}
		if err := s.check(req.Entity, req.Values, false); err != nil {
			return crud.Response{}, err
		}
		rec, err := s.records.Update(ctx, req.Entity, id, req.Values)
		if err != nil {
			return crud.Response{}, err
		}
		return crud.Response{ID: rec.ID, Data: rec.Values}, nil

	case crud.ActionRemove:
		id, err := recordID(req)
		if err != nil {
			return crud.Response{}, err
		}
		if err := s.records.Delete(ctx, req.Entity, id); err != nil {
			return crud.Response{}, err
		}
		return crud.Response{ID: id}, nil

	case crud.ActionRead:
		id, err := recordID(req)
		if err != nil {
			return crud.Response{}, err
		}
		rec, err := s.records.Get(ctx, req.Entity, id)
		if err != nil {
			return crud.Response{}, err
		}
		return crud.Response{ID: rec.ID, Data: rec.Values}, nil

	case crud.ActionList:
		var where map[string]any
		if req.Query != nil {
			where = req.Query.Where
		}
		recs, err := s.records.List(ctx, req.Entity, where)
		if err != nil {
			return crud.Response{}, err
		}
		rows := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			rows = append(rows, rec.Values)
		}
		return crud.Response{Data: rows}, nil
	}
	return crud.Response{}, badRequest("Unsupported action")
}

// check applies the declared field rules of the entity's form. Creates must
// satisfy every rule; updates only the fields they carry.
func (s *Server) check(entity string, values map[string]any, full bool) error {
	form, ok := s.forms.ByEntity(entity)
	if !ok {
		return nil
	}
	idField := form.Identifier()
	fields := make(map[string][]string)
	for _, field := range form.Fields {
		if field.Name == idField {
			continue
		}
		value, present := values[field.Name]
		if !present && !full {
			continue
		}
		rules, err := model.CompileRules(field)
		if err != nil {
			s.log.Warn("skipping field rules", zap.String("entity", entity), zap.String("field", field.Name), zap.Error(err))
			continue
		}
		if err := rules.Validate(value); err != nil {
			fields[field.Name] = append(fields[field.Name], err.Error())
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &statusError{
		status:  http.StatusUnprocessableEntity,
		outcome: outcomeInvalid,
		msg:     "Validation failed",
		fields:  fields,
	}
}

func recordID(req crud.ActionRequest) (int64, error) {
	raw, _ := req.ID()
	id, err := store.ParseID(raw)
	if err != nil {
		return 0, badRequest(err.Error())
	}
	return id, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, req crud.ActionRequest, err error, started time.Time) {
	var se *statusError
	switch {
	case errors.As(err, &se):
	case errors.Is(err, store.ErrNotFound):
		se = &statusError{status: http.StatusNotFound, outcome: outcomeNotFound, msg: "Record not found"}
	case errors.Is(err, store.ErrInvalidID):
		se = badRequest(err.Error())
	default:
		s.log.Error("action failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("entity", req.Entity),
			zap.String("action", string(req.Action)),
			zap.Error(err))
		se = &statusError{status: http.StatusInternalServerError, outcome: outcomeError, msg: "Internal server error"}
	}

	entity, action := s.labels(req)
	s.metrics.observe(entity, action, se.outcome, started)
	writeJSON(w, se.status, crud.Response{Msg: se.msg, Errors: se.fields})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := crud.Codec.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
