package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formsession/pkg/crud"
)

const (
	outcomeOK         = "ok"
	outcomeInvalid    = "invalid"
	outcomeNotFound   = "not_found"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"

	labelUnknown = "unknown"
)

type metrics struct {
	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formsession",
			Name:      "actions_total",
			Help:      "CRUD actions handled, by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formsession",
			Name:      "action_duration_seconds",
			Help:      "Time spent handling CRUD actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "action", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.actions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(entity, action, outcome string, started time.Time) {
	m.actions.WithLabelValues(entity, action, outcome).Inc()
	m.duration.WithLabelValues(entity, action, outcome).Observe(time.Since(started).Seconds())
}

// labels maps a request onto bounded label values: entities without a
// registered form and unknown actions are reported as "unknown".
func (s *Server) labels(req crud.ActionRequest) (entity, action string) {
	entity, action = labelUnknown, labelUnknown
	if req.Entity != "" {
		if _, ok := s.forms.ByEntity(req.Entity); ok {
			entity = req.Entity
		}
	}
	switch req.Action {
	case crud.ActionCreate, crud.ActionUpdate, crud.ActionRemove, crud.ActionRead, crud.ActionList:
		action = string(req.Action)
	}
	return entity, action
}
