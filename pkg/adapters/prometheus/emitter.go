// Package prometheus counts analytics events as Prometheus metrics.
package prometheus

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Emitter implements ports.AnalyticsEmitter with counters.
// Answers are not used as labels: they are unbounded.
type Emitter struct {
	stateHits *prom.CounterVec
	answers   *prom.CounterVec
	feedback  *prom.CounterVec
}

var _ ports.AnalyticsEmitter = (*Emitter)(nil)

// NewEmitter creates the counters and registers them with reg.
func NewEmitter(reg prom.Registerer) (*Emitter, error) {
	e := &Emitter{
		stateHits: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "lattice_state_hits_total",
				Help: "Total number of state entries",
			},
			[]string{"exploration_id", "state_id", "first_visit"},
		),
		answers: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "lattice_answers_total",
				Help: "Total number of classified answers",
			},
			[]string{"exploration_id", "state_id", "handler", "rule"},
		),
		feedback: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "lattice_feedback_total",
				Help: "Total number of reader feedback submissions",
			},
			[]string{"exploration_id", "state_id"},
		),
	}
	for _, c := range []prom.Collector{e.stateHits, e.answers, e.feedback} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Emitter) RecordStateHit(_ context.Context, ev domain.StateHitEvent) {
	e.stateHits.WithLabelValues(ev.ExplorationID, ev.StateID, strconv.FormatBool(ev.FirstVisit)).Inc()
}

func (e *Emitter) RecordAnswerSubmitted(_ context.Context, ev domain.AnswerSubmittedEvent) {
	e.answers.WithLabelValues(ev.ExplorationID, ev.StateID, ev.Handler, ev.RuleID).Inc()
}

func (e *Emitter) RecordFeedback(_ context.Context, ev domain.FeedbackEvent) {
	e.feedback.WithLabelValues(ev.ExplorationID, ev.StateID).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
