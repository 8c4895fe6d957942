package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_Counts(t *testing.T) {
	reg := prom.NewRegistry()
	e, err := NewEmitter(reg)
	require.NoError(t, err)
	ctx := context.Background()

	hit := domain.StateHitEvent{EventBase: domain.NewEventBase(domain.EventStateHit, "quiz"), StateID: "q1", FirstVisit: true}
	e.RecordStateHit(ctx, hit)
	e.RecordStateHit(ctx, hit)
	hit.FirstVisit = false
	e.RecordStateHit(ctx, hit)

	e.RecordAnswerSubmitted(ctx, domain.AnswerSubmittedEvent{
		EventBase: domain.NewEventBase(domain.EventAnswerSubmitted, "quiz"),
		StateID:   "q1", Handler: "submit", RuleID: "Default", Answer: "anything",
	})
	e.RecordFeedback(ctx, domain.FeedbackEvent{
		EventBase: domain.NewEventBase(domain.EventFeedbackSubmitted, "quiz"),
		StateID:   "q1", Feedback: "nice",
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(e.stateHits.WithLabelValues("quiz", "q1", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.stateHits.WithLabelValues("quiz", "q1", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.answers.WithLabelValues("quiz", "q1", "submit", "Default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.feedback.WithLabelValues("quiz", "q1")))
}

func TestEmitter_DuplicateRegistration(t *testing.T) {
	reg := prom.NewRegistry()
	_, err := NewEmitter(reg)
	require.NoError(t, err)

	_, err = NewEmitter(reg)
	var already prom.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestHandler(t *testing.T) {
	reg := prom.NewRegistry()
	e, err := NewEmitter(reg)
	require.NoError(t, err)
	e.RecordFeedback(context.Background(), domain.FeedbackEvent{
		EventBase: domain.NewEventBase(domain.EventFeedbackSubmitted, "quiz"),
		StateID:   "q1",
	})

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lattice_feedback_total{exploration_id="quiz",state_id="q1"} 1`)
}
