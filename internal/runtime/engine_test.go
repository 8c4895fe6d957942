package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/analytics"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dsl"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yesNo is the two-state exploration: A loops until "yes", B always ends.
func yesNo() *domain.Exploration {
	b := dsl.New("yes-no").Title("Yes or no")
	b.Add("A").Text("Say yes.").Widget("TextInput").
		When(dsl.Equals("yes"), "B").
		Otherwise("A")
	b.Add("B").Text("You said yes.").Widget("TextInput").
		Otherwise(dsl.End, "Done")
	return b.MustBuild()
}

func newEngine(t *testing.T, exps ...*domain.Exploration) (*runtime.Engine, *analytics.Recorder) {
	t.Helper()
	store, err := memory.NewExplorationStore(exps...)
	require.NoError(t, err)
	rec := analytics.NewRecorder()
	return runtime.NewEngine(store, widgets.Default(), runtime.WithEmitter(rec)), rec
}

func submit(view *domain.InitialView, answer any) domain.Request {
	return domain.Request{
		ExplorationID: view.ExplorationID,
		StateID:       view.StateID,
		Answer:        answer,
		BlockNumber:   view.BlockNumber,
		Params:        view.Params,
		StateHistory:  view.StateHistory,
	}
}

func next(out *domain.Outcome, answer any) domain.Request {
	return domain.Request{
		ExplorationID: out.ExplorationID,
		StateID:       out.StateID,
		Answer:        answer,
		BlockNumber:   out.BlockNumber,
		Params:        out.Params.Without(domain.AnswerKey),
		StateHistory:  out.StateHistory,
	}
}

func TestEngine_YesNoScenario(t *testing.T) {
	ctx := context.Background()
	eng, rec := newEngine(t, yesNo())

	view, err := eng.Start(ctx, "yes-no")
	require.NoError(t, err)
	assert.Equal(t, "A", view.StateID)
	assert.Equal(t, "Say yes.", view.ContentHTML)
	assert.Contains(t, view.PromptHTML, `name="answer"`)
	assert.Equal(t, domain.History{"A"}, view.StateHistory)
	assert.Zero(t, view.BlockNumber)

	// "no" loops back to A.
	out, err := eng.Submit(ctx, submit(view, "no"))
	require.NoError(t, err)
	assert.Equal(t, "A", out.StateID)
	assert.False(t, out.Finished)
	assert.False(t, out.FirstVisit)
	assert.Empty(t, out.ContentHTML, "self-loop must not re-render state content")
	assert.Equal(t, 1, out.BlockNumber)
	assert.Equal(t, domain.History{"A", "A"}, out.StateHistory)

	out, err = eng.Submit(ctx, next(out, "yes"))
	require.NoError(t, err)
	assert.Equal(t, "B", out.StateID)
	assert.True(t, out.FirstVisit)
	assert.Equal(t, "You said yes.", out.ContentHTML)
	assert.NotEmpty(t, out.PromptHTML)
	assert.Equal(t, 2, out.BlockNumber)

	out, err = eng.Submit(ctx, next(out, "whatever"))
	require.NoError(t, err)
	assert.Equal(t, domain.EndDest, out.StateID)
	assert.True(t, out.Finished)
	assert.Empty(t, out.PromptHTML)
	assert.Contains(t, out.ContentHTML, "Done")
	assert.NotContains(t, out.Params, domain.AnswerKey)

	hits := rec.StateHits()
	require.Len(t, hits, 4)
	assert.Equal(t, []string{"A", "A", "B", domain.EndDest},
		[]string{hits[0].StateID, hits[1].StateID, hits[2].StateID, hits[3].StateID})
	assert.True(t, hits[0].FirstVisit)
	assert.False(t, hits[1].FirstVisit)

	answers := rec.Answers()
	require.Len(t, answers, 3)
	assert.Equal(t, "Default", answers[0].RuleID)
	assert.Equal(t, "Equals(yes)", answers[1].RuleID)
	assert.Equal(t, domain.DefaultHandler, answers[1].Handler)
	assert.Equal(t, "yes", answers[1].Answer)
	assert.Equal(t, "B", answers[2].StateID)
}

func TestEngine_FirstVisit(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("loop")
	b.Add("A").Widget("Continue").Otherwise("B")
	b.Add("B").Widget("Continue").Otherwise("A")
	eng, _ := newEngine(t, b.MustBuild())

	view, err := eng.Start(ctx, "loop")
	require.NoError(t, err)

	out, err := eng.Submit(ctx, submit(view, nil))
	require.NoError(t, err)
	assert.True(t, out.FirstVisit, "B first appears")

	out, err = eng.Submit(ctx, next(out, nil))
	require.NoError(t, err)
	assert.Equal(t, "A", out.StateID)
	assert.False(t, out.FirstVisit, "A was the initial state")

	out, err = eng.Submit(ctx, next(out, nil))
	require.NoError(t, err)
	assert.False(t, out.FirstVisit)
	assert.Equal(t, domain.History{"A", "B", "A", "B"}, out.StateHistory)
}

func TestEngine_TerminalAbsorption(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("short").Param("score", 10)
	b.Add("only").Text("Hello {score}").Widget("NumericInput").
		When(dsl.GreaterThan(5), dsl.End, "High {answer}").
		Otherwise(dsl.End, "Low")
	eng, rec := newEngine(t, b.MustBuild())

	for _, tc := range []struct {
		answer   any
		feedback string
	}{
		{answer: 7.0, feedback: "High 7"},
		{answer: "2", feedback: "Low"},
	} {
		out, err := eng.Submit(ctx, domain.Request{
			ExplorationID: "short",
			StateID:       "only",
			Answer:        tc.answer,
			Params:        domain.Params{"score": 10, "extra": true},
			StateHistory:  domain.History{"only"},
		})
		require.NoError(t, err)
		assert.True(t, out.Finished)
		assert.Equal(t, domain.EndDest, out.StateID)
		assert.Empty(t, out.PromptHTML)
		assert.False(t, out.Sticky)
		assert.Equal(t, tc.feedback, out.ContentHTML)
		assert.Equal(t, domain.Params{"score": 10, "extra": true}, out.Params)
		assert.True(t, out.FirstVisit)
	}
	assert.Len(t, rec.StateHits(), 2)
}

func TestEngine_Sticky(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("sticky")
	b.Add("A").Widget("TextInput").
		When(dsl.Equals("same"), "B").
		When(dsl.Equals("other"), "C").
		Otherwise("D")
	b.Add("B").Text("B").Widget("TextInput").Sticky().Otherwise(dsl.End)
	b.Add("C").Text("C").Widget("NumericInput").Sticky().Otherwise(dsl.End)
	b.Add("D").Text("D").Widget("TextInput").Otherwise(dsl.End)
	eng, _ := newEngine(t, b.MustBuild())

	req := domain.Request{ExplorationID: "sticky", StateID: "A", StateHistory: domain.History{"A"}}

	t.Run("same kind keeps the prompt", func(t *testing.T) {
		req.Answer = "same"
		out, err := eng.Submit(ctx, req)
		require.NoError(t, err)
		assert.True(t, out.Sticky)
		assert.Empty(t, out.PromptHTML)
		assert.Equal(t, "B", out.ContentHTML)
	})

	t.Run("different kind always renders", func(t *testing.T) {
		req.Answer = "other"
		out, err := eng.Submit(ctx, req)
		require.NoError(t, err)
		assert.False(t, out.Sticky)
		assert.Contains(t, out.PromptHTML, `type="number"`)
	})

	t.Run("non sticky destination renders", func(t *testing.T) {
		req.Answer = "anything"
		out, err := eng.Submit(ctx, req)
		require.NoError(t, err)
		assert.False(t, out.Sticky)
		assert.Contains(t, out.PromptHTML, `type="text"`)
	})
}

func TestEngine_FeedbackJoinsContent(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("fb")
	b.Add("A").Widget("TextInput").Otherwise("B", "Nice, {answer}.", "Next:")
	b.Add("B").Text("Second").Widget("Continue").Otherwise(dsl.End)
	eng, _ := newEngine(t, b.MustBuild())

	out, err := eng.Submit(ctx, domain.Request{ExplorationID: "fb", StateID: "A", Answer: "<b>Ann</b>"})
	require.NoError(t, err)
	assert.Equal(t, "Nice, &lt;b&gt;Ann&lt;/b&gt;.<br>Next:<br>Second", out.ContentHTML)
	assert.Contains(t, out.ResponseHTML, "&lt;b&gt;Ann&lt;/b&gt;")
}

func TestEngine_ParamChanges(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("params").Param("name", "world").ParamExpr("count", "1")
	b.Add("A").Widget("TextInput").Otherwise("B")
	b.Add("B").Text("Hi {name}, you said {last}").
		Set("last", "{answer}").
		SetExpr("count", "count + 1").
		Widget("Continue").Otherwise(dsl.End)
	eng, _ := newEngine(t, b.MustBuild())

	view, err := eng.Start(ctx, "params")
	require.NoError(t, err)
	assert.Equal(t, "world", view.Params["name"])
	assert.EqualValues(t, 1, view.Params["count"])

	out, err := eng.Submit(ctx, submit(view, "blue"))
	require.NoError(t, err)
	assert.Equal(t, "blue", out.Params["last"])
	assert.EqualValues(t, 2, out.Params["count"])
	assert.Equal(t, "blue", out.Params[domain.AnswerKey], "non-terminal params keep the answer")
	assert.Equal(t, "Hi world, you said blue", out.ContentHTML)

	initial, err := eng.InitParams(ctx, "params")
	require.NoError(t, err)
	assert.Equal(t, domain.Params{"name": "world", "count": int64(1)}, initial)
}

func TestEngine_ParamRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("acc").Param("total", 0)
	b.Add("A").Widget("NumericInput").Otherwise("Acc")
	b.Add("Acc").SetExpr("total", "total + Number(answer)").Widget("NumericInput").
		When(dsl.GreaterThan(100), dsl.End, "Total {total}").
		Otherwise("Acc")
	eng, _ := newEngine(t, b.MustBuild())

	view, err := eng.Start(ctx, "acc")
	require.NoError(t, err)

	first, err := eng.Submit(ctx, submit(view, 5))
	require.NoError(t, err)
	chained, err := eng.Submit(ctx, next(first, 7))
	require.NoError(t, err)

	seeded, err := eng.Submit(ctx, domain.Request{
		ExplorationID: "acc",
		StateID:       first.StateID,
		Answer:        7,
		BlockNumber:   first.BlockNumber,
		Params:        first.Params.Clone().Without(domain.AnswerKey),
		StateHistory:  first.StateHistory,
	})
	require.NoError(t, err)

	if diff := cmp.Diff(chained, seeded); diff != "" {
		t.Errorf("outcome mismatch (-chained +seeded):\n%s", diff)
	}
	assert.EqualValues(t, 12, chained.Params["total"])
}

func TestEngine_Handlers(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("handlers")
	b.Add("A").Widget("TextInput").
		Otherwise("B").
		On("skip").Otherwise("C")
	b.Add("B").Widget("Continue").Otherwise(dsl.End)
	b.Add("C").Widget("Continue").Otherwise(dsl.End)
	eng, rec := newEngine(t, b.MustBuild())

	out, err := eng.Submit(ctx, domain.Request{ExplorationID: "handlers", StateID: "A", Handler: "skip"})
	require.NoError(t, err)
	assert.Equal(t, "C", out.StateID)
	assert.Equal(t, "skip", rec.Answers()[0].Handler)

	_, err = eng.Submit(ctx, domain.Request{ExplorationID: "handlers", StateID: "A", Handler: "hover"})
	var unknown *domain.UnknownHandlerError
	require.ErrorAs(t, err, &unknown)
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
}

func TestEngine_Errors(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("broken")
	b.Add("A").Widget("TextInput").
		When(dsl.Equals("ghost"), "Z").
		When(dsl.Equals("free"), "Free")
	b.Add("Free").Text("No prompt here")
	b.Add("Odd").Widget("Slider").Otherwise(dsl.End)
	eng, rec := newEngine(t, b.MustBuild())

	tests := []struct {
		name   string
		req    domain.Request
		target error
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unknown exploration",
			req:    domain.Request{ExplorationID: "nope", StateID: "A"},
			target: domain.ErrNotFound,
		},
		{
			name:   "unknown state",
			req:    domain.Request{ExplorationID: "broken", StateID: "Q"},
			target: domain.ErrNotFound,
		},
		{
			name:   "no rule matched",
			req:    domain.Request{ExplorationID: "broken", StateID: "A", Answer: "other"},
			target: domain.ErrConfigurationDefect,
			check: func(t *testing.T, err error) {
				var nm *domain.NoRuleMatchedError
				assert.ErrorAs(t, err, &nm)
			},
		},
		{
			name:   "dangling destination",
			req:    domain.Request{ExplorationID: "broken", StateID: "A", Answer: "ghost"},
			target: domain.ErrNotFound,
			check: func(t *testing.T, err error) {
				var dd *domain.DanglingDestinationError
				require.ErrorAs(t, err, &dd)
				assert.Equal(t, "Z", dd.Dest)
				assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
			},
		},
		{
			name:   "answer to a state without prompt",
			req:    domain.Request{ExplorationID: "broken", StateID: "Free", Answer: "x"},
			target: domain.ErrConfigurationDefect,
		},
		{
			name:   "unknown widget",
			req:    domain.Request{ExplorationID: "broken", StateID: "Odd", Answer: "x"},
			target: domain.ErrConfigurationDefect,
			check: func(t *testing.T, err error) {
				var uw *domain.UnknownWidgetError
				require.ErrorAs(t, err, &uw)
				assert.Equal(t, "Slider", uw.Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := eng.Submit(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.target)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}

	assert.Zero(t, rec.Len(), "failed transitions emit nothing")
}

func TestEngine_UnboundParameter(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("unbound")
	b.Add("A").Widget("TextInput").Otherwise("B")
	b.Add("B").Text("Hello {missing}").Widget("Continue").Otherwise(dsl.End)
	eng, rec := newEngine(t, b.MustBuild())

	_, err := eng.Submit(ctx, domain.Request{ExplorationID: "unbound", StateID: "A", Answer: "x"})
	var ub *domain.UnboundParameterError
	require.ErrorAs(t, err, &ub)
	assert.Equal(t, "missing", ub.Name)
	assert.ErrorIs(t, err, domain.ErrUnboundParameter)
	assert.Zero(t, rec.Len())
}

type panicEmitter struct{ analytics.Nop }

func (panicEmitter) RecordStateHit(context.Context, domain.StateHitEvent) { panic("sink down") }

func TestEngine_EmitterPanicIsSwallowed(t *testing.T) {
	store, err := memory.NewExplorationStore(yesNo())
	require.NoError(t, err)
	eng := runtime.NewEngine(store, widgets.Default(), runtime.WithEmitter(panicEmitter{}))

	view, err := eng.Start(context.Background(), "yes-no")
	require.NoError(t, err)
	out, err := eng.Submit(context.Background(), submit(view, "yes"))
	require.NoError(t, err)
	assert.Equal(t, "B", out.StateID)
}

func TestEngine_StartDanglingInit(t *testing.T) {
	exp := yesNo()
	exp.InitStateID = "missing"
	eng, rec := newEngine(t, exp)

	_, err := eng.Start(context.Background(), "yes-no")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
	assert.Zero(t, rec.Len())
}

func TestEngine_RecordFeedback(t *testing.T) {
	ctx := context.Background()
	eng, rec := newEngine(t, yesNo())

	require.NoError(t, eng.RecordFeedback(ctx, "yes-no", "A", "Confusing wording", domain.History{"A"}))
	fb := rec.Feedback()
	require.Len(t, fb, 1)
	assert.Equal(t, "A", fb[0].StateID)
	assert.Equal(t, "Confusing wording", fb[0].Feedback)
	assert.Equal(t, []string{"A"}, fb[0].Extra["state_history"])

	assert.ErrorIs(t, eng.RecordFeedback(ctx, "yes-no", "Q", "x", nil), domain.ErrNotFound)
	assert.ErrorIs(t, eng.RecordFeedback(ctx, "yes-no", "A", "", nil), domain.ErrEmptyFeedback)
	assert.ErrorIs(t, eng.RecordFeedback(ctx, "yes-no", "A", "  \n", nil), domain.ErrEmptyFeedback)
}

func TestEngine_ListExplorations(t *testing.T) {
	private := dsl.New("secret").Private("ed-1")
	private.Add("A").Widget("Continue").Otherwise(dsl.End)
	eng, _ := newEngine(t, yesNo(), private.MustBuild())

	list, err := eng.ListExplorations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ExplorationSummary{{ID: "yes-no", Title: "Yes or no", IsPublic: true}}, list)
}

func TestEngine_StoreIsolation(t *testing.T) {
	store, err := memory.NewExplorationStore(yesNo())
	require.NoError(t, err)
	eng := runtime.NewEngine(store, widgets.Default())

	exp, err := eng.Exploration(context.Background(), "yes-no")
	require.NoError(t, err)
	exp.States[0].Widget.Handlers = nil

	_, err = eng.Submit(context.Background(), domain.Request{ExplorationID: "yes-no", StateID: "A", Answer: "yes"})
	assert.NoError(t, err)
	assert.False(t, errors.Is(err, domain.ErrConfigurationDefect))
}
