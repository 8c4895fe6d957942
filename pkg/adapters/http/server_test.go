package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/analytics"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dsl"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []*domain.Exploration {
	yesNo := dsl.New("yes-no").Title("Yes or no")
	yesNo.Add("A").Text("Say yes.").Widget("TextInput").
		When(dsl.Equals("yes"), "B").
		Otherwise("A")
	yesNo.Add("B").Text("You said yes.").Widget("TextInput").
		Otherwise(dsl.End, "Done")

	hidden := dsl.New("hidden").Title("Drafts").Private("ed-1")
	hidden.Add("only").Text("Draft").Widget("Continue").Otherwise(dsl.End)

	broken := dsl.New("broken").Title("Broken")
	broken.Add("start").Widget("TextInput").Otherwise("nowhere")

	return []*domain.Exploration{yesNo.MustBuild(), hidden.MustBuild(), broken.MustBuild()}
}

type testServer struct {
	handler  http.Handler
	recorder *analytics.Recorder
	server   *Server
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	store, err := memory.NewExplorationStore(fixtures()...)
	require.NoError(t, err)

	rec := analytics.NewRecorder()
	streams := NewStreamManager(nil)
	eng := runtime.NewEngine(store, widgets.Default(),
		runtime.WithEmitter(analytics.Multi{rec, streams}))

	opts = append([]Option{WithStreams(streams), WithVersion("1.2.3")}, opts...)
	srv := NewServer(eng, opts...)
	h, err := srv.Handler()
	require.NoError(t, err)
	return &testServer{handler: h, recorder: rec, server: srv}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(data)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func answerBody(answer any, params domain.Params, history domain.History, block int) map[string]any {
	return map[string]any{
		"answer":        answer,
		"block_number":  block,
		"params":        params,
		"state_history": history,
	}
}

func TestServer_HealthAndInfo(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[Info](t, w)
	assert.Equal(t, "lattice-http", info.App)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "1.0.0", info.APIVersion)
}

func TestServer_ListExplorations(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/explorations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[[]domain.ExplorationSummary](t, w)
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"yes-no", "broken"}, ids)
}

func TestServer_StartExploration(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/explorations/yes-no", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[domain.InitialView](t, w)
	assert.Equal(t, "A", view.StateID)
	assert.Equal(t, "Yes or no", view.Title)
	assert.Equal(t, domain.History{"A"}, view.StateHistory)
	assert.Contains(t, view.PromptHTML, "text-input")
	assert.Equal(t, 1, ts.recorder.Len())

	w = ts.do(t, http.MethodGet, "/explorations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, http.StatusNotFound, errResp.Status)
	assert.Contains(t, errResp.Error, "missing")
}

func TestServer_SubmitAnswer_Scenario(t *testing.T) {
	ts := newTestServer(t)

	view := decode[domain.InitialView](t, ts.do(t, http.MethodGet, "/explorations/yes-no", nil))

	w := ts.do(t, http.MethodPost, "/explorations/yes-no/states/A",
		answerBody("no", view.Params, view.StateHistory, view.BlockNumber))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[domain.Outcome](t, w)
	assert.Equal(t, "A", out.StateID)
	assert.False(t, out.FirstVisit)
	assert.Equal(t, 1, out.BlockNumber)

	w = ts.do(t, http.MethodPost, "/explorations/yes-no/states/A",
		answerBody("yes", out.Params.Without(domain.AnswerKey), out.StateHistory, out.BlockNumber))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out = decode[domain.Outcome](t, w)
	assert.Equal(t, "B", out.StateID)
	assert.True(t, out.FirstVisit)

	w = ts.do(t, http.MethodPost, "/explorations/yes-no/states/B",
		answerBody("anything", out.Params.Without(domain.AnswerKey), out.StateHistory, out.BlockNumber))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out = decode[domain.Outcome](t, w)
	assert.True(t, out.Finished)
	assert.Equal(t, domain.EndDest, out.StateID)
	assert.Equal(t, "Done", out.ContentHTML)
	assert.Equal(t, domain.History{"A", "A", "B", domain.EndDest}, out.StateHistory)
	assert.Equal(t, 3, out.BlockNumber)

	assert.Len(t, ts.recorder.StateHits(), 4)
	assert.Len(t, ts.recorder.Answers(), 3)
}

func TestServer_SubmitAnswer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"malformed json", "/explorations/yes-no/states/A", `{"answer":`, http.StatusBadRequest},
		{"missing answer", "/explorations/yes-no/states/A", `{"block_number":0}`, http.StatusBadRequest},
		{"null answer", "/explorations/yes-no/states/A", `{"answer":null}`, http.StatusBadRequest},
		{"negative block number", "/explorations/yes-no/states/A", `{"answer":"x","block_number":-1}`, http.StatusBadRequest},
		{"empty history entry", "/explorations/yes-no/states/A", `{"answer":"x","state_history":["A",""]}`, http.StatusBadRequest},
		{"unknown exploration", "/explorations/nope/states/A", `{"answer":"x"}`, http.StatusNotFound},
		{"unknown state", "/explorations/yes-no/states/Z", `{"answer":"x"}`, http.StatusNotFound},
		{"unknown handler", "/explorations/yes-no/states/A", `{"answer":"x","handler":"click"}`, http.StatusInternalServerError},
		{"dangling destination", "/explorations/broken/states/start", `{"answer":"x"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			errResp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.status, errResp.Status)
			assert.NotEmpty(t, errResp.Error)
			assert.Zero(t, ts.recorder.Len(), "failed requests emit nothing")
		})
	}
}

func TestServer_SubmitAnswer_Sanitized(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/explorations/yes-no/states/A", `{"answer":"ye\u0007s","state_history":["A"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[domain.Outcome](t, w)
	assert.Equal(t, "B", out.StateID, "control characters are stripped before classification")

	t.Setenv(sanitize.EnvMaxAnswerSize, "4")
	w = ts.do(t, http.MethodPost, "/explorations/yes-no/states/A", `{"answer":"too long"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SubmitFeedback(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/explorations/yes-no/states/A/feedback",
		map[string]any{"feedback": "Confusing wording", "state_history": []string{"A"}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	fb := ts.recorder.Feedback()
	require.Len(t, fb, 1)
	assert.Equal(t, "Confusing wording", fb[0].Feedback)
	assert.Equal(t, "A", fb[0].StateID)

	w = ts.do(t, http.MethodPost, "/explorations/yes-no/states/A/feedback", `{"feedback":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/explorations/yes-no/states/Z/feedback", `{"feedback":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_OpenAPI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Spec(), w.Body.Bytes())

	doc, err := LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/explorations/{explorationId}/states/{stateId}"))

	w = ts.do(t, http.MethodGet, "/swagger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestServer_NotFoundAndCORS(t *testing.T) {
	ts := newTestServer(t, WithCORSOrigin("https://reader.example"))

	w := ts.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodOptions, "/explorations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://reader.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&BadRequestError{Err: errors.New("x")}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", sanitize.ErrAnswerTooLarge), http.StatusBadRequest},
		{domain.ErrEmptyFeedback, http.StatusBadRequest},
		{&domain.NotFoundError{Kind: "exploration", ID: "x"}, http.StatusNotFound},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{&domain.DanglingDestinationError{ExplorationID: "e", Dest: "x"}, http.StatusInternalServerError},
		{&domain.NoRuleMatchedError{}, http.StatusInternalServerError},
		{&domain.UnboundParameterError{Name: "n"}, http.StatusInternalServerError},
		{session.ErrFinished, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestAnswerRequest_Bind(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))

	body := AnswerRequest{Answer: float64(0), StateHistory: domain.History{"A"}}
	require.NoError(t, body.Bind(req), "zero is a valid answer")

	body = AnswerRequest{Answer: "x", Handler: strings.Repeat("h", 65)}
	var bad *BadRequestError
	assert.ErrorAs(t, body.Bind(req), &bad)
}
