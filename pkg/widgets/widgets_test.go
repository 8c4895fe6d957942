package widgets_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := widgets.Default()
	for _, kind := range []string{"TextInput", "NumericInput", "MultipleChoiceInput", "Continue"} {
		w, err := reg.Get(domain.InteractiveScope, kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, w.Kind())
	}

	_, err := reg.Get(domain.InteractiveScope, "Slider")
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
}

func TestTextInput(t *testing.T) {
	w := widgets.TextInput{}
	params := domain.Params{"who": "Ada"}

	prompt, err := w.RenderPrompt(map[string]any{"placeholder": "Answer, {who}"}, params)
	require.NoError(t, err)
	assert.Contains(t, prompt, `placeholder="Answer, Ada"`)
	assert.Contains(t, prompt, `<input type="text"`)

	prompt, err = w.RenderPrompt(map[string]any{"rows": 4}, params)
	require.NoError(t, err)
	assert.Contains(t, prompt, `<textarea name="answer" rows="4"`)

	resp, aux, err := w.RenderResponse(nil, params, "<script>")
	require.NoError(t, err)
	assert.Equal(t, `<span class="lattice-answer">&lt;script&gt;</span>`, resp)
	assert.Empty(t, aux)

	sum, err := w.SummarizeAnswer(nil, params, "  yes ")
	require.NoError(t, err)
	assert.Equal(t, "yes", sum)

	_, err = w.RenderPrompt(map[string]any{"placeholder": "{missing}"}, params)
	assert.ErrorIs(t, err, domain.ErrUnboundParameter)
}

func TestNumericInput(t *testing.T) {
	w := widgets.NumericInput{}

	for _, answer := range []any{4.5, "4.50", json.Number("4.5")} {
		sum, err := w.SummarizeAnswer(nil, nil, answer)
		require.NoError(t, err)
		assert.Equal(t, "4.5", sum)
	}

	sum, err := w.SummarizeAnswer(nil, nil, "many")
	require.NoError(t, err)
	assert.Equal(t, "many", sum)

	prompt, err := w.RenderPrompt(map[string]any{"min": 0, "max": "10"}, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, `min="0"`)
	assert.Contains(t, prompt, `max="10"`)
}

func TestMultipleChoiceInput(t *testing.T) {
	w := widgets.MultipleChoiceInput{}
	args := map[string]any{"choices": []any{"red", "green {shade}"}}
	params := domain.Params{"shade": "dark"}

	prompt, err := w.RenderPrompt(args, params)
	require.NoError(t, err)
	assert.Contains(t, prompt, `value="0"> red`)
	assert.Contains(t, prompt, `value="1"> green dark`)

	sum, err := w.SummarizeAnswer(args, params, float64(1))
	require.NoError(t, err)
	assert.Equal(t, "green dark", sum)

	sum, err = w.SummarizeAnswer(args, params, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", sum, "out of range index is recorded verbatim")

	resp, _, err := w.RenderResponse(args, params, 0)
	require.NoError(t, err)
	assert.Equal(t, `<span class="lattice-answer">red</span>`, resp)

	_, err = w.RenderPrompt(map[string]any{"choices": map[string]any{"a": 1}}, nil)
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect)
}

func TestContinue(t *testing.T) {
	w := widgets.Continue{}

	prompt, err := w.RenderPrompt(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, ">Continue</button>")

	resp, aux, err := w.RenderResponse(nil, nil, "")
	require.NoError(t, err)
	assert.Empty(t, resp)
	assert.Empty(t, aux)

	sum, err := w.SummarizeAnswer(map[string]any{"button_text": "Next"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Next", sum)
}

func TestSummaries_AreStable(t *testing.T) {
	args := map[string]any{"choices": []any{"a", "b"}}
	for _, w := range widgets.Builtins() {
		first, err := w.SummarizeAnswer(args, nil, 1)
		require.NoError(t, err)
		second, err := w.SummarizeAnswer(args, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, first, second, w.Kind())
	}
}
