package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/google/uuid"
)

// Engine is the engine surface the player needs.
type Engine interface {
	ports.Engine
	Exploration(ctx context.Context, id string) (*domain.Exploration, error)
}

// PlayOptions selects what the player runs.
type PlayOptions struct {
	ExplorationID string
	// SessionID persists progress under that name. Empty plays a throwaway session.
	SessionID string
	// Fresh discards any saved progress first.
	Fresh bool
	// Quiet suppresses the banner and status messages. Input errors are
	// always shown.
	Quiet bool
	// Reload delivers ids of explorations changed on disk.
	Reload <-chan string
}

// Player runs an exploration in the terminal.
type Player struct {
	engine   Engine
	sessions *session.Manager
	in       io.Reader
	out      io.Writer
	render   tui.Renderer
	logger   *slog.Logger
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) PlayerOption {
	return func(p *Player) {
		p.in, p.out = in, out
	}
}

// WithRenderer sets the markdown renderer.
func WithRenderer(r tui.Renderer) PlayerOption {
	return func(p *Player) {
		p.render = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlayer creates a player whose playthroughs are kept in store.
func NewPlayer(engine Engine, store ports.SessionStore, opts ...PlayerOption) *Player {
	p := &Player{
		engine: engine,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.render == nil {
		p.render = tui.Plain
		if IsTerminal(p.out) {
			p.render = tui.NewRenderer(TerminalWidth(p.out))
		}
	}
	p.sessions = session.NewManager(engine, store, session.WithLogger(p.logger))
	return p
}

func (p *Player) system(opts PlayOptions, format string, args ...any) {
	if opts.Quiet {
		return
	}
	fmt.Fprintf(p.out, ">>> %s\n", fmt.Sprintf(format, args...))
}

// warn reports rejected input; Quiet does not hide it.
func (p *Player) warn(format string, args ...any) {
	fmt.Fprintf(p.out, "!!! %s\n", fmt.Sprintf(format, args...))
}

func (p *Player) show(markdown string) {
	if strings.TrimSpace(markdown) == "" {
		return
	}
	out, err := p.render(markdown)
	if err != nil {
		out = markdown + "\n"
	}
	fmt.Fprint(p.out, out)
}

// Play runs the exploration until it finishes, input ends or ctx is done.
// Named sessions keep their progress in the session store between runs.
func (p *Player) Play(ctx context.Context, opts PlayOptions) error {
	sessionID := opts.SessionID
	ephemeral := sessionID == ""
	if ephemeral {
		sessionID = uuid.NewString()
		defer func() { _ = p.sessions.Delete(context.WithoutCancel(ctx), sessionID) }()
	} else if opts.Fresh {
		if err := p.sessions.Delete(ctx, sessionID); err != nil {
			return err
		}
	}
	logger := p.logger.With("session_id", sessionID, "exploration_id", opts.ExplorationID)

	if !opts.Quiet {
		tui.PrintBanner(p.out)
	}

	play, err := p.begin(ctx, opts, sessionID)
	if err != nil {
		return err
	}
	if play.Finished {
		p.system(opts, "Session '%s' already finished. Use --fresh to start over.", sessionID)
		return nil
	}

	lines := readLines(ctx, p.in)
	for {
		exp, err := p.engine.Exploration(ctx, opts.ExplorationID)
		if err != nil {
			return err
		}
		state, err := exp.StateByID(play.StateID)
		if err != nil {
			// The state was removed while we were playing.
			logger.Warn("current state disappeared, restarting", "state_id", play.StateID)
			p.system(opts, "State '%s' no longer exists, restarting.", play.StateID)
			if err := p.sessions.Delete(ctx, sessionID); err != nil {
				return err
			}
			if play, err = p.begin(ctx, opts, sessionID); err != nil {
				return err
			}
			continue
		}
		if state.Widget == nil {
			return &domain.MissingPromptError{ExplorationID: exp.ID, StateID: state.ID}
		}

		q := newQuestion(state.Widget, play.Params)
		fmt.Fprint(p.out, q.hint())

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id, ok := <-opts.Reload:
			if !ok {
				opts.Reload = nil
			} else if id == opts.ExplorationID {
				fmt.Fprintln(p.out)
				p.system(opts, "Exploration changed, reloading.")
			}
			continue
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(p.out)
				p.saved(opts, ephemeral, sessionID)
				return nil
			}
			line = l
		}

		text, err := sanitize.String(line)
		if err != nil {
			p.warn("%v", err)
			continue
		}
		trimmed := strings.TrimSpace(text)
		switch {
		case trimmed == "q" || trimmed == "quit" || trimmed == "exit":
			p.saved(opts, ephemeral, sessionID)
			return nil
		case strings.HasPrefix(trimmed, "/feedback"):
			fb := strings.TrimSpace(strings.TrimPrefix(trimmed, "/feedback"))
			if fb == "" {
				p.warn("Usage: /feedback <text>")
				continue
			}
			if err := p.sessions.Feedback(ctx, sessionID, fb); err != nil {
				return err
			}
			p.system(opts, "Thanks for the feedback.")
			continue
		}

		answer, err := q.parse(text)
		if err != nil {
			p.warn("%v", err)
			continue
		}
		out, err := p.sessions.Answer(ctx, sessionID, "", answer)
		if err != nil {
			return err
		}
		logger.Debug("answer resolved", "state_id", out.StateID, "block_number", out.BlockNumber)
		play.Advance(out)
		p.show(out.ContentHTML)

		if out.Finished {
			p.system(opts, "Exploration finished.")
			return nil
		}
	}
}

// begin starts or resumes the session and shows where the reader stands.
func (p *Player) begin(ctx context.Context, opts PlayOptions, sessionID string) (*domain.Playthrough, error) {
	play, view, err := p.sessions.Begin(ctx, sessionID, opts.ExplorationID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		p.system(opts, "Resuming at '%s' state.", play.StateID)
		return play, nil
	}
	if opts.SessionID != "" {
		p.system(opts, "Session '%s' active.", sessionID)
	}
	if view.Title != "" {
		p.show("# " + view.Title)
	}
	p.show(view.ContentHTML)
	return play, nil
}

func (p *Player) saved(opts PlayOptions, ephemeral bool, sessionID string) {
	if !ephemeral {
		p.system(opts, "Progress saved in session '%s'.", sessionID)
	}
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 4096), sanitize.MaxAnswerSize()*4+1)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// question turns a prompt into terminal input rules.
type question struct {
	kind    string
	choices []string
	button  string
}

func newQuestion(prompt *domain.Prompt, params domain.Params) question {
	q := question{kind: prompt.WidgetID, button: "Continue"}
	args := prompt.CustomizationArgs
	switch raw := args["choices"].(type) {
	case []any:
		for _, c := range raw {
			q.choices = append(q.choices, interpolate(content.Stringify(c), params))
		}
	case []string:
		for _, c := range raw {
			q.choices = append(q.choices, interpolate(c, params))
		}
	}
	if b, ok := args["button_text"].(string); ok && b != "" {
		q.button = interpolate(b, params)
	}
	return q
}

func interpolate(s string, params domain.Params) string {
	out, err := content.Interpolate(s, params)
	if err != nil {
		return s
	}
	return out
}

func (q question) hint() string {
	var b strings.Builder
	switch q.kind {
	case "MultipleChoiceInput":
		for i, c := range q.choices {
			fmt.Fprintf(&b, "  %d) %s\n", i+1, c)
		}
	case "Continue":
		fmt.Fprintf(&b, "[Enter] %s\n", q.button)
	case "NumericInput":
		b.WriteString("(number)\n")
	}
	b.WriteString("> ")
	return b.String()
}

var errNotANumber = errors.New("please enter a number")

func (q question) parse(line string) (any, error) {
	line = strings.TrimSpace(line)
	switch q.kind {
	case "Continue":
		return "", nil
	case "NumericInput":
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, errNotANumber
		}
		return f, nil
	case "MultipleChoiceInput":
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.choices) {
			return n - 1, nil
		}
		for i, c := range q.choices {
			if strings.EqualFold(c, line) {
				return i, nil
			}
		}
		return nil, fmt.Errorf("please pick a number between 1 and %d", len(q.choices))
	}
	return line, nil
}
