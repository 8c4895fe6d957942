package domain

// Exploration is a directed graph of States.
// The engine only reads it; it never changes for the lifetime of a session.
type Exploration struct {
	ID          string        `json:"id" yaml:"id" mapstructure:"id"`
	Title       string        `json:"title" yaml:"title" mapstructure:"title"`
	InitStateID string        `json:"init_state" yaml:"init_state" mapstructure:"init_state"`
	IsPublic    bool          `json:"is_public" yaml:"is_public" mapstructure:"is_public"`
	EditorIDs   []string      `json:"editor_ids,omitempty" yaml:"editor_ids,omitempty" mapstructure:"editor_ids"`
	Params      []ParamChange `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	States      []State       `json:"states" yaml:"states" mapstructure:"states"`
}

// StateByID returns the state with the given id.
func (e *Exploration) StateByID(id string) (*State, error) {
	for i := range e.States {
		if e.States[i].ID == id {
			return &e.States[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "state", ExplorationID: e.ID, ID: id}
}

// HasState reports whether id names a state of the exploration.
func (e *Exploration) HasState(id string) bool {
	_, err := e.StateByID(id)
	return err == nil
}

// Summary returns the listing view of the exploration.
func (e *Exploration) Summary() ExplorationSummary {
	return ExplorationSummary{ID: e.ID, Title: e.Title, IsPublic: e.IsPublic}
}

// ExplorationSummary is the listing view of an exploration.
type ExplorationSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsPublic bool   `json:"is_public"`
}

// State is a node of the exploration graph.
// A nil Widget makes the state a pass-through: it renders no prompt.
type State struct {
	ID           string         `json:"id" yaml:"id" mapstructure:"id"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Content      []ContentBlock `json:"content,omitempty" yaml:"content,omitempty" mapstructure:"content"`
	Widget       *Prompt        `json:"widget,omitempty" yaml:"widget,omitempty" mapstructure:"widget"`
	ParamChanges []ParamChange  `json:"param_changes,omitempty" yaml:"param_changes,omitempty" mapstructure:"param_changes"`
}

// ContentBlock types.
const (
	BlockText     = "text"
	BlockMarkdown = "markdown"
)

// ContentBlock is one typed fragment of state content.
type ContentBlock struct {
	Type  string `json:"type" yaml:"type" mapstructure:"type"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// Prompt is the interactive widget configuration of a state.
type Prompt struct {
	WidgetID          string          `json:"widget_id" yaml:"widget_id" mapstructure:"widget_id"`
	CustomizationArgs map[string]any  `json:"customization_args,omitempty" yaml:"customization_args,omitempty" mapstructure:"customization_args"`
	Sticky            bool            `json:"sticky" yaml:"sticky" mapstructure:"sticky"`
	Handlers          []AnswerHandler `json:"handlers,omitempty" yaml:"handlers,omitempty" mapstructure:"handlers"`

	// Rules is shorthand for a single DefaultHandler rule list.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`
}

// HandlerRules returns the ordered rule list registered for the named handler.
func (p *Prompt) HandlerRules(name string) ([]Rule, bool) {
	if name == "" {
		name = DefaultHandler
	}
	for _, h := range p.Handlers {
		if h.Name == name {
			return h.Rules, true
		}
	}
	if name == DefaultHandler && len(p.Rules) > 0 {
		return p.Rules, true
	}
	return nil, false
}

// AnswerHandler groups the rules evaluated for one kind of reader action.
type AnswerHandler struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Rules []Rule `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// Rule routes a matching answer to its destination.
type Rule struct {
	Name      string    `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Predicate Predicate `json:"if" yaml:"if" mapstructure:"if"`
	Dest      string    `json:"dest" yaml:"dest" mapstructure:"dest"`
	Feedback  []string  `json:"feedback,omitempty" yaml:"feedback,omitempty" mapstructure:"feedback"`
}

// ID is the identity recorded for the rule in analytics.
func (r Rule) ID() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Predicate.String()
}

// IsTerminal reports whether the rule ends the exploration.
func (r Rule) IsTerminal() bool {
	return r.Dest == EndDest
}

// ParamChange assigns a parameter, either from a literal Value
// (string values may carry {placeholders}) or from an expression.
type ParamChange struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Expr  string `json:"expr,omitempty" yaml:"expr,omitempty" mapstructure:"expr"`
}

// Clone returns a copy that shares no slices or top-level maps with e.
func (e *Exploration) Clone() *Exploration {
	out := *e
	out.EditorIDs = append([]string(nil), e.EditorIDs...)
	out.Params = append([]ParamChange(nil), e.Params...)
	out.States = make([]State, len(e.States))
	for i, s := range e.States {
		out.States[i] = s.clone()
	}
	return &out
}

func (s State) clone() State {
	s.Content = append([]ContentBlock(nil), s.Content...)
	s.ParamChanges = append([]ParamChange(nil), s.ParamChanges...)
	if s.Widget != nil {
		w := *s.Widget
		if w.CustomizationArgs != nil {
			args := make(map[string]any, len(w.CustomizationArgs))
			for k, v := range w.CustomizationArgs {
				args[k] = v
			}
			w.CustomizationArgs = args
		}
		w.Rules = cloneRules(w.Rules)
		w.Handlers = append([]AnswerHandler(nil), w.Handlers...)
		for i := range w.Handlers {
			w.Handlers[i].Rules = cloneRules(w.Handlers[i].Rules)
		}
		s.Widget = &w
	}
	return s
}

func cloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Feedback = append([]string(nil), r.Feedback...)
		r.Predicate.Values = append([]any(nil), r.Predicate.Values...)
		out[i] = r
	}
	return out
}
