package domain

import "slices"

// Params is the session parameter bag. Values must survive a JSON round trip.
type Params map[string]any

// Clone returns a shallow copy of p. A nil bag clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with key set to value.
func (p Params) With(key string, value any) Params {
	out := p.Clone()
	out[key] = value
	return out
}

// Without returns a copy of p minus key.
func (p Params) Without(key string) Params {
	out := p.Clone()
	delete(out, key)
	return out
}

// History is the ordered list of visited state ids. Revisits repeat ids.
type History []string

// Visited reports whether id already appears in the history.
func (h History) Visited(id string) bool {
	return slices.Contains(h, id)
}

// Append returns a new history extended by id, leaving h untouched.
func (h History) Append(id string) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, id)
}

// Playthrough is a server-held session, used by stateful transports
// (websocket, terminal) that cannot ask the client to carry context.
type Playthrough struct {
	ID            string  `json:"id"`
	ExplorationID string  `json:"exploration_id"`
	StateID       string  `json:"state_id"`
	BlockNumber   int     `json:"block_number"`
	Params        Params  `json:"params"`
	History       History `json:"state_history"`
	Finished      bool    `json:"finished"`
}

// Advance folds an outcome into the playthrough.
func (p *Playthrough) Advance(o *Outcome) {
	p.StateID = o.StateID
	p.BlockNumber = o.BlockNumber
	p.Params = o.Params
	p.History = o.StateHistory
	p.Finished = o.Finished
}
