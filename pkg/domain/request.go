package domain

// Request is one submitted answer together with the caller-held session.
type Request struct {
	ExplorationID string  `json:"exploration_id"`
	StateID       string  `json:"state_id"`
	Answer        any     `json:"answer"`
	Handler       string  `json:"handler,omitempty"`
	BlockNumber   int     `json:"block_number"`
	Params        Params  `json:"params"`
	StateHistory  History `json:"state_history"`
}

// Outcome is the result of resolving a Request. It is never persisted by the engine.
type Outcome struct {
	ExplorationID  string  `json:"exploration_id"`
	StateID        string  `json:"state_id"`
	PromptHTML     string  `json:"prompt_html"`
	ContentHTML    string  `json:"content_html"`
	ResponseHTML   string  `json:"response_html"`
	ResponseIframe string  `json:"response_iframe"`
	Params         Params  `json:"params"`
	BlockNumber    int     `json:"block_number"`
	Finished       bool    `json:"finished"`
	Sticky         bool    `json:"sticky"`
	FirstVisit     bool    `json:"first_visit"`
	StateHistory   History `json:"state_history"`
}

// InitialView is what a participant sees when entering an exploration.
type InitialView struct {
	ExplorationID string  `json:"exploration_id"`
	Title         string  `json:"title"`
	StateID       string  `json:"state_id"`
	ContentHTML   string  `json:"content_html"`
	PromptHTML    string  `json:"prompt_html"`
	Params        Params  `json:"params"`
	BlockNumber   int     `json:"block_number"`
	StateHistory  History `json:"state_history"`
}
