package domain

const (
	// EndDest is the distinguished terminal destination marker.
	EndDest = "END"

	// AnswerKey is the reserved parameter key holding the submitted answer
	// while a transition is being resolved.
	AnswerKey = "answer"

	// DefaultHandler is the answer handler used when a request names none.
	DefaultHandler = "submit"

	// InteractiveScope is the widget registry scope for reader-facing widgets.
	InteractiveScope = "interactive"
)
