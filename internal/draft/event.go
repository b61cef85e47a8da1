package draft

// EventType names a streaming event.
type EventType string

const (
	EventStatus  EventType = "status"
	EventContent EventType = "content"
	EventError   EventType = "error"
	EventDone    EventType = "done"
)

// Event is one progress report from Stream. Content events carry the
// rendered section; the done event carries the finished draft.
type Event struct {
	Type      EventType `json:"type"`
	Section   string    `json:"section,omitempty"`
	Message   string    `json:"message,omitempty"`
	Content   string    `json:"content,omitempty"`
	Draft     string    `json:"draft,omitempty"`
	WordCount int       `json:"word_count,omitempty"`
}
