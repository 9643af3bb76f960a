package events

const (
	// KindSessionStarted identifies the start of a voice session.
	KindSessionStarted Kind = "session.start"
	// KindSessionUpdated identifies a session metadata update.
	KindSessionUpdated Kind = "session.update"
	// KindSessionEnded identifies the end of a voice session.
	KindSessionEnded Kind = "session.end"
	// KindUnknown identifies an unrecognized webhook event type.
	KindUnknown Kind = "unknown"
)

// SessionStarted marks the start of a voice session.
type SessionStarted struct {
	Base
	ConversationID string
	Text           string
}

// NewSessionStarted creates a session started event.
func NewSessionStarted(conversationID, text string) SessionStarted {
	return SessionStarted{Base: NewBase(KindSessionStarted), ConversationID: conversationID, Text: text}
}

// SessionUpdated marks a session metadata update.
type SessionUpdated struct {
	Base
	ConversationID string
	Text           string
}

// NewSessionUpdated creates a session updated event.
func NewSessionUpdated(conversationID, text string) SessionUpdated {
	return SessionUpdated{Base: NewBase(KindSessionUpdated), ConversationID: conversationID, Text: text}
}

// SessionEnded marks the end of a voice session.
type SessionEnded struct {
	Base
	ConversationID string
	Text           string
}

// NewSessionEnded creates a session ended event.
func NewSessionEnded(conversationID, text string) SessionEnded {
	return SessionEnded{Base: NewBase(KindSessionEnded), ConversationID: conversationID, Text: text}
}

// Unknown wraps an unrecognized webhook event type.
type Unknown struct {
	Base
	ConversationID string
	Text           string
	RawType        string
}

// NewUnknown creates an event for an unrecognized webhook type.
func NewUnknown(conversationID, text, rawType string) Unknown {
	return Unknown{Base: NewBase(KindUnknown), ConversationID: conversationID, Text: text, RawType: rawType}
}
