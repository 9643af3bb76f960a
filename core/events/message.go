package events

// KindUserMessage identifies a finished user utterance.
const KindUserMessage Kind = "message"

// Interruption describes a previous assistant turn that was cut off
// mid-speech, with the partial transcript the user actually heard.
type Interruption struct {
	PreviousTurnInterrupted bool
	WordsHeard              int
	TextHeard               string
	// AssistantTurnID correlates to the assistant turn that was cut off.
	AssistantTurnID string
}

// UserMessage is a finished user utterance that warrants a response.
type UserMessage struct {
	Base
	ConversationID string
	Text           string
	// TurnID is the correlation id the platform assigned to this exchange.
	TurnID string
	// Interruption is set when the platform reports the previous assistant
	// turn did not finish playing.
	Interruption *Interruption
}

// NewUserMessage creates a user message event.
func NewUserMessage(conversationID, text, turnID string, interruption *Interruption) UserMessage {
	return UserMessage{
		Base:           NewBase(KindUserMessage),
		ConversationID: conversationID,
		Text:           text,
		TurnID:         turnID,
		Interruption:   interruption,
	}
}
