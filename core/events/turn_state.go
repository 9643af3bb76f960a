package events

// KindTurnCommitted identifies a turn appended to a conversation's history.
const KindTurnCommitted Kind = "turn_state.committed"

// TurnCommitted marks a turn appended to a conversation's history.
type TurnCommitted struct {
	Base
	ConversationID string
	Role           string
	Content        string
	TurnID         string
}

// NewTurnCommitted creates a turn committed event.
func NewTurnCommitted(conversationID, role, content, turnID string) TurnCommitted {
	return TurnCommitted{Base: NewBase(KindTurnCommitted), ConversationID: conversationID, Role: role, Content: content, TurnID: turnID}
}
