package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/koscakluka/leasing-agent/core/events"
)

type payload struct {
	ConversationID      string               `json:"conversation_id"`
	Text                string               `json:"text"`
	TurnID              string               `json:"turn_id"`
	Type                string               `json:"type"`
	InterruptionContext *interruptionContext `json:"interruption_context,omitempty"`
}

type interruptionContext struct {
	PreviousTurnInterrupted bool   `json:"previous_turn_interrupted"`
	WordsHeard              int    `json:"words_heard"`
	TextHeard               string `json:"text_heard"`
	AssistantTurnID         string `json:"assistant_turn_id,omitempty"`
}

func decodePayload(body []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	if p.ConversationID == "" {
		return payload{}, fmt.Errorf("payload is missing conversation_id")
	}
	if p.Type == "" {
		return payload{}, fmt.Errorf("payload is missing type")
	}

	return p, nil
}

func (p payload) toEvent() events.Event {
	switch p.Type {
	case "session.start":
		return events.NewSessionStarted(p.ConversationID, p.Text)
	case "session.update":
		return events.NewSessionUpdated(p.ConversationID, p.Text)
	case "session.end":
		return events.NewSessionEnded(p.ConversationID, p.Text)
	case "message":
		var interruption *events.Interruption
		if p.InterruptionContext != nil {
			interruption = &events.Interruption{
				PreviousTurnInterrupted: p.InterruptionContext.PreviousTurnInterrupted,
				WordsHeard:              p.InterruptionContext.WordsHeard,
				TextHeard:               p.InterruptionContext.TextHeard,
				AssistantTurnID:         p.InterruptionContext.AssistantTurnID,
			}
		}
		return events.NewUserMessage(p.ConversationID, p.Text, p.TurnID, interruption)
	default:
		return events.NewUnknown(p.ConversationID, p.Text, p.Type)
	}
}

// streamsResponse reports whether the event type answers with a streamed
// body instead of a plain acknowledgment.
func (p payload) streamsResponse() bool {
	return p.Type == "message" || p.Type == "session.start"
}
