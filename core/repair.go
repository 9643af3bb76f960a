package orchestration

import (
	"context"
	"log"

	"github.com/koscakluka/leasing-agent/core/conversations"
	"github.com/koscakluka/leasing-agent/core/events"
	"github.com/koscakluka/leasing-agent/core/llms"
	"go.opentelemetry.io/otel/attribute"
)

// repairInterruption reconciles the history after the platform reports that
// the previous assistant turn was cut off mid-speech. The partial transcript
// the caller actually heard replaces whatever the model generated, since it
// is the ground truth of the conversation so far. The repair completes before
// the new generation cycle starts.
func (o *Orchestrator) repairInterruption(ctx context.Context, conversation *conversations.Conversation, message events.UserMessage) {
	_, span := tracer.Start(ctx, "repair interrupted turn")
	defer span.End()

	interruption := message.Interruption
	span.SetAttributes(
		attribute.String("interruption.assistant_turn_id", interruption.AssistantTurnID),
		attribute.Int("interruption.words_heard", interruption.WordsHeard),
	)

	_, userFound := conversation.FindLast(func(turn llms.Turn) bool {
		return turn.Role == llms.RoleUser && turn.TurnID == interruption.AssistantTurnID
	})
	if !userFound {
		// Nothing to anchor the repair on; non-fatal, generation proceeds
		// against the unmodified history.
		log.Println("Warning: no user turn matches interrupted assistant turn id, skipping repair")
		span.AddEvent("repair anchor missing")
		return
	}

	_, assistantFound := conversation.FindLast(func(turn llms.Turn) bool {
		return turn.Role == llms.RoleAssistant && turn.TurnID == interruption.AssistantTurnID
	})

	correction := llms.Turn{
		Role:    llms.RoleAssistant,
		Content: interruption.TextHeard,
	}
	if assistantFound {
		// The cut-off turn is already stored. The store is append-only, so
		// the correction supersedes it: only the latest assistant turn per
		// turn id is sent to the model.
		correction.TurnID = interruption.AssistantTurnID
		correction.IsCorrection = true
		span.AddEvent("superseding correction appended")
	} else {
		correction.TurnID = message.TurnID
		span.AddEvent("corrective turn appended")
	}

	conversation.Append(correction)
	o.emit(events.NewTurnCommitted(conversation.ID(), string(llms.RoleAssistant), correction.Content, correction.TurnID))
}
