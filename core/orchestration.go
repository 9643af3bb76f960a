package orchestration

import (
	"context"
	"fmt"
	"log"

	"github.com/koscakluka/leasing-agent/core/capabilities"
	"github.com/koscakluka/leasing-agent/core/conversations"
	"github.com/koscakluka/leasing-agent/core/events"
	"github.com/koscakluka/leasing-agent/core/llms"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultSystemPrompt seeds every new conversation's history.
const DefaultSystemPrompt = "You are a friendly leasing agent for an apartment community. " +
	"You help callers find available units, check whether they pre-qualify, and book viewing appointments. " +
	"Keep responses short and conversational; they are spoken aloud over the phone."

const defaultWelcomeMessage = "Hi, thanks for calling! I can help you find an apartment, " +
	"check if you pre-qualify, and book a viewing. What are you looking for?"

// LLM is a streaming model client.
type LLM interface {
	PromptWithStream(ctx context.Context, opts ...llms.PromptOption) llms.Stream
}

// ResponseSink receives the platform-facing output of one event: text chunks
// for speech synthesis, advisory debug messages, and an explicit end marker.
type ResponseSink interface {
	Text(chunk string)
	Debug(message string)
	End()
}

// Orchestrator routes webhook events to the conversation store, the
// interruption repair step and the generation cycle.
type Orchestrator struct {
	store    *conversations.Store
	llm      LLM
	registry *capabilities.Registry

	welcomeMessage    string
	maxToolSteps      int
	evictOnSessionEnd bool

	onEvent func(events.Event)
}

func NewOrchestrator(store *conversations.Store, llm LLM, registry *capabilities.Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		llm:            llm,
		registry:       registry,
		welcomeMessage: defaultWelcomeMessage,
		maxToolSteps:   defaultMaxToolSteps,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// HandleEvent applies one webhook event to the conversation it belongs to.
// The conversation's owner lock is held for the whole event, including model
// and tool I/O, so events for the same conversation id never interleave;
// distinct conversations proceed fully in parallel.
func (o *Orchestrator) HandleEvent(ctx context.Context, event events.Event, sink ResponseSink) error {
	ctx, span := tracer.Start(ctx, "handle event")
	defer span.End()
	span.SetAttributes(attribute.String("event.kind", string(event.Kind())))

	conversationID, text, turnID := eventPayload(event)
	if conversationID == "" {
		return fmt.Errorf("event has no conversation id")
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	conversation := o.store.GetOrCreate(conversationID)
	conversation.Acquire()
	defer conversation.Release()

	if message, ok := event.(events.UserMessage); ok {
		if message.Interruption != nil && message.Interruption.PreviousTurnInterrupted {
			o.repairInterruption(ctx, conversation, message)
		}
	}

	// The history reflects every inbound payload's text, lifecycle events
	// included; their text field is empty in practice.
	if text != "" {
		conversation.Append(llms.Turn{Role: llms.RoleUser, Content: text, TurnID: turnID})
		o.emit(events.NewTurnCommitted(conversationID, string(llms.RoleUser), text, turnID))
	}

	switch typedEvent := event.(type) {
	case events.SessionStarted:
		sink.Text(o.welcomeMessage)
		conversation.Append(llms.Turn{Role: llms.RoleAssistant, Content: o.welcomeMessage})
		o.emit(events.NewTurnCommitted(conversationID, string(llms.RoleAssistant), o.welcomeMessage, ""))
		sink.End()
		return nil

	case events.SessionUpdated:
		return nil

	case events.SessionEnded:
		if o.evictOnSessionEnd {
			o.store.Evict(conversationID)
			span.AddEvent("conversation evicted")
		}
		return nil

	case events.UserMessage:
		return o.generate(ctx, conversation, typedEvent.TurnID, sink)

	default:
		log.Println("Warning: unhandled event kind:", event.Kind())
		return nil
	}
}

func eventPayload(event events.Event) (conversationID, text, turnID string) {
	switch typedEvent := event.(type) {
	case events.SessionStarted:
		return typedEvent.ConversationID, typedEvent.Text, ""
	case events.SessionUpdated:
		return typedEvent.ConversationID, typedEvent.Text, ""
	case events.SessionEnded:
		return typedEvent.ConversationID, typedEvent.Text, ""
	case events.UserMessage:
		return typedEvent.ConversationID, typedEvent.Text, typedEvent.TurnID
	case events.Unknown:
		return typedEvent.ConversationID, typedEvent.Text, ""
	}

	return "", "", ""
}

func (o *Orchestrator) emit(event events.Event) {
	if o.onEvent == nil {
		return
	}

	o.onEvent(event)
}
