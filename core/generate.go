package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/leasing-agent/core/conversations"
	"github.com/koscakluka/leasing-agent/core/events"
	"github.com/koscakluka/leasing-agent/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// generate drives one generation cycle: it prompts the model with the full
// history and the registered tools, streams text chunks to the sink as they
// arrive, executes requested tool calls and feeds the results back until the
// model finishes or the step cap is hit. Turns produced during the cycle are
// committed to the store only on success; the sink is always ended, even on
// a model failure, so the platform-facing channel never hangs.
func (o *Orchestrator) generate(ctx context.Context, conversation *conversations.Conversation, turnID string, sink ResponseSink) error {
	ctx, span := tracer.Start(ctx, "generate response")
	defer span.End()
	defer sink.End()

	history := conversation.History()
	pending := []llms.Turn{}

	for step := range o.maxToolSteps {
		span.AddEvent("generation step", trace.WithAttributes(attribute.Int("step", step)))

		stream := o.llm.PromptWithStream(ctx,
			llms.WithTurns(append(history, pending...)...),
			llms.WithTools(o.registry.Tools()...),
		)

		var message strings.Builder
		toolCalls := []llms.ToolCall{}
		for chunk, err := range stream.Chunks(ctx) {
			if err != nil {
				err = fmt.Errorf("failed to stream llm response: %w", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}

			switch chunk := chunk.(type) {
			case llms.StreamContentChunk:
				message.WriteString(chunk.Content())
				sink.Text(chunk.Content())

			case llms.StreamToolCallChunk:
				toolCalls = append(toolCalls, chunk.ToolCall())
			}
		}

		if len(toolCalls) == 0 {
			pending = append(pending, llms.Turn{
				Role:    llms.RoleAssistant,
				Content: message.String(),
				TurnID:  turnID,
			})
			break
		}

		executed := make([]llms.ToolCall, 0, len(toolCalls))
		for _, toolCall := range toolCalls {
			o.emit(events.NewToolCallStarted(conversation.ID(), toolCall.ID, toolCall.Name, toolCall.Arguments))

			completed := o.registry.Invoke(ctx, toolCall)
			if completed.IsError {
				o.emit(events.NewToolCallFailed(conversation.ID(), completed.ID, completed.Name, completed.Response))
				sink.Debug(fmt.Sprintf("tool %s failed: %s", completed.Name, completed.Response))
			} else {
				o.emit(events.NewToolCallCompleted(conversation.ID(), completed.ID, completed.Name, completed.Response))
				sink.Debug(fmt.Sprintf("tool %s: %s", completed.Name, completed.Response))
			}
			executed = append(executed, completed)
		}

		pending = append(pending, llms.Turn{
			Role:      llms.RoleAssistant,
			Content:   message.String(),
			TurnID:    turnID,
			ToolCalls: executed,
		})
		for _, completed := range executed {
			pending = append(pending, llms.Turn{
				Role:       llms.RoleTool,
				Content:    completed.Response,
				ToolCallID: completed.ID,
				TurnID:     turnID,
			})
		}
	}

	conversation.Append(pending...)
	for _, turn := range pending {
		o.emit(events.NewTurnCommitted(conversation.ID(), string(turn.Role), turn.Content, turn.TurnID))
	}
	span.SetAttributes(attribute.Int("response.committed_turns", len(pending)))

	return nil
}
