package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/koscakluka/leasing-agent/core/capabilities"
	"github.com/koscakluka/leasing-agent/core/conversations"
	"github.com/koscakluka/leasing-agent/core/events"
	"github.com/koscakluka/leasing-agent/core/llms"
)

type echoParameters struct {
	Note string `json:"note"`
}

func echoTool(t *testing.T, calls *int) llms.Tool {
	t.Helper()
	return llms.NewTool("echo", "Echo the note back",
		func(_ context.Context, parameters echoParameters) (string, error) {
			*calls++
			return "echo: " + parameters.Note, nil
		})
}

func TestGenerationExecutesToolCalls(t *testing.T) {
	calls := 0
	registry := capabilities.NewRegistry(echoTool(t, &calls))

	llm := &scriptedLLM{cycles: []scriptedCycle{
		{chunks: []llms.StreamChunk{
			toolCallChunk{ID: "call-1", Name: "echo", Arguments: `{"note":"hello"}`},
		}},
		{chunks: []llms.StreamChunk{contentChunk("The echo says hello.")}},
	}}

	store := conversations.NewStore("system prompt")
	orchestrator := NewOrchestrator(store, llm, registry)
	sink := &recordingSink{}

	err := orchestrator.HandleEvent(t.Context(), events.NewUserMessage("c1", "try the echo", "t1", nil), sink)
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected the tool to run once, got %d", calls)
	}
	if sink.text() != "The echo says hello." {
		t.Fatalf("expected the final response to be streamed, got %q", sink.text())
	}
	if len(sink.debugs) != 1 || !strings.Contains(sink.debugs[0], "echo: hello") {
		t.Fatalf("expected a debug chunk with the tool result, got %v", sink.debugs)
	}

	conversation, _ := store.Get("c1")
	history := conversation.History()
	// system, user, assistant (tool request), tool result, assistant (answer)
	if len(history) != 5 {
		t.Fatalf("expected 5 turns after the tool cycle, got %d", len(history))
	}
	if len(history[2].ToolCalls) != 1 || history[2].ToolCalls[0].Response != "echo: hello" {
		t.Fatalf("expected the assistant turn to record the executed call, got %+v", history[2])
	}
	if history[3].Role != llms.RoleTool || history[3].ToolCallID != "call-1" || history[3].Content != "echo: hello" {
		t.Fatalf("expected a tool turn referencing the call, got %+v", history[3])
	}
	if history[4].Role != llms.RoleAssistant || history[4].Content != "The echo says hello." {
		t.Fatalf("expected the final assistant turn, got %+v", history[4])
	}

	// The second prompt must include the tool result so the model can answer.
	if len(llm.prompts) != 2 {
		t.Fatalf("expected exactly two prompts, got %d", len(llm.prompts))
	}
	secondPrompt := llm.prompts[1]
	if secondPrompt[len(secondPrompt)-1].Role != llms.RoleTool {
		t.Fatalf("expected the tool result in the follow-up prompt, got %+v", secondPrompt)
	}
}

func TestGenerationStopsAtStepCap(t *testing.T) {
	calls := 0
	registry := capabilities.NewRegistry(echoTool(t, &calls))

	// The model keeps requesting tools and never produces a final answer.
	cycles := make([]scriptedCycle, 0, 8)
	for range 8 {
		cycles = append(cycles, scriptedCycle{chunks: []llms.StreamChunk{
			toolCallChunk{ID: "call-loop", Name: "echo", Arguments: `{"note":"again"}`},
		}})
	}
	llm := &scriptedLLM{cycles: cycles}

	store := conversations.NewStore("system prompt")
	orchestrator := NewOrchestrator(store, llm, registry, WithMaxToolSteps(3))
	sink := &recordingSink{}

	err := orchestrator.HandleEvent(t.Context(), events.NewUserMessage("c1", "loop forever", "t1", nil), sink)
	if err != nil {
		t.Fatalf("expected the capped cycle to terminate cleanly, got %v", err)
	}

	if llm.promptCount() != 3 {
		t.Fatalf("expected exactly 3 model calls, got %d", llm.promptCount())
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 tool executions, got %d", calls)
	}
	if sink.ends != 1 {
		t.Fatalf("expected the stream to be ended, got %d ends", sink.ends)
	}
}

func TestToolFailureIsFedBackToModel(t *testing.T) {
	failing := llms.NewTool("echo", "Echo the note back",
		func(context.Context, echoParameters) (string, error) {
			return "", errors.New("inventory service unavailable")
		})
	registry := capabilities.NewRegistry(failing)

	llm := &scriptedLLM{cycles: []scriptedCycle{
		{chunks: []llms.StreamChunk{
			toolCallChunk{ID: "call-1", Name: "echo", Arguments: `{"note":"hello"}`},
		}},
		{chunks: []llms.StreamChunk{contentChunk("Sorry, I couldn't check that right now.")}},
	}}

	store := conversations.NewStore("system prompt")
	orchestrator := NewOrchestrator(store, llm, registry)
	sink := &recordingSink{}

	err := orchestrator.HandleEvent(t.Context(), events.NewUserMessage("c1", "try the echo", "t1", nil), sink)
	if err != nil {
		t.Fatalf("expected a tool failure to be recoverable, got %v", err)
	}

	if len(sink.debugs) != 1 || !strings.Contains(sink.debugs[0], "failed") {
		t.Fatalf("expected a debug chunk reporting the failure, got %v", sink.debugs)
	}

	conversation, _ := store.Get("c1")
	history := conversation.History()
	toolTurn, found := conversation.FindLast(func(turn llms.Turn) bool {
		return turn.Role == llms.RoleTool
	})
	if !found {
		t.Fatalf("expected a tool turn carrying the error, got %+v", history)
	}
	if !strings.Contains(toolTurn.Content, "inventory service unavailable") {
		t.Fatalf("expected the error text in the tool turn, got %q", toolTurn.Content)
	}
	if sink.text() != "Sorry, I couldn't check that right now." {
		t.Fatalf("expected the model's recovery response, got %q", sink.text())
	}
}

func TestUnknownToolReportedAsError(t *testing.T) {
	registry := capabilities.NewRegistry()

	llm := &scriptedLLM{cycles: []scriptedCycle{
		{chunks: []llms.StreamChunk{
			toolCallChunk{ID: "call-1", Name: "does_not_exist", Arguments: "{}"},
		}},
		{chunks: []llms.StreamChunk{contentChunk("Let me try something else.")}},
	}}

	store := conversations.NewStore("system prompt")
	orchestrator := NewOrchestrator(store, llm, registry)
	sink := &recordingSink{}

	err := orchestrator.HandleEvent(t.Context(), events.NewUserMessage("c1", "hi", "t1", nil), sink)
	if err != nil {
		t.Fatalf("expected an unknown tool to be tolerated, got %v", err)
	}

	conversation, _ := store.Get("c1")
	toolTurn, found := conversation.FindLast(func(turn llms.Turn) bool {
		return turn.Role == llms.RoleTool
	})
	if !found || !strings.Contains(toolTurn.Content, "tool not found") {
		t.Fatalf("expected a tool turn reporting the missing tool, got %+v (found %v)", toolTurn, found)
	}
}

func TestInvalidToolArgumentsReportedAsError(t *testing.T) {
	calls := 0
	registry := capabilities.NewRegistry(echoTool(t, &calls))

	llm := &scriptedLLM{cycles: []scriptedCycle{
		{chunks: []llms.StreamChunk{
			toolCallChunk{ID: "call-1", Name: "echo", Arguments: `{"note":42}`},
		}},
		{chunks: []llms.StreamChunk{contentChunk("Could you rephrase that?")}},
	}}

	store := conversations.NewStore("system prompt")
	orchestrator := NewOrchestrator(store, llm, registry)
	sink := &recordingSink{}

	err := orchestrator.HandleEvent(t.Context(), events.NewUserMessage("c1", "hi", "t1", nil), sink)
	if err != nil {
		t.Fatalf("expected invalid arguments to be tolerated, got %v", err)
	}

	if calls != 0 {
		t.Fatalf("expected the tool body to be skipped on invalid arguments, ran %d times", calls)
	}

	conversation, _ := store.Get("c1")
	toolTurn, found := conversation.FindLast(func(turn llms.Turn) bool {
		return turn.Role == llms.RoleTool
	})
	if !found || !strings.Contains(toolTurn.Content, "invalid tool arguments") {
		t.Fatalf("expected the validation error in the tool turn, got %+v (found %v)", toolTurn, found)
	}
}
