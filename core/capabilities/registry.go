package capabilities

import (
	"context"
	"fmt"

	"github.com/koscakluka/leasing-agent/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Registry holds the capabilities exposed to the model. It is populated once
// at construction and immutable afterwards, so concurrent reads need no
// synchronization.
type Registry struct {
	tools  []llms.Tool
	byName map[string]llms.Tool
}

func NewRegistry(tools ...llms.Tool) *Registry {
	byName := make(map[string]llms.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	return &Registry{
		tools:  append([]llms.Tool(nil), tools...),
		byName: byName,
	}
}

// Default returns the registry of the three leasing capabilities.
func Default(backend ListingBackend) *Registry {
	return NewRegistry(
		NewPrequalify(),
		NewUnitSearch(backend),
		NewBooking(),
	)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []llms.Tool {
	tools := make([]llms.Tool, len(r.tools))
	copy(tools, r.tools)
	return tools
}

// Invoke dispatches the tool call to the matching capability and returns the
// completed call. Validation and execution failures are recorded on the
// returned call as tool-error results rather than propagated, so the model
// can respond to the user despite the failure.
func (r *Registry) Invoke(ctx context.Context, toolCall llms.ToolCall) llms.ToolCall {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", toolCall.Name))

	tool, ok := r.byName[toolCall.Name]
	if !ok {
		err := fmt.Errorf("tool not found: %s", toolCall.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		toolCall.Response = err.Error()
		toolCall.IsError = true
		return toolCall
	}

	response, err := tool.Execute(ctx, toolCall.Arguments)
	if err != nil {
		err = fmt.Errorf("failed to execute tool %q: %w", toolCall.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		toolCall.Response = err.Error()
		toolCall.IsError = true
		return toolCall
	}

	toolCall.Response = response
	return toolCall
}
