package openai

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
	"github.com/koscakluka/leasing-agent/core/llms"
)

const defaultModel = "gpt-4o-mini"

// Client is a streaming chat-completions client.
type Client struct {
	apiKey string
	model  string
}

type ClientOption func(*Client)

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey: apiKey,
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// PromptWithStream prepares a streaming completion over the passed turns and
// tools. The request is not sent until the stream's chunks are consumed.
func (c *Client) PromptWithStream(_ context.Context, opts ...llms.PromptOption) llms.Stream {
	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	messages := toMessages(options.Instructions, options.Turns)

	var tools []tool
	for _, t := range options.Tools {
		var function toolFunction
		copier.Copy(&function, t)
		tools = append(tools, tool{Type: "function", Function: function})
	}

	return &Stream{
		apiKey:   c.apiKey,
		model:    c.model,
		tools:    tools,
		messages: messages,
		onChunk:  options.Stream,
	}
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}
