package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	orchestration "github.com/koscakluka/leasing-agent/core"
	"github.com/koscakluka/leasing-agent/core/capabilities"
	"github.com/koscakluka/leasing-agent/core/conversations"
	"github.com/koscakluka/leasing-agent/core/llms/openai"
	"github.com/koscakluka/leasing-agent/core/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalln("Failed to load configuration:", err)
	}

	store := conversations.NewStore(orchestration.DefaultSystemPrompt)
	registry := capabilities.Default(capabilities.SynthBackend{})

	llmOpts := []openai.ClientOption{}
	if config.Model != "" {
		llmOpts = append(llmOpts, openai.WithModel(config.Model))
	}
	llm := openai.NewClient(config.OpenAIAPIKey, llmOpts...)

	debugStream := webhook.NewDebugStream()
	defer debugStream.Close()

	orchestrator := orchestration.NewOrchestrator(store, llm, registry,
		orchestration.WithSessionEndEviction(true),
		orchestration.WithEventObserver(debugStream.Observe),
	)

	handler := webhook.NewHandler(orchestrator, []byte(config.WebhookSecret),
		webhook.WithDebugStream(debugStream),
	)

	log.Println("Listening on", config.Addr)
	if err := http.ListenAndServe(config.Addr,
		otelhttp.NewHandler(handler.Routes(), "leasing-agent"),
	); err != nil {
		log.Fatalln("Server failed:", err)
	}
}

type config struct {
	Addr          string
	Model         string
	OpenAIAPIKey  string
	WebhookSecret string
}

func loadConfig() (config, error) {
	// Missing .env is fine; the environment may be set directly.
	godotenv.Load()

	c := config{
		Addr:          os.Getenv("LEASING_AGENT_ADDR"),
		Model:         os.Getenv("LEASING_AGENT_MODEL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}

	if c.OpenAIAPIKey == "" {
		return config{}, errMissingEnv("OPENAI_API_KEY")
	}
	if c.WebhookSecret == "" {
		return config{}, errMissingEnv("WEBHOOK_SECRET")
	}

	return c, nil
}

type errMissingEnv string

func (e errMissingEnv) Error() string {
	return "missing required environment variable: " + string(e)
}
