package webhook

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	orchestration "github.com/koscakluka/leasing-agent/core"
	"github.com/koscakluka/leasing-agent/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Orchestrator is the part of the core the webhook transport drives.
type Orchestrator interface {
	HandleEvent(ctx context.Context, event events.Event, sink orchestration.ResponseSink) error
}

// Handler terminates the voice platform's webhook: it authenticates the
// payload, decodes it into a typed event and answers either with a plain
// acknowledgment or a streamed NDJSON body.
type Handler struct {
	orchestrator Orchestrator
	secret       []byte
	debugStream  *DebugStream
}

type HandlerOption func(*Handler)

// WithDebugStream exposes a websocket live tail of diagnostic events under
// /debug/stream.
func WithDebugStream(stream *DebugStream) HandlerOption {
	return func(h *Handler) {
		h.debugStream = stream
	}
}

func NewHandler(orchestrator Orchestrator, secret []byte, opts ...HandlerOption) *Handler {
	h := &Handler{
		orchestrator: orchestrator,
		secret:       secret,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Routes returns the router serving the webhook endpoints.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/webhook", h.handleWebhook)
	router.Get("/healthz", h.handleHealth)
	if h.debugStream != nil {
		router.Get("/debug/stream", h.debugStream.ServeHTTP)
	}

	return router
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handle webhook")
	defer span.End()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		span.RecordError(err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if !verifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		span.SetStatus(codes.Error, "invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	p, err := decodePayload(body)
	if err != nil {
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("event.type", p.Type),
		attribute.String("conversation.id", p.ConversationID),
	)

	event := p.toEvent()

	if !p.streamsResponse() {
		if err := h.orchestrator.HandleEvent(ctx, event, noopSink{}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			http.Error(w, "failed to handle event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	sink := newNDJSONSink(w)
	if err := h.orchestrator.HandleEvent(ctx, event, sink); err != nil {
		// The orchestrator has already ended the stream; the failure only
		// concerns this cycle and must not leak to other conversations.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "event handling failed",
			"conversation_id", p.ConversationID, "error", err)
	}
	sink.End()
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
