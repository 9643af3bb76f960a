package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	orchestration "github.com/koscakluka/leasing-agent/core"
	"github.com/koscakluka/leasing-agent/core/events"
)

var testSecret = []byte("test-secret")

// scriptedOrchestrator records the events it receives and plays a scripted
// response into the sink.
type scriptedOrchestrator struct {
	events []events.Event
	script func(sink orchestration.ResponseSink) error
}

func (o *scriptedOrchestrator) HandleEvent(_ context.Context, event events.Event, sink orchestration.ResponseSink) error {
	o.events = append(o.events, event)
	if o.script != nil {
		return o.script(sink)
	}
	sink.End()
	return nil
}

func post(t *testing.T, handler *Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if signature != "" {
		request.Header.Set(SignatureHeader, signature)
	}

	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

func decodeChunks(t *testing.T, body string) []chunk {
	t.Helper()

	chunks := []chunk{}
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		var c chunk
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			t.Fatalf("expected NDJSON lines, got %q: %v", line, err)
		}
		chunks = append(chunks, c)
	}
	return chunks
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	recorder := post(t, handler, `{"conversation_id": "c1", "type": "message"}`, "")

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a missing signature, got %d", recorder.Code)
	}
	if len(orchestrator.events) != 0 {
		t.Fatalf("expected no event handling for an unauthenticated request")
	}
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	signature := Sign(testSecret, []byte(`{"conversation_id": "c1", "type": "message"}`))
	recorder := post(t, handler, `{"conversation_id": "c2", "type": "message"}`, signature)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a tampered body, got %d", recorder.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	for _, body := range []string{
		`not json`,
		`{"type": "message"}`,
		`{"conversation_id": "c1"}`,
	} {
		recorder := post(t, handler, body, Sign(testSecret, []byte(body)))
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", body, recorder.Code)
		}
	}
	if len(orchestrator.events) != 0 {
		t.Fatalf("expected no event handling for malformed payloads")
	}
}

func TestWebhookAcknowledgesLifecycleEvents(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	body := `{"conversation_id": "c1", "type": "session.update"}`
	recorder := post(t, handler, body, Sign(testSecret, []byte(body)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for a lifecycle event, got %d", recorder.Code)
	}
	if recorder.Body.String() != "ok" {
		t.Fatalf("expected a plain acknowledgment, got %q", recorder.Body.String())
	}
	if len(orchestrator.events) != 1 {
		t.Fatalf("expected the event to reach the orchestrator, got %d", len(orchestrator.events))
	}
	if _, ok := orchestrator.events[0].(events.SessionUpdated); !ok {
		t.Fatalf("expected a session updated event, got %T", orchestrator.events[0])
	}
}

func TestWebhookStreamsMessageResponse(t *testing.T) {
	orchestrator := &scriptedOrchestrator{
		script: func(sink orchestration.ResponseSink) error {
			sink.Text("We have ")
			sink.Text("three units open.")
			sink.Debug("tool search_units: []")
			sink.End()
			return nil
		},
	}
	handler := NewHandler(orchestrator, testSecret)

	body := `{"conversation_id": "c1", "type": "message", "text": "any units?", "turn_id": "t1"}`
	recorder := post(t, handler, body, Sign(testSecret, []byte(body)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Fatalf("expected an NDJSON response, got %q", got)
	}

	chunks := decodeChunks(t, recorder.Body.String())
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %v", chunks)
	}
	if chunks[0].Type != chunkTypeText || chunks[0].Content != "We have " {
		t.Fatalf("expected the first text chunk, got %+v", chunks[0])
	}
	if chunks[2].Type != chunkTypeDebug {
		t.Fatalf("expected a debug chunk, got %+v", chunks[2])
	}
	if chunks[3].Type != chunkTypeEnd {
		t.Fatalf("expected the end marker last, got %+v", chunks[3])
	}
}

func TestWebhookStreamsSessionStart(t *testing.T) {
	orchestrator := &scriptedOrchestrator{
		script: func(sink orchestration.ResponseSink) error {
			sink.Text("Hi, thanks for calling!")
			sink.End()
			return nil
		},
	}
	handler := NewHandler(orchestrator, testSecret)

	body := `{"conversation_id": "c1", "type": "session.start"}`
	recorder := post(t, handler, body, Sign(testSecret, []byte(body)))

	chunks := decodeChunks(t, recorder.Body.String())
	if len(chunks) != 2 || chunks[0].Type != chunkTypeText || chunks[1].Type != chunkTypeEnd {
		t.Fatalf("expected a welcome chunk and the end marker, got %v", chunks)
	}
}

func TestWebhookEndsStreamOnOrchestratorFailure(t *testing.T) {
	orchestrator := &scriptedOrchestrator{
		script: func(sink orchestration.ResponseSink) error {
			sink.Text("We ha")
			return errors.New("model unavailable")
		},
	}
	handler := NewHandler(orchestrator, testSecret)

	body := `{"conversation_id": "c1", "type": "message", "text": "any units?", "turn_id": "t1"}`
	recorder := post(t, handler, body, Sign(testSecret, []byte(body)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected the already-started stream to stay 200, got %d", recorder.Code)
	}

	chunks := decodeChunks(t, recorder.Body.String())
	if chunks[len(chunks)-1].Type != chunkTypeEnd {
		t.Fatalf("expected the end marker despite the failure, got %v", chunks)
	}
}

func TestWebhookDecodesInterruptionContext(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	body := `{
		"conversation_id": "c1",
		"type": "message",
		"text": "wait, one question",
		"turn_id": "t2",
		"interruption_context": {
			"previous_turn_interrupted": true,
			"words_heard": 4,
			"text_heard": "We have three units",
			"assistant_turn_id": "t1"
		}
	}`
	post(t, handler, body, Sign(testSecret, []byte(body)))

	if len(orchestrator.events) != 1 {
		t.Fatalf("expected one event, got %d", len(orchestrator.events))
	}
	message, ok := orchestrator.events[0].(events.UserMessage)
	if !ok {
		t.Fatalf("expected a user message event, got %T", orchestrator.events[0])
	}
	if message.ConversationID != "c1" || message.TurnID != "t2" {
		t.Fatalf("expected the payload's identifiers, got %+v", message)
	}
	if message.Interruption == nil {
		t.Fatalf("expected the interruption context to be carried over")
	}
	if !message.Interruption.PreviousTurnInterrupted ||
		message.Interruption.WordsHeard != 4 ||
		message.Interruption.TextHeard != "We have three units" ||
		message.Interruption.AssistantTurnID != "t1" {
		t.Fatalf("expected the interruption fields to be mapped, got %+v", message.Interruption)
	}
}

func TestWebhookMapsUnrecognizedType(t *testing.T) {
	orchestrator := &scriptedOrchestrator{}
	handler := NewHandler(orchestrator, testSecret)

	body := `{"conversation_id": "c1", "type": "transcript.partial"}`
	recorder := post(t, handler, body, Sign(testSecret, []byte(body)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected unrecognized types to be acknowledged, got %d", recorder.Code)
	}
	unknown, ok := orchestrator.events[0].(events.Unknown)
	if !ok {
		t.Fatalf("expected an unknown event, got %T", orchestrator.events[0])
	}
	if unknown.RawType != "transcript.partial" {
		t.Fatalf("expected the raw type to be preserved, got %q", unknown.RawType)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHandler(&scriptedOrchestrator{}, testSecret)

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK || recorder.Body.String() != "ok" {
		t.Fatalf("expected a healthy response, got %d %q", recorder.Code, recorder.Body.String())
	}
}

func TestSignRoundTrip(t *testing.T) {
	body := []byte(`{"conversation_id": "c1", "type": "message"}`)

	signature := Sign(testSecret, body)
	if !strings.HasPrefix(signature, "sha256=") {
		t.Fatalf("expected the scheme prefix, got %q", signature)
	}
	if !verifySignature(testSecret, body, signature) {
		t.Fatalf("expected the signature to verify against the same body")
	}
	if verifySignature([]byte("other-secret"), body, signature) {
		t.Fatalf("expected verification to fail with a different secret")
	}
	if verifySignature(testSecret, append(body, ' '), signature) {
		t.Fatalf("expected verification to fail for a modified body")
	}
}
