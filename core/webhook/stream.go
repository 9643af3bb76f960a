package webhook

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
)

type chunkType string

const (
	chunkTypeText  chunkType = "text"
	chunkTypeDebug chunkType = "debug"
	chunkTypeEnd   chunkType = "end"
)

// chunk is one newline-delimited JSON element of a streamed response body.
type chunk struct {
	Type    chunkType `json:"type"`
	Content string    `json:"content,omitempty"`
}

// ndjsonSink streams response chunks to the HTTP client as they are
// produced, flushing after every chunk to keep speech-synthesis latency low.
type ndjsonSink struct {
	mu      sync.Mutex
	writer  io.Writer
	flusher http.Flusher
	ended   bool
}

func newNDJSONSink(w http.ResponseWriter) *ndjsonSink {
	flusher, _ := w.(http.Flusher)
	return &ndjsonSink{writer: w, flusher: flusher}
}

func (s *ndjsonSink) Text(content string) {
	s.write(chunk{Type: chunkTypeText, Content: content})
}

func (s *ndjsonSink) Debug(message string) {
	s.write(chunk{Type: chunkTypeDebug, Content: message})
}

// End writes the explicit end marker. Repeated calls are no-ops so the
// stream is terminated exactly once even when cleanup paths overlap.
func (s *ndjsonSink) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	s.writeLocked(chunk{Type: chunkTypeEnd})
}

func (s *ndjsonSink) write(c chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.writeLocked(c)
}

func (s *ndjsonSink) writeLocked(c chunk) {
	encoded, err := json.Marshal(c)
	if err != nil {
		log.Println("Warning: failed to encode response chunk:", err)
		return
	}

	if _, err := s.writer.Write(append(encoded, '\n')); err != nil {
		// The platform hung up; later writes will fail the same way.
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// noopSink discards output for event types that answer with a plain
// acknowledgment.
type noopSink struct{}

func (noopSink) Text(string)  {}
func (noopSink) Debug(string) {}
func (noopSink) End()         {}
