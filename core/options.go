package orchestration

import "github.com/koscakluka/leasing-agent/core/events"

const defaultMaxToolSteps = 10

type OrchestratorOption func(*Orchestrator)

// WithWelcomeMessage overrides the fixed utterance spoken on session start.
func WithWelcomeMessage(message string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.welcomeMessage = message
	}
}

// WithMaxToolSteps caps the request/execute/resume loop of one generation
// cycle. The cap guarantees termination even if the model enters a repeated
// tool-call pattern.
func WithMaxToolSteps(steps int) OrchestratorOption {
	return func(o *Orchestrator) {
		if steps > 0 {
			o.maxToolSteps = steps
		}
	}
}

// WithSessionEndEviction drops a conversation's history when its session
// ends. A later event for the same id starts over with a fresh seeded
// history.
func WithSessionEndEviction(evict bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.evictOnSessionEnd = evict
	}
}

// WithEventObserver registers a callback for diagnostic events (tool calls,
// committed turns). The callback must not block.
func WithEventObserver(observer func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onEvent = observer
	}
}
