package conversations

import (
	"slices"
	"sync"

	"github.com/koscakluka/leasing-agent/core/llms"
)

// Store holds the ordered turn history of every known conversation, keyed by
// the voice platform's conversation id. Distinct conversations are fully
// independent; within one conversation, callers serialize event handling by
// holding the conversation's owner lock for the duration of the event.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation

	systemPrompt string
}

func NewStore(systemPrompt string) *Store {
	return &Store{
		conversations: map[string]*Conversation{},
		systemPrompt:  systemPrompt,
	}
}

// GetOrCreate returns the conversation for the id, creating it with a single
// seeded system turn if absent.
func (s *Store) GetOrCreate(id string) *Conversation {
	s.mu.RLock()
	conversation, ok := s.conversations[id]
	s.mu.RUnlock()
	if ok {
		return conversation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conversation, ok := s.conversations[id]; ok {
		return conversation
	}

	conversation = &Conversation{
		id:    id,
		turns: []llms.Turn{{Role: llms.RoleSystem, Content: s.systemPrompt}},
	}
	s.conversations[id] = conversation
	return conversation
}

// Get returns the conversation for the id without creating it.
func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[id]
	return conversation, ok
}

// Evict drops the conversation's history. A later event for the same id
// recreates the conversation with a fresh seeded system turn.
func (s *Store) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
}

// Len returns the number of tracked conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations)
}

// Conversation is the ordered, append-only turn history of one voice session.
type Conversation struct {
	id string

	// owner serializes event processing for this conversation. It is held
	// across the whole event, including model and tool I/O, so that a second
	// event for the same id waits for the first to finish appending.
	owner sync.Mutex

	mu    sync.RWMutex
	turns []llms.Turn
}

func (c *Conversation) ID() string {
	return c.id
}

// Acquire takes exclusive ownership of the conversation for one event.
func (c *Conversation) Acquire() {
	c.owner.Lock()
}

// Release gives up ownership taken by Acquire.
func (c *Conversation) Release() {
	c.owner.Unlock()
}

// Append adds turns to the end of the history. Entries are never deleted or
// reordered; corrections are modeled as superseding appends.
func (c *Conversation) Append(turns ...llms.Turn) {
	if len(turns) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, turns...)
}

// History returns a copy of the stored turns, oldest first.
func (c *Conversation) History() []llms.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := make([]llms.Turn, len(c.turns))
	copy(history, c.turns)
	return history
}

// Len returns the number of stored turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.turns)
}

// FindLast scans the history backward and returns the most recent turn
// satisfying the predicate.
func (c *Conversation) FindLast(match func(llms.Turn) bool) (llms.Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, turn := range slices.Backward(c.turns) {
		if match(turn) {
			return turn, true
		}
	}

	return llms.Turn{}, false
}
