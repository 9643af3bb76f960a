package llms

// Role describes who a turn is from.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is a single recorded message in a conversation's history.
type Turn struct {
	Role    Role
	Content string

	// TurnID is the correlation id the voice platform assigned to the spoken
	// exchange this turn belongs to. It links a user utterance to the
	// assistant turn(s) produced for it and is not unique across the history.
	TurnID string

	// ToolCalls holds the tool invocations an assistant turn requested,
	// including their responses once executed.
	ToolCalls []ToolCall
	// ToolCallID is set on tool turns and references the call the content
	// responds to.
	ToolCallID string

	// IsCorrection marks a superseding assistant turn appended by interruption
	// repair. Earlier assistant turns sharing the TurnID are no longer
	// authoritative once a correction exists.
	IsCorrection bool
}

// Response is a single response from an LLM.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Response  string

	// IsError is true when Response carries a validation or execution error
	// instead of a tool result.
	IsError bool
}

// Authoritative filters the history down to the turns the model should see:
// assistant turns superseded by a later correction with the same TurnID are
// dropped, corrections themselves are kept.
func Authoritative(turns []Turn) []Turn {
	corrected := map[string]bool{}
	for _, turn := range turns {
		if turn.Role == RoleAssistant && turn.IsCorrection && turn.TurnID != "" {
			corrected[turn.TurnID] = true
		}
	}

	filtered := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role == RoleAssistant && !turn.IsCorrection &&
			turn.TurnID != "" && corrected[turn.TurnID] {
			continue
		}
		filtered = append(filtered, turn)
	}
	return filtered
}
