package domain

// Role is the author of a conversation turn.
type Role string

const (
	// RoleSystem carries instructions for the model.
	RoleSystem Role = "system"
	// RoleUser carries the human side of the conversation.
	RoleUser Role = "user"
	// RoleAssistant carries model answers.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// LastTurns returns a copy of the most recent n turns of history, oldest first.
// n <= 0 yields no history.
func LastTurns(history []Turn, n int) []Turn {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}
