package llm

// Canonical roles. Provider vocabularies (e.g. "model") never reach storage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn within a chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IsCanonicalRole reports whether role is one of user, assistant, system
func IsCanonicalRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
