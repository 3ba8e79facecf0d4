package history

import (
	"strings"

	"parley/internal/domain/models/llm"
)

// RoleMap names each canonical role in a provider's vocabulary
type RoleMap struct {
	User      string
	Assistant string
	System    string
}

// Name returns the provider's label for a canonical role
func (m RoleMap) Name(role string) string {
	switch role {
	case llm.RoleAssistant:
		return m.Assistant
	case llm.RoleSystem:
		return m.System
	}
	return m.User
}

var (
	// CanonicalRoles is the identity mapping (OpenAI, Anthropic)
	CanonicalRoles = RoleMap{User: llm.RoleUser, Assistant: llm.RoleAssistant, System: llm.RoleSystem}
	// ModelRoles labels the assistant "model" (Gemini)
	ModelRoles = RoleMap{User: llm.RoleUser, Assistant: RoleModel, System: llm.RoleSystem}
)

// ToParts renders messages in the {role, parts: [{text}]} envelope
func ToParts(messages []llm.Message, roles RoleMap) []llm.Turn {
	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, llm.Turn{
			Role:  roles.Name(m.Role),
			Parts: []llm.Part{{Text: m.Content}},
		})
	}
	return turns
}

// ToFlat renders messages in the {role, content} envelope
func ToFlat(messages []llm.Message, roles RoleMap) []llm.Turn {
	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		content := m.Content
		turns = append(turns, llm.Turn{
			Role:    roles.Name(m.Role),
			Content: &content,
		})
	}
	return turns
}

// SplitSystem separates system messages from the conversation, for
// providers that only accept a single system instruction.
func SplitSystem(messages []llm.Message) (system []string, conversation []llm.Message) {
	conversation = make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		conversation = append(conversation, m)
	}
	return system, conversation
}

// SystemInstruction joins the persona and any history system turns,
// persona first.
func SystemInstruction(persona string, system []string) string {
	parts := make([]string, 0, len(system)+1)
	if persona != "" {
		parts = append(parts, persona)
	}
	parts = append(parts, system...)
	return strings.Join(parts, "\n\n")
}
