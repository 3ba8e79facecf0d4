// Package history converts conversation history between the envelope shapes
// clients and providers use and the canonical role/content messages stored
// with a chat.
package history

import (
	"fmt"
	"strings"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
)

// RoleModel is the provider-side name some APIs use for the assistant
const RoleModel = "model"

// Normalize converts client turns into canonical messages, preserving order.
// A turn must carry a flat content field or a non-empty parts array, and its
// role must be user, assistant, system or model.
func Normalize(turns []llm.Turn) ([]llm.Message, error) {
	messages := make([]llm.Message, 0, len(turns))
	for i, turn := range turns {
		msg, err := NormalizeTurn(turn)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// NormalizeTurn converts a single turn
func NormalizeTurn(turn llm.Turn) (llm.Message, error) {
	role, err := canonicalRole(turn.Role)
	if err != nil {
		return llm.Message{}, err
	}

	content, ok := extractText(turn)
	if !ok {
		return llm.Message{}, fmt.Errorf("no content or parts: %w", domain.ErrMalformedHistory)
	}

	return llm.Message{Role: role, Content: content}, nil
}

func canonicalRole(role string) (string, error) {
	if llm.IsCanonicalRole(role) {
		return role, nil
	}
	if role == RoleModel {
		return llm.RoleAssistant, nil
	}
	return "", fmt.Errorf("unknown role %q: %w", role, domain.ErrMalformedHistory)
}

// extractText prefers the flat content field; parts are concatenated in order
func extractText(turn llm.Turn) (string, bool) {
	if turn.Content != nil {
		return *turn.Content, true
	}
	if len(turn.Parts) == 0 {
		return "", false
	}
	if len(turn.Parts) == 1 {
		return turn.Parts[0].Text, true
	}

	var b strings.Builder
	for _, p := range turn.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), true
}
