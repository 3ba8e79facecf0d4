// Package seed creates demo data through the service layer, so seeded
// chats obey the same defaults and normalization as API-created ones.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	llmModels "parley/internal/domain/models/llm"
	llmSvc "parley/internal/domain/services/llm"
)

// DemoChatTitle marks chats created by the seeder
const DemoChatTitle = "Sample Chat - Storm Watch"

// ChatSeeder handles seeding of demo chats
type ChatSeeder struct {
	chats  llmSvc.ChatService
	logger *zap.Logger
}

// NewChatSeeder creates a new chat seeder
func NewChatSeeder(chats llmSvc.ChatService, logger *zap.Logger) *ChatSeeder {
	return &ChatSeeder{
		chats:  chats,
		logger: logger,
	}
}

// SeedDemoChat gives userID one sample conversation. It is a no-op when the
// user already has a demo chat, so the seeder can be rerun.
func (s *ChatSeeder) SeedDemoChat(ctx context.Context, userID string) (*llmModels.Chat, error) {
	existing, err := s.chats.ListChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	for i := range existing {
		if existing[i].Title == DemoChatTitle {
			s.logger.Info("demo chat already present", zap.String("id", existing[i].ID))
			return &existing[i], nil
		}
	}

	chat, err := s.chats.CreateChat(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	title := DemoChatTitle
	messages := demoConversation()
	if err := s.chats.UpdateChat(ctx, chat.ID, userID, &llmSvc.UpdateChatRequest{
		Title:    &title,
		Messages: &messages,
	}); err != nil {
		return nil, fmt.Errorf("fill chat %s: %w", chat.ID, err)
	}

	seeded, err := s.chats.GetChat(ctx, chat.ID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("demo chat seeded",
		zap.String("id", seeded.ID),
		zap.Int("messages", len(seeded.Messages)))
	return seeded, nil
}

// demoConversation mixes both envelope shapes, as real clients send them
func demoConversation() []llmModels.Turn {
	text := func(s string) *string { return &s }
	return []llmModels.Turn{
		{Role: llmModels.RoleUser, Content: text("Is there a storm coming tonight?")},
		{Role: "model", Parts: []llmModels.Part{{Text: "The glass has been falling since noon. I've trimmed the wick and laid in extra oil."}}},
		{Role: llmModels.RoleUser, Content: text("Will the ships see the light?")},
		{Role: llmModels.RoleAssistant, Content: text("As long as I keep the lens clean and the flame steady, they will.")},
	}
}
