package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	"parley/internal/domain/repositories"
)

// chatRecord is the row shape. Timestamps are written explicitly so gorm's
// automatic time tracking is disabled.
type chatRecord struct {
	ID        string         `gorm:"primaryKey;size:36"`
	UserID    string         `gorm:"size:36;not null"`
	Title     string         `gorm:"not null"`
	Messages  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime:false"`
}

// ChatRepository implements repositories.ChatRepository with gorm
type ChatRepository struct {
	db    *gorm.DB
	table string
}

// NewChatRepository creates a repository over table
func NewChatRepository(db *gorm.DB, table string) repositories.ChatRepository {
	return &ChatRepository{db: db, table: table}
}

func (r *ChatRepository) q(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Table(r.table)
}

// CreateChat inserts chat and assigns its ID
func (r *ChatRepository) CreateChat(ctx context.Context, chat *llmModels.Chat) error {
	messages, err := encodeMessages(chat.Messages)
	if err != nil {
		return err
	}

	rec := chatRecord{
		ID:        uuid.NewString(),
		UserID:    chat.UserID,
		Title:     chat.Title,
		Messages:  messages,
		CreatedAt: chat.CreatedAt.UTC(),
		UpdatedAt: chat.UpdatedAt.UTC(),
	}
	if err := r.q(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	chat.ID = rec.ID
	return nil
}

// GetChat retrieves a chat by ID, scoped to its owner
func (r *ChatRepository) GetChat(ctx context.Context, chatID, userID string) (*llmModels.Chat, error) {
	return r.first(ctx, chatID, r.q(ctx).Where("id = ? AND user_id = ?", chatID, userID))
}

// GetChatByIDOnly retrieves a chat by ID without owner scoping
func (r *ChatRepository) GetChatByIDOnly(ctx context.Context, chatID string) (*llmModels.Chat, error) {
	return r.first(ctx, chatID, r.q(ctx).Where("id = ?", chatID))
}

func (r *ChatRepository) first(_ context.Context, chatID string, query *gorm.DB) (*llmModels.Chat, error) {
	if _, err := uuid.Parse(chatID); err != nil {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	var rec chatRecord
	if err := query.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return toChat(&rec)
}

// ListChatsByUser retrieves all chats for a user, most recently updated first
func (r *ChatRepository) ListChatsByUser(ctx context.Context, userID string) ([]llmModels.Chat, error) {
	var recs []chatRecord
	err := r.q(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]llmModels.Chat, 0, len(recs))
	for i := range recs {
		chat, err := toChat(&recs[i])
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

// UpdateChat writes the fields set in patch plus updated_at
func (r *ChatRepository) UpdateChat(ctx context.Context, chatID string, patch *llmModels.ChatPatch) error {
	updates := map[string]any{"updated_at": patch.UpdatedAt.UTC()}
	if r.db.Dialector.Name() == "postgres" {
		// sqlite serializes writers on one connection; postgres needs the guard
		updates["updated_at"] = gorm.Expr("GREATEST(updated_at, ?)", patch.UpdatedAt.UTC())
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Messages != nil {
		messages, err := encodeMessages(*patch.Messages)
		if err != nil {
			return err
		}
		updates["messages"] = messages
	}

	result := r.q(ctx).Where("id = ?", chatID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

// DeleteChat permanently removes a chat
func (r *ChatRepository) DeleteChat(ctx context.Context, chatID string) error {
	result := r.q(ctx).Where("id = ?", chatID).Delete(&chatRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

func toChat(rec *chatRecord) (*llmModels.Chat, error) {
	chat := &llmModels.Chat{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Messages:  []llmModels.Message{},
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	if len(rec.Messages) > 0 {
		if err := json.Unmarshal(rec.Messages, &chat.Messages); err != nil {
			return nil, fmt.Errorf("decode messages for chat %s: %w", rec.ID, err)
		}
	}
	if chat.Messages == nil {
		chat.Messages = []llmModels.Message{}
	}
	return chat, nil
}

func encodeMessages(messages []llmModels.Message) (datatypes.JSON, error) {
	if messages == nil {
		messages = []llmModels.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}
	return datatypes.JSON(data), nil
}
