package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	"parley/internal/domain/repositories"
	"parley/internal/repository/postgres"
)

const chatColumns = "id, user_id, title, messages, created_at, updated_at"

// PostgresChatRepository implements the ChatRepository interface using PostgreSQL
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *zap.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *postgres.RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateChat inserts a chat; the database assigns its ID
func (r *PostgresChatRepository) CreateChat(ctx context.Context, chat *llmModels.Chat) error {
	messages, err := encodeMessages(chat.Messages)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		RETURNING id
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		chat.UserID,
		chat.Title,
		messages,
		chat.CreatedAt,
		chat.UpdatedAt,
	).Scan(&chat.ID)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	return nil
}

// GetChat retrieves a chat by ID, scoped to its owner
func (r *PostgresChatRepository) GetChat(ctx context.Context, chatID, userID string) (*llmModels.Chat, error) {
	if !isUUID(chatID) || !isUUID(userID) {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, chatColumns, r.tables.Chats)
	return r.getOne(ctx, chatID, query, chatID, userID)
}

// GetChatByIDOnly retrieves a chat by ID without owner scoping.
// Used by the ownership check on write paths.
func (r *PostgresChatRepository) GetChatByIDOnly(ctx context.Context, chatID string) (*llmModels.Chat, error) {
	if !isUUID(chatID) {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, chatColumns, r.tables.Chats)
	return r.getOne(ctx, chatID, query, chatID)
}

func (r *PostgresChatRepository) getOne(ctx context.Context, chatID, query string, args ...any) (*llmModels.Chat, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	chat, err := scanChat(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	return chat, nil
}

// ListChatsByUser retrieves all chats for a user, most recently updated first
func (r *PostgresChatRepository) ListChatsByUser(ctx context.Context, userID string) ([]llmModels.Chat, error) {
	chats := []llmModels.Chat{}
	if !isUUID(userID) {
		return chats, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC, created_at DESC
	`, chatColumns, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, *chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	return chats, nil
}

// UpdateChat writes the fields set in patch plus updated_at
func (r *PostgresChatRepository) UpdateChat(ctx context.Context, chatID string, patch *llmModels.ChatPatch) error {
	if !isUUID(chatID) {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	// updated_at never moves backwards when concurrent updates commit out of order
	args := []any{patch.UpdatedAt}
	sets := []string{"updated_at = GREATEST(updated_at, $1)"}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Messages != nil {
		messages, err := encodeMessages(*patch.Messages)
		if err != nil {
			return err
		}
		args = append(args, messages)
		sets = append(sets, fmt.Sprintf("messages = $%d::jsonb", len(args)))
	}

	args = append(args, chatID)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`,
		r.tables.Chats, strings.Join(sets, ", "), len(args))

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	return nil
}

// DeleteChat permanently removes a chat
func (r *PostgresChatRepository) DeleteChat(ctx context.Context, chatID string) error {
	if !isUUID(chatID) {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, chatID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	r.logger.Debug("chat deleted", zap.String("chat_id", chatID))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*llmModels.Chat, error) {
	var chat llmModels.Chat
	var messages []byte

	if err := row.Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&messages,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	); err != nil {
		return nil, err
	}

	chat.Messages = []llmModels.Message{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &chat.Messages); err != nil {
			return nil, fmt.Errorf("decode messages for chat %s: %w", chat.ID, err)
		}
	}
	if chat.Messages == nil {
		chat.Messages = []llmModels.Message{}
	}

	return &chat, nil
}

// encodeMessages renders messages as a JSON string for a $n::jsonb parameter
func encodeMessages(messages []llmModels.Message) (string, error) {
	if messages == nil {
		messages = []llmModels.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("encode messages: %w", err)
	}
	return string(data), nil
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
