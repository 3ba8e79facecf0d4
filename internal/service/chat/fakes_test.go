package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	"parley/internal/domain/repositories"
)

// memoryChatRepo is an in-memory ChatRepository
type memoryChatRepo struct {
	mu    sync.Mutex
	chats map[string]llmModels.Chat
	block bool // when set, every call waits for ctx to end
}

func newMemoryChatRepo() *memoryChatRepo {
	return &memoryChatRepo{chats: map[string]llmModels.Chat{}}
}

var _ repositories.ChatRepository = (*memoryChatRepo)(nil)

func (r *memoryChatRepo) wait(ctx context.Context) error {
	if !r.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *memoryChatRepo) CreateChat(ctx context.Context, chat *llmModels.Chat) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.ID = uuid.NewString()
	r.chats[chat.ID] = cloneChat(*chat)
	return nil
}

func (r *memoryChatRepo) GetChat(ctx context.Context, chatID, userID string) (*llmModels.Chat, error) {
	chat, err := r.GetChatByIDOnly(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return chat, nil
}

func (r *memoryChatRepo) GetChatByIDOnly(ctx context.Context, chatID string) (*llmModels.Chat, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	c := cloneChat(chat)
	return &c, nil
}

func (r *memoryChatRepo) ListChatsByUser(ctx context.Context, userID string) ([]llmModels.Chat, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chats := []llmModels.Chat{}
	for _, c := range r.chats {
		if c.UserID == userID {
			chats = append(chats, cloneChat(c))
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (r *memoryChatRepo) UpdateChat(ctx context.Context, chatID string, patch *llmModels.ChatPatch) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	if patch.Title != nil {
		chat.Title = *patch.Title
	}
	if patch.Messages != nil {
		chat.Messages = append([]llmModels.Message{}, (*patch.Messages)...)
	}
	if patch.UpdatedAt.After(chat.UpdatedAt) {
		chat.UpdatedAt = patch.UpdatedAt
	}
	r.chats[chatID] = chat
	return nil
}

func (r *memoryChatRepo) DeleteChat(ctx context.Context, chatID string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chatID]; !ok {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	delete(r.chats, chatID)
	return nil
}

func cloneChat(c llmModels.Chat) llmModels.Chat {
	c.Messages = append([]llmModels.Message{}, c.Messages...)
	return c
}

// serialTxManager runs units of work one at a time, like row locks would
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// stepClock advances one second per reading
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
