package gormstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	"parley/internal/domain/repositories"
)

const (
	alice = "11111111-1111-4111-8111-111111111111"
	bob   = "22222222-2222-4222-8222-222222222222"
)

func newTestRepo(t *testing.T) (repositories.ChatRepository, repositories.TransactionManager) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, table, err := Open(context.Background(), DriverSQLite, dsn, "test_", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.Equal(t, "test_chats", table)
	return NewChatRepository(db, table), NewTransactionManager(db)
}

func newChat(t *testing.T, repo repositories.ChatRepository, userID string, at time.Time) *llmModels.Chat {
	t.Helper()
	chat := &llmModels.Chat{
		UserID:    userID,
		Title:     llmModels.DefaultChatTitle,
		Messages:  []llmModels.Message{},
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, repo.CreateChat(context.Background(), chat))
	require.NotEmpty(t, chat.ID)
	return chat
}

func TestChatRepository_CreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	created := newChat(t, repo, alice, at)

	got, err := repo.GetChat(ctx, created.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, alice, got.UserID)
	assert.Equal(t, llmModels.DefaultChatTitle, got.Title)
	assert.NotNil(t, got.Messages)
	assert.Empty(t, got.Messages)
	assert.True(t, at.Equal(got.CreatedAt))
	assert.True(t, at.Equal(got.UpdatedAt))
}

func TestChatRepository_GetScopesByOwner(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	chat := newChat(t, repo, alice, time.Now())

	_, err := repo.GetChat(ctx, chat.ID, bob)
	require.ErrorIs(t, err, domain.ErrNotFound)

	byID, err := repo.GetChatByIDOnly(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, byID.UserID)
}

func TestChatRepository_MalformedIDIsNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetChat(ctx, "not-a-uuid", alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetChatByIDOnly(ctx, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, repo.DeleteChat(ctx, "not-a-uuid"), domain.ErrNotFound)
}

func TestChatRepository_ListOrdersByUpdatedAtDesc(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := newChat(t, repo, alice, base)
	second := newChat(t, repo, alice, base.Add(time.Minute))
	newChat(t, repo, bob, base.Add(2*time.Minute))

	// Touch the older chat so it moves to the top
	require.NoError(t, repo.UpdateChat(ctx, first.ID, &llmModels.ChatPatch{UpdatedAt: base.Add(time.Hour)}))

	chats, err := repo.ListChatsByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ID, chats[0].ID)
	assert.Equal(t, second.ID, chats[1].ID)

	empty, err := repo.ListChatsByUser(ctx, "33333333-3333-4333-8333-333333333333")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestChatRepository_UpdatePartialFields(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	chat := newChat(t, repo, alice, base)

	messages := []llmModels.Message{
		{Role: llmModels.RoleUser, Content: "hi"},
		{Role: llmModels.RoleAssistant, Content: "hey"},
	}
	require.NoError(t, repo.UpdateChat(ctx, chat.ID, &llmModels.ChatPatch{
		Messages:  &messages,
		UpdatedAt: base.Add(time.Minute),
	}))

	title := "Renamed"
	require.NoError(t, repo.UpdateChat(ctx, chat.ID, &llmModels.ChatPatch{
		Title:     &title,
		UpdatedAt: base.Add(2 * time.Minute),
	}))

	got, err := repo.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, messages, got.Messages)
	assert.True(t, base.Add(2*time.Minute).Equal(got.UpdatedAt))
	assert.True(t, base.Equal(got.CreatedAt))
}

func TestChatRepository_DeleteTwice(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	chat := newChat(t, repo, alice, time.Now())

	require.NoError(t, repo.DeleteChat(ctx, chat.ID))
	require.ErrorIs(t, repo.DeleteChat(ctx, chat.ID), domain.ErrNotFound)

	_, err := repo.GetChatByIDOnly(ctx, chat.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, repo.UpdateChat(ctx, chat.ID, &llmModels.ChatPatch{UpdatedAt: time.Now()}), domain.ErrNotFound)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	repo, txm := newTestRepo(t)
	ctx := context.Background()
	chat := newChat(t, repo, alice, time.Now())

	boom := errors.New("boom")
	err := txm.ExecTx(ctx, func(txCtx context.Context) error {
		if err := repo.DeleteChat(txCtx, chat.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
}
