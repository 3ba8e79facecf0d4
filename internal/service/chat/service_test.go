package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	llmSvc "parley/internal/domain/services/llm"
	authSvc "parley/internal/service/auth"
)

const (
	alice = "alice"
	bob   = "bob"
)

func newTestService(t *testing.T) (*Service, *memoryChatRepo, *stepClock) {
	t.Helper()
	repo := newMemoryChatRepo()
	clock := newStepClock()
	svc := NewService(repo, authSvc.NewOwnerBasedAuthorizer(repo), &serialTxManager{}, time.Second, zaptest.NewLogger(t))
	svc.now = clock.Now
	return svc, repo, clock
}

func strPtr(s string) *string { return &s }

func TestCreateChat_Defaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	chat, err := svc.CreateChat(context.Background(), alice)
	require.NoError(t, err)
	assert.NotEmpty(t, chat.ID)
	assert.Equal(t, alice, chat.UserID)
	assert.Equal(t, llmModels.DefaultChatTitle, chat.Title)
	assert.NotNil(t, chat.Messages)
	assert.Empty(t, chat.Messages)
	assert.Equal(t, chat.CreatedAt, chat.UpdatedAt)
}

func TestCreateChat_RequiresUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateChat(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestChats_IsolatedBetweenUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	bobsChats, err := svc.ListChats(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobsChats)

	// Read path hides existence, write paths reveal ownership
	_, err = svc.GetChat(ctx, chat.ID, bob)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.UpdateChat(ctx, chat.ID, bob, &llmSvc.UpdateChatRequest{Title: strPtr("mine now")})
	require.ErrorIs(t, err, domain.ErrForbidden)

	err = svc.DeleteChat(ctx, chat.ID, bob)
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, llmModels.DefaultChatTitle, got.Title)
}

func TestListChats_MostRecentlyUpdatedFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)
	_, err = svc.CreateChat(ctx, alice)
	require.NoError(t, err)
	_, err = svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateChat(ctx, first.ID, alice, &llmSvc.UpdateChatRequest{}))

	chats, err := svc.ListChats(ctx, alice)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, first.ID, chats[0].ID)
	for i := 1; i < len(chats); i++ {
		assert.False(t, chats[i].UpdatedAt.After(chats[i-1].UpdatedAt), "listing must be non-increasing by updated_at")
	}
}

func TestListChats_EmptyIsNotNil(t *testing.T) {
	svc, _, _ := newTestService(t)

	chats, err := svc.ListChats(context.Background(), alice)
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestUpdateChat_PartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	content := "hi"
	messages := []llmModels.Turn{{Role: "user", Content: &content}}
	require.NoError(t, svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Messages: &messages}))

	afterMessages, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, llmModels.DefaultChatTitle, afterMessages.Title)
	assert.Equal(t, []llmModels.Message{{Role: "user", Content: "hi"}}, afterMessages.Messages)
	assert.True(t, afterMessages.UpdatedAt.After(chat.UpdatedAt))

	require.NoError(t, svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Title: strPtr("  Greetings  ")}))

	afterTitle, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Greetings", afterTitle.Title)
	assert.Equal(t, afterMessages.Messages, afterTitle.Messages)
	assert.True(t, afterTitle.UpdatedAt.After(afterMessages.UpdatedAt))
	assert.Equal(t, chat.CreatedAt, afterTitle.CreatedAt)
}

func TestUpdateChat_EmptyPatchStillTouches(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{}))
	require.NoError(t, svc.UpdateChat(ctx, chat.ID, alice, nil))

	got, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(chat.UpdatedAt))
	assert.Equal(t, chat.Title, got.Title)
}

func TestUpdateChat_NormalizesRoles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	messages := []llmModels.Turn{
		{Role: "user", Parts: []llmModels.Part{{Text: "hi"}}},
		{Role: "model", Parts: []llmModels.Part{{Text: "hey"}}},
	}
	require.NoError(t, svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Messages: &messages}))

	got, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, []llmModels.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hey"},
	}, got.Messages)
}

func TestUpdateChat_Rejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	err = svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Title: strPtr("   ")})
	require.ErrorIs(t, err, domain.ErrValidation)

	bad := []llmModels.Turn{{Role: "narrator", Content: strPtr("x")}}
	err = svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Messages: &bad})
	require.ErrorIs(t, err, domain.ErrMalformedHistory)

	err = svc.UpdateChat(ctx, "missing", alice, &llmSvc.UpdateChatRequest{Title: strPtr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Rejected updates leave the chat untouched
	got, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, chat.UpdatedAt, got.UpdatedAt)
}

func TestDeleteChat_Twice(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChat(ctx, chat.ID, alice))

	_, err = svc.GetChat(ctx, chat.ID, alice)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, svc.DeleteChat(ctx, chat.ID, alice), domain.ErrNotFound)
}

func TestUpdateChat_ConcurrentSameOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, alice)
	require.NoError(t, err)

	titles := []string{"from tab A", "from tab B"}
	errs := make([]error, len(titles))

	var wg sync.WaitGroup
	for i, title := range titles {
		wg.Add(1)
		go func(i int, title string) {
			defer wg.Done()
			errs[i] = svc.UpdateChat(ctx, chat.ID, alice, &llmSvc.UpdateChatRequest{Title: strPtr(title)})
		}(i, title)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.GetChat(ctx, chat.ID, alice)
	require.NoError(t, err)
	assert.Contains(t, titles, got.Title)
	// Creation read the clock once, each update once more
	assert.Equal(t, chat.UpdatedAt.Add(2*time.Second), got.UpdatedAt)
}

func TestStoreTimeout_IsProviderUnavailable(t *testing.T) {
	repo := newMemoryChatRepo()
	repo.block = true
	svc := NewService(repo, authSvc.NewOwnerBasedAuthorizer(repo), &serialTxManager{}, 20*time.Millisecond, zaptest.NewLogger(t))

	_, err := svc.ListChats(context.Background(), alice)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)

	err = svc.DeleteChat(context.Background(), "any", alice)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
