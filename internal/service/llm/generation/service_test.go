package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
	llmSvc "parley/internal/domain/services/llm"
)

type fakeGenerator struct {
	calls   atomic.Int32
	history []llm.Message
	message string
	reply   string
	err     error
	wait    bool
}

func (g *fakeGenerator) Generate(ctx context.Context, history []llm.Message, userMessage string) (string, error) {
	g.calls.Add(1)
	g.history = history
	g.message = userMessage
	if g.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func (g *fakeGenerator) Name() string  { return "fake" }
func (g *fakeGenerator) Model() string { return "fake-1" }

// ownerAuthorizer knows chat owners by id
type ownerAuthorizer map[string]string

func (a ownerAuthorizer) CanAccessChat(_ context.Context, userID, chatID string) error {
	owner, ok := a[chatID]
	if !ok {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	if owner != userID {
		return domain.ErrForbidden
	}
	return nil
}

type failingAuthorizer struct{}

func (failingAuthorizer) CanAccessChat(context.Context, string, string) error {
	return errors.New("connection refused")
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T, gen *fakeGenerator) *Service {
	t.Helper()
	chats := ownerAuthorizer{"chat-alice": "alice"}
	return NewService(gen, chats, time.Second, time.Second, zaptest.NewLogger(t))
}

func TestGenerate_ReturnsReply(t *testing.T) {
	gen := &fakeGenerator{reply: "The lamp is lit."}
	svc := newTestService(t, gen)

	resp, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{
		UserID:  "alice",
		Message: "Is the lamp lit?",
		ChatID:  strPtr("chat-alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "The lamp is lit.", resp.Response)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, "Is the lamp lit?", gen.message)
	assert.Empty(t, gen.history)
}

func TestGenerate_NormalizesHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := newTestService(t, gen)

	hi, hey := "hi", "hey"
	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{
		UserID:  "alice",
		Message: "and now?",
		History: []llm.Turn{
			{Role: "user", Parts: []llm.Part{{Text: hi}}},
			{Role: "model", Content: &hey},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hey"},
	}, gen.history)
}

func TestGenerate_RefusedBeforeGenerating(t *testing.T) {
	tests := []struct {
		name    string
		req     llmSvc.GenerateRequest
		wantErr error
	}{
		{"empty message", llmSvc.GenerateRequest{UserID: "alice", Message: ""}, domain.ErrValidation},
		{"blank message", llmSvc.GenerateRequest{UserID: "alice", Message: "  \n"}, domain.ErrValidation},
		{"oversized message", llmSvc.GenerateRequest{UserID: "alice", Message: strings.Repeat("a", 32*1024+1)}, domain.ErrValidation},
		{"too much history", llmSvc.GenerateRequest{UserID: "alice", Message: "hi", History: make([]llm.Turn, 501)}, domain.ErrValidation},
		{"missing chat", llmSvc.GenerateRequest{UserID: "alice", Message: "hi", ChatID: strPtr("nope")}, domain.ErrNotFound},
		{"foreign chat", llmSvc.GenerateRequest{UserID: "bob", Message: "hi", ChatID: strPtr("chat-alice")}, domain.ErrForbidden},
		{"malformed history", llmSvc.GenerateRequest{UserID: "alice", Message: "hi", History: []llm.Turn{{Role: "narrator", Content: strPtr("x")}}}, domain.ErrMalformedHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: "unused"}
			svc := newTestService(t, gen)

			req := tt.req
			_, err := svc.Generate(context.Background(), &req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(0), gen.calls.Load())
		})
	}
}

func TestGenerate_EmptyChatIDIsAbsent(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{UserID: "bob", Message: "hi", ChatID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestGenerate_StoreFailure(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	svc := NewService(gen, failingAuthorizer{}, time.Second, time.Second, zaptest.NewLogger(t))

	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{UserID: "alice", Message: "hi", ChatID: strPtr("chat-alice")})
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGenerate_ProviderError(t *testing.T) {
	gen := &fakeGenerator{err: domain.NewGenerationError("fake", "quota exceeded")}
	svc := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{UserID: "alice", Message: "hi"})
	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "quota exceeded", genErr.Details)
}

func TestGenerate_UnclassifiedErrorIsGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	svc := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{UserID: "alice", Message: "hi"})
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestGenerate_Timeout(t *testing.T) {
	gen := &fakeGenerator{wait: true}
	svc := NewService(gen, ownerAuthorizer{}, time.Second, 20*time.Millisecond, zaptest.NewLogger(t))

	_, err := svc.Generate(context.Background(), &llmSvc.GenerateRequest{UserID: "alice", Message: "hi"})
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, int32(1), gen.calls.Load())
}
