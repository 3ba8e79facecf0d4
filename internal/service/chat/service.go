package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"parley/internal/config"
	"parley/internal/domain"
	llmModels "parley/internal/domain/models/llm"
	"parley/internal/domain/repositories"
	"parley/internal/domain/services"
	llmSvc "parley/internal/domain/services/llm"
	"parley/internal/service/llm/history"
)

// Service implements the ChatService interface.
// Reads are scoped by owner; writes go through the authorizer so that
// NotFound and Forbidden stay distinct.
type Service struct {
	chatRepo   repositories.ChatRepository
	authorizer services.ResourceAuthorizer
	txManager  repositories.TransactionManager
	timeout    time.Duration
	now        func() time.Time
	tracer     trace.Tracer
	logger     *zap.Logger
}

var _ llmSvc.ChatService = (*Service)(nil)

// NewService creates a new chat service. timeout bounds each store call.
func NewService(
	chatRepo repositories.ChatRepository,
	authorizer services.ResourceAuthorizer,
	txManager repositories.TransactionManager,
	timeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		chatRepo:   chatRepo,
		authorizer: authorizer,
		txManager:  txManager,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
		tracer:     otel.Tracer("parley/chat"),
		logger:     logger,
	}
}

// ListChats retrieves the user's chats, most recently updated first
func (s *Service) ListChats(ctx context.Context, userID string) ([]llmModels.Chat, error) {
	ctx, done := s.begin(ctx, "chat.list", userID, "")
	defer done()

	chats, err := s.chatRepo.ListChatsByUser(ctx, userID)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	if chats == nil {
		chats = []llmModels.Chat{}
	}
	return chats, nil
}

// CreateChat creates an empty chat with the placeholder title
func (s *Service) CreateChat(ctx context.Context, userID string) (*llmModels.Chat, error) {
	if err := validation.Validate(userID, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: user: %v", domain.ErrValidation, err)
	}

	ctx, done := s.begin(ctx, "chat.create", userID, "")
	defer done()

	now := s.now()
	chat := &llmModels.Chat{
		UserID:    userID,
		Title:     llmModels.DefaultChatTitle,
		Messages:  []llmModels.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.chatRepo.CreateChat(ctx, chat); err != nil {
		return nil, s.storeError(ctx, err)
	}

	s.logger.Info("chat created",
		zap.String("id", chat.ID),
		zap.String("user_id", userID),
	)

	return chat, nil
}

// GetChat retrieves a chat by ID. Someone else's chat is reported as not found.
func (s *Service) GetChat(ctx context.Context, chatID, userID string) (*llmModels.Chat, error) {
	ctx, done := s.begin(ctx, "chat.get", userID, chatID)
	defer done()

	chat, err := s.chatRepo.GetChat(ctx, chatID, userID)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	return chat, nil
}

// UpdateChat replaces the fields present in req and refreshes updated_at,
// even when req carries no fields
func (s *Service) UpdateChat(ctx context.Context, chatID, userID string, req *llmSvc.UpdateChatRequest) error {
	ctx, done := s.begin(ctx, "chat.update", userID, chatID)
	defer done()

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.authorizer.CanAccessChat(txCtx, userID, chatID); err != nil {
			return err
		}

		patch, err := s.buildPatch(req)
		if err != nil {
			return err
		}
		patch.UpdatedAt = s.now()

		return s.chatRepo.UpdateChat(txCtx, chatID, patch)
	})
	if err != nil {
		return s.storeError(ctx, err)
	}

	s.logger.Info("chat updated",
		zap.String("id", chatID),
		zap.String("user_id", userID),
		zap.Bool("title", req != nil && req.Title != nil),
		zap.Bool("messages", req != nil && req.Messages != nil),
	)

	return nil
}

// DeleteChat permanently removes a chat. Deleting twice reports NotFound.
func (s *Service) DeleteChat(ctx context.Context, chatID, userID string) error {
	ctx, done := s.begin(ctx, "chat.delete", userID, chatID)
	defer done()

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.authorizer.CanAccessChat(txCtx, userID, chatID); err != nil {
			return err
		}
		return s.chatRepo.DeleteChat(txCtx, chatID)
	})
	if err != nil {
		return s.storeError(ctx, err)
	}

	s.logger.Info("chat deleted",
		zap.String("id", chatID),
		zap.String("user_id", userID),
	)

	return nil
}

// buildPatch validates req and normalizes its messages to canonical roles
func (s *Service) buildPatch(req *llmSvc.UpdateChatRequest) (*llmModels.ChatPatch, error) {
	patch := &llmModels.ChatPatch{}
	if req == nil {
		return patch, nil
	}

	if err := validateUpdateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		patch.Title = &title
	}

	if req.Messages != nil {
		messages, err := history.Normalize(*req.Messages)
		if err != nil {
			return nil, err
		}
		for i, m := range messages {
			if err := validation.Validate(m.Content, validation.RuneLength(0, config.MaxMessageLength)); err != nil {
				return nil, fmt.Errorf("%w: messages[%d]: %v", domain.ErrValidation, i, err)
			}
		}
		patch.Messages = &messages
	}

	return patch, nil
}

func validateUpdateChatRequest(req *llmSvc.UpdateChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.By(trimmedTitle),
		),
		validation.Field(&req.Messages,
			validation.Length(0, config.MaxHistoryTurns),
		),
	)
}

func trimmedTitle(value interface{}) error {
	title, ok := value.(*string)
	if !ok || title == nil {
		return nil
	}
	return validation.Validate(strings.TrimSpace(*title),
		validation.Required,
		validation.RuneLength(1, config.MaxChatTitleLength),
	)
}

// begin bounds ctx by the store timeout and opens a span
func (s *Service) begin(ctx context.Context, op, userID, chatID string) (context.Context, func()) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("chat.id", chatID),
	))
	if s.timeout <= 0 {
		return ctx, func() { span.End() }
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, func() {
		cancel()
		span.End()
	}
}

// storeError passes taxonomy errors through and reports store failures,
// including deadline expiry, as ProviderUnavailable
func (s *Service) storeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrValidation,
		domain.ErrMalformedHistory,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	trace.SpanFromContext(ctx).RecordError(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Error("chat store timed out", zap.Duration("timeout", s.timeout), zap.Error(err))
	} else {
		s.logger.Error("chat store failed", zap.Error(err))
	}
	return fmt.Errorf("chat store: %w: %v", domain.ErrProviderUnavailable, err)
}
