// Package generation runs the generate workflow: validate the request,
// check chat ownership, normalize history, then call the generator.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"parley/internal/config"
	"parley/internal/domain"
	"parley/internal/domain/services"
	llmSvc "parley/internal/domain/services/llm"
	"parley/internal/service/llm/history"
)

// Service implements llmSvc.GenerationService.
// Generated replies are returned, never saved; clients persist them with a
// chat update.
type Service struct {
	generator         llmSvc.Generator
	authorizer        services.ResourceAuthorizer
	storeTimeout      time.Duration
	generationTimeout time.Duration
	tracer            trace.Tracer
	logger            *zap.Logger
}

var _ llmSvc.GenerationService = (*Service)(nil)

// NewService creates the generation orchestrator
func NewService(
	generator llmSvc.Generator,
	authorizer services.ResourceAuthorizer,
	storeTimeout time.Duration,
	generationTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		generator:         generator,
		authorizer:        authorizer,
		storeTimeout:      storeTimeout,
		generationTimeout: generationTimeout,
		tracer:            otel.Tracer("parley/generation"),
		logger:            logger.With(zap.String("provider", generator.Name())),
	}
}

// Generate produces the persona's reply to req.Message.
// When a chat id is given the caller must own that chat; a missing or
// foreign chat fails before the generator is called.
func (s *Service) Generate(ctx context.Context, req *llmSvc.GenerateRequest) (*llmSvc.GenerateResponse, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ctx, span := s.tracer.Start(ctx, "generation.generate", trace.WithAttributes(
		attribute.String("user.id", req.UserID),
		attribute.String("llm.provider", s.generator.Name()),
		attribute.String("llm.model", s.generator.Model()),
		attribute.Int("history.turns", len(req.History)),
	))
	defer span.End()

	if chatID := chatIDOf(req); chatID != "" {
		span.SetAttributes(attribute.String("chat.id", chatID))
		if err := s.checkOwnership(ctx, req.UserID, chatID); err != nil {
			return nil, err
		}
	}

	messages, err := history.Normalize(req.History)
	if err != nil {
		return nil, err
	}

	genCtx := ctx
	if s.generationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.generationTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.generator.Generate(genCtx, messages, req.Message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, s.generationError(err)
	}

	s.logger.Info("reply generated",
		zap.String("user_id", req.UserID),
		zap.String("model", s.generator.Model()),
		zap.Int("history_turns", len(messages)),
		zap.Int("reply_chars", len(reply)),
		zap.Duration("duration", time.Since(start)),
	)

	return &llmSvc.GenerateResponse{Response: reply}, nil
}

func (s *Service) checkOwnership(ctx context.Context, userID, chatID string) error {
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	err := s.authorizer.CanAccessChat(ctx, userID, chatID)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		s.logger.Debug("generate refused", zap.String("chat_id", chatID), zap.Error(err))
		return err
	}

	s.logger.Error("ownership check failed", zap.String("chat_id", chatID), zap.Error(err))
	return fmt.Errorf("chat store: %w: %v", domain.ErrProviderUnavailable, err)
}

// generationError keeps GenerationError and ProviderUnavailable as they are
// and wraps anything else as a generation failure
func (s *Service) generationError(err error) error {
	var genErr *domain.GenerationError
	switch {
	case errors.As(err, &genErr):
		s.logger.Error("generation failed", zap.String("details", genErr.Details))
		return genErr
	case errors.Is(err, domain.ErrProviderUnavailable):
		s.logger.Error("generation timed out", zap.Duration("timeout", s.generationTimeout), zap.Error(err))
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Error("generation timed out", zap.Duration("timeout", s.generationTimeout), zap.Error(err))
		return fmt.Errorf("%s: %w", s.generator.Name(), domain.ErrProviderUnavailable)
	default:
		s.logger.Error("generation failed", zap.Error(err))
		return domain.NewGenerationError(s.generator.Name(), err.Error())
	}
}

func chatIDOf(req *llmSvc.GenerateRequest) string {
	if req.ChatID == nil {
		return ""
	}
	return strings.TrimSpace(*req.ChatID)
}

func validateGenerateRequest(req *llmSvc.GenerateRequest) error {
	if req == nil {
		return errors.New("request is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Message,
			validation.By(notBlank),
			validation.RuneLength(0, config.MaxMessageLength),
		),
		validation.Field(&req.History,
			validation.Length(0, config.MaxHistoryTurns),
		),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
