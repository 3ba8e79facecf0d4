package adapters

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
)

const openAIName = "openai"

// OpenAIAdapter talks to a chat completions endpoint using the flat
// convention: persona, history and the new message go out as one list.
// Any OpenAI-compatible server works through Options.BaseURL.
type OpenAIAdapter struct {
	client openai.Client
	opts   Options
	logger *zap.Logger
}

// NewOpenAIAdapter creates an OpenAI adapter
func NewOpenAIAdapter(opts Options) (*OpenAIAdapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if err := opts.requireModel(openAIName); err != nil {
		return nil, err
	}

	// Retries would spend the generation deadline; callers decide whether to retry
	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenAIAdapter{
		client: openai.NewClient(clientOpts...),
		opts:   opts,
		logger: opts.logger().With(zap.String("provider", openAIName)),
	}, nil
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string { return openAIName }

// Model returns the configured model
func (a *OpenAIAdapter) Model() string { return a.opts.Model }

// Generate sends persona + history + userMessage and returns the reply.
// top_k is not part of this API and is not sent.
func (a *OpenAIAdapter) Generate(ctx context.Context, messages []llm.Message, userMessage string) (string, error) {
	sampling := a.opts.Sampling
	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(a.opts.Model),
		Messages:    toOpenAIMessages(a.opts.Persona, messages, userMessage),
		Temperature: openai.Float(sampling.Temperature),
		TopP:        openai.Float(sampling.TopP),
		MaxTokens:   openai.Int(int64(sampling.MaxOutputTokens)),
	})
	if err != nil {
		a.logger.Error("openai request failed", zap.Error(err))
		return "", classify(ctx, openAIName, openAIError(err))
	}

	if len(completion.Choices) == 0 {
		return "", domain.NewGenerationError(openAIName, "no choices returned")
	}

	choice := completion.Choices[0]
	if choice.Message.Refusal != "" {
		return "", domain.NewGenerationError(openAIName, "refused: "+choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return "", domain.NewGenerationError(openAIName, "empty reply, finish reason "+choice.FinishReason)
	}

	return choice.Message.Content, nil
}

func toOpenAIMessages(persona string, messages []llm.Message, userMessage string) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+2)
	if persona != "" {
		out = append(out, openai.SystemMessage(persona))
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return append(out, openai.UserMessage(userMessage))
}

// openAIError surfaces the API's own message as the failure details
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return domain.NewGenerationError(openAIName, apiErr.Message)
	}
	return err
}
