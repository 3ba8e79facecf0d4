package adapters

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
	"parley/internal/service/llm/history"
)

const geminiName = "gemini"

// GeminiAdapter uses the session convention: every call opens a genai chat
// seeded with the history and sends only the new user message.
type GeminiAdapter struct {
	client *genai.Client
	opts   Options
	logger *zap.Logger
}

// NewGeminiAdapter creates a Gemini adapter
func NewGeminiAdapter(opts Options) (*GeminiAdapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}
	if err := opts.requireModel(geminiName); err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	// NewClient does no I/O; the context only seeds credential lookup
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		opts:   opts,
		logger: opts.logger().With(zap.String("provider", geminiName)),
	}, nil
}

// Name returns the provider name
func (a *GeminiAdapter) Name() string { return geminiName }

// Model returns the configured model
func (a *GeminiAdapter) Model() string { return a.opts.Model }

// Generate starts a session from history and sends userMessage.
// System turns in history join the persona in the system instruction.
func (a *GeminiAdapter) Generate(ctx context.Context, messages []llm.Message, userMessage string) (string, error) {
	system, conversation := history.SplitSystem(messages)

	chat, err := a.client.Chats.Create(ctx, a.opts.Model,
		a.contentConfig(history.SystemInstruction(a.opts.Persona, system)),
		toGeminiHistory(conversation))
	if err != nil {
		return "", classify(ctx, geminiName, err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: userMessage})
	if err != nil {
		a.logger.Error("gemini request failed", zap.Error(err))
		return "", classify(ctx, geminiName, geminiError(err))
	}

	return geminiReply(resp)
}

func (a *GeminiAdapter) contentConfig(systemInstruction string) *genai.GenerateContentConfig {
	sampling := a.opts.Sampling
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(sampling.Temperature)),
		TopP:            genai.Ptr(float32(sampling.TopP)),
		MaxOutputTokens: int32(sampling.MaxOutputTokens),
	}
	if a.opts.SupportsTopK {
		cfg.TopK = genai.Ptr(float32(sampling.TopK))
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return cfg
}

func toGeminiHistory(conversation []llm.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conversation))
	for _, turn := range history.ToParts(conversation, history.ModelRoles) {
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, &genai.Content{Role: turn.Role, Parts: parts})
	}
	return contents
}

// geminiError surfaces the API's own message as the failure details
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return domain.NewGenerationError(geminiName, apiErr.Message)
	}
	return err
}

func geminiReply(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", domain.NewGenerationError(geminiName, "empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", domain.NewGenerationError(geminiName, "prompt blocked: "+string(resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return "", domain.NewGenerationError(geminiName, "no candidates returned")
	}

	text := resp.Text()
	finish := resp.Candidates[0].FinishReason
	if text == "" && finish != "" && finish != genai.FinishReasonStop {
		return "", domain.NewGenerationError(geminiName, "generation stopped: "+string(finish))
	}
	return text, nil
}
