package adapters

import (
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"

	"parley/internal/domain/models/llm"
	"parley/internal/service/llm/history"
)

const blockTypeText = "text"

// toLibraryRequest builds a meridian-llm-go request. History system turns
// are folded into the system param after the persona.
func toLibraryRequest(opts *Options, messages []llm.Message, userMessage string) *llmprovider.GenerateRequest {
	system, conversation := history.SplitSystem(messages)
	conversation = append(conversation, llm.Message{Role: llm.RoleUser, Content: userMessage})

	libMessages := make([]llmprovider.Message, 0, len(conversation))
	for _, turn := range history.ToFlat(conversation, history.CanonicalRoles) {
		libMessages = append(libMessages, llmprovider.Message{
			Role: turn.Role,
			Blocks: []*llmprovider.Block{{
				BlockType:   blockTypeText,
				Sequence:    0,
				TextContent: turn.Content,
			}},
		})
	}

	sampling := opts.Sampling
	params := &llmprovider.RequestParams{
		MaxTokens:   intPtr(sampling.MaxOutputTokens),
		Temperature: floatPtr(sampling.Temperature),
		TopP:        floatPtr(sampling.TopP),
	}
	if opts.SupportsTopK {
		params.TopK = intPtr(sampling.TopK)
	}
	if instruction := history.SystemInstruction(opts.Persona, system); instruction != "" {
		params.System = stringPtr(instruction)
	}

	return &llmprovider.GenerateRequest{
		Messages: libMessages,
		Model:    opts.Model,
		Params:   params,
	}
}

// replyText joins the text blocks of a library response in order
func replyText(resp *llmprovider.GenerateResponse) string {
	var b strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}
	return b.String()
}
