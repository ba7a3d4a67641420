package ai

import (
	"context"
	"fmt"
	"wisp/contract"
	"wisp/errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator goes through the chat completions API.
// SDK retries are disabled, the Invoker owns the retry policy.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, baseURL, model string, opts ...option.RequestOption) *OpenAIGenerator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	options = append(options, opts...)
	return &OpenAIGenerator{client: openai.NewClient(options...), model: model}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, request contract.GenerateRequest) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
	})
	if err != nil {
		return "", toTransportError(err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", errors.ErrMalformedResponse)
	}
	return completion.Choices[0].Message.Content, nil
}

func toTransportError(err error) error {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return &errors.TransportError{StatusCode: openaiErr.StatusCode, Body: truncate(openaiErr.Error(), maxErrorBody)}
	}
	return &errors.TransportError{Cause: err}
}
