package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"wisp/contract"
	"wisp/errors"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash-preview-09-2025"

// GeminiGenerator goes through the generateContent API, one attempt per call.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator targets the public Gemini API, or baseURL when set.
func NewGeminiGenerator(client *http.Client, baseURL, model, apiKey string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  client,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini client: %v", errors.ErrNotConfigured, err)
	}
	return &GeminiGenerator{client: genaiClient, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, request contract.GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{}
	if request.Shape == contract.ShapeArray || request.Shape == contract.ShapeObject {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(request.Prompt), config)
	if err != nil {
		return "", geminiError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no candidate text", errors.ErrMalformedResponse)
	}
	return text, nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &errors.TransportError{StatusCode: apiErr.Code, Body: truncate(apiErr.Message, maxErrorBody)}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &errors.TransportError{StatusCode: apiErrPtr.Code, Body: truncate(apiErrPtr.Message, maxErrorBody)}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	return &errors.TransportError{Cause: err}
}
