package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// Provider sends a prompt to a language model and returns its text reply
type Provider interface {
	ExtractData(ctx context.Context, prompt string) (string, error)
	Name() string
}

// OpenAIProvider talks to any OpenAI compatible chat completions endpoint
type OpenAIProvider struct {
	client   *openai.Client
	model    string
	name     string
	jsonMode bool
}

// NewOpenAIProvider creates a provider for api.openai.com or a compatible baseURL
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		name:     "openai",
		jsonMode: true,
	}
}

// NewGroqProvider creates a provider for Groq's OpenAI compatible API
func NewGroqProvider(apiKey, baseURL, model string) *OpenAIProvider {
	p := NewOpenAIProvider(apiKey, baseURL, model)
	p.name = "groq"
	return p
}

// NewOllamaProvider creates a provider for a local Ollama server
func NewOllamaProvider(baseURL, model string) *OpenAIProvider {
	// Ollama ignores the key but the client requires one
	p := NewOpenAIProvider("ollama", baseURL, model)
	p.name = "ollama"
	p.jsonMode = false
	return p
}

func (p *OpenAIProvider) Name() string { return p.name }

// ExtractData sends prompt as a single user message
func (p *OpenAIProvider) ExtractData(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	}
	if p.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiProvider talks to Google Gemini
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// ExtractData asks Gemini for a JSON reply to prompt
func (p *GeminiProvider) ExtractData(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return strings.TrimSpace(sb.String()), nil
}

// NewProvider creates the provider named by name from config.
// An empty name selects the configured default.
func NewProvider(cfg models.AIConfig, name string) (Provider, error) {
	if name == "" {
		name = cfg.DefaultProvider
	}
	switch name {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("openai api key not configured")
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, errors.New("groq api key not configured")
		}
		return NewGroqProvider(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("gemini api key not configured")
		}
		return NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	case "ollama":
		return NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", name)
	}
}
