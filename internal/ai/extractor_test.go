package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challanai/invoice-chat-service/internal/models"
)

type stubProvider struct {
	reply  string
	err    error
	prompt string
}

func (p *stubProvider) ExtractData(_ context.Context, prompt string) (string, error) {
	p.prompt = prompt
	return p.reply, p.err
}

func (p *stubProvider) Name() string { return "stub" }

func TestParseResponse_PlainJSON(t *testing.T) {
	ex, err := ParseResponse(`{"store":"Anand Pharmacy","customer_name":"Hrishita","product_names":"Augmentin, Crocin","quantities":"2, 3","unit_type":"strip"}`)
	require.NoError(t, err)

	assert.Equal(t, &models.Extraction{
		Store:        "Anand Pharmacy",
		CustomerName: "Hrishita",
		ProductNames: "Augmentin, Crocin",
		Quantities:   "2, 3",
		UnitType:     "strip",
	}, ex)
}

func TestParseResponse_CodeFenceAndLists(t *testing.T) {
	reply := "```json\n{\"store\":\"Medi Point\",\"customer_name\":\"Ravi\",\"product_names\":[\"Dolo\",\"Cetirizine\"],\"quantities\":[1,10]}\n```"

	ex, err := ParseResponse(reply)
	require.NoError(t, err)

	assert.Equal(t, "Dolo, Cetirizine", ex.ProductNames)
	assert.Equal(t, "1, 10", ex.Quantities)
	assert.Equal(t, "", ex.UnitType)
}

func TestParseResponse_NotJSON(t *testing.T) {
	_, err := ParseResponse("Sure! Who is the customer?")

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "Sure! Who is the customer?", exErr.Reply)
	assert.ErrorIs(t, err, errNotJSON)
}

func TestParseResponse_ReplyOnly(t *testing.T) {
	_, err := ParseResponse(`{"reply": "Which customer is this bill for?"}`)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "Which customer is this bill for?", exErr.Reply)
	assert.ErrorIs(t, err, errIncomplete)
}

func TestParseResponse_MissingCustomer(t *testing.T) {
	_, err := ParseResponse(`{"store":"Anand Pharmacy","product_names":"Crocin","quantities":"1"}`)
	assert.ErrorIs(t, err, errIncomplete)
}

func TestExtractor_Extract(t *testing.T) {
	p := &stubProvider{reply: `{"customer_name":"Hrishita","product_names":"Crocin","quantities":"3"}`}
	ex, err := NewExtractor(p).Extract(context.Background(), "3 Crocin for Hrishita")
	require.NoError(t, err)

	assert.Equal(t, "Hrishita", ex.CustomerName)
	assert.Contains(t, p.prompt, `"""3 Crocin for Hrishita"""`)
}

func TestExtractor_ProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("connection refused")}
	_, err := NewExtractor(p).Extract(context.Background(), "anything")

	require.Error(t, err)
	var exErr *ExtractionError
	assert.False(t, errors.As(err, &exErr), "transport failures are not clarifications")
}

func TestNewProvider(t *testing.T) {
	cfg := models.AIConfig{
		DefaultProvider: "groq",
		Groq:            models.OpenAIConfig{APIKey: "gsk", BaseURL: "https://api.groq.com/openai/v1", Model: "llama"},
		Ollama:          models.OllamaConfig{BaseURL: "http://localhost:11434/v1", Model: "llama3"},
	}

	p, err := NewProvider(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Name())

	p, err = NewProvider(cfg, "ollama")
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewProvider(cfg, "openai")
	assert.Error(t, err, "missing key")

	_, err = NewProvider(cfg, "claude")
	assert.Error(t, err)
}
