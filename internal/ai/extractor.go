package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// ExtractionError means the model did not return a usable billing request.
// Reply holds the model's raw text so it can be shown back to the user.
type ExtractionError struct {
	Reply string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract billing request: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var (
	errNotJSON    = errors.New("reply is not a JSON object")
	errIncomplete = errors.New("reply lacks customer or products")
)

// Extractor turns free-text billing requests into structured fields
type Extractor struct {
	provider Provider
}

// NewExtractor creates a new extractor
func NewExtractor(provider Provider) *Extractor {
	return &Extractor{provider: provider}
}

// ProviderName returns the name of the underlying model provider
func (e *Extractor) ProviderName() string {
	return e.provider.Name()
}

// Extract asks the model for the store, customer, products, quantities and unit of text
func (e *Extractor) Extract(ctx context.Context, text string) (*models.Extraction, error) {
	response, err := e.provider.ExtractData(ctx, buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("AI extraction failed: %w", err)
	}
	return ParseResponse(response)
}

func buildPrompt(text string) string {
	return fmt.Sprintf(`You are an assistant that turns billing requests into invoices.

If the user gives a billing request like:
"I bought 2 strips of Augmentin and 3 Crocin for Hrishita from Anand Pharmacy"
return:
{
  "store": "Anand Pharmacy",
  "customer_name": "Hrishita",
  "product_names": "Augmentin, Crocin",
  "quantities": "2, 3",
  "unit_type": "strip"
}

Rules:
- A store, pharmacy, medi point or medicals is the "store".
- product_names and quantities are comma separated and in the same order.
- quantities are whole numbers.
- Respond ONLY with the JSON object.

Request:
"""%s"""`, text)
}

// ParseResponse parses a model reply into an Extraction. Lists and numbers are
// accepted where comma separated strings are expected.
func ParseResponse(response string) (*models.Extraction, error) {
	// Clean response (remove markdown code blocks if present)
	cleaned := strings.TrimSpace(response)
	backticks := string([]byte{96, 96, 96})
	cleaned = strings.ReplaceAll(cleaned, backticks+"json", "")
	cleaned = strings.ReplaceAll(cleaned, backticks, "")
	cleaned = strings.Trim(strings.TrimSpace(cleaned), "`")
	cleaned = strings.TrimSpace(cleaned)

	var raw struct {
		Store        interface{} `json:"store"`
		CustomerName interface{} `json:"customer_name"`
		ProductNames interface{} `json:"product_names"`
		Quantities   interface{} `json:"quantities"`
		UnitType     interface{} `json:"unit_type"`
		Reply        interface{} `json:"reply"`
	}
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, &ExtractionError{Reply: cleaned, Err: fmt.Errorf("%w: %v", errNotJSON, err)}
	}

	ex := &models.Extraction{
		Store:        flatten(raw.Store),
		CustomerName: flatten(raw.CustomerName),
		ProductNames: flatten(raw.ProductNames),
		Quantities:   flatten(raw.Quantities),
		UnitType:     flatten(raw.UnitType),
	}
	if ex.CustomerName == "" || ex.ProductNames == "" {
		reply := flatten(raw.Reply)
		if reply == "" {
			reply = cleaned
		}
		return nil, &ExtractionError{Reply: reply, Err: errIncomplete}
	}
	return ex, nil
}

// flatten renders v as a string, joining lists with ", "
func flatten(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
