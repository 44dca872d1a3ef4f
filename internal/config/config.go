package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// Default returns the configuration used when no file is present
func Default() *models.Config {
	return &models.Config{
		Port:     8080,
		Host:     "0.0.0.0",
		LogLevel: "info",
		AI: models.AIConfig{
			DefaultProvider: "groq",
			OpenAI:          models.OpenAIConfig{Model: "gpt-4o-mini"},
			Groq: models.OpenAIConfig{
				BaseURL: "https://api.groq.com/openai/v1",
				Model:   "meta-llama/llama-4-scout-17b-16e-instruct",
			},
			Gemini: models.GeminiConfig{Model: "gemini-1.5-flash"},
			Ollama: models.OllamaConfig{BaseURL: "http://localhost:11434/v1", Model: "llama3"},
		},
		Database: models.DatabaseConfig{
			Schema: "public",
			Tables: models.TableNames{
				Products:         "products",
				BusinessEntities: "business_entities",
				Customers:        "customers",
				Invoices:         "challans",
			},
			MaxConns: 10,
		},
		Matching: models.MatchingConfig{
			Policy:    models.MatchFuzzy,
			Scorer:    models.ScorerLevenshtein,
			Threshold: 80,
		},
		Invoice: models.InvoiceConfig{
			SchemaVersion:    4,
			MaxNumberRetries: 3,
		},
		Timeouts: models.TimeoutConfig{
			Database: 5 * time.Second,
			LLM:      30 * time.Second,
		},
		Storage: models.StorageConfig{
			Endpoint: "minio:9000",
			Bucket:   "challans",
		},
		RateLimit: models.RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}

// Load reads .env (if any), the YAML file at path (if any) and environment overrides
func Load(path string) (*models.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults + environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = p
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	// AI
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		config.AI.Groq.APIKey = apiKey
	}
	if model := os.Getenv("GROQ_MODEL"); model != "" {
		config.AI.Groq.Model = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}

	// Database
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if schema := os.Getenv("DB_SCHEMA"); schema != "" {
		config.Database.Schema = schema
	}

	// Invoicing policy
	if rate := os.Getenv("DISCOUNT_RATE"); rate != "" {
		r, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return fmt.Errorf("invalid DISCOUNT_RATE %q: %w", rate, err)
		}
		config.Invoice.DiscountRate = r
	}
	if owner := os.Getenv("DEFAULT_OWNER_NAME"); owner != "" {
		config.Invoice.DefaultOwnerName = owner
	}
	if policy := os.Getenv("MATCH_POLICY"); policy != "" {
		config.Matching.Policy = policy
	}
	if threshold := os.Getenv("MATCH_THRESHOLD"); threshold != "" {
		t, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			return fmt.Errorf("invalid MATCH_THRESHOLD %q: %w", threshold, err)
		}
		config.Matching.Threshold = t
	}

	// MinIO
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
		config.Storage.Enabled = true
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if os.Getenv("MINIO_USE_SSL") == "true" {
		config.Storage.UseSSL = true
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with
func Validate(config *models.Config) error {
	switch config.Matching.Policy {
	case models.MatchFuzzy, models.MatchSubstring:
	default:
		return fmt.Errorf("unknown matching policy %q", config.Matching.Policy)
	}
	switch config.Matching.Scorer {
	case models.ScorerLevenshtein, models.ScorerJaroWinkler:
	default:
		return fmt.Errorf("unknown fuzzy scorer %q", config.Matching.Scorer)
	}
	if config.Matching.Threshold < 0 || config.Matching.Threshold > 100 {
		return fmt.Errorf("matching threshold must be within 0-100, got %v", config.Matching.Threshold)
	}
	if config.Invoice.DiscountRate < 0 || config.Invoice.DiscountRate > 100 {
		return fmt.Errorf("discount rate must be within 0-100, got %v", config.Invoice.DiscountRate)
	}
	if config.Invoice.MaxNumberRetries < 0 {
		return fmt.Errorf("max_number_retries cannot be negative")
	}
	if config.Timeouts.Database <= 0 || config.Timeouts.LLM <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
