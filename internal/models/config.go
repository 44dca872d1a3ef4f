package models

import "time"

// Config represents the service configuration
type Config struct {
	// Server config
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	LogLevel string `yaml:"log_level"`

	AI        AIConfig        `yaml:"ai"`
	Database  DatabaseConfig  `yaml:"database"`
	Matching  MatchingConfig  `yaml:"matching"`
	Invoice   InvoiceConfig   `yaml:"invoice"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`

	// Groq speaks the OpenAI chat completions API
	Groq OpenAIConfig `yaml:"groq"`

	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai", "groq", "gemini", "ollama"
}

// OpenAIConfig for OpenAI and OpenAI-compatible endpoints
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434/v1"
	Model   string `yaml:"model"`
}

// DatabaseConfig describes where records and invoices live
type DatabaseConfig struct {
	URL      string     `yaml:"url"`
	Schema   string     `yaml:"schema"`
	Tables   TableNames `yaml:"tables"`
	MaxConns int32      `yaml:"max_conns"`

	// Honour db_config sent in request bodies
	AllowRequestOverride bool `yaml:"allow_request_override"`
}

// TableNames maps each collection to its table
type TableNames struct {
	Products         string `yaml:"products" json:"products"`
	BusinessEntities string `yaml:"business_entities" json:"business_entities"`
	Customers        string `yaml:"customers" json:"customers"`
	Invoices         string `yaml:"invoices" json:"invoices"`
}

// DatabaseOverride is the per-request database selection.
// Collections are positional: products, business entities, customers, invoices.
type DatabaseOverride struct {
	URI         string   `json:"uri"`
	Database    string   `json:"database"`
	Collections []string `json:"collections"`
}

// Matching policies
const (
	MatchSubstring = "substring"
	MatchFuzzy     = "fuzzy"
)

// Fuzzy scorers
const (
	ScorerLevenshtein = "levenshtein"
	ScorerJaroWinkler = "jaro_winkler"
)

// MatchingConfig selects how product names are resolved
type MatchingConfig struct {
	Policy    string  `yaml:"policy"`
	Scorer    string  `yaml:"scorer"`
	Threshold float64 `yaml:"threshold"` // 0-100
}

// InvoiceConfig holds the deployment's invoicing policy
type InvoiceConfig struct {
	DiscountRate     float64 `yaml:"discount_rate"` // percent
	DefaultOwnerName string  `yaml:"default_owner_name"`
	SchemaVersion    int     `yaml:"schema_version"`
	MaxNumberRetries int     `yaml:"max_number_retries"`
}

// TimeoutConfig bounds every external call
type TimeoutConfig struct {
	Database time.Duration `yaml:"database"`
	LLM      time.Duration `yaml:"llm"`
}

// StorageConfig for the MinIO invoice archive
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// RateLimitConfig is applied per business id
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}
