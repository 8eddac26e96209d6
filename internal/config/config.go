package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
	Interview InterviewConfig `mapstructure:"interview"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	AI        AIConfig        `mapstructure:"ai"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// StoreConfig holds listing store configuration
type StoreConfig struct {
	Driver             string `mapstructure:"driver"` // postgres or sqlite
	DSN                string `mapstructure:"dsn"`    // full connection string (preferred)
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Database           string `mapstructure:"database"`
	SSLMode            string `mapstructure:"sslmode"`
	SQLitePath         string `mapstructure:"sqlite_path"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	Host           string `mapstructure:"host"`
	GinMode        string `mapstructure:"gin_mode"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// InterviewConfig holds question loop configuration
type InterviewConfig struct {
	MaxQuestions int           `mapstructure:"max_questions"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	LLMPhrasing  bool          `mapstructure:"llm_phrasing"`
	Classifier   bool          `mapstructure:"classifier"`
	LLMTimeout   time.Duration `mapstructure:"llm_timeout"`
}

// RecommendConfig holds ranking and explanation configuration
type RecommendConfig struct {
	TopK                   int           `mapstructure:"top_k"`
	ExplanationTimeout     time.Duration `mapstructure:"explanation_timeout"`
	ExplanationConcurrency int           `mapstructure:"explanation_concurrency"`
	StoreTimeout           time.Duration `mapstructure:"store_timeout"`
}

// ScoringConfig holds Value Score weights and constants
type ScoringConfig struct {
	WeightDepreciation float64 `mapstructure:"weight_depreciation"`
	WeightMileage      float64 `mapstructure:"weight_mileage"`
	WeightRegistration float64 `mapstructure:"weight_registration"`
	WeightBrand        float64 `mapstructure:"weight_brand"`
	ExpectedKMPerYear  float64 `mapstructure:"expected_km_per_year"`
	SchemeYears        float64 `mapstructure:"scheme_years"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AIConfig selects the text generation provider
type AIConfig struct {
	Provider          string  `mapstructure:"provider"` // openai, gemini or anthropic
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string  `mapstructure:"api_key"`
	APIBase             string  `mapstructure:"api_base"`
	ChatModel           string  `mapstructure:"chat_model"`
	ChatTemperature     float64 `mapstructure:"chat_temperature"`
	ChatTopP            float64 `mapstructure:"chat_top_p"`
	ChatMaxTokens       int     `mapstructure:"chat_max_tokens"`
	ChatExtraBody       string  `mapstructure:"chat_extra_body"` // JSON string for extra_body
	EmbeddingModel      string  `mapstructure:"embedding_model"`
	EmbeddingDimensions int     `mapstructure:"embedding_dimensions"`
	BatchSize           int     `mapstructure:"batch_size"`
	Timeout             int     `mapstructure:"timeout"`
	Enabled             bool    `mapstructure:"-"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// Load reads configuration from .env, an optional caradvisor.yaml and
// environment variables (STORE_DRIVER, OPENAI_API_KEY, ...)
func Load(configFile string) (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("caradvisor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// DATABASE_URL / PG_* names are kept for existing deployments
	_ = v.BindEnv("store.dsn", "STORE_DSN", "DATABASE_URL", "PG_DSN")
	_ = v.BindEnv("store.host", "STORE_HOST", "PG_HOST")
	_ = v.BindEnv("store.port", "STORE_PORT", "PG_PORT")
	_ = v.BindEnv("store.user", "STORE_USER", "PG_USER")
	_ = v.BindEnv("store.password", "STORE_PASSWORD", "PG_PASSWORD")
	_ = v.BindEnv("store.database", "STORE_DATABASE", "PG_DATABASE")
	_ = v.BindEnv("server.gin_mode", "SERVER_GIN_MODE", "GIN_MODE")
	_ = v.BindEnv("logging.level", "LOGGING_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOGGING_FORMAT", "LOG_FORMAT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.OpenAI.Enabled = cfg.OpenAI.APIKey != ""

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.user", "postgres")
	v.SetDefault("store.password", "")
	v.SetDefault("store.database", "car_search")
	v.SetDefault("store.sslmode", "disable")
	v.SetDefault("store.sqlite_path", "cars.db")
	v.SetDefault("store.max_connections", 25)
	v.SetDefault("store.max_idle_connections", 5)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.allowed_origins", "*")

	v.SetDefault("interview.max_questions", 5)
	v.SetDefault("interview.session_ttl", 60*time.Minute)
	v.SetDefault("interview.llm_phrasing", false)
	v.SetDefault("interview.classifier", false)
	v.SetDefault("interview.llm_timeout", 8*time.Second)

	v.SetDefault("recommend.top_k", 3)
	v.SetDefault("recommend.explanation_timeout", 20*time.Second)
	v.SetDefault("recommend.explanation_concurrency", 3)
	v.SetDefault("recommend.store_timeout", 10*time.Second)

	v.SetDefault("scoring.weight_depreciation", 35.0)
	v.SetDefault("scoring.weight_mileage", 25.0)
	v.SetDefault("scoring.weight_registration", 25.0)
	v.SetDefault("scoring.weight_brand", 15.0)
	v.SetDefault("scoring.expected_km_per_year", 15000.0)
	v.SetDefault("scoring.scheme_years", 10.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.requests_per_second", 2.0)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.api_base", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.chat_temperature", 0.4)
	v.SetDefault("openai.chat_top_p", 0.9)
	v.SetDefault("openai.chat_max_tokens", 600)
	v.SetDefault("openai.chat_extra_body", "")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.embedding_dimensions", 1536)
	v.SetDefault("openai.batch_size", 100)
	v.SetDefault("openai.timeout", 30)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 600)
}

// Validate rejects misconfiguration. It is called once at startup and a
// failure is fatal.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return eris.Errorf("config: unknown store driver %q (want postgres or sqlite)", c.Store.Driver)
	}

	switch c.AI.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return eris.Errorf("config: unknown ai provider %q (want openai, gemini or anthropic)", c.AI.Provider)
	}

	if c.Interview.MaxQuestions < 1 || c.Interview.MaxQuestions > 6 {
		return eris.Errorf("config: interview.max_questions must be between 1 and 6, got %d", c.Interview.MaxQuestions)
	}
	if c.Recommend.TopK < 1 || c.Recommend.TopK > 20 {
		return eris.Errorf("config: recommend.top_k must be between 1 and 20, got %d", c.Recommend.TopK)
	}
	if c.Recommend.ExplanationConcurrency < 1 {
		return eris.New("config: recommend.explanation_concurrency must be at least 1")
	}

	weights := map[string]float64{
		"weight_depreciation": c.Scoring.WeightDepreciation,
		"weight_mileage":      c.Scoring.WeightMileage,
		"weight_registration": c.Scoring.WeightRegistration,
		"weight_brand":        c.Scoring.WeightBrand,
	}
	sum := 0.0
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return eris.Errorf("config: scoring.%s cannot be negative", name)
		}
		sum += w
	}
	if math.Abs(sum-100) > 1e-6 {
		return eris.Errorf("config: scoring weights must sum to 100, got %.2f", sum)
	}
	if c.Scoring.ExpectedKMPerYear <= 0 {
		return eris.New("config: scoring.expected_km_per_year must be positive")
	}
	if c.Scoring.SchemeYears <= 0 {
		return eris.New("config: scoring.scheme_years must be positive")
	}

	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Store.Host,
		c.Store.Port,
		c.Store.User,
		c.Store.Password,
		c.Store.Database,
		c.Store.SSLMode,
	)
}

// GetSQLiteDSN returns the SQLite database path
func (c *Config) GetSQLiteDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	return c.Store.SQLitePath
}
