package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
//
// Values are resolved in order: built-in defaults, then the YAML file named
// by CONFIG_FILE if set, then environment variables.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	TripsTable    string `yaml:"trips_table"`
	ImagesTable   string `yaml:"images_table"`
	TripKeyScheme string `yaml:"trip_key_scheme"`
	EventBusName  string `yaml:"event_bus_name"`
	ImageBucket   string `yaml:"image_bucket"`

	// Storage backend: "dynamodb" or "memory"
	Store string `yaml:"store"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Assistant
	OpenAIAPIKey  string        `yaml:"-"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	ChatModel     string        `yaml:"chat_model"`
	ChatTimeout   time.Duration `yaml:"chat_timeout"`
	ChatRetries   int           `yaml:"chat_retries"`

	// HTTP
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   int      `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	CacheTTL       int      `yaml:"cache_ttl_seconds"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Observability
	MetricsNamespace string `yaml:"metrics_namespace"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ServerAddress:    ":8080",
		Environment:      "development",
		AWSRegion:        "us-east-1",
		TripsTable:       "TripTrek",
		ImagesTable:      "TripTrekImages",
		TripKeyScheme:    "single",
		EventBusName:     "",
		Store:            "dynamodb",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		ChatModel:        "ft:gpt-3.5-turbo-0125:personal:trekka:C1G5p4GH",
		ChatTimeout:      30 * time.Second,
		ChatRetries:      2,
		AllowedOrigins:   []string{"*"},
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		CacheTTL:         60,
		LogLevel:         "info",
		MetricsNamespace: "TripTrek",
		EnableCORS:       true,
	}
}

// LoadConfig loads configuration from defaults, CONFIG_FILE and the environment
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// LoadFile overlays values from a YAML file. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.TripsTable = getEnv("TRIPS_TABLE", getEnv("LOCATIONS_TABLE", c.TripsTable))
	c.ImagesTable = getEnv("IMAGES_TABLE", getEnv("TABLE_NAME", c.ImagesTable))
	c.TripKeyScheme = getEnv("TRIP_KEY_SCHEME", c.TripKeyScheme)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.ImageBucket = getEnv("BUCKET_NAME", getEnv("LOCATION_IMAGES_BUCKET", c.ImageBucket))
	c.Store = getEnv("STORE", c.Store)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", c.LambdaFunctionName)

	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ChatModel = getEnv("CHAT_MODEL", c.ChatModel)
	c.ChatTimeout = getEnvDuration("CHAT_TIMEOUT", c.ChatTimeout)
	c.ChatRetries = getEnvInt("CHAT_RETRIES", c.ChatRetries)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	c.RateLimitRPS = getEnvInt("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)
	c.CacheTTL = getEnvInt("CACHE_TTL_SECONDS", c.CacheTTL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Store {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("STORE must be dynamodb or memory, got %q", c.Store)
	}

	switch strings.ToLower(c.TripKeyScheme) {
	case "single", "composite":
	default:
		return fmt.Errorf("TRIP_KEY_SCHEME must be single or composite, got %q", c.TripKeyScheme)
	}

	if c.Store == "dynamodb" {
		if c.TripsTable == "" {
			return fmt.Errorf("TRIPS_TABLE is required")
		}
		if c.ImagesTable == "" {
			return fmt.Errorf("IMAGES_TABLE is required")
		}
	}

	if c.IsProduction() {
		if c.ImageBucket == "" {
			return fmt.Errorf("BUCKET_NAME is required in production")
		}
		if c.Store != "dynamodb" {
			return fmt.Errorf("the memory store cannot be used in production")
		}
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
