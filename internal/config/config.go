package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	FailureModeAbort   = "abort"
	FailureModePartial = "partial"
)

type InferenceConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxTokens     int           `yaml:"max_tokens"`     // 0 leaves num_predict out of the payload
	StopSequences []string      `yaml:"stop_sequences"` // empty leaves stop out of the payload
	MaxRetries    int           `yaml:"max_retries"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
}

type TemperatureConfig struct {
	Persona   float64 `yaml:"persona"`
	Interview float64 `yaml:"interview"`
	Summary   float64 `yaml:"summary"`
}

type StudyConfig struct {
	FailureMode        string `yaml:"failure_mode"`
	PersonaConcurrency int    `yaml:"persona_concurrency"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type Config struct {
	HTTPPort     string            `yaml:"http_port"`
	LogLevel     string            `yaml:"log_level"`
	DatabaseURL  string            `yaml:"database_url"`
	CORSOrigins  []string          `yaml:"cors_origins"`
	Inference    InferenceConfig   `yaml:"inference"`
	Temperatures TemperatureConfig `yaml:"temperatures"`
	Study        StudyConfig       `yaml:"study"`
	Tracing      TracingConfig     `yaml:"tracing"`
}

var AppConfig Config

// Default returns the settings used when neither a config file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		HTTPPort:    "8000",
		LogLevel:    "INFO",
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		Inference: InferenceConfig{
			Provider:    ProviderOllama,
			Model:       "gpt-oss:20b",
			BaseURL:     "http://localhost:11434/api",
			Timeout:     120 * time.Second,
			GeminiModel: "gemini-1.5-flash-latest",
		},
		Temperatures: TemperatureConfig{
			Persona:   0.8,
			Interview: 0.8,
			Summary:   0.5,
		},
		Study: StudyConfig{
			FailureMode:        FailureModeAbort,
			PersonaConcurrency: 1,
		},
		Tracing: TracingConfig{
			ServiceName: "synthetic-respondents",
		},
	}
}

// LoadConfig populates AppConfig from defaults, the optional YAML file named
// by CONFIG_FILE, and finally the process environment (.env included).
func LoadConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.CORSOrigins = getEnvAsList("CORS_ORIGINS", c.CORSOrigins)

	c.Inference.Provider = strings.ToLower(getEnv("INFERENCE_PROVIDER", c.Inference.Provider))
	c.Inference.Model = getEnv("OLLAMA_MODEL", c.Inference.Model)
	c.Inference.BaseURL = strings.TrimRight(getEnv("OLLAMA_BASE_URL", c.Inference.BaseURL), "/")
	c.Inference.Timeout = getEnvAsDuration("OLLAMA_TIMEOUT", c.Inference.Timeout)
	c.Inference.MaxTokens = getEnvAsInt("MAX_TOKENS", c.Inference.MaxTokens)
	c.Inference.StopSequences = getEnvAsList("STOP_SEQUENCES", c.Inference.StopSequences)
	c.Inference.MaxRetries = getEnvAsInt("MAX_RETRIES", c.Inference.MaxRetries)
	c.Inference.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.Inference.GeminiAPIKey)
	c.Inference.GeminiModel = getEnv("GEMINI_MODEL", c.Inference.GeminiModel)

	c.Temperatures.Persona = getEnvAsFloat("PERSONA_TEMPERATURE", c.Temperatures.Persona)
	c.Temperatures.Interview = getEnvAsFloat("INTERVIEW_TEMPERATURE", c.Temperatures.Interview)
	c.Temperatures.Summary = getEnvAsFloat("SUMMARY_TEMPERATURE", c.Temperatures.Summary)

	c.Study.FailureMode = strings.ToLower(getEnv("STUDY_FAILURE_MODE", c.Study.FailureMode))
	c.Study.PersonaConcurrency = getEnvAsInt("STUDY_PERSONA_CONCURRENCY", c.Study.PersonaConcurrency)

	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Tracing.ServiceName)
}

func (c *Config) Validate() error {
	switch c.Inference.Provider {
	case ProviderOllama:
		if c.Inference.BaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
		}
	case ProviderGemini:
		if c.Inference.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when INFERENCE_PROVIDER is gemini")
		}
	default:
		return fmt.Errorf("unknown INFERENCE_PROVIDER %q", c.Inference.Provider)
	}

	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("OLLAMA_TIMEOUT must be positive")
	}
	if c.Inference.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES cannot be negative")
	}

	switch c.Study.FailureMode {
	case FailureModeAbort, FailureModePartial:
	default:
		return fmt.Errorf("unknown STUDY_FAILURE_MODE %q", c.Study.FailureMode)
	}
	if c.Study.PersonaConcurrency < 1 {
		return fmt.Errorf("STUDY_PERSONA_CONCURRENCY must be at least 1")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") as well as bare seconds ("120.0").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
