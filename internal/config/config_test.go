package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, ProviderOllama, cfg.Inference.Provider)
	assert.Equal(t, "http://localhost:11434/api", cfg.Inference.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 0, cfg.Inference.MaxTokens)
	assert.Empty(t, cfg.Inference.StopSequences)
	assert.Equal(t, 0.8, cfg.Temperatures.Persona)
	assert.Equal(t, 0.8, cfg.Temperatures.Interview)
	assert.Equal(t, 0.5, cfg.Temperatures.Summary)
	assert.Equal(t, FailureModeAbort, cfg.Study.FailureMode)
	assert.Equal(t, 1, cfg.Study.PersonaConcurrency)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("OLLAMA_MODEL", "llama3:8b")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/api/")
	t.Setenv("OLLAMA_TIMEOUT", "45")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("STOP_SEQUENCES", "###, END")
	t.Setenv("SUMMARY_TEMPERATURE", "0.2")
	t.Setenv("STUDY_FAILURE_MODE", "PARTIAL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3:8b", cfg.Inference.Model)
	assert.Equal(t, "http://ollama:11434/api", cfg.Inference.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 512, cfg.Inference.MaxTokens)
	assert.Equal(t, []string{"###", "END"}, cfg.Inference.StopSequences)
	assert.Equal(t, 0.2, cfg.Temperatures.Summary)
	assert.Equal(t, FailureModePartial, cfg.Study.FailureMode)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respondents.yaml")
	yamlDoc := `
http_port: "9100"
inference:
  model: mistral:latest
  timeout: 30s
  max_retries: 2
temperatures:
  persona: 0.9
study:
  persona_concurrency: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "9200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.HTTPPort, "env wins over file")
	assert.Equal(t, "mistral:latest", cfg.Inference.Model)
	assert.Equal(t, 30*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 2, cfg.Inference.MaxRetries)
	assert.Equal(t, 0.9, cfg.Temperatures.Persona)
	assert.Equal(t, 0.8, cfg.Temperatures.Interview, "untouched keys keep defaults")
	assert.Equal(t, 4, cfg.Study.PersonaConcurrency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Inference.Provider = "llamacpp" }, "unknown INFERENCE_PROVIDER"},
		{"gemini needs key", func(c *Config) { c.Inference.Provider = ProviderGemini }, "GEMINI_API_KEY"},
		{"zero timeout", func(c *Config) { c.Inference.Timeout = 0 }, "OLLAMA_TIMEOUT"},
		{"negative retries", func(c *Config) { c.Inference.MaxRetries = -1 }, "MAX_RETRIES"},
		{"bad failure mode", func(c *Config) { c.Study.FailureMode = "ignore" }, "STUDY_FAILURE_MODE"},
		{"zero concurrency", func(c *Config) { c.Study.PersonaConcurrency = 0 }, "STUDY_PERSONA_CONCURRENCY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "not-a-duration")
	assert.Equal(t, 5*time.Second, getEnvAsDuration("SOME_TIMEOUT", 5*time.Second))

	t.Setenv("SOME_TIMEOUT", "1m30s")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("SOME_TIMEOUT", 5*time.Second))

	t.Setenv("SOME_TIMEOUT", "2.5")
	assert.Equal(t, 2500*time.Millisecond, getEnvAsDuration("SOME_TIMEOUT", 5*time.Second))
}
