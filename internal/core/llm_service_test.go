package core

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/config"
	"gwi.com/synthetic-respondents/internal/metrics"
)

func TestNewLLMService_UnknownProvider(t *testing.T) {
	_, err := NewLLMService(context.Background(), config.InferenceConfig{Provider: "openai"}, nil, zap.NewNop())

	assert.ErrorContains(t, err, `unknown inference provider "openai"`)
}

func TestNewLLMService_RecordsCalls(t *testing.T) {
	ollama := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/generate" {
			w.Write([]byte(`{"response":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	m := metrics.NewMetrics()
	llm, err := NewLLMService(context.Background(), ollama.cfg, m, zap.NewNop())
	require.NoError(t, err)
	defer llm.Close()

	assert.Equal(t, "ollama:test-model", llm.Name())

	text, err := llm.Complete(context.Background(), "p", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.True(t, llm.HealthCheck(context.Background()))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.InferenceCalls)
	assert.Zero(t, snap.InferenceFailures)
}
