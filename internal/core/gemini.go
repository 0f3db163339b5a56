package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"gwi.com/synthetic-respondents/internal/config"
)

// GeminiClient serves completions from the Gemini API instead of a local
// Ollama server.
type GeminiClient struct {
	cfg    config.InferenceConfig
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, cfg config.InferenceConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{cfg: cfg, client: client}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini:" + g.cfg.GeminiModel
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	// GenerativeModel carries mutable generation settings, so build one per call.
	model := g.client.GenerativeModel(g.cfg.GeminiModel)
	model.SetTemperature(float32(temperature))
	if g.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.cfg.MaxTokens))
	}
	if len(g.cfg.StopSequences) > 0 {
		model.StopSequences = g.cfg.StopSequences
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &InferenceError{Op: "gemini generate", Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return text.String(), nil
}

func (g *GeminiClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := g.client.ListModels(ctx).Next()
	return err == nil || errors.Is(err, iterator.Done)
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
