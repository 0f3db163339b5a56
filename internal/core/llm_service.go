package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/config"
	"gwi.com/synthetic-respondents/internal/metrics"
	"gwi.com/synthetic-respondents/internal/observability"
)

// InferenceClient is a black-box text completion backend.
type InferenceClient interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	// HealthCheck never fails; it reports whether the backend is reachable.
	HealthCheck(ctx context.Context) bool
	Name() string
	Close() error
}

// NewLLMService builds the configured backend wrapped with tracing, metrics
// and logging.
func NewLLMService(ctx context.Context, cfg config.InferenceConfig, m *metrics.Metrics, logger *zap.Logger) (InferenceClient, error) {
	var backend InferenceClient
	switch cfg.Provider {
	case config.ProviderOllama, "":
		backend = NewOllamaClient(cfg)
	case config.ProviderGemini:
		gc, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend = gc
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}

	logger.Info("inference backend ready",
		zap.String("backend", backend.Name()),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("max_retries", cfg.MaxRetries))

	return &instrumentedClient{next: backend, metrics: m, logger: logger}, nil
}

type instrumentedClient struct {
	next    InferenceClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func (c *instrumentedClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	ctx, span := observability.Tracer().Start(ctx, "inference.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("inference.backend", c.next.Name()),
		attribute.Float64("inference.temperature", temperature),
		attribute.Int("inference.prompt_chars", len(prompt)),
	)

	start := time.Now()
	text, err := c.next.Complete(ctx, prompt, temperature)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.IncrementInferenceCall(err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("inference call failed",
			zap.String("backend", c.next.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}

	span.SetAttributes(attribute.Int("inference.response_chars", len(text)))
	c.logger.Debug("inference call completed",
		zap.String("backend", c.next.Name()),
		zap.Float64("temperature", temperature),
		zap.Duration("elapsed", elapsed),
		zap.Int("response_chars", len(text)))
	return text, nil
}

func (c *instrumentedClient) HealthCheck(ctx context.Context) bool {
	return c.next.HealthCheck(ctx)
}

func (c *instrumentedClient) Name() string { return c.next.Name() }

func (c *instrumentedClient) Close() error {
	if err := c.next.Close(); err != nil {
		c.logger.Warn("error closing inference backend", zap.Error(err))
		return err
	}
	return nil
}
