package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/metrics"
	"gwi.com/synthetic-respondents/internal/observability"
	"gwi.com/synthetic-respondents/internal/utils"
)

// rawPreviewLen is how much raw model output a DecodeError carries.
const rawPreviewLen = 200

// Archive records finished work. Implementations must be safe for concurrent
// use; failures are logged by callers and never surface to the client.
type Archive interface {
	SavePersonaBatch(ctx context.Context, audience AudienceDefinition, personas []Persona) (string, error)
	SaveStudy(ctx context.Context, req StudyRequest, result StudyResult) (string, error)
}

type PersonaService struct {
	llm         InferenceClient
	temperature float64
	metrics     *metrics.Metrics
	archive     Archive
	logger      *zap.Logger
}

func NewPersonaService(llm InferenceClient, temperature float64, m *metrics.Metrics, archive Archive, logger *zap.Logger) *PersonaService {
	return &PersonaService{
		llm:         llm,
		temperature: temperature,
		metrics:     m,
		archive:     archive,
		logger:      logger,
	}
}

// GeneratePersonas asks the model for audience.RespondentCount personas.
// Undecodable output is fatal here and returns a *DecodeError.
func (s *PersonaService) GeneratePersonas(ctx context.Context, audience AudienceDefinition) ([]Persona, error) {
	ctx, span := observability.Tracer().Start(ctx, "personas.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("personas.requested", audience.RespondentCount))

	prompt := PersonaGenerationPrompt(audience.TargetProfile, audience.AdditionalContext, audience.RespondentCount)
	responseText, err := s.llm.Complete(ctx, prompt, s.temperature)
	if err != nil {
		return nil, err
	}

	personas, err := ParsePersonas(responseText, audience.RespondentCount)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementPersonaDecodeErrors()
		}
		s.logger.Warn("persona output could not be decoded",
			zap.Int("raw_chars", len(responseText)),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("personas.returned", len(personas)))
	if s.metrics != nil {
		s.metrics.AddPersonasGenerated(len(personas))
	}
	s.logger.Info("generated personas",
		zap.Int("requested", audience.RespondentCount),
		zap.Int("returned", len(personas)))

	if s.archive != nil {
		if batchID, err := s.archive.SavePersonaBatch(ctx, audience, personas); err != nil {
			s.logger.Warn("failed to archive persona batch", zap.Error(err))
		} else {
			s.logger.Debug("archived persona batch", zap.String("batch_id", batchID))
		}
	}
	return personas, nil
}

// ParsePersonas decodes model output into at most count personas with ids
// 1..n. A negative count keeps every decoded object.
func ParsePersonas(responseText string, count int) ([]Persona, error) {
	decoded, err := utils.ExtractJSONArray(responseText)
	if err != nil {
		return nil, &DecodeError{
			What: "personas",
			Raw:  utils.Truncate(responseText, rawPreviewLen),
			Err:  err,
		}
	}

	if count >= 0 && len(decoded) > count {
		decoded = decoded[:count]
	}

	personas := make([]Persona, 0, len(decoded))
	for i, p := range decoded {
		personas = append(personas, personaFromRaw(i+1, p))
	}
	return personas, nil
}

func personaFromRaw(id int, p map[string]any) Persona {
	profession := stringField(p, "profession", DefaultProfession)
	kids := intField(p, "kids", DefaultKids)

	return Persona{
		ID:         id,
		Name:       stringField(p, "name", DefaultPersonaName),
		Age:        intField(p, "age", DefaultAge),
		Location:   stringField(p, "location", DefaultLocation),
		Profession: profession,
		Kids:       kids,
		Demographics: map[string]any{
			"income":     stringField(p, "income", DefaultIncome),
			"education":  stringField(p, "education", DefaultEducation),
			"profession": profession,
			"family":     defaultFamily(kids),
		},
		Psychographics: map[string]any{
			"values":        stringField(p, "values", DefaultValues),
			"decisionStyle": DefaultDecisionStyle,
			"brandLoyalty":  DefaultBrandLoyalty,
		},
		BehavioralAttributes: map[string]any{
			"coffee_consumption": stringField(p, "coffee_consumption", DefaultCoffeeConsumption),
			"brand_preferences":  stringField(p, "brand_preferences", DefaultBrandPreferences),
		},
		Biases: stringListField(p, "biases", DefaultBiases()),
	}
}

func stringField(p map[string]any, key, fallback string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// intField accepts JSON numbers and numeric strings ("34", "34.0").
func intField(p map[string]any, key string, fallback int) int {
	switch t := p[key].(type) {
	case float64:
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return fallback
}

func stringListField(p map[string]any, key string, fallback []string) []string {
	switch t := p[key].(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		return []string{t}
	}
	return fallback
}
