package core

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gwi.com/synthetic-respondents/internal/config"
	"gwi.com/synthetic-respondents/internal/metrics"
	"gwi.com/synthetic-respondents/internal/observability"
	"gwi.com/synthetic-respondents/internal/utils"
)

type StudyOptions struct {
	InterviewTemperature float64
	SummaryTemperature   float64
	// FailureMode is config.FailureModeAbort or config.FailureModePartial.
	FailureMode        string
	PersonaConcurrency int
}

type StudyService struct {
	llm     InferenceClient
	opts    StudyOptions
	metrics *metrics.Metrics
	archive Archive
	logger  *zap.Logger
}

func NewStudyService(llm InferenceClient, opts StudyOptions, m *metrics.Metrics, archive Archive, logger *zap.Logger) *StudyService {
	if opts.PersonaConcurrency < 1 {
		opts.PersonaConcurrency = 1
	}
	if opts.FailureMode == "" {
		opts.FailureMode = config.FailureModeAbort
	}
	return &StudyService{
		llm:     llm,
		opts:    opts,
		metrics: m,
		archive: archive,
		logger:  logger,
	}
}

// RunStudy interviews every persona with every question, then summarises the
// transcripts. Questions for one persona run strictly in order because each
// prompt replays that persona's previous answers.
func (s *StudyService) RunStudy(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "study.run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("study.personas", len(req.Personas)),
		attribute.Int("study.questions", len(req.InterviewScript.Questions)),
		attribute.String("study.failure_mode", s.opts.FailureMode),
	)

	if s.metrics != nil {
		s.metrics.IncrementStudiesStarted()
	}
	if mode := req.InterviewScript.InterviewMode; mode != "" && mode != InterviewModeIndividual {
		s.logger.Warn("interview mode not supported, running individual interviews",
			zap.String("interview_mode", mode))
	}

	concept := conceptText(req.Concept)
	interviews := make([]PersonaInterview, len(req.Personas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PersonaConcurrency)
	for i, persona := range req.Personas {
		g.Go(func() error {
			// A failed persona cancels gctx; the rest must not start.
			if err := gctx.Err(); err != nil {
				return err
			}
			interview, err := s.interviewPersona(gctx, persona, concept, req.InterviewScript)
			if err != nil {
				return err
			}
			interviews[i] = interview
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("study aborted", zap.Error(err))
		return nil, err
	}

	summary, err := s.summarize(ctx, concept, interviews)
	if err != nil {
		return nil, err
	}

	result := &StudyResult{
		Interviews: interviews,
		Summary:    summary,
	}

	if s.archive != nil {
		if studyID, err := s.archive.SaveStudy(ctx, req, *result); err != nil {
			s.logger.Warn("failed to archive study", zap.Error(err))
		} else {
			result.StudyID = studyID
		}
	}

	if s.metrics != nil {
		s.metrics.IncrementStudiesCompleted()
	}
	s.logger.Info("study completed",
		zap.String("study_id", result.StudyID),
		zap.Int("personas", len(interviews)),
		zap.Int("questions", len(req.InterviewScript.Questions)))
	return result, nil
}

func (s *StudyService) interviewPersona(ctx context.Context, persona Persona, concept string, script InterviewScript) (PersonaInterview, error) {
	ctx, span := observability.Tracer().Start(ctx, "study.interview")
	defer span.End()
	span.SetAttributes(attribute.Int("persona.id", persona.ID))

	interview := PersonaInterview{
		PersonaName: persona.Name,
		PersonaID:   persona.ID,
		Responses:   make([]Exchange, 0, len(script.Questions)),
	}
	// answered excludes failed exchanges so they never leak into later prompts.
	answered := make([]Exchange, 0, len(script.Questions))

	for qi, question := range script.Questions {
		if err := ctx.Err(); err != nil {
			return PersonaInterview{}, fmt.Errorf("interview with persona %d, question %d: %w", persona.ID, qi+1, err)
		}
		prompt := InterviewResponsePrompt(persona, concept, question, answered, script.ResponseDepth)
		response, err := s.llm.Complete(ctx, prompt, s.opts.InterviewTemperature)
		if s.metrics != nil {
			s.metrics.IncrementQuestion(err == nil)
		}
		if err != nil {
			if s.opts.FailureMode != config.FailureModePartial || ctx.Err() != nil {
				return PersonaInterview{}, fmt.Errorf("interview with persona %d, question %d: %w", persona.ID, qi+1, err)
			}
			s.logger.Warn("interview question failed, continuing",
				zap.Int("persona_id", persona.ID),
				zap.Int("question", qi+1),
				zap.Error(err))
			interview.Responses = append(interview.Responses, Exchange{
				Question: question,
				Error:    err.Error(),
			})
			continue
		}

		exchange := Exchange{Question: question, Response: strings.TrimSpace(response)}
		interview.Responses = append(interview.Responses, exchange)
		answered = append(answered, exchange)
	}
	return interview, nil
}

// summarize never fails on undecodable output: the placeholder summary is
// returned instead so callers always get something usable.
func (s *StudyService) summarize(ctx context.Context, concept string, interviews []PersonaInterview) (Summary, error) {
	ctx, span := observability.Tracer().Start(ctx, "study.summary")
	defer span.End()

	text, err := s.llm.Complete(ctx, SummaryPrompt(concept, interviews), s.opts.SummaryTemperature)
	if err != nil {
		if s.opts.FailureMode != config.FailureModePartial || ctx.Err() != nil {
			return Summary{}, fmt.Errorf("study summary: %w", err)
		}
		s.logger.Warn("summary call failed, using placeholder summary", zap.Error(err))
		s.recordFallback(span)
		return PlaceholderSummary(), nil
	}

	summary, err := ParseSummary(text)
	if err != nil {
		s.logger.Warn("summary output could not be decoded, using placeholder summary",
			zap.String("raw_preview", utils.Truncate(text, rawPreviewLen)),
			zap.Error(err))
		s.recordFallback(span)
		return PlaceholderSummary(), nil
	}
	return summary, nil
}

func (s *StudyService) recordFallback(span trace.Span) {
	span.SetAttributes(attribute.Bool("summary.placeholder", true))
	if s.metrics != nil {
		s.metrics.IncrementSummaryFallbacks()
	}
}

// ParseSummary decodes the outermost JSON object of the model output. Field
// values are coerced to text; absent fields stay empty.
func ParseSummary(text string) (Summary, error) {
	obj, err := utils.ExtractJSONObject(text)
	if err != nil {
		return Summary{}, &DecodeError{What: "summary", Raw: utils.Truncate(text, rawPreviewLen), Err: err}
	}
	return Summary{
		PurchaseIntent:   stringField(obj, "purchase_intent", ""),
		AppealScore:      stringField(obj, "appeal_score", ""),
		ValuePerception:  stringField(obj, "value_perception", ""),
		PositiveFindings: stringListField(obj, "positive_findings", []string{}),
		Concerns:         stringListField(obj, "concerns", []string{}),
		Recommendations:  stringListField(obj, "recommendations", []string{}),
	}, nil
}

func conceptText(c ConceptDefinition) string {
	if c.PricePoint == nil || strings.TrimSpace(*c.PricePoint) == "" {
		return c.Description
	}
	return fmt.Sprintf("%s\nPrice point: %s", c.Description, *c.PricePoint)
}
