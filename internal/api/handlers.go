package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/core"
	"gwi.com/synthetic-respondents/internal/metrics"
	"gwi.com/synthetic-respondents/internal/store"
)

const studyListLimit = 50

// StudyArchive is the read side of the optional study archive.
type StudyArchive interface {
	GetStudy(ctx context.Context, studyID string) (*core.StudyResult, error)
	ListStudies(ctx context.Context, limit int) ([]store.StudyRecord, error)
}

type APIHandler struct {
	personaService *core.PersonaService
	studyService   *core.StudyService
	llm            core.InferenceClient
	metrics        *metrics.Metrics
	archive        StudyArchive // nil when the archive is disabled
	logger         *zap.Logger
}

func NewAPIHandler(ps *core.PersonaService, ss *core.StudyService, llm core.InferenceClient, m *metrics.Metrics, archive StudyArchive, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		personaService: ps,
		studyService:   ss,
		llm:            llm,
		metrics:        m,
		archive:        archive,
		logger:         logger,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps orchestration failures onto 500 responses whose
// detail names the failure kind.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var inferenceErr *core.InferenceError
	var decodeErr *core.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		writeError(w, http.StatusInternalServerError, decodeErr.Error())
	case errors.As(err, &inferenceErr):
		writeError(w, http.StatusInternalServerError, "Ollama error: "+inferenceErr.Error())
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{Message: "Synthetic Respondents API", Status: "running"})
}

type HealthResponse struct {
	Status string `json:"status"`
	Ollama string `json:"ollama"`
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.llm.HealthCheck(r.Context()) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Ollama: "connected"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "unhealthy", Ollama: "disconnected"})
}

func (h *APIHandler) GeneratePersonasHandler(w http.ResponseWriter, r *http.Request) {
	audience := core.AudienceDefinition{RespondentCount: core.DefaultRespondentCount}
	if err := json.NewDecoder(r.Body).Decode(&audience); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	personas, err := h.personaService.GeneratePersonas(r.Context(), audience)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

func (h *APIHandler) RunStudyHandler(w http.ResponseWriter, r *http.Request) {
	req := core.StudyRequest{
		Audience: core.AudienceDefinition{RespondentCount: core.DefaultRespondentCount},
		InterviewScript: core.InterviewScript{
			InterviewMode: core.InterviewModeIndividual,
			ResponseDepth: core.ResponseDepthModerate,
		},
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.studyService.RunStudy(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) ListStudiesHandler(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "Study archive is disabled")
		return
	}

	studies, err := h.archive.ListStudies(r.Context(), studyListLimit)
	if err != nil {
		h.logger.Error("failed to list studies", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list studies")
		return
	}
	writeJSON(w, http.StatusOK, studies)
}

func (h *APIHandler) GetStudyHandler(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "Study archive is disabled")
		return
	}
	studyID := chi.URLParam(r, "studyID")

	study, err := h.archive.GetStudy(r.Context(), studyID)
	if err != nil {
		h.logger.Error("failed to get study", zap.String("study_id", studyID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get study")
		return
	}
	if study == nil {
		writeError(w, http.StatusNotFound, "Study not found")
		return
	}
	writeJSON(w, http.StatusOK, study)
}

func (h *APIHandler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetSnapshot())
}
