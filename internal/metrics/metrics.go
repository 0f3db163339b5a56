package metrics

import (
	"sync"
	"time"
)

// Metrics holds process-wide counters. Every exported counter is only
// touched under mu.
type Metrics struct {
	mu                  sync.RWMutex
	PersonasGenerated   int64
	PersonaBatches      int64
	PersonaDecodeErrors int64
	StudiesStarted      int64
	StudiesCompleted    int64
	QuestionsAnswered   int64
	QuestionsFailed     int64
	SummaryFallbacks    int64
	InferenceCalls      int64
	InferenceFailures   int64
	StartedAt           time.Time
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	now := time.Now()
	return &Metrics{
		StartedAt:      now,
		LastUpdateTime: now,
	}
}

func (m *Metrics) update(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) AddPersonasGenerated(n int) {
	m.update(func() {
		m.PersonaBatches++
		m.PersonasGenerated += int64(n)
	})
}

func (m *Metrics) IncrementPersonaDecodeErrors() {
	m.update(func() { m.PersonaDecodeErrors++ })
}

func (m *Metrics) IncrementStudiesStarted() {
	m.update(func() { m.StudiesStarted++ })
}

func (m *Metrics) IncrementStudiesCompleted() {
	m.update(func() { m.StudiesCompleted++ })
}

func (m *Metrics) IncrementQuestion(success bool) {
	m.update(func() {
		if success {
			m.QuestionsAnswered++
		} else {
			m.QuestionsFailed++
		}
	})
}

func (m *Metrics) IncrementSummaryFallbacks() {
	m.update(func() { m.SummaryFallbacks++ })
}

func (m *Metrics) IncrementInferenceCall(success bool) {
	m.update(func() {
		m.InferenceCalls++
		if !success {
			m.InferenceFailures++
		}
	})
}

// Snapshot is a lock-free copy safe to serialize.
type Snapshot struct {
	PersonasGenerated   int64     `json:"personas_generated"`
	PersonaBatches      int64     `json:"persona_batches"`
	PersonaDecodeErrors int64     `json:"persona_decode_errors"`
	StudiesStarted      int64     `json:"studies_started"`
	StudiesCompleted    int64     `json:"studies_completed"`
	QuestionsAnswered   int64     `json:"questions_answered"`
	QuestionsFailed     int64     `json:"questions_failed"`
	SummaryFallbacks    int64     `json:"summary_fallbacks"`
	InferenceCalls      int64     `json:"inference_calls"`
	InferenceFailures   int64     `json:"inference_failures"`
	StartedAt           time.Time `json:"started_at"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		PersonasGenerated:   m.PersonasGenerated,
		PersonaBatches:      m.PersonaBatches,
		PersonaDecodeErrors: m.PersonaDecodeErrors,
		StudiesStarted:      m.StudiesStarted,
		StudiesCompleted:    m.StudiesCompleted,
		QuestionsAnswered:   m.QuestionsAnswered,
		QuestionsFailed:     m.QuestionsFailed,
		SummaryFallbacks:    m.SummaryFallbacks,
		InferenceCalls:      m.InferenceCalls,
		InferenceFailures:   m.InferenceFailures,
		StartedAt:           m.StartedAt,
		LastUpdateTime:      m.LastUpdateTime,
	}
}
