package store

import "time"

// StudyRecord is the listing view of an archived study.
type StudyRecord struct {
	ID            string    `json:"id"` // UUID
	Concept       string    `json:"concept"`
	PersonaCount  int       `json:"persona_count"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
