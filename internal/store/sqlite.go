package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"gwi.com/synthetic-respondents/internal/core"
)

// SQLiteStore archives generated persona batches and finished studies. It is
// write-mostly; nothing it holds feeds back into interviews.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS persona_batches (
        id TEXT PRIMARY KEY, -- UUID
        target_profile TEXT NOT NULL,
        additional_context TEXT NOT NULL,
        persona_count INTEGER NOT NULL,
        personas_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS studies (
        id TEXT PRIMARY KEY, -- UUID
        concept TEXT NOT NULL,
        persona_count INTEGER NOT NULL,
        question_count INTEGER NOT NULL,
        request_json TEXT NOT NULL,
        result_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_studies_created_at ON studies (created_at);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Persona batch methods
func (s *SQLiteStore) SavePersonaBatch(ctx context.Context, audience core.AudienceDefinition, personas []core.Persona) (string, error) {
	personasJSON, err := json.Marshal(personas)
	if err != nil {
		return "", fmt.Errorf("failed to marshal personas: %w", err)
	}

	batchID := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO persona_batches (id, target_profile, additional_context, persona_count, personas_json, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		batchID, audience.TargetProfile, audience.AdditionalContext, len(personas), string(personasJSON), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert persona batch: %w", err)
	}
	return batchID, nil
}

// Study methods
func (s *SQLiteStore) SaveStudy(ctx context.Context, req core.StudyRequest, result core.StudyResult) (string, error) {
	studyID := uuid.NewString()
	result.StudyID = studyID

	requestJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal study request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal study result: %w", err)
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO studies (id, concept, persona_count, question_count, request_json, result_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare study insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, studyID, req.Concept.Description, len(req.Personas), len(req.InterviewScript.Questions),
		string(requestJSON), string(resultJSON), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to execute study insert: %w", err)
	}
	return studyID, nil
}

func (s *SQLiteStore) GetStudy(ctx context.Context, studyID string) (*core.StudyResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx, "SELECT result_json FROM studies WHERE id = ?", studyID).Scan(&resultJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	var result core.StudyResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to decode study %s: %w", studyID, err)
	}
	return &result, nil
}

func (s *SQLiteStore) ListStudies(ctx context.Context, limit int) ([]StudyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, concept, persona_count, question_count, created_at FROM studies ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query studies: %w", err)
	}
	defer rows.Close()

	studies := []StudyRecord{}
	for rows.Next() {
		var rec StudyRecord
		if err := rows.Scan(&rec.ID, &rec.Concept, &rec.PersonaCount, &rec.QuestionCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan study row: %w", err)
		}
		studies = append(studies, rec)
	}
	return studies, rows.Err()
}
