package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists patient context and consultation history in
// PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id TEXT PRIMARY KEY,
			age_group TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			allergies TEXT[] NOT NULL DEFAULT '{}',
			conditions TEXT[] NOT NULL DEFAULT '{}',
			medications TEXT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS consultations (
			id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			turn_id TEXT NOT NULL,
			symptoms TEXT[] NOT NULL DEFAULT '{}',
			triage_level TEXT NOT NULL,
			summary TEXT NOT NULL,
			escalated BOOLEAN NOT NULL DEFAULT FALSE,
			pii_redacted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_consultations_patient_created ON consultations (patient_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	var p Patient
	err := s.pool.QueryRow(ctx,
		`SELECT id, age_group, language, allergies, conditions, medications, updated_at
		 FROM patients WHERE id=$1`,
		patientID,
	).Scan(&p.ID, &p.AgeGroup, &p.Language, &p.Allergies, &p.Conditions, &p.Medications, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpsertPatient(ctx context.Context, p Patient) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, age_group, language, allergies, conditions, medications, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			age_group=EXCLUDED.age_group,
			language=EXCLUDED.language,
			allergies=EXCLUDED.allergies,
			conditions=EXCLUDED.conditions,
			medications=EXCLUDED.medications,
			updated_at=EXCLUDED.updated_at`,
		p.ID, p.AgeGroup, p.Language, p.Allergies, p.Conditions, p.Medications, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordConsultation(ctx context.Context, c Consultation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO consultations (id, patient_id, conversation_id, turn_id, symptoms, triage_level, summary, escalated, pii_redacted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.PatientID, c.ConversationID, c.TurnID, c.Symptoms, c.TriageLevel, c.Summary, c.Escalated, c.PIIRedacted, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record consultation: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, patientID string, limit int) ([]Consultation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_id, conversation_id, turn_id, symptoms, triage_level, summary, escalated, pii_redacted, created_at
		 FROM consultations WHERE patient_id=$1 ORDER BY created_at DESC LIMIT $2`,
		patientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	items := make([]Consultation, 0, limit)
	for rows.Next() {
		var c Consultation
		if err := rows.Scan(&c.ID, &c.PatientID, &c.ConversationID, &c.TurnID, &c.Symptoms, &c.TriageLevel, &c.Summary, &c.Escalated, &c.PIIRedacted, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
