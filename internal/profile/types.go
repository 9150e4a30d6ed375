package profile

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("patient profile not found")

// Patient holds the stored context for one patient. Allergies and chronic
// conditions feed the medication annotations; a missing profile is normal
// for anonymous consultations.
type Patient struct {
	ID          string    `json:"patient_id"`
	AgeGroup    string    `json:"age_group,omitempty"`
	Language    string    `json:"language,omitempty"`
	Allergies   []string  `json:"allergies,omitempty"`
	Conditions  []string  `json:"conditions,omitempty"`
	Medications []string  `json:"medications,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Consultation is the persisted summary of one completed turn. Summaries are
// PII-redacted before they reach the store.
type Consultation struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	ConversationID string    `json:"conversation_id"`
	TurnID         string    `json:"turn_id"`
	Symptoms       []string  `json:"symptoms,omitempty"`
	TriageLevel    string    `json:"triage_level"`
	Summary        string    `json:"summary"`
	Escalated      bool      `json:"escalated"`
	PIIRedacted    bool      `json:"pii_redacted"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists patient context and consultation history.
type Store interface {
	GetPatient(ctx context.Context, patientID string) (*Patient, error)
	UpsertPatient(ctx context.Context, p Patient) error
	RecordConsultation(ctx context.Context, c Consultation) error
	History(ctx context.Context, patientID string, limit int) ([]Consultation, error)
	Close() error
}
