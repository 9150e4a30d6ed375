package session

import (
	"errors"
	"time"

	"github.com/emastro/vitalia/internal/symptoms"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrEnded          = errors.New("conversation already ended")
	ErrTurnInProgress = errors.New("another turn is already in progress")
)

// Role tags who produced a turn entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the ordered conversation log.
type Turn struct {
	TurnID      string    `json:"turn_id"`
	Role        Role      `json:"role"`
	Text        string    `json:"text"`
	TriageLevel string    `json:"triage_level,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is one patient intake dialogue. Turns are append-only and the
// symptom set only grows: a complaint mentioned three turns ago still counts.
type Conversation struct {
	ID             string             `json:"conversation_id"`
	PatientID      string             `json:"patient_id"`
	Status         Status             `json:"status"`
	Language       string             `json:"language"`
	ActiveTurnID   string             `json:"active_turn_id"`
	Turns          []Turn             `json:"turns"`
	Symptoms       []symptoms.Symptom `json:"symptoms"`
	EscalatedAt    time.Time          `json:"escalated_at,omitzero"`
	StartedAt      time.Time          `json:"started_at"`
	LastActivityAt time.Time          `json:"last_activity_at"`
}

// Escalated reports whether an emergency escalation has been recorded.
func (c *Conversation) Escalated() bool {
	return !c.EscalatedAt.IsZero()
}
