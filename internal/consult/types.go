package consult

import (
	"time"

	"github.com/emastro/vitalia/internal/knowledge"
	"github.com/emastro/vitalia/internal/medication"
	"github.com/emastro/vitalia/internal/safety"
	"github.com/emastro/vitalia/internal/triage"
)

// Stage names in pipeline order.
const (
	StageIntake       = "intake"
	StageProfileLoad  = "profile_load"
	StageIntentCheck  = "intent_check"
	StageTriage       = "triage"
	StageSafetyInput  = "safety_input"
	StageRetrieval    = "retrieval"
	StageGeneration   = "generation"
	StageSafetyOutput = "safety_output"
	StageTranslation  = "translation"
	StagePersist      = "persist"
)

// StageRecord captures whether one stage ran and how long it took. Records
// are appended in pipeline order and never mutated afterwards.
type StageRecord struct {
	Stage   string        `json:"stage"`
	Ran     bool          `json:"ran"`
	Elapsed time.Duration `json:"elapsed"`
}

// Request is one patient message within a conversation.
type Request struct {
	ConversationID string                `json:"conversation_id"`
	Text           string                `json:"text"`
	Language       string                `json:"language,omitempty"`
	Vitals         triage.Vitals         `json:"vitals,omitzero"`
	Age            triage.AgeGroup       `json:"age_group,omitempty"`
	Duration       triage.DurationBucket `json:"duration,omitempty"`
	HasImage       bool                  `json:"has_image,omitempty"`
}

// Response is the fully validated outcome of one turn.
type Response struct {
	ConversationID  string                  `json:"conversation_id"`
	TurnID          string                  `json:"turn_id"`
	Reply           string                  `json:"reply"`
	TranslatedReply string                  `json:"translated_reply,omitempty"`
	Language        string                  `json:"language"`
	Symptoms        []string                `json:"symptoms,omitempty"`
	Triage          triage.Result           `json:"triage"`
	Safety          safety.Verdict          `json:"safety"`
	Facts           []knowledge.Fact        `json:"sources,omitempty"`
	Medications     []medication.Medication `json:"medications,omitempty"`
	Model           string                  `json:"model,omitempty"`
	Escalated       bool                    `json:"escalated"`
	Stages          []StageRecord           `json:"stages"`
	ProcessingTime  time.Duration           `json:"processing_time"`
}
