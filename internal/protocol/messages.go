package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientMessage MessageType = "client_message"
	TypeClientControl MessageType = "client_control"
	TypeStageEvent    MessageType = "stage_event"
	TypeTurnResult    MessageType = "turn_result"
	TypeSystemEvent   MessageType = "system_event"
	TypeErrorEvent    MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientMessage is one patient utterance inside a conversation.
type ClientMessage struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Text           string      `json:"text"`
	Language       string      `json:"language,omitempty"`
	AgeGroup       string      `json:"age_group,omitempty"`
	Duration       string      `json:"duration,omitempty"`
	HasImage       bool        `json:"has_image,omitempty"`
}

// ClientControl carries conversation lifecycle actions ("end").
type ClientControl struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Action         string      `json:"action"`
}

// StageEvent streams pipeline progress for one turn as it runs.
type StageEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	TurnID         string      `json:"turn_id"`
	Stage          string      `json:"stage"`
	Ran            bool        `json:"ran"`
	ElapsedMs      float64     `json:"elapsed_ms"`
}

// TurnResult is the final validated reply for one turn.
type TurnResult struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	TurnID         string      `json:"turn_id"`
	Reply          string      `json:"reply"`
	Language       string      `json:"language"`
	TriageLevel    string      `json:"triage_level"`
	TriageScore    float64     `json:"triage_score"`
	SafetyAction   string      `json:"safety_action"`
	Escalated      bool        `json:"escalated"`
	Symptoms       []string    `json:"symptoms,omitempty"`
}

type SystemEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Code           string      `json:"code"`
	Detail         string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Code           string      `json:"code"`
	Retryable      bool        `json:"retryable"`
	Detail         string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientMessage:
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.ConversationID == "" || msg.Text == "" {
			return nil, errors.New("invalid client_message")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.ConversationID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
