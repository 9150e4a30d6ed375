package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Request is the normalized prompt handed to a text backend. The caller has
// already decided triage and retrieved facts; the backend only writes prose.
type Request struct {
	ConversationID string   `json:"conversation_id"`
	TurnID         string   `json:"turn_id"`
	PatientText    string   `json:"patient_text"`
	Symptoms       []string `json:"symptoms,omitempty"`
	TriageLevel    string   `json:"triage_level"`
	Facts          []string `json:"facts,omitempty"`
	History        []string `json:"history,omitempty"`
	Model          string   `json:"model"`
	Language       string   `json:"language,omitempty"`
}

// Response is the backend's raw draft. It is untrusted text: every response
// passes output validation before anything downstream sees it.
type Response struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Backend produces a draft reply for one turn.
type Backend interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Config controls backend construction.
type Config struct {
	Mode    string
	HTTPURL string
	Timeout time.Duration
}

func NewBackend(cfg Config) (Backend, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewFallbackBackend(NewHTTPBackend(cfg.HTTPURL, cfg.Timeout), NewMockBackend()), nil
		}
		return NewMockBackend(), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("generation HTTP url is required for http mode")
		}
		return NewHTTPBackend(cfg.HTTPURL, cfg.Timeout), nil
	case "mock":
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported generation backend mode %q", cfg.Mode)
	}
}

// FallbackBackend walks an ordered resolver list and returns the first
// success. Every backend failing is an error; a degraded canned reply is the
// orchestrator's call, not this layer's.
type FallbackBackend struct {
	backends []Backend
}

func NewFallbackBackend(backends ...Backend) *FallbackBackend {
	return &FallbackBackend{backends: backends}
}

func (b *FallbackBackend) Generate(ctx context.Context, req Request) (Response, error) {
	if b == nil || len(b.backends) == 0 {
		return Response{}, errors.New("fallback backend misconfigured")
	}
	var lastErr error
	for _, backend := range b.backends {
		if backend == nil {
			continue
		}
		resp, err := backend.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no usable generation backend")
	}
	return Response{}, lastErr
}
