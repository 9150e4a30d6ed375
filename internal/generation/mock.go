package generation

import (
	"context"
	"fmt"
	"strings"
)

// MockBackend produces deterministic local drafts when no provider is
// configured. Useful for tests and offline development; still untrusted as
// far as the output validator is concerned.
type MockBackend struct{}

func NewMockBackend() *MockBackend { return &MockBackend{} }

func (b *MockBackend) Generate(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}
	return Response{Text: buildMockDraft(req), Model: req.Model}, nil
}

func buildMockDraft(req Request) string {
	var out strings.Builder

	if len(req.Symptoms) > 0 {
		fmt.Fprintf(&out, "Thank you for describing what you are feeling. So far I have noted: %s.", strings.Join(req.Symptoms, ", "))
	} else {
		out.WriteString("Thank you for sharing that. Could you tell me more about any symptoms you are experiencing?")
	}

	switch req.TriageLevel {
	case "EMERGENCY":
		out.WriteString(" These symptoms can be serious. Please contact emergency services now.")
	case "URGENT":
		out.WriteString(" Based on what you describe, it would be best to be seen by a clinician today.")
	case "SEMI_URGENT":
		out.WriteString(" It would be sensible to arrange a medical appointment in the next day or two.")
	case "ROUTINE":
		out.WriteString(" This sounds like something to discuss with a doctor at a regular appointment.")
	case "SELF_CARE":
		out.WriteString(" This usually improves with rest and self-care, but do seek help if it worsens.")
	case "MENTAL_HEALTH":
		out.WriteString(" What you are going through matters, and talking to a mental health professional can help.")
	}

	if len(req.Facts) > 0 {
		out.WriteString(" For reference: ")
		out.WriteString(req.Facts[0])
	}
	return out.String()
}
