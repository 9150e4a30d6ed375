package translation

import (
	"context"
	"fmt"
)

// MockTranslator tags text with the target language instead of translating.
// Deterministic, offline, and obviously not a real translation.
type MockTranslator struct{}

func NewMockTranslator() *MockTranslator { return &MockTranslator{} }

func (MockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	if SameLanguage(sourceLang, targetLang) {
		return text, nil
	}
	return fmt.Sprintf("[%s] %s", baseLang(targetLang), text), nil
}
