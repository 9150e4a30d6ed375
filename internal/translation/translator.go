package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Translator converts validated reply text between languages. Translation
// always runs after output validation so the checked English text is the
// source of truth.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Config controls translator construction.
type Config struct {
	Mode    string
	HTTPURL string
	Timeout time.Duration
}

func NewTranslator(cfg Config) (Translator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPTranslator(cfg.HTTPURL, cfg.Timeout), nil
		}
		return NewMockTranslator(), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("translation HTTP url is required for http mode")
		}
		return NewHTTPTranslator(cfg.HTTPURL, cfg.Timeout), nil
	case "mock":
		return NewMockTranslator(), nil
	case "off":
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unsupported translator mode %q", cfg.Mode)
	}
}

// Identity passes text through unchanged. Used when translation is disabled.
type Identity struct{}

func (Identity) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return text, nil
}

// SameLanguage reports whether two language tags name the same language,
// ignoring case and regional subtags ("en-US" matches "en").
func SameLanguage(a, b string) bool {
	return baseLang(a) == baseLang(b)
}

func baseLang(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
