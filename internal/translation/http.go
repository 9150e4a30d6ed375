package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emastro/vitalia/internal/reliability"
)

const (
	httpRetryAttempts = 2
	httpRetryBase     = 150 * time.Millisecond
	httpRetryCap      = time.Second
)

// HTTPTranslator forwards text to a translation provider.
type HTTPTranslator struct {
	url    string
	client *http.Client
}

func NewHTTPTranslator(url string, timeout time.Duration) *HTTPTranslator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTranslator{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type httpRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type httpResponse struct {
	Text string `json:"text"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if SameLanguage(sourceLang, targetLang) {
		return text, nil
	}

	payload, err := json.Marshal(httpRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var out string
	err = reliability.Do(ctx, httpRetryAttempts, httpRetryBase, httpRetryCap, func() (bool, error) {
		translated, retryable, err := t.post(ctx, payload)
		if err != nil {
			return retryable, err
		}
		out = translated
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (t *HTTPTranslator) post(ctx context.Context, payload []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(httpReq)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", reliability.IsRetryableHTTPStatus(res.StatusCode), fmt.Errorf("translation http status %d: %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	var resp httpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", false, fmt.Errorf("empty translation response")
	}
	return resp.Text, false, nil
}
