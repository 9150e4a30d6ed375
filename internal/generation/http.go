package generation

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
	httpRetryAttempts = 3
	httpRetryBase     = 200 * time.Millisecond
	httpRetryCap      = 2 * time.Second
)

// HTTPBackend forwards requests to a generation provider over HTTP.
type HTTPBackend struct {
	url    string
	client *http.Client
}

func NewHTTPBackend(url string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackend{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (b *HTTPBackend) Generate(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	var resp Response
	err = reliability.Do(ctx, httpRetryAttempts, httpRetryBase, httpRetryCap, func() (bool, error) {
		r, retryable, err := b.post(ctx, payload)
		if err != nil {
			return retryable, err
		}
		resp = r
		return false, nil
	})
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (b *HTTPBackend) post(ctx context.Context, payload []byte) (Response, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(httpReq)
	if err != nil {
		// Transport errors (refused, timed out) are worth one more try.
		return Response{}, ctx.Err() == nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		retryable := reliability.IsRetryableHTTPStatus(res.StatusCode)
		return Response{}, retryable, fmt.Errorf("generation http status %d: %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Response{}, true, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return Response{}, false, fmt.Errorf("empty generation response")
		}
		return Response{Text: text}, false, nil
	}
	if strings.TrimSpace(resp.Text) == "" {
		return Response{}, false, fmt.Errorf("empty generation response")
	}
	return resp, false, nil
}
