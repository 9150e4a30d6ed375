package generation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewBackendModes(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock", Config{Mode: "mock"}, false},
		{"http with url", Config{Mode: "http", HTTPURL: "http://localhost:9999/generate"}, false},
		{"http missing url", Config{Mode: "http"}, true},
		{"auto without url", Config{Mode: "auto"}, false},
		{"unknown", Config{Mode: "magic"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBackend(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewBackend(%+v) error = %v, wantErr %v", tc.cfg, err, tc.wantErr)
			}
		})
	}
}

func TestMockBackendDeterministic(t *testing.T) {
	b := NewMockBackend()
	req := Request{
		Symptoms:    []string{"fever", "headache"},
		TriageLevel: "ROUTINE",
		Model:       ModelGeneral,
	}
	first, err := b.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(first.Text, "fever, headache") {
		t.Fatalf("draft missing symptoms: %q", first.Text)
	}
	for i := 0; i < 5; i++ {
		again, err := b.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if again.Text != first.Text {
			t.Fatalf("mock draft not deterministic: %q vs %q", again.Text, first.Text)
		}
	}
}

func TestHTTPBackendRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"rest and fluids help","model":"clinical-general"}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, 5*time.Second)
	resp, err := b.Generate(context.Background(), Request{PatientText: "I have a cold"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "rest and fluids help" {
		t.Fatalf("Text = %q", resp.Text)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestHTTPBackendDoesNotRetryClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, 5*time.Second)
	if _, err := b.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("Generate() should fail on 400")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

type failingBackend struct{ err error }

func (b failingBackend) Generate(ctx context.Context, req Request) (Response, error) {
	return Response{}, b.err
}

func TestFallbackBackendWalksResolvers(t *testing.T) {
	b := NewFallbackBackend(
		failingBackend{err: errors.New("primary down")},
		NewMockBackend(),
	)
	resp, err := b.Generate(context.Background(), Request{TriageLevel: "SELF_CARE"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text == "" {
		t.Fatalf("fallback produced empty draft")
	}
}

func TestFallbackBackendAllFail(t *testing.T) {
	wantErr := errors.New("last failure")
	b := NewFallbackBackend(
		failingBackend{err: errors.New("first failure")},
		failingBackend{err: wantErr},
	)
	if _, err := b.Generate(context.Background(), Request{}); err != wantErr {
		t.Fatalf("Generate() error = %v, want %v", err, wantErr)
	}
}

func TestRouteModel(t *testing.T) {
	cases := []struct {
		hasImage, emergency, mentalHealth bool
		want                              string
	}{
		{false, false, false, ModelGeneral},
		{true, false, false, ModelVision},
		{true, true, true, ModelVision},
		{false, true, false, ModelHighAcuity},
		{false, true, true, ModelHighAcuity},
		{false, false, true, ModelMentalHealth},
	}
	for _, tc := range cases {
		got := RouteModel(tc.hasImage, tc.emergency, tc.mentalHealth)
		if got != tc.want {
			t.Fatalf("RouteModel(%v, %v, %v) = %q, want %q", tc.hasImage, tc.emergency, tc.mentalHealth, got, tc.want)
		}
	}
}
