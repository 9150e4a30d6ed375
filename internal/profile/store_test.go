package profile

import (
	"context"
	"strings"
	"testing"
)

func TestInMemoryStorePatientRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if _, err := s.GetPatient(ctx, "p1"); err != ErrNotFound {
		t.Fatalf("GetPatient() on empty store error = %v, want ErrNotFound", err)
	}

	err := s.UpsertPatient(ctx, Patient{
		ID:        "p1",
		AgeGroup:  "adult",
		Language:  "en",
		Allergies: []string{"penicillin"},
	})
	if err != nil {
		t.Fatalf("UpsertPatient() error = %v", err)
	}

	p, err := s.GetPatient(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPatient() error = %v", err)
	}
	if p.AgeGroup != "adult" || len(p.Allergies) != 1 || p.Allergies[0] != "penicillin" {
		t.Fatalf("unexpected patient: %+v", p)
	}

	// Mutating the returned copy must not poison the store.
	p.Allergies[0] = "mutated"
	again, _ := s.GetPatient(ctx, "p1")
	if again.Allergies[0] != "penicillin" {
		t.Fatalf("store state leaked through a returned copy: %+v", again)
	}
}

func TestInMemoryStoreHistoryOrderAndLimit(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for _, turn := range []string{"t1", "t2", "t3"} {
		err := s.RecordConsultation(ctx, Consultation{
			PatientID:   "p1",
			TurnID:      turn,
			TriageLevel: "ROUTINE",
			Summary:     "summary " + turn,
		})
		if err != nil {
			t.Fatalf("RecordConsultation() error = %v", err)
		}
	}

	all, err := s.History(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(all) != 3 || all[0].TurnID != "t1" || all[2].TurnID != "t3" {
		t.Fatalf("history not chronological: %+v", all)
	}

	last, err := s.History(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(last) != 2 || last[0].TurnID != "t2" {
		t.Fatalf("limited history = %+v, want last two turns", last)
	}

	if none, _ := s.History(ctx, "unknown", 5); none != nil {
		t.Fatalf("history for unknown patient = %+v, want nil", none)
	}
}

func TestNewStoreDefaultsToInMemory(t *testing.T) {
	s, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*InMemoryStore); !ok {
		t.Fatalf("NewStore(\"\") = %T, want *InMemoryStore", s)
	}
}

func TestRedactPII(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{
			name:    "email",
			in:      "contact me at jane.doe@example.com about the results",
			want:    "contact me at [REDACTED_EMAIL] about the results",
			changed: true,
		},
		{
			name:    "phone",
			in:      "call 555-867-5309 tomorrow",
			want:    "call [REDACTED_PHONE] tomorrow",
			changed: true,
		},
		{
			name:    "ssn",
			in:      "my ssn is 123-45-6789",
			want:    "my ssn is [REDACTED_SSN]",
			changed: true,
		},
		{
			name:    "clinical text untouched",
			in:      "fever of 38.5 for 2 days with headache",
			want:    "fever of 38.5 for 2 days with headache",
			changed: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := RedactPII(tc.in)
			if got != tc.want || changed != tc.changed {
				t.Fatalf("RedactPII(%q) = (%q, %v), want (%q, %v)", tc.in, got, changed, tc.want, tc.changed)
			}
		})
	}
}

func TestRedactPIIMultiple(t *testing.T) {
	in := "email a@b.co or phone 020 7946 0958"
	got, changed := RedactPII(in)
	if !changed {
		t.Fatalf("RedactPII() reported no change for %q", in)
	}
	if strings.Contains(got, "a@b.co") || strings.Contains(got, "7946") {
		t.Fatalf("PII survived redaction: %q", got)
	}
}
