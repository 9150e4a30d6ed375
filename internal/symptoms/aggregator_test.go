package symptoms

import (
	"reflect"
	"testing"
)

func TestCanonicalizeIdempotent(t *testing.T) {
	for canonical, variants := range catalog {
		for _, v := range variants {
			first, ok := Canonicalize(v)
			if !ok {
				t.Fatalf("Canonicalize(%q) not found", v)
			}
			if first != canonical {
				t.Fatalf("Canonicalize(%q) = %q, want %q", v, first, canonical)
			}
			second, ok := Canonicalize(string(first))
			if !ok || second != first {
				t.Fatalf("Canonicalize(Canonicalize(%q)) = %q, want %q", v, second, first)
			}
		}
	}
}

func TestCanonicalizeVariants(t *testing.T) {
	cases := []struct {
		in   string
		want Symptom
	}{
		{"Tummy Ache", "abdominal pain"},
		{"can't breathe", "shortness of breath"},
		{"MIGRANE", "headache"},
		{"threw up", "vomiting"},
		{"feaver", "fever"},
		{"diarea", "diarrhea"},
		{"sniffles", "runny nose"},
	}
	for _, tc := range cases {
		got, ok := Canonicalize(tc.in)
		if !ok {
			t.Fatalf("Canonicalize(%q) not found", tc.in)
		}
		if got != tc.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeFuzzyTypo(t *testing.T) {
	// One edit away from a known variant, not present verbatim in the table.
	got, ok := Canonicalize("headachee")
	if !ok || got != "headache" {
		t.Fatalf("Canonicalize(headachee) = %q ok=%v, want headache", got, ok)
	}
	if _, ok := Canonicalize("xyz"); ok {
		t.Fatalf("Canonicalize(xyz) should not match")
	}
}

func TestExtractMultipleSymptoms(t *testing.T) {
	got := Extract("I have a splitting head, my chest hurts and I keep throwing up.")
	want := []Symptom{"chest pain", "headache", "vomiting"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractDropsSubstringMatches(t *testing.T) {
	got := Extract("my swollen ankles have gotten worse and everything is swollen")
	for _, s := range got {
		if s == "swelling" {
			t.Fatalf("Extract() kept %q despite longer match: %v", s, got)
		}
	}
	if len(got) != 1 || got[0] != "leg swelling" {
		t.Fatalf("Extract() = %v, want [leg swelling]", got)
	}
}

func TestExtractLongestVariantFirst(t *testing.T) {
	// "blood when i cough" must resolve to coughing blood, not cough.
	got := Extract("there was blood when I cough")
	if len(got) != 1 || got[0] != "coughing blood" {
		t.Fatalf("Extract() = %v, want [coughing blood]", got)
	}
}

func TestExtractEmptyAndGarbage(t *testing.T) {
	if got := Extract(""); got != nil {
		t.Fatalf("Extract(empty) = %v, want nil", got)
	}
	if got := Extract("!!! ??? ..."); got != nil {
		t.Fatalf("Extract(punctuation) = %v, want nil", got)
	}
}

type fakeAccumulator struct {
	set map[string]map[Symptom]struct{}
}

func (f *fakeAccumulator) AddSymptoms(sessionID string, found []Symptom) ([]Symptom, error) {
	if f.set == nil {
		f.set = make(map[string]map[Symptom]struct{})
	}
	if f.set[sessionID] == nil {
		f.set[sessionID] = make(map[Symptom]struct{})
	}
	for _, s := range found {
		f.set[sessionID][s] = struct{}{}
	}
	out := make([]Symptom, 0, len(f.set[sessionID]))
	for s := range f.set[sessionID] {
		out = append(out, s)
	}
	return out, nil
}

func TestIngestAccumulatesAcrossTurns(t *testing.T) {
	agg := NewAggregator(&fakeAccumulator{})

	first, err := agg.Ingest("s1", "I have a headache")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(first) != 1 || first[0] != "headache" {
		t.Fatalf("turn 1 = %v, want [headache]", first)
	}

	second, err := agg.Ingest("s1", "now I have a fever too")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	got := map[Symptom]bool{}
	for _, s := range second {
		got[s] = true
	}
	if !got["headache"] || !got["fever"] || len(second) != 2 {
		t.Fatalf("turn 2 accumulated = %v, want {headache, fever}", second)
	}
}
