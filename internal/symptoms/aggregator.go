package symptoms

import (
	"sort"
	"strings"
)

// Accumulator owns the per-session monotonic symptom set. Implemented by the
// session manager; kept as a small interface so extraction stays testable
// without session state.
type Accumulator interface {
	AddSymptoms(sessionID string, found []Symptom) ([]Symptom, error)
}

// Aggregator turns free text into canonical symptoms and accumulates them
// per conversation.
type Aggregator struct {
	sessions Accumulator
}

func NewAggregator(sessions Accumulator) *Aggregator {
	return &Aggregator{sessions: sessions}
}

// Ingest extracts symptoms from rawText and unions them with every prior
// turn's symptoms for the session. The accumulated set never shrinks within
// a session: severity scoring must not forget an earlier complaint.
func (a *Aggregator) Ingest(sessionID, rawText string) ([]Symptom, error) {
	return a.sessions.AddSymptoms(sessionID, Extract(rawText))
}

// Extract finds canonical symptoms in free text. Three passes:
// substring match against the variant table (longest variant first, matched
// regions consumed), fuzzy match over leftover tokens, then dropping any
// symptom whose canonical term is a pure substring of a longer match.
func Extract(text string) []Symptom {
	norm := normalizeText(text)
	if norm == "" {
		return nil
	}

	found := make(map[Symptom]struct{})
	padded := " " + norm + " "

	for _, variant := range variantsByLength {
		probe := " " + variant + " "
		idx := strings.Index(padded, probe)
		if idx < 0 {
			continue
		}
		found[variantToCanonical[variant]] = struct{}{}
		// Consume the matched region so shorter variants cannot re-match
		// inside it.
		for idx >= 0 {
			padded = padded[:idx+1] + strings.Repeat("#", len(variant)) + padded[idx+1+len(variant):]
			idx = strings.Index(padded, probe)
		}
	}

	for _, token := range strings.Fields(strings.ReplaceAll(padded, "#", " ")) {
		if canonical, ok := fuzzyCanonical(token); ok {
			found[canonical] = struct{}{}
		}
	}

	return dropSubstringSymptoms(found)
}

// dropSubstringSymptoms removes any matched symptom that is a pure substring
// of a longer matched symptom ("swelling" vs "leg swelling").
func dropSubstringSymptoms(found map[Symptom]struct{}) []Symptom {
	out := make([]Symptom, 0, len(found))
	for s := range found {
		shadowed := false
		for other := range found {
			if s != other && strings.Contains(string(other), string(s)) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
