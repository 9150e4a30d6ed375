package medication

import (
	"context"
	"sort"
	"strings"
)

// Medication is one over-the-counter suggestion. Suggestions are informational
// only; the reply layer annotates them against the patient's allergies and
// never phrases them as instructions.
type Medication struct {
	Name        string   `json:"name"`
	Class       string   `json:"class"`
	TypicalUse  string   `json:"typical_use"`
	Cautions    []string `json:"cautions,omitempty"`
	AllergyNote string   `json:"allergy_note,omitempty"`
}

// Source looks up candidate medications for a symptom set.
type Source interface {
	Lookup(ctx context.Context, symptoms []string) ([]Medication, error)
}

// StaticSource serves suggestions from a fixed table. Deterministic and
// offline; a future formulary service would sit behind the same interface.
type StaticSource struct{}

func NewStaticSource() *StaticSource { return &StaticSource{} }

// bySymptom maps canonical symptom terms to candidate medications.
var bySymptom = map[string][]Medication{
	"fever": {
		{Name: "paracetamol", Class: "analgesic/antipyretic", TypicalUse: "fever and mild pain", Cautions: []string{"liver disease", "do not exceed the labeled daily maximum"}},
		{Name: "ibuprofen", Class: "NSAID", TypicalUse: "fever and inflammation", Cautions: []string{"stomach ulcers", "kidney disease", "take with food"}},
	},
	"headache": {
		{Name: "paracetamol", Class: "analgesic/antipyretic", TypicalUse: "mild to moderate headache", Cautions: []string{"liver disease", "do not exceed the labeled daily maximum"}},
		{Name: "ibuprofen", Class: "NSAID", TypicalUse: "tension headache", Cautions: []string{"stomach ulcers", "kidney disease", "take with food"}},
	},
	"sore throat": {
		{Name: "throat lozenges", Class: "demulcent", TypicalUse: "soothing throat irritation"},
		{Name: "paracetamol", Class: "analgesic/antipyretic", TypicalUse: "throat pain", Cautions: []string{"liver disease"}},
	},
	"cough": {
		{Name: "honey and lemon preparations", Class: "demulcent", TypicalUse: "soothing a dry cough", Cautions: []string{"not for infants under one year"}},
		{Name: "dextromethorphan", Class: "antitussive", TypicalUse: "dry cough suppression", Cautions: []string{"not with MAOI antidepressants"}},
	},
	"runny nose": {
		{Name: "loratadine", Class: "antihistamine", TypicalUse: "allergy-related runny nose", Cautions: []string{"drowsiness is uncommon but possible"}},
		{Name: "saline nasal spray", Class: "irrigation", TypicalUse: "nasal congestion relief"},
	},
	"diarrhea": {
		{Name: "oral rehydration solution", Class: "rehydration", TypicalUse: "replacing fluids and salts"},
		{Name: "loperamide", Class: "antimotility", TypicalUse: "short-term diarrhea relief", Cautions: []string{"not with fever or blood in stool"}},
	},
	"vomiting": {
		{Name: "oral rehydration solution", Class: "rehydration", TypicalUse: "small frequent sips to replace fluids"},
	},
	"muscle aches": {
		{Name: "ibuprofen", Class: "NSAID", TypicalUse: "muscle aches and strains", Cautions: []string{"stomach ulcers", "kidney disease", "take with food"}},
	},
	"joint pain": {
		{Name: "ibuprofen", Class: "NSAID", TypicalUse: "joint pain and stiffness", Cautions: []string{"stomach ulcers", "kidney disease", "take with food"}},
	},
	"back pain": {
		{Name: "ibuprofen", Class: "NSAID", TypicalUse: "muscular back pain", Cautions: []string{"stomach ulcers", "kidney disease", "take with food"}},
		{Name: "heat patches", Class: "topical heat", TypicalUse: "muscular back pain relief"},
	},
	"ear pain": {
		{Name: "paracetamol", Class: "analgesic/antipyretic", TypicalUse: "ear pain while awaiting assessment", Cautions: []string{"liver disease"}},
	},
	"rash": {
		{Name: "cetirizine", Class: "antihistamine", TypicalUse: "itching and hives", Cautions: []string{"may cause drowsiness"}},
		{Name: "hydrocortisone cream 1%", Class: "topical corticosteroid", TypicalUse: "mild inflammatory rash", Cautions: []string{"not on broken or infected skin"}},
	},
}

func (s *StaticSource) Lookup(ctx context.Context, symptoms []string) ([]Medication, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	seen := make(map[string]struct{})
	var out []Medication
	for _, symptom := range symptoms {
		for _, med := range bySymptom[strings.ToLower(strings.TrimSpace(symptom))] {
			if _, dup := seen[med.Name]; dup {
				continue
			}
			seen[med.Name] = struct{}{}
			out = append(out, med)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AnnotateAllergies marks, never removes, suggestions that look like a match
// for a stored allergy. Allergy records are free text so matching is a
// case-insensitive substring check in both directions.
func AnnotateAllergies(meds []Medication, allergies []string) []Medication {
	if len(meds) == 0 || len(allergies) == 0 {
		return meds
	}
	out := make([]Medication, len(meds))
	copy(out, meds)
	for i := range out {
		name := strings.ToLower(out[i].Name)
		for _, allergy := range allergies {
			a := strings.ToLower(strings.TrimSpace(allergy))
			if a == "" {
				continue
			}
			if strings.Contains(name, a) || strings.Contains(a, name) {
				out[i].AllergyNote = "possible allergy match: " + strings.TrimSpace(allergy)
				break
			}
		}
	}
	return out
}
