package triage

import (
	"reflect"
	"testing"

	"github.com/emastro/vitalia/internal/symptoms"
)

func TestClassifyCardiacTriadIsEmergency(t *testing.T) {
	res := Classify(Input{
		Symptoms: []symptoms.Symptom{"chest pain", "arm pain", "sweating"},
	})
	if res.Level != LevelEmergency {
		t.Fatalf("Level = %s, want %s", res.Level, LevelEmergency)
	}
	if res.Score < 90 {
		t.Fatalf("Score = %d, want >= 90", res.Score)
	}
	if len(res.RedFlags) == 0 {
		t.Fatalf("RedFlags empty for cardiac triad")
	}
}

func TestClassifyRunnyNoseIsSelfCare(t *testing.T) {
	res := Classify(Input{Symptoms: []symptoms.Symptom{"runny nose"}})
	if res.Level != LevelSelfCare {
		t.Fatalf("Level = %s, want %s", res.Level, LevelSelfCare)
	}
	if res.Score >= 30 {
		t.Fatalf("Score = %d, want < 30", res.Score)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	in := Input{
		Symptoms: []symptoms.Symptom{"fever", "headache", "neck stiffness"},
		RawText:  "terrible headache and a stiff neck",
		Vitals:   Vitals{Temperature: 39.8, HeartRate: 118},
		Age:      AgeElderly,
		Duration: DurationUnder24h,
	}
	first := Classify(in)
	for i := 0; i < 25; i++ {
		if got := Classify(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestClassifyMonotonicScore(t *testing.T) {
	base := []symptoms.Symptom{"cough"}
	prev := Classify(Input{Symptoms: base}).Score
	for _, extra := range []symptoms.Symptom{"fever", "headache", "vomiting", "chest pain"} {
		base = append(base, extra)
		got := Classify(Input{Symptoms: base}).Score
		if got < prev {
			t.Fatalf("score decreased from %d to %d after adding %q", prev, got, extra)
		}
		prev = got
	}
}

func TestClassifyEmergencyKeywordOverride(t *testing.T) {
	res := Classify(Input{
		Symptoms: []symptoms.Symptom{"runny nose"},
		RawText:  "also my neighbour collapsed and is not breathing",
	})
	if res.Level != LevelEmergency {
		t.Fatalf("Level = %s, want %s", res.Level, LevelEmergency)
	}
	if res.Score < 95 {
		t.Fatalf("Score = %d, want >= 95 on keyword override", res.Score)
	}
}

func TestClassifyCardiacKeywordsAcrossConversation(t *testing.T) {
	res := Classify(Input{
		RawText:          "it spread to my jaw",
		ConversationText: "earlier I had chest pressure. now jaw pain too",
	})
	if res.Level != LevelEmergency {
		t.Fatalf("Level = %s, want %s on 2 cardiac phrases", res.Level, LevelEmergency)
	}
}

func TestClassifyMentalHealthReclassification(t *testing.T) {
	res := Classify(Input{
		Symptoms: []symptoms.Symptom{"insomnia"},
		RawText:  "I have been so anxious I cannot sleep",
	})
	if res.Level != LevelMentalHealth {
		t.Fatalf("Level = %s, want %s", res.Level, LevelMentalHealth)
	}
}

func TestClassifyMentalHealthDoesNotDowngradeEmergency(t *testing.T) {
	res := Classify(Input{
		Symptoms: []symptoms.Symptom{"chest pain", "shortness of breath"},
		RawText:  "I feel anxious and my chest hurts and I can't breathe",
	})
	if res.Level != LevelEmergency {
		t.Fatalf("Level = %s, want %s: critical scores keep their level", res.Level, LevelEmergency)
	}
}

func TestClassifyVitalsIndependentOfText(t *testing.T) {
	calm := Classify(Input{Symptoms: []symptoms.Symptom{"fatigue"}})
	hypoxic := Classify(Input{
		Symptoms: []symptoms.Symptom{"fatigue"},
		Vitals:   Vitals{SpO2: 84},
	})
	if hypoxic.Score <= calm.Score {
		t.Fatalf("SpO2 84 should raise score: %d vs %d", hypoxic.Score, calm.Score)
	}
	if hypoxic.Score-calm.Score != 30 {
		t.Fatalf("SpO2 band bonus = %d, want 30", hypoxic.Score-calm.Score)
	}
}

func TestClassifyDemographicAndDurationModifiers(t *testing.T) {
	plain := Classify(Input{Symptoms: []symptoms.Symptom{"fever"}})
	infant := Classify(Input{
		Symptoms: []symptoms.Symptom{"fever"},
		Age:      AgeInfant,
		Duration: DurationSudden,
	})
	if infant.Score-plain.Score != 25 {
		t.Fatalf("infant+sudden modifier = %d, want 25", infant.Score-plain.Score)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	res := Classify(Input{})
	if res.Level != LevelSelfCare {
		t.Fatalf("Level = %s, want %s for empty input", res.Level, LevelSelfCare)
	}
	if res.Score != 0 {
		t.Fatalf("Score = %d, want 0", res.Score)
	}
	if res.Confidence <= 0 {
		t.Fatalf("Confidence = %v, want > 0", res.Confidence)
	}
}

func TestConfidenceInformationalOnly(t *testing.T) {
	few := Classify(Input{Symptoms: []symptoms.Symptom{"chest pain"}})
	many := Classify(Input{Symptoms: []symptoms.Symptom{"chest pain", "sweating", "arm pain", "nausea"}})
	if many.Confidence <= few.Confidence {
		t.Fatalf("confidence should grow with match count: %v vs %v", many.Confidence, few.Confidence)
	}
}

func TestForceEmergencyPromotesLowResult(t *testing.T) {
	base := Classify(Input{Symptoms: []symptoms.Symptom{"runny nose"}})
	if base.Level == LevelEmergency {
		t.Fatalf("base Level = %s, test needs a low starting point", base.Level)
	}

	res := ForceEmergency(base, `emergency phrase detected: "drank bleach"`)
	if res.Level != LevelEmergency {
		t.Fatalf("Level = %s, want %s", res.Level, LevelEmergency)
	}
	if res.Score < 95 {
		t.Fatalf("Score = %d, want >= 95", res.Score)
	}
	if res.RecommendedAction != recommendedAction(LevelEmergency) {
		t.Fatalf("RecommendedAction = %q, want the emergency action", res.RecommendedAction)
	}
	if res.TimeSensitivity != "immediate" {
		t.Fatalf("TimeSensitivity = %q, want immediate", res.TimeSensitivity)
	}
	if len(res.RedFlags) == 0 {
		t.Fatalf("expected the matched phrase recorded as a red flag")
	}
}

func TestForceEmergencyKeepsHigherScore(t *testing.T) {
	res := ForceEmergency(Result{Level: LevelEmergency, Score: 100}, "reason")
	if res.Score != 100 {
		t.Fatalf("Score = %d, want 100 preserved", res.Score)
	}
}
