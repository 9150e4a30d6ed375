package safety

import (
	"strings"

	"github.com/emastro/vitalia/internal/symptoms"
)

// Action is the validator's verdict on a generated reply.
type Action string

const (
	ActionAllow         Action = "ALLOW"
	ActionModify        Action = "MODIFY"
	ActionBlock         Action = "BLOCK"
	ActionEscalate      Action = "ESCALATE"
	ActionAddDisclaimer Action = "ADD_DISCLAIMER"
)

// Violation records one fired rule.
type Violation struct {
	Rule      string `json:"rule"`
	Category  string `json:"category"`
	Rationale string `json:"rationale,omitempty"`
}

// Verdict is the outcome of validating a reply against the rule table.
type Verdict struct {
	Action             Action      `json:"action"`
	Violations         []Violation `json:"violations,omitempty"`
	SanitizedText      string      `json:"sanitized_text"`
	DisclaimerAdded    bool        `json:"disclaimer_added"`
	EmergencyTriggered bool        `json:"emergency_triggered"`
	EscalationReason   string      `json:"escalation_reason,omitempty"`
}

// CheckInput scans user text against the fixed emergency-phrase list. The
// first match short-circuits with the matched phrase as reason.
func CheckInput(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, p := range emergencyPhrases {
		if strings.Contains(lower, p.phrase) {
			return true, p.phrase
		}
	}
	return false, ""
}

// CheckOutput validates a generated reply. Must never panic on malformed
// input; a matching failure degrades to ADD_DISCLAIMER, never to ALLOW.
func CheckOutput(generated, original string, detected []symptoms.Symptom) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = Verdict{
				Action:          ActionAddDisclaimer,
				SanitizedText:   ensureSingleDisclaimer(generated),
				DisclaimerAdded: true,
				Violations: []Violation{{
					Rule:      "validator_failure",
					Category:  "internal",
					Rationale: "rule matching failed; degraded to conservative verdict",
				}},
			}
		}
	}()

	if emergency, reason := CheckInput(original); emergency {
		return escalationVerdict(generated, original, reason, detected)
	}

	text := generated
	var violations []Violation
	modified := false
	needDisclaimer := false

	for _, rule := range forbiddenRules {
		if !rule.Pattern.MatchString(text) {
			continue
		}
		text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
		modified = true
		violations = append(violations, Violation{
			Rule:      rule.Name,
			Category:  "forbidden_phrase",
			Rationale: rule.Rationale,
		})
	}

	for _, rule := range dosageRules {
		if !rule.Pattern.MatchString(text) {
			continue
		}
		text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
		modified = true
		needDisclaimer = true
		violations = append(violations, Violation{
			Rule:      rule.Name,
			Category:  "imperative_dosage",
			Rationale: rule.Rationale,
		})
	}

	if mentalHealthRelated(generated, original, detected) && !strings.Contains(text, "988") {
		text = strings.TrimSpace(text) + "\n\n" + CrisisBlock
		modified = true
		violations = append(violations, Violation{
			Rule:      "crisis_helpline_missing",
			Category:  "mental_health",
			Rationale: "mental-health content must carry the crisis-helpline block",
		})
	}

	disclaimerAdded := false
	switch {
	case needDisclaimer:
		before := text
		text = ensureSingleDisclaimer(text)
		disclaimerAdded = text != before
	case countDisclaimers(text) > 1:
		// A generator sometimes repeats its own boilerplate; dedupe even on
		// an otherwise clean reply.
		text = ensureSingleDisclaimer(text)
		modified = true
		violations = append(violations, Violation{
			Rule:      "duplicate_disclaimer",
			Category:  "formatting",
			Rationale: "final text carries the disclaimer block exactly once",
		})
	}

	if !modified && !disclaimerAdded {
		return Verdict{Action: ActionAllow, SanitizedText: generated}
	}
	return Verdict{
		Action:          ActionModify,
		Violations:      violations,
		SanitizedText:   text,
		DisclaimerAdded: disclaimerAdded,
	}
}

func escalationVerdict(generated, original, reason string, detected []symptoms.Symptom) Verdict {
	blocks := []string{EmergencyResourcesBlock}
	if mentalHealthRelated(generated, original, detected) {
		blocks = append(blocks, CrisisBlock)
	}
	if body := strings.TrimSpace(generated); body != "" {
		blocks = append(blocks, body)
	}
	return Verdict{
		Action:             ActionEscalate,
		SanitizedText:      strings.Join(blocks, "\n\n"),
		EmergencyTriggered: true,
		EscalationReason:   reason,
		Violations: []Violation{{
			Rule:      "emergency_input",
			Category:  "emergency",
			Rationale: "input matched emergency phrase: " + reason,
		}},
	}
}

func mentalHealthRelated(generated, original string, detected []symptoms.Symptom) bool {
	haystack := strings.ToLower(generated + " " + original)
	for _, marker := range mentalHealthMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	for _, s := range detected {
		switch s {
		case "anxiety", "depression", "suicidal ideation", "insomnia":
			return true
		}
	}
	return false
}

func countDisclaimers(text string) int {
	return strings.Count(strings.ToLower(text), disclaimerMarker)
}

// ensureSingleDisclaimer returns text carrying the disclaimer block exactly
// once: every existing disclaimer sentence is stripped and the canonical
// block is appended at the end.
func ensureSingleDisclaimer(text string) string {
	cleaned := strings.TrimSpace(stripDisclaimerSentences(text))
	if cleaned == "" {
		return DisclaimerBlock
	}
	return cleaned + "\n\n" + DisclaimerBlock
}

func stripDisclaimerSentences(text string) string {
	text = strings.ReplaceAll(text, DisclaimerBlock, "")

	lower := strings.ToLower(text)
	var b strings.Builder
	idx := 0
	for idx < len(text) {
		hit := strings.Index(lower[idx:], disclaimerMarker)
		if hit < 0 {
			b.WriteString(text[idx:])
			break
		}
		abs := idx + hit
		start := idx
		if cut := strings.LastIndexAny(text[idx:abs], ".\n"); cut >= 0 {
			start = idx + cut + 1
		}
		b.WriteString(text[idx:start])
		end := strings.IndexAny(text[abs:], ".\n")
		if end < 0 {
			break
		}
		idx = abs + end + 1
	}
	return b.String()
}
