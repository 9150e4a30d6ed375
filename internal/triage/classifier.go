package triage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emastro/vitalia/internal/symptoms"
)

// Level is a discrete urgency category routing a case to self-care,
// scheduled care, or emergency care.
type Level string

const (
	LevelEmergency    Level = "EMERGENCY"
	LevelUrgent       Level = "URGENT"
	LevelSemiUrgent   Level = "SEMI_URGENT"
	LevelRoutine      Level = "ROUTINE"
	LevelSelfCare     Level = "SELF_CARE"
	LevelMentalHealth Level = "MENTAL_HEALTH"
)

type AgeGroup string

const (
	AgeUnknown AgeGroup = ""
	AgeInfant  AgeGroup = "infant"
	AgeChild   AgeGroup = "child"
	AgeAdult   AgeGroup = "adult"
	AgeElderly AgeGroup = "elderly"
)

type DurationBucket string

const (
	DurationUnknown    DurationBucket = ""
	DurationSudden     DurationBucket = "sudden"     // under an hour
	DurationUnder24h   DurationBucket = "under_24h"  // acute
	DurationDays       DurationBucket = "days"       // 1-7 days
	DurationPersistent DurationBucket = "persistent" // over a week
)

// Vitals holds optional numeric observations for a single turn. Zero values
// mean "not provided".
type Vitals struct {
	HeartRate   int     `json:"heart_rate,omitempty"`
	Temperature float64 `json:"temperature_c,omitempty"`
	SpO2        int     `json:"spo2,omitempty"`
	SystolicBP  int     `json:"systolic_bp,omitempty"`
	DiastolicBP int     `json:"diastolic_bp,omitempty"`
}

func (v Vitals) Empty() bool {
	return v.HeartRate == 0 && v.Temperature == 0 && v.SpO2 == 0 &&
		v.SystolicBP == 0 && v.DiastolicBP == 0
}

// Input carries everything Classify may consider. ConversationText is the
// concatenation of every user turn so far; cardiac phrase pairs are matched
// across the whole conversation, not just the current turn.
type Input struct {
	Symptoms         []symptoms.Symptom
	RawText          string
	ConversationText string
	Vitals           Vitals
	Age              AgeGroup
	Duration         DurationBucket
}

// Result is the reproducible urgency classification.
type Result struct {
	Level             Level    `json:"level"`
	Score             int      `json:"score"`
	Reasoning         []string `json:"reasoning"`
	RedFlags          []string `json:"red_flags,omitempty"`
	RecommendedAction string   `json:"recommended_action"`
	TimeSensitivity   string   `json:"time_sensitivity"`
	Confidence        float64  `json:"confidence"`
}

const emergencyFloor = 95

// Classify scores accumulated symptoms plus optional vitals into a discrete
// urgency level. It is a pure function of its input: no randomness, no
// external calls, identical input always yields an identical Result.
func Classify(in Input) Result {
	var (
		reasoning []string
		redFlags  []string
	)

	score, matched := baseScore(in.Symptoms, &reasoning)
	score += comboBonus(in.Symptoms, &reasoning, &redFlags)
	score += demographicBonus(in.Age, in.Duration, &reasoning)
	score += vitalsBonus(in.Vitals, &reasoning, &redFlags)

	if reason, hit := emergencyOverride(in.RawText, in.ConversationText); hit {
		if score < emergencyFloor {
			score = emergencyFloor
		}
		reasoning = append(reasoning, reason)
		redFlags = append(redFlags, reason)
	}

	score = clamp(score, 0, 100)
	level := levelForScore(score)

	if level != LevelEmergency && level != LevelUrgent {
		if kw, hit := firstKeyword(in.RawText, mentalHealthKeywords); hit {
			level = LevelMentalHealth
			reasoning = append(reasoning, fmt.Sprintf("mental health indicator: %q", kw))
		} else if containsAny(in.Symptoms, "anxiety", "depression") {
			level = LevelMentalHealth
			reasoning = append(reasoning, "mental health symptom present")
		}
	}

	return Result{
		Level:             level,
		Score:             score,
		Reasoning:         reasoning,
		RedFlags:          redFlags,
		RecommendedAction: recommendedAction(level),
		TimeSensitivity:   timeSensitivity(level),
		Confidence:        confidence(matched, score),
	}
}

// ForceEmergency promotes an existing result to EMERGENCY. The input safety
// scan carries phrases the symptom tables don't, and the delivered level must
// match the escalation it triggers.
func ForceEmergency(base Result, reason string) Result {
	base.Level = LevelEmergency
	if base.Score < emergencyFloor {
		base.Score = emergencyFloor
	}
	if reason != "" {
		base.Reasoning = append(base.Reasoning, reason)
		base.RedFlags = append(base.RedFlags, reason)
	}
	base.RecommendedAction = recommendedAction(LevelEmergency)
	base.TimeSensitivity = timeSensitivity(LevelEmergency)
	return base
}

// baseScore is the highest single symptom weight plus 20% of the sum of the
// remaining matched weights.
func baseScore(list []symptoms.Symptom, reasoning *[]string) (int, int) {
	weights := make([]int, 0, len(list))
	names := make([]string, 0, len(list))
	for _, s := range list {
		if w, ok := severityWeights[s]; ok {
			weights = append(weights, w)
			names = append(names, string(s))
		}
	}
	if len(weights) == 0 {
		*reasoning = append(*reasoning, "no recognized symptoms")
		return 0, 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(weights)))
	sort.Strings(names)

	score := float64(weights[0])
	rest := 0
	for _, w := range weights[1:] {
		rest += w
	}
	score += 0.2 * float64(rest)

	*reasoning = append(*reasoning, fmt.Sprintf("symptoms recognized: %s", strings.Join(names, ", ")))
	*reasoning = append(*reasoning, fmt.Sprintf("symptom base score %d", int(score)))
	return int(score), len(weights)
}

func comboBonus(list []symptoms.Symptom, reasoning *[]string, redFlags *[]string) int {
	present := make(map[symptoms.Symptom]struct{}, len(list))
	for _, s := range list {
		present[s] = struct{}{}
	}

	total := 0
	for _, p := range comboPatterns {
		all := true
		for _, m := range p.members {
			if _, ok := present[m]; !ok {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		total += p.bonus
		*reasoning = append(*reasoning, fmt.Sprintf("%s (+%d)", p.name, p.bonus))
		*redFlags = append(*redFlags, p.redFlags...)
	}
	return total
}

func demographicBonus(age AgeGroup, dur DurationBucket, reasoning *[]string) int {
	total := 0
	if b, ok := ageModifiers[age]; ok && b != 0 {
		total += b
		*reasoning = append(*reasoning, fmt.Sprintf("age group %s (+%d)", age, b))
	}
	if b, ok := durationModifiers[dur]; ok && b != 0 {
		total += b
		*reasoning = append(*reasoning, fmt.Sprintf("duration %s (+%d)", dur, b))
	}
	return total
}

// vitalsBonus applies threshold-band bonuses escalating with distance from
// the normal range, independent of symptom text.
func vitalsBonus(v Vitals, reasoning *[]string, redFlags *[]string) int {
	if v.Empty() {
		return 0
	}
	total := 0
	add := func(bonus int, flag string, critical bool) {
		total += bonus
		*reasoning = append(*reasoning, fmt.Sprintf("%s (+%d)", flag, bonus))
		if critical {
			*redFlags = append(*redFlags, flag)
		}
	}

	switch {
	case v.HeartRate >= 150 || (v.HeartRate > 0 && v.HeartRate < 40):
		add(25, fmt.Sprintf("heart rate %d critically out of range", v.HeartRate), true)
	case v.HeartRate >= 120 || (v.HeartRate > 0 && v.HeartRate < 50):
		add(15, fmt.Sprintf("heart rate %d well out of range", v.HeartRate), false)
	case v.HeartRate > 100:
		add(5, fmt.Sprintf("heart rate %d elevated", v.HeartRate), false)
	}

	switch {
	case v.Temperature >= 41:
		add(25, fmt.Sprintf("temperature %.1f°C critically high", v.Temperature), true)
	case v.Temperature > 0 && v.Temperature < 35:
		add(20, fmt.Sprintf("temperature %.1f°C hypothermic", v.Temperature), true)
	case v.Temperature >= 39.5:
		add(15, fmt.Sprintf("temperature %.1f°C high fever", v.Temperature), false)
	case v.Temperature >= 38:
		add(5, fmt.Sprintf("temperature %.1f°C fever", v.Temperature), false)
	}

	switch {
	case v.SpO2 > 0 && v.SpO2 < 85:
		add(30, fmt.Sprintf("SpO2 %d%% critically low", v.SpO2), true)
	case v.SpO2 > 0 && v.SpO2 < 90:
		add(20, fmt.Sprintf("SpO2 %d%% very low", v.SpO2), true)
	case v.SpO2 > 0 && v.SpO2 < 94:
		add(10, fmt.Sprintf("SpO2 %d%% low", v.SpO2), false)
	}

	switch {
	case v.SystolicBP > 0 && v.SystolicBP < 80:
		add(25, fmt.Sprintf("systolic BP %d critically low", v.SystolicBP), true)
	case v.SystolicBP >= 200:
		add(20, fmt.Sprintf("systolic BP %d critically high", v.SystolicBP), true)
	case v.SystolicBP > 0 && v.SystolicBP < 90:
		add(15, fmt.Sprintf("systolic BP %d low", v.SystolicBP), false)
	case v.SystolicBP >= 180:
		add(10, fmt.Sprintf("systolic BP %d high", v.SystolicBP), false)
	}

	return total
}

// emergencyOverride checks for literal emergency phrases in the current turn
// and for two or more cardiac-pattern phrases across the whole conversation.
func emergencyOverride(rawText, conversationText string) (string, bool) {
	if kw, hit := firstKeyword(rawText, emergencyKeywords); hit {
		return fmt.Sprintf("emergency phrase detected: %q", kw), true
	}

	haystack := strings.ToLower(conversationText)
	if haystack == "" {
		haystack = strings.ToLower(rawText)
	}
	hits := 0
	var found []string
	for _, kw := range cardiacKeywords {
		if strings.Contains(haystack, kw) {
			hits++
			found = append(found, kw)
		}
	}
	if hits >= 2 {
		return fmt.Sprintf("cardiac pattern across conversation: %s", strings.Join(found, ", ")), true
	}
	return "", false
}

func firstKeyword(text string, keywords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

func containsAny(list []symptoms.Symptom, targets ...symptoms.Symptom) bool {
	for _, s := range list {
		for _, t := range targets {
			if s == t {
				return true
			}
		}
	}
	return false
}

func levelForScore(score int) Level {
	switch {
	case score >= 90:
		return LevelEmergency
	case score >= 75:
		return LevelUrgent
	case score >= 55:
		return LevelSemiUrgent
	case score >= 30:
		return LevelRoutine
	default:
		return LevelSelfCare
	}
}

func recommendedAction(level Level) string {
	switch level {
	case LevelEmergency:
		return "Call emergency services or go to the nearest emergency department now."
	case LevelUrgent:
		return "Seek medical care within the next few hours."
	case LevelSemiUrgent:
		return "See a doctor within 24 hours."
	case LevelRoutine:
		return "Book a routine appointment with your doctor."
	case LevelMentalHealth:
		return "Reach out to a mental health professional or a support line."
	default:
		return "Self-care at home is reasonable; seek care if symptoms worsen."
	}
}

func timeSensitivity(level Level) string {
	switch level {
	case LevelEmergency:
		return "immediate"
	case LevelUrgent:
		return "hours"
	case LevelSemiUrgent:
		return "24 hours"
	case LevelRoutine:
		return "days"
	case LevelMentalHealth:
		return "soon"
	default:
		return "as needed"
	}
}

// confidence grows with match count and score extremity. Informational only:
// it never alters the level.
func confidence(matched, score int) float64 {
	c := 0.35
	switch {
	case matched >= 4:
		c += 0.30
	case matched >= 2:
		c += 0.20
	case matched == 1:
		c += 0.10
	}
	extremity := float64(score-50) / 50
	if extremity < 0 {
		extremity = -extremity
	}
	c += 0.25 * extremity
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
