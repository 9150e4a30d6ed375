package safety

import "regexp"

// emergencyPhrase is one entry of the fixed input-scanning table. First match
// wins and short-circuits with the phrase as reason.
type emergencyPhrase struct {
	phrase   string
	category string
}

var emergencyPhrases = []emergencyPhrase{
	// self-harm
	{"kill myself", "self-harm"},
	{"end my life", "self-harm"},
	{"want to die", "self-harm"},
	{"suicide", "self-harm"},
	{"hurt myself", "self-harm"},
	{"self harm", "self-harm"},
	{"self-harm", "self-harm"},
	// cardiac
	{"crushing chest", "cardiac"},
	{"heart attack", "cardiac"},
	{"chest pain spreading", "cardiac"},
	// respiratory
	{"can't breathe", "respiratory"},
	{"cant breathe", "respiratory"},
	{"cannot breathe", "respiratory"},
	{"not breathing", "respiratory"},
	{"stopped breathing", "respiratory"},
	{"choking", "respiratory"},
	{"turning blue", "respiratory"},
	{"throat is closing", "respiratory"},
	// stroke
	{"having a stroke", "stroke"},
	{"face is drooping", "stroke"},
	{"face drooping", "stroke"},
	{"suddenly can't speak", "stroke"},
	// overdose
	{"overdose", "overdose"},
	{"overdosed", "overdose"},
	{"took too many pills", "overdose"},
	// poisoning
	{"poisoned", "poisoning"},
	{"swallowed poison", "poisoning"},
	{"drank bleach", "poisoning"},
	// severe bleeding
	{"bleeding won't stop", "bleeding"},
	{"bleeding wont stop", "bleeding"},
	{"won't stop bleeding", "bleeding"},
	{"wont stop bleeding", "bleeding"},
	{"severe bleeding", "bleeding"},
	{"bleeding heavily", "bleeding"},
	{"bleeding out", "bleeding"},
}

// Rule is one independently testable output-sanitation step: pattern,
// replacement, and the constraint it enforces.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
	Rationale   string
}

// forbiddenRules strip or soften content a generated reply must never carry:
// absolute diagnostic claims, care-avoidance instructions, unverified cures.
var forbiddenRules = []Rule{
	{
		Name:        "absolute_diagnosis_you",
		Pattern:     regexp.MustCompile(`(?i)\byou (definitely|certainly|clearly|100%) have\b`),
		Replacement: "your symptoms could be consistent with",
		Rationale:   "a text generator must not state a diagnosis as certain",
	},
	{
		Name:        "absolute_diagnosis_this",
		Pattern:     regexp.MustCompile(`(?i)\bthis is (definitely|certainly|clearly|without a doubt)\b`),
		Replacement: "this may be",
		Rationale:   "a text generator must not state a diagnosis as certain",
	},
	{
		Name:        "skip_hospital",
		Pattern:     regexp.MustCompile(`(?i)\b(skip|avoid|don't bother with|do not bother with) the (hospital|emergency room|er|doctor)\b`),
		Replacement: "seek medical care if symptoms persist or worsen",
		Rationale:   "never discourage seeking care",
	},
	{
		Name:        "no_doctor_needed",
		Pattern:     regexp.MustCompile(`(?i)\bno need to (see|visit|call) (a |the )?(doctor|hospital|gp)\b`),
		Replacement: "a clinician can confirm this",
		Rationale:   "never discourage seeking care",
	},
	{
		Name:        "stop_medication",
		Pattern:     regexp.MustCompile(`(?i)\bstop taking (your |all |the )?medications?\b`),
		Replacement: "talk to your doctor before changing any medication",
		Rationale:   "medication changes require a prescriber",
	},
	{
		Name:        "guaranteed_cure",
		Pattern:     regexp.MustCompile(`(?i)\b(will|guaranteed to) cure\b`),
		Replacement: "may ease symptoms of",
		Rationale:   "no unverified cure claims",
	},
	{
		Name:        "miracle_cure",
		Pattern:     regexp.MustCompile(`(?i)\bmiracle (cure|remedy|treatment)\b`),
		Replacement: "unproven remedy",
		Rationale:   "no unverified cure claims",
	},
}

// dosageRules rewrite imperative dosage language into advisory phrasing.
// Any hit forces the medication disclaimer.
var dosageRules = []Rule{
	{
		Name:        "imperative_should_take",
		Pattern:     regexp.MustCompile(`(?i)\byou (should|must|need to|have to) take\b`),
		Replacement: "some people find relief with",
		Rationale:   "dosage instructions must be advisory, not imperative",
	},
	{
		Name:        "imperative_take_dose",
		Pattern:     regexp.MustCompile(`(?i)\btake (\d+\s?(?:mg|ml|mcg|g))\b`),
		Replacement: "a pharmacist can confirm whether $1 is appropriate",
		Rationale:   "dosage instructions must be advisory, not imperative",
	},
	{
		Name:        "imperative_take_count",
		Pattern:     regexp.MustCompile(`(?i)\btake (one|two|three|\d+) (tablets?|pills?|capsules?)\b`),
		Replacement: "the packaging states how many $2 are appropriate",
		Rationale:   "dosage instructions must be advisory, not imperative",
	},
}

// mentalHealthMarkers flag content that must carry the crisis-helpline block.
var mentalHealthMarkers = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"self harm",
	"self-harm",
	"hurt myself",
	"want to die",
	"depressed",
	"depression",
	"anxiety",
	"panic attack",
	"hopeless",
	"mental health",
}

const disclaimerMarker = "not a medical diagnosis"

// DisclaimerBlock is the single advisory block every modified reply carries.
const DisclaimerBlock = "This is general health information, not a medical diagnosis. " +
	"Please consult a qualified clinician about your symptoms."

// CrisisBlock is appended whenever content is mental-health related.
const CrisisBlock = "If you are thinking about harming yourself, please reach out now: " +
	"call or text 988 (Suicide & Crisis Lifeline), or contact your local emergency number. " +
	"You are not alone."

// EmergencyResourcesBlock is prepended on input-escalation verdicts.
const EmergencyResourcesBlock = "This may be a medical emergency. " +
	"Call your local emergency number (911/112) or go to the nearest emergency department immediately. " +
	"Do not wait for an online reply."
