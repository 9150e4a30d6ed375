package triage

import "github.com/emastro/vitalia/internal/symptoms"

// severityWeights is the fixed per-symptom severity table, 0-100.
var severityWeights = map[symptoms.Symptom]int{
	"suicidal ideation":     95,
	"severe bleeding":       85,
	"seizure":               85,
	"facial droop":          85,
	"slurred speech":        85,
	"chest pain":            80,
	"shortness of breath":   75,
	"coughing blood":        75,
	"fainting":              70,
	"vision loss":           70,
	"confusion":             65,
	"neck stiffness":        60,
	"numbness":              55,
	"palpitations":          55,
	"blood in stool":        55,
	"blood in urine":        50,
	"abdominal pain":        45,
	"dizziness":             45,
	"fever":                 45,
	"difficulty swallowing": 45,
	"leg swelling":          45,
	"headache":              40,
	"vomiting":              40,
	"weakness":              40,
	"arm pain":              35,
	"jaw pain":              35,
	"sweating":              35,
	"burning urination":     35,
	"weight loss":           35,
	"depression":            35,
	"swelling":              30,
	"chills":                30,
	"diarrhea":              30,
	"nausea":                30,
	"back pain":             30,
	"anxiety":               30,
	"rash":                  25,
	"cough":                 25,
	"joint pain":            25,
	"fatigue":               25,
	"sore throat":           20,
	"ear pain":              20,
	"muscle aches":          20,
	"loss of appetite":      20,
	"insomnia":              15,
	"constipation":          15,
	"runny nose":            10,
}

// comboPattern is an unordered symptom co-occurrence representing a known
// high-risk syndrome. All members must be present for the bonus to apply.
type comboPattern struct {
	name     string
	members  []symptoms.Symptom
	bonus    int
	redFlags []string
}

var comboPatterns = []comboPattern{
	{
		name:     "meningitis pattern",
		members:  []symptoms.Symptom{"fever", "headache", "neck stiffness"},
		bonus:    25,
		redFlags: []string{"fever with headache and neck stiffness"},
	},
	{
		name:     "cardiac pattern",
		members:  []symptoms.Symptom{"chest pain", "arm pain", "sweating"},
		bonus:    15,
		redFlags: []string{"chest pain radiating to arm with sweating"},
	},
	{
		name:     "cardiopulmonary pattern",
		members:  []symptoms.Symptom{"chest pain", "shortness of breath"},
		bonus:    15,
		redFlags: []string{"chest pain with shortness of breath"},
	},
	{
		name:     "stroke pattern",
		members:  []symptoms.Symptom{"facial droop", "slurred speech"},
		bonus:    20,
		redFlags: []string{"facial droop with slurred speech"},
	},
	{
		name:     "stroke pattern",
		members:  []symptoms.Symptom{"numbness", "slurred speech"},
		bonus:    15,
		redFlags: []string{"one-sided numbness with slurred speech"},
	},
	{
		name:     "sepsis pattern",
		members:  []symptoms.Symptom{"fever", "confusion"},
		bonus:    20,
		redFlags: []string{"fever with new confusion"},
	},
	{
		name:     "appendicitis pattern",
		members:  []symptoms.Symptom{"abdominal pain", "fever", "nausea"},
		bonus:    15,
		redFlags: []string{"abdominal pain with fever and nausea"},
	},
	{
		name:     "gi bleed pattern",
		members:  []symptoms.Symptom{"blood in stool", "dizziness"},
		bonus:    15,
		redFlags: []string{"rectal bleeding with dizziness"},
	},
	{
		name:     "dvt pattern",
		members:  []symptoms.Symptom{"leg swelling", "shortness of breath"},
		bonus:    20,
		redFlags: []string{"unilateral leg swelling with breathlessness"},
	},
}

// emergencyKeywords force score >= 95 when found verbatim in the raw turn
// text, independent of the symptom table.
var emergencyKeywords = []string{
	"can't breathe",
	"cant breathe",
	"cannot breathe",
	"not breathing",
	"stopped breathing",
	"crushing chest",
	"heart attack",
	"having a stroke",
	"unconscious",
	"unresponsive",
	"overdose",
	"overdosed",
	"poisoned",
	"poisoning",
	"severe bleeding",
	"bleeding out",
	"kill myself",
	"end my life",
	"want to die",
	"suicide",
	"anaphylaxis",
	"throat is closing",
	"turning blue",
}

// cardiacKeywords are matched across the whole conversation; two or more
// distinct hits force score >= 95 even when no single turn sounds critical.
var cardiacKeywords = []string{
	"chest pain",
	"chest pressure",
	"chest tightness",
	"crushing",
	"left arm",
	"jaw pain",
	"shortness of breath",
	"short of breath",
	"sweating",
	"cold sweat",
	"radiating",
}

// mentalHealthKeywords reclassify a non-critical score to LevelMentalHealth.
var mentalHealthKeywords = []string{
	"depressed",
	"depression",
	"anxiety",
	"anxious",
	"panic attack",
	"hopeless",
	"worthless",
	"self harm",
	"self-harm",
	"mental health",
	"overwhelmed",
	"can't cope",
	"cant cope",
}

// ageModifiers adjust the score by demographic bracket.
var ageModifiers = map[AgeGroup]int{
	AgeInfant:  15,
	AgeChild:   5,
	AgeAdult:   0,
	AgeElderly: 10,
}

// durationModifiers adjust by how long symptoms have been present.
var durationModifiers = map[DurationBucket]int{
	DurationSudden:     10,
	DurationUnder24h:   5,
	DurationDays:       0,
	DurationPersistent: 5,
}
