package symptoms

// catalog maps each canonical symptom term to the raw-phrase variants seen in
// real intake text: typos, transliterations, and colloquialisms. Every
// canonical term is also its own variant so canonicalization is idempotent.
var catalog = map[Symptom][]string{
	"chest pain": {
		"chest pain", "chest pressure", "chest tightness", "tightness in chest",
		"pain in my chest", "chest hurts", "chst pain", "chest ache", "tight chest",
	},
	"shortness of breath": {
		"shortness of breath", "short of breath", "cant breathe", "can't breathe",
		"cannot breathe", "difficulty breathing", "trouble breathing", "breathless",
		"hard to breathe", "dyspnea", "struggling to breathe", "out of breath",
	},
	"arm pain": {
		"arm pain", "pain in my arm", "left arm pain", "arm hurts", "aching arm",
		"pain down my arm",
	},
	"jaw pain": {
		"jaw pain", "jaw hurts", "aching jaw", "pain in my jaw",
	},
	"sweating": {
		"sweating", "sweaty", "cold sweat", "cold sweats", "drenched in sweat",
		"diaphoresis", "sweting",
	},
	"palpitations": {
		"palpitations", "heart racing", "racing heart", "heart pounding",
		"irregular heartbeat", "skipped beats", "heart fluttering", "palpatations",
	},
	"fainting": {
		"fainting", "fainted", "passed out", "blacked out", "syncope",
		"loss of consciousness", "lost consciousness", "unconscious",
	},
	"seizure": {
		"seizure", "seizures", "convulsion", "convulsions", "had a fit", "fitting",
	},
	"fever": {
		"fever", "high temperature", "febrile", "burning up", "feaver",
		"running a temperature", "pyrexia", "temperature of",
	},
	"chills": {
		"chills", "shivering", "shivers", "rigors", "the shakes",
	},
	"headache": {
		"headache", "head ache", "head hurts", "head is pounding", "migraine",
		"migrane", "head pain", "hedache", "splitting head",
	},
	"neck stiffness": {
		"neck stiffness", "stiff neck", "neck is stiff", "cant move my neck",
		"can't move my neck", "rigid neck", "neck so stiff",
	},
	"dizziness": {
		"dizziness", "dizzy", "lightheaded", "light headed", "vertigo",
		"feeling faint", "dizzyness", "room is spinning", "head spinning",
	},
	"confusion": {
		"confusion", "confused", "disoriented", "cant think straight",
		"can't think straight", "brain fog", "not making sense",
	},
	"slurred speech": {
		"slurred speech", "slurring words", "slurring my words", "trouble speaking",
		"cant speak properly", "can't speak properly", "speech difficulty",
		"words coming out wrong",
	},
	"facial droop": {
		"facial droop", "face drooping", "face is drooping", "droopy face",
		"one side of my face", "face gone numb on one side",
	},
	"numbness": {
		"numbness", "numb", "tingling", "pins and needles", "loss of sensation",
		"no feeling in",
	},
	"vision loss": {
		"vision loss", "cant see", "can't see", "blurred vision", "blurry vision",
		"double vision", "loss of vision", "vision went dark", "seeing double",
	},
	"weakness": {
		"weakness", "feel weak", "feeling weak", "feeble", "no strength",
	},
	"fatigue": {
		"fatigue", "tired all the time", "exhausted", "exhaustion", "no energy",
		"worn out", "wiped out", "fatigued",
	},
	"nausea": {
		"nausea", "nauseous", "feel sick", "feeling sick to my stomach", "queasy",
		"nausia", "sick to my stomach",
	},
	"vomiting": {
		"vomiting", "vomit", "vomited", "throwing up", "threw up", "puking",
		"puked", "being sick", "cant keep anything down", "can't keep anything down",
	},
	"abdominal pain": {
		"abdominal pain", "stomach ache", "stomachache", "tummy ache",
		"belly pain", "stomach pain", "pain in my stomach", "abdomen hurts",
		"stomach cramps", "belly hurts", "stomack pain", "gut pain",
	},
	"diarrhea": {
		"diarrhea", "diarrhoea", "loose stools", "the runs", "watery stool",
		"watery stools", "diarea",
	},
	"constipation": {
		"constipation", "constipated", "cant poop", "can't poop",
		"havent had a bowel movement", "blocked up",
	},
	"blood in stool": {
		"blood in stool", "blood in my stool", "bloody stool", "rectal bleeding",
		"blood when i wipe",
	},
	"blood in urine": {
		"blood in urine", "blood in my urine", "bloody urine", "hematuria",
		"blood when i pee",
	},
	"coughing blood": {
		"coughing blood", "coughing up blood", "blood in sputum", "hemoptysis",
		"blood when i cough",
	},
	"severe bleeding": {
		"severe bleeding", "bleeding heavily", "heavy bleeding", "wont stop bleeding",
		"won't stop bleeding", "blood everywhere", "bleeding a lot", "hemorrhage",
	},
	"cough": {
		"cough", "coughing", "hacking cough", "dry cough", "chesty cough",
		"coughing fits",
	},
	"sore throat": {
		"sore throat", "throat pain", "throat hurts", "scratchy throat",
		"painful throat", "sore thraot",
	},
	"runny nose": {
		"runny nose", "running nose", "stuffy nose", "blocked nose", "sniffles",
		"nasal congestion", "bunged up",
	},
	"difficulty swallowing": {
		"difficulty swallowing", "cant swallow", "can't swallow",
		"trouble swallowing", "painful swallowing", "hurts to swallow",
	},
	"ear pain": {
		"ear pain", "earache", "ear ache", "ear hurts", "pain in my ear",
	},
	"rash": {
		"rash", "skin rash", "hives", "itchy skin", "breaking out in spots",
		"red blotches",
	},
	"swelling": {
		"swelling", "swollen", "puffy", "edema", "oedema",
	},
	"leg swelling": {
		"leg swelling", "swollen leg", "swollen legs", "swollen ankle",
		"swollen ankles", "swollen calf",
	},
	"back pain": {
		"back pain", "backache", "back ache", "back hurts", "lower back pain",
		"bad back",
	},
	"joint pain": {
		"joint pain", "aching joints", "joints hurt", "painful joints",
		"joints are sore",
	},
	"muscle aches": {
		"muscle aches", "muscle pain", "body aches", "aching all over",
		"sore muscles", "myalgia",
	},
	"burning urination": {
		"burning urination", "painful urination", "burning when i pee",
		"hurts to pee", "stinging when i pee", "dysuria",
	},
	"loss of appetite": {
		"loss of appetite", "not hungry", "no appetite", "cant eat", "can't eat",
		"off my food",
	},
	"weight loss": {
		"weight loss", "losing weight", "lost a lot of weight",
		"clothes are loose",
	},
	"insomnia": {
		"insomnia", "cant sleep", "can't sleep", "trouble sleeping",
		"not sleeping", "lying awake",
	},
	"anxiety": {
		"anxiety", "anxious", "panic attack", "panic attacks", "panicking",
		"on edge", "constant worry",
	},
	"depression": {
		"depression", "depressed", "feeling hopeless", "feeling worthless",
		"no interest in anything", "feeling down all the time",
	},
	"suicidal ideation": {
		"suicidal ideation", "suicidal", "want to die", "kill myself",
		"end my life", "hurt myself", "self harm", "self-harm",
		"better off dead", "no reason to live",
	},
}
