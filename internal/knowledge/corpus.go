package knowledge

// Fact is one verified reference statement with its citation. Immutable and
// turn-scoped: retrieval hands out copies, never shared state.
type Fact struct {
	Content   string  `json:"content"`
	Citation  string  `json:"source_citation"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance_score"`
}

// corpus is the fixed verified-fact table the retriever searches. Entries are
// deliberately small, citation-tagged statements, not prose articles.
var corpus = []Fact{
	{
		Content:  "Chest pain lasting more than a few minutes, especially with pain spreading to the arm or jaw, shortness of breath, or sweating, can indicate a heart attack and needs emergency evaluation.",
		Citation: "AHA Heart Attack Warning Signs",
		Category: "cardiac",
	},
	{
		Content:  "The FAST check for stroke: Face drooping, Arm weakness, Speech difficulty, Time to call emergency services.",
		Citation: "CDC Stroke Signs and Symptoms",
		Category: "neurological",
	},
	{
		Content:  "Fever with a stiff neck, severe headache, or confusion can indicate meningitis and requires urgent medical assessment.",
		Citation: "WHO Meningitis Fact Sheet",
		Category: "infectious",
	},
	{
		Content:  "Most colds resolve within 7 to 10 days with rest and fluids; antibiotics do not help viral infections.",
		Citation: "CDC Common Cold Guidance",
		Category: "respiratory",
	},
	{
		Content:  "Adults should seek care for fever above 39.4°C (103°F), or any fever lasting more than three days.",
		Citation: "CDC Fever Guidance",
		Category: "general",
	},
	{
		Content:  "A fever in an infant under three months old is always a reason to contact a doctor promptly.",
		Citation: "AAP Infant Fever Guidance",
		Category: "pediatric",
	},
	{
		Content:  "Dehydration from vomiting or diarrhea shows as dark urine, dizziness, and dry mouth; oral rehydration solutions are the first-line response.",
		Citation: "WHO Diarrhoeal Disease Fact Sheet",
		Category: "gastrointestinal",
	},
	{
		Content:  "Sudden severe abdominal pain that localizes to the lower right side, with fever or nausea, can indicate appendicitis and needs same-day assessment.",
		Citation: "NIH Appendicitis Overview",
		Category: "gastrointestinal",
	},
	{
		Content:  "Ibuprofen and other NSAIDs should be taken with food and avoided in people with stomach ulcers, kidney disease, or on blood thinners.",
		Citation: "NHS Ibuprofen Guidance",
		Category: "medication",
	},
	{
		Content:  "Paracetamol (acetaminophen) overdose can cause delayed liver failure; exceeding the labeled daily maximum is dangerous even without immediate symptoms.",
		Citation: "NHS Paracetamol Guidance",
		Category: "medication",
	},
	{
		Content:  "Shortness of breath at rest, blue lips, or oxygen saturation below 92% warrants emergency care.",
		Citation: "NHS Breathlessness Guidance",
		Category: "respiratory",
	},
	{
		Content:  "A headache that is sudden and the worst ever experienced, or comes with fever, stiff neck, confusion, or weakness, needs emergency evaluation.",
		Citation: "NINDS Headache Information",
		Category: "neurological",
	},
	{
		Content:  "Blood in stool can range from benign hemorrhoids to serious bleeding; black tarry stools or bleeding with dizziness need urgent care.",
		Citation: "NIH GI Bleeding Overview",
		Category: "gastrointestinal",
	},
	{
		Content:  "Urinary burning with fever, back pain, or vomiting suggests a kidney infection rather than a simple bladder infection and needs prompt treatment.",
		Citation: "CDC Urinary Tract Infection Guidance",
		Category: "urological",
	},
	{
		Content:  "Persistent sadness, loss of interest, or anxiety lasting more than two weeks is worth discussing with a professional; crisis lines offer immediate support.",
		Citation: "NIMH Depression Basics",
		Category: "mental_health",
	},
	{
		Content:  "Unilateral leg swelling with warmth or pain can indicate a deep vein thrombosis, and with breathlessness a pulmonary embolism; both need urgent assessment.",
		Citation: "CDC Venous Thromboembolism Facts",
		Category: "vascular",
	},
}
