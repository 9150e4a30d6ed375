package knowledge

import (
	"sort"
	"strings"
	"unicode"
)

// relevanceThreshold is the minimum lexical-overlap score a fact needs to be
// returned at all. Below it the retriever returns nothing rather than noise.
const relevanceThreshold = 0.1

// stopwords are excluded from overlap scoring.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "do": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "i": {}, "in": {}, "is": {}, "it": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "so": {}, "the": {}, "to": {}, "was": {}, "with": {},
	"me": {}, "am": {}, "been": {}, "this": {}, "that": {}, "its": {},
}

// Retriever looks up verified facts by lexical overlap. Deterministic for a
// fixed corpus; best-effort grounding, never a hard dependency of generation.
type Retriever struct {
	facts []Fact
}

func NewRetriever() *Retriever {
	return &Retriever{facts: corpus}
}

// NewRetrieverWithFacts exists for tests and future corpus injection.
func NewRetrieverWithFacts(facts []Fact) *Retriever {
	return &Retriever{facts: facts}
}

// Retrieve returns up to topK facts scored by token overlap with the query.
// An empty result is normal, never an error.
func (r *Retriever) Retrieve(query string, topK int) []Fact {
	terms := tokenize(query)
	if len(terms) == 0 || topK <= 0 {
		return nil
	}

	scored := make([]Fact, 0, len(r.facts))
	for _, f := range r.facts {
		score := overlap(terms, tokenize(f.Content+" "+f.Category))
		if score < relevanceThreshold {
			continue
		}
		fact := f
		fact.Relevance = score
		scored = append(scored, fact)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Relevance != scored[j].Relevance {
			return scored[i].Relevance > scored[j].Relevance
		}
		return scored[i].Citation < scored[j].Citation
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// overlap is the fraction of query terms present in the fact's token set.
func overlap(query map[string]struct{}, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for term := range query {
		if _, ok := doc[term]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if len(tok) < 2 {
			return
		}
		if _, stop := stopwords[tok]; stop {
			return
		}
		out[tok] = struct{}{}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
