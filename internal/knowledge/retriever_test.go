package knowledge

import (
	"reflect"
	"testing"
)

func TestRetrieveFindsRelevantFacts(t *testing.T) {
	r := NewRetriever()
	facts := r.Retrieve("chest pain spreading to my arm with sweating", 3)
	if len(facts) == 0 {
		t.Fatalf("no facts for cardiac query")
	}
	if facts[0].Category != "cardiac" {
		t.Fatalf("top fact category = %q, want cardiac: %+v", facts[0].Category, facts[0])
	}
	if facts[0].Citation == "" {
		t.Fatalf("fact missing citation")
	}
	if facts[0].Relevance <= 0 || facts[0].Relevance > 1 {
		t.Fatalf("relevance = %v, want (0,1]", facts[0].Relevance)
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	r := NewRetriever()
	first := r.Retrieve("fever and stiff neck with headache", 3)
	for i := 0; i < 10; i++ {
		if got := r.Retrieve("fever and stiff neck with headache", 3); !reflect.DeepEqual(got, first) {
			t.Fatalf("retrieval not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestRetrieveRespectsTopK(t *testing.T) {
	r := NewRetriever()
	facts := r.Retrieve("fever headache pain", 2)
	if len(facts) > 2 {
		t.Fatalf("len = %d, want <= 2", len(facts))
	}
}

func TestRetrieveEmptyBelowThreshold(t *testing.T) {
	r := NewRetriever()
	if facts := r.Retrieve("quarterly tax filing deadline", 3); len(facts) != 0 {
		t.Fatalf("irrelevant query returned %d facts: %+v", len(facts), facts)
	}
	if facts := r.Retrieve("", 3); facts != nil {
		t.Fatalf("empty query returned %+v", facts)
	}
	if facts := r.Retrieve("fever", 0); facts != nil {
		t.Fatalf("topK=0 returned %+v", facts)
	}
}

func TestRetrieveCustomCorpus(t *testing.T) {
	r := NewRetrieverWithFacts([]Fact{
		{Content: "hydration matters during fever", Citation: "c1", Category: "general"},
	})
	facts := r.Retrieve("fever hydration", 1)
	if len(facts) != 1 || facts[0].Citation != "c1" {
		t.Fatalf("got %+v, want the injected fact", facts)
	}
}
