package symptoms

import (
	"sort"
	"strings"
	"unicode"
)

// Symptom is a canonical lowercase clinical-complaint term.
type Symptom string

const fuzzyMatchThreshold = 0.80

// fuzzyMinRunes guards short tokens: below this length a single edit flips
// the ratio past the threshold for unrelated words.
const fuzzyMinRunes = 4

var (
	// variantToCanonical resolves any known raw phrase to its canonical term.
	variantToCanonical map[string]Symptom
	// variantsByLength holds all known variants, longest first, for the
	// substring extraction pass.
	variantsByLength []string
)

func init() {
	variantToCanonical = make(map[string]Symptom, len(catalog)*8)
	for canonical, variants := range catalog {
		variantToCanonical[string(canonical)] = canonical
		for _, v := range variants {
			variantToCanonical[normalizeText(v)] = canonical
		}
	}
	variantsByLength = make([]string, 0, len(variantToCanonical))
	for v := range variantToCanonical {
		variantsByLength = append(variantsByLength, v)
	}
	sort.Slice(variantsByLength, func(i, j int) bool {
		if len(variantsByLength[i]) != len(variantsByLength[j]) {
			return len(variantsByLength[i]) > len(variantsByLength[j])
		}
		return variantsByLength[i] < variantsByLength[j]
	})
}

// Canonicalize resolves a raw phrase to its canonical symptom term. It is
// idempotent: feeding a canonical term back in returns the same term.
func Canonicalize(raw string) (Symptom, bool) {
	norm := normalizeText(raw)
	if norm == "" {
		return "", false
	}
	if canonical, ok := variantToCanonical[norm]; ok {
		return canonical, true
	}
	return fuzzyCanonical(norm)
}

func fuzzyCanonical(norm string) (Symptom, bool) {
	if len([]rune(norm)) < fuzzyMinRunes {
		return "", false
	}
	best := Symptom("")
	bestRatio := 0.0
	for _, variant := range variantsByLength {
		// Length pre-filter: a ratio >= 0.8 is impossible when lengths
		// differ by more than 20%.
		if lengthGapTooLarge(norm, variant) {
			continue
		}
		r := similarityRatio(norm, variant)
		if r >= fuzzyMatchThreshold && r > bestRatio {
			bestRatio = r
			best = variantToCanonical[variant]
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

func lengthGapTooLarge(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		la, lb = lb, la
	}
	return float64(lb-la) > float64(lb)*(1-fuzzyMatchThreshold)
}

// similarityRatio is 1 - levenshtein/maxLen, in [0,1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// normalizeText lowercases and collapses everything that is not a letter,
// number, apostrophe, or hyphen into single spaces.
func normalizeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	prevSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '-':
			b.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
