package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/geo-reconciler/internal/normalizer"
)

// Ratio is the 0-100 similarity of two already-normalized strings, an edit
// distance ratio over the combined rune length. Two empty strings are
// identical; one empty string matches nothing.
func Ratio(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 100
	}
	if la == 0 || lb == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * float64(la+lb-d) / float64(la+lb)
}

// WeightedRatio is the token-aware similarity reported as the raw score:
// the best of the plain ratio, the token-sort ratio and, when the lengths
// diverge enough for containment to matter, a discounted partial ratio.
// Inputs are normalized before comparison.
func WeightedRatio(a, b string) float64 {
	a = normalizer.Normalize(a)
	b = normalizer.Normalize(b)
	if a == "" || b == "" {
		return 0
	}

	best := Ratio(a, b)
	if ts := Ratio(sortTokens(a), sortTokens(b)); ts > best {
		best = ts
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	longer, shorter := la, lb
	if lb > la {
		longer, shorter = lb, la
	}
	if float64(longer) >= 1.5*float64(shorter) {
		if p := 0.9 * partialRatio(a, b); p > best {
			best = p
		}
	}

	if best > 100 {
		best = 100
	}
	return best
}

// FirstWordMatches reports whether a directory name belongs in the
// first-word candidate pass: the query's normalized first word is contained
// in the normalized name, or sits within jaroGate of the name's own first
// word. Both arguments must be normalized already.
func FirstWordMatches(firstWord, name string, jaroGate float64) bool {
	if firstWord == "" {
		return false
	}
	if strings.Contains(name, firstWord) {
		return true
	}
	nameFirst := name
	if i := strings.IndexByte(name, ' '); i >= 0 {
		nameFirst = name[:i]
	}
	return smetrics.JaroWinkler(firstWord, nameFirst, 0.7, 4) >= jaroGate
}

// partialRatio slides the shorter string across the longer one and returns
// the best window ratio.
func partialRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}

	best := 0.0
	short := string(ra)
	for i := 0; i+len(ra) <= len(rb); i++ {
		window := string(rb[i : i+len(ra)])
		if r := Ratio(short, window); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
