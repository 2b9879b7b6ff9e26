package matching

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/mkrogh/ledger/internal/transaction"
)

// Default scoring policy. Threshold is the score at which a candidate is
// auto-selected for bulk rule application; Floor is the minimal relevance
// below which candidates are not worth showing at all.
const (
	DefaultThreshold = 60
	DefaultFloor     = 20
)

// Match is one similarity candidate. Confident matches (score at or above
// the threshold) are pre-selected when presenting candidates; the rest are
// shown as partial matches needing explicit opt-in.
type Match struct {
	Transaction *transaction.Transaction
	Score       int
	Confident   bool
}

// Matcher scores candidate transactions against a reference source string.
type Matcher struct {
	threshold int
	floor     int
	filters   []string
}

func NewMatcher(threshold, floor int, filters []string) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	if floor <= 0 {
		floor = DefaultFloor
	}

	if filters == nil {
		filters = DefaultNoiseFilters
	}

	return &Matcher{threshold: threshold, floor: floor, filters: filters}
}

// FindSimilar scores every pool transaction against the reference's
// normalized source (or nameHint when given) for "same recurring source"
// matching. The reference itself is never part of the result. Ordering is
// the caller's concern; an empty pool or no relevant candidates yields an
// empty list.
func (m *Matcher) FindSimilar(ref *transaction.Transaction, pool []*transaction.Transaction, nameHint string) []Match {
	target := nameHint
	if target == "" {
		target = ref.Source
	}

	key := Normalize(target, m.filters)
	if key == "" {
		return nil
	}

	var matches []Match

	for _, candidate := range pool {
		if candidate.ID == ref.ID {
			continue
		}

		score := m.Score(key, Normalize(candidate.Source, m.filters))
		if score < m.floor {
			continue
		}

		matches = append(matches, Match{
			Transaction: candidate,
			Score:       score,
			Confident:   score >= m.threshold,
		})
	}

	return matches
}

// Score rates two normalized keys in [0,100], taking the better of token
// overlap and whole-string edit distance. Token overlap catches reordered
// merchant strings; edit distance catches truncation and typo drift.
func (m *Matcher) Score(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 100
	}

	return max(tokenOverlapScore(a, b), editDistanceScore(a, b))
}

func tokenOverlapScore(a, b string) int {
	ta := strings.Fields(a)
	tb := strings.Fields(b)

	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		set[tok] = struct{}{}
	}

	shared := 0

	for _, tok := range tb {
		if _, ok := set[tok]; ok {
			shared++
			delete(set, tok) // count each shared token once
		}
	}

	return 200 * shared / (len(ta) + len(tb))
}

func editDistanceScore(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 0
	}

	dist := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)

	return 100 * (longest - dist) / longest
}
