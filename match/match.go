// Package match implements token-overlap similarity between item text and
// product names. The same scoring runs in both directions: library-name
// suggestion for unmapped items, and expected-name coverage during audit.
package match

import (
	"sort"
	"strings"
	"unicode"

	"cartsync"
)

// MaxSuggestions caps how many fuzzy candidates are proposed per item.
const MaxSuggestions = 3

// Tokenize lowercases s and splits it on whitespace and punctuation,
// dropping empty tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Coverage scores how completely the query's tokens appear in name:
// |query tokens ∩ name tokens| / |query tokens|, in [0,1].
//
// Subset coverage rather than symmetric Jaccard: retailer display names
// append flavor and size qualifiers the query will not contain, and
// penalizing the name for those extra tokens would suppress true matches.
func Coverage(query, name string) float64 {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}

	nameSet := make(map[string]bool)
	for _, tok := range Tokenize(name) {
		nameSet[tok] = true
	}

	matched := 0
	seen := make(map[string]bool)
	for _, tok := range queryTokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if nameSet[tok] {
			matched++
		}
	}

	return float64(matched) / float64(len(seen))
}

// Suggest scores canonical item text against every known product name and
// returns up to MaxSuggestions candidates with score > 0, best first. Ties
// break toward the shorter (more minimal) name, then lexical order, so the
// ordering is deterministic. An empty result signals a genuinely new item.
//
// Suggest only proposes; committing a mapping is always a human action.
func Suggest(canonical string, products []cartsync.ProductIdentity) []cartsync.ScoredProduct {
	scored := make([]cartsync.ScoredProduct, 0, len(products))
	for _, p := range products {
		score := Coverage(canonical, p.Name)
		if score > 0 {
			scored = append(scored, cartsync.ScoredProduct{Product: p, Score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if len(scored[i].Product.Name) != len(scored[j].Product.Name) {
			return len(scored[i].Product.Name) < len(scored[j].Product.Name)
		}
		return scored[i].Product.Name < scored[j].Product.Name
	})

	if len(scored) > MaxSuggestions {
		scored = scored[:MaxSuggestions]
	}
	return scored
}
