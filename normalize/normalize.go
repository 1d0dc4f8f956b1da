// Package normalize turns raw item descriptions into canonical form using a
// rewritable substitution table. Pure text transforms; no external calls.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// CanonicalItem is the normalized form of a raw item description. Derived
// deterministically each run; never persisted.
type CanonicalItem struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Quantity   int    `json:"quantity"`
}

var (
	leadingQtyRe = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)
	dozenRe      = regexp.MustCompile(`^\s*(?:(\d+)\s+)?dozen\s+(.*)$`)
)

// Normalize applies the substitution table and extracts a leading quantity.
// Deterministic, total, and idempotent on the normalized text:
// Normalize(x.Normalized, t).Normalized == x.Normalized for any valid table.
//
//	"2 bananas"     -> qty 2, "bananas"
//	"dozen eggs"    -> qty 12, "eggs"
//	"2 dozen eggs"  -> qty 24, "eggs"
//	"Short Carrotts" (carrotts->carrots) -> qty 1, "short carrots"
func Normalize(raw string, table *Table) CanonicalItem {
	if table == nil {
		table = EmptyTable()
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = table.Apply(s)

	qty := 1
	if m := dozenRe.FindStringSubmatch(s); m != nil {
		n := 1
		if m[1] != "" {
			n, _ = strconv.Atoi(m[1])
		}
		qty = n * 12
		s = strings.TrimSpace(m[2])
	} else if m := leadingQtyRe.FindStringSubmatch(s); m != nil {
		qty, _ = strconv.Atoi(m[1])
		s = strings.TrimSpace(m[2])
	}
	if qty < 1 {
		qty = 1
	}

	return CanonicalItem{Original: raw, Normalized: s, Quantity: qty}
}

// NormalizeAll maps raw descriptions to canonical items, dropping blank
// entries the way the task source can produce them.
func NormalizeAll(raws []string, table *Table) []CanonicalItem {
	out := make([]CanonicalItem, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out = append(out, Normalize(raw, table))
	}
	return out
}
