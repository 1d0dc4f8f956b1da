package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Table is the substitution table: raw phrase (or phrase fragment) to
// corrected phrase. Persisted as plain JSON, mutated only by explicit human
// edits between runs; the engine treats it as read-only within a run.
type Table struct {
	Version       string            `json:"version"`
	LastUpdated   string            `json:"last_updated,omitempty"`
	Substitutions map[string]string `json:"substitutions"`

	// keys sorted longest-first so multi-word phrases are substituted
	// before their single-word constituents.
	ordered []string
}

// ParseTable decodes and validates a substitution table document. A table
// that is not idempotent under repeated application (some replacement text
// re-triggers another rule) is rejected: runaway rewriting is a
// data-integrity defect, not something to paper over at apply time.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("substitution table is not valid JSON: %w", err)
	}
	if t.Substitutions == nil {
		t.Substitutions = map[string]string{}
	}

	for from, to := range t.Substitutions {
		if strings.TrimSpace(from) == "" {
			return nil, fmt.Errorf("substitution table has an empty phrase key")
		}
		if from != strings.ToLower(strings.TrimSpace(from)) {
			return nil, fmt.Errorf("substitution key %q must be lowercase and trimmed", from)
		}
		if to != strings.ToLower(strings.TrimSpace(to)) {
			return nil, fmt.Errorf("substitution value %q must be lowercase and trimmed", to)
		}
	}

	t.index()

	for from, to := range t.Substitutions {
		if got := t.Apply(to); got != to {
			return nil, fmt.Errorf("substitution %q -> %q is not idempotent: value rewrites to %q", from, to, got)
		}
	}

	return &t, nil
}

// EmptyTable returns a valid table with no substitutions.
func EmptyTable() *Table {
	t := &Table{Version: "1.0", Substitutions: map[string]string{}}
	t.index()
	return t
}

func (t *Table) index() {
	t.ordered = make([]string, 0, len(t.Substitutions))
	for k := range t.Substitutions {
		t.ordered = append(t.ordered, k)
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		if len(t.ordered[i]) != len(t.ordered[j]) {
			return len(t.ordered[i]) > len(t.ordered[j])
		}
		return t.ordered[i] < t.ordered[j]
	})
}

// Apply rewrites s through every rule, longest phrase first. Matches are
// whole-word only: the fragment "carrot" never fires inside "carrotcake".
func (t *Table) Apply(s string) string {
	padded := " " + s + " "
	for _, from := range t.ordered {
		needle := " " + from + " "
		repl := " " + t.Substitutions[from] + " "
		// Adjacent matches share their separating space; a single
		// ReplaceAll pass leaves every other occurrence untouched.
		for strings.Contains(padded, needle) {
			padded = strings.ReplaceAll(padded, needle, repl)
			if strings.Contains(repl, needle) {
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(padded), " "))
}
