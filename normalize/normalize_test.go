package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, subs map[string]string) *Table {
	t.Helper()
	tbl := &Table{Version: "1.0", Substitutions: subs}
	tbl.index()
	return tbl
}

func TestNormalize(t *testing.T) {
	table := mustTable(t, map[string]string{
		"carrotts":   "carrots",
		"shrmps":     "shrimp",
		"choc milk":  "chocolate milk",
		"half dozen": "6",
	})

	tests := []struct {
		name     string
		raw      string
		wantText string
		wantQty  int
	}{
		{
			name:     "plain item defaults to quantity one",
			raw:      "bananas",
			wantText: "bananas",
			wantQty:  1,
		},
		{
			name:     "leading numeral",
			raw:      "2 bananas",
			wantText: "bananas",
			wantQty:  2,
		},
		{
			name:     "dozen",
			raw:      "dozen eggs",
			wantText: "eggs",
			wantQty:  12,
		},
		{
			name:     "multiple dozen",
			raw:      "2 dozen eggs",
			wantText: "eggs",
			wantQty:  24,
		},
		{
			name:     "typo substitution",
			raw:      "Short Carrotts",
			wantText: "short carrots",
			wantQty:  1,
		},
		{
			name:     "multi-word phrase substituted before constituents",
			raw:      "choc milk",
			wantText: "chocolate milk",
			wantQty:  1,
		},
		{
			name:     "quantity correction via substitution",
			raw:      "half dozen bagels",
			wantText: "bagels",
			wantQty:  6,
		},
		{
			name:     "whitespace collapsed",
			raw:      "  2   ripe   avocados ",
			wantText: "ripe avocados",
			wantQty:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, table)
			assert.Equal(t, tt.wantText, got.Normalized)
			assert.Equal(t, tt.wantQty, got.Quantity)
			assert.Equal(t, tt.raw, got.Original)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	table := mustTable(t, map[string]string{
		"carrotts": "carrots",
		"ripe":     "ripe",
	})

	inputs := []string{"Short Carrotts", "2 dozen eggs", "bananas", "3 ripe avocados", ""}
	for _, raw := range inputs {
		once := Normalize(raw, table)
		twice := Normalize(once.Normalized, table)
		assert.Equal(t, once.Normalized, twice.Normalized, "input %q", raw)
	}
}

func TestNormalizeAdjacentMatchesAllRewritten(t *testing.T) {
	table := mustTable(t, map[string]string{"carrotts": "carrots"})

	got := Normalize("carrotts carrotts", table)
	assert.Equal(t, "carrots carrots", got.Normalized)

	again := Normalize(got.Normalized, table)
	assert.Equal(t, got.Normalized, again.Normalized)
}

func TestNormalizeNilTable(t *testing.T) {
	got := Normalize("2 Bananas", nil)
	assert.Equal(t, "bananas", got.Normalized)
	assert.Equal(t, 2, got.Quantity)
}

func TestNormalizeAll(t *testing.T) {
	table := EmptyTable()
	got := NormalizeAll([]string{"eggs", "  ", "", "2 bananas"}, table)
	require.Len(t, got, 2)
	assert.Equal(t, "eggs", got[0].Normalized)
	assert.Equal(t, "bananas", got[1].Normalized)
}

func TestParseTable(t *testing.T) {
	t.Run("valid table round-trips", func(t *testing.T) {
		data := []byte(`{"version":"1.0","substitutions":{"carrotts":"carrots"}}`)
		table, err := ParseTable(data)
		require.NoError(t, err)
		assert.Equal(t, "short carrots", table.Apply("short carrotts"))
	})

	t.Run("missing substitutions key is an empty table", func(t *testing.T) {
		table, err := ParseTable([]byte(`{"version":"1.0"}`))
		require.NoError(t, err)
		assert.Equal(t, "anything", table.Apply("anything"))
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		_, err := ParseTable([]byte(`{"substitutions":`))
		assert.Error(t, err)
	})

	t.Run("non-idempotent table is rejected", func(t *testing.T) {
		// "aa" -> "aa more": re-applying rewrites the value again.
		_, err := ParseTable([]byte(`{"substitutions":{"aa":"aa more","more":"extra"}}`))
		assert.Error(t, err)
	})

	t.Run("uppercase key is rejected", func(t *testing.T) {
		_, err := ParseTable([]byte(`{"substitutions":{"Carrotts":"carrots"}}`))
		assert.Error(t, err)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		_, err := ParseTable([]byte(`{"substitutions":{" ":"x"}}`))
		assert.Error(t, err)
	})
}

func TestTableWholeWordBoundaries(t *testing.T) {
	table := mustTable(t, map[string]string{"carrot": "carrots"})
	assert.Equal(t, "carrotcake", table.Apply("carrotcake"))
	assert.Equal(t, "carrots cake", table.Apply("carrot cake"))
}
