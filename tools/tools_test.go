package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartsync/tools/storage"
)

var testLibraryDoc = []byte(`{"products": {
	"short carrots": {"product_id": "46176", "display_name": "Short Carrots"},
	"baby carrots": {"product_id": "10001", "display_name": "Baby Carrots 1 lb"}
}}`)

func TestRegistry(t *testing.T) {
	registry, err := NewRegistry(storage.NewTestStateStore(testLibraryDoc), storage.NewTestStateStore(nil))
	require.NoError(t, err)

	assert.Len(t, registry.GetTools(), 4)

	tool, err := registry.GetTool("library_lookup")
	require.NoError(t, err)
	assert.Equal(t, "library_lookup", tool.Name())

	_, err = registry.GetTool("nope")
	require.Error(t, err)
}

func TestRegistryDispatch(t *testing.T) {
	registry, err := NewRegistry(storage.NewTestStateStore(testLibraryDoc), storage.NewTestStateStore(nil))
	require.NoError(t, err)

	out, err := registry.Dispatch(context.Background(), Call{
		Name:  "library_lookup",
		Input: map[string]any{"item": "short carrots"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "46176", out["product_id"])

	_, err = registry.Dispatch(context.Background(), Call{Name: "nope"})
	require.Error(t, err)
}

func TestLibraryLookup_Run(t *testing.T) {
	tests := []struct {
		name           string
		input          map[string]any
		expectedResult map[string]any
	}{
		{
			name:  "known item",
			input: map[string]any{"item": "short carrots"},
			expectedResult: map[string]any{
				"found":        true,
				"product_id":   "46176",
				"display_name": "Short Carrots",
			},
		},
		{
			name:  "case and whitespace are canonicalized",
			input: map[string]any{"item": "  Short Carrots "},
			expectedResult: map[string]any{
				"found":        true,
				"product_id":   "46176",
				"display_name": "Short Carrots",
			},
		},
		{
			name:           "unknown item",
			input:          map[string]any{"item": "ornaments"},
			expectedResult: map[string]any{"found": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewLibraryLookup(storage.NewTestStateStore(testLibraryDoc))
			got, err := tool.Run(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedResult, got)
		})
	}
}

func TestLibraryRecord_Run(t *testing.T) {
	t.Run("records and persists a new mapping", func(t *testing.T) {
		store := storage.NewTestStateStore(testLibraryDoc)
		tool := NewLibraryRecord(store)

		got, err := tool.Run(context.Background(), map[string]any{
			"item":             "whole milk",
			"product_id":       "301",
			"display_name":     "Whole Milk Gallon",
			"original_request": "Whole Milk",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"recorded": true}, got)

		lookup, err := NewLibraryLookup(store).Run(context.Background(), map[string]any{"item": "whole milk"})
		require.NoError(t, err)
		assert.Equal(t, true, lookup["found"])
	})

	t.Run("conflicting mapping is reported, not applied", func(t *testing.T) {
		store := storage.NewTestStateStore(testLibraryDoc)
		tool := NewLibraryRecord(store)

		got, err := tool.Run(context.Background(), map[string]any{
			"item":         "short carrots",
			"product_id":   "99999",
			"display_name": "Different Carrots",
		})
		require.NoError(t, err)
		assert.Equal(t, false, got["recorded"])
		assert.Equal(t, true, got["conflict"])

		lookup, err := NewLibraryLookup(store).Run(context.Background(), map[string]any{"item": "short carrots"})
		require.NoError(t, err)
		assert.Equal(t, "46176", lookup["product_id"])
	})
}

func TestFuzzySuggest_Run(t *testing.T) {
	tool := NewFuzzySuggest(storage.NewTestStateStore(testLibraryDoc))

	t.Run("ranks overlapping products", func(t *testing.T) {
		got, err := tool.Run(context.Background(), map[string]any{"item": "rainbow carrots"})
		require.NoError(t, err)

		candidates, ok := got["candidates"].([]any)
		require.True(t, ok)
		require.Len(t, candidates, 2)

		first, ok := candidates[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "46176", first["product_id"])
		assert.Equal(t, 0.5, first["score"])
	})

	t.Run("no overlap yields empty candidates, not null", func(t *testing.T) {
		got, err := tool.Run(context.Background(), map[string]any{"item": "ornaments"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"candidates": []any{}}, got)
	})
}

func TestUnavailableGet_Run(t *testing.T) {
	doc := []byte(`{"items": [
		{"item": "eggs", "reason": "out_of_stock", "timestamp": "2026-08-01T10:00:00Z"},
		{"item": "ornaments", "reason": "not_found", "timestamp": "2026-08-02T10:00:00Z"},
		{"item": "eggs", "reason": "transient", "timestamp": "2026-08-03T10:00:00Z"}
	]}`)

	t.Run("returns full history", func(t *testing.T) {
		tool := NewUnavailableGet(storage.NewTestStateStore(doc))
		got, err := tool.Run(context.Background(), map[string]any{})
		require.NoError(t, err)

		items, ok := got["items"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 3)
	})

	t.Run("limit keeps the most recent records", func(t *testing.T) {
		tool := NewUnavailableGet(storage.NewTestStateStore(doc))
		got, err := tool.Run(context.Background(), map[string]any{"limit": 1.0})
		require.NoError(t, err)

		items, ok := got["items"].([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
		rec, ok := items[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "2026-08-03T10:00:00Z", rec["timestamp"])
	})

	t.Run("empty history yields empty items, not null", func(t *testing.T) {
		tool := NewUnavailableGet(storage.NewTestStateStore(nil))
		got, err := tool.Run(context.Background(), map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"items": []any{}}, got)
	})
}
