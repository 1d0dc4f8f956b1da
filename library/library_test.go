package library

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartsync"
	"cartsync/tools/storage"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document is an empty library", func(t *testing.T) {
		lib, err := Load(ctx, storage.NewTestStateStore(nil))
		require.NoError(t, err)
		assert.Equal(t, 0, lib.Len())
	})

	t.Run("valid document", func(t *testing.T) {
		data := []byte(`{
			"version": "1.0",
			"products": {
				"short carrots": {
					"product_id": "46176",
					"display_name": "Short Carrots",
					"original_requests": ["short carrotts"]
				}
			}
		}`)
		lib, err := Load(ctx, storage.NewTestStateStore(data))
		require.NoError(t, err)
		assert.Equal(t, 1, lib.Len())
	})

	t.Run("malformed JSON fails the load", func(t *testing.T) {
		_, err := Load(ctx, storage.NewTestStateStore([]byte(`{"products":`)))
		assert.Error(t, err)
	})

	t.Run("entry without product id fails the load", func(t *testing.T) {
		data := []byte(`{"products": {"eggs": {"display_name": "Eggs"}}}`)
		_, err := Load(ctx, storage.NewTestStateStore(data))
		assert.Error(t, err)
	})

	t.Run("conflicting names for one product id fail the load", func(t *testing.T) {
		data := []byte(`{"products": {
			"eggs": {"product_id": "1", "display_name": "Eggs Dozen"},
			"dozen eggs": {"product_id": "1", "display_name": "Large Eggs"}
		}}`)
		_, err := Load(ctx, storage.NewTestStateStore(data))
		assert.Error(t, err)
	})

	t.Run("non-canonical key fails the load", func(t *testing.T) {
		data := []byte(`{"products": {"Short Carrots": {"product_id": "1", "display_name": "Short Carrots"}}}`)
		_, err := Load(ctx, storage.NewTestStateStore(data))
		assert.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"products": {
		"short carrots": {
			"product_id": "46176",
			"display_name": "Short Carrots",
			"original_requests": ["short carrotts", "Carrots, short"]
		}
	}}`)
	lib, err := Load(ctx, storage.NewTestStateStore(data))
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		wantID string
		wantOK bool
	}{
		{"direct key", "short carrots", "46176", true},
		{"case-insensitive", "Short Carrots", "46176", true},
		{"adjudicated variation", "short carrotts", "46176", true},
		{"variation is canonicalized", "carrots, short", "46176", true},
		{"unknown item", "ornaments", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lib.Lookup(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"products": {
		"eggs": {"product_id": "1", "display_name": "Large Eggs"},
		"milk": {"product_id": "2", "display_name": "Whole Milk"}
	}}`)
	lib, err := Load(ctx, storage.NewTestStateStore(data))
	require.NoError(t, err)

	mapped, unmapped := lib.Verify([]string{"eggs", "ornaments", "milk", "tinsel"})
	assert.Equal(t, []string{"eggs", "milk"}, mapped)
	assert.Equal(t, []string{"ornaments", "tinsel"}, unmapped)
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("new mapping persists", func(t *testing.T) {
		store := storage.NewTestStateStore(nil)
		lib, err := Load(ctx, store)
		require.NoError(t, err)

		err = lib.Record(ctx, "short carrots", cartsync.ProductIdentity{ID: "46176", Name: "Short Carrots"}, "short carrotts")
		require.NoError(t, err)

		got, ok := lib.Lookup("short carrotts")
		require.True(t, ok)
		assert.Equal(t, "46176", got.ID)

		// Reload from the saved bytes and confirm the variation survived.
		reloaded, err := Load(ctx, store)
		require.NoError(t, err)
		got, ok = reloaded.Lookup("short carrotts")
		require.True(t, ok)
		assert.Equal(t, "46176", got.ID)
	})

	t.Run("conflicting re-map is rejected", func(t *testing.T) {
		store := storage.NewTestStateStore(nil)
		lib, err := Load(ctx, store)
		require.NoError(t, err)

		require.NoError(t, lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "1", Name: "Large Eggs"}, ""))
		err = lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "2", Name: "Jumbo Eggs"}, "")
		assert.ErrorIs(t, err, ErrDuplicateConflict)

		// Original mapping unchanged.
		got, ok := lib.Lookup("eggs")
		require.True(t, ok)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("same product accumulates variations", func(t *testing.T) {
		store := storage.NewTestStateStore(nil)
		lib, err := Load(ctx, store)
		require.NoError(t, err)

		require.NoError(t, lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "1", Name: "Large Eggs"}, ""))
		require.NoError(t, lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "1", Name: "Large Eggs"}, "eggz"))

		got, ok := lib.Lookup("eggz")
		require.True(t, ok)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("incomplete identity is rejected", func(t *testing.T) {
		lib, err := Load(ctx, storage.NewTestStateStore(nil))
		require.NoError(t, err)
		assert.Error(t, lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "1"}, ""))
		assert.Error(t, lib.Record(ctx, "", cartsync.ProductIdentity{ID: "1", Name: "Eggs"}, ""))
	})
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	store := storage.NewTestStateStore(nil)
	lib, err := Load(ctx, store)
	require.NoError(t, err)

	require.NoError(t, lib.Record(ctx, "eggs", cartsync.ProductIdentity{ID: "1", Name: "Large Eggs"}, ""))

	t.Run("replace overwrites", func(t *testing.T) {
		require.NoError(t, lib.Replace(ctx, "eggs", cartsync.ProductIdentity{ID: "2", Name: "Jumbo Eggs"}))
		got, ok := lib.Lookup("eggs")
		require.True(t, ok)
		assert.Equal(t, "2", got.ID)
	})

	t.Run("replace without existing mapping fails", func(t *testing.T) {
		assert.Error(t, lib.Replace(ctx, "tinsel", cartsync.ProductIdentity{ID: "9", Name: "Tinsel"}))
	})
}

func TestProductsOrdering(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"products": {
		"milk": {"product_id": "2", "display_name": "Whole Milk"},
		"eggs": {"product_id": "1", "display_name": "Large Eggs"},
		"bread": {"product_id": "3", "display_name": "Wheat Bread"}
	}}`)
	lib, err := Load(ctx, storage.NewTestStateStore(data))
	require.NoError(t, err)

	got := lib.Products()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "1", "2"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestUnavailableLog(t *testing.T) {
	ctx := context.Background()

	t.Run("append is persisted immediately and never truncates", func(t *testing.T) {
		store := storage.NewTestStateStore(nil)
		log, err := LoadUnavailable(ctx, store)
		require.NoError(t, err)

		require.NoError(t, log.Append(ctx, "short carrots", ReasonOutOfStock, "short carrots"))
		require.NoError(t, log.Append(ctx, "ornaments", ReasonNotFound, ""))

		reloaded, err := LoadUnavailable(ctx, store)
		require.NoError(t, err)
		records := reloaded.Records()
		require.Len(t, records, 2)
		assert.Equal(t, "short carrots", records[0].Item)
		assert.Equal(t, ReasonOutOfStock, records[0].Reason)
		assert.NotEmpty(t, records[0].Timestamp)
		assert.Equal(t, ReasonNotFound, records[1].Reason)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(store.Data(), &doc))
		assert.Len(t, doc["items"], 2)
	})

	t.Run("malformed log fails the load", func(t *testing.T) {
		_, err := LoadUnavailable(ctx, storage.NewTestStateStore([]byte(`{"items":`)))
		assert.Error(t, err)
	})
}
