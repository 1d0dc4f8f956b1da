package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartsync"
	"cartsync/normalize"
)

func resolved(normalized, id, name string, qty int) ResolvedItem {
	return ResolvedItem{
		Item:    normalize.CanonicalItem{Original: normalized, Normalized: normalized, Quantity: qty},
		Product: cartsync.ProductIdentity{ID: id, Name: name},
	}
}

func entry(id, name string, count int) cartsync.CartEntry {
	return cartsync.CartEntry{
		Product:     cartsync.ProductIdentity{ID: id, Name: name},
		DisplayName: name,
		Count:       count,
	}
}

func TestPlan(t *testing.T) {
	carrots := resolved("short carrots", "46176", "Short Carrots", 1)
	eggs := resolved("eggs", "201", "Large Eggs", 12)

	tests := []struct {
		name     string
		desired  []ResolvedItem
		snapshot cartsync.CartSnapshot
		want     []AddInstruction
	}{
		{
			name:     "absent product gets full requested count",
			desired:  []ResolvedItem{carrots},
			snapshot: nil,
			want:     []AddInstruction{{Item: carrots, Count: 1}},
		},
		{
			name:     "satisfied product emits nothing",
			desired:  []ResolvedItem{carrots},
			snapshot: cartsync.CartSnapshot{entry("46176", "Short Carrots", 1)},
			want:     nil,
		},
		{
			name:     "deficit gets topped up",
			desired:  []ResolvedItem{eggs},
			snapshot: cartsync.CartSnapshot{entry("201", "Large Eggs", 4)},
			want:     []AddInstruction{{Item: eggs, Count: 8}},
		},
		{
			name:     "count above requested emits nothing",
			desired:  []ResolvedItem{carrots},
			snapshot: cartsync.CartSnapshot{entry("46176", "Short Carrots", 3)},
			want:     nil,
		},
		{
			name:    "entries without product id match on full name coverage",
			desired: []ResolvedItem{carrots},
			snapshot: cartsync.CartSnapshot{
				{DisplayName: "Short Carrots, 1 lb Bag", Count: 1},
			},
			want: nil,
		},
		{
			name:    "undesired cart entries are ignored, never removed",
			desired: []ResolvedItem{carrots},
			snapshot: cartsync.CartSnapshot{
				entry("999", "Eggs", 2),
				entry("46176", "Short Carrots", 1),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.desired, tt.snapshot)
			assert.Equal(t, tt.want, got.Adds)
		})
	}
}

// Applying a plan to the snapshot and replanning must yield an empty plan.
func TestPlanIdempotence(t *testing.T) {
	desired := []ResolvedItem{
		resolved("short carrots", "46176", "Short Carrots", 2),
		resolved("eggs", "201", "Large Eggs", 12),
		resolved("milk", "301", "Whole Milk", 1),
	}
	snapshot := cartsync.CartSnapshot{entry("201", "Large Eggs", 5)}

	first := Plan(desired, snapshot)
	require.False(t, first.Empty())

	applied := append(cartsync.CartSnapshot{}, snapshot...)
	for _, add := range first.Adds {
		applied = append(applied, cartsync.CartEntry{
			Product:     add.Item.Product,
			DisplayName: add.Item.Product.Name,
			Count:       add.Count,
		})
	}

	second := Plan(desired, applied)
	assert.True(t, second.Empty(), "replan after applying the plan must be empty, got %+v", second.Adds)
}
