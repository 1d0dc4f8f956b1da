package engine

import (
	"cartsync"
	"cartsync/match"
)

// AddInstruction tells the cart driver to add Count units of one product.
type AddInstruction struct {
	Item  ResolvedItem `json:"item"`
	Count int          `json:"count"`
}

// AddPlan is the minimal add set for one run. The engine only ever adds:
// no removal or quantity decrease exists anywhere in this type, so cart
// entries outside the desired set cannot be touched.
type AddPlan struct {
	Adds []AddInstruction `json:"adds"`
}

// Empty reports whether the plan has no work, which is what a re-run
// against an unchanged cart must produce.
func (p AddPlan) Empty() bool { return len(p.Adds) == 0 }

// Plan computes the adds needed to bring the cart up to the desired set:
// the full requested count for absent products, the deficit for
// under-counted ones, nothing for satisfied ones.
//
// A snapshot entry counts toward a desired product when the product IDs
// match, or, for carts that do not expose IDs, when the entry's display
// name fully covers the expected name's tokens (the audit criterion).
func Plan(desired []ResolvedItem, snapshot cartsync.CartSnapshot) AddPlan {
	var plan AddPlan
	for _, d := range desired {
		requested := d.Item.Quantity
		if requested < 1 {
			requested = 1
		}

		have := 0
		for _, entry := range snapshot {
			if entryCovers(entry, d.Product) {
				count := entry.Count
				if count < 1 {
					count = 1
				}
				have += count
			}
		}

		if have >= requested {
			continue
		}
		plan.Adds = append(plan.Adds, AddInstruction{Item: d, Count: requested - have})
	}
	return plan
}

func entryCovers(entry cartsync.CartEntry, product cartsync.ProductIdentity) bool {
	if entry.Product.ID != "" && entry.Product.ID == product.ID {
		return true
	}
	name := entry.DisplayName
	if name == "" {
		name = entry.Product.Name
	}
	return match.Coverage(product.Name, name) >= 1.0
}
