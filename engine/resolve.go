// Package engine contains the reconciliation core: resolving canonical
// items to product identities, planning the minimal add set against a cart
// snapshot, auditing the post-sync cart, and the orchestrator that
// sequences a run.
package engine

import (
	"cartsync"
	"cartsync/library"
	"cartsync/match"
	"cartsync/normalize"
)

// ResolutionStatus says how far an item got toward a product identity.
type ResolutionStatus int

const (
	// Mapped: the library resolved the item. Only Mapped items may
	// proceed to planning.
	Mapped ResolutionStatus = iota
	// FuzzyCandidate: no mapping, but scored candidates exist. Blocks the
	// run until a human confirms one.
	FuzzyCandidate
	// Unmapped: no mapping and no token overlap with any known product.
	Unmapped
)

func (s ResolutionStatus) String() string {
	switch s {
	case Mapped:
		return "mapped"
	case FuzzyCandidate:
		return "fuzzy_candidate"
	case Unmapped:
		return "unmapped"
	}
	return "unknown"
}

// Resolution is the per-item, per-run outcome of the mapping gate.
type Resolution struct {
	Item       normalize.CanonicalItem  `json:"item"`
	Status     ResolutionStatus         `json:"status"`
	Product    cartsync.ProductIdentity `json:"product,omitempty"`
	Candidates []cartsync.ScoredProduct `json:"candidates,omitempty"`
}

// ResolvedItem pairs a canonical item with its confirmed product identity.
type ResolvedItem struct {
	Item    normalize.CanonicalItem  `json:"item"`
	Product cartsync.ProductIdentity `json:"product"`
}

// Resolve runs every canonical item through the library and, for misses,
// the fuzzy matcher. It never auto-accepts a fuzzy candidate: any non-exact
// match requires human confirmation, as does a genuinely new item.
func Resolve(items []normalize.CanonicalItem, lib *library.Library) []Resolution {
	known := lib.Products()

	out := make([]Resolution, 0, len(items))
	for _, item := range items {
		if product, ok := lib.Lookup(item.Normalized); ok {
			out = append(out, Resolution{Item: item, Status: Mapped, Product: product})
			continue
		}

		candidates := match.Suggest(item.Normalized, known)
		if len(candidates) > 0 {
			out = append(out, Resolution{Item: item, Status: FuzzyCandidate, Candidates: candidates})
			continue
		}
		out = append(out, Resolution{Item: item, Status: Unmapped})
	}
	return out
}

// SplitResolutions partitions outcomes into items ready for planning and
// items that block the run.
func SplitResolutions(resolutions []Resolution) (ready []ResolvedItem, blocked []Resolution) {
	for _, r := range resolutions {
		if r.Status == Mapped {
			ready = append(ready, ResolvedItem{Item: r.Item, Product: r.Product})
		} else {
			blocked = append(blocked, r)
		}
	}
	return ready, blocked
}
