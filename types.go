package cartsync

import (
	"context"
)

// ProductIdentity is a stable platform product reference plus the display
// name it was confirmed under. Immutable once recorded in the library.
type ProductIdentity struct {
	ID   string `json:"product_id"`
	Name string `json:"display_name"`
}

// CartEntry is one line of a cart snapshot as observed on the platform.
// DisplayName is the name the cart UI showed, which is not always identical
// to the name recorded at search time.
type CartEntry struct {
	Product     ProductIdentity `json:"product"`
	DisplayName string          `json:"display_name"`
	Count       int             `json:"count"`
}

// CartSnapshot is the cart state at one point in time. The platform is the
// source of truth; snapshots are read fresh and never persisted.
type CartSnapshot []CartEntry

// AddStatus is the outcome of a delegated add-to-cart call.
type AddStatus int

const (
	AddOK AddStatus = iota
	AddNotFound
	AddOutOfStock
	AddTransientFailure
)

func (s AddStatus) String() string {
	switch s {
	case AddOK:
		return "ok"
	case AddNotFound:
		return "not_found"
	case AddOutOfStock:
		return "out_of_stock"
	case AddTransientFailure:
		return "transient_failure"
	}
	return "unknown"
}

// ScoredProduct is a fuzzy-match candidate with its subset-coverage score.
type ScoredProduct struct {
	Product ProductIdentity `json:"product"`
	Score   float64         `json:"score"`
}

// Adjudication is a human decision for an item that could not be resolved
// automatically: a confirmed identity to record, or an explicit "this is a
// new product" signal routed to the search-assist flow.
type Adjudication struct {
	Product   *ProductIdentity
	MarkedNew bool
}

// TaskSource provides the desired-item list. Implemented by gtasks.Client
// in production and by fakes in tests.
type TaskSource interface {
	FetchOpenItems(ctx context.Context, listName string) ([]string, error)
	MarkComplete(ctx context.Context, listName, title string) error
	MoveItem(ctx context.Context, title, fromList, toList string) error
}

// CartDriver drives the retail platform's cart. It deliberately exposes no
// checkout operation; completing a purchase is a human-only action.
type CartDriver interface {
	Snapshot(ctx context.Context) (CartSnapshot, error)
	AddToCart(ctx context.Context, product ProductIdentity, count int) (AddStatus, error)
}

// Adjudicator presents an unresolved item (with any fuzzy candidates) to a
// human and returns their decision. Any concrete surface qualifies: a
// terminal prompt, a web form, an agent front end.
type Adjudicator interface {
	Adjudicate(ctx context.Context, item string, candidates []ScoredProduct) (Adjudication, error)
}

// Notifier posts run results to an external channel (Slack webhook, etc).
type Notifier interface {
	PostMessage(ctx context.Context, channel string, message string) error
}
