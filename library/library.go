// Package library is the persistent mapping from canonical item text to
// product identities on the retail platform. Append-mostly; a human is the
// sole mutator, via the adjudication workflow or the record command.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cartsync"
	"cartsync/tools/storage"
)

// ErrDuplicateConflict is returned by Record when the canonical text
// already maps to a different product. Overwriting requires the explicit
// Replace operation; Record never silently clobbers.
var ErrDuplicateConflict = errors.New("canonical item already maps to a different product")

// Entry is one persisted library record. OriginalRequests holds raw
// spellings a human previously adjudicated onto this product, so repeat
// typos resolve without another round trip.
type Entry struct {
	ProductID        string   `json:"product_id"`
	DisplayName      string   `json:"display_name"`
	URL              string   `json:"url,omitempty"`
	OriginalRequests []string `json:"original_requests,omitempty"`
	Added            string   `json:"added,omitempty"`
}

type document struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"last_updated,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Products    map[string]Entry `json:"products"`
}

// Library is the in-memory view of the product library for one run. The
// engine treats it as read-only during a run; Record/Replace exist for the
// out-of-band adjudication path.
type Library struct {
	store storage.StateStore
	doc   document

	// variation text -> canonical key
	byRequest map[string]string
}

// Load reads and validates the library document. A missing document is an
// empty library; a malformed one is an error the caller must treat as a
// data-integrity failure, never as entries to skip.
func Load(ctx context.Context, store storage.StateStore) (*Library, error) {
	lib := &Library{
		store: store,
		doc:   document{Version: "1.0", Products: map[string]Entry{}},
	}

	data, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		lib.reindex()
		return lib, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product library: %w", err)
	}

	if err := json.Unmarshal(data, &lib.doc); err != nil {
		return nil, fmt.Errorf("product library is not valid JSON: %w", err)
	}
	if lib.doc.Products == nil {
		lib.doc.Products = map[string]Entry{}
	}

	if err := lib.validate(); err != nil {
		return nil, err
	}

	lib.reindex()
	return lib, nil
}

func (l *Library) validate() error {
	namesByID := map[string]string{}
	for key, entry := range l.doc.Products {
		if key != canonicalKey(key) {
			return fmt.Errorf("library key %q is not in canonical form", key)
		}
		if entry.ProductID == "" {
			return fmt.Errorf("library entry %q has no product id", key)
		}
		if entry.DisplayName == "" {
			return fmt.Errorf("library entry %q has no display name", key)
		}
		if prev, ok := namesByID[entry.ProductID]; ok && prev != entry.DisplayName {
			return fmt.Errorf("product id %q appears under conflicting names %q and %q", entry.ProductID, prev, entry.DisplayName)
		}
		namesByID[entry.ProductID] = entry.DisplayName
	}
	return nil
}

func (l *Library) reindex() {
	l.byRequest = map[string]string{}
	for key, entry := range l.doc.Products {
		for _, req := range entry.OriginalRequests {
			l.byRequest[canonicalKey(req)] = key
		}
	}
}

func canonicalKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Lookup resolves canonical item text to a product identity, consulting
// direct keys first and adjudicated variations second.
func (l *Library) Lookup(canonical string) (cartsync.ProductIdentity, bool) {
	key := canonicalKey(canonical)
	if entry, ok := l.doc.Products[key]; ok {
		return cartsync.ProductIdentity{ID: entry.ProductID, Name: entry.DisplayName}, true
	}
	if target, ok := l.byRequest[key]; ok {
		entry := l.doc.Products[target]
		return cartsync.ProductIdentity{ID: entry.ProductID, Name: entry.DisplayName}, true
	}
	return cartsync.ProductIdentity{}, false
}

// Verify partitions a batch of canonical texts into mapped and unmapped,
// preserving input order. The mapping gate runs on this before any cart
// mutation is attempted.
func (l *Library) Verify(canonicals []string) (mapped, unmapped []string) {
	for _, item := range canonicals {
		if _, ok := l.Lookup(item); ok {
			mapped = append(mapped, item)
		} else {
			unmapped = append(unmapped, item)
		}
	}
	return mapped, unmapped
}

// Record maps canonical text to a product. It fails with
// ErrDuplicateConflict when the text already maps to a different product;
// recording the same product again just accumulates the original request
// as a variation.
func (l *Library) Record(ctx context.Context, canonical string, product cartsync.ProductIdentity, originalRequest string) error {
	if product.ID == "" || product.Name == "" {
		return fmt.Errorf("refusing to record incomplete product identity %+v", product)
	}

	key := canonicalKey(canonical)
	if key == "" {
		return fmt.Errorf("refusing to record empty canonical text")
	}

	if existing, ok := l.doc.Products[key]; ok {
		if existing.ProductID != product.ID {
			return fmt.Errorf("%q -> %q vs existing %q: %w", key, product.ID, existing.ProductID, ErrDuplicateConflict)
		}
		return l.addVariation(ctx, key, originalRequest)
	}

	entry := Entry{
		ProductID:   product.ID,
		DisplayName: product.Name,
		Added:       time.Now().Format(time.RFC3339),
	}
	if originalRequest != "" && canonicalKey(originalRequest) != key {
		entry.OriginalRequests = []string{originalRequest}
	}
	l.doc.Products[key] = entry
	l.reindex()
	return l.save(ctx)
}

// Replace overwrites an existing mapping. Distinct from Record so that
// remapping is always an explicit, deliberate operation.
func (l *Library) Replace(ctx context.Context, canonical string, product cartsync.ProductIdentity) error {
	if product.ID == "" || product.Name == "" {
		return fmt.Errorf("refusing to record incomplete product identity %+v", product)
	}

	key := canonicalKey(canonical)
	entry, ok := l.doc.Products[key]
	if !ok {
		return fmt.Errorf("no existing mapping for %q to replace", key)
	}

	entry.ProductID = product.ID
	entry.DisplayName = product.Name
	l.doc.Products[key] = entry
	l.reindex()
	return l.save(ctx)
}

// AddVariation attaches a raw request spelling to an existing product so
// future lookups of that spelling resolve directly.
func (l *Library) AddVariation(ctx context.Context, canonical, variation string) error {
	key := canonicalKey(canonical)
	if _, ok := l.doc.Products[key]; !ok {
		return fmt.Errorf("no library entry %q to attach variation to", key)
	}
	return l.addVariation(ctx, key, variation)
}

func (l *Library) addVariation(ctx context.Context, key, variation string) error {
	if variation == "" || canonicalKey(variation) == key {
		return nil
	}

	entry := l.doc.Products[key]
	for _, req := range entry.OriginalRequests {
		if canonicalKey(req) == canonicalKey(variation) {
			return nil
		}
	}
	entry.OriginalRequests = append(entry.OriginalRequests, variation)
	l.doc.Products[key] = entry
	l.reindex()
	return l.save(ctx)
}

// Products returns every known product identity, ordered by canonical key
// so downstream scoring sees a deterministic sequence.
func (l *Library) Products() []cartsync.ProductIdentity {
	keys := make([]string, 0, len(l.doc.Products))
	for key := range l.doc.Products {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]cartsync.ProductIdentity, 0, len(keys))
	for _, key := range keys {
		entry := l.doc.Products[key]
		out = append(out, cartsync.ProductIdentity{ID: entry.ProductID, Name: entry.DisplayName})
	}
	return out
}

// Len reports how many canonical mappings exist.
func (l *Library) Len() int { return len(l.doc.Products) }

func (l *Library) save(ctx context.Context) error {
	l.doc.Version = "1.0"
	l.doc.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal product library: %w", err)
	}
	if err := l.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save product library: %w", err)
	}
	return nil
}
