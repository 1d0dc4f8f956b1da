package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cartsync/tools/storage"
)

// UnavailableReason classifies why an item could not be added to the cart.
type UnavailableReason string

const (
	ReasonNotFound     UnavailableReason = "not_found"
	ReasonOutOfStock   UnavailableReason = "out_of_stock"
	ReasonSearchFailed UnavailableReason = "search_failed"
	ReasonTransient    UnavailableReason = "transient"
)

// UnavailableRecord is one append-only failure record. Records are never
// rewritten or truncated; history stays auditable.
type UnavailableRecord struct {
	Item       string            `json:"item"`
	Reason     UnavailableReason `json:"reason"`
	Timestamp  string            `json:"timestamp"`
	SearchTerm string            `json:"search_term,omitempty"`
}

type unavailableDoc struct {
	Items []UnavailableRecord `json:"items"`
}

// UnavailableLog is the append-only log of items that failed to add.
type UnavailableLog struct {
	store storage.StateStore
	doc   unavailableDoc
}

// LoadUnavailable reads the unavailable log. Missing document means no
// history yet; malformed content is a data-integrity error.
func LoadUnavailable(ctx context.Context, store storage.StateStore) (*UnavailableLog, error) {
	log := &UnavailableLog{store: store}

	data, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		return log, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load unavailable log: %w", err)
	}

	if err := json.Unmarshal(data, &log.doc); err != nil {
		return nil, fmt.Errorf("unavailable log is not valid JSON: %w", err)
	}
	return log, nil
}

// Append records a failure and persists immediately, so a crash later in
// the run cannot lose it.
func (u *UnavailableLog) Append(ctx context.Context, item string, reason UnavailableReason, searchTerm string) error {
	u.doc.Items = append(u.doc.Items, UnavailableRecord{
		Item:       item,
		Reason:     reason,
		Timestamp:  time.Now().Format(time.RFC3339),
		SearchTerm: searchTerm,
	})

	data, err := json.MarshalIndent(u.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal unavailable log: %w", err)
	}
	if err := u.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save unavailable log: %w", err)
	}
	return nil
}

// Records returns the full history, oldest first.
func (u *UnavailableLog) Records() []UnavailableRecord {
	return u.doc.Items
}
