package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"cartsync"
	"cartsync/library"
	"cartsync/tools/storage"
)

type LibraryRecord struct{ state storage.StateStore }

func NewLibraryRecord(state storage.StateStore) *LibraryRecord { return &LibraryRecord{state: state} }

func (t *LibraryRecord) Name() string  { return "library_record" }
func (t *LibraryRecord) Title() string { return "Record Product Mapping" }
func (t *LibraryRecord) Description() string {
	return "Records a new item-to-product mapping. Refuses to overwrite an existing mapping for a different product."
}

func (t *LibraryRecord) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"item":             {Type: "string"},
			"product_id":       {Type: "string"},
			"display_name":     {Type: "string"},
			"original_request": {Type: "string"},
		},
		Required: []string{"item", "product_id", "display_name"},
	}
}

func (t *LibraryRecord) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recorded": {Type: "boolean"},
			"conflict": {Type: "boolean"},
			"error":    {Type: "string"},
		},
		Required: []string{"recorded"},
	}
}

func (t *LibraryRecord) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	item, _ := input["item"].(string)
	productID, _ := input["product_id"].(string)
	displayName, _ := input["display_name"].(string)
	originalRequest, _ := input["original_request"].(string)

	lib, err := library.Load(ctx, t.state)
	if err != nil {
		return nil, err
	}

	out := struct {
		Recorded bool   `json:"recorded"`
		Conflict bool   `json:"conflict,omitempty"`
		Error    string `json:"error,omitempty"`
	}{}

	product := cartsync.ProductIdentity{ID: productID, Name: displayName}
	switch err := lib.Record(ctx, item, product, originalRequest); {
	case err == nil:
		out.Recorded = true
	case errors.Is(err, library.ErrDuplicateConflict):
		// A conflict is an answer for the caller, not a tool failure.
		out.Conflict = true
		out.Error = err.Error()
	default:
		return nil, err
	}

	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
