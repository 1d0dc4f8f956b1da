package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"cartsync/library"
	"cartsync/tools/storage"
)

type LibraryLookup struct{ state storage.StateStore }

func NewLibraryLookup(state storage.StateStore) *LibraryLookup { return &LibraryLookup{state: state} }

func (t *LibraryLookup) Name() string  { return "library_lookup" }
func (t *LibraryLookup) Title() string { return "Look Up Product Mapping" }
func (t *LibraryLookup) Description() string {
	return "Resolves a normalized item description to its recorded product identity, if one exists."
}

func (t *LibraryLookup) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"item": {Type: "string"},
		},
		Required: []string{"item"},
	}
}

func (t *LibraryLookup) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"found":        {Type: "boolean"},
			"product_id":   {Type: "string"},
			"display_name": {Type: "string"},
		},
		Required: []string{"found"},
	}
}

func (t *LibraryLookup) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	item, _ := input["item"].(string)

	lib, err := library.Load(ctx, t.state)
	if err != nil {
		return nil, err
	}

	out := struct {
		Found       bool   `json:"found"`
		ProductID   string `json:"product_id,omitempty"`
		DisplayName string `json:"display_name,omitempty"`
	}{}

	if product, ok := lib.Lookup(item); ok {
		out.Found = true
		out.ProductID = product.ID
		out.DisplayName = product.Name
	}

	// marshal -> map[string]any to keep outputs uniform
	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
