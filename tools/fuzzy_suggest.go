package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"cartsync/library"
	"cartsync/match"
	"cartsync/tools/storage"
)

type FuzzySuggest struct{ state storage.StateStore }

func NewFuzzySuggest(state storage.StateStore) *FuzzySuggest { return &FuzzySuggest{state: state} }

func (t *FuzzySuggest) Name() string  { return "fuzzy_suggest" }
func (t *FuzzySuggest) Title() string { return "Suggest Similar Products" }
func (t *FuzzySuggest) Description() string {
	return "Ranks known products by token overlap with an item description. Suggestions only; nothing is recorded."
}

func (t *FuzzySuggest) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"item": {Type: "string"},
		},
		Required: []string{"item"},
	}
}

func (t *FuzzySuggest) OutputSchema() *jsonschema.Schema {
	minScore := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"candidates": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"product_id":   {Type: "string"},
						"display_name": {Type: "string"},
						"score":        {Type: "number", Minimum: &minScore},
					},
					Required: []string{"product_id", "display_name", "score"},
				},
			},
		},
		Required: []string{"candidates"},
	}
}

func (t *FuzzySuggest) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	item, _ := input["item"].(string)

	lib, err := library.Load(ctx, t.state)
	if err != nil {
		return nil, err
	}

	type outCandidate struct {
		ProductID   string  `json:"product_id"`
		DisplayName string  `json:"display_name"`
		Score       float64 `json:"score"`
	}
	out := struct {
		Candidates []outCandidate `json:"candidates"`
	}{}

	// Initialize candidates slice to prevent nil when empty
	out.Candidates = make([]outCandidate, 0)

	for _, c := range match.Suggest(item, lib.Products()) {
		out.Candidates = append(out.Candidates, outCandidate{
			ProductID: c.Product.ID, DisplayName: c.Product.Name, Score: c.Score,
		})
	}

	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
