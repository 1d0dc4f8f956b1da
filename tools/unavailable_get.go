package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"cartsync/library"
	"cartsync/tools/storage"
)

type UnavailableGet struct{ state storage.StateStore }

func NewUnavailableGet(state storage.StateStore) *UnavailableGet {
	return &UnavailableGet{state: state}
}

func (t *UnavailableGet) Name() string  { return "unavailable_get" }
func (t *UnavailableGet) Title() string { return "Get Unavailable Item History" }
func (t *UnavailableGet) Description() string {
	return "Returns the append-only history of items that failed to add, newest last. Optionally limited to the most recent N."
}

func (t *UnavailableGet) InputSchema() *jsonschema.Schema {
	minLimit := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {Type: "integer", Minimum: &minLimit},
		},
	}
}

func (t *UnavailableGet) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"items": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"item":        {Type: "string"},
						"reason":      {Type: "string"},
						"timestamp":   {Type: "string"},
						"search_term": {Type: "string"},
					},
					Required: []string{"item", "reason", "timestamp"},
				},
			},
		},
		Required: []string{"items"},
	}
}

func (t *UnavailableGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	limit := 0
	if v, ok := input["limit"].(float64); ok {
		limit = int(v)
	}

	log, err := library.LoadUnavailable(ctx, t.state)
	if err != nil {
		return nil, err
	}

	records := log.Records()
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	out := struct {
		Items []library.UnavailableRecord `json:"items"`
	}{Items: make([]library.UnavailableRecord, 0, len(records))}
	out.Items = append(out.Items, records...)

	b, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m, nil
}
