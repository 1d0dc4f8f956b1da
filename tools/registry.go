package tools

import (
	"context"
	"fmt"

	"cartsync/tools/storage"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a new tool registry over the library and unavailable
// state stores.
func NewRegistry(products, unavailable storage.StateStore) (*Registry, error) {
	tools := map[string]Tool{
		"library_lookup":  NewLibraryLookup(products),
		"library_record":  NewLibraryRecord(products),
		"fuzzy_suggest":   NewFuzzySuggest(products),
		"unavailable_get": NewUnavailableGet(unavailable),
	}

	registry := Registry(tools)
	return &registry, nil
}

// GetTools returns all tools in the registry as a slice
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Dispatch resolves the named tool and runs it with the call's input.
func (r Registry) Dispatch(ctx context.Context, call Call) (map[string]any, error) {
	tool, err := r.GetTool(call.Name)
	if err != nil {
		return nil, err
	}
	out, err := tool.Run(ctx, call.Input)
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", call.Name, err)
	}
	return out, nil
}
