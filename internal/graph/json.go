package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileModel is the on-disk representation of a graph: plain nodes and
// edges arrays, suitable for inspection, debugging, and reload.
type fileModel struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Save writes the full node and edge set to path as indented JSON. The
// output reproduces the graph exactly and can be loaded back with Load.
func (g *Graph) Save(path string) error {
	data, err := json.MarshalIndent(fileModel{Nodes: g.nodes, Edges: g.edges}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}

// Load reads a graph JSON file and validates it against the same
// invariants as New. A structurally broken file is a configuration error.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	var fm fileModel
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse graph file %s: %w", path, err)
	}
	g, err := New(fm.Nodes, fm.Edges)
	if err != nil {
		return nil, fmt.Errorf("graph file %s: %w", path, err)
	}
	return g, nil
}
