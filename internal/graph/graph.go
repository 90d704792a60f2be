package graph

import (
	"errors"
	"fmt"
)

// Node type tags. Each tag must resolve to exactly one registered phase
// handler; TypeEnd marks the terminal node the engine stops on.
const (
	TypeAuthentication = "authentication"
	TypeRequirements   = "requirements"
	TypeDiscovery      = "discovery"
	TypeWireframes     = "wireframes"
	TypeDesign         = "design"
	TypeBuild          = "build"
	TypeTest           = "test"
	TypePreview        = "preview"
	TypeFinal          = "final"
	TypeEnd            = "end"
)

// Outcome labels carried on edges and produced by handlers.
const (
	LabelSuccess = "SUCCESS"
	LabelFailure = "FAILURE"
)

// ErrNodeNotFound is returned by NodeByID for an unknown node id.
var ErrNodeNotFound = errors.New("node not found")

// IntegrityError reports a structurally invalid graph: duplicate ids,
// dangling edge endpoints, or a missing/ambiguous start node. It is fatal
// at construction time and never tolerated at runtime.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "graph integrity: " + e.Reason
}

// Node is one workflow phase. Nodes are constructed once when the graph is
// built and immutable afterwards.
type Node struct {
	// ID is unique across the graph.
	ID string `json:"id"`
	// Type selects the phase handler that executes this node.
	Type string `json:"type"`
	// Phase is the human-readable stage label used for reporting.
	Phase string `json:"phase"`
	// Description explains what the phase validates.
	Description string `json:"description"`
	// Reads lists upstream node ids this node logically depends on.
	// Informational lineage only; the engine does not enforce it.
	Reads []string `json:"reads,omitempty"`
	// Actions are the external browser actions invoked, in order, when
	// this node executes.
	Actions []string `json:"actions,omitempty"`
}

// Edge is a directed, optionally labeled transition between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// Label gates the edge on a handler outcome. An empty label matches
	// any outcome.
	Label string `json:"label,omitempty"`
	// Condition is reserved for future expression-gated transitions.
	Condition string `json:"condition,omitempty"`
}

// Graph is an ordered, immutable collection of nodes and edges.
type Graph struct {
	nodes    []*Node
	edges    []Edge
	byID     map[string]*Node
	outgoing map[string][]Edge
}

// New builds a graph from the given nodes and edges and validates it.
// Validation failures return an *IntegrityError.
func New(nodes []*Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes:    nodes,
		edges:    edges,
		byID:     make(map[string]*Node, len(nodes)),
		outgoing: make(map[string][]Edge),
	}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, &IntegrityError{Reason: "node with empty id"}
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, &IntegrityError{Reason: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		g.byID[n.ID] = n
	}
	for _, e := range edges {
		if _, ok := g.byID[e.Source]; !ok {
			return nil, &IntegrityError{Reason: fmt.Sprintf("edge source %q references unknown node", e.Source)}
		}
		if _, ok := g.byID[e.Target]; !ok {
			return nil, &IntegrityError{Reason: fmt.Sprintf("edge target %q references unknown node", e.Target)}
		}
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// validate checks the structural invariants beyond id/endpoint integrity:
// exactly one start node, and every non-end node has a continuation.
func (g *Graph) validate() error {
	if _, err := g.StartNode(); err != nil {
		return err
	}
	for _, n := range g.nodes {
		if n.Type == TypeEnd {
			continue
		}
		if len(g.outgoing[n.ID]) == 0 {
			return &IntegrityError{Reason: fmt.Sprintf("node %q has no outgoing edge and is not an end node", n.ID)}
		}
	}
	return nil
}

// StartNode returns the unique node with no incoming edge. Zero or more
// than one candidate is an *IntegrityError.
func (g *Graph) StartNode() (*Node, error) {
	targets := make(map[string]struct{}, len(g.edges))
	for _, e := range g.edges {
		targets[e.Target] = struct{}{}
	}

	var start *Node
	for _, n := range g.nodes {
		if _, isTarget := targets[n.ID]; isTarget {
			continue
		}
		if start != nil {
			return nil, &IntegrityError{Reason: fmt.Sprintf("multiple start nodes: %q and %q", start.ID, n.ID)}
		}
		start = n
	}
	if start == nil {
		return nil, &IntegrityError{Reason: "no start node: every node has an incoming edge"}
	}
	return start, nil
}

// NextNodes returns the nodes reachable from nodeID via edges whose label
// is empty (unconditional) or equals the given outcome label. The result
// preserves edge insertion order, so traversal is deterministic.
func (g *Graph) NextNodes(nodeID, label string) []*Node {
	var next []*Node
	for _, e := range g.outgoing[nodeID] {
		if e.Label != "" && e.Label != label {
			continue
		}
		if n, ok := g.byID[e.Target]; ok {
			next = append(next, n)
		}
	}
	return next
}

// NodeByID returns the node with the given id, or ErrNodeNotFound.
func (g *Graph) NodeByID(id string) (*Node, error) {
	n, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return n, nil
}

// NodesByPhase returns all nodes tagged with the given phase label, in
// graph order.
func (g *Graph) NodesByPhase(phase string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Phase == phase {
			out = append(out, n)
		}
	}
	return out
}

// Nodes returns the nodes in insertion order. Callers must not mutate them.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Summary describes the graph shape for reporting and debug logs.
type Summary struct {
	TotalNodes int            `json:"total_nodes"`
	TotalEdges int            `json:"total_edges"`
	StartNode  string         `json:"start_node"`
	Phases     map[string]int `json:"phases"`
}

// Summarize returns node/edge/phase counts and the start node id.
func (g *Graph) Summarize() Summary {
	s := Summary{
		TotalNodes: len(g.nodes),
		TotalEdges: len(g.edges),
		Phases:     make(map[string]int),
	}
	for _, n := range g.nodes {
		s.Phases[n.Phase]++
	}
	if start, err := g.StartNode(); err == nil {
		s.StartNode = start.ID
	}
	return s
}
