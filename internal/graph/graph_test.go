package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// linearNodes builds a minimal three-node chain A -> B -> end.
func linearNodes() ([]*Node, []Edge) {
	nodes := []*Node{
		{ID: "a", Type: TypeAuthentication, Phase: "Authentication", Actions: []string{"login"}},
		{ID: "b", Type: TypeRequirements, Phase: "Discovery", Actions: []string{"answer"}},
		{ID: "end", Type: TypeEnd, Phase: "Deploy"},
	}
	edges := []Edge{
		{Source: "a", Target: "b", Label: LabelSuccess},
		{Source: "b", Target: "end", Label: LabelSuccess},
	}
	return nodes, edges
}

func TestNew(t *testing.T) {
	t.Run("valid graph", func(t *testing.T) {
		nodes, edges := linearNodes()
		g, err := New(nodes, edges)
		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.Len(t, g.Edges(), 2)
	})

	t.Run("empty node id", func(t *testing.T) {
		_, err := New([]*Node{{ID: ""}}, nil)
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "empty id")
	})

	t.Run("duplicate node id", func(t *testing.T) {
		_, err := New([]*Node{
			{ID: "a", Type: TypeEnd},
			{ID: "a", Type: TypeEnd},
		}, nil)
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "duplicate node id")
	})

	t.Run("dangling edge source", func(t *testing.T) {
		_, err := New([]*Node{{ID: "a", Type: TypeEnd}}, []Edge{{Source: "dne", Target: "a"}})
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "unknown node")
	})

	t.Run("dangling edge target", func(t *testing.T) {
		_, err := New([]*Node{{ID: "a", Type: TypeEnd}}, []Edge{{Source: "a", Target: "dne"}})
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "unknown node")
	})

	t.Run("non-end node without continuation", func(t *testing.T) {
		_, err := New([]*Node{
			{ID: "a", Type: TypeAuthentication},
			{ID: "b", Type: TypeEnd},
		}, []Edge{{Source: "b", Target: "a"}})
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "no outgoing edge")
	})
}

func TestStartNode(t *testing.T) {
	t.Run("unique start", func(t *testing.T) {
		nodes, edges := linearNodes()
		g, err := New(nodes, edges)
		require.NoError(t, err)

		start, err := g.StartNode()
		require.NoError(t, err)
		assert.Equal(t, "a", start.ID)
	})

	t.Run("multiple starts rejected", func(t *testing.T) {
		_, err := New([]*Node{
			{ID: "a", Type: TypeAuthentication},
			{ID: "b", Type: TypeRequirements},
			{ID: "end", Type: TypeEnd},
		}, []Edge{
			{Source: "a", Target: "end"},
			{Source: "b", Target: "end"},
		})
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "multiple start nodes")
	})

	t.Run("cycle leaves no start", func(t *testing.T) {
		_, err := New([]*Node{
			{ID: "a", Type: TypeAuthentication},
			{ID: "b", Type: TypeRequirements},
		}, []Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		})
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Contains(t, integrity.Reason, "no start node")
	})
}

func TestNextNodes(t *testing.T) {
	nodes := []*Node{
		{ID: "a", Type: TypeAuthentication, Actions: []string{"x"}},
		{ID: "ok", Type: TypeRequirements, Actions: []string{"x"}},
		{ID: "retry", Type: TypeRequirements, Actions: []string{"x"}},
		{ID: "always", Type: TypeRequirements, Actions: []string{"x"}},
		{ID: "end", Type: TypeEnd},
	}
	edges := []Edge{
		{Source: "a", Target: "ok", Label: LabelSuccess},
		{Source: "a", Target: "retry", Label: LabelFailure},
		{Source: "a", Target: "always"},
		{Source: "ok", Target: "end", Label: LabelSuccess},
		{Source: "retry", Target: "end", Label: LabelSuccess},
		{Source: "always", Target: "end", Label: LabelSuccess},
	}
	g, err := New(nodes, edges)
	require.NoError(t, err)

	t.Run("label filters and unlabeled always matches", func(t *testing.T) {
		next := g.NextNodes("a", LabelSuccess)
		require.Len(t, next, 2)
		assert.Equal(t, "ok", next[0].ID)
		assert.Equal(t, "always", next[1].ID)
	})

	t.Run("failure label", func(t *testing.T) {
		next := g.NextNodes("a", LabelFailure)
		require.Len(t, next, 2)
		assert.Equal(t, "retry", next[0].ID)
		assert.Equal(t, "always", next[1].ID)
	})

	t.Run("unknown node yields nothing", func(t *testing.T) {
		assert.Empty(t, g.NextNodes("dne", LabelSuccess))
	})
}

func TestNodeByID(t *testing.T) {
	nodes, edges := linearNodes()
	g, err := New(nodes, edges)
	require.NoError(t, err)

	n, err := g.NodeByID("b")
	require.NoError(t, err)
	assert.Equal(t, "b", n.ID)

	_, err = g.NodeByID("dne")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestBuiltinQA(t *testing.T) {
	g := BuiltinQA()
	assert.Equal(t, 10, g.Len())
	assert.Len(t, g.Edges(), 9)

	start, err := g.StartNode()
	require.NoError(t, err)
	assert.Equal(t, "authentication_1", start.ID)

	// Follow SUCCESS edges all the way; the chain must terminate on the
	// end node and a FAILURE outcome must have no continuation anywhere.
	current := start
	visited := []string{current.ID}
	for current.Type != TypeEnd {
		assert.Empty(t, g.NextNodes(current.ID, LabelFailure), "node %s should halt on failure", current.ID)
		next := g.NextNodes(current.ID, LabelSuccess)
		require.Len(t, next, 1, "node %s should have exactly one success continuation", current.ID)
		current = next[0]
		visited = append(visited, current.ID)
	}
	assert.Equal(t, "end_workflow", current.ID)
	assert.Len(t, visited, 10)
}

func TestSummarize(t *testing.T) {
	g := BuiltinQA()
	s := g.Summarize()
	assert.Equal(t, 10, s.TotalNodes)
	assert.Equal(t, 9, s.TotalEdges)
	assert.Equal(t, "authentication_1", s.StartNode)
	assert.Equal(t, 2, s.Phases["Discovery"])
	assert.Equal(t, 2, s.Phases["Deploy"])
}

func TestSaveLoad(t *testing.T) {
	t.Run("round trip preserves structure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.json")
		orig := BuiltinQA()
		require.NoError(t, orig.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, orig.Len(), loaded.Len())
		assert.Equal(t, orig.Edges(), loaded.Edges())

		start, err := loaded.StartNode()
		require.NoError(t, err)
		assert.Equal(t, "authentication_1", start.ID)

		n, err := loaded.NodeByID("build_process_6")
		require.NoError(t, err)
		assert.Equal(t, []string{"monitor_build_process"}, n.Actions)
	})

	t.Run("load validates structure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		writeJSON(t, path, `{"nodes":[{"id":"a","type":"end"},{"id":"a","type":"end"}],"edges":[]}`)

		_, err := Load(path)
		var integrity *IntegrityError
		require.ErrorAs(t, err, &integrity)
	})

	t.Run("load missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
