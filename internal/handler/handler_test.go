package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/phasegridgo/internal/action"
	"github.com/vk/phasegridgo/internal/graph"
	"github.com/vk/phasegridgo/internal/session"
)

func TestRegistry(t *testing.T) {
	t.Run("register and lookup", func(t *testing.T) {
		r := NewRegistry()
		r.Register(graph.TypeEnd, End{})

		h, ok := r.Lookup(graph.TypeEnd)
		require.True(t, ok)
		assert.IsType(t, End{}, h)

		_, ok = r.Lookup("dne")
		assert.False(t, ok)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		r := NewRegistry()
		r.Register(graph.TypeEnd, End{})
		assert.PanicsWithValue(t,
			"handler for node type 'end' already registered",
			func() { r.Register(graph.TypeEnd, End{}) },
		)
	})

	t.Run("default registry covers the builtin graph", func(t *testing.T) {
		r := NewDefaultRegistry(action.NewScript(nil))
		for _, n := range graph.BuiltinQA().Nodes() {
			_, ok := r.Lookup(n.Type)
			assert.True(t, ok, "node type %q must have a handler", n.Type)
		}
		assert.Len(t, r.Types(), 10)
	})
}

func TestActionPhaseExecute(t *testing.T) {
	node := &graph.Node{
		ID:      "build_process_6",
		Type:    graph.TypeBuild,
		Phase:   "Build",
		Actions: []string{"monitor_build_process", "confirm_build"},
	}

	t.Run("all actions succeed", func(t *testing.T) {
		script := action.NewScript(nil)
		sess := session.New("id", "t", session.Owner{})

		out := NewActionPhase(script).Execute(context.Background(), node, sess)

		assert.Equal(t, OutcomeSuccess, out.Type)
		assert.Equal(t, graph.LabelSuccess, out.Label)
		assert.Equal(t, []string{"monitor_build_process", "confirm_build"}, script.Invoked)

		timing := sess.PhaseTimings["Build"]
		require.NotNil(t, timing)
		assert.True(t, timing.Success)

		records, ok := out.Payload["actions_executed"]
		require.True(t, ok)
		assert.Len(t, records, 2)
	})

	t.Run("first failure stops the phase", func(t *testing.T) {
		script := action.NewScript(map[string]action.Result{
			"monitor_build_process": {Success: false, Message: "build stuck at 40%"},
		})
		sess := session.New("id", "t", session.Owner{})

		out := NewActionPhase(script).Execute(context.Background(), node, sess)

		assert.Equal(t, OutcomeError, out.Type)
		assert.Equal(t, graph.LabelFailure, out.Label)
		assert.Contains(t, out.Message, "build stuck at 40%")
		assert.Equal(t, []string{"monitor_build_process"}, script.Invoked, "later actions must not run")

		require.Len(t, sess.Errors, 1)
		assert.Equal(t, "Build", sess.Errors[0].Phase)
		assert.False(t, sess.PhaseTimings["Build"].Success)
	})

	t.Run("node without actions fails", func(t *testing.T) {
		empty := &graph.Node{ID: "hollow", Type: graph.TypeBuild, Phase: "Build"}
		sess := session.New("id", "t", session.Owner{})

		out := NewActionPhase(action.NewScript(nil)).Execute(context.Background(), empty, sess)

		assert.Equal(t, OutcomeError, out.Type)
		assert.Contains(t, out.Message, "defines no actions")
		assert.False(t, sess.PhaseTimings["Build"].Success)
	})
}

func TestEndExecute(t *testing.T) {
	sess := session.New("id", "t", session.Owner{})
	sess.StartPhase("A")
	sess.EndPhase("A", true)
	sess.RecordExecuted("a")

	node := &graph.Node{ID: "end_workflow", Type: graph.TypeEnd, Phase: "Deploy"}
	out := End{}.Execute(context.Background(), node, sess)

	assert.Equal(t, OutcomeSuccess, out.Type)
	assert.Equal(t, 1, out.Payload["total_phases"])
	assert.Equal(t, []string{"a"}, out.Payload["executed_nodes"])
}

func TestOutcomeConstructors(t *testing.T) {
	s := Success("ok", nil)
	assert.Equal(t, OutcomeSuccess, s.Type)
	assert.Equal(t, graph.LabelSuccess, s.Label)

	f := Failure("bad", map[string]any{"k": 1})
	assert.Equal(t, OutcomeError, f.Type)
	assert.Equal(t, graph.LabelFailure, f.Label)
	assert.Equal(t, 1, f.Payload["k"])
}
