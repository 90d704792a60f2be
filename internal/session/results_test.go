package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResults(t *testing.T) {
	t.Run("writes the full document", func(t *testing.T) {
		s := New("qa-session-42", "results", Owner{})
		s.ResultsDir = t.TempDir()
		s.StartPhase("Authentication")
		s.EndPhase("Authentication", true)
		s.RecordExecuted("authentication_1")
		s.SetOutput("authentication_1", map[string]any{"ok": true})
		s.AddError("Authentication", "transient retry", "")
		s.Status = StatusCompleted

		path, err := s.WriteResults()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(s.ResultsDir, "test_results.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		summary, ok := doc["summary"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "qa-session-42", summary["session_id"])
		assert.Equal(t, "completed", summary["status"])
		assert.Equal(t, 100.0, summary["success_rate"])
		assert.Contains(t, doc, "phase_timings")
		assert.Contains(t, doc, "screenshots")
		assert.Contains(t, doc, "errors")
		assert.Contains(t, doc, "outputs")
	})

	t.Run("no results dir writes nothing", func(t *testing.T) {
		s := New("id", "t", Owner{})
		path, err := s.WriteResults()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("unwritable dir returns error", func(t *testing.T) {
		s := New("id", "t", Owner{})
		s.ResultsDir = filepath.Join(t.TempDir(), "does", "not", "exist")
		_, err := s.WriteResults()
		assert.Error(t, err)
	})
}
