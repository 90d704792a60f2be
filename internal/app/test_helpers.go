package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vk/phasegridgo/internal/action"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. Results and
// archive directories default to a per-test temp dir.
func SetupAppTest(t *testing.T, entry *Config, exec action.Executor) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	entry.LogLevel = "debug"
	if entry.ResultsDir == "" {
		entry.ResultsDir = filepath.Join(t.TempDir(), "results")
	}
	if entry.ArchiveDir == "" {
		entry.ArchiveDir = filepath.Join(t.TempDir(), "sessions")
	}

	testApp := NewApp(logBuffer, entry, exec)

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("PHASEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
