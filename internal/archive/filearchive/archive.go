// Package filearchive implements the durable session archive on the local
// filesystem: one JSON document per session under a single archive
// directory.
package filearchive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/fsutil"
	"github.com/vk/phasegridgo/internal/session"
)

// Store writes each snapshot to <dir>/<session id>.json. Writes go through
// a temp file and rename so a crash mid-save never leaves a truncated
// record behind.
type Store struct {
	dir string

	// mu serializes writes per store instance; reads are lock-free since
	// rename is atomic on the same filesystem.
	mu sync.Mutex
}

// New creates the archive directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the archive directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save persists the snapshot, overwriting any previous record.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for session %s: %w", snap.ID, err)
	}

	tmp := s.path(snap.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path(snap.ID)); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Archived session snapshot.", "sessionID", snap.ID, "path", s.path(snap.ID))
	return nil
}

// Load returns the snapshot for id, or nil when no record exists. A
// malformed record is logged and treated as absent.
func (s *Store) Load(ctx context.Context, id string) (*session.Snapshot, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for session %s: %w", id, err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		ctxlog.FromContext(ctx).Warn("Skipping malformed archive record.", "sessionID", id, "error", err)
		return nil, nil
	}
	return &snap, nil
}

// List returns summaries of all archived sessions, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(s.dir, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to scan archive directory: %w", err)
	}

	summaries := make([]session.Summary, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable archive record.", "path", path, "error", err)
			continue
		}
		var snap session.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			logger.Warn("Skipping malformed archive record.", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, snap.Summarize())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Cleanup removes records whose last update is older than the threshold.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	cutoff := time.Now().Add(-olderThan)

	files, err := fsutil.FindFilesByExtension(s.dir, ".json")
	if err != nil {
		return 0, fmt.Errorf("failed to scan archive directory: %w", err)
	}

	removed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var snap session.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// Unparseable records are stale by definition; remove them too.
			logger.Warn("Removing malformed archive record.", "path", path, "error", err)
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}
		if snap.UpdatedAt.Before(cutoff) {
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove old archive record.", "path", path, "error", err)
				continue
			}
			removed++
		}
	}

	logger.Info("Archive cleanup finished.", "removed", removed, "olderThan", olderThan.String())
	return removed, nil
}
