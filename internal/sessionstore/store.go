package sessionstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/phasegridgo/internal/archive"
	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/fsutil"
	"github.com/vk/phasegridgo/internal/session"
)

// Store maps session ids to live sessions. All exported methods are safe
// for concurrent use from independent session runs.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	arch        archive.Store
	resultsBase string
}

// New returns a store that provisions session directories under
// resultsBase and persists snapshots to the given archive.
func New(arch archive.Store, resultsBase string) (*Store, error) {
	if err := fsutil.EnsureDir(resultsBase); err != nil {
		return nil, fmt.Errorf("failed to create results base directory %s: %w", resultsBase, err)
	}
	return &Store{
		sessions:    make(map[string]*session.Session),
		arch:        arch,
		resultsBase: resultsBase,
	}, nil
}

// generateID allocates a collision-resistant session id. The timestamp
// prefix keeps archive files roughly sortable by creation time.
func generateID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("qa-session-%d-%s", time.Now().Unix(), hex[:8])
}

// Create allocates a session, provisions its directories, and inserts it
// into the live map. An empty id gets a generated one; an explicit id that
// is already live is rejected rather than silently reused.
func (st *Store) Create(ctx context.Context, testName, id string, owner session.Owner) (*session.Session, error) {
	logger := ctxlog.FromContext(ctx)

	if testName == "" {
		testName = fmt.Sprintf("qa_test_%s", time.Now().Format("20060102_150405"))
	}

	st.mu.Lock()
	if id == "" {
		id = generateID()
		for _, taken := st.sessions[id]; taken; _, taken = st.sessions[id] {
			id = generateID()
		}
	} else if _, taken := st.sessions[id]; taken {
		st.mu.Unlock()
		return nil, fmt.Errorf("session id %q already exists", id)
	}

	sess := session.New(id, testName, owner)
	st.sessions[id] = sess
	st.mu.Unlock()

	// Directory provisioning happens outside the lock; only the map needs
	// mutual exclusion.
	if err := st.provisionDirs(sess); err != nil {
		st.mu.Lock()
		delete(st.sessions, id)
		st.mu.Unlock()
		return nil, err
	}

	logger.Info("Created session.", "sessionID", id, "testName", testName)
	return sess, nil
}

// provisionDirs creates the three directories a session owns: results,
// screenshots, and logs. The core never deletes them.
func (st *Store) provisionDirs(sess *session.Session) error {
	stamp := sess.StartTime.Format("20060102_150405")
	resultsDir := filepath.Join(st.resultsBase, fmt.Sprintf("%s_%s", sess.TestName, stamp))
	screenshotsDir := filepath.Join(resultsDir, "screenshots")
	logsDir := filepath.Join(resultsDir, "logs")

	for _, dir := range []string{resultsDir, screenshotsDir, logsDir} {
		if err := fsutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to provision session directory %s: %w", dir, err)
		}
	}

	sess.ResultsDir = resultsDir
	sess.ScreenshotsDir = screenshotsDir
	sess.LogsDir = logsDir
	return nil
}

// Get returns the live session for id. On a live-map miss it tries the
// archive; on an archive miss it creates a fresh session with that id.
// Unknown ids are deliberately not an error, only a warning.
func (st *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	logger := ctxlog.FromContext(ctx)

	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if st.arch != nil {
		snap, err := st.arch.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to consult archive for session %s: %w", id, err)
		}
		if snap != nil {
			restored := session.FromSnapshot(snap)

			st.mu.Lock()
			// Another goroutine may have raced the restore; keep the first.
			if existing, ok := st.sessions[id]; ok {
				st.mu.Unlock()
				return existing, nil
			}
			st.sessions[id] = restored
			st.mu.Unlock()

			logger.Info("Restored session from archive.", "sessionID", id)
			return restored, nil
		}
	}

	logger.Warn("Session not found, creating a fresh one.", "sessionID", id)
	return st.Create(ctx, "", id, session.Owner{})
}

// UpdateStatus sets the session's status. Terminal statuses also stamp
// the end time.
func (st *Store) UpdateStatus(ctx context.Context, id string, status session.Status) error {
	sess, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Status = status
	if status.Terminal() {
		now := time.Now()
		sess.EndTime = &now
	}
	ctxlog.FromContext(ctx).Info("Updated session status.", "sessionID", id, "status", string(status))
	return nil
}

// Save forces an archive write of the session's current state.
func (st *Store) Save(ctx context.Context, id string) error {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return fmt.Errorf("session %q is not live, nothing to save", id)
	}
	if st.arch == nil {
		return nil
	}
	if err := st.arch.Save(ctx, sess.Snapshot()); err != nil {
		return fmt.Errorf("failed to archive session %s: %w", id, err)
	}
	return nil
}

// Evict removes the session from the live map, persisting it first when
// requested. Evicting an unknown id is a logged no-op.
func (st *Store) Evict(ctx context.Context, id string, persist bool) error {
	logger := ctxlog.FromContext(ctx)

	st.mu.RLock()
	_, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		logger.Warn("Session not live, nothing to evict.", "sessionID", id)
		return nil
	}

	if persist {
		if err := st.Save(ctx, id); err != nil {
			return err
		}
	}

	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()

	logger.Info("Evicted session.", "sessionID", id, "persisted", persist)
	return nil
}

// EvictOldest trims the live map down to maxActive sessions, evicting the
// ones with the oldest start times first. Evicted sessions are always
// persisted. It returns how many were evicted.
func (st *Store) EvictOldest(ctx context.Context, maxActive int) (int, error) {
	st.mu.RLock()
	if len(st.sessions) <= maxActive {
		st.mu.RUnlock()
		return 0, nil
	}
	type candidate struct {
		id    string
		start time.Time
	}
	candidates := make([]candidate, 0, len(st.sessions))
	for id, sess := range st.sessions {
		candidates = append(candidates, candidate{id: id, start: sess.StartTime})
	}
	st.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].start.Before(candidates[j].start)
	})

	toEvict := len(candidates) - maxActive
	evicted := 0
	for _, c := range candidates[:toEvict] {
		if err := st.Evict(ctx, c.id, true); err != nil {
			return evicted, err
		}
		evicted++
	}

	ctxlog.FromContext(ctx).Info("Evicted oldest sessions.", "count", evicted, "maxActive", maxActive)
	return evicted, nil
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// ActiveIDs returns the ids of all live sessions.
func (st *Store) ActiveIDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	return ids
}

// ListAll merges live sessions with archived ones into summaries sorted
// most-recent-first, capped at limit (limit <= 0 means no bound).
func (st *Store) ListAll(ctx context.Context, limit int) ([]session.Summary, error) {
	st.mu.RLock()
	summaries := make([]session.Summary, 0, len(st.sessions))
	live := make(map[string]struct{}, len(st.sessions))
	for id, sess := range st.sessions {
		live[id] = struct{}{}
		summaries = append(summaries, sess.Snapshot().Summarize())
	}
	st.mu.RUnlock()

	if st.arch != nil {
		archived, err := st.arch.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		for _, sum := range archived {
			if _, isLive := live[sum.ID]; isLive {
				continue
			}
			summaries = append(summaries, sum)
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
