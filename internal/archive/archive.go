package archive

import (
	"context"
	"time"

	"github.com/vk/phasegridgo/internal/session"
)

// Store persists session snapshots keyed by session id.
//
// Implementations must be safe for concurrent use: independent session
// runs save and load without coordination.
type Store interface {
	// Save persists a snapshot, overwriting any previous one for the same
	// session id. Saves are idempotent.
	Save(ctx context.Context, snap *session.Snapshot) error

	// Load returns the snapshot for the given id, or nil when the archive
	// has no record of it. Absence is not an error.
	Load(ctx context.Context, id string) (*session.Snapshot, error)

	// List returns session summaries sorted most-recent-first, at most
	// limit entries (limit <= 0 means no bound). Malformed records are
	// skipped, not fatal.
	List(ctx context.Context, limit int) ([]session.Summary, error)

	// Cleanup removes snapshots whose last update is older than the
	// threshold and returns how many were removed.
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
}
