// Package sessionstore provides the concurrency-safe keyed map of live
// sessions, backed by the durable archive for restoration across process
// restarts.
//
// The store's mutex is the only cross-session synchronization in the
// system: each live session is owned by exactly one engine run, so
// per-session field mutation needs no locking of its own.
package sessionstore
