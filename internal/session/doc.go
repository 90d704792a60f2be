// Package session holds the mutable state of one acceptance-test run: the
// current phase, per-phase timings, node outputs, the error log, and the
// filesystem locations the run owns.
//
// A session is owned by exactly one engine instance at a time, so its
// methods take no locks; cross-session safety is the store's concern.
package session
