// Package archive defines the durable session archive contract: persistent
// storage of session snapshots that survives process restarts.
//
// Backends live in subpackages (filearchive, redisarchive) and must follow
// the same lenient read discipline: a malformed record is skipped and
// logged, never surfaced as an error to the caller.
package archive
