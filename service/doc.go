// Package service is the ONLY write entry point into the system.
//
// All coordination between:
// - domain (treemap)
// - infra (wal, outbox, sequence)
// - snapshot
// happens here. The map itself is single-threaded; the service owns
// the lock that serializes every mutation and consistent read.
package service
