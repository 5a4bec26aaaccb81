// Package wal implements a minimal write-ahead log for durable map
// mutations. It supports segmented files, CRC validation, pluggable
// record serialization, and replay iteration.
package wal
