// Package snapshot writes and restores full dumps of the key-value
// map. Dumps are gob-encoded, LZ4-compressed, and renamed into place
// atomically so a crash mid-write never clobbers the previous dump.
package snapshot
