package snapshot

import "time"

const FileName = "snapshot.bin"

type Entry struct {
	Key   string
	Value []byte
}

// Snapshot is a full dump of the map at a sequence number. Entries are
// stored in ascending key order, exactly as the walk produced them.
type Snapshot struct {
	Seq     uint64
	Created time.Time
	Entries []Entry
}
