package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"maple/domain/treemap"
)

// Load restores a snapshot into m and returns its sequence number.
// A missing snapshot is not an error; recovery then replays the WAL
// from the beginning.
func Load(dir string, m *treemap.Map[string, []byte]) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return 0, nil // snapshot optional
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(lz4.NewReader(f)).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Entries {
		*m.Upsert(e.Key) = e.Value
	}
	return s.Seq, nil
}
