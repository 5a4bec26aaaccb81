package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"

	"maple/domain/treemap"
)

type Writer struct {
	Dir string
}

// Write dumps the whole map at seq. The dump goes to a temp file first
// and is renamed over the previous one only after a successful sync.
func (w *Writer) Write(seq uint64, m *treemap.Map[string, []byte]) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Entries: make([]Entry, 0, m.Len()),
	}
	m.Ascend(func(k string, v *[]byte) bool {
		s.Entries = append(s.Entries, Entry{Key: k, Value: *v})
		return true
	})

	tmp := filepath.Join(w.Dir, FileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	zw := lz4.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(&s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, FileName))
}
