package service

import (
	"log"

	"maple/domain/treemap"
	"maple/infra/sequence"
	"maple/snapshot"
	"maple/wal"
)

/*
Recover rebuilds in-memory state: snapshot first, then the WAL tail.

IMPORTANT:
- This MUST run before accepting traffic
- The outbox is NOT replayed into the map; the broadcaster drains it
*/
func Recover(
	walDir string,
	snapDir string,
	m *treemap.Map[string, []byte],
	seqGen *sequence.Sequencer,
) error {
	snapSeq, err := snapshot.Load(snapDir, m)
	if err != nil {
		return err
	}

	lastSeq, err := wal.Replay(walDir, nil, func(rec *wal.Record) error {
		if rec.Seq <= snapSeq {
			// Already covered by the snapshot.
			return nil
		}
		key, value, err := wal.DecodeKV(rec.Data)
		if err != nil {
			return err
		}
		switch rec.Type {
		case wal.RecordPut:
			*m.Upsert(string(key)) = append([]byte(nil), value...)
		case wal.RecordDelete:
			m.Remove(string(key))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if lastSeq < snapSeq {
		lastSeq = snapSeq
	}

	// Resume sequencing AFTER recovery
	seqGen.Reset(lastSeq)

	log.Printf("[recovery] completed (last seq = %d)", lastSeq)
	return nil
}
