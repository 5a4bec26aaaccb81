package service

import (
	"log"
	"sync"

	"maple/domain/treemap"
	"maple/infra/sequence"
	"maple/outbox"
	"maple/wal"
)

type KVService struct {
	mu  sync.Mutex
	m   *treemap.Map[string, []byte]
	seq *sequence.Sequencer
	wal *wal.WAL
	out *outbox.Outbox
}

// NewKVService wires all dependencies.
// No globals. No magic. The outbox may be nil for WAL-only setups.
func NewKVService(
	m *treemap.Map[string, []byte],
	seqGen *sequence.Sequencer,
	w *wal.WAL,
	out *outbox.Outbox,
) *KVService {
	return &KVService{
		m:   m,
		seq: seqGen,
		wal: w,
		out: out,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Put stores value under key and returns the assigned sequence number.
// The WAL entry lands before the map mutation: a crash in between
// replays the put, never loses it.
func (s *KVService) Put(key string, value []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq.Next()
	rec := wal.NewRecord(wal.RecordPut, seq, wal.EncodeKV([]byte(key), value))
	if err := s.wal.Append(rec); err != nil {
		return 0, err
	}

	*s.m.Upsert(key) = append([]byte(nil), value...)

	s.publish(rec)
	return seq, nil
}

// Delete removes key. It returns how many entries were removed (0 or
// 1) and, when something was removed, the sequence number of the
// deletion.
func (s *KVService) Delete(key string) (int, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.m.Contains(key) {
		return 0, 0, nil
	}

	seq := s.seq.Next()
	rec := wal.NewRecord(wal.RecordDelete, seq, wal.EncodeKV([]byte(key), nil))
	if err := s.wal.Append(rec); err != nil {
		return 0, 0, err
	}

	s.m.Remove(key)

	s.publish(rec)
	return 1, seq, nil
}

// publish hands the change event to the outbox. The outbox payload is
// the full framed record, so followers can tell a delete from a put.
// Failures are logged, not returned: the WAL already holds the truth.
func (s *KVService) publish(rec *wal.Record) {
	if s.out == nil {
		return
	}
	enc, err := wal.BinarySerializer{}.Encode(rec)
	if err == nil {
		err = s.out.Append(rec.Seq, enc)
	}
	if err != nil {
		log.Printf("[service] outbox append failed at seq %d: %v", rec.Seq, err)
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Get returns a copy of the value under key.
func (s *KVService) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Scan walks the map in ascending key order. Returning false from fn
// stops the walk. The whole walk holds the service lock; keep fn cheap.
func (s *KVService) Scan(fn func(key string, value []byte) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m.Ascend(func(k string, v *[]byte) bool {
		return fn(k, *v)
	})
}

// Stats reports map size and arena occupancy.
type Stats struct {
	Size      int
	Segments  int
	Capacity  int
	LiveSlots int
}

func (s *KVService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.m.Arena()
	return Stats{
		Size:      s.m.Len(),
		Segments:  a.Segments(),
		Capacity:  a.Cap(),
		LiveSlots: a.Used(),
	}
}

// LastSeq returns the last issued sequence number.
func (s *KVService) LastSeq() uint64 {
	return s.seq.Current()
}
