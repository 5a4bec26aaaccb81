// Package follower tails the change topic and applies every event to a
// local replica map. It is the read-side counterpart of the
// broadcaster: the leader publishes, followers converge.
package follower

import (
	"context"
	"log"
	"sync"

	"github.com/segmentio/kafka-go"

	"maple/domain/treemap"
	"maple/wal"
)

type Follower struct {
	reader *kafka.Reader

	mu      sync.Mutex
	replica *treemap.Map[string, []byte]
	lastSeq uint64
}

func New(brokers []string, topic, groupID string) *Follower {
	return &Follower{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		replica: treemap.New[string, []byte](),
	}
}

// Start consumes until ctx is cancelled. It blocks; run it in a
// goroutine.
func (f *Follower) Start(ctx context.Context) {
	log.Println("[follower] started")

	for {
		msg, err := f.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[follower] read failed: %v", err)
			continue
		}
		f.apply(msg)
	}
}

// apply decodes one change event and folds it into the replica. The
// broadcaster delivers at least once; re-applying a put or delete is
// harmless, so duplicates need no dedup pass.
func (f *Follower) apply(msg kafka.Message) {
	rec, err := wal.BinarySerializer{}.Decode(msg.Value)
	if err != nil {
		log.Printf("[follower] bad frame at offset %d: %v", msg.Offset, err)
		return
	}
	key, value, err := wal.DecodeKV(rec.Data)
	if err != nil {
		log.Printf("[follower] bad payload at seq %d: %v", rec.Seq, err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch rec.Type {
	case wal.RecordPut:
		*f.replica.Upsert(string(key)) = append([]byte(nil), value...)
	case wal.RecordDelete:
		f.replica.Remove(string(key))
	}
	f.lastSeq = rec.Seq
}

//
// ──────────────────────────────────────────────────────────
// Replica reads
// ──────────────────────────────────────────────────────────
//

func (f *Follower) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.replica.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (f *Follower) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replica.Len()
}

// LastSeq returns the sequence number of the last applied event.
func (f *Follower) LastSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSeq
}

func (f *Follower) Close() error {
	return f.reader.Close()
}
