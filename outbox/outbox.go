package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Event --------------------

// Event is one durable change notification awaiting publication.
type Event struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary encoding: [state:1][retries:4][lastAttempt:8][payload]
func encodeEvent(e Event) []byte {
	buf := make([]byte, 1+4+8+len(e.Payload))
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	copy(buf[13:], e.Payload)
	return buf
}

func decodeEvent(seq uint64, b []byte) (Event, error) {
	if len(b) < 13 {
		return Event{}, errors.New("outbox: invalid event record length")
	}
	return Event{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

// -------------------- Outbox --------------------

// Outbox is a pebble-backed queue of change events with an
// at-least-once NEW -> SENT -> ACKED lifecycle. It survives restarts;
// the broadcaster drains it in the background.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// Append enqueues a new event (called by the KV service on every
// applied mutation).
func (o *Outbox) Append(seq uint64, payload []byte) error {
	e := Event{
		Seq:     seq,
		State:   StateNew,
		Payload: payload,
	}
	return o.db.Set(keyFor(seq), encodeEvent(e), pebble.Sync)
}

// MarkSent flips an event to SENT before the publish attempt, so a
// crash between publish and ack replays it rather than losing it.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.setState(seq, StateSent)
}

// MarkAcked flips an event to ACKED after the broker confirmed it.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.setState(seq, StateAcked)
}

// Get returns the current event for a sequence number.
func (o *Outbox) Get(seq uint64) (Event, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Event{}, err
	}
	defer closer.Close()
	return decodeEvent(seq, val)
}

// ScanPending iterates all events not yet ACKED, in sequence order.
func (o *Outbox) ScanPending(fn func(*Event) error) error {
	return o.scan(func(e *Event) error {
		if e.State == StateAcked {
			return nil
		}
		return fn(e)
	})
}

// PruneAcked deletes ACKED events and returns how many were removed.
func (o *Outbox) PruneAcked() (int, error) {
	var acked []uint64
	err := o.scan(func(e *Event) error {
		if e.State == StateAcked {
			acked = append(acked, e.Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, seq := range acked {
		if err := o.db.Delete(keyFor(seq), pebble.Sync); err != nil {
			return 0, err
		}
	}
	return len(acked), nil
}

// -------------------- Helpers --------------------

func (o *Outbox) setState(seq uint64, s State) error {
	e, err := o.Get(seq)
	if err != nil {
		return err
	}
	e.State = s
	e.Retries++
	e.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(seq), encodeEvent(e), pebble.Sync)
}

func (o *Outbox) scan(fn func(*Event) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("event/"),
		UpperBound: []byte("event/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		e, err := decodeEvent(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("event/"))), "%d", &seq)
	return seq, err
}
