package follower

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maple/domain/treemap"
	"maple/wal"
)

func encode(t *testing.T, typ wal.RecordType, seq uint64, key, value string) []byte {
	t.Helper()
	rec := wal.NewRecord(typ, seq, wal.EncodeKV([]byte(key), []byte(value)))
	enc, err := wal.BinarySerializer{}.Encode(rec)
	require.NoError(t, err)
	return enc
}

func TestApplyConvergesReplica(t *testing.T) {
	f := &Follower{replica: treemap.New[string, []byte]()}

	f.apply(kafka.Message{Value: encode(t, wal.RecordPut, 1, "alpha", "1")})
	f.apply(kafka.Message{Value: encode(t, wal.RecordPut, 2, "bravo", "2")})
	f.apply(kafka.Message{Value: encode(t, wal.RecordPut, 3, "alpha", "1b")})
	f.apply(kafka.Message{Value: encode(t, wal.RecordDelete, 4, "bravo", "")})

	assert.Equal(t, 1, f.Len())
	v, ok := f.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []byte("1b"), v)
	_, ok = f.Get("bravo")
	assert.False(t, ok)
	assert.Equal(t, uint64(4), f.LastSeq())
}

func TestApplyDuplicatesAreIdempotent(t *testing.T) {
	f := &Follower{replica: treemap.New[string, []byte]()}

	msg := kafka.Message{Value: encode(t, wal.RecordPut, 7, "key", "v")}
	f.apply(msg)
	f.apply(msg) // at-least-once redelivery
	assert.Equal(t, 1, f.Len())

	del := kafka.Message{Value: encode(t, wal.RecordDelete, 8, "key", "")}
	f.apply(del)
	f.apply(del)
	assert.Equal(t, 0, f.Len())
}

func TestApplyRejectsGarbage(t *testing.T) {
	f := &Follower{replica: treemap.New[string, []byte]()}

	f.apply(kafka.Message{Value: []byte("not a frame")})
	assert.Equal(t, 0, f.Len())
	assert.Zero(t, f.LastSeq())
}
