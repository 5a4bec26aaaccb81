package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maple/domain/treemap"
	"maple/infra/sequence"
	"maple/wal"
)

func newTestService(t *testing.T, walDir string) *KVService {
	t.Helper()
	w, err := wal.Open(wal.Config{Dir: walDir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return NewKVService(treemap.New[string, []byte](), sequence.New(0), w, nil)
}

func TestPutGetDelete(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	seq, err := svc.Put("alpha", []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	v, ok := svc.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	n, seq, err := svc.Delete("alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), seq)

	_, ok = svc.Get("alpha")
	assert.False(t, ok)
}

func TestDeleteMissingDoesNotLogOrSequence(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	n, seq, err := svc.Delete("ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, seq)
	assert.Zero(t, svc.LastSeq(), "no sequence should be burned on a no-op delete")
}

func TestScanAscending(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	for _, k := range []string{"delta", "alpha", "charlie", "bravo"} {
		_, err := svc.Put(k, []byte(k))
		require.NoError(t, err)
	}

	var keys []string
	svc.Scan(func(k string, _ []byte) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, keys)
}

func TestRecoverFromWAL(t *testing.T) {
	walDir, snapDir := t.TempDir(), t.TempDir()

	svc := newTestService(t, walDir)
	for i := 0; i < 50; i++ {
		_, err := svc.Put(fmt.Sprintf("key-%02d", i), []byte("v"))
		require.NoError(t, err)
	}
	n, _, err := svc.Delete("key-07")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, svc.wal.Close())

	m := treemap.New[string, []byte]()
	seqGen := sequence.New(0)
	require.NoError(t, Recover(walDir, snapDir, m, seqGen))

	assert.Equal(t, 49, m.Len())
	assert.False(t, m.Contains("key-07"))
	assert.Equal(t, uint64(51), seqGen.Current())
}

func TestRecoverFromSnapshotAndWALTail(t *testing.T) {
	walDir, snapDir := t.TempDir(), t.TempDir()

	svc := newTestService(t, walDir)
	for i := 0; i < 20; i++ {
		_, err := svc.Put(fmt.Sprintf("key-%02d", i), []byte("old"))
		require.NoError(t, err)
	}
	require.NoError(t, svc.WriteSnapshot(snapDir))

	// Tail mutations after the snapshot.
	_, err := svc.Put("key-00", []byte("new"))
	require.NoError(t, err)
	_, _, err = svc.Delete("key-19")
	require.NoError(t, err)
	require.NoError(t, svc.wal.Close())

	m := treemap.New[string, []byte]()
	seqGen := sequence.New(0)
	require.NoError(t, Recover(walDir, snapDir, m, seqGen))

	assert.Equal(t, 19, m.Len())
	v, ok := m.Get("key-00")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), v)
	assert.False(t, m.Contains("key-19"))
	assert.Equal(t, uint64(22), seqGen.Current())
}

func TestStatsReflectArena(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	for i := 0; i < 100; i++ {
		_, err := svc.Put(fmt.Sprintf("k%03d", i), []byte("v"))
		require.NoError(t, err)
	}

	st := svc.Stats()
	assert.Equal(t, 100, st.Size)
	assert.Equal(t, 100, st.LiveSlots)
	assert.Equal(t, 1, st.Segments)
	assert.Equal(t, treemap.SlotsPerSegment, st.Capacity)
}
