package snapshot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maple/domain/treemap"
)

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	src := treemap.New[string, []byte]()
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("key-%03d", i)
		*src.Upsert(k) = []byte(fmt.Sprintf("value-%d", i))
	}

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(42, src))

	dst := treemap.New[string, []byte]()
	seq, err := Load(dir, dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)
	assert.Equal(t, 200, dst.Len())

	v, ok := dst.Get("key-123")
	require.True(t, ok)
	assert.Equal(t, []byte("value-123"), v)
}

func TestLoadMissingSnapshotIsClean(t *testing.T) {
	m := treemap.New[string, []byte]()
	seq, err := Load(t.TempDir(), m)
	require.NoError(t, err)
	assert.Zero(t, seq)
	assert.True(t, m.Empty())
}

func TestWriteReplacesPreviousDump(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	m := treemap.New[string, []byte]()
	*m.Upsert("a") = []byte("1")
	require.NoError(t, w.Write(1, m))

	*m.Upsert("b") = []byte("2")
	require.NoError(t, w.Write(2, m))

	dst := treemap.New[string, []byte]()
	seq, err := Load(dir, dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, 2, dst.Len())
}
