package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxLifecycle(t *testing.T) {
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.Append(1, []byte("put:a")))
	require.NoError(t, o.Append(2, []byte("put:b")))
	require.NoError(t, o.Append(3, []byte("del:a")))

	var pending []uint64
	require.NoError(t, o.ScanPending(func(e *Event) error {
		pending = append(pending, e.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, pending, "pending events in sequence order")

	require.NoError(t, o.MarkSent(2))
	require.NoError(t, o.MarkAcked(2))

	pending = nil
	require.NoError(t, o.ScanPending(func(e *Event) error {
		pending = append(pending, e.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 3}, pending, "acked events are skipped")

	e, err := o.Get(2)
	require.NoError(t, err)
	assert.Equal(t, StateAcked, e.State)
	assert.Equal(t, []byte("put:b"), e.Payload)

	n, err := o.PruneAcked()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = o.Get(2)
	assert.Error(t, err, "pruned event should be gone")
}

func TestOutboxSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	o, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, o.Append(7, []byte("put:x")))
	require.NoError(t, o.Close())

	o2, err := Open(dir)
	require.NoError(t, err)
	defer o2.Close()

	e, err := o2.Get(7)
	require.NoError(t, err)
	assert.Equal(t, StateNew, e.State)
	assert.Equal(t, []byte("put:x"), e.Payload)
}
