package board

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localboard/internal/state"
)

func ids(s *Surface) []string {
	var out []string
	for _, a := range s.Actions() {
		out = append(out, a.ID())
	}
	return out
}

// deliver applies op on every peer, as the hub relays it.
func deliver(t *testing.T, op state.Op, peers ...*Surface) {
	t.Helper()
	for _, p := range peers {
		require.NoError(t, p.Apply(op))
	}
}

func sharedPair(t *testing.T) (host, peer *Surface) {
	t.Helper()
	size := state.Size{Width: 200, Height: 100}
	host, _ = newSurface(t, state.Portrait, size, WithOwner("host"))
	peer, _ = newSurface(t, state.LandscapeLeft, size, WithOwner("10.0.0.7:50000"))
	return host, peer
}

func TestSharedClearKeepsBoardsInSync(t *testing.T) {
	host, peer := sharedPair(t)
	deliver(t, state.InsertOp(stroke(t, host, gg.Pt(1, 1), gg.Pt(9, 9))), peer)
	deliver(t, state.InsertOp(stroke(t, peer, gg.Pt(5, 5), gg.Pt(50, 50))), host)
	require.Len(t, host.Actions(), 2)
	require.Equal(t, ids(host), ids(peer))

	// a shared clear removes only the clearing board's own strokes
	host.RemoveOwner(host.Owner())
	deliver(t, host.Clock().Stamp(state.ClearOp(host.Owner())), peer)

	require.Len(t, host.Actions(), 1)
	assert.Equal(t, ids(host), ids(peer))
	assert.Equal(t, peer.Owner(), host.Actions()[0].Owner())
}

func TestSharedUndoRedo(t *testing.T) {
	host, peer := sharedPair(t)
	first := stroke(t, host, gg.Pt(1, 1), gg.Pt(9, 9))
	second := stroke(t, host, gg.Pt(20, 20), gg.Pt(30, 40))
	deliver(t, state.InsertOp(first), peer)
	deliver(t, state.InsertOp(second), peer)

	undone := host.Undo()
	require.Equal(t, second, undone)
	deliver(t, host.Clock().Stamp(state.DeleteOp(undone.ID())), peer)
	assert.Equal(t, []string{first.ID()}, ids(peer))

	// the peer draws while the host still has a redo pending
	theirs := stroke(t, peer, gg.Pt(60, 60), gg.Pt(70, 70))
	deliver(t, state.InsertOp(theirs), host)
	require.True(t, host.CanRedo())

	redone := host.Redo()
	require.Equal(t, second, redone)
	deliver(t, state.InsertOp(redone), peer)

	assert.Equal(t, []string{first.ID(), theirs.ID(), second.ID()}, ids(host))
	assert.Equal(t, ids(host), ids(peer))
}

func TestConcurrentStrokesConverge(t *testing.T) {
	host, peer := sharedPair(t)
	// both boards draw before hearing from each other
	mine := state.InsertOp(stroke(t, host, gg.Pt(1, 1), gg.Pt(9, 9)))
	theirs := state.InsertOp(stroke(t, peer, gg.Pt(5, 5), gg.Pt(50, 50)))
	assert.Equal(t, mine.Lamport, theirs.Lamport)

	deliver(t, theirs, host)
	deliver(t, mine, peer)
	assert.Equal(t, ids(host), ids(peer))

	// the next stroke on either board lands on top everywhere
	next := state.InsertOp(stroke(t, peer, gg.Pt(3, 3), gg.Pt(4, 4)))
	deliver(t, next, host)
	assert.Equal(t, ids(host), ids(peer))
	assert.Equal(t, next.Record.ID, ids(host)[2])
}

func TestSharedLoadReplacesOwnActions(t *testing.T) {
	host, peer := sharedPair(t)
	deliver(t, state.InsertOp(stroke(t, host, gg.Pt(1, 1), gg.Pt(9, 9))), peer)
	deliver(t, state.InsertOp(stroke(t, peer, gg.Pt(5, 5), gg.Pt(50, 50))), host)

	loaded, err := state.NewAction(state.Portrait, state.Size{Width: 10, Height: 10}, gg.RGB(0, 1, 0), 2)
	require.NoError(t, err)
	loaded.AppendSegment(gg.Pt(0, 0), gg.Pt(5, 5), gg.Pt(10, 0))
	host.Load([]*state.Action{loaded})

	deliver(t, host.Clock().Stamp(state.ClearOp(host.Owner())), peer)
	deliver(t, state.InsertOp(loaded), peer)

	require.Len(t, host.Actions(), 2)
	assert.Equal(t, ids(host), ids(peer))
	assert.Equal(t, "host", peer.Actions()[1].Owner())
}

func TestApplyObservesRemoteTime(t *testing.T) {
	host, _ := sharedPair(t)
	require.NoError(t, host.Apply(state.Op{Type: state.OpClear, Owner: "nobody", Lamport: 41}))
	a := stroke(t, host, gg.Pt(1, 1), gg.Pt(2, 2))
	lamport, _ := a.Stamp()
	assert.Equal(t, uint64(42), lamport)
}

func TestApplyRejectsBadOps(t *testing.T) {
	host, _ := sharedPair(t)
	assert.ErrorIs(t, host.Apply(state.Op{Type: state.OpInsertAction}), state.ErrMalformedRecord)
	assert.ErrorIs(t, host.Apply(state.Op{Type: state.OpInsertAction, Record: &state.Record{}}), state.ErrMalformedRecord)
	assert.Error(t, host.Apply(state.Op{Type: "rename"}))
	assert.NoError(t, host.Apply(state.DeleteOp("unknown")))
	assert.True(t, host.IsEmpty())
}

func TestLoadSkipsLiveActions(t *testing.T) {
	host, peer := sharedPair(t)
	theirs := stroke(t, peer, gg.Pt(5, 5), gg.Pt(50, 50))
	deliver(t, state.InsertOp(theirs), host)

	copyOfTheirs, err := state.UnmarshalAction(mustMarshal(t, theirs))
	require.NoError(t, err)
	fresh, err := state.NewAction(state.Portrait, state.Size{Width: 10, Height: 10}, gg.RGB(0, 0, 0), 1)
	require.NoError(t, err)

	added := host.Load([]*state.Action{copyOfTheirs, fresh})
	assert.Equal(t, []*state.Action{fresh}, added)
	assert.Equal(t, []string{theirs.ID(), fresh.ID()}, ids(host))
	assert.Equal(t, peer.Owner(), host.Actions()[0].Owner())
}

func mustMarshal(t *testing.T, a *state.Action) []byte {
	t.Helper()
	data, err := state.MarshalAction(a)
	require.NoError(t, err)
	return data
}
