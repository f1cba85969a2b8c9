package state

import (
	"fmt"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, h *History, n int) []*Action {
	t.Helper()
	out := make([]*Action, n)
	for i := range out {
		out[i] = newTestAction(t, Portrait, Size{Width: 100, Height: 100})
		h.Append(out[i])
	}
	return out
}

func TestHistoryUndoRedoRestoresOrder(t *testing.T) {
	const n = 5
	for k := 0; k <= n; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			h := NewHistory()
			want := fill(t, h, n)

			for i := 0; i < k; i++ {
				require.True(t, h.Undo())
			}
			assert.Equal(t, want[:n-k], h.Actions())

			for i := 0; i < k; i++ {
				require.True(t, h.Redo())
			}
			assert.Equal(t, want, h.Actions())
			assert.False(t, h.CanRedo())
		})
	}
}

func TestHistoryEmptyOpsAreNoops(t *testing.T) {
	h := NewHistory()
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	assert.True(t, h.IsEmpty())
	assert.Empty(t, h.Actions())

	fill(t, h, 1)
	assert.False(t, h.Redo(), "nothing undone yet")
	assert.Equal(t, 1, h.Len())
}

func TestHistoryAppendAfterUndoDropsRedo(t *testing.T) {
	h := NewHistory()
	actions := fill(t, h, 3)

	require.True(t, h.Undo())
	require.True(t, h.Undo())
	assert.True(t, h.CanRedo())

	extra := newTestAction(t, Portrait, Size{Width: 10, Height: 10})
	h.Append(extra)
	assert.False(t, h.Redo())
	assert.Equal(t, []*Action{actions[0], extra}, h.Actions())
}

func TestHistoryDiscardRedo(t *testing.T) {
	h := NewHistory()
	fill(t, h, 2)
	h.Undo()
	h.DiscardRedo()
	assert.False(t, h.Redo())
	assert.Equal(t, 1, h.Len())
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	fill(t, h, 4)
	h.Undo()

	h.Clear()
	assert.True(t, h.IsEmpty())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.False(t, h.Redo())
}

func TestHistoryRemoveOwner(t *testing.T) {
	h := NewHistory()
	actions := fill(t, h, 4)
	actions[0].SetOwner("alice")
	actions[1].SetOwner("bob")
	actions[2].SetOwner("alice")
	actions[3].SetOwner("bob")
	h.Undo() // bob's last stroke goes to the redo stack

	assert.Equal(t, 2, h.RemoveOwner("bob"))
	assert.Equal(t, []*Action{actions[0], actions[2]}, h.Actions())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 0, h.RemoveOwner("carol"))
}

func TestHistoryContains(t *testing.T) {
	h := NewHistory()
	actions := fill(t, h, 2)
	h.Undo()

	assert.True(t, h.Contains(actions[0].ID()))
	assert.True(t, h.Contains(actions[1].ID()), "undone actions are still known")
	assert.False(t, h.Contains("missing"))
}

func TestHistoryKeepsZeroSegmentActions(t *testing.T) {
	h := NewHistory()
	a, err := NewAction(Portrait, Size{Width: 1, Height: 1}, gg.RGB(0, 0, 0), 1)
	require.NoError(t, err)
	h.Append(a)
	assert.Equal(t, 0, a.Len())

	require.True(t, h.Undo())
	assert.True(t, h.IsEmpty())
}

func stamped(t *testing.T, lamport uint64, site string) *Action {
	t.Helper()
	a := newTestAction(t, Portrait, Size{Width: 10, Height: 10})
	a.SetStamp(lamport, site)
	return a
}

func TestHistoryInsertConverges(t *testing.T) {
	a := stamped(t, 1, "site-a")
	b := stamped(t, 2, "site-a")
	c := stamped(t, 2, "site-b")
	d := stamped(t, 5, "site-a")
	want := []*Action{a, b, c, d}

	arrivals := [][]*Action{
		{a, b, c, d},
		{d, c, b, a},
		{c, a, d, b},
		{b, d, a, c},
	}
	for i, order := range arrivals {
		h := NewHistory()
		for _, x := range order {
			h.Insert(x)
		}
		assert.Equal(t, want, h.Actions(), "arrival order %d", i)
	}
}

func TestHistoryInsertKeepsRedo(t *testing.T) {
	h := NewHistory()
	local := stamped(t, 3, "me")
	h.Append(local)
	require.True(t, h.Undo())

	h.Insert(stamped(t, 1, "peer"))
	assert.True(t, h.CanRedo())
	assert.Equal(t, local, h.NextRedo())

	// a late remote action with an older stamp goes under the local one
	require.True(t, h.Redo())
	older := stamped(t, 2, "peer")
	h.Insert(older)
	assert.Equal(t, local, h.Last())
	assert.Equal(t, older, h.Actions()[1])
}

func TestHistoryRemove(t *testing.T) {
	h := NewHistory()
	actions := fill(t, h, 3)
	require.True(t, h.Undo())

	assert.True(t, h.Remove(actions[0].ID()))
	assert.True(t, h.Remove(actions[2].ID()), "undone actions can be removed")
	assert.False(t, h.Remove(actions[2].ID()))
	assert.Equal(t, []*Action{actions[1]}, h.Actions())
	assert.False(t, h.CanRedo())
	assert.Nil(t, h.NextRedo())
	assert.Equal(t, actions[1], h.Last())
}
