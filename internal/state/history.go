package state

import "slices"

// History is the ordered log of committed actions plus a redo stack.
// Committed actions are kept in draw order, back to front. It is not safe
// for concurrent use; the owning surface serializes access.
type History struct {
	committed []*Action
	redo      []*Action // top of stack is the last element
}

func NewHistory() *History {
	return &History{}
}

// Append commits a new action and drops the redo stack.
func (h *History) Append(a *Action) {
	h.committed = append(h.committed, a)
	h.redo = nil
}

// Insert commits an action drawn elsewhere at its place in stamp order.
// Unlike Append it keeps the redo stack, since undoing and redoing are
// local to each board.
func (h *History) Insert(a *Action) {
	i := len(h.committed)
	for i > 0 && a.orderedBefore(h.committed[i-1]) {
		i--
	}
	h.committed = slices.Insert(h.committed, i, a)
}

// Remove drops the action with the given ID from either collection.
func (h *History) Remove(id string) bool {
	for _, list := range []*[]*Action{&h.committed, &h.redo} {
		if i := slices.IndexFunc(*list, func(a *Action) bool { return a.ID() == id }); i >= 0 {
			*list = slices.Delete(*list, i, i+1)
			return true
		}
	}
	return false
}

// Last returns the action Undo would remove, or nil.
func (h *History) Last() *Action {
	if len(h.committed) == 0 {
		return nil
	}
	return h.committed[len(h.committed)-1]
}

// NextRedo returns the action Redo would restore, or nil.
func (h *History) NextRedo() *Action {
	if len(h.redo) == 0 {
		return nil
	}
	return h.redo[len(h.redo)-1]
}

// Undo moves the most recent action onto the redo stack. It reports whether
// anything was undone.
func (h *History) Undo() bool {
	n := len(h.committed)
	if n == 0 {
		return false
	}
	a := h.committed[n-1]
	h.committed[n-1] = nil
	h.committed = h.committed[:n-1]
	h.redo = append(h.redo, a)
	return true
}

// Redo moves the top of the redo stack back to the end of the log. It
// reports whether anything was redone.
func (h *History) Redo() bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	a := h.redo[n-1]
	h.redo[n-1] = nil
	h.redo = h.redo[:n-1]
	h.committed = append(h.committed, a)
	return true
}

// DiscardRedo forgets the redo stack. Any new drawing input calls it.
func (h *History) DiscardRedo() {
	h.redo = nil
}

// Clear empties both the log and the redo stack.
func (h *History) Clear() {
	h.committed = nil
	h.redo = nil
}

// RemoveOwner drops every action drawn by owner from both collections and
// returns how many were removed.
func (h *History) RemoveOwner(owner string) int {
	var removed int
	keep := func(list []*Action) []*Action {
		out := list[:0]
		for _, a := range list {
			if a.Owner() == owner {
				removed++
				continue
			}
			out = append(out, a)
		}
		clear(list[len(out):])
		return out
	}
	h.committed = keep(h.committed)
	h.redo = keep(h.redo)
	return removed
}

// Contains reports whether an action with the given ID is committed or
// waiting on the redo stack.
func (h *History) Contains(id string) bool {
	for _, list := range [][]*Action{h.committed, h.redo} {
		for _, a := range list {
			if a.ID() == id {
				return true
			}
		}
	}
	return false
}

// Actions returns the committed actions in draw order.
func (h *History) Actions() []*Action {
	out := make([]*Action, len(h.committed))
	copy(out, h.committed)
	return out
}

func (h *History) Len() int      { return len(h.committed) }
func (h *History) IsEmpty() bool { return len(h.committed) == 0 }
func (h *History) CanUndo() bool { return len(h.committed) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
