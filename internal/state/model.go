package state

// OpType names an operation exchanged between shared boards.
type OpType string

const (
	OpInsertAction OpType = "insert_action"
	OpDeleteAction OpType = "delete_action"
	OpClear        OpType = "clear"
)

// Op is one shared board change. Actions travel as records so peers with
// a different view size or orientation redraw them correctly.
type Op struct {
	Type    OpType  `json:"type"`
	Record  *Record `json:"record,omitempty"`
	Target  string  `json:"target,omitempty"` // ID of the action to delete
	Owner   string  `json:"owner,omitempty"`  // whose actions a clear removes
	Lamport uint64  `json:"lamport"`
	Site    string  `json:"site"`
}

// InsertOp shares a and carries its stamp, so every board stacks it in the
// same place.
func InsertOp(a *Action) Op {
	rec := NewRecord(a)
	return Op{Type: OpInsertAction, Record: &rec, Owner: a.Owner(), Lamport: a.lamport, Site: a.site}
}

func DeleteOp(id string) Op {
	return Op{Type: OpDeleteAction, Target: id}
}

func ClearOp(owner string) Op {
	return Op{Type: OpClear, Owner: owner}
}
