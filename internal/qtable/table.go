package qtable

import (
	"slices"
	"strings"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// ActionValues maps each action of one state to its learned score
type ActionValues map[ActionKey]float64

// SideTable maps state keys to their action scores for one side
type SideTable map[StateKey]ActionValues

// Table is the whole value table. The JSON form has exactly two top-level keys, "W" and "B".
type Table struct {
	White SideTable `json:"W"`
	Black SideTable `json:"B"`
}

// ActionValue is one (action, score) pair
type ActionValue struct {
	Action ActionKey
	Value  float64
}

// NewTable returns an empty table for both sides
func NewTable() *Table {
	return &Table{
		White: make(SideTable),
		Black: make(SideTable),
	}
}

// For returns the side's sub-table, or nil for an invalid side
func (t *Table) For(side core.Side) SideTable {
	switch side {
	case core.White:
		return t.White
	case core.Black:
		return t.Black
	default:
		return nil
	}
}

// normalize replaces nil sub-tables left behind by a partial file
func (t *Table) normalize() {
	if t.White == nil {
		t.White = make(SideTable)
	}
	if t.Black == nil {
		t.Black = make(SideTable)
	}
	for k, v := range t.White {
		if v == nil {
			t.White[k] = make(ActionValues)
		}
	}
	for k, v := range t.Black {
		if v == nil {
			t.Black[k] = make(ActionValues)
		}
	}
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	return &Table{
		White: t.White.clone(),
		Black: t.Black.clone(),
	}
}

// Equal compares keys and scores of both sides
func (t *Table) Equal(other *Table) bool {
	return t.White.equal(other.White) && t.Black.equal(other.Black)
}

// StateCount returns the number of states stored for side
func (t *Table) StateCount(side core.Side) int {
	return len(t.For(side))
}

func (st SideTable) clone() SideTable {
	out := make(SideTable, len(st))
	for k, v := range st {
		out[k] = v.clone()
	}
	return out
}

func (st SideTable) equal(other SideTable) bool {
	if len(st) != len(other) {
		return false
	}
	for k, v := range st {
		o, ok := other[k]
		if !ok || !v.equal(o) {
			return false
		}
	}
	return true
}

func (av ActionValues) clone() ActionValues {
	out := make(ActionValues, len(av))
	for k, v := range av {
		out[k] = v
	}
	return out
}

func (av ActionValues) equal(other ActionValues) bool {
	if len(av) != len(other) {
		return false
	}
	for k, v := range av {
		o, ok := other[k]
		if !ok || o != v {
			return false
		}
	}
	return true
}

// Sorted returns the entries ordered by action key
func (av ActionValues) Sorted() []ActionValue {
	out := make([]ActionValue, 0, len(av))
	for k, v := range av {
		out = append(out, ActionValue{Action: k, Value: v})
	}
	slices.SortFunc(out, func(a, b ActionValue) int {
		return strings.Compare(string(a.Action), string(b.Action))
	})
	return out
}
