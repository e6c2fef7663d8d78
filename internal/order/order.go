// Package order computes the display sequence of todo items.
//
// Sorting is a pure function of the items and the list's sort mode;
// nothing here touches storage or canonical state. Manual ordering uses
// a two-tier rank: the explicit Order field when present, otherwise the
// item's creation time. After any drag-reorder every item is renumbered
// to a dense 0..n-1 permutation, so rank values never drift or collide.
package order

import (
	"errors"
	"sort"

	"github.com/tododos/tododos/internal/todo"
)

// Errors returned by Reorder.
var (
	// ErrItemNotFound is returned when the moved or target item id is
	// not present in the sequence.
	ErrItemNotFound = errors.New("item not found in sequence")

	// ErrSamePosition is returned when the moved and target ids are
	// identical; the move would be a no-op.
	ErrSamePosition = errors.New("moved and target items are the same")
)

// rank returns the manual-order rank for an item: the explicit Order
// value when set, otherwise the creation instant in milliseconds.
// Explicit ranks are small dense integers, so manually ordered items
// always precede never-reordered ones.
func rank(it *todo.Item) int64 {
	if it.Order != nil {
		return int64(*it.Order)
	}
	return it.CreatedAt.UnixMilli()
}

// Sorted returns the display sequence for items under the given mode.
// The input slice is not modified. Sorting is stable and idempotent:
// re-sorting an already sorted sequence yields the same sequence.
func Sorted(items []todo.Item, mode todo.SortMode) []todo.Item {
	out := make([]todo.Item, len(items))
	copy(out, items)

	switch mode {
	case todo.SortCompletedTop:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Completed != out[j].Completed {
				return out[i].Completed
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case todo.SortCompletedBottom:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Completed != out[j].Completed {
				return !out[i].Completed
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return rank(&out[i]) < rank(&out[j])
		})
	}
	return out
}

// Reorder moves the item movedID to the position currently occupied by
// targetID within the displayed sequence, shifting everything between
// the two positions by one. Every item in the result is then assigned
// its zero-based index as the new Order value; prior Order values are
// discarded.
//
// The input must be the sequence as currently displayed (see Sorted).
// The input slice is not modified.
func Reorder(displayed []todo.Item, movedID, targetID string) ([]todo.Item, error) {
	if movedID == targetID {
		return nil, ErrSamePosition
	}

	from, to := -1, -1
	for i := range displayed {
		switch displayed[i].ID {
		case movedID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, ErrItemNotFound
	}

	out := make([]todo.Item, len(displayed))
	copy(out, displayed)

	// Array-move: remove, then reinsert at the target's index.
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]todo.Item{moved}, out[to:]...)...)

	for i := range out {
		idx := i
		out[i].Order = &idx
	}
	return out, nil
}

// NextRank returns the Order value for an item appended to the list,
// or nil when no item carries an explicit rank yet. Lists that were
// never manually reordered stay in chronological order without a
// migration backfilling Order on every historical item.
func NextRank(items []todo.Item) *int {
	max := -1
	found := false
	for i := range items {
		if items[i].Order != nil {
			found = true
			if *items[i].Order > max {
				max = *items[i].Order
			}
		}
	}
	if !found {
		return nil
	}
	next := max + 1
	return &next
}
