// Package todo provides the data structures for todo lists and items.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is returned when a list or item fails validation.
//
// Callers can check for it with errors.Is():
//
//	if errors.Is(err, todo.ErrValidation) {
//	    // reject the intent before it reaches storage
//	}
var ErrValidation = errors.New("validation failed")

// SortMode controls the display order of items within a list.
// It is a per-list preference, persisted with the list document.
type SortMode string

const (
	// SortNormal orders items by manual rank when present,
	// falling back to creation time.
	SortNormal SortMode = "normal"

	// SortCompletedTop shows completed items first.
	SortCompletedTop SortMode = "completed-top"

	// SortCompletedBottom shows completed items last.
	SortCompletedBottom SortMode = "completed-bottom"
)

// Valid reports whether the mode is one of the known sort modes.
// The empty string is valid and means SortNormal.
func (m SortMode) Valid() bool {
	switch m {
	case "", SortNormal, SortCompletedTop, SortCompletedBottom:
		return true
	}
	return false
}

// Next returns the mode that follows m in the cycle
// normal -> completed-top -> completed-bottom -> normal.
func (m SortMode) Next() SortMode {
	switch m {
	case SortCompletedTop:
		return SortCompletedBottom
	case SortCompletedBottom:
		return SortNormal
	default:
		return SortCompletedTop
	}
}

// Item is a single entry within a list.
//
// Items have no independent lifecycle: they are created, mutated and
// destroyed only as part of a list update.
type Item struct {
	// ID uniquely identifies the item within its list. Immutable.
	ID string `json:"id"`

	// Text is the item content. Never empty after trimming.
	Text string `json:"text"`

	// Completed marks the item done.
	Completed bool `json:"completed"`

	// CreatedAt is the creation instant. Immutable.
	CreatedAt time.Time `json:"createdAt"`

	// Order is the manual rank assigned by drag-reordering.
	// nil means "rank by CreatedAt instead".
	Order *int `json:"order,omitempty"`
}

// Validate checks the item's field values.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: item id is required", ErrValidation)
	}
	if strings.TrimSpace(it.Text) == "" {
		return fmt.Errorf("%w: item text is required", ErrValidation)
	}
	if it.CreatedAt.IsZero() {
		return fmt.Errorf("%w: item createdAt is required", ErrValidation)
	}
	return nil
}

// List is a named collection of items.
//
// The ID may transiently hold a temporary identifier while the list
// awaits server-confirmed creation; see NewTempID and IsTempID.
type List struct {
	// ID uniquely identifies the list within the collection.
	ID string `json:"id"`

	// Name is the list title. Never empty after trimming.
	Name string `json:"name"`

	// Items holds the list entries. Slice order is not semantically
	// meaningful; display order is computed from SortBy.
	Items []Item `json:"items"`

	// CreatedAt is the creation instant.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is bumped on every mutation to the list or its items.
	// Always >= CreatedAt.
	UpdatedAt time.Time `json:"updatedAt"`

	// SortBy is the persisted per-list sort preference.
	// The zero value means SortNormal.
	SortBy SortMode `json:"sortBy,omitempty"`
}

// Validate checks the list and all of its items.
func (l *List) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: list id is required", ErrValidation)
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: list name is required", ErrValidation)
	}
	if l.CreatedAt.IsZero() {
		return fmt.Errorf("%w: list createdAt is required", ErrValidation)
	}
	if l.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: list updatedAt is required", ErrValidation)
	}
	if l.UpdatedAt.Before(l.CreatedAt) {
		return fmt.Errorf("%w: list updatedAt precedes createdAt", ErrValidation)
	}
	if !l.SortBy.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", ErrValidation, l.SortBy)
	}
	seen := make(map[string]bool, len(l.Items))
	for i := range l.Items {
		if err := l.Items[i].Validate(); err != nil {
			return err
		}
		if seen[l.Items[i].ID] {
			return fmt.Errorf("%w: duplicate item id %s", ErrValidation, l.Items[i].ID)
		}
		seen[l.Items[i].ID] = true
	}
	return nil
}

// Touch sets UpdatedAt to the current time.
// Called whenever the list or any of its items is modified.
func (l *List) Touch() {
	l.UpdatedAt = time.Now()
}

// FindItem returns the index of the item with the given id, or -1.
func (l *List) FindItem(id string) int {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// CompletedCount returns how many items are marked done.
func (l *List) CompletedCount() int {
	n := 0
	for i := range l.Items {
		if l.Items[i].Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the list.
// Storage and sync layers hand out clones so callers cannot alias
// canonical state.
func (l *List) Clone() List {
	out := *l
	out.Items = make([]Item, len(l.Items))
	for i := range l.Items {
		out.Items[i] = l.Items[i]
		if l.Items[i].Order != nil {
			v := *l.Items[i].Order
			out.Items[i].Order = &v
		}
	}
	return out
}

// CloneLists deep-copies a collection of lists.
func CloneLists(lists []List) []List {
	out := make([]List, len(lists))
	for i := range lists {
		out[i] = lists[i].Clone()
	}
	return out
}
