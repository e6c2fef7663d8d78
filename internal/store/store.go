// Package store provides persistence backends for todo lists.
//
// Two interchangeable implementations exist: a SQLite-backed document
// store (the remote backend) and a single-file JSON store (the local
// fallback). Both satisfy the same Store contract and are selected by
// configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tododos/tododos/internal/todo"
)

// Common errors returned by storage backends.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, store.ErrStorage) {
//	    // transport, permission or serialization fault
//	}
var (
	// ErrStorage is wrapped into every load/create/update/delete
	// failure, regardless of backend.
	ErrStorage = errors.New("storage failure")

	// ErrSubscribeUnsupported is returned by Subscribe when the
	// backend cannot deliver change notifications. Callers should
	// fall back to a one-shot LoadAll.
	ErrSubscribeUnsupported = errors.New("subscriptions not supported by this backend")
)

// Store is the persistence gateway for todo lists.
//
// Update is a full-document replace; concurrent updates from two
// callers resolve last-write-wins with no merge. Delete is idempotent:
// deleting an id that does not exist is indistinguishable from success.
type Store interface {
	// LoadAll fetches every list, ordered by UpdatedAt descending.
	LoadAll(ctx context.Context) ([]todo.List, error)

	// Create durably stores a new list and returns its assigned
	// identifier. The id on the passed list is ignored. Never returns
	// a duplicate identifier.
	Create(ctx context.Context, list todo.List) (string, error)

	// Update replaces the stored document for list.ID wholesale.
	Update(ctx context.Context, list todo.List) error

	// Delete removes the list with the given id. Deleting a missing
	// id is not an error.
	Delete(ctx context.Context, id string) error

	// Subscribe registers cb to receive the full, ordered list
	// collection on every change, including changes made by this
	// process. Once a subscription is active its payloads are
	// authoritative; the caller must not also poll LoadAll.
	//
	// The returned stop function releases the subscription. It is
	// safe to call more than once; subsequent calls are no-ops.
	//
	// Backends without change notification return
	// ErrSubscribeUnsupported.
	Subscribe(cb func(lists []todo.List)) (func(), error)

	// Close releases backend resources.
	Close() error
}

// storageErr wraps err so it matches both ErrStorage and the
// underlying cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}

// sortByUpdated orders lists by UpdatedAt descending, in place.
// Both backends maintain this as the authoritative collection order.
func sortByUpdated(lists []todo.List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
}
