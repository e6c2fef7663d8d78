package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tododos/tododos/internal/order"
	"github.com/tododos/tododos/internal/todo"
)

// Session couples a Store with its Overlay and exposes the item-level
// intents. Every mutation follows the same shape: apply to the
// overlay's projection synchronously, then dispatch the durable
// full-document update, so the view is never older than the user's
// last action.
type Session struct {
	Store   *Store
	Overlay *Overlay
}

// NewSession creates a session over a started store.
func NewSession(s *Store) *Session {
	return &Session{Store: s, Overlay: NewOverlay(s)}
}

// CreateList performs an optimistic list creation: the pending entry
// becomes visible (and selected) immediately, the durable create runs,
// and on confirmation the pending entry is retired in favor of the
// server-assigned identity. On failure the pending entry is dropped
// and the selection falls back to the list selector.
func (ss *Session) CreateList(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: list name is required", todo.ErrValidation)
	}

	tempID := ss.Overlay.AddPending(name)
	id, err := ss.Store.CreateList(ctx, name)
	if err != nil {
		ss.Overlay.DropPending(tempID)
		return "", err
	}
	return id, nil
}

// AddItem appends a new item to the list and persists it. The item
// inherits a manual rank only when the list already uses manual
// ordering; otherwise it ranks by creation time.
func (ss *Session) AddItem(ctx context.Context, listID, text string) (todo.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return todo.Item{}, fmt.Errorf("%w: item text is required", todo.ErrValidation)
	}

	list, err := ss.Store.Find(listID)
	if err != nil {
		return todo.Item{}, err
	}

	item := todo.Item{
		ID:        todo.NewID(),
		Text:      text,
		CreatedAt: time.Now(),
		Order:     order.NextRank(list.Items),
	}

	ss.Overlay.ApplyItemAdd(listID, item)

	list.Items = append(list.Items, item)
	if err := ss.Store.UpdateList(ctx, list); err != nil {
		return todo.Item{}, err
	}
	return item, nil
}

// SetCompleted marks an item done or not done.
func (ss *Session) SetCompleted(ctx context.Context, listID, itemID string, done bool) error {
	return ss.mutateItem(ctx, listID, itemID, func(it *todo.Item) {
		it.Completed = done
	})
}

// EditItem replaces an item's text.
func (ss *Session) EditItem(ctx context.Context, listID, itemID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: item text is required", todo.ErrValidation)
	}
	return ss.mutateItem(ctx, listID, itemID, func(it *todo.Item) {
		it.Text = text
	})
}

// mutateItem applies fn to the item, projects the change, and persists
// the list.
func (ss *Session) mutateItem(ctx context.Context, listID, itemID string, fn func(*todo.Item)) error {
	list, err := ss.Store.Find(listID)
	if err != nil {
		return err
	}
	idx := list.FindItem(itemID)
	if idx < 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	fn(&list.Items[idx])
	ss.Overlay.ApplyItemUpdate(listID, list.Items[idx])

	return ss.Store.UpdateList(ctx, list)
}

// RemoveItem deletes an item from the list.
func (ss *Session) RemoveItem(ctx context.Context, listID, itemID string) error {
	list, err := ss.Store.Find(listID)
	if err != nil {
		return err
	}
	idx := list.FindItem(itemID)
	if idx < 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	ss.Overlay.ApplyItemDelete(listID, itemID)

	list.Items = append(list.Items[:idx], list.Items[idx+1:]...)
	return ss.Store.UpdateList(ctx, list)
}

// MoveItem performs a drag-reorder: the moved item takes the position
// currently occupied by the target item in the displayed sequence, and
// every item is renumbered to a dense manual rank.
func (ss *Session) MoveItem(ctx context.Context, listID, movedID, targetID string) error {
	list, err := ss.Store.Find(listID)
	if err != nil {
		return err
	}

	displayed := order.Sorted(list.Items, list.SortBy)
	reordered, err := order.Reorder(displayed, movedID, targetID)
	if err != nil {
		return err
	}

	ss.Overlay.ApplyItems(listID, reordered)

	list.Items = reordered
	return ss.Store.UpdateList(ctx, list)
}

// CycleSort advances the list's sort preference through
// normal -> completed-top -> completed-bottom -> normal and persists
// it.
func (ss *Session) CycleSort(ctx context.Context, listID string) (todo.SortMode, error) {
	list, err := ss.Store.Find(listID)
	if err != nil {
		return "", err
	}

	list.SortBy = list.SortBy.Next()
	if err := ss.Store.UpdateList(ctx, list); err != nil {
		return "", err
	}
	return list.SortBy, nil
}

// RenameList changes a list's name.
func (ss *Session) RenameList(ctx context.Context, listID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: list name is required", todo.ErrValidation)
	}

	list, err := ss.Store.Find(listID)
	if err != nil {
		return err
	}
	list.Name = name
	return ss.Store.UpdateList(ctx, list)
}

// DisplayItems returns the items of a list in display order,
// optimistic projection included.
func (ss *Session) DisplayItems(listID string) []todo.Item {
	items := ss.Overlay.VisibleItems(listID)

	mode := todo.SortNormal
	if list, err := ss.Store.Find(listID); err == nil {
		mode = list.SortBy
	}
	return order.Sorted(items, mode)
}
