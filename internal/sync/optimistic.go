package sync

import (
	stdsync "sync"
	"time"

	"github.com/tododos/tododos/internal/todo"
)

// Overlay projects locally-originated, not-yet-confirmed mutations
// onto the canonical collection so the view never regresses between a
// user intent and its server confirmation.
//
// The Overlay never writes canonical state; it keeps a pending-list
// registry and a per-list item projection of its own, and retires
// entries as the Store announces fresh canonical data.
type Overlay struct {
	mu stdsync.Mutex

	canonical []todo.List
	pending   []todo.List // lists awaiting create confirmation, FIFO

	selection string // current list id; may be a temp id

	projListID string
	projItems  []todo.Item
	projActive bool
}

// NewOverlay creates an overlay wired to the store's canonical
// announcements.
func NewOverlay(s *Store) *Overlay {
	o := &Overlay{}
	s.OnChange(o.reconcile)
	return o
}

// AddPending registers an optimistic list with the given name and
// makes it the current selection. It returns the temporary identifier,
// which doubles as the correlation token: once a confirmed list
// adopts this entry, the selection is repointed from the temporary id
// to the real one.
func (o *Overlay) AddPending(name string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	tempID := todo.NewTempID()
	now := time.Now()
	o.pending = append(o.pending, todo.List{
		ID:        tempID,
		Name:      name,
		Items:     []todo.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	o.selection = tempID
	return tempID
}

// DropPending removes a pending entry after a failed create. If the
// entry was selected, the selection is cleared so the view falls back
// to the list selector.
func (o *Overlay) DropPending(tempID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.pending[:0]
	for i := range o.pending {
		if o.pending[i].ID != tempID {
			kept = append(kept, o.pending[i])
		}
	}
	o.pending = kept
	if o.selection == tempID {
		o.selection = ""
	}
}

// reconcile absorbs a fresh canonical collection: pending entries
// whose confirmed counterpart has arrived are retired, and the item
// projection is reset when fresh canonical items exist for the
// projected list.
//
// A pending entry is matched by name against canonical lists whose id
// is not itself temporary; each canonical list can adopt at most one
// pending entry. Name matching is a heuristic and is not safe under
// duplicate names created concurrently.
func (o *Overlay) reconcile(canonical []todo.List) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.canonical = canonical

	claimed := make(map[string]bool)
	kept := o.pending[:0]
	for i := range o.pending {
		p := o.pending[i]
		adoptedBy := ""
		for j := range canonical {
			c := &canonical[j]
			if todo.IsTempID(c.ID) || claimed[c.ID] {
				continue
			}
			if c.Name == p.Name {
				adoptedBy = c.ID
				claimed[c.ID] = true
				break
			}
		}
		if adoptedBy == "" {
			kept = append(kept, p)
			continue
		}
		if o.selection == p.ID {
			o.selection = adoptedBy
		}
	}
	o.pending = kept

	// Fresh canonical items for the projected list replace the
	// optimistic projection.
	if o.projActive {
		for i := range canonical {
			if canonical[i].ID == o.projListID {
				o.projItems = canonical[i].Clone().Items
				return
			}
		}
		// Projected list no longer exists.
		o.projActive = false
		o.projItems = nil
	}
}

// Visible returns the collection to display: the canonical lists with
// every pending entry appended exactly once.
func (o *Overlay) Visible() []todo.List {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := todo.CloneLists(o.canonical)
	out = append(out, todo.CloneLists(o.pending)...)
	return out
}

// Selection returns the current list id, which may be temporary while
// a create is in flight, or "" when no list is selected.
func (o *Overlay) Selection() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection
}

// Select points the view at a list. Switching identity resets the
// item projection.
func (o *Overlay) Select(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.selection != id {
		o.projActive = false
		o.projItems = nil
		o.projListID = ""
	}
	o.selection = id
}

// VisibleItems returns the items to display for a list: the optimistic
// projection when one is active for that list, otherwise the canonical
// (or pending) items.
func (o *Overlay) VisibleItems(listID string) []todo.Item {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.projActive && o.projListID == listID {
		out := make([]todo.Item, len(o.projItems))
		copy(out, o.projItems)
		return out
	}
	for i := range o.canonical {
		if o.canonical[i].ID == listID {
			return o.canonical[i].Clone().Items
		}
	}
	for i := range o.pending {
		if o.pending[i].ID == listID {
			return o.pending[i].Clone().Items
		}
	}
	return nil
}

// project ensures the projection tracks listID, seeding it from the
// current visible items. Callers hold o.mu.
func (o *Overlay) project(listID string) {
	if o.projActive && o.projListID == listID {
		return
	}
	o.projListID = listID
	o.projActive = true
	o.projItems = nil
	for i := range o.canonical {
		if o.canonical[i].ID == listID {
			o.projItems = o.canonical[i].Clone().Items
			return
		}
	}
}

// ApplyItemAdd appends an item to the projection for listID.
func (o *Overlay) ApplyItemAdd(listID string, item todo.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.project(listID)
	o.projItems = append(o.projItems, item)
}

// ApplyItemUpdate replaces the matching item in the projection.
func (o *Overlay) ApplyItemUpdate(listID string, item todo.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.project(listID)
	for i := range o.projItems {
		if o.projItems[i].ID == item.ID {
			o.projItems[i] = item
			return
		}
	}
}

// ApplyItemDelete removes the matching item from the projection.
func (o *Overlay) ApplyItemDelete(listID, itemID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.project(listID)
	kept := o.projItems[:0]
	for i := range o.projItems {
		if o.projItems[i].ID != itemID {
			kept = append(kept, o.projItems[i])
		}
	}
	o.projItems = kept
}

// ApplyItems replaces the whole projection for listID, used after a
// reorder where every item's rank changes at once.
func (o *Overlay) ApplyItems(listID string, items []todo.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.projListID = listID
	o.projActive = true
	o.projItems = make([]todo.Item, len(items))
	copy(o.projItems, items)
}

// PendingCount returns how many lists await create confirmation.
func (o *Overlay) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
