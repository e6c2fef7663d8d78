package sync

import (
	"context"
	"testing"
	"time"

	"github.com/tododos/tododos/internal/todo"
)

// newTestOverlay wires a Store+Overlay over a fake gateway.
func newTestOverlay(t *testing.T, g *fakeGateway) (*Store, *Overlay) {
	t.Helper()
	s, _ := newTestStore(t, g)
	return s, NewOverlay(s)
}

func TestAddPending_VisibleAndSelected(t *testing.T) {
	g := newFakeGateway()
	_, o := newTestOverlay(t, g)

	tempID := o.AddPending("Groceries")
	if !todo.IsTempID(tempID) {
		t.Errorf("AddPending() returned %q, want a temporary id", tempID)
	}
	if o.Selection() != tempID {
		t.Errorf("Selection() = %q, want the pending id", o.Selection())
	}

	visible := o.Visible()
	if len(visible) != 1 || visible[0].ID != tempID || visible[0].Name != "Groceries" {
		t.Errorf("Visible() = %+v, want the single pending list", visible)
	}
}

func TestReconcile_AdoptsByName(t *testing.T) {
	g := newFakeGateway()
	s, o := newTestOverlay(t, g)

	tempID := o.AddPending("Groceries")

	// Store confirms the create; the announcement carries the
	// canonical list under its real id.
	id, err := s.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}

	// The pending entry is retired: the list shows exactly once.
	visible := o.Visible()
	if len(visible) != 1 {
		t.Fatalf("Visible() has %d lists, want 1 (no pending duplicate)", len(visible))
	}
	if visible[0].ID != id {
		t.Errorf("Visible()[0].ID = %q, want canonical %q", visible[0].ID, id)
	}
	if o.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", o.PendingCount())
	}

	// The selection was repointed from the temp id to the real one.
	if o.Selection() != id {
		t.Errorf("Selection() = %q, want repointed to %q", o.Selection(), id)
	}
	if o.Selection() == tempID {
		t.Error("Selection() still holds the temporary id")
	}
}

func TestReconcile_EachCanonicalAdoptsOnePending(t *testing.T) {
	g := newFakeGateway()
	_, o := newTestOverlay(t, g)

	o.AddPending("Chores")
	o.AddPending("Chores")

	// One canonical list named Chores arrives; only one pending entry
	// may be retired by it.
	now := time.Now()
	o.reconcile([]todo.List{{ID: "real-1", Name: "Chores", CreatedAt: now, UpdatedAt: now}})

	if o.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1 (second pending awaits its own confirmation)", o.PendingCount())
	}
	if len(o.Visible()) != 2 {
		t.Errorf("Visible() has %d lists, want 2", len(o.Visible()))
	}
}

func TestReconcile_IgnoresTempCanonicalIDs(t *testing.T) {
	g := newFakeGateway()
	_, o := newTestOverlay(t, g)

	tempID := o.AddPending("Groceries")

	// A canonical entry that itself carries a temp id must not adopt
	// the pending entry.
	now := time.Now()
	o.reconcile([]todo.List{{ID: todo.NewTempID(), Name: "Groceries", CreatedAt: now, UpdatedAt: now}})

	if o.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", o.PendingCount())
	}
	if o.Selection() != tempID {
		t.Errorf("Selection() = %q, want unchanged %q", o.Selection(), tempID)
	}
}

func TestDropPending_ClearsSelection(t *testing.T) {
	g := newFakeGateway()
	_, o := newTestOverlay(t, g)

	tempID := o.AddPending("Groceries")
	o.DropPending(tempID)

	if o.Selection() != "" {
		t.Errorf("Selection() = %q after drop, want \"\"", o.Selection())
	}
	if len(o.Visible()) != 0 {
		t.Errorf("Visible() has %d lists after drop, want 0", len(o.Visible()))
	}
}

func TestDropPending_KeepsOtherSelection(t *testing.T) {
	g := newFakeGateway()
	_, o := newTestOverlay(t, g)

	first := o.AddPending("First")
	second := o.AddPending("Second")

	o.DropPending(first)
	if o.Selection() != second {
		t.Errorf("Selection() = %q, want %q", o.Selection(), second)
	}
}

func TestVisibleItems_ProjectionOverridesCanonical(t *testing.T) {
	g := newFakeGateway()
	s, o := newTestOverlay(t, g)

	id, err := s.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}

	item := todo.Item{ID: "i1", Text: "milk", CreatedAt: time.Now()}
	o.ApplyItemAdd(id, item)

	items := o.VisibleItems(id)
	if len(items) != 1 || items[0].Text != "milk" {
		t.Errorf("VisibleItems() = %+v, want the projected item", items)
	}
}

func TestReconcile_FreshItemsResetProjection(t *testing.T) {
	g := newFakeGateway()
	s, o := newTestOverlay(t, g)

	id, err := s.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}

	o.ApplyItemAdd(id, todo.Item{ID: "optimistic", Text: "milk", CreatedAt: time.Now()})

	// Canonical data arrives carrying the confirmed item under its
	// durable identity; the projection is replaced, not merged.
	now := time.Now()
	o.reconcile([]todo.List{{
		ID: id, Name: "Groceries",
		Items:     []todo.Item{{ID: "durable", Text: "milk", CreatedAt: now}},
		CreatedAt: now, UpdatedAt: now,
	}})

	items := o.VisibleItems(id)
	if len(items) != 1 || items[0].ID != "durable" {
		t.Errorf("VisibleItems() = %+v, want the canonical item only", items)
	}
}

func TestReconcile_DeactivatesProjectionWhenListGone(t *testing.T) {
	g := newFakeGateway()
	s, o := newTestOverlay(t, g)

	id, err := s.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	o.ApplyItemAdd(id, todo.Item{ID: "i1", Text: "milk", CreatedAt: time.Now()})

	o.reconcile(nil)

	if items := o.VisibleItems(id); len(items) != 0 {
		t.Errorf("VisibleItems() = %+v for a deleted list, want none", items)
	}
}

func TestSelect_IdentityChangeResetsProjection(t *testing.T) {
	g := newFakeGateway()
	s, o := newTestOverlay(t, g)
	ctx := context.Background()

	a, err := s.CreateList(ctx, "A")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	b, err := s.CreateList(ctx, "B")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}

	o.Select(a)
	o.ApplyItemAdd(a, todo.Item{ID: "i1", Text: "milk", CreatedAt: time.Now()})

	o.Select(b)
	o.Select(a)

	// Selecting away and back drops the stale projection; the
	// canonical (empty) items show.
	if items := o.VisibleItems(a); len(items) != 0 {
		t.Errorf("VisibleItems() = %+v after reselect, want canonical items", items)
	}
}
