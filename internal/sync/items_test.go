package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tododos/tododos/internal/order"
	"github.com/tododos/tododos/internal/todo"
)

// newTestSession wires a full Session over a fake gateway with one
// empty list, returning the session and the list id.
func newTestSession(t *testing.T, g *fakeGateway) (*Session, string) {
	t.Helper()
	s, _ := newTestStore(t, g)
	ss := NewSession(s)

	id, err := ss.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	return ss, id
}

func itemTexts(items []todo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestSessionCreateList_RetiresPending(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)

	if ss.Overlay.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after confirmation, want 0", ss.Overlay.PendingCount())
	}
	if ss.Overlay.Selection() != id {
		t.Errorf("Selection() = %q, want the confirmed id %q", ss.Overlay.Selection(), id)
	}
}

func TestSessionCreateList_FailureDropsPending(t *testing.T) {
	g := newFakeGateway()
	s, _ := newTestStore(t, g)
	ss := NewSession(s)

	g.failCreate = true
	if _, err := ss.CreateList(context.Background(), "Groceries"); err == nil {
		t.Fatal("CreateList() succeeded with a failing gateway")
	}

	if ss.Overlay.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after failure, want 0", ss.Overlay.PendingCount())
	}
	if ss.Overlay.Selection() != "" {
		t.Errorf("Selection() = %q after failure, want \"\"", ss.Overlay.Selection())
	}
}

func TestAddItem_ChronologicalListStaysUnranked(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	item, err := ss.AddItem(ctx, id, "  milk  ")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	if item.Text != "milk" {
		t.Errorf("Text = %q, want trimmed %q", item.Text, "milk")
	}
	if item.Order != nil {
		t.Errorf("Order = %d for a chronological list, want nil", *item.Order)
	}

	list, err := ss.Store.Find(id)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(list.Items) != 1 {
		t.Errorf("list has %d items, want 1", len(list.Items))
	}
}

func TestAddItem_ManualListGetsNextRank(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	a, err := ss.AddItem(ctx, id, "A")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	b, err := ss.AddItem(ctx, id, "B")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}

	// A drag gives A rank 0 and B rank 1.
	if err := ss.MoveItem(ctx, id, b.ID, a.ID); err != nil {
		t.Fatalf("MoveItem() failed: %v", err)
	}
	if err := ss.MoveItem(ctx, id, b.ID, a.ID); err != nil {
		t.Fatalf("second MoveItem() failed: %v", err)
	}

	c, err := ss.AddItem(ctx, id, "C")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	if c.Order == nil || *c.Order != 2 {
		t.Errorf("Order = %v for an appended item, want 2", c.Order)
	}
}

func TestAddItem_EmptyText(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)

	if _, err := ss.AddItem(context.Background(), id, "   "); !errors.Is(err, todo.ErrValidation) {
		t.Errorf("AddItem() error = %v, want ErrValidation", err)
	}
}

func TestSetCompleted_Roundtrip(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	item, err := ss.AddItem(ctx, id, "milk")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}

	if err := ss.SetCompleted(ctx, id, item.ID, true); err != nil {
		t.Fatalf("SetCompleted() failed: %v", err)
	}
	list, _ := ss.Store.Find(id)
	if !list.Items[0].Completed {
		t.Error("item not completed after SetCompleted(true)")
	}

	if err := ss.SetCompleted(ctx, id, item.ID, false); err != nil {
		t.Fatalf("SetCompleted() failed: %v", err)
	}
	list, _ = ss.Store.Find(id)
	if list.Items[0].Completed {
		t.Error("item still completed after SetCompleted(false)")
	}
}

func TestEditItem_UnknownItem(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)

	err := ss.EditItem(context.Background(), id, "missing", "text")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("EditItem() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveItem_Success(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	item, err := ss.AddItem(ctx, id, "milk")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	if err := ss.RemoveItem(ctx, id, item.ID); err != nil {
		t.Fatalf("RemoveItem() failed: %v", err)
	}

	list, _ := ss.Store.Find(id)
	if len(list.Items) != 0 {
		t.Errorf("list has %d items after remove, want 0", len(list.Items))
	}
}

func TestMoveItem_Permutation(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	a, err := ss.AddItem(ctx, id, "A")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := ss.AddItem(ctx, id, "B"); err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	c, err := ss.AddItem(ctx, id, "C")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}

	// Dragging A onto C turns [A B C] into [B C A].
	if err := ss.MoveItem(ctx, id, a.ID, c.ID); err != nil {
		t.Fatalf("MoveItem() failed: %v", err)
	}

	got := itemTexts(ss.DisplayItems(id))
	want := []string{"B", "C", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("display order = %v, want %v", got, want)
		}
	}

	// Every item now carries a dense rank.
	list, _ := ss.Store.Find(id)
	for _, it := range order.Sorted(list.Items, todo.SortNormal) {
		if it.Order == nil {
			t.Errorf("item %q has no rank after a move", it.Text)
		}
	}
}

func TestMoveItem_SamePosition(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	a, err := ss.AddItem(ctx, id, "A")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	if err := ss.MoveItem(ctx, id, a.ID, a.ID); !errors.Is(err, order.ErrSamePosition) {
		t.Errorf("MoveItem() error = %v, want ErrSamePosition", err)
	}
}

func TestCycleSort_PersistsMode(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	mode, err := ss.CycleSort(ctx, id)
	if err != nil {
		t.Fatalf("CycleSort() failed: %v", err)
	}
	if mode != todo.SortCompletedTop {
		t.Errorf("CycleSort() = %s, want completed-top", mode)
	}

	list, _ := ss.Store.Find(id)
	if list.SortBy != todo.SortCompletedTop {
		t.Errorf("persisted SortBy = %q, want completed-top", list.SortBy)
	}
}

func TestDisplayItems_HonorsSortMode(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)
	ctx := context.Background()

	done, err := ss.AddItem(ctx, id, "done")
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := ss.AddItem(ctx, id, "open"); err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	if err := ss.SetCompleted(ctx, id, done.ID, true); err != nil {
		t.Fatalf("SetCompleted() failed: %v", err)
	}

	// normal -> completed-top -> completed-bottom
	if _, err := ss.CycleSort(ctx, id); err != nil {
		t.Fatalf("CycleSort() failed: %v", err)
	}
	if _, err := ss.CycleSort(ctx, id); err != nil {
		t.Fatalf("CycleSort() failed: %v", err)
	}

	got := itemTexts(ss.DisplayItems(id))
	if got[0] != "open" || got[1] != "done" {
		t.Errorf("display order = %v, want completed last", got)
	}
}

func TestRenameList_Persists(t *testing.T) {
	g := newFakeGateway()
	ss, id := newTestSession(t, g)

	if err := ss.RenameList(context.Background(), id, "Errands"); err != nil {
		t.Fatalf("RenameList() failed: %v", err)
	}
	list, _ := ss.Store.Find(id)
	if list.Name != "Errands" {
		t.Errorf("Name = %q, want %q", list.Name, "Errands")
	}
}
