package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tododos/tododos/internal/todo"
)

func openTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := OpenFile(filepath.Join(t.TempDir(), "lists.json"), nil)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	return fs
}

func TestFile_LoadAllMissingFileIsEmpty(t *testing.T) {
	fs := openTestFileStore(t)

	lists, err := fs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("LoadAll() returned %d lists, want 0", len(lists))
	}
}

func TestFile_CreateAndReload(t *testing.T) {
	fs := openTestFileStore(t)
	ctx := context.Background()

	id, err := fs.Create(ctx, draftList("Groceries"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	lists, err := fs.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != id || lists[0].Name != "Groceries" {
		t.Errorf("LoadAll() = %+v, want the created list", lists)
	}
}

func TestFile_LoadAllOrderedByUpdated(t *testing.T) {
	fs := openTestFileStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	old := draftList("Old")
	old.CreatedAt, old.UpdatedAt = base, base

	if _, err := fs.Create(ctx, old); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := fs.Create(ctx, draftList("Fresh")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	lists, err := fs.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if lists[0].Name != "Fresh" || lists[1].Name != "Old" {
		t.Errorf("order = [%s %s], want most recently updated first", lists[0].Name, lists[1].Name)
	}
}

func TestFile_UpdateAndDelete(t *testing.T) {
	fs := openTestFileStore(t)
	ctx := context.Background()

	id, err := fs.Create(ctx, draftList("Groceries"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	lists, _ := fs.LoadAll(ctx)
	list := lists[0]
	list.Name = "Errands"
	list.Touch()
	if err := fs.Update(ctx, list); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	lists, _ = fs.LoadAll(ctx)
	if lists[0].Name != "Errands" {
		t.Errorf("Name = %q after update, want %q", lists[0].Name, "Errands")
	}

	if err := fs.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := fs.Delete(ctx, id); err != nil {
		t.Errorf("second Delete() failed: %v", err)
	}

	lists, _ = fs.LoadAll(ctx)
	if len(lists) != 0 {
		t.Errorf("LoadAll() returned %d lists after delete, want 0", len(lists))
	}
}

func TestFile_SubscribeUnsupported(t *testing.T) {
	fs := openTestFileStore(t)

	if _, err := fs.Subscribe(func([]todo.List) {}); !errors.Is(err, ErrSubscribeUnsupported) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeUnsupported", err)
	}
}

func TestPrefs_Roundtrip(t *testing.T) {
	p := NewPrefs(t.TempDir())

	if got := p.LoadCurrentList(); got != "" {
		t.Errorf("LoadCurrentList() = %q on empty prefs, want \"\"", got)
	}

	if err := p.SaveCurrentList("list-42"); err != nil {
		t.Fatalf("SaveCurrentList() failed: %v", err)
	}
	if got := p.LoadCurrentList(); got != "list-42" {
		t.Errorf("LoadCurrentList() = %q, want %q", got, "list-42")
	}

	// An empty id clears the selection; clearing twice is fine.
	if err := p.SaveCurrentList(""); err != nil {
		t.Fatalf("SaveCurrentList(\"\") failed: %v", err)
	}
	if err := p.SaveCurrentList(""); err != nil {
		t.Fatalf("second SaveCurrentList(\"\") failed: %v", err)
	}
	if got := p.LoadCurrentList(); got != "" {
		t.Errorf("LoadCurrentList() = %q after clear, want \"\"", got)
	}
}
