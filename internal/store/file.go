package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/tododos/tododos/internal/todo"
)

// FileStore is the local fallback backend: a single JSON file holding
// the serialized list collection. Instants round-trip as RFC 3339
// strings. There is no change notification; Subscribe reports
// ErrSubscribeUnsupported and callers populate state with one LoadAll.
//
// A mutex serializes access; fine for a single-user local process.
type FileStore struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// OpenFile creates a file-backed store at the given path.
// The file is created on first write; a missing file loads as empty.
func OpenFile(path string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, storageErr("create data directory", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// LoadAll implements Store.LoadAll.
func (fs *FileStore) LoadAll(ctx context.Context) ([]todo.List, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

// load reads and decodes the collection. Callers hold fs.mu.
func (fs *FileStore) load() ([]todo.List, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []todo.List{}, nil
		}
		return nil, storageErr("read lists file", err)
	}
	var lists []todo.List
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, storageErr("parse lists file", err)
	}
	sortByUpdated(lists)
	return lists, nil
}

// save encodes and writes the collection. Callers hold fs.mu.
func (fs *FileStore) save(lists []todo.List) error {
	sortByUpdated(lists)
	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return storageErr("encode lists file", err)
	}
	if err := os.WriteFile(fs.path, data, 0644); err != nil {
		return storageErr("write lists file", err)
	}
	return nil
}

// Create implements Store.Create.
func (fs *FileStore) Create(ctx context.Context, list todo.List) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	list.ID = todo.NewID()
	if err := list.Validate(); err != nil {
		return "", err
	}

	lists, err := fs.load()
	if err != nil {
		return "", err
	}
	lists = append(lists, list)
	if err := fs.save(lists); err != nil {
		return "", err
	}
	return list.ID, nil
}

// Update implements Store.Update. An unknown id is stored as a new
// document, matching the upsert semantics of the SQLite backend.
func (fs *FileStore) Update(ctx context.Context, list todo.List) error {
	if err := list.Validate(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	lists, err := fs.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range lists {
		if lists[i].ID == list.ID {
			lists[i] = list
			replaced = true
			break
		}
	}
	if !replaced {
		lists = append(lists, list)
	}
	return fs.save(lists)
}

// Delete implements Store.Delete. Deleting a missing id is a no-op.
func (fs *FileStore) Delete(ctx context.Context, id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	lists, err := fs.load()
	if err != nil {
		return err
	}
	kept := lists[:0]
	for i := range lists {
		if lists[i].ID != id {
			kept = append(kept, lists[i])
		}
	}
	return fs.save(kept)
}

// Subscribe implements Store.Subscribe. The file backend has no change
// notification channel.
func (fs *FileStore) Subscribe(cb func(lists []todo.List)) (func(), error) {
	return nil, ErrSubscribeUnsupported
}

// Close implements Store.Close. Nothing to release.
func (fs *FileStore) Close() error {
	return nil
}
