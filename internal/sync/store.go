package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	stdsync "sync"
	"time"

	"github.com/tododos/tododos/internal/notify"
	"github.com/tododos/tododos/internal/store"
	"github.com/tododos/tododos/internal/todo"
)

// ErrNotFound is returned when a referenced list or item is absent
// from canonical state. Callers treat it as a display fallback, not a
// fault.
var ErrNotFound = errors.New("not found")

// Store owns the canonical list collection.
//
// Every operation catches gateway failures, converts them to a
// user-facing notification and returns an error as the caller's
// success/failure signal; nothing storage-related escapes the Store
// boundary unwrapped.
type Store struct {
	gateway  store.Store
	notifier notify.Notifier
	logger   *log.Logger

	mu        stdsync.Mutex
	lists     []todo.List
	loading   bool
	errMsg    string
	subActive bool
	unsub     func()
	watchers  []func([]todo.List)

	writersMu stdsync.Mutex
	writers   map[string]*stdsync.Mutex
}

// New creates a Store over the given gateway.
//
// If notifier is nil, notifications are dropped. If logger is nil, a
// default logger writing to stderr is used.
func New(gateway store.Store, notifier notify.Notifier, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Store{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		loading:  true,
		writers:  make(map[string]*stdsync.Mutex),
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Error(string)   {}

// Start populates the store and activates the subscription.
//
// When the gateway supports subscriptions the store stays loading
// until the first payload arrives; every payload then replaces the
// canonical collection wholesale. When it does not (or subscription
// setup fails), a single LoadAll populates state once.
//
// Start may be called once per Store lifetime.
func (s *Store) Start(ctx context.Context) error {
	unsub, err := s.gateway.Subscribe(s.applyPayload)
	if err == nil {
		s.mu.Lock()
		s.unsub = unsub
		s.subActive = true
		s.mu.Unlock()
		return nil
	}

	if !errors.Is(err, store.ErrSubscribeUnsupported) {
		s.logger.Printf("Subscription unavailable, falling back to one-shot load: %v", err)
	}

	lists, err := s.gateway.LoadAll(ctx)
	if err != nil {
		msg := "Failed to load lists"
		s.mu.Lock()
		s.loading = false
		s.errMsg = msg
		s.mu.Unlock()
		s.notifier.Error(msg)
		s.logger.Printf("Error loading initial data: %v", err)
		return fmt.Errorf("failed to load lists: %w", err)
	}

	s.applyPayload(lists)
	return nil
}

// Load populates the store with a single one-shot fetch and no
// subscription. Short-lived callers (one command, then exit) use this
// instead of Start; a caller must not mix Load with an active
// subscription.
func (s *Store) Load(ctx context.Context) error {
	lists, err := s.gateway.LoadAll(ctx)
	if err != nil {
		msg := "Failed to load lists"
		s.mu.Lock()
		s.loading = false
		s.errMsg = msg
		s.mu.Unlock()
		s.notifier.Error(msg)
		s.logger.Printf("Error loading lists: %v", err)
		return fmt.Errorf("failed to load lists: %w", err)
	}
	s.applyPayload(lists)
	return nil
}

// Close releases the subscription, if one is active. Safe to call more
// than once.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.subActive = false
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// applyPayload replaces the canonical collection with an authoritative
// payload. Payloads are applied in the order received.
func (s *Store) applyPayload(lists []todo.List) {
	cloned := todo.CloneLists(lists)

	s.mu.Lock()
	s.lists = cloned
	s.loading = false
	s.errMsg = ""
	watchers := append([]func([]todo.List){}, s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		w(todo.CloneLists(cloned))
	}
}

// OnChange registers cb to be invoked with the canonical collection
// whenever it changes. The overlay uses this to reconcile pending
// entries.
func (s *Store) OnChange(cb func(lists []todo.List)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, cb)
	s.mu.Unlock()
}

// Lists returns a copy of the canonical collection, ordered by most
// recently updated first.
func (s *Store) Lists() []todo.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.CloneLists(s.lists)
}

// Find returns the canonical list with the given id.
func (s *Store) Find(id string) (todo.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lists {
		if s.lists[i].ID == id {
			return s.lists[i].Clone(), nil
		}
	}
	return todo.List{}, fmt.Errorf("list %s: %w", id, ErrNotFound)
}

// Loading reports whether the initial payload has not yet arrived.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current user-facing error message, if any.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Subscribed reports whether a live subscription feeds this store.
func (s *Store) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subActive
}

// CreateList constructs a draft list and stores it durably, returning
// the server-assigned identifier for optimistic reconciliation.
//
// On failure the canonical state is left unchanged and a user-facing
// error is reported.
func (s *Store) CreateList(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: list name is required", todo.ErrValidation)
	}

	now := time.Now()
	draft := todo.List{
		Name:      name,
		Items:     []todo.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.gateway.Create(ctx, draft)
	if err != nil {
		s.notifier.Error("Failed to create list")
		s.logger.Printf("Error creating list: %v", err)
		return "", fmt.Errorf("failed to create list: %w", err)
	}

	s.notifier.Success(fmt.Sprintf("Created list %q", name))

	if !s.Subscribed() {
		draft.ID = id
		s.mu.Lock()
		lists := append(todo.CloneLists(s.lists), draft)
		s.mu.Unlock()
		orderByUpdated(lists)
		s.applyPayload(lists)
	}
	return id, nil
}

// UpdateList stamps the list's UpdatedAt and replaces the stored
// document wholesale.
//
// At most one durable update per list is in flight at a time; a second
// update for the same list waits for the first to settle. On failure
// with no active subscription the canonical collection is re-announced
// so projections fall back to it; with a subscription the next push
// self-heals.
func (s *Store) UpdateList(ctx context.Context, list todo.List) error {
	list.Touch()
	if err := list.Validate(); err != nil {
		return err
	}

	gate := s.writerFor(list.ID)
	gate.Lock()
	err := s.gateway.Update(ctx, list)
	gate.Unlock()

	if err != nil {
		s.notifier.Error("Failed to update list")
		s.logger.Printf("Error updating list %s: %v", list.ID, err)
		if !s.Subscribed() {
			s.applyPayload(s.Lists())
		}
		return fmt.Errorf("failed to update list: %w", err)
	}

	if !s.Subscribed() {
		s.mu.Lock()
		lists := todo.CloneLists(s.lists)
		replaced := false
		for i := range lists {
			if lists[i].ID == list.ID {
				lists[i] = list.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			lists = append(lists, list.Clone())
		}
		s.mu.Unlock()
		orderByUpdated(lists)
		s.applyPayload(lists)
	}
	return nil
}

// DeleteList removes a list durably. On success it disappears from
// the canonical collection (when no subscription will do it for us)
// and a confirmation notification is shown; on failure the list stays
// intact and an error notification is shown.
func (s *Store) DeleteList(ctx context.Context, id, name string) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.notifier.Error("Failed to delete list")
		s.logger.Printf("Error deleting list %s: %v", id, err)
		return fmt.Errorf("failed to delete list: %w", err)
	}

	s.notifier.Info(fmt.Sprintf("Deleted list %q", name))

	if !s.Subscribed() {
		s.mu.Lock()
		lists := make([]todo.List, 0, len(s.lists))
		for i := range s.lists {
			if s.lists[i].ID != id {
				lists = append(lists, s.lists[i].Clone())
			}
		}
		s.mu.Unlock()
		s.applyPayload(lists)
	}
	return nil
}

// orderByUpdated sorts a locally assembled collection by UpdatedAt
// descending, matching the order the gateway maintains. Subscription
// payloads arrive pre-ordered and are never re-sorted here.
func orderByUpdated(lists []todo.List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
}

// writerFor returns the per-list write gate, creating it on first use.
func (s *Store) writerFor(id string) *stdsync.Mutex {
	s.writersMu.Lock()
	defer s.writersMu.Unlock()
	gate, ok := s.writers[id]
	if !ok {
		gate = &stdsync.Mutex{}
		s.writers[id] = gate
	}
	return gate
}
