package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tododos/tododos/internal/push"
	"github.com/tododos/tododos/internal/todo"
)

// debounceInterval batches rapid writes into one reload. A burst of
// updates (renumbering after a drag, for example) produces a single
// payload.
const debounceInterval = 100 * time.Millisecond

// Subscribe implements Store.Subscribe for the SQLite backend.
//
// When a push hub address is configured the subscription is fed over
// WebSocket by the hub. Otherwise the store watches its own data
// directory: every write bumps the changelog marker, the watcher
// debounces the events and reloads the full collection.
//
// The first payload is delivered shortly after activation, so a caller
// that subscribes does not need a separate LoadAll.
func (st *SQLiteStore) Subscribe(cb func(lists []todo.List)) (func(), error) {
	st.mu.Lock()
	if st.subscribed {
		st.mu.Unlock()
		return nil, fmt.Errorf("subscription already active")
	}
	st.subscribed = true
	st.mu.Unlock()

	release := func() {
		st.mu.Lock()
		st.subscribed = false
		st.mu.Unlock()
	}

	if st.pushAddr != "" {
		stop, err := push.Subscribe(st.pushAddr, st.logger, cb)
		if err != nil {
			release()
			return nil, storageErr("connect to push hub", err)
		}
		var once sync.Once
		return func() {
			once.Do(func() {
				stop()
				release()
			})
		}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		release()
		return nil, storageErr("create watcher", err)
	}
	if err := watcher.Add(st.dataDir); err != nil {
		_ = watcher.Close()
		release()
		return nil, storageErr("watch data directory", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go st.watchLoop(watcher, cb, done, &wg)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
			wg.Wait()
			release()
		})
	}
	return stop, nil
}

// watchLoop delivers the initial payload, then reloads and re-delivers
// whenever the changelog marker changes.
func (st *SQLiteStore) watchLoop(watcher *fsnotify.Watcher, cb func([]todo.List), done chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	st.deliver(cb)

	ticker := time.NewTicker(debounceInterval)
	defer ticker.Stop()

	var dirty bool
	for {
		select {
		case <-done:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != changelogName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			dirty = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			st.logger.Printf("Watcher error: %v", err)

		case <-ticker.C:
			if dirty {
				dirty = false
				st.deliver(cb)
			}
		}
	}
}

// deliver loads the full collection and hands it to the subscriber.
// Load failures are logged, not propagated; the next change will
// trigger another attempt.
func (st *SQLiteStore) deliver(cb func([]todo.List)) {
	lists, err := st.LoadAll(context.Background())
	if err != nil {
		st.logger.Printf("Failed to load lists for subscriber: %v", err)
		return
	}
	cb(lists)
}
