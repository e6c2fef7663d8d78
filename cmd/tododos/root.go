package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tododos/tododos/internal/config"
	"github.com/tododos/tododos/internal/notify"
	"github.com/tododos/tododos/internal/store"
	"github.com/tododos/tododos/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "tododos",
	Short: "Personal todo lists with optimistic sync",
	Long: `Tododos manages named todo lists backed by a local document store.

Lists live in a SQLite document database by default (a plain JSON file
with the "file" backend). Edits apply optimistically and sync to the
store; run 'tododos serve' to push changes to other clients in real
time.`,
	SilenceUsage: true,
}

// app bundles everything a command needs: configuration, the gateway,
// the sync store and its overlay session, preferences and the
// notification hub.
type app struct {
	cfg     *config.Config
	gateway store.Store
	store   *sync.Store
	session *sync.Session
	prefs   *store.Prefs
	notes   *notify.Hub
}

// openGateway builds the configured persistence backend.
func openGateway(cfg *config.Config) (store.Store, error) {
	logger := cfg.Logger("[store] ")
	switch cfg.Backend {
	case config.BackendFile:
		return store.OpenFile(cfg.FilePath(), logger)
	default:
		return store.OpenSQLite(store.SQLiteConfig{
			Path:     cfg.DBPath(),
			PushAddr: cfg.PushAddr,
			Logger:   logger,
		})
	}
}

// setupApp loads configuration, opens the gateway and populates the
// sync store with a one-shot load. Commands that need a live
// subscription (watch, serve) wire their own.
func setupApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	gateway, err := openGateway(cfg)
	if err != nil {
		return nil, err
	}

	notes := notify.NewHub(0, cfg.Logger("[notify] "))
	syncStore := sync.New(gateway, notes, cfg.Logger("[sync] "))
	session := sync.NewSession(syncStore)

	if err := syncStore.Load(ctx); err != nil {
		_ = gateway.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		gateway: gateway,
		store:   syncStore,
		session: session,
		prefs:   store.NewPrefs(cfg.DataDir),
		notes:   notes,
	}, nil
}

// close releases app resources.
func (a *app) close() {
	a.store.Close()
	_ = a.gateway.Close()
}

// flushNotes prints any notifications the operation produced.
func (a *app) flushNotes() {
	for _, n := range a.notes.Active() {
		fmt.Println(renderNote(n))
		a.notes.Dismiss(n.ID)
	}
}
