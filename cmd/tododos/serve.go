package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tododos/tododos/internal/config"
	"github.com/tododos/tododos/internal/push"
	"github.com/tododos/tododos/internal/store"
	"github.com/tododos/tododos/internal/todo"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Push list changes to connected clients over WebSocket",
	Long: `Serve watches the data store and broadcasts the full list collection
to every connected WebSocket client whenever it changes. Point other
machines (or other terminals) at this process by setting push_addr in
their config, e.g. push_addr: "localhost:8377".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendSQLite {
			return fmt.Errorf("serve requires the sqlite backend, got %q", cfg.Backend)
		}

		logger := cfg.Logger("[serve] ")

		// The serving process watches the database directly; it must
		// not chain onto another push hub.
		gateway, err := store.OpenSQLite(store.SQLiteConfig{
			Path:   cfg.DBPath(),
			Logger: cfg.Logger("[store] "),
		})
		if err != nil {
			return err
		}
		defer gateway.Close()

		port := servePort
		if port == 0 {
			port = cfg.PushPort
		}

		hub := push.NewHub(&push.Config{
			Port: port,
			Snapshot: func() []todo.List {
				lists, err := gateway.LoadAll(context.Background())
				if err != nil {
					logger.Printf("snapshot load failed: %v", err)
					return nil
				}
				return lists
			},
			Logger: cfg.Logger("[push] "),
		})
		if err := hub.Start(); err != nil {
			return fmt.Errorf("failed to start push hub: %w", err)
		}
		defer hub.Stop()

		unsub, err := gateway.Subscribe(func(lists []todo.List) {
			hub.BroadcastLists(lists)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to store: %w", err)
		}
		defer unsub()

		fmt.Printf("Serving on ws://%s/ws (Ctrl-C to stop)\n", hub.Addr())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		fmt.Println("Shutting down")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
