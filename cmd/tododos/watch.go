package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tododos/tododos/internal/config"
	"github.com/tododos/tododos/internal/notify"
	"github.com/tododos/tododos/internal/store"
	"github.com/tododos/tododos/internal/sync"
	"github.com/tododos/tododos/internal/todo"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the current list live",
	Long: `Watch subscribes to the store and reprints the current list every
time it changes, whether the change came from this machine or from a
push server. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		gateway, err := openGateway(cfg)
		if err != nil {
			return err
		}
		defer gateway.Close()

		notes := notify.NewHub(0, cfg.Logger("[notify] "))
		syncStore := sync.New(gateway, notes, cfg.Logger("[sync] "))
		session := sync.NewSession(syncStore)
		defer syncStore.Close()

		prefs := store.NewPrefs(cfg.DataDir)
		currentID := prefs.LoadCurrentList()

		render := func(lists []todo.List) {
			var list *todo.List
			for i := range lists {
				if lists[i].ID == currentID {
					list = &lists[i]
					break
				}
			}
			if list == nil && len(lists) > 0 {
				list = &lists[0]
			}
			fmt.Print("\033[H\033[2J")
			if list == nil {
				fmt.Println(styleMeta.Render("No lists yet."))
				return
			}
			fmt.Println(renderListHeader(*list))
			for i, it := range session.DisplayItems(list.ID) {
				fmt.Println(renderItem(i+1, it))
			}
		}

		syncStore.OnChange(render)

		if err := syncStore.Start(cmd.Context()); err != nil {
			return err
		}
		render(syncStore.Lists())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
