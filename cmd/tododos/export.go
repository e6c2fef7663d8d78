package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tododos/tododos/internal/todo"
)

// snapshot is the YAML wire shape for export/import. It mirrors the
// stored document but keeps the list id inline so a snapshot is
// self-contained.
type snapshot struct {
	ExportedAt time.Time      `yaml:"exportedAt"`
	Lists      []snapshotList `yaml:"lists"`
}

type snapshotList struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Items     []snapshotItem `yaml:"items"`
	CreatedAt time.Time      `yaml:"createdAt"`
	UpdatedAt time.Time      `yaml:"updatedAt"`
	SortBy    string         `yaml:"sortBy,omitempty"`
}

type snapshotItem struct {
	ID        string    `yaml:"id"`
	Text      string    `yaml:"text"`
	Completed bool      `yaml:"completed"`
	CreatedAt time.Time `yaml:"createdAt"`
	Order     *int      `yaml:"order,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all lists as a YAML snapshot",
	Long:  `Export writes every list to a YAML snapshot, or to stdout when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		snap := snapshot{ExportedAt: time.Now()}
		for _, l := range a.store.Lists() {
			sl := snapshotList{
				ID:        l.ID,
				Name:      l.Name,
				CreatedAt: l.CreatedAt,
				UpdatedAt: l.UpdatedAt,
				SortBy:    string(l.SortBy),
			}
			for _, it := range l.Items {
				sl.Items = append(sl.Items, snapshotItem{
					ID:        it.ID,
					Text:      it.Text,
					Completed: it.Completed,
					CreatedAt: it.CreatedAt,
					Order:     it.Order,
				})
			}
			snap.Lists = append(snap.Lists, sl)
		}

		data, err := yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}

		if len(args) == 0 {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Printf("Exported %d lists to %s\n", len(snap.Lists), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import lists from a YAML snapshot",
	Long: `Import reads a snapshot produced by export and loads its lists into
the store. Lists whose id already exists are replaced; everything else
is created fresh with a new id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		var snap snapshot
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}

		existing := make(map[string]bool)
		for _, l := range a.store.Lists() {
			existing[l.ID] = true
		}

		replaced, created := 0, 0
		for _, sl := range snap.Lists {
			list := todo.List{
				ID:        sl.ID,
				Name:      sl.Name,
				CreatedAt: sl.CreatedAt,
				UpdatedAt: sl.UpdatedAt,
				SortBy:    todo.SortMode(sl.SortBy),
			}
			for _, it := range sl.Items {
				list.Items = append(list.Items, todo.Item{
					ID:        it.ID,
					Text:      it.Text,
					Completed: it.Completed,
					CreatedAt: it.CreatedAt,
					Order:     it.Order,
				})
			}

			if existing[list.ID] {
				if err := a.store.UpdateList(cmd.Context(), list); err != nil {
					return fmt.Errorf("failed to import list %q: %w", list.Name, err)
				}
				replaced++
				continue
			}
			if err := a.gateway.Update(cmd.Context(), list); err != nil {
				// Update is an upsert on both backends, so a missing id
				// becomes a create that keeps the snapshot's id.
				return fmt.Errorf("failed to import list %q: %w", list.Name, err)
			}
			created++
		}

		fmt.Printf("Imported %d lists (%d new, %d replaced)\n", created+replaced, created, replaced)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
