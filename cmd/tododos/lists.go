package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tododos/tododos/internal/todo"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show all lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		lists := a.session.Overlay.Visible()
		if len(lists) == 0 {
			fmt.Println(styleMeta.Render("No lists yet. Create your first list!"))
			return nil
		}

		current := a.prefs.LoadCurrentList()
		for _, l := range lists {
			marker := "  "
			if l.ID == current {
				marker = styleMarker.Render("→ ")
			}
			fmt.Printf("%s%s %s\n", marker, styleTitle.Render(l.Name),
				styleMeta.Render(fmt.Sprintf("(%d items, updated %s)",
					len(l.Items), l.UpdatedAt.Format("2006-01-02 15:04"))))
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new list and switch to it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		name := strings.Join(args, " ")
		id, err := a.session.CreateList(cmd.Context(), name)
		if err != nil {
			a.flushNotes()
			return err
		}

		if err := a.prefs.SaveCurrentList(id); err != nil {
			return err
		}
		a.flushNotes()
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <name-or-id>",
	Short: "Switch to a list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := resolveList(a, strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.session.Overlay.Select(list.ID)
		if err := a.prefs.SaveCurrentList(list.ID); err != nil {
			return err
		}
		fmt.Printf("Now using %s\n", styleTitle.Render(list.Name))
		return nil
	},
}

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name-or-id>",
	Short: "Delete a list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := resolveList(a, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if !deleteYes {
			confirmed := false
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", list.Name)).
				Description("This action cannot be undone.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled")
				return nil
			}
		}

		if err := a.store.DeleteList(cmd.Context(), list.ID, list.Name); err != nil {
			a.flushNotes()
			return err
		}

		if a.prefs.LoadCurrentList() == list.ID {
			_ = a.prefs.SaveCurrentList("")
		}
		a.flushNotes()
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <name-or-id> <new-name>",
	Short: "Rename a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := resolveList(a, args[0])
		if err != nil {
			return err
		}
		if err := a.session.RenameList(cmd.Context(), list.ID, args[1]); err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Renamed %q to %q\n", list.Name, args[1])
		return nil
	},
}

// resolveList finds a list by exact id, then by exact name, then by
// unique name prefix.
func resolveList(a *app, arg string) (todo.List, error) {
	lists := a.session.Overlay.Visible()

	for _, l := range lists {
		if l.ID == arg {
			return l, nil
		}
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, arg) {
			return l, nil
		}
	}

	var matches []todo.List
	for _, l := range lists {
		if strings.HasPrefix(strings.ToLower(l.Name), strings.ToLower(arg)) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return todo.List{}, fmt.Errorf("no list matches %q", arg)
	default:
		return todo.List{}, fmt.Errorf("%q is ambiguous (%d lists match)", arg, len(matches))
	}
}

// currentList returns the selected list, preferring the saved
// preference.
func currentList(a *app) (todo.List, error) {
	id := a.prefs.LoadCurrentList()
	if id == "" {
		return todo.List{}, fmt.Errorf("no list selected; run 'tododos use <name>' first")
	}
	for _, l := range a.session.Overlay.Visible() {
		if l.ID == id {
			return l, nil
		}
	}
	return todo.List{}, fmt.Errorf("selected list no longer exists; run 'tododos use <name>'")
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renameCmd)
}
