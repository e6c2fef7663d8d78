package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tododos/tododos/internal/todo"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := currentList(a)
		if err != nil {
			return err
		}

		fmt.Println(renderListHeader(list))
		items := a.session.DisplayItems(list.ID)
		if len(items) == 0 {
			fmt.Println(styleMeta.Render("  No items yet. Add your first item!"))
			return nil
		}
		for i, it := range items {
			fmt.Println(renderItem(i+1, it))
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add an item to the current list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := currentList(a)
		if err != nil {
			return err
		}

		item, err := a.session.AddItem(cmd.Context(), list.ID, strings.Join(args, " "))
		if err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Added %q\n", item.Text)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <n>",
	Short: "Mark item n complete",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setCompleted(cmd, args[0], true) },
}

var undoneCmd = &cobra.Command{
	Use:   "undone <n>",
	Short: "Mark item n not complete",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setCompleted(cmd, args[0], false) },
}

func setCompleted(cmd *cobra.Command, arg string, done bool) error {
	a, err := setupApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	list, item, err := resolveItem(a, arg)
	if err != nil {
		return err
	}
	if err := a.session.SetCompleted(cmd.Context(), list.ID, item.ID, done); err != nil {
		a.flushNotes()
		return err
	}
	state := "done"
	if !done {
		state = "not done"
	}
	fmt.Printf("Marked %q %s\n", item.Text, state)
	return nil
}

var editCmd = &cobra.Command{
	Use:   "edit <n> <text>",
	Short: "Replace item n's text",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, item, err := resolveItem(a, args[0])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		if err := a.session.EditItem(cmd.Context(), list.ID, item.ID, text); err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Updated item %s\n", args[0])
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <n>",
	Short: "Remove item n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, item, err := resolveItem(a, args[0])
		if err != nil {
			return err
		}
		if err := a.session.RemoveItem(cmd.Context(), list.ID, item.ID); err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Removed %q\n", item.Text)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <n> <m>",
	Short: "Move item n to position m",
	Long: `Move item n so it sits where item m currently is. Everything between
the two positions shifts by one, and items are renumbered in display
order. The list stays in manual order afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, moved, err := resolveItem(a, args[0])
		if err != nil {
			return err
		}
		_, target, err := resolveItem(a, args[1])
		if err != nil {
			return err
		}
		if err := a.session.MoveItem(cmd.Context(), list.ID, moved.ID, target.ID); err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Moved %q\n", moved.Text)
		return nil
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Cycle the current list's sort mode",
	Long:  `Cycles normal -> completed-top -> completed-bottom -> normal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list, err := currentList(a)
		if err != nil {
			return err
		}
		mode, err := a.session.CycleSort(cmd.Context(), list.ID)
		if err != nil {
			a.flushNotes()
			return err
		}
		fmt.Printf("Sort mode: %s\n", mode)
		return nil
	},
}

// resolveItem maps a 1-based display position to the item at that
// position in the current list.
func resolveItem(a *app, arg string) (todo.List, todo.Item, error) {
	list, err := currentList(a)
	if err != nil {
		return todo.List{}, todo.Item{}, err
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return todo.List{}, todo.Item{}, fmt.Errorf("item position must be a number, got %q", arg)
	}

	items := a.session.DisplayItems(list.ID)
	if n < 1 || n > len(items) {
		return todo.List{}, todo.Item{}, fmt.Errorf("item %d out of range (list has %d items)", n, len(items))
	}
	return list, items[n-1], nil
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(sortCmd)
}
