package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tododos/tododos/internal/notify"
	"github.com/tododos/tododos/internal/todo"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDone    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleMeta    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleMarker  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// renderNote formats a notification for the terminal.
func renderNote(n notify.Notification) string {
	switch n.Level {
	case notify.LevelSuccess:
		return styleSuccess.Render("✓ " + n.Message)
	case notify.LevelError:
		return styleError.Render("✗ " + n.Message)
	default:
		return styleInfo.Render("• " + n.Message)
	}
}

// renderItem formats one item line: "  3. [x] buy milk".
func renderItem(index int, it todo.Item) string {
	box := "[ ]"
	text := it.Text
	if it.Completed {
		box = "[x]"
		text = styleDone.Render(text)
	}
	return fmt.Sprintf("  %d. %s %s", index, box, text)
}

// renderListHeader formats the list title with its progress line.
func renderListHeader(l todo.List) string {
	header := styleTitle.Render(l.Name)
	meta := fmt.Sprintf("%d of %d completed", l.CompletedCount(), len(l.Items))
	if l.SortBy != "" && l.SortBy != todo.SortNormal {
		meta += fmt.Sprintf(" · sort: %s", l.SortBy)
	}
	return header + "\n" + styleMeta.Render(meta)
}
