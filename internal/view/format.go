package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DeleteMark is the delete control drawn at the end of every task row.
const DeleteMark = "✕"

var (
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	disabledStyle = lipgloss.NewStyle().Faint(true)
	ownerStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	deleteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	focusStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1)
	blurStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// Checkbox returns the checkbox text for a node. A disabled box shows the
// pending value with a different bracket.
func Checkbox(n *Node) string {
	mark := " "
	if n.Checked {
		mark = "x"
	}
	if n.Disabled {
		return "{" + mark + "}"
	}
	return "[" + mark + "]"
}

// FormatNode renders one task row.
func FormatNode(n *Node, cursor bool) string {
	pointer := "  "
	if cursor {
		pointer = cursorStyle.Render("> ")
	}

	title := n.Task.Title
	if n.Checked {
		title = doneStyle.Render(title)
	}
	row := fmt.Sprintf("%s %s %s %s", Checkbox(n), title, ownerStyle.Render("by "+n.Owner), deleteStyle.Render(DeleteMark))
	if n.Disabled {
		row = disabledStyle.Render(row)
	}
	return pointer + row
}

// FormatList renders every node, marking the row at cursor. A negative
// cursor marks nothing.
func FormatList(l *TaskList, cursor int) string {
	if l.Len() == 0 {
		return "  No tasks.\n"
	}
	var b strings.Builder
	for i, n := range l.nodes {
		b.WriteString(FormatNode(n, i == cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWindow renders at most height rows, scrolled so the cursor row is
// visible. A height below one renders the whole list.
func FormatWindow(l *TaskList, cursor, height int) string {
	if height < 1 || l.Len() <= height {
		return FormatList(l, cursor)
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	var b strings.Builder
	for i := start; i < start+height && i < l.Len(); i++ {
		b.WriteString(FormatNode(l.nodes[i], i == cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSelect renders the selected user with arrows hinting left/right.
func FormatSelect(s *UserSelect) string {
	return fmt.Sprintf("User: ‹ %s ›", s.Selected().Label)
}

// FormatForm renders the new-task form: the title input and the user select.
func FormatForm(f *Form, s *UserSelect, focused bool) string {
	input := f.Value()
	style := blurStyle
	if focused {
		input += "_"
		style = focusStyle
	}
	body := fmt.Sprintf("New task: %s\n%s", input, FormatSelect(s))
	return style.Render(body)
}
