// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/api"
	"github.com/nibzard/todolist-go/internal/app"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// RunTUI starts the interactive client on top of client.
func RunTUI(ctx context.Context, client app.Client, logger *log.Logger) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	return runProgram(ctx, newTUIModel(ctx, client, logger))
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type focusArea int

const (
	focusList focusArea = iota
	focusForm
)

// chrome is the number of lines around the task list: title, form, footer.
const chrome = 12

type tuiModel struct {
	ctx      context.Context
	ctrl     *app.Controller
	targets  app.Targets
	alerts   *alertQueue
	loading  bool
	pending  int
	cursor   int
	focus    focusArea
	showHelp bool
	height   int
}

// alertQueue is the blocking notifier of the TUI. The first queued message
// is shown as a modal until dismissed.
type alertQueue struct {
	msgs []string
}

func (q *alertQueue) Notify(msg string) {
	q.msgs = append(q.msgs, msg)
}

func (q *alertQueue) current() (string, bool) {
	if len(q.msgs) == 0 {
		return "", false
	}
	return q.msgs[0], true
}

func (q *alertQueue) dismiss() {
	if len(q.msgs) > 0 {
		q.msgs = q.msgs[1:]
	}
}

type loadedMsg struct {
	res app.LoadResult
}

type submittedMsg struct {
	res api.Result[todo.Task]
}

type toggledMsg struct {
	op  app.ToggleOp
	res api.Result[todo.Task]
}

type deletedMsg struct {
	op  app.DeleteOp
	res api.Result[todo.DeletionAck]
}

func newTUIModel(ctx context.Context, client app.Client, logger *log.Logger) *tuiModel {
	alerts := &alertQueue{}
	targets := app.NewTargets()
	return &tuiModel{
		ctx:     ctx,
		ctrl:    app.New(client, targets, alerts, logger),
		targets: targets,
		alerts:  alerts,
		loading: true,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case loadedMsg:
		m.loading = false
		m.ctrl.FinishLoad(msg.res)
		m.clampCursor()
	case submittedMsg:
		m.pending--
		m.ctrl.FinishSubmit(msg.res)
		m.clampCursor()
	case toggledMsg:
		m.pending--
		m.ctrl.FinishToggle(msg.op, msg.res)
	case deletedMsg:
		m.pending--
		m.ctrl.FinishDelete(msg.op, msg.res)
		m.clampCursor()
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// a visible alert blocks every key except its dismissal
	if _, ok := m.alerts.current(); ok {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alerts.dismiss()
		}
		return m, nil
	}

	if m.focus == focusForm {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "h", "?":
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.targets.Tasks.Len()-1 {
			m.cursor++
		}
	case "tab":
		m.focus = focusForm
		m.showHelp = false
	case " ", "x":
		return m, m.toggleCmd()
	case "d", "delete":
		return m, m.deleteCmd()
	}
	return m, nil
}

func (m *tuiModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyTab:
		m.focus = focusList
	case tea.KeyEnter:
		return m, m.submitCmd()
	case tea.KeyBackspace:
		m.targets.Form.Backspace()
	case tea.KeyLeft:
		m.targets.Users.Prev()
	case tea.KeyRight:
		m.targets.Users.Next()
	case tea.KeySpace:
		m.targets.Form.Type(' ')
	case tea.KeyRunes:
		m.targets.Form.Type(msg.Runes...)
	}
	return m, nil
}

func (m *tuiModel) loadCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{res: m.ctrl.RunLoad(ctx)}
	}
}

func (m *tuiModel) submitCmd() tea.Cmd {
	in, err := m.ctrl.BeginSubmit()
	if err != nil {
		return nil
	}
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return submittedMsg{res: m.ctrl.RunSubmit(ctx, in)}
	}
}

func (m *tuiModel) toggleCmd() tea.Cmd {
	node := m.targets.Tasks.At(m.cursor)
	if node == nil {
		return nil
	}
	op, err := m.ctrl.BeginToggle(node.Key)
	if err != nil {
		// busy nodes ignore the click, like a disabled checkbox
		return nil
	}
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return toggledMsg{op: op, res: m.ctrl.RunToggle(ctx, op)}
	}
}

func (m *tuiModel) deleteCmd() tea.Cmd {
	node := m.targets.Tasks.At(m.cursor)
	if node == nil {
		return nil
	}
	op, err := m.ctrl.BeginDelete(node.Key)
	if err != nil {
		return nil
	}
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return deletedMsg{op: op, res: m.ctrl.RunDelete(ctx, op)}
	}
}

func (m *tuiModel) clampCursor() {
	if n := m.targets.Tasks.Len(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

var alertStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("196")).
	Padding(0, 2)

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if msg, ok := m.alerts.current(); ok {
		b.WriteString(alertStyle.Render(msg + "\n\n[enter] OK"))
		b.WriteString("\n")
		return b.String()
	}

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.targets.Tasks.Len(), m.pending)
		return b.String()
	}

	if m.loading {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, 0, 0)
		return b.String()
	}

	b.WriteString(view.FormatForm(m.targets.Form, m.targets.Users, m.focus == focusForm))
	b.WriteString("\n\n")

	cursor := m.cursor
	if m.focus == focusForm {
		cursor = -1
	}
	height := 0
	if m.height > 0 {
		height = max(m.height-chrome, 3)
	}
	b.WriteString(view.FormatWindow(m.targets.Tasks, cursor, height))
	b.WriteString("\n")
	writeFooter(&b, m.targets.Tasks.Len(), m.pending)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "Todo List"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up, k        Move up\n")
	b.WriteString("  down, j      Move down\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  d, delete    Delete task\n")
	b.WriteString("  tab          Focus the new task form\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
	b.WriteString("New task form\n\n")
	b.WriteString("  left, right  Choose user\n")
	b.WriteString("  enter        Add task\n")
	b.WriteString("  esc, tab     Back to the list\n\n")
}

func writeFooter(b *strings.Builder, tasks, pending int) {
	line := fmt.Sprintf("Press h for help | q to quit | %d tasks", tasks)
	if pending > 0 {
		line += fmt.Sprintf(" | %d pending", pending)
	}
	b.WriteString(line + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
