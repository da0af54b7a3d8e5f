// Package app wires user actions to the API client and the render targets.
//
// Each flow is split in three phases. Begin runs on the UI goroutine and
// validates or prepares the view, Run performs the request and never touches
// the view, Finish applies the server's answer to the view on the UI
// goroutine. The one-shot methods (Load, Submit, Toggle, Delete) run all three
// in sequence.
//
// Two toggles on the same node cannot overlap because Begin disables the node
// until Finish. Nothing orders responses that race through other paths; the
// last Finish to run wins the visible state.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/api"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// Messages shown when the new-task form fails validation.
const (
	MsgEnterTitle = "Enter a task title"
	MsgSelectUser = "Select a user"
)

var (
	// ErrUnknownNode is returned when a key does not resolve to a node.
	ErrUnknownNode = errors.New("unknown task node")
	// ErrNodeBusy is returned when a node is waiting for a toggle response.
	ErrNodeBusy = errors.New("task node is busy")
	// ErrInvalidForm is returned by BeginSubmit after the user was notified.
	ErrInvalidForm = errors.New("invalid task form")
	// ErrNoTaskID is reported when a created task comes back without an id.
	ErrNoTaskID = errors.New("created task has no id")
)

// Client is the subset of the API client the controller needs.
type Client interface {
	ListUsers(ctx context.Context) api.Result[[]todo.User]
	ListTasks(ctx context.Context) api.Result[[]todo.Task]
	CreateTask(ctx context.Context, in todo.NewTask) api.Result[todo.Task]
	SetTaskCompleted(ctx context.Context, task todo.Task, completed bool) api.Result[todo.Task]
	DeleteTask(ctx context.Context, id int) api.Result[todo.DeletionAck]
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify calls f(msg).
func (f NotifierFunc) Notify(msg string) { f(msg) }

// Targets are the render targets the controller updates.
type Targets struct {
	Tasks *view.TaskList
	Users *view.UserSelect
	Form  *view.Form
}

// NewTargets creates empty render targets.
func NewTargets() Targets {
	return Targets{
		Tasks: view.NewTaskList(),
		Users: view.NewUserSelect(),
		Form:  view.NewForm(),
	}
}

// Controller orchestrates loads, submissions, toggles and deletions.
type Controller struct {
	client   Client
	targets  Targets
	notifier Notifier
	logger   *log.Logger
	users    []todo.User
}

// New creates a controller. A nil logger discards output.
func New(client Client, targets Targets, notifier Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		client:   client,
		targets:  targets,
		notifier: notifier,
		logger:   logger,
	}
}

// Targets returns the render targets.
func (c *Controller) Targets() Targets {
	return c.targets
}

// Users returns the users captured by the last load.
func (c *Controller) Users() []todo.User {
	return c.users
}

func (c *Controller) notify(err error) {
	c.notifier.Notify(err.Error())
}

// LoadResult carries both initial fetches.
type LoadResult struct {
	Tasks api.Result[[]todo.Task]
	Users api.Result[[]todo.User]
}

// RunLoad fetches tasks, then users. The requests never overlap.
func (c *Controller) RunLoad(ctx context.Context) LoadResult {
	var res LoadResult
	res.Tasks = c.client.ListTasks(ctx)
	res.Users = c.client.ListUsers(ctx)
	return res
}

// FinishLoad renders whatever was fetched. Each failed fetch is reported and
// treated as empty. The returned error joins the failures.
func (c *Controller) FinishLoad(res LoadResult) error {
	var errs []error
	var tasks []todo.Task
	if res.Tasks.OK() {
		tasks = res.Tasks.Value
	} else {
		c.notify(res.Tasks.Err)
		errs = append(errs, res.Tasks.Err)
	}
	var users []todo.User
	if res.Users.OK() {
		users = res.Users.Value
	} else {
		c.notify(res.Users.Err)
		errs = append(errs, res.Users.Err)
	}

	c.users = users
	c.targets.Tasks.RenderTaskList(tasks, users)
	c.targets.Users.RenderUserOptions(users)
	c.logger.Debug("loaded", "tasks", len(tasks), "users", len(users))
	return errors.Join(errs...)
}

// Load runs the initial load.
func (c *Controller) Load(ctx context.Context) error {
	return c.FinishLoad(c.RunLoad(ctx))
}

// LoadUsers fetches only the users and renders the select options. It serves
// callers that create tasks without showing the list.
func (c *Controller) LoadUsers(ctx context.Context) error {
	res := c.client.ListUsers(ctx)
	if !res.OK() {
		c.notify(res.Err)
		return res.Err
	}
	c.users = res.Value
	c.targets.Users.RenderUserOptions(res.Value)
	return nil
}

// BeginSubmit validates the form. On failure the user is notified, the form
// is left untouched and ErrInvalidForm is returned.
func (c *Controller) BeginSubmit() (todo.NewTask, error) {
	title := c.targets.Form.Value()
	if title == "" {
		c.notifier.Notify(MsgEnterTitle)
		return todo.NewTask{}, ErrInvalidForm
	}
	if c.targets.Users.DefaultSelected() {
		c.notifier.Notify(MsgSelectUser)
		return todo.NewTask{}, ErrInvalidForm
	}
	return todo.NewTask{
		Title:     title,
		Completed: false,
		UserID:    c.targets.Users.Selected().Value,
	}, nil
}

// RunSubmit posts the new task.
func (c *Controller) RunSubmit(ctx context.Context, in todo.NewTask) api.Result[todo.Task] {
	return c.client.CreateTask(ctx, in)
}

// FinishSubmit prepends the created task and clears the input. A failure
// is reported and changes nothing.
func (c *Controller) FinishSubmit(res api.Result[todo.Task]) (view.Key, bool) {
	if !res.OK() {
		c.notify(res.Err)
		return view.Key{}, false
	}
	task := res.Value
	if task.IsZero() {
		c.notify(ErrNoTaskID)
		return view.Key{}, false
	}
	key := c.targets.Tasks.RenderTaskNode(task, todo.OwnerName(c.users, task.UserID), true)
	c.targets.Form.Clear()
	c.logger.Debug("task created", "id", task.ID, "key", key)
	return key, true
}

// Submit validates the form and creates the task.
func (c *Controller) Submit(ctx context.Context) (view.Key, bool) {
	in, err := c.BeginSubmit()
	if err != nil {
		return view.Key{}, false
	}
	return c.FinishSubmit(c.RunSubmit(ctx, in))
}

// ToggleOp is an in-flight checkbox toggle.
type ToggleOp struct {
	Key       view.Key
	Task      todo.Task
	Completed bool // requested state
	previous  bool
}

// BeginToggle flips the node's checkbox and disables it until FinishToggle.
func (c *Controller) BeginToggle(key view.Key) (ToggleOp, error) {
	node := c.targets.Tasks.Node(key)
	if node == nil {
		return ToggleOp{}, fmt.Errorf("toggle %s: %w", key, ErrUnknownNode)
	}
	if node.Disabled {
		return ToggleOp{}, fmt.Errorf("toggle %s: %w", key, ErrNodeBusy)
	}
	op := ToggleOp{
		Key:       key,
		Task:      node.Task,
		Completed: !node.Checked,
		previous:  node.Checked,
	}
	node.Checked = op.Completed
	node.Disabled = true
	return op, nil
}

// RunToggle patches the completed flag.
func (c *Controller) RunToggle(ctx context.Context, op ToggleOp) api.Result[todo.Task] {
	return c.client.SetTaskCompleted(ctx, op.Task, op.Completed)
}

// FinishToggle re-enables the checkbox. On failure the checkbox returns to its
// pre-click value and the user is notified. A node removed meanwhile is
// ignored.
func (c *Controller) FinishToggle(op ToggleOp, res api.Result[todo.Task]) bool {
	node := c.targets.Tasks.Node(op.Key)
	if !res.OK() {
		c.notify(res.Err)
	}
	if node == nil {
		return res.OK()
	}
	node.Disabled = false
	if !res.OK() {
		node.Checked = op.previous
		return false
	}
	node.Task.Completed = op.Completed
	return true
}

// Toggle flips the checkbox of the node with key and waits for the server.
func (c *Controller) Toggle(ctx context.Context, key view.Key) (bool, error) {
	op, err := c.BeginToggle(key)
	if err != nil {
		return false, err
	}
	return c.FinishToggle(op, c.RunToggle(ctx, op)), nil
}

// DeleteOp is an in-flight deletion.
type DeleteOp struct {
	Key    view.Key
	TaskID int
}

// BeginDelete resolves the node to delete. The view is not changed.
func (c *Controller) BeginDelete(key view.Key) (DeleteOp, error) {
	node := c.targets.Tasks.Node(key)
	if node == nil {
		return DeleteOp{}, fmt.Errorf("delete %s: %w", key, ErrUnknownNode)
	}
	return DeleteOp{Key: key, TaskID: node.Task.ID}, nil
}

// RunDelete sends the DELETE request.
func (c *Controller) RunDelete(ctx context.Context, op DeleteOp) api.Result[todo.DeletionAck] {
	return c.client.DeleteTask(ctx, op.TaskID)
}

// FinishDelete removes exactly the node with the op's key once the server
// confirmed. On failure the node stays and the user is notified.
func (c *Controller) FinishDelete(op DeleteOp, res api.Result[todo.DeletionAck]) bool {
	if !res.OK() {
		c.notify(res.Err)
		return false
	}
	if !c.targets.Tasks.Remove(op.Key) {
		c.logger.Debug("deleted node already gone", "key", op.Key)
	}
	return true
}

// Delete removes the node with key after the server confirmed the deletion.
func (c *Controller) Delete(ctx context.Context, key view.Key) (bool, error) {
	op, err := c.BeginDelete(key)
	if err != nil {
		return false, err
	}
	return c.FinishDelete(op, c.RunDelete(ctx, op)), nil
}
