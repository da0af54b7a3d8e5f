// Package view holds the render targets of the to-do client: the task list,
// the user select and the new-task form. Targets are plain in-memory models;
// the terminal UI and the CLI draw them with the Format helpers.
//
// Targets are not safe for concurrent use. All mutations are expected to
// happen on one goroutine.
package view

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nibzard/todolist-go/internal/todo"
)

// Key identifies one rendered task node. The server id alone is not enough:
// the same task can be rendered twice, so every node also gets a random token.
type Key struct {
	TaskID int
	Token  uuid.UUID
}

// NewKey returns a fresh key for taskID.
func NewKey(taskID int) Key {
	return Key{TaskID: taskID, Token: uuid.New()}
}

// String renders the key for display and logs.
func (k Key) String() string {
	return fmt.Sprintf("%d-%s", k.TaskID, k.Token)
}

// Node is one rendered task: a checkbox, the title, the owner and a delete
// control.
type Node struct {
	Key      Key
	Task     todo.Task
	Owner    string
	Checked  bool
	Disabled bool
}

// TaskList is the ordered list of task nodes with an index by key.
type TaskList struct {
	nodes []*Node
	index map[Key]*Node
}

// NewTaskList creates an empty list.
func NewTaskList() *TaskList {
	return &TaskList{index: make(map[Key]*Node)}
}

// RenderTaskList appends one node per task, resolving each owner by the
// first user whose id matches the task's user id.
func (l *TaskList) RenderTaskList(tasks []todo.Task, users []todo.User) {
	for _, task := range tasks {
		l.RenderTaskNode(task, todo.OwnerName(users, task.UserID), false)
	}
}

// RenderTaskNode always creates a new node, appended or prepended, and
// returns its key.
func (l *TaskList) RenderTaskNode(task todo.Task, owner string, prepend bool) Key {
	node := &Node{
		Key:     NewKey(task.ID),
		Task:    task,
		Owner:   owner,
		Checked: task.Completed,
	}
	l.index[node.Key] = node
	if prepend {
		l.nodes = append([]*Node{node}, l.nodes...)
	} else {
		l.nodes = append(l.nodes, node)
	}
	return node.Key
}

// Node returns the node for key, or nil.
func (l *TaskList) Node(key Key) *Node {
	return l.index[key]
}

// Nodes returns the nodes in display order. The slice is a copy; the nodes
// are shared.
func (l *TaskList) Nodes() []*Node {
	out := make([]*Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// At returns the node at position i, or nil when out of range.
func (l *TaskList) At(i int) *Node {
	if i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.nodes[i]
}

// Len returns the number of nodes.
func (l *TaskList) Len() int {
	return len(l.nodes)
}

// Index returns the position of key, or -1.
func (l *TaskList) Index(key Key) int {
	if _, ok := l.index[key]; !ok {
		return -1
	}
	for i, n := range l.nodes {
		if n.Key == key {
			return i
		}
	}
	return -1
}

// Remove deletes exactly the node with key. It reports whether a node was
// removed.
func (l *TaskList) Remove(key Key) bool {
	i := l.Index(key)
	if i < 0 {
		return false
	}
	l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
	delete(l.index, key)
	return true
}
