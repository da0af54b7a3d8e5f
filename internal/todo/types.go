// Package todo defines users, tasks and the payloads exchanged with the API.
package todo

import (
	"fmt"
	"strings"
)

// User is an account that can own tasks. Fields the server sends beyond
// id and name are ignored.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Task represents a single to-do item as stored by the server.
type Task struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`
}

// IsZero returns true if the task has no server id.
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// NewTask is the body sent when creating a task.
type NewTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`
}

// DeletionAck is the object returned by a successful delete. The reference
// server answers with an empty object.
type DeletionAck map[string]any

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the fields a create request needs.
func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{
			Path: "title",
			Err:  fmt.Errorf("missing required field"),
		}
	}
	if n.UserID < 1 {
		return &ValidationError{
			Path: "userId",
			Err:  fmt.Errorf("must be a positive user id, got %d", n.UserID),
		}
	}
	return nil
}

// FindUser returns the first user with the given id, or nil if none match.
func FindUser(users []User, id int) *User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// OwnerName returns the display name of the task owner. Unknown owners
// yield an empty name.
func OwnerName(users []User, userID int) string {
	if u := FindUser(users, userID); u != nil {
		return u.Name
	}
	return ""
}

// FilterByUser returns the tasks owned by userID, preserving order.
func FilterByUser(tasks []Task, userID int) []Task {
	var filtered []Task
	for _, t := range tasks {
		if t.UserID == userID {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FilterByCompleted returns the tasks whose completed flag equals done.
func FilterByCompleted(tasks []Task, done bool) []Task {
	var filtered []Task
	for _, t := range tasks {
		if t.Completed == done {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
