// Package fakeapi is a local JSONPlaceholder-compatible to-do server backed by
// sqlite. It serves the same five endpoints the client consumes, for offline
// development and end-to-end tests.
package fakeapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nibzard/todolist-go/internal/todo"
)

// ErrNotFound is returned for an unknown task id.
var ErrNotFound = errors.New("task not found")

// TasksPerUser is the number of seeded tasks per user. With ten users the
// first created task gets id 201, as on the public server.
const TasksPerUser = 20

var seedUsers = []string{
	"Leanne Graham",
	"Ervin Howell",
	"Clementine Bauch",
	"Patricia Lebsack",
	"Chelsey Dietrich",
	"Mrs. Dennis Schulist",
	"Kurtis Weissnat",
	"Nicholas Runolfsdottir V",
	"Glenna Reichert",
	"Clementina DuBuque",
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id);
`

// Store keeps users and tasks in sqlite.
type Store struct {
	db *sql.DB
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	UserID    *int    `json:"userId"`
}

// Open opens the sqlite database at dsn, creates the tables and seeds them
// when empty. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for i, name := range seedUsers {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", i+1, name); err != nil {
			return fmt.Errorf("seed user %d: %w", i+1, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO todos (id, user_id, title, completed) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	id := 1
	for userID := 1; userID <= len(seedUsers); userID++ {
		for n := 0; n < TasksPerUser; n++ {
			title := fmt.Sprintf("task %d of %s", n+1, seedUsers[userID-1])
			if _, err := stmt.ExecContext(ctx, id, userID, title, id%3 == 0); err != nil {
				return fmt.Errorf("seed task %d: %w", id, err)
			}
			id++
		}
	}

	return tx.Commit()
}

// Users returns every user ordered by id.
func (s *Store) Users(ctx context.Context) ([]todo.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []todo.User{}
	for rows.Next() {
		var u todo.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Tasks returns every task ordered by id.
func (s *Store) Tasks(ctx context.Context) ([]todo.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, completed, user_id FROM todos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []todo.Task{}
	for rows.Next() {
		var t todo.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Task returns one task or ErrNotFound.
func (s *Store) Task(ctx context.Context, id int) (todo.Task, error) {
	var t todo.Task
	err := s.db.QueryRowContext(ctx, "SELECT id, title, completed, user_id FROM todos WHERE id = ?", id).
		Scan(&t.ID, &t.Title, &t.Completed, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Task{}, ErrNotFound
	}
	if err != nil {
		return todo.Task{}, fmt.Errorf("query task %d: %w", id, err)
	}
	return t, nil
}

// CreateTask inserts a task and returns it with its new id.
func (s *Store) CreateTask(ctx context.Context, in todo.NewTask) (todo.Task, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (user_id, title, completed) VALUES (?, ?, ?)",
		in.UserID, in.Title, in.Completed)
	if err != nil {
		return todo.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return todo.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return todo.Task{ID: int(id), Title: in.Title, Completed: in.Completed, UserID: in.UserID}, nil
}

// UpdateTask applies patch to the task and returns the result.
func (s *Store) UpdateTask(ctx context.Context, id int, patch TaskPatch) (todo.Task, error) {
	t, err := s.Task(ctx, id)
	if err != nil {
		return todo.Task{}, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.UserID != nil {
		t.UserID = *patch.UserID
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE todos SET title = ?, completed = ?, user_id = ? WHERE id = ?",
		t.Title, t.Completed, t.UserID, id); err != nil {
		return todo.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return t, nil
}

// DeleteTask removes a task or returns ErrNotFound.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
