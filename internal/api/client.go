// Package api talks to a JSONPlaceholder-style to-do REST API.
//
// Every operation returns a Result instead of surfacing failures to the user.
// Callers decide how a failure is presented.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/todo"
)

const jsonContentType = "application/json; charset=UTF-8"

// Result is the outcome of one request: a value on success, an error otherwise.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the request succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func succeed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// RequestError is the single failure kind of the client. It covers non-2xx
// statuses, transport failures and bodies that cannot be decoded or fail the
// schema check.
type RequestError struct {
	Op     string
	Method string
	URL    string
	Status int   // 0 when no response was received
	Err    error // nil for a plain status failure
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Error status %d", e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusFailure reports whether the server answered with a non-2xx status.
func (e *RequestError) StatusFailure() bool {
	return e.Status != 0 && (e.Status < 200 || e.Status > 299)
}

// Client issues requests against one API base URL.
type Client struct {
	baseURL     string
	http        *http.Client
	journal     logging.Journal
	schemaCheck bool
	userAgent   string
	logger      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its Timeout, if any, is the
// only request timeout the client applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithJournal records every request to j.
func WithJournal(j logging.Journal) Option {
	return func(c *Client) {
		if j != nil {
			c.journal = j
		}
	}
}

// WithSchemaCheck toggles JSON Schema validation of response bodies.
func WithSchemaCheck(enabled bool) Option {
	return func(c *Client) {
		c.schemaCheck = enabled
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		journal: logging.Discard,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) Result[[]todo.User] {
	return do[[]todo.User](ctx, c, request{
		op:     "listUsers",
		method: http.MethodGet,
		path:   "/users",
		kind:   todo.PayloadUsers,
	})
}

// ListTasks fetches every task.
func (c *Client) ListTasks(ctx context.Context) Result[[]todo.Task] {
	return do[[]todo.Task](ctx, c, request{
		op:     "listTasks",
		method: http.MethodGet,
		path:   "/todos",
		kind:   todo.PayloadTasks,
	})
}

// CreateTask posts a new task and returns the server's copy of it.
func (c *Client) CreateTask(ctx context.Context, in todo.NewTask) Result[todo.Task] {
	return do[todo.Task](ctx, c, request{
		op:     "createTask",
		method: http.MethodPost,
		path:   "/todos",
		body:   in,
		kind:   todo.PayloadTask,
	})
}

type completedPatch struct {
	Completed bool `json:"completed"`
}

// SetTaskCompleted patches only the completed flag of task.
func (c *Client) SetTaskCompleted(ctx context.Context, task todo.Task, completed bool) Result[todo.Task] {
	return do[todo.Task](ctx, c, request{
		op:     "setTaskCompleted",
		method: http.MethodPatch,
		path:   taskPath(task.ID),
		body:   completedPatch{Completed: completed},
		kind:   todo.PayloadTask,
		taskID: task.ID,
	})
}

// DeleteTask deletes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id int) Result[todo.DeletionAck] {
	return do[todo.DeletionAck](ctx, c, request{
		op:     "deleteTask",
		method: http.MethodDelete,
		path:   taskPath(id),
		taskID: id,
	})
}

func taskPath(id int) string {
	return "/todos/" + strconv.Itoa(id)
}

type request struct {
	op     string
	method string
	path   string
	body   any
	kind   todo.PayloadKind // empty skips the schema check
	taskID int
}

func do[T any](ctx context.Context, c *Client, r request) Result[T] {
	url := c.baseURL + r.path
	reqErr := func(status int, err error) *RequestError {
		return &RequestError{Op: r.op, Method: r.method, URL: url, Status: status, Err: err}
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fail[T](reqErr(0, fmt.Errorf("encode body: %w", err)))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, url, body)
	if err != nil {
		return fail[T](reqErr(0, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", jsonContentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		e := reqErr(0, err)
		c.record(r, 0, time.Since(start), e)
		return fail[T](e)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		e := reqErr(resp.StatusCode, fmt.Errorf("read body: %w", err))
		c.record(r, resp.StatusCode, elapsed, e)
		return fail[T](e)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := reqErr(resp.StatusCode, nil)
		c.record(r, resp.StatusCode, elapsed, e)
		return fail[T](e)
	}

	// every operation answers with JSON, DELETE included
	if len(bytes.TrimSpace(data)) == 0 {
		e := reqErr(resp.StatusCode, errors.New("empty response body"))
		c.record(r, resp.StatusCode, elapsed, e)
		return fail[T](e)
	}

	if c.schemaCheck && r.kind != "" {
		if err := todo.ValidatePayload(r.kind, data); err != nil {
			e := reqErr(resp.StatusCode, err)
			c.record(r, resp.StatusCode, elapsed, e)
			return fail[T](e)
		}
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		e := reqErr(resp.StatusCode, fmt.Errorf("decode body: %w", err))
		c.record(r, resp.StatusCode, elapsed, e)
		return fail[T](e)
	}

	c.record(r, resp.StatusCode, elapsed, nil)
	return succeed(value)
}

// record writes the request to the journal and the debug log. Journal
// failures are logged and otherwise ignored.
func (c *Client) record(r request, status int, elapsed time.Duration, err error) {
	event := logging.Event{
		Type:       logging.EventRequest,
		Op:         r.op,
		Method:     r.method,
		Path:       r.path,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
		TaskID:     r.taskID,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if jerr := c.journal.Record(event); jerr != nil {
		c.logger.Warn("journal write failed", "error", jerr)
	}

	if err != nil {
		c.logger.Debug("request failed", "op", r.op, "method", r.method, "path", r.path,
			"status", status, "duration", elapsed, "error", err)
		return
	}
	c.logger.Debug("request", "op", r.op, "method", r.method, "path", r.path,
		"status", status, "duration", elapsed)
}
