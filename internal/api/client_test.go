package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/todo"
)

type recordingJournal struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *recordingJournal) Record(e logging.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestListUsers(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `[{"id":1,"name":"Leanne Graham","username":"Bret"},{"id":2,"name":"Ervin Howell"}]`)
	})

	res := New(srv.URL + "/").ListUsers(context.Background())
	if !res.OK() {
		t.Fatalf("ListUsers: %v", res.Err)
	}
	want := []todo.User{{ID: 1, Name: "Leanne Graham"}, {ID: 2, Name: "Ervin Howell"}}
	if len(res.Value) != len(want) {
		t.Fatalf("got %d users, want %d", len(res.Value), len(want))
	}
	for i := range want {
		if res.Value[i] != want[i] {
			t.Errorf("user %d: got %+v, want %+v", i, res.Value[i], want[i])
		}
	}
}

func TestListTasks(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"userId":1,"id":1,"title":"delectus aut autem","completed":false},{"userId":1,"id":4,"title":"et porro tempora","completed":true}]`)
	})

	res := New(srv.URL).ListTasks(context.Background())
	if !res.OK() {
		t.Fatalf("ListTasks: %v", res.Err)
	}
	if len(res.Value) != 2 {
		t.Fatalf("got %d tasks, want 2", len(res.Value))
	}
	if res.Value[1] != (todo.Task{ID: 4, Title: "et porro tempora", Completed: true, UserID: 1}) {
		t.Errorf("unexpected task: %+v", res.Value[1])
	}
}

func TestNonSuccessStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	res := New(srv.URL).ListTasks(context.Background())
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Value != nil {
		t.Errorf("failed request should carry no data, got %v", res.Value)
	}

	var reqErr *RequestError
	if !errors.As(res.Err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T", res.Err)
	}
	if reqErr.Status != http.StatusNotFound || !reqErr.StatusFailure() {
		t.Errorf("status: got %d", reqErr.Status)
	}
	if reqErr.Error() != "Error status 404" {
		t.Errorf("message: got %q", reqErr.Error())
	}
	if reqErr.Op != "listTasks" || reqErr.Method != http.MethodGet {
		t.Errorf("unexpected op/method: %s %s", reqErr.Op, reqErr.Method)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := New(url).ListUsers(context.Background())
	var reqErr *RequestError
	if !errors.As(res.Err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", res.Err)
	}
	if reqErr.Status != 0 || reqErr.StatusFailure() {
		t.Errorf("network failure should have no status, got %d", reqErr.Status)
	}
}

func TestMalformedBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": "not a list"`)
	})

	for _, check := range []bool{true, false} {
		res := New(srv.URL, WithSchemaCheck(check)).ListUsers(context.Background())
		var reqErr *RequestError
		if !errors.As(res.Err, &reqErr) {
			t.Fatalf("schemaCheck=%v: expected *RequestError, got %v", check, res.Err)
		}
		if reqErr.Status != http.StatusOK {
			t.Errorf("schemaCheck=%v: status got %d", check, reqErr.Status)
		}
	}
}

func TestSchemaCheck(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1,"title":"missing fields"}]`)
	})

	res := New(srv.URL, WithSchemaCheck(true)).ListTasks(context.Background())
	var perr *todo.PayloadError
	if !errors.As(res.Err, &perr) {
		t.Fatalf("expected *todo.PayloadError, got %v", res.Err)
	}
	if perr.Kind != todo.PayloadTasks {
		t.Errorf("kind: got %q", perr.Kind)
	}

	res = New(srv.URL, WithSchemaCheck(false)).ListTasks(context.Background())
	if !res.OK() {
		t.Fatalf("without schema check the body should decode: %v", res.Err)
	}
}

func TestCreateTask(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/todos" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json; charset=UTF-8" {
			t.Errorf("Content-Type: got %q", ct)
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if in["title"] != "Buy milk" || in["completed"] != false || in["userId"] != float64(3) {
			t.Errorf("unexpected body: %v", in)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"title":"Buy milk","completed":false,"userId":3,"id":201}`)
	})

	res := New(srv.URL).CreateTask(context.Background(), todo.NewTask{Title: "Buy milk", UserID: 3})
	if !res.OK() {
		t.Fatalf("CreateTask: %v", res.Err)
	}
	want := todo.Task{ID: 201, Title: "Buy milk", UserID: 3}
	if res.Value != want {
		t.Errorf("got %+v, want %+v", res.Value, want)
	}
}

func TestSetTaskCompletedSendsOnlyCompleted(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/todos/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(bytes.TrimSpace(body)) != `{"completed":true}` {
			t.Errorf("body: got %s", body)
		}
		io.WriteString(w, `{"id":7,"title":"seven","completed":true,"userId":1}`)
	})

	task := todo.Task{ID: 7, Title: "seven", UserID: 1}
	res := New(srv.URL).SetTaskCompleted(context.Background(), task, true)
	if !res.OK() {
		t.Fatalf("SetTaskCompleted: %v", res.Err)
	}
	if !res.Value.Completed {
		t.Error("expected completed task in response")
	}
}

func TestDeleteTask(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"empty object", http.StatusOK, `{}`, ""},
		{"empty body", http.StatusOK, ``, "empty response body"},
		{"no content", http.StatusNoContent, ``, "empty response body"},
		{"not json", http.StatusOK, `gone`, "decode body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/todos/5" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			res := New(srv.URL).DeleteTask(context.Background(), 5)
			if tt.wantErr == "" {
				if !res.OK() {
					t.Fatalf("DeleteTask: %v", res.Err)
				}
				if len(res.Value) != 0 {
					t.Errorf("ack: got %v", res.Value)
				}
				return
			}
			if res.OK() {
				t.Fatal("expected DeleteTask to fail")
			}
			var reqErr *RequestError
			if !errors.As(res.Err, &reqErr) || reqErr.Status != tt.status {
				t.Fatalf("expected *RequestError with status %d, got %v", tt.status, res.Err)
			}
			if !strings.Contains(res.Err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", res.Err, tt.wantErr)
			}
		})
	}
}

func TestJournalAndUserAgent(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "todolist-test" {
			t.Errorf("User-Agent: got %q", ua)
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `[]`)
	})

	journal := &recordingJournal{}
	var logs bytes.Buffer
	client := New(srv.URL,
		WithJournal(journal),
		WithUserAgent("todolist-test"),
		WithLogger(logging.NewTestLogger(&logs)),
	)

	client.ListUsers(context.Background())
	client.DeleteTask(context.Background(), 9)

	if len(journal.events) != 2 {
		t.Fatalf("expected 2 journal events, got %d", len(journal.events))
	}
	ok, failed := journal.events[0], journal.events[1]
	if ok.Type != logging.EventRequest || ok.Path != "/users" || ok.Status != 200 || ok.Error != "" {
		t.Errorf("unexpected success event: %+v", ok)
	}
	if failed.Method != http.MethodDelete || failed.TaskID != 9 || failed.Status != 500 {
		t.Errorf("unexpected failure event: %+v", failed)
	}
	if failed.Error != "Error status 500" {
		t.Errorf("failure event error: got %q", failed.Error)
	}
	if !strings.Contains(logs.String(), "request failed") {
		t.Errorf("expected debug log of the failure, got %q", logs.String())
	}
}

func TestContextCancellation(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(srv.URL).ListUsers(ctx)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
}
