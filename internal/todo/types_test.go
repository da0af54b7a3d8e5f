package todo

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTaskJSONFieldNames(t *testing.T) {
	data := []byte(`{"userId": 3, "id": 7, "title": "Buy milk", "completed": true}`)
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := Task{ID: 7, Title: "Buy milk", Completed: true, UserID: 3}
	if task != want {
		t.Errorf("task: got %+v, want %+v", task, want)
	}

	out, err := json.Marshal(NewTask{Title: "x", UserID: 2})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"title":"x","completed":false,"userId":2}` {
		t.Errorf("NewTask JSON: got %s", out)
	}
}

func TestUserIgnoresExtraFields(t *testing.T) {
	data := []byte(`{"id": 1, "name": "Leanne Graham", "username": "Bret", "address": {"city": "Gwenborough"}}`)
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if u.ID != 1 || u.Name != "Leanne Graham" {
		t.Errorf("user: got %+v", u)
	}
}

func TestTaskIsZero(t *testing.T) {
	if !(&Task{}).IsZero() {
		t.Error("empty task should be zero")
	}
	if (&Task{ID: 1}).IsZero() {
		t.Error("task with id should not be zero")
	}
}

func TestNewTaskValidate(t *testing.T) {
	tests := []struct {
		name     string
		in       NewTask
		wantPath string
	}{
		{"valid", NewTask{Title: "Buy milk", UserID: 3}, ""},
		{"empty title", NewTask{Title: "", UserID: 3}, "title"},
		{"blank title", NewTask{Title: "   ", UserID: 3}, "title"},
		{"missing user", NewTask{Title: "Buy milk"}, "userId"},
		{"negative user", NewTask{Title: "Buy milk", UserID: -1}, "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantPath == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Path != tt.wantPath {
				t.Errorf("Path: got %q, want %q", ve.Path, tt.wantPath)
			}
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	err := &ValidationError{Path: "title", Err: errors.New("missing required field")}
	if err.Error() != "title: missing required field" {
		t.Errorf("Error(): got %q", err.Error())
	}
	noPath := &ValidationError{Err: errors.New("boom")}
	if noPath.Error() != "boom" {
		t.Errorf("Error(): got %q", noPath.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected Unwrap to expose the underlying error")
	}
}

func TestOwnerName(t *testing.T) {
	users := []User{
		{ID: 1, Name: "Leanne Graham"},
		{ID: 3, Name: "Clementine Bauch"},
		{ID: 3, Name: "Duplicate"},
	}

	tests := []struct {
		name   string
		userID int
		want   string
	}{
		{"first user", 1, "Leanne Graham"},
		{"first match wins", 3, "Clementine Bauch"},
		{"unknown owner", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnerName(users, tt.userID); got != tt.want {
				t.Errorf("OwnerName(%d): got %q, want %q", tt.userID, got, tt.want)
			}
		})
	}

	if OwnerName(nil, 1) != "" {
		t.Error("expected empty name for nil users")
	}
}

func TestFindUserReturnsPointerIntoSlice(t *testing.T) {
	users := []User{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	u := FindUser(users, 2)
	if u == nil {
		t.Fatal("expected user 2")
	}
	if u != &users[1] {
		t.Error("expected pointer into the original slice")
	}
	if FindUser(users, 9) != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestFilters(t *testing.T) {
	tasks := []Task{
		{ID: 1, UserID: 1, Completed: true},
		{ID: 2, UserID: 2},
		{ID: 3, UserID: 1},
	}

	byUser := FilterByUser(tasks, 1)
	if len(byUser) != 2 || byUser[0].ID != 1 || byUser[1].ID != 3 {
		t.Errorf("FilterByUser: got %+v", byUser)
	}
	done := FilterByCompleted(tasks, true)
	if len(done) != 1 || done[0].ID != 1 {
		t.Errorf("FilterByCompleted(true): got %+v", done)
	}
	pending := FilterByCompleted(tasks, false)
	if len(pending) != 2 {
		t.Errorf("FilterByCompleted(false): got %d tasks, want 2", len(pending))
	}
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name      string
		kind      PayloadKind
		body      string
		wantErr   bool
		wantInErr string
	}{
		{"valid users", PayloadUsers, `[{"id":1,"name":"Leanne Graham","username":"Bret"}]`, false, ""},
		{"empty users", PayloadUsers, `[]`, false, ""},
		{"user missing name", PayloadUsers, `[{"id":1}]`, true, "[0]"},
		{"users not array", PayloadUsers, `{"id":1}`, true, ""},
		{"valid tasks", PayloadTasks, `[{"id":1,"title":"a","completed":false,"userId":1}]`, false, ""},
		{"task title wrong type", PayloadTasks, `[{"id":1,"title":5,"completed":false,"userId":1}]`, true, "[0].title"},
		{"valid task", PayloadTask, `{"id":201,"title":"Buy milk","completed":false,"userId":3}`, false, ""},
		{"task missing completed", PayloadTask, `{"id":201,"title":"Buy milk","userId":3}`, true, ""},
		{"malformed json", PayloadTask, `{"id":`, true, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.kind, []byte(tt.body))
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidatePayload: wantErr=%v, got %v", tt.wantErr, err)
			}
			if tt.wantInErr != "" && !strings.Contains(err.Error(), tt.wantInErr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantInErr, err.Error())
			}
		})
	}
}

func TestValidatePayloadUnknownKind(t *testing.T) {
	if err := ValidatePayload("comments", []byte(`[]`)); err == nil {
		t.Error("expected error for unknown payload kind")
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"/0", "[0]"},
		{"/0/title", "[0].title"},
		{"#/userId", "userId"},
		{"/a~1b", "a/b"},
	}
	for _, tt := range tests {
		if got := jsonPointerToPath(tt.in); got != tt.want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
