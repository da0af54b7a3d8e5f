package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nibzard/todolist-go/internal/api"
	"github.com/nibzard/todolist-go/internal/todo"
)

// syncClient is safe for the concurrent calls RunBulk makes.
type syncClient struct {
	fakeClient
	mu      sync.Mutex
	patched map[int]bool
	deleted []int
	fail    map[int]bool
}

func (s *syncClient) SetTaskCompleted(_ context.Context, task todo.Task, completed bool) api.Result[todo.Task] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[task.ID] {
		return api.Result[todo.Task]{Err: &api.RequestError{Status: 404}}
	}
	s.patched[task.ID] = completed
	task.Completed = completed
	task.Title = "from server"
	return api.Result[todo.Task]{Value: task}
}

func (s *syncClient) DeleteTask(_ context.Context, id int) api.Result[todo.DeletionAck] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[id] {
		return api.Result[todo.DeletionAck]{Err: &api.RequestError{Status: 500}}
	}
	s.deleted = append(s.deleted, id)
	return api.Result[todo.DeletionAck]{Value: todo.DeletionAck{}}
}

func TestRunBulk(t *testing.T) {
	tests := []struct {
		action    BulkAction
		wantState bool
	}{
		{BulkDone, true},
		{BulkUndo, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			client := &syncClient{patched: map[int]bool{}, fail: map[int]bool{4: true}}
			n := &notes{}
			ids := []int{1, 2, 3, 4, 5}

			results := RunBulk(context.Background(), client, n, tt.action, ids, 2)

			if len(results) != len(ids) {
				t.Fatalf("got %d results, want %d", len(results), len(ids))
			}
			for i, r := range results {
				if r.TaskID != ids[i] {
					t.Errorf("result %d: task id %d, want %d", i, r.TaskID, ids[i])
				}
				if r.TaskID == 4 {
					if r.Err == nil {
						t.Error("task 4 should fail")
					}
					continue
				}
				if r.Err != nil || r.Task.Completed != tt.wantState || r.Task.Title != "from server" {
					t.Errorf("result %d: %+v", i, r)
				}
			}
			if len(client.patched) != 4 {
				t.Errorf("patched: got %v", client.patched)
			}
			if len(n.msgs) != 1 || n.msgs[0] != "4: Error status 404" {
				t.Errorf("notifications: got %v", n.msgs)
			}
		})
	}
}

func TestRunBulkDelete(t *testing.T) {
	client := &syncClient{fail: map[int]bool{}}
	results := RunBulk(context.Background(), client, nil, BulkDelete, []int{9, 8}, 0)

	if len(results) != 2 || results[0].TaskID != 9 || results[1].TaskID != 8 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(client.deleted) != 2 {
		t.Errorf("deleted: got %v", client.deleted)
	}
}

func TestRunBulkCancelledReportsEverySkippedID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &syncClient{patched: map[int]bool{}, fail: map[int]bool{}}
	n := &notes{}

	results := RunBulk(ctx, client, n, BulkDone, []int{1, 2, 3}, 2)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.TaskID != i+1 {
			t.Errorf("result %d: task id %d", i, r.TaskID)
		}
		if !errors.Is(r.Err, ErrSkipped) || !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result %d: err %v, want skipped and cancelled", i, r.Err)
		}
	}
	if len(client.patched) != 0 {
		t.Errorf("no request should run, patched %v", client.patched)
	}
	if len(n.msgs) != 3 {
		t.Errorf("every skipped id should be reported, got %v", n.msgs)
	}
}

func TestRunBulkRepeatedIDs(t *testing.T) {
	client := &syncClient{fail: map[int]bool{}}
	results := RunBulk(context.Background(), client, nil, BulkDelete, []int{7, 7}, 1)
	if len(results) != 2 || results[0].Err != nil || results[1].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(client.deleted) != 2 {
		t.Errorf("deleted: got %v", client.deleted)
	}
}
