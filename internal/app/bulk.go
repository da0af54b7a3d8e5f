package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nibzard/todolist-go/internal/parallel"
	"github.com/nibzard/todolist-go/internal/todo"
)

// BulkAction is a request applied to many tasks at once.
type BulkAction string

const (
	BulkDone   BulkAction = "done"
	BulkUndo   BulkAction = "undo"
	BulkDelete BulkAction = "rm"
)

// ErrSkipped marks a bulk request that never ran, usually because the
// context was cancelled first.
var ErrSkipped = errors.New("request skipped")

// BulkResult is the outcome for one task id.
type BulkResult struct {
	TaskID int
	Task   todo.Task // the server's copy for done and undo
	Err    error
}

// RunBulk applies action to every id with at most workers requests in flight.
// There is one result per id, in the order of ids; a request that never ran
// carries ErrSkipped. Every failure is also reported through notifier when it
// is non-nil.
func RunBulk(ctx context.Context, client Client, notifier Notifier, action BulkAction, ids []int, workers int) []BulkResult {
	pool := parallel.NewWorkerPool[todo.Task](ctx, workers, false)
	for i, id := range ids {
		pool.Submit(strconv.Itoa(i), func(ctx context.Context) (todo.Task, error) {
			switch action {
			case BulkDone, BulkUndo:
				res := client.SetTaskCompleted(ctx, todo.Task{ID: id}, action == BulkDone)
				return res.Value, res.Err
			default:
				res := client.DeleteTask(ctx, id)
				return todo.Task{ID: id}, res.Err
			}
		})
	}

	results, _ := pool.Wait()
	out := make([]BulkResult, len(ids))
	ran := make([]bool, len(ids))
	for _, r := range results {
		i, _ := strconv.Atoi(r.ID)
		out[i] = BulkResult{TaskID: ids[i], Task: r.Value, Err: r.Err}
		ran[i] = true
	}
	for i, id := range ids {
		if !ran[i] {
			err := ErrSkipped
			if ctx.Err() != nil {
				err = fmt.Errorf("%w: %w", ErrSkipped, ctx.Err())
			}
			out[i] = BulkResult{TaskID: id, Err: err}
		}
		if out[i].Err != nil && notifier != nil {
			notifier.Notify(strconv.Itoa(id) + ": " + out[i].Err.Error())
		}
	}
	return out
}
