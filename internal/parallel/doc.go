// Package parallel runs independent requests with bounded concurrency.
//
// WorkerPool backs the bulk done, undo and rm commands: one job per task id,
// at most maxWorkers in flight, results reported in submission order.
package parallel
