// Copyright (c) 2026 BVK Chaitanya

// Package job implements an api to manage background jobs. Jobs are
// activities that can be canceled or paused through their context.Context
// argument; the Runner below persists their lifecycle state in the database.
package job

import (
	"context"
	"errors"
	"sync"
)

type State string

const (
	PAUSED    State = "PAUSED"
	RUNNING   State = "RUNNING"
	COMPLETED State = "COMPLETED"
	CANCELED  State = "CANCELED"
	FAILED    State = "FAILED"
)

func IsStopped(s State) bool {
	return s != RUNNING
}

func IsDone(s State) bool {
	return s == COMPLETED || s == CANCELED || s == FAILED
}

type Func func(ctx context.Context) error

var (
	errPause  = errors.New("ErrPause")
	errCancel = errors.New("ErrCancel")
)

type Job struct {
	cancel context.CancelCauseFunc

	wg sync.WaitGroup

	mu sync.Mutex

	status State

	err error
}

// Run starts the job function in a background goroutine. The job runs until
// the function returns or the job is paused or canceled.
func Run(f Func, ctx context.Context) *Job {
	jctx, jcancel := context.WithCancelCause(ctx)
	j := &Job{
		cancel: jcancel,
		status: RUNNING,
	}
	j.wg.Add(1)
	go j.goRun(jctx, f)
	return j
}

func (j *Job) goRun(ctx context.Context, f Func) {
	defer j.wg.Done()

	err := f(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.err = err
	switch {
	case err == nil:
		j.status = COMPLETED
	case errors.Is(err, errPause):
		j.status = PAUSED
	case errors.Is(err, errCancel):
		j.status = CANCELED
	default:
		j.status = FAILED
	}
}

// Pause stops the job with the intent to resume it later. Blocks until the
// job function has returned.
func (j *Job) Pause() {
	j.cancel(errPause)
	j.wg.Wait()
}

// Cancel stops the job permanently. Blocks until the job function has
// returned.
func (j *Job) Cancel() {
	j.cancel(errCancel)
	j.wg.Wait()
}

// Wait blocks till the job function has returned.
func (j *Job) Wait() {
	j.wg.Wait()
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the job function's result after it has stopped.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
