// Copyright (c) 2026 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestPause(t *testing.T) {
	ctx := context.Background()
	jobf := func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	}
	j1 := Run(jobf, ctx)
	if j1.State() != RUNNING {
		t.Fatalf("j1 must be running")
	}
	j1.Pause()
	if j1.State() != PAUSED {
		t.Fatalf("j1 must be paused")
	}
	if !errors.Is(j1.Err(), errPause) {
		t.Fatalf("want errPause, got %v", j1.Err())
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	jobf := func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	}
	j1 := Run(jobf, ctx)
	j1.Cancel()
	if j1.State() != CANCELED {
		t.Fatalf("j1 must be canceled")
	}
	if !errors.Is(j1.Err(), errCancel) {
		t.Fatalf("want errCancel, got %v", j1.Err())
	}
}

func TestFailed(t *testing.T) {
	ctx := context.Background()
	ch := make(chan error)
	jobf := func(ctx context.Context) error {
		return <-ch
	}
	j1 := Run(jobf, ctx)
	fail := errors.New("job has failed")
	ch <- fail
	j1.Wait()
	if j1.State() != FAILED {
		t.Fatalf("j1 must be failed")
	}
	if !errors.Is(j1.Err(), fail) {
		t.Fatalf("want %v, got %v", fail, j1.Err())
	}
}

func TestCompleted(t *testing.T) {
	ctx := context.Background()
	ch := make(chan error)
	jobf := func(ctx context.Context) error {
		return <-ch
	}
	j1 := Run(jobf, ctx)
	ch <- nil
	j1.Wait()
	if j1.State() != COMPLETED {
		t.Fatalf("j1 must be completed")
	}
	if j1.Err() != nil {
		t.Fatalf("want nil, got %v", j1.Err())
	}
}

func TestRunnerLifecycle(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	runner := NewRunner()

	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return runner.Add(ctx, rw, "monitor-1", "SellerMonitor")
	})
	if err != nil {
		t.Fatal(err)
	}

	jobf := func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	}
	state, err := ResumeDB(ctx, runner, db, "monitor-1", jobf, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state != RUNNING {
		t.Fatalf("state = %q, want RUNNING", state)
	}

	if _, err := ResumeDB(ctx, runner, db, "monitor-1", jobf, ctx); err == nil {
		t.Fatalf("resuming a running job must fail")
	}

	state, err = PauseDB(ctx, runner, db, "monitor-1")
	if err != nil {
		t.Fatal(err)
	}
	if state != PAUSED {
		t.Fatalf("state = %q, want PAUSED", state)
	}

	// The paused state must be visible through a fresh runner.
	fresh := NewRunner()
	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		jd, err := fresh.Get(ctx, r, "monitor-1")
		if err != nil {
			return err
		}
		if jd.State != PAUSED {
			t.Fatalf("persisted state = %q, want PAUSED", jd.State)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	state, err = CancelDB(ctx, runner, db, "monitor-1")
	if err != nil {
		t.Fatal(err)
	}
	if state != CANCELED {
		t.Fatalf("state = %q, want CANCELED", state)
	}
}
