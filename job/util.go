// Copyright (c) 2026 BVK Chaitanya

package job

import (
	"context"

	"github.com/bvkgo/kv"
)

func ResumeDB(ctx context.Context, r *Runner, db kv.Database, uid string, fn Func, fctx context.Context) (state State, err error) {
	kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		state, err = r.Resume(ctx, rw, uid, fn, fctx)
		return nil
	})
	return state, err
}

func PauseDB(ctx context.Context, r *Runner, db kv.Database, uid string) (state State, err error) {
	kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		state, err = r.Pause(ctx, rw, uid)
		return nil
	})
	return state, err
}

func CancelDB(ctx context.Context, r *Runner, db kv.Database, uid string) (state State, err error) {
	kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		state, err = r.Cancel(ctx, rw, uid)
		return nil
	})
	return state, err
}

func ScanDB(ctx context.Context, r *Runner, db kv.Database, fn func(context.Context, kv.Reader, *JobData) error) error {
	return kv.WithReader(ctx, db, func(ctx context.Context, reader kv.Reader) error {
		return r.Scan(ctx, reader, fn)
	})
}

func StopAllDB(ctx context.Context, r *Runner, db kv.Database) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return r.StopAll(ctx, rw)
	})
}
